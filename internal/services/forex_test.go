package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

func TestMulberry32Deterministic(t *testing.T) {
	a := mulberry32{state: 12345}
	b := mulberry32{state: 12345}
	for i := 0; i < 100; i++ {
		va, vb := a.next(), b.next()
		require.Equal(t, va, vb)
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}

	c := mulberry32{state: 54321}
	assert.NotEqual(t, (&mulberry32{state: 12345}).next(), c.next())
}

func TestForexMarketPricePath(t *testing.T) {
	start := time.Unix(1_000_000, 0)

	// Same seed, same path.
	m1 := newForexMarket(42, start)
	m2 := newForexMarket(42, start)
	for i := int64(1); i <= 120; i++ {
		assert.Equal(t, m1.PriceAt(start.Unix()+i), m2.PriceAt(start.Unix()+i))
	}

	// Mean reversion dominates the shock far from the base price.
	m := newForexMarket(7, start)
	assert.Less(t, m.nextPrice(2.0), 2.0)
	assert.Greater(t, m.nextPrice(0.5), 0.5)
	assert.GreaterOrEqual(t, m.nextPrice(0.0001), 0.0001)

	// History stays bounded after a long catch-up.
	m1.PriceAt(start.Unix() + 5000)
	assert.LessOrEqual(t, len(m1.points), forexMaxPoints)
}

func TestForexWins(t *testing.T) {
	assert.True(t, forexWins("buy", 1.10, 1.11))
	assert.False(t, forexWins("buy", 1.10, 1.09))
	assert.False(t, forexWins("buy", 1.10, 1.10), "tie loses")
	assert.True(t, forexWins("sell", 1.10, 1.09))
	assert.False(t, forexWins("sell", 1.10, 1.11))
	assert.False(t, forexWins("sell", 1.10, 1.10), "tie loses")
}

func TestForexStakeValidation(t *testing.T) {
	cases := []struct {
		country string
		stake   int64
		ok      bool
	}{
		{"CO", 1000, true},
		{"CO", 20000, true},
		{"CO", 500, false},
		{"CO", 1500, false}, // off the step
		{"CO", 21000, false},
		{"US", 1, true},
		{"US", 20, true},
		{"US", 0, false},
		{"US", 21, false},
	}
	for _, tc := range cases {
		req := &models.ForexBetRequest{Side: "buy", Stake: tc.stake}
		err := req.ValidateStake(tc.country)
		if tc.ok {
			assert.NoError(t, err, "%s %d", tc.country, tc.stake)
		} else {
			assert.Error(t, err, "%s %d", tc.country, tc.stake)
		}
	}

	assert.Error(t, (&models.ForexBetRequest{Side: "hold", Stake: 1000}).Validate())
}

func TestForexPlaceBetDebitsStake(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(5000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := NewForexService(st)
	s.duration = time.Hour // keep the position open for the whole test

	res, err := s.PlaceBet(ctx, account.ID, &models.ForexBetRequest{Side: "buy", Stake: 2000})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), res.NewBalance)
	assert.Positive(t, res.EntryPrice)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), snap.Doc.Users[0].Balance)

	// Only one open position per player.
	_, err = s.PlaceBet(ctx, account.ID, &models.ForexBetRequest{Side: "sell", Stake: 1000})
	assert.Error(t, err)

	info := s.Market(account.ID)
	require.NotNil(t, info.ActiveBet)
	assert.Equal(t, res.BetID, info.ActiveBet.BetID)
	assert.NotEmpty(t, info.Points)
}

func TestForexResolveWin(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(3000) // stake already debited at placement
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := NewForexService(st)

	bet := &forexBet{
		id: models.NewID(), userID: account.ID,
		side: "buy", stake: 2000, entryPrice: 1.10,
	}
	s.active[account.ID] = bet
	s.resolveBet(bet, 1.105)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	got := snap.Doc.Users[0]
	// 2000 * 1.8 = 3600 credited.
	assert.Equal(t, int64(6600), got.Balance)
	require.Len(t, got.ForexHistory, 1)
	rec := got.ForexHistory[0]
	assert.True(t, rec.Won)
	assert.Equal(t, int64(3600), rec.Payout)
	assert.Equal(t, 1.105, rec.FinalPrice)

	_, open := s.active[account.ID]
	assert.False(t, open)
}

func TestForexResolveLossAndTie(t *testing.T) {
	ctx := context.Background()

	for _, final := range []float64{1.09, 1.10} {
		account := newTestAccount(3000)
		st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
		s := NewForexService(st)

		bet := &forexBet{
			id: models.NewID(), userID: account.ID,
			side: "buy", stake: 2000, entryPrice: 1.10,
		}
		s.active[account.ID] = bet
		s.resolveBet(bet, final)

		snap, err := st.Load(ctx)
		require.NoError(t, err)
		got := snap.Doc.Users[0]
		assert.Equal(t, int64(3000), got.Balance, "final=%v", final)
		require.Len(t, got.ForexHistory, 1)
		assert.False(t, got.ForexHistory[0].Won)
		assert.Zero(t, got.ForexHistory[0].Payout)
	}
}

func TestForexFullRound(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(5000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := NewForexService(st)
	s.duration = 50 * time.Millisecond

	_, err := s.PlaceBet(ctx, account.ID, &models.ForexBetRequest{Side: "buy", Stake: 1000})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := st.Load(ctx)
		return err == nil && len(snap.Doc.Users[0].ForexHistory) == 1
	}, 3*time.Second, 20*time.Millisecond)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	got := snap.Doc.Users[0]
	rec := got.ForexHistory[0]
	assert.Equal(t, int64(5000-1000+rec.Payout), got.Balance)
	if rec.Won {
		assert.Equal(t, int64(1800), rec.Payout)
	} else {
		assert.Zero(t, rec.Payout)
	}
}
