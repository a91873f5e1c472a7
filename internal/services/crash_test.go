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

func crashWith(st store.Store, r float64) *CrashService {
	s := NewCrashService(st, nil)
	s.randFloat = func() float64 { return r }
	return s
}

func TestGenerateCrashPoint(t *testing.T) {
	st := store.NewMemoryStore(&models.Document{})

	assert.InDelta(t, 1.01, crashWith(st, 0).generateCrashPoint(), 1e-9)
	assert.InDelta(t, 1.8025, crashWith(st, 0.5).generateCrashPoint(), 1e-3)

	// The tail is capped at 200x before curving.
	high := crashWith(st, 0.9999999).generateCrashPoint()
	assert.Greater(t, high, 90.0)
	assert.Less(t, high, 91.0)
}

func TestMultiplierAt(t *testing.T) {
	assert.InDelta(t, 1.0, multiplierAt(0), 1e-9)
	assert.InDelta(t, 1.8221, multiplierAt(10*time.Second), 1e-3)
}

func TestCrashPlaceBetDebitsStake(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(2000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := crashWith(st, 0.9999999) // round far from crashing

	res, err := s.PlaceBet(ctx, account.ID, &models.CrashBetRequest{Stake: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RoundID)
	assert.Equal(t, int64(1500), res.NewBalance)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), snap.Doc.Users[0].Balance)

	_, err = s.Cashout(ctx, account.ID, res.RoundID)
	require.NoError(t, err)
}

func TestCrashImmediateCashout(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(2000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := crashWith(st, 0.9999999)

	bet, err := s.PlaceBet(ctx, account.ID, &models.CrashBetRequest{Stake: 500})
	require.NoError(t, err)

	// No tick has advanced the multiplier yet, so the payout is the stake.
	out, err := s.Cashout(ctx, account.ID, bet.RoundID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Multiplier, 0.01)
	assert.Equal(t, int64(500), out.Payout)
	assert.Equal(t, int64(2000), out.NewBalance)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Doc.Users[0].CrashHistory, 1)
	assert.True(t, snap.Doc.Users[0].CrashHistory[0].Won)

	// The round is gone.
	_, err = s.Cashout(ctx, account.ID, bet.RoundID)
	assert.Error(t, err)
}

func TestCrashCashoutOwnership(t *testing.T) {
	ctx := context.Background()

	owner := newTestAccount(2000)
	other := models.NewAccount("maria7", "clave2", "CO")
	other.Balance = 2000
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{owner, other}})
	s := crashWith(st, 0.9999999)

	bet, err := s.PlaceBet(ctx, owner.ID, &models.CrashBetRequest{Stake: 500})
	require.NoError(t, err)

	_, err = s.Cashout(ctx, other.ID, bet.RoundID)
	assert.Error(t, err)

	// The owner can still cash out afterwards.
	_, err = s.Cashout(ctx, owner.ID, bet.RoundID)
	assert.NoError(t, err)
}

func TestCrashRoundSettlesLoss(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(2000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := crashWith(st, 0) // crashes at 1.01x, within a couple of ticks

	bet, err := s.PlaceBet(ctx, account.ID, &models.CrashBetRequest{Stake: 500})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := st.Load(ctx)
		return err == nil && len(snap.Doc.Users[0].CrashHistory) == 1
	}, 3*time.Second, 50*time.Millisecond)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	rec := snap.Doc.Users[0].CrashHistory[0]
	assert.False(t, rec.Won)
	assert.Equal(t, int64(0), rec.Payout)
	assert.Equal(t, int64(1500), snap.Doc.Users[0].Balance)

	_, err = s.Cashout(ctx, account.ID, bet.RoundID)
	assert.Error(t, err)
}

func TestCrashBetValidation(t *testing.T) {
	st := store.NewMemoryStore(&models.Document{})
	s := crashWith(st, 0.5)

	for _, stake := range []int64{0, 99, 4001} {
		_, err := s.PlaceBet(context.Background(), "anyone", &models.CrashBetRequest{Stake: stake})
		assert.Error(t, err)
	}
}
