package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balotera-backend/internal/draw"
	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

func TestNumColor(t *testing.T) {
	assert.Equal(t, "green", NumColor(0))
	assert.Equal(t, "red", NumColor(1))
	assert.Equal(t, "black", NumColor(2))
	assert.Equal(t, "red", NumColor(36))
	assert.Equal(t, "black", NumColor(35))
}

func TestSelectionWins(t *testing.T) {
	cases := []struct {
		sel  models.RouletteSelection
		n    int
		want bool
	}{
		{models.RouletteSelection{Kind: "number", Value: "17"}, 17, true},
		{models.RouletteSelection{Kind: "number", Value: "17"}, 18, false},
		{models.RouletteSelection{Kind: "color", Value: "red"}, 1, true},
		{models.RouletteSelection{Kind: "color", Value: "red"}, 2, false},
		{models.RouletteSelection{Kind: "color", Value: "red"}, 0, false},
		{models.RouletteSelection{Kind: "even"}, 4, true},
		{models.RouletteSelection{Kind: "even"}, 0, false}, // zero is the house
		{models.RouletteSelection{Kind: "odd"}, 7, true},
		{models.RouletteSelection{Kind: "low"}, 18, true},
		{models.RouletteSelection{Kind: "low"}, 19, false},
		{models.RouletteSelection{Kind: "high"}, 19, true},
		{models.RouletteSelection{Kind: "dozen1"}, 12, true},
		{models.RouletteSelection{Kind: "dozen2"}, 13, true},
		{models.RouletteSelection{Kind: "dozen3"}, 36, true},
		{models.RouletteSelection{Kind: "dozen3"}, 24, false},
		{models.RouletteSelection{Kind: "col1"}, 1, true},
		{models.RouletteSelection{Kind: "col2"}, 2, true},
		{models.RouletteSelection{Kind: "col3"}, 3, true},
		{models.RouletteSelection{Kind: "col3"}, 0, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SelectionWins(c.sel, c.n), "%s/%s vs %d", c.sel.Kind, c.sel.Value, c.n)
	}
}

func TestPayoutMultiplier(t *testing.T) {
	assert.Equal(t, int64(36), PayoutMultiplier("number"))
	assert.Equal(t, int64(2), PayoutMultiplier("color"))
	assert.Equal(t, int64(3), PayoutMultiplier("dozen2"))
	assert.Equal(t, int64(0), PayoutMultiplier("street"))
}

func rouletteWith(st store.Store, result int) *RouletteService {
	s := NewRouletteService(st)
	// Early in a cycle so the shared betting-closed rule stays out of the way.
	s.now = func() time.Time { return draw.StartTime(8_100_000).Add(10 * time.Second) }
	s.spin = func() int { return result }
	return s
}

func TestSpinWinningNumber(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(10_000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := rouletteWith(st, 17)

	res, err := s.Spin(ctx, account.ID, &models.RouletteSpinRequest{
		Unit: 100,
		Selections: []models.RouletteSelection{
			{Kind: "number", Value: "17", Units: 1},
			{Kind: "color", Value: "black", Units: 2},
		},
	})
	require.NoError(t, err)

	// Stake 100+200=300. Number pays 100*36, black (17 is black) 200*2.
	assert.Equal(t, 17, res.Result)
	assert.Equal(t, "black", res.Color)
	assert.Equal(t, int64(300), res.TotalStake)
	assert.Equal(t, int64(4000), res.Payout)
	assert.Equal(t, int64(10_000-300+4000), res.NewBalance)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.NewBalance, snap.Doc.Users[0].Balance)
	require.Len(t, snap.Doc.Users[0].RouletteHistory, 1)
	assert.Equal(t, int64(1), snap.Rev, "debit, credit and history in one write")
}

func TestSpinLosingZero(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(1000)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := rouletteWith(st, 0)

	res, err := s.Spin(ctx, account.ID, &models.RouletteSpinRequest{
		Unit: 100,
		Selections: []models.RouletteSelection{
			{Kind: "color", Value: "red", Units: 1},
			{Kind: "even", Units: 1},
			{Kind: "high", Units: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Payout, "zero beats every outside bet")
	assert.Equal(t, int64(700), res.NewBalance)
}

func TestSpinInsufficientBalance(t *testing.T) {
	ctx := context.Background()

	account := newTestAccount(100)
	st := store.NewMemoryStore(&models.Document{Users: []*models.Account{account}})
	s := rouletteWith(st, 5)

	_, err := s.Spin(ctx, account.ID, &models.RouletteSpinRequest{
		Unit:       100,
		Selections: []models.RouletteSelection{{Kind: "low", Units: 2}},
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.Doc.Users[0].Balance)
}

func TestSpinValidation(t *testing.T) {
	st := store.NewMemoryStore(&models.Document{})
	s := rouletteWith(st, 5)

	cases := []*models.RouletteSpinRequest{
		{Unit: 100},
		{Unit: 50, Selections: []models.RouletteSelection{{Kind: "low", Units: 1}}},
		{Unit: 100, Selections: []models.RouletteSelection{{Kind: "corner", Units: 1}}},
		{Unit: 100, Selections: []models.RouletteSelection{{Kind: "low", Units: 0}}},
		{Unit: 100, Selections: []models.RouletteSelection{{Kind: "number", Value: "37", Units: 1}}},
	}
	for i, req := range cases {
		_, err := s.Spin(context.Background(), "anyone", req)
		assert.Error(t, err, "case %d should be rejected", i)
	}
}
