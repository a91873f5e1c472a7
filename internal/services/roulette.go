package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/draw"
	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

func NumColor(n int) string {
	if n == 0 {
		return "green"
	}
	if redNumbers[n] {
		return "red"
	}
	return "black"
}

type RouletteService struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
	spin  func() int // 0..36
}

func NewRouletteService(st store.Store) *RouletteService {
	return &RouletteService{
		store: st,
		log:   logrus.WithField("component", "roulette"),
		now:   time.Now,
		spin:  randomRouletteNumber,
	}
}

// randomRouletteNumber is real randomness per spin, unlike the cycle draws.
func randomRouletteNumber() int {
	n, err := rand.Int(rand.Reader, big.NewInt(37))
	if err != nil {
		return int(time.Now().UnixNano() % 37)
	}
	return int(n.Int64())
}

type RouletteResult struct {
	Result     int    `json:"result"`
	Color      string `json:"color"`
	TotalStake int64  `json:"total_stake"`
	Payout     int64  `json:"payout"`
	NewBalance int64  `json:"new_balance"`
}

// PayoutMultiplier returns the credit per winning unit, stake return
// included.
func PayoutMultiplier(kind string) int64 {
	switch kind {
	case "number":
		return 36 // 35:1 plus the stake back
	case "color", "even", "odd", "low", "high":
		return 2
	case "dozen1", "dozen2", "dozen3", "col1", "col2", "col3":
		return 3
	}
	return 0
}

// SelectionWins scores one table spot against the landed number. Zero
// beats every outside bet.
func SelectionWins(sel models.RouletteSelection, n int) bool {
	switch sel.Kind {
	case "number":
		v, err := strconv.Atoi(sel.Value)
		return err == nil && n == v
	case "color":
		return n != 0 && NumColor(n) == sel.Value
	case "even":
		return n != 0 && n%2 == 0
	case "odd":
		return n != 0 && n%2 == 1
	case "low":
		return n >= 1 && n <= 18
	case "high":
		return n >= 19 && n <= 36
	case "dozen1":
		return n >= 1 && n <= 12
	case "dozen2":
		return n >= 13 && n <= 24
	case "dozen3":
		return n >= 25 && n <= 36
	case "col1":
		return n != 0 && n%3 == 1
	case "col2":
		return n != 0 && n%3 == 2
	case "col3":
		return n != 0 && n%3 == 0
	}
	return false
}

func validateRouletteRequest(req *models.RouletteSpinRequest) error {
	if req.Unit < models.MinStake || req.Unit > models.MaxStake {
		return fmt.Errorf("unit bet must be %d-%d", models.MinStake, models.MaxStake)
	}
	if len(req.Selections) == 0 {
		return fmt.Errorf("select at least one bet")
	}
	for _, sel := range req.Selections {
		if PayoutMultiplier(sel.Kind) == 0 {
			return fmt.Errorf("unknown bet kind %q", sel.Kind)
		}
		if sel.Units < 1 {
			return fmt.Errorf("bet units must be positive")
		}
		if sel.Kind == "number" {
			v, err := strconv.Atoi(sel.Value)
			if err != nil || v < 0 || v > 36 {
				return fmt.Errorf("invalid number %q", sel.Value)
			}
		}
	}
	return nil
}

func selectionsSummary(req *models.RouletteSpinRequest) string {
	parts := make([]string, 0, len(req.Selections))
	for _, sel := range req.Selections {
		label := sel.Kind
		if sel.Value != "" {
			label += " " + sel.Value
		}
		parts = append(parts, fmt.Sprintf("%s x%d", label, sel.Units))
	}
	return strings.Join(parts, " + ")
}

// Spin debits the whole stake, lands a number, scores every selection and
// credits the total payout, all in one document write.
func (s *RouletteService) Spin(ctx context.Context, userID string, req *models.RouletteSpinRequest) (*RouletteResult, error) {
	if err := validateRouletteRequest(req); err != nil {
		return nil, err
	}
	// Same intake rule as the lottery near the cycle boundary.
	if draw.BettingClosed(s.now()) {
		return nil, ErrBettingClosed
	}

	var totalStake int64
	for _, sel := range req.Selections {
		totalStake += req.Unit * int64(sel.Units)
	}

	result := s.spin()

	var out *RouletteResult
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if account.Balance < totalStake {
			return "", ErrInsufficientBalance
		}

		var payout int64
		for _, sel := range req.Selections {
			if SelectionWins(sel, result) {
				payout += req.Unit * int64(sel.Units) * PayoutMultiplier(sel.Kind)
			}
		}

		account.Balance += payout - totalStake
		account.RouletteHistory = append(account.RouletteHistory, models.RouletteRecord{
			At:     models.NowISO(),
			Bet:    selectionsSummary(req),
			Amount: totalStake,
			Result: result,
			Payout: payout,
		})
		if len(account.RouletteHistory) > models.HistoryCap {
			account.RouletteHistory = account.RouletteHistory[len(account.RouletteHistory)-models.HistoryCap:]
		}

		out = &RouletteResult{
			Result:     result,
			Color:      NumColor(result),
			TotalStake: totalStake,
			Payout:     payout,
			NewBalance: account.Balance,
		}
		return fmt.Sprintf("Roulette %s stake=%d result=%d payout=%d", account.Username, totalStake, result, payout), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"result":  out.Result,
		"stake":   out.TotalStake,
		"payout":  out.Payout,
	}).Info("roulette spin settled")
	return out, nil
}

func (s *RouletteService) History(ctx context.Context, userID string) ([]models.RouletteRecord, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.RouletteHistory, nil
}
