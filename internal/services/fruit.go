package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

// FruitBetUnit is the fixed chip size on the fruit board.
const FruitBetUnit int64 = 200

// MaxFruitUnitsPerSymbol caps how many chips can stack on one symbol.
const MaxFruitUnitsPerSymbol = 9

// FruitSymbol is one face on the machine. A zero multiplier with Special
// set marks a bonus cell that pays nothing directly.
type FruitSymbol struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mult    int64  `json:"mult"`
	Special string `json:"special,omitempty"`
}

var fruitSymbols = []FruitSymbol{
	{ID: "cherry", Name: "Cereza", Mult: 2},
	{ID: "lemon", Name: "Limón", Mult: 2},
	{ID: "orange", Name: "Naranja", Mult: 2},
	{ID: "grape", Name: "Uvas", Mult: 3},
	{ID: "banana", Name: "Banano", Mult: 4},
	{ID: "watermelon", Name: "Sandía", Mult: 5},
	{ID: "bell", Name: "Campana", Mult: 8},
	{ID: "diamond", Name: "Diamante", Mult: 10},
	{ID: "crown", Name: "Corona", Mult: 12},
	{ID: "star", Name: "Estrella", Mult: 15},
	{ID: "barbar", Name: "BAR BAR", Mult: 100},
	{ID: "seven77", Name: "77", Mult: 30},
	{ID: "once_more", Name: "ONCE MORE", Special: "once_more"},
}

// fruitRing is the 24-cell perimeter walked by the light. Symbol counts
// and placement mirror a shop machine: BAR BAR centered top, ONCE MORE on
// the side centers.
var fruitRing = []string{
	"bell", "cherry", "lemon", "barbar", "orange", "cherry", "star",
	"lemon", "grape", "once_more", "orange", "cherry",
	"crown", "grape", "lemon", "seven77", "orange", "cherry", "diamond",
	"watermelon", "banana", "once_more", "cherry", "cherry",
}

var fruitByID = func() map[string]FruitSymbol {
	m := make(map[string]FruitSymbol, len(fruitSymbols))
	for _, s := range fruitSymbols {
		m[s.ID] = s
	}
	return m
}()

// FruitBoard exposes the ring layout and paytable for clients.
func FruitBoard() ([]FruitSymbol, []string) {
	return fruitSymbols, fruitRing
}

// cherryPositions and bonusPositions are the cells the ONCE MORE bonus can
// land on: the first bonus light always stops on a cherry, the second on
// anything but ONCE MORE itself.
var cherryPositions, bonusPositions = func() (cherries, allowed []int) {
	for i, id := range fruitRing {
		if id == "cherry" {
			cherries = append(cherries, i)
		}
		if fruitByID[id].Special == "" {
			allowed = append(allowed, i)
		}
	}
	return cherries, allowed
}()

type FruitService struct {
	store store.Store
	log   *logrus.Entry
	pick  func(n int) int // uniform in [0,n)
}

func NewFruitService(st store.Store) *FruitService {
	return &FruitService{
		store: st,
		log:   logrus.WithField("component", "fruit"),
		pick:  randomInt,
	}
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return int(time.Now().UnixNano() % int64(n))
	}
	return int(v.Int64())
}

type FruitResult struct {
	Winner     string             `json:"winner"`
	WinnerPos  int                `json:"winner_pos"`
	Bonus      *models.FruitBonus `json:"bonus,omitempty"`
	BonusPos   []int              `json:"bonus_pos,omitempty"`
	Total      int64              `json:"total"`
	Payout     int64              `json:"payout"`
	NewBalance int64              `json:"new_balance"`
}

func validateFruitBets(bets map[string]int) (int64, error) {
	if len(bets) == 0 {
		return 0, fmt.Errorf("place at least one bet")
	}
	var total int64
	for id, count := range bets {
		sym, ok := fruitByID[id]
		if !ok {
			return 0, fmt.Errorf("unknown symbol %q", id)
		}
		if sym.Special != "" {
			return 0, fmt.Errorf("cannot bet on %q", id)
		}
		if count < 1 || count > MaxFruitUnitsPerSymbol {
			return 0, fmt.Errorf("bet count on %q must be 1-%d", id, MaxFruitUnitsPerSymbol)
		}
		total += int64(count) * FruitBetUnit
	}
	return total, nil
}

func payoutForSymbol(bets map[string]int, id string) int64 {
	sym, ok := fruitByID[id]
	if !ok || sym.Mult == 0 {
		return 0 // bonus cells pay nothing directly
	}
	count := bets[id]
	if count == 0 {
		return 0
	}
	return int64(count) * FruitBetUnit * sym.Mult
}

// Spin debits the total, walks the light to a random cell and settles. An
// ONCE MORE landing grants two extra outcomes whose payouts add up. Bets do
// not carry over to the next spin.
func (s *FruitService) Spin(ctx context.Context, userID string, req *models.FruitSpinRequest) (*FruitResult, error) {
	total, err := validateFruitBets(req.Bets)
	if err != nil {
		return nil, err
	}

	mainPos := s.pick(len(fruitRing))
	winner := fruitRing[mainPos]

	var bonus *models.FruitBonus
	var bonusPos []int
	if fruitByID[winner].Special == "once_more" {
		// Double chance: the first light is a guaranteed cherry, the
		// second can stop anywhere except ONCE MORE.
		p1 := cherryPositions[s.pick(len(cherryPositions))]
		p2 := bonusPositions[s.pick(len(bonusPositions))]
		o1, o2 := fruitRing[p1], fruitRing[p2]
		bonus = &models.FruitBonus{
			Outcomes: []string{o1, o2},
			Payouts:  []int64{payoutForSymbol(req.Bets, o1), payoutForSymbol(req.Bets, o2)},
		}
		bonusPos = []int{p1, p2}
	}

	var out *FruitResult
	err = store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if account.Balance < total {
			return "", ErrInsufficientBalance
		}

		var payout int64
		if bonus != nil {
			payout = bonus.Payouts[0] + bonus.Payouts[1]
		} else {
			payout = payoutForSymbol(req.Bets, winner)
		}

		account.Balance += payout - total
		account.FruitHistory = append(account.FruitHistory, models.FruitRecord{
			At:     models.NowISO(),
			Bets:   req.Bets,
			Total:  total,
			Winner: winner,
			Bonus:  bonus,
			Payout: payout,
		})
		if len(account.FruitHistory) > models.HistoryCap {
			account.FruitHistory = account.FruitHistory[len(account.FruitHistory)-models.HistoryCap:]
		}

		out = &FruitResult{
			Winner:     winner,
			WinnerPos:  mainPos,
			Bonus:      bonus,
			BonusPos:   bonusPos,
			Total:      total,
			Payout:     payout,
			NewBalance: account.Balance,
		}
		return fmt.Sprintf("Fruit spin %s stake=%d winner=%s payout=%d", account.Username, total, winner, payout), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"winner":  out.Winner,
		"stake":   out.Total,
		"payout":  out.Payout,
	}).Info("fruit spin settled")
	return out, nil
}

func (s *FruitService) History(ctx context.Context, userID string) ([]models.FruitRecord, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.FruitHistory, nil
}
