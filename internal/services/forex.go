package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

const (
	// forexBetDuration is how long a position stays open before it is
	// scored against the price at expiry.
	forexBetDuration = 60 * time.Second

	// Winning positions pay 1.8x the stake (integer floor).
	forexPayoutNum, forexPayoutDen int64 = 9, 5

	forexBasePrice  = 1.10
	forexMaxPoints  = 900
	forexMaxCatchup = 3600 // price steps replayed per fast-forward
)

// mulberry32 is the market's PRNG. The exact update sequence is load
// bearing: the same seed must yield the same price path everywhere.
type mulberry32 struct{ state uint32 }

func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	r := (t ^ (t >> 15)) * (t | 1)
	r ^= r + (r^(r>>7))*(r|61)
	return float64(r^(r>>14)) / 4294967296
}

// PricePoint is one second of the synthetic EUR/USD stream.
type PricePoint struct {
	T int64   `json:"t"` // unix seconds
	V float64 `json:"v"`
}

// forexMarket generates the price path lazily: nobody advances the clock
// until a price is asked for, then the gap is replayed second by second.
type forexMarket struct {
	mu       sync.Mutex
	rng      mulberry32
	lastTime int64
	price    float64
	points   []PricePoint
}

func newForexMarket(seed uint32, now time.Time) *forexMarket {
	m := &forexMarket{
		rng:      mulberry32{state: seed},
		lastTime: now.Unix(),
		price:    forexBasePrice,
	}
	// Flat warmup history so charts have something to draw.
	for i := int64(90); i >= 1; i-- {
		m.points = append(m.points, PricePoint{T: m.lastTime - i, V: m.price})
	}
	return m
}

// nextPrice mean-reverts toward the base price with a bounded random shock.
func (m *forexMarket) nextPrice(prev float64) float64 {
	shock := (m.rng.next() - 0.5) * 2 * 0.00055
	drift := (forexBasePrice - prev) * 0.02
	p := prev + drift + shock
	if p < 0.0001 {
		p = 0.0001
	}
	return p
}

func (m *forexMarket) fastForwardTo(target int64) {
	steps := 0
	for m.lastTime < target && steps < forexMaxCatchup {
		m.lastTime++
		m.price = m.nextPrice(m.price)
		m.points = append(m.points, PricePoint{T: m.lastTime, V: m.price})
		steps++
	}
	if len(m.points) > forexMaxPoints {
		m.points = m.points[len(m.points)-forexMaxPoints:]
	}
}

// PriceAt advances the stream to sec and returns the last price at or
// before it.
func (m *forexMarket) PriceAt(sec int64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sec > m.lastTime {
		m.fastForwardTo(sec)
	}
	for i := len(m.points) - 1; i >= 0; i-- {
		if m.points[i].T <= sec {
			return m.points[i].V
		}
	}
	return m.price
}

// Snapshot returns the recent price path for charting.
func (m *forexMarket) Snapshot(sec int64) (int64, float64, []PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sec > m.lastTime {
		m.fastForwardTo(sec)
	}
	points := make([]PricePoint, len(m.points))
	copy(points, m.points)
	return m.lastTime, m.price, points
}

type forexBet struct {
	id         string
	userID     string
	side       string
	stake      int64
	entryPrice float64
	entrySec   int64
	endSec     int64
}

// ForexService runs the EUR/USD binary options: a 60-second up/down bet on
// a deterministic synthetic price stream. Stake is debited at placement;
// expiry above the entry pays buy positions 1.8x, below pays sell, a flat
// tie loses either way.
type ForexService struct {
	store store.Store
	log   *logrus.Entry

	market *forexMarket

	mu     sync.Mutex
	active map[string]*forexBet // one open position per user

	now      func() time.Time
	duration time.Duration
}

func NewForexService(st store.Store) *ForexService {
	now := time.Now
	return &ForexService{
		store:    st,
		log:      logrus.WithField("component", "eurusd"),
		market:   newForexMarket(rand.Uint32(), now()),
		active:   make(map[string]*forexBet),
		now:      now,
		duration: forexBetDuration,
	}
}

// forexWins scores a position: ties lose.
func forexWins(side string, entry, final float64) bool {
	if side == "buy" {
		return final > entry
	}
	return final < entry
}

type ForexBetResult struct {
	BetID      string  `json:"bet_id"`
	Side       string  `json:"side"`
	Stake      int64   `json:"bet"`
	EntryPrice float64 `json:"entry_price"`
	ExpiresAt  int64   `json:"expires_at"` // unix seconds
	NewBalance int64   `json:"new_balance"`
}

// PlaceBet opens a position at the current price and schedules its expiry.
func (s *ForexService) PlaceBet(ctx context.Context, userID string, req *models.ForexBetRequest) (*ForexBetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, open := s.active[userID]; open {
		s.mu.Unlock()
		return nil, fmt.Errorf("a position is already open")
	}
	s.mu.Unlock()

	var newBalance int64
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if err := req.ValidateStake(account.Country); err != nil {
			return "", err
		}
		if account.Balance < req.Stake {
			return "", ErrInsufficientBalance
		}
		account.Balance -= req.Stake
		newBalance = account.Balance
		return fmt.Sprintf("EURUSD bet placed %s", account.Username), nil
	})
	if err != nil {
		return nil, err
	}

	entrySec := s.now().Unix()
	bet := &forexBet{
		id:         models.NewID(),
		userID:     userID,
		side:       req.Side,
		stake:      req.Stake,
		entryPrice: s.market.PriceAt(entrySec),
		entrySec:   entrySec,
		endSec:     entrySec + int64(s.duration/time.Second),
	}

	s.mu.Lock()
	s.active[userID] = bet
	s.mu.Unlock()

	go s.runBet(bet)

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"side":    bet.side,
		"stake":   bet.stake,
		"entry":   bet.entryPrice,
	}).Info("eurusd position opened")

	return &ForexBetResult{
		BetID:      bet.id,
		Side:       bet.side,
		Stake:      bet.stake,
		EntryPrice: bet.entryPrice,
		ExpiresAt:  bet.endSec,
		NewBalance: newBalance,
	}, nil
}

func (s *ForexService) runBet(bet *forexBet) {
	timer := time.NewTimer(s.duration)
	defer timer.Stop()
	<-timer.C
	s.resolveBet(bet, s.market.PriceAt(bet.endSec))
}

// resolveBet scores the position against the price at expiry and writes the
// outcome. The stake was debited at placement, only a win moves the balance.
func (s *ForexService) resolveBet(bet *forexBet, finalPrice float64) {
	s.mu.Lock()
	if cur, ok := s.active[bet.userID]; ok && cur.id == bet.id {
		delete(s.active, bet.userID)
	}
	s.mu.Unlock()

	win := forexWins(bet.side, bet.entryPrice, finalPrice)
	var payout int64
	if win {
		payout = bet.stake * forexPayoutNum / forexPayoutDen
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(bet.userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		account.Balance += payout
		account.ForexHistory = append(account.ForexHistory, models.ForexRecord{
			At:         models.NowISO(),
			BetID:      bet.id,
			Side:       bet.side,
			Stake:      bet.stake,
			EntryPrice: bet.entryPrice,
			FinalPrice: finalPrice,
			Won:        win,
			Payout:     payout,
		})
		if len(account.ForexHistory) > models.HistoryCap {
			account.ForexHistory = account.ForexHistory[len(account.ForexHistory)-models.HistoryCap:]
		}
		outcome := "LOSE"
		if win {
			outcome = "WIN"
		}
		return fmt.Sprintf("EURUSD bet settle %s %s", account.Username, outcome), nil
	})
	if err != nil {
		s.log.WithError(err).WithField("bet_id", bet.id).Warn("failed to record eurusd settle")
	}

	s.log.WithFields(logrus.Fields{
		"user_id": bet.userID,
		"side":    bet.side,
		"entry":   bet.entryPrice,
		"final":   finalPrice,
		"won":     win,
		"payout":  payout,
	}).Info("eurusd position settled")
}

// ForexMarketInfo is the chart feed plus the caller's open position if any.
type ForexMarketInfo struct {
	Time   int64        `json:"time"`
	Price  float64      `json:"price"`
	Points []PricePoint `json:"points"`

	ActiveBet *ForexBetResult `json:"active_bet,omitempty"`
}

// Market returns the current stream state for one user.
func (s *ForexService) Market(userID string) *ForexMarketInfo {
	last, price, points := s.market.Snapshot(s.now().Unix())
	info := &ForexMarketInfo{Time: last, Price: price, Points: points}

	s.mu.Lock()
	if bet, ok := s.active[userID]; ok {
		info.ActiveBet = &ForexBetResult{
			BetID:      bet.id,
			Side:       bet.side,
			Stake:      bet.stake,
			EntryPrice: bet.entryPrice,
			ExpiresAt:  bet.endSec,
		}
	}
	s.mu.Unlock()
	return info
}

func (s *ForexService) History(ctx context.Context, userID string) ([]models.ForexRecord, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.ForexHistory, nil
}
