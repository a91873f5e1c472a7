package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

const (
	crashTickInterval = 100 * time.Millisecond
	crashGrowthRate   = 0.06 // multiplier = e^(rate * seconds)
	crashPointCap     = 200.0
)

type crashRound struct {
	id        string
	userID    string
	stake     int64
	startedAt time.Time
	crash     float64

	mu         sync.Mutex
	multiplier float64
	ended      bool

	stop chan struct{}
}

func (r *crashRound) currentMultiplier() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.multiplier
}

// CrashService runs the aviador rounds: stake debited up front, a
// multiplier climbs until the round's crash point, and a cashout before
// the crash credits stake times multiplier. Rounds live in memory; only
// balance mutations and history go through the document store.
type CrashService struct {
	store       store.Store
	log         *logrus.Entry
	broadcaster Broadcaster

	mu     sync.Mutex
	active map[string]*crashRound

	randFloat func() float64
}

func NewCrashService(st store.Store, b Broadcaster) *CrashService {
	return &CrashService{
		store:       st,
		log:         logrus.WithField("component", "crash"),
		broadcaster: b,
		active:      make(map[string]*crashRound),
		randFloat:   rand.Float64,
	}
}

// generateCrashPoint draws from a heavy-tailed curve capped at 200x.
func (s *CrashService) generateCrashPoint() float64 {
	r := s.randFloat()
	raw := 1 / (1 - r)
	curved := math.Pow(math.Min(raw, crashPointCap), 0.85)
	return math.Max(1.01, curved)
}

func multiplierAt(elapsed time.Duration) float64 {
	return math.Exp(crashGrowthRate * elapsed.Seconds())
}

type CrashBetResult struct {
	RoundID    string `json:"round_id"`
	Stake      int64  `json:"bet"`
	NewBalance int64  `json:"new_balance"`
}

type CrashCashoutResult struct {
	RoundID    string  `json:"round_id"`
	Multiplier float64 `json:"multiplier"`
	Payout     int64   `json:"payout"`
	NewBalance int64   `json:"new_balance"`
}

// PlaceBet debits the stake and launches the round.
func (s *CrashService) PlaceBet(ctx context.Context, userID string, req *models.CrashBetRequest) (*CrashBetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var newBalance int64
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if account.Balance < req.Stake {
			return "", ErrInsufficientBalance
		}
		account.Balance -= req.Stake
		newBalance = account.Balance
		return fmt.Sprintf("Aviador bet %s stake=%d", account.Username, req.Stake), nil
	})
	if err != nil {
		return nil, err
	}

	round := &crashRound{
		id:         models.NewID(),
		userID:     userID,
		stake:      req.Stake,
		startedAt:  time.Now(),
		crash:      s.generateCrashPoint(),
		multiplier: 1.0,
		stop:       make(chan struct{}),
	}

	s.mu.Lock()
	s.active[round.id] = round
	s.mu.Unlock()

	go s.runRound(round)

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"round_id": round.id,
		"stake":    req.Stake,
	}).Info("aviador round started")

	return &CrashBetResult{RoundID: round.id, Stake: req.Stake, NewBalance: newBalance}, nil
}

func (s *CrashService) runRound(round *crashRound) {
	ticker := time.NewTicker(crashTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m := multiplierAt(time.Since(round.startedAt))

			round.mu.Lock()
			if round.ended {
				round.mu.Unlock()
				return
			}
			if m >= round.crash {
				round.ended = true
				round.mu.Unlock()
				s.settleCrash(round)
				return
			}
			round.multiplier = m
			round.mu.Unlock()

			if s.broadcaster != nil {
				s.broadcaster.BroadcastRoundUpdate(round.userID, round.id, m)
			}

		case <-round.stop:
			return
		}
	}
}

// settleCrash records the loss. The stake was already debited, so the only
// document change is the history entry.
func (s *CrashService) settleCrash(round *crashRound) {
	s.mu.Lock()
	delete(s.active, round.id)
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRoundCrash(round.userID, round.id, round.crash)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(round.userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		appendCrashRecord(account, models.CrashRecord{
			At:         models.NowISO(),
			RoundID:    round.id,
			Stake:      round.stake,
			CrashPoint: round.crash,
			Payout:     0,
			Won:        false,
		})
		return fmt.Sprintf("Aviador crash %s round=%s at=%.2fx", account.Username, round.id, round.crash), nil
	})
	if err != nil {
		s.log.WithError(err).WithField("round_id", round.id).Warn("failed to record crash")
	}
}

// Cashout stops the round and credits stake times the multiplier reached.
func (s *CrashService) Cashout(ctx context.Context, userID, roundID string) (*CrashCashoutResult, error) {
	s.mu.Lock()
	round, ok := s.active[roundID]
	if ok && round.userID == userID {
		delete(s.active, roundID)
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("round not active")
	}
	if round.userID != userID {
		return nil, fmt.Errorf("round belongs to another player")
	}

	round.mu.Lock()
	if round.ended {
		round.mu.Unlock()
		return nil, fmt.Errorf("round already crashed")
	}
	round.ended = true
	mult := round.multiplier
	round.mu.Unlock()
	close(round.stop)

	payout := int64(math.Floor(float64(round.stake) * mult))

	var out *CrashCashoutResult
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		account.Balance += payout
		appendCrashRecord(account, models.CrashRecord{
			At:         models.NowISO(),
			RoundID:    round.id,
			Stake:      round.stake,
			CrashPoint: round.crash,
			CashoutAt:  mult,
			Payout:     payout,
			Won:        true,
		})
		out = &CrashCashoutResult{
			RoundID:    round.id,
			Multiplier: mult,
			Payout:     payout,
			NewBalance: account.Balance,
		}
		return fmt.Sprintf("Aviador cashout %s round=%s mult=%.2fx payout=%d", account.Username, round.id, mult, payout), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"round_id":   round.id,
		"multiplier": mult,
		"payout":     payout,
	}).Info("aviador cashout")
	return out, nil
}

// CleanupStale force-settles rounds that somehow outlived their crash
// point, e.g. after a wedged settle write.
func (s *CrashService) CleanupStale(maxAge time.Duration) {
	s.mu.Lock()
	var stale []*crashRound
	for id, r := range s.active {
		if time.Since(r.startedAt) > maxAge {
			delete(s.active, id)
			stale = append(stale, r)
		}
	}
	s.mu.Unlock()

	for _, r := range stale {
		r.mu.Lock()
		ended := r.ended
		r.ended = true
		r.mu.Unlock()
		if !ended {
			close(r.stop)
			s.settleCrash(r)
		}
	}
}

func appendCrashRecord(account *models.Account, rec models.CrashRecord) {
	account.CrashHistory = append(account.CrashHistory, rec)
	if len(account.CrashHistory) > models.HistoryCap {
		account.CrashHistory = account.CrashHistory[len(account.CrashHistory)-models.HistoryCap:]
	}
}

func (s *CrashService) History(ctx context.Context, userID string) ([]models.CrashRecord, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.CrashHistory, nil
}
