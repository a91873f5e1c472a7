package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/draw"
	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

type LotteryService struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
}

func NewLotteryService(st store.Store) *LotteryService {
	return &LotteryService{
		store: st,
		log:   logrus.WithField("component", "lottery"),
		now:   time.Now,
	}
}

// DrawInfo is what players see about the cycle in progress.
type DrawInfo struct {
	Cycle         int64      `json:"cycle"`
	CycleStart    string     `json:"cycle_start"`
	NextAt        string     `json:"next_at"`
	SecondsLeft   int64      `json:"seconds_left"`
	BettingClosed bool       `json:"betting_closed"`
	LastDraw      *draw.Draw `json:"last_draw,omitempty"`
}

// CurrentDrawInfo reveals the previous cycle's draw only; the current
// cycle's outcome stays hidden until its boundary passes.
func (s *LotteryService) CurrentDrawInfo() DrawInfo {
	now := s.now()
	idx := draw.Index(now)

	info := DrawInfo{
		Cycle:         idx,
		CycleStart:    draw.StartTime(idx).Format(time.RFC3339),
		NextAt:        draw.StartTime(idx + 1).Format(time.RFC3339),
		SecondsLeft:   int64(draw.TimeToNext(now).Seconds()),
		BettingClosed: draw.BettingClosed(now),
	}
	if idx > 0 {
		last := draw.ForCycle(idx - 1)
		last.Order = nil // the 20 drawn balls are what the player sees
		info.LastDraw = &last
	}
	return info
}

// PlaceBet debits the stake immediately and queues the wager against the
// next cycle. Any precondition failure leaves the document untouched.
func (s *LotteryService) PlaceBet(ctx context.Context, userID string, req *models.PlaceBetRequest) (*models.PendingWager, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if draw.BettingClosed(s.now()) {
		return nil, ErrBettingClosed
	}

	var placed *models.PendingWager
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if len(account.PendingWagers) >= models.MaxPendingWagers {
			return "", ErrTooManyPending
		}
		if account.Balance < req.Stake {
			return "", ErrInsufficientBalance
		}

		target := draw.Index(s.now()) + 1
		wager := models.PendingWager{
			ID:          models.NewID(),
			CreatedAt:   models.NowISO(),
			TargetCycle: target,
			Picks:       append([]string{}, req.Picks...),
			Stake:       req.Stake,
		}

		account.Balance -= req.Stake
		account.PendingWagers = append(account.PendingWagers, wager)
		placed = &wager

		return fmt.Sprintf("Place bet %s cycle=%d bet=%d", account.Username, target, req.Stake), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"cycle":   placed.TargetCycle,
		"stake":   placed.Stake,
		"picks":   placed.Picks,
	}).Info("bet placed")
	return placed, nil
}

// Pending lists the wagers still waiting on a cycle boundary.
func (s *LotteryService) Pending(ctx context.Context, userID string) ([]models.PendingWager, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.PendingWagers, nil
}

// History lists settled wagers, most recent last.
func (s *LotteryService) History(ctx context.Context, userID string) ([]models.WagerRecord, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account.History, nil
}
