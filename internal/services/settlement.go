package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/draw"
	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

// WinThreshold is the minimum match count that pays out. Below it the stake
// is simply gone (it was debited at placement).
const WinThreshold = 3

// errNothingDue aborts an Update pass whose due set vanished on reload.
var errNothingDue = errors.New("nothing due")

// SettlementEngine is the periodic reconciliation loop: every tick it looks
// for wagers whose target cycle has elapsed, scores them against the
// deterministic draw, and persists the whole batch in one conditional
// write. A failed write is retried on the next tick; the due partitioning
// is deterministic, so re-running a pass never double-credits.
type SettlementEngine struct {
	store    store.Store
	log      *logrus.Entry
	now      func() time.Time
	interval time.Duration
	inFlight atomic.Bool
}

func NewSettlementEngine(st store.Store) *SettlementEngine {
	return &SettlementEngine{
		store:    st,
		log:      logrus.WithField("component", "settlement"),
		now:      time.Now,
		interval: time.Second,
	}
}

// Run ticks until ctx is cancelled.
func (e *SettlementEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.SettleDue(ctx); err != nil {
				e.log.WithError(err).Warn("settlement pass failed, will retry next tick")
			}
		}
	}
}

// SettleDue performs one settlement pass. Safe to call while a previous
// pass is still in flight; the overlap is dropped.
func (e *SettlementEngine) SettleDue(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer e.inFlight.Store(false)

	// Cheap due-check first so idle ticks cost one read and zero writes.
	snap, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	current := draw.Index(e.now())
	anyDue := false
	for _, u := range snap.Doc.Users {
		if u.HasDueWagers(current) {
			anyDue = true
			break
		}
	}
	if !anyDue {
		return nil
	}

	var settled, wins, accounts int
	err = store.Update(ctx, e.store, func(doc *models.Document) (string, error) {
		settled, wins, accounts = 0, 0, 0
		current := draw.Index(e.now())
		draws := make(map[int64]draw.Draw)

		for _, u := range doc.Users {
			n, w := settleAccount(u, current, draws)
			if n > 0 {
				accounts++
			}
			settled += n
			wins += w
		}
		if settled == 0 {
			return "", errNothingDue
		}
		return fmt.Sprintf("Resolve %d bets cycle=%d wins=%d", settled, current, wins), nil
	})
	if errors.Is(err, errNothingDue) {
		return nil
	}
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"cycle":    current,
		"accounts": accounts,
		"wagers":   settled,
		"wins":     wins,
	}).Info("settlement pass complete")
	return nil
}

// settleAccount resolves every due wager on one account against the draw of
// its own target cycle. Draws are cached across accounts within the pass.
func settleAccount(account *models.Account, current int64, draws map[int64]draw.Draw) (settled, wins int) {
	if !account.HasDueWagers(current) {
		return 0, 0
	}

	keep := account.PendingWagers[:0:0]
	for _, w := range account.PendingWagers {
		if w.TargetCycle > current {
			keep = append(keep, w)
			continue
		}

		d, ok := draws[w.TargetCycle]
		if !ok {
			d = draw.ForCycle(w.TargetCycle)
			draws[w.TargetCycle] = d
		}

		matches := d.Matches(w.Picks)

		// Stake was debited at placement. A win credits stake plus a
		// profit linear in the match count; a loss credits nothing.
		var credited, net int64
		net = -w.Stake
		if matches >= WinThreshold {
			profit := w.Stake * int64(matches)
			credited = w.Stake + profit
			net = profit
			account.Balance += credited
			wins++
		}

		account.History = append(account.History, models.WagerRecord{
			ID:         w.ID,
			ResolvedAt: models.NowISO(),
			Picks:      append([]string{}, w.Picks...),
			Stake:      w.Stake,
			Matches:    matches,
			Payout:     net,
			Credited:   credited,
			Cycle:      w.TargetCycle,
			DrawAt:     d.DrawAt,
		})
		settled++
	}

	account.PendingWagers = keep
	account.History = models.CapWagerHistory(account.History)
	return settled, wins
}
