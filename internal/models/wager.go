package models

// HistoryCap bounds every per-account history list. Oldest entries fall off.
const HistoryCap = 200

// PendingWager is a lottery bet waiting for its target cycle's draw. The
// stake is deducted the moment the wager is created, not when it resolves.
type PendingWager struct {
	ID          string   `json:"id"`
	CreatedAt   string   `json:"created_at"`
	TargetCycle int64    `json:"target_cycle"`
	Picks       []string `json:"pick"`
	Stake       int64    `json:"bet"`
}

// WagerRecord is the resolved form of a PendingWager. Payout is the net
// result: profit on a win, -stake on a loss.
type WagerRecord struct {
	ID         string   `json:"id"`
	ResolvedAt string   `json:"at"`
	Picks      []string `json:"pick"`
	Stake      int64    `json:"bet"`
	Matches    int      `json:"matches"`
	Payout     int64    `json:"payout"`
	Credited   int64    `json:"credited"`
	Cycle      int64    `json:"cycle"`
	DrawAt     string   `json:"draw_at"`
}

type RouletteRecord struct {
	At     string `json:"at"`
	Bet    string `json:"bet"` // human summary of the selections
	Amount int64  `json:"amount"`
	Result int    `json:"result"`
	Payout int64  `json:"payout"`
}

type FruitRecord struct {
	At     string         `json:"at"`
	Bets   map[string]int `json:"bets"`
	Total  int64          `json:"total"`
	Winner string         `json:"winner"`
	Bonus  *FruitBonus    `json:"bonus,omitempty"`
	Payout int64          `json:"payout"`
}

// FruitBonus records the two extra outcomes of an ONCE MORE spin.
type FruitBonus struct {
	Outcomes []string `json:"outcomes"`
	Payouts  []int64  `json:"payouts"`
}

type CrashRecord struct {
	At         string  `json:"at"`
	RoundID    string  `json:"round_id"`
	Stake      int64   `json:"bet"`
	CrashPoint float64 `json:"crash_point"`
	CashoutAt  float64 `json:"cashout_at,omitempty"`
	Payout     int64   `json:"payout"` // credited amount, 0 on a crash
	Won        bool    `json:"won"`
}

// ForexRecord is one resolved EUR/USD binary bet. Payout is the credited
// amount, zero on a loss; a final price equal to the entry loses.
type ForexRecord struct {
	At         string  `json:"at"`
	BetID      string  `json:"bet_id"`
	Side       string  `json:"side"` // buy or sell
	Stake      int64   `json:"bet"`
	EntryPrice float64 `json:"entry_price"`
	FinalPrice float64 `json:"final_price"`
	Won        bool    `json:"won"`
	Payout     int64   `json:"payout"`
}

// CapWagerHistory trims h to the newest HistoryCap entries.
func CapWagerHistory(h []WagerRecord) []WagerRecord {
	if len(h) > HistoryCap {
		return h[len(h)-HistoryCap:]
	}
	return h
}
