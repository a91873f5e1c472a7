package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Account struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"` // stored in the clear, as the shared document always has
	Role      Role   `json:"role"`
	Country   string `json:"country"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`

	Balance int64 `json:"balance"`

	PendingWagers []PendingWager `json:"pending_bets,omitempty"`
	History       []WagerRecord  `json:"history,omitempty"`

	RouletteHistory []RouletteRecord `json:"roulette_history,omitempty"`
	FruitHistory    []FruitRecord    `json:"fruit_history,omitempty"`
	CrashHistory    []CrashRecord    `json:"crash_history,omitempty"`
	ForexHistory    []ForexRecord    `json:"eurusd_history,omitempty"`

	Payments         *Payments     `json:"payments,omitempty"`
	LastCreditNotice *CreditNotice `json:"last_credit_notice,omitempty"`
}

// Payments holds the payout details a player registered. CO accounts carry
// local rails, everyone else is Binance only.
type Payments struct {
	Owner     string `json:"owner,omitempty"`
	Nequi     string `json:"nequi,omitempty"`
	Daviplata string `json:"daviplata,omitempty"`
	Binance   string `json:"binance,omitempty"`
}

// CreditNotice is the one-shot "your balance changed" banner. Negative
// amounts are admin deductions.
type CreditNotice struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	At       string `json:"at"`
	Seen     bool   `json:"seen"`
	Note     string `json:"note"`
}

// HasDueWagers reports whether any pending wager's target cycle has elapsed.
func (a *Account) HasDueWagers(currentCycle int64) bool {
	for _, w := range a.PendingWagers {
		if w.TargetCycle <= currentCycle {
			return true
		}
	}
	return false
}
