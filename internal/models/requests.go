package models

import "fmt"

const (
	MinPicks = 3
	MaxPicks = 5

	MinStake int64 = 100
	MaxStake int64 = 4000

	// MaxPendingWagers is a soft cap so an account cannot queue bets forever.
	MaxPendingWagers = 50
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Country  string `json:"country" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PlaceBetRequest struct {
	Picks []string `json:"pick" binding:"required"`
	Stake int64    `json:"bet" binding:"required"`
}

func (r *PlaceBetRequest) Validate() error {
	if len(r.Picks) < MinPicks || len(r.Picks) > MaxPicks {
		return fmt.Errorf("pick %d to %d numbers", MinPicks, MaxPicks)
	}
	seen := make(map[string]bool, len(r.Picks))
	for _, p := range r.Picks {
		if !ValidPick(p) {
			return fmt.Errorf("invalid number %q", p)
		}
		if seen[p] {
			return fmt.Errorf("duplicate number %q", p)
		}
		seen[p] = true
	}
	if r.Stake < MinStake || r.Stake > MaxStake {
		return fmt.Errorf("bet must be %d-%d", MinStake, MaxStake)
	}
	return nil
}

// RouletteSelection is one spot on the betting table. Units is how many
// chips the player stacked on it.
type RouletteSelection struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	Units int    `json:"units"`
}

type RouletteSpinRequest struct {
	Unit       int64               `json:"unit" binding:"required"`
	Selections []RouletteSelection `json:"selections" binding:"required"`
}

type FruitSpinRequest struct {
	Bets map[string]int `json:"bets" binding:"required"`
}

type CrashBetRequest struct {
	Stake int64 `json:"bet" binding:"required"`
}

func (r *CrashBetRequest) Validate() error {
	if r.Stake < MinStake || r.Stake > MaxStake {
		return fmt.Errorf("bet must be %d-%d", MinStake, MaxStake)
	}
	return nil
}

type CrashCashoutRequest struct {
	RoundID string `json:"round_id" binding:"required"`
}

// Forex stake bounds depend on the account's currency: Colombian accounts
// bet in COP thousands, everyone else in single dollars.
const (
	ForexMinStakeCO  int64 = 1000
	ForexMaxStakeCO  int64 = 20000
	ForexStakeStepCO int64 = 1000

	ForexMinStakeUSD  int64 = 1
	ForexMaxStakeUSD  int64 = 20
	ForexStakeStepUSD int64 = 1
)

type ForexBetRequest struct {
	Side  string `json:"side" binding:"required"`
	Stake int64  `json:"bet" binding:"required"`
}

func (r *ForexBetRequest) Validate() error {
	if r.Side != "buy" && r.Side != "sell" {
		return fmt.Errorf("side must be buy or sell")
	}
	return nil
}

// ValidateStake checks the bounds and step for the account's country.
func (r *ForexBetRequest) ValidateStake(country string) error {
	min, max, step := ForexMinStakeUSD, ForexMaxStakeUSD, ForexStakeStepUSD
	if country == "CO" {
		min, max, step = ForexMinStakeCO, ForexMaxStakeCO, ForexStakeStepCO
	}
	if r.Stake < min || r.Stake > max || r.Stake%step != 0 {
		return fmt.Errorf("bet must be %d-%d in steps of %d", min, max, step)
	}
	return nil
}

type AdminBalanceRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Delta  int64  `json:"delta" binding:"required"`
}

type AdminPasswordRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}
