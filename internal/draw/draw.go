// Package draw computes the deterministic lottery draw for a cycle.
//
// Every client derives the same shuffle of the 99 balls from nothing but the
// cycle index, so independent sessions agree on a result without a
// coordination round-trip. The generator is intentionally non-cryptographic:
// reproducibility is the contract, unpredictability is not.
package draw

import "fmt"

// BallCount is the size of the outcome space ("01".."99").
const BallCount = 99

// DrawnCount is how many balls count as drawn for match scoring.
const DrawnCount = 20

// Draw is the outcome of one cycle.
type Draw struct {
	Cycle  int64    `json:"cycle"`
	DrawAt string   `json:"draw_at"` // RFC3339, start of the cycle
	Balls  []string `json:"balls"`   // drawn subset, first DrawnCount of Order
	Order  []string `json:"order"`   // full shuffled outcome space
}

// seedFor folds "cycle:<idx>" through FNV-1a (32 bit).
func seedFor(idx int64) uint32 {
	key := fmt.Sprintf("cycle:%d", idx)
	seed := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		seed ^= uint32(key[i])
		seed *= 16777619
	}
	return seed
}

// xorshift32 expands a seed into a uniform stream in [0,1).
type xorshift32 struct{ x uint32 }

func (r *xorshift32) next() float64 {
	r.x ^= r.x << 13
	r.x ^= r.x >> 17
	r.x ^= r.x << 5
	return float64(r.x) / 4294967296
}

// ForCycle returns the draw for cycle idx. Same idx, same draw, always.
func ForCycle(idx int64) Draw {
	rnd := &xorshift32{x: seedFor(idx)}

	balls := make([]string, BallCount)
	for i := range balls {
		balls[i] = fmt.Sprintf("%02d", i+1)
	}
	for i := len(balls) - 1; i > 0; i-- {
		j := int(rnd.next() * float64(i+1))
		balls[i], balls[j] = balls[j], balls[i]
	}

	return Draw{
		Cycle:  idx,
		DrawAt: StartTime(idx).Format("2006-01-02T15:04:05.000Z"),
		Balls:  balls[:DrawnCount:DrawnCount],
		Order:  balls,
	}
}

// Contains reports whether ball is among the drawn subset.
func (d Draw) Contains(ball string) bool {
	for _, b := range d.Balls {
		if b == ball {
			return true
		}
	}
	return false
}

// Matches counts how many of picks are among the drawn subset.
func (d Draw) Matches(picks []string) int {
	n := 0
	for _, p := range picks {
		if d.Contains(p) {
			n++
		}
	}
	return n
}
