package draw

import "time"

const (
	// CycleDuration is the fixed draw cycle shared by every client.
	CycleDuration = 3 * time.Minute

	// BetCloseWindow closes bet intake this long before the next cycle starts.
	BetCloseWindow = 10 * time.Second
)

// Index returns the cycle index containing t. Cycle 0 starts at the Unix epoch.
func Index(t time.Time) int64 {
	return t.UnixMilli() / CycleDuration.Milliseconds()
}

// StartTime returns the instant cycle idx begins.
func StartTime(idx int64) time.Time {
	return time.UnixMilli(idx * CycleDuration.Milliseconds()).UTC()
}

// TimeToNext returns how long until the next cycle boundary after t.
func TimeToNext(t time.Time) time.Duration {
	return StartTime(Index(t) + 1).Sub(t)
}

// BettingClosed reports whether bet intake is closed at t, i.e. the next
// boundary is BetCloseWindow or less away. It flips open again the moment
// the boundary passes.
func BettingClosed(t time.Time) bool {
	return TimeToNext(t) <= BetCloseWindow
}
