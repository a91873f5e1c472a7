package services

// Broadcaster pushes live game events to connected clients.
type Broadcaster interface {
	BroadcastRoundUpdate(userID, roundID string, multiplier float64)
	BroadcastRoundCrash(userID, roundID string, crashPoint float64)
}
