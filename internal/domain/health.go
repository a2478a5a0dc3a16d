package domain

import "time"

// PlayerHealth is a point-in-time view of the player control channel.
type PlayerHealth struct {
	Connected   bool
	SocketPath  string
	Spawns      int64
	LastSpawnAt *time.Time
	LastError   string
	LastErrorAt *time.Time
}
