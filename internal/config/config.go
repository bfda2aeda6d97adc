package config

import "time"

const (
	// Pomodoro timer
	WorkDuration  = 1500 // 25 minutes in seconds
	BreakDuration = 300  // 5 minutes in seconds

	// Presence
	PresenceWindow    = 30 * time.Second
	PresenceRetention = 24 * time.Hour
	PresencePurgeTick = time.Hour

	// Private room codes. The alphabet skips 0/O/I/1 so codes survive
	// being read aloud or copied by hand.
	CodeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength      = 6
	CodeMaxAttempts = 100
	CodeMaxLength   = 8

	// Sessions
	SessionLifetime = 72 * time.Hour
	TokenIssuer     = "studybuddy-service"
)
