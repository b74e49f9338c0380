package scheduling

import "time"

// Policy holds the tunable constants of the engine.
type Policy struct {
	MaxPartySize int

	// Fallback durations, in minutes, used when the estimator cannot answer.
	SmallPartyMax     int
	SmallPartyMinutes int
	LargePartyMin     int
	LargePartyMinutes int
	DefaultMinutes    int

	MaxWait           time.Duration
	EstimatorTimeout  time.Duration
	LookbackWindow    time.Duration
	SelectionAttempts int
	// LockRetryBackoff is the first pause after losing a table lock. It
	// doubles on each further attempt.
	LockRetryBackoff time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxPartySize:      20,
		SmallPartyMax:     2,
		SmallPartyMinutes: 90,
		LargePartyMin:     6,
		LargePartyMinutes: 150,
		DefaultMinutes:    120,
		MaxWait:           240 * time.Minute,
		EstimatorTimeout:  3 * time.Second,
		LookbackWindow:    24 * time.Hour,
		SelectionAttempts: 3,
		LockRetryBackoff:  25 * time.Millisecond,
	}
}

func (p Policy) FallbackDuration(partySize int) int {
	switch {
	case partySize <= p.SmallPartyMax:
		return p.SmallPartyMinutes
	case partySize >= p.LargePartyMin:
		return p.LargePartyMinutes
	default:
		return p.DefaultMinutes
	}
}
