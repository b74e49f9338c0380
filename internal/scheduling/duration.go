package scheduling

import (
	"context"
	"time"
)

const (
	SourceModel    = "ml-model"
	SourceFallback = "fallback"
)

// DurationEstimator predicts how long a party will hold a table, in minutes.
type DurationEstimator interface {
	PredictDuration(ctx context.Context, partySize, dayOfWeek, hourOfDay int) (int, error)
}

type DurationEstimate struct {
	Minutes int    `json:"duration"`
	Source  string `json:"source"`
}

// EstimateDuration asks the estimator with a bounded timeout and falls back to
// the policy on any failure. It never returns an error.
func (s *Scheduler) EstimateDuration(ctx context.Context, partySize int, at time.Time) DurationEstimate {
	local := at.In(s.loc)
	return s.estimate(ctx, partySize, int(local.Weekday()), local.Hour())
}

// EstimateDurationFor is EstimateDuration with day and hour already resolved.
func (s *Scheduler) EstimateDurationFor(ctx context.Context, partySize, dayOfWeek, hourOfDay int) DurationEstimate {
	return s.estimate(ctx, partySize, dayOfWeek, hourOfDay)
}

func (s *Scheduler) estimate(ctx context.Context, partySize, dayOfWeek, hourOfDay int) DurationEstimate {
	fallback := DurationEstimate{Minutes: s.policy.FallbackDuration(partySize), Source: SourceFallback}
	if s.estimator == nil {
		return fallback
	}

	estCtx, cancel := context.WithTimeout(ctx, s.policy.EstimatorTimeout)
	defer cancel()

	type result struct {
		minutes int
		err     error
	}
	done := make(chan result, 1)
	go func() {
		minutes, err := s.estimator.PredictDuration(estCtx, partySize, dayOfWeek, hourOfDay)
		done <- result{minutes: minutes, err: err}
	}()

	var minutes int
	var err error
	select {
	case r := <-done:
		minutes, err = r.minutes, r.err
	case <-estCtx.Done():
		err = estCtx.Err()
	}

	if err != nil {
		s.log.Warn("Duration estimator failed, using fallback",
			"party_size", partySize,
			"fallback_minutes", fallback.Minutes,
			"error", err,
		)
		return fallback
	}
	if minutes <= 0 {
		s.log.Warn("Duration estimator returned non-positive duration, using fallback",
			"party_size", partySize,
			"minutes", minutes,
		)
		return fallback
	}

	return DurationEstimate{Minutes: minutes, Source: SourceModel}
}
