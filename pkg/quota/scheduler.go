// Package quota gates discretionary background work against the provider's
// daily request budget and the run's wall-clock window.
//
// The scheduler is a pure policy: it holds no quota state of its own. The
// caller reads (remaining, limit) from the provider and asks ShouldContinue
// before each unit of optional work, so pre-fetching can never starve the
// primary workflow of quota.
package quota

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultThreshold is the remaining-quota floor below which
	// discretionary work stops.
	DefaultThreshold = 30

	// DefaultCutoffHour and DefaultCutoffMinute mark the daily quota
	// reset in local time. Background runs are scheduled before it.
	DefaultCutoffHour   = 9
	DefaultCutoffMinute = 0

	// cutoffBuffer stops work shortly before the cutoff so in-flight
	// requests land inside the window.
	cutoffBuffer = 5 * time.Minute

	// DefaultTimezone is the IANA zone the cutoff is expressed in.
	DefaultTimezone = "Asia/Tokyo"
)

// Budget is the provider's daily request budget as reported by the caller.
type Budget struct {
	Remaining  int
	DailyLimit int
}

// Scheduler decides whether optional work may proceed given remaining quota
// and the current time. Safe for concurrent use; it is immutable after
// construction.
type Scheduler struct {
	threshold    int
	cutoffHour   int
	cutoffMinute int
	location     *time.Location
	logger       zerolog.Logger
	now          func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithThreshold overrides the remaining-quota floor.
func WithThreshold(n int) Option {
	return func(s *Scheduler) { s.threshold = n }
}

// WithCutoff overrides the daily cutoff time (local to the scheduler's
// timezone).
func WithCutoff(hour, minute int) Option {
	return func(s *Scheduler) {
		s.cutoffHour = hour
		s.cutoffMinute = minute
	}
}

// WithLocation overrides the timezone the cutoff is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.location = loc }
}

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithClock injects the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a scheduler with the default threshold, cutoff, and
// timezone. If the default timezone cannot be loaded the cutoff is
// evaluated in UTC.
func NewScheduler(opts ...Option) *Scheduler {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	s := &Scheduler{
		threshold:    DefaultThreshold,
		cutoffHour:   DefaultCutoffHour,
		cutoffMinute: DefaultCutoffMinute,
		location:     loc,
		logger:       log.With().Str("component", "quota-scheduler").Logger(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShouldContinue reports whether one more unit of discretionary work may
// run. It is false when remaining quota is below the threshold, or when the
// local time is within the buffer of (or past) the daily cutoff.
func (s *Scheduler) ShouldContinue(remaining int) bool {
	if remaining < s.threshold {
		s.logger.Info().
			Int("remaining", remaining).
			Int("threshold", s.threshold).
			Msg("Stopping: quota below threshold")
		return false
	}
	if !s.withinTimeLimit() {
		s.logger.Info().Msg("Stopping: approaching quota reset cutoff")
		return false
	}
	return true
}

// withinTimeLimit reports whether the local time is still before
// cutoff minus the buffer. Runs start before the cutoff, so any later
// time the same day counts as past it.
func (s *Scheduler) withinTimeLimit() bool {
	now := s.now().In(s.location)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(),
		s.cutoffHour, s.cutoffMinute, 0, 0, s.location)
	return now.Before(cutoff.Add(-cutoffBuffer))
}
