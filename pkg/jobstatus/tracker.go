package jobstatus

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matchday-tools/apiclient/pkg/store"
)

// Tracker manages the job-status table. Every mark operation reads the
// whole table, upserts one row, sorts, prunes, and writes the table back.
// That pattern is only safe under a single writer; concurrent runs can
// lose updates.
type Tracker struct {
	store  store.Store
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPath overrides the table path in the store.
func WithPath(path string) Option {
	return func(t *Tracker) { t.path = path }
}

// WithLogger overrides the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock injects the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker persisting through s at TablePath.
func NewTracker(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		path:   TablePath,
		logger: log.With().Str("component", "job-status").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// load reads the table. A missing or unreadable table is an empty one:
// the conservative answer is "nothing has been processed yet", which
// means more work, never less.
func (t *Tracker) load(ctx context.Context) []Record {
	data := t.store.Read(ctx, t.path)
	if data == nil {
		return nil
	}
	records, err := decodeTable(data)
	if err != nil {
		t.logger.Warn().Err(err).Str("path", t.path).
			Msg("Treating unreadable status table as empty")
		return nil
	}
	return records
}

// Get returns the record for jobID, if one exists.
func (t *Tracker) Get(ctx context.Context, jobID string) (Record, bool) {
	for _, r := range t.load(ctx) {
		if r.JobID == jobID {
			return r, true
		}
	}
	return Record{}, false
}

// All returns every record in the table, newest scheduled time first.
func (t *Tracker) All(ctx context.Context) []Record {
	return t.load(ctx)
}

// IsProcessable reports whether jobID should be worked on: true when the
// job was never recorded, is pending, processing, or partial, or failed
// with attempts still under budget. Only complete jobs and jobs that
// exhausted their failed attempts are skipped.
func (t *Tracker) IsProcessable(ctx context.Context, jobID string) bool {
	r, ok := t.Get(ctx, jobID)
	if !ok {
		t.logger.Debug().Str("job_id", jobID).Msg("Processable: no prior record")
		return true
	}

	switch {
	case r.Status == StatusComplete:
		t.logger.Debug().Str("job_id", jobID).
			Time("last_attempt_at", r.LastAttemptAt).
			Msg("Skipping: already complete")
		return false
	case r.Status == StatusPartial:
		t.logger.Info().Str("job_id", jobID).
			Msg("Processable: partial result, retrying missing content")
		return true
	case r.Status == StatusFailed && r.Attempts >= MaxRetryAttempts:
		t.logger.Warn().Str("job_id", jobID).
			Int("attempts", r.Attempts).
			Int("max_attempts", MaxRetryAttempts).
			Msg("Skipping: retry budget exhausted")
		return false
	default:
		t.logger.Debug().Str("job_id", jobID).
			Str("status", string(r.Status)).
			Int("attempts", r.Attempts).
			Msg("Processable")
		return true
	}
}

// MarkProcessing records that work on jobID started, stamping its
// scheduled time. Does not count against the retry budget.
func (t *Tracker) MarkProcessing(ctx context.Context, jobID string, scheduledAt time.Time) error {
	return t.update(ctx, jobID, StatusProcessing, &scheduledAt, "", false)
}

// MarkComplete records terminal success for jobID.
func (t *Tracker) MarkComplete(ctx context.Context, jobID string) error {
	return t.update(ctx, jobID, StatusComplete, nil, "", false)
}

// MarkFailed records a failed attempt and spends one unit of the retry
// budget.
func (t *Tracker) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	return t.update(ctx, jobID, StatusFailed, nil, errMsg, true)
}

// MarkPartial records that jobID ran but some required content was
// missing. Partial runs stay retryable forever; they never spend the
// retry budget.
func (t *Tracker) MarkPartial(ctx context.Context, jobID string, missing []string) error {
	return t.update(ctx, jobID, StatusPartial, nil, "Missing: "+strings.Join(missing, ", "), false)
}

func (t *Tracker) update(ctx context.Context, jobID string, status Status, scheduledAt *time.Time, errMsg string, incrementAttempts bool) error {
	records := t.load(ctx)
	now := t.now()

	found := false
	for i := range records {
		if records[i].JobID != jobID {
			continue
		}
		records[i].Status = status
		records[i].LastAttemptAt = now
		if scheduledAt != nil {
			records[i].ScheduledAt = *scheduledAt
		}
		if errMsg != "" {
			records[i].ErrorMessage = errMsg
		}
		if incrementAttempts {
			records[i].Attempts++
		}
		found = true
		break
	}

	if !found {
		attempts := 0
		if incrementAttempts {
			attempts = 1
		}
		r := Record{
			JobID:          jobID,
			Status:         status,
			FirstAttemptAt: now,
			LastAttemptAt:  now,
			Attempts:       attempts,
			ErrorMessage:   errMsg,
		}
		if scheduledAt != nil {
			r.ScheduledAt = *scheduledAt
		}
		records = append(records, r)
	}

	records = sortAndPrune(records, now)
	return t.write(ctx, records)
}

// CleanupOldRecords drops rows scheduled more than days ago and reports
// how many were removed. Rows without a scheduled time are kept.
func (t *Tracker) CleanupOldRecords(ctx context.Context, days int) (int, error) {
	records := t.load(ctx)
	kept := prune(records, t.now(), days)
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := t.write(ctx, kept); err != nil {
		return 0, err
	}
	t.logger.Info().Int("removed", removed).Int("retention_days", days).
		Msg("Pruned old status records")
	return removed, nil
}

// write persists the table. Failures are logged and returned, but nothing
// is rolled back: the in-memory decisions of the current run stand, the
// table is only the cross-run memory.
func (t *Tracker) write(ctx context.Context, records []Record) error {
	data, err := encodeTable(records)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to encode status table")
		return err
	}
	if err := t.store.Write(ctx, t.path, data); err != nil {
		t.logger.Error().Err(err).Str("path", t.path).
			Msg("Failed to persist status table")
		return err
	}
	return nil
}

func sortAndPrune(records []Record, now time.Time) []Record {
	// Newest scheduled time first; rows without one sink to the bottom.
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ScheduledAt, records[j].ScheduledAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
	return prune(records, now, RetentionDays)
}

func prune(records []Record, now time.Time, days int) []Record {
	cutoff := now.AddDate(0, 0, -days).Format("2006-01-02")
	kept := records[:0:0]
	for _, r := range records {
		if r.ScheduledAt.IsZero() || r.ScheduledAt.Format("2006-01-02") >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}
