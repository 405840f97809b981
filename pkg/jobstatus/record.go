// Package jobstatus tracks per-job processing state in a CSV table persisted
// through a document store, giving repeated runs cross-run idempotence: a job
// already completed is skipped, a failed one is retried until the attempt
// budget is spent.
package jobstatus

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// Status is the processing state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
	StatusPartial    Status = "partial"
)

const (
	// MaxRetryAttempts is the failed-attempt budget per job. A job whose
	// failed attempts reach it is no longer processable.
	MaxRetryAttempts = 3

	// RetentionDays bounds the table: rows scheduled further back are
	// pruned on every write. Rows without a scheduled time are kept.
	RetentionDays = 30

	// TablePath is the logical path of the status table in the store.
	TablePath = "schedule/job_status.csv"
)

// Record is one row of the status table.
type Record struct {
	JobID          string
	ScheduledAt    time.Time
	Status         Status
	FirstAttemptAt time.Time
	LastAttemptAt  time.Time
	Attempts       int
	ErrorMessage   string
}

var columns = []string{
	"job_id",
	"scheduled_time",
	"status",
	"first_attempt_at",
	"last_attempt_at",
	"attempts",
	"error_message",
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// encodeTable renders records as CSV with a header row.
func encodeTable(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.JobID,
			formatTime(r.ScheduledAt),
			string(r.Status),
			formatTime(r.FirstAttemptAt),
			formatTime(r.LastAttemptAt),
			strconv.Itoa(r.Attempts),
			r.ErrorMessage,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeTable parses the CSV table. Unparseable fields degrade to zero
// values; a structurally broken file is an error so the caller can fall
// back to an empty table.
func decodeTable(data []byte) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse status table: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Map header positions so column reordering in hand-edited tables
	// still parses.
	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		attempts, _ := strconv.Atoi(field(row, "attempts"))
		records = append(records, Record{
			JobID:          field(row, "job_id"),
			ScheduledAt:    parseTime(field(row, "scheduled_time")),
			Status:         Status(field(row, "status")),
			FirstAttemptAt: parseTime(field(row, "first_attempt_at")),
			LastAttemptAt:  parseTime(field(row, "last_attempt_at")),
			Attempts:       attempts,
			ErrorMessage:   field(row, "error_message"),
		})
	}
	return records, nil
}
