// Package logsink records the outcome of integration runs for the form
// builder's submission log.
package logsink

import (
	"context"
	"time"

	"go.uber.org/multierr"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	SourceSubmissionItem = "submission_item"
)

// Record is one submission log entry.
type Record struct {
	ParentSourceID string    `json:"parent_source_id"`
	SourceType     string    `json:"source_type"`
	SourceID       string    `json:"source_id"`
	Component      string    `json:"component"`
	Status         string    `json:"status"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// ActionResult reports what happened to a feed when no submission log entry
// is written, e.g. a skipped API call.
type ActionResult struct {
	FeedID   string `json:"feed_id"`
	FeedName string `json:"feed_name"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

// Sink receives integration outcomes.
type Sink interface {
	LogData(ctx context.Context, record Record) error
	ActionResult(ctx context.Context, result ActionResult) error
}

// Multi fans every event out to all sinks and combines their errors.
type Multi []Sink

func (m Multi) LogData(ctx context.Context, record Record) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.LogData(ctx, record))
	}
	return errs
}

func (m Multi) ActionResult(ctx context.Context, result ActionResult) error {
	var errs error
	for _, s := range m {
		errs = multierr.Append(errs, s.ActionResult(ctx, result))
	}
	return errs
}
