package logsink

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Execer is the subset of the postgres pool the sink needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores submission log entries in fluentform_logs. Action
// results are not persisted there and only go to the logger.
type PostgresSink struct {
	db     Execer
	logger *zap.Logger
	now    func() time.Time
}

func NewPostgresSink(db Execer, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{db: db, logger: logger, now: time.Now}
}

func (s *PostgresSink) LogData(ctx context.Context, record Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}
	id := uuid.New()

	_, err := s.db.Exec(ctx, `
		INSERT INTO fluentform_logs
			(id, parent_source_id, source_type, source_id, component, status, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, record.ParentSourceID, record.SourceType, record.SourceID, record.Component,
		record.Status, record.Title, record.Description, record.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to store submission log",
			zap.String("source_id", record.SourceID),
			zap.Error(err))
		return fmt.Errorf("failed to store submission log: %w", err)
	}

	s.logger.Debug("Stored submission log", zap.String("log_id", id.String()), zap.String("status", record.Status))
	return nil
}

func (s *PostgresSink) ActionResult(ctx context.Context, result ActionResult) error {
	s.logger.Info("Integration action result",
		zap.String("feed_id", result.FeedID),
		zap.String("status", result.Status),
		zap.String("note", result.Note))
	return nil
}
