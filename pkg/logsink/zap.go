package logsink

import (
	"context"

	"go.uber.org/zap"
)

// ZapSink writes integration outcomes as structured log lines.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.Named("submission_log")}
}

func (s *ZapSink) LogData(ctx context.Context, record Record) error {
	fields := []zap.Field{
		zap.String("parent_source_id", record.ParentSourceID),
		zap.String("source_type", record.SourceType),
		zap.String("source_id", record.SourceID),
		zap.String("component", record.Component),
		zap.String("status", record.Status),
		zap.String("title", record.Title),
		zap.String("description", record.Description),
	}
	if record.Status == StatusFailed {
		s.logger.Warn("Integration run failed", fields...)
		return nil
	}
	s.logger.Info("Integration run succeeded", fields...)
	return nil
}

func (s *ZapSink) ActionResult(ctx context.Context, result ActionResult) error {
	s.logger.Info("Integration action result",
		zap.String("feed_id", result.FeedID),
		zap.String("feed_name", result.FeedName),
		zap.String("status", result.Status),
		zap.String("note", result.Note))
	return nil
}
