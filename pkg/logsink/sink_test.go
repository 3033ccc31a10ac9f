package logsink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExecer struct {
	args []any
	err  error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

type countingSink struct {
	records []Record
	results []ActionResult
	err     error
}

func (c *countingSink) LogData(ctx context.Context, record Record) error {
	c.records = append(c.records, record)
	return c.err
}

func (c *countingSink) ActionResult(ctx context.Context, result ActionResult) error {
	c.results = append(c.results, result)
	return c.err
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))
	ctx := context.Background()

	require.NoError(t, sink.LogData(ctx, Record{Status: StatusFailed, Component: "cleverreach", Description: "boom"}))
	require.NoError(t, sink.LogData(ctx, Record{Status: StatusSuccess, Component: "cleverreach"}))
	require.NoError(t, sink.ActionResult(ctx, ActionResult{Status: StatusFailed, Note: "skipped"}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["description"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "skipped", entries[2].ContextMap()["note"])
}

func TestPostgresSink_LogData(t *testing.T) {
	db := &fakeExecer{}
	sink := NewPostgresSink(db, zap.NewNop())
	fixed := time.Unix(1_700_000_000, 0)
	sink.now = func() time.Time { return fixed }

	err := sink.LogData(context.Background(), Record{
		ParentSourceID: "3",
		SourceType:     SourceSubmissionItem,
		SourceID:       "99",
		Component:      "cleverreach",
		Status:         StatusSuccess,
		Title:          "Newsletter feed",
		Description:    "pushed",
	})
	require.NoError(t, err)

	require.Len(t, db.args, 9)
	_, isUUID := db.args[0].(uuid.UUID)
	assert.True(t, isUUID)
	assert.Equal(t, "3", db.args[1])
	assert.Equal(t, "99", db.args[3])
	assert.Equal(t, StatusSuccess, db.args[5])
	assert.Equal(t, fixed, db.args[8])
}

func TestPostgresSink_LogDataError(t *testing.T) {
	sink := NewPostgresSink(&fakeExecer{err: errors.New("relation does not exist")}, zap.NewNop())

	err := sink.LogData(context.Background(), Record{Status: StatusFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestMulti_FansOut(t *testing.T) {
	a := &countingSink{err: errors.New("first")}
	b := &countingSink{}
	m := Multi{a, b}

	err := m.LogData(context.Background(), Record{Status: StatusSuccess})
	assert.EqualError(t, err, "first")
	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)

	_ = m.ActionResult(context.Background(), ActionResult{Status: StatusFailed})
	assert.Len(t, a.results, 1)
	assert.Len(t, b.results, 1)
}

func TestMulti_CombinesErrors(t *testing.T) {
	m := Multi{&countingSink{err: errors.New("first")}, &countingSink{err: errors.New("second")}}

	err := m.LogData(context.Background(), Record{Status: StatusFailed})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "second")
}
