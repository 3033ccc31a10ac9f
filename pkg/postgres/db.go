package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// DB is the pgx pool shared by the option store and the submission log sink.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Config is read from the DB_* environment variables.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Schema creates the tables this service owns.
const Schema = `
CREATE TABLE IF NOT EXISTS options (
	option_name  TEXT PRIMARY KEY,
	option_value JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fluentform_logs (
	id               UUID PRIMARY KEY,
	parent_source_id TEXT NOT NULL,
	source_type      TEXT NOT NULL,
	source_id        TEXT NOT NULL,
	component        TEXT NOT NULL,
	status           TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// NewConfig reads DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and
// DB_SSLMODE. An unparsable port falls back to 5432.
func NewConfig() *Config {
	cfg := &Config{
		Host:            envOr("DB_HOST", "localhost"),
		Port:            5432,
		User:            envOr("DB_USER", "postgres"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        envOr("DB_NAME", "ffcleverreach"),
		SSLMode:         envOr("DB_SSLMODE", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 30 * time.Minute,
	}
	if port, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil && port > 0 {
		cfg.Port = port
	}
	return cfg
}

// DSN renders the config as a postgres:// URL.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// New opens a pool and pings it once before returning.
func New(cfg *Config, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	poolCfg.MaxConns, poolCfg.MinConns = cfg.MaxConns, cfg.MinConns
	poolCfg.MaxConnLifetime, poolCfg.MaxConnIdleTime = cfg.MaxConnLifetime, cfg.MaxConnIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("could not open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres unreachable at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("Connected to postgres",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &DB{pool: pool, logger: logger}, nil
}

func (db *DB) Close() {
	if db == nil || db.pool == nil {
		return
	}
	db.pool.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// QueryRow runs a query expected to return at most one row.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// Exec runs a statement that returns no rows.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

// InitSchema creates the options and fluentform_logs tables if missing.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	db.logger.Info("Postgres schema ready")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
