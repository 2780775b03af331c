package circuitbreaker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// DBConfig holds configuration for the database circuit breaker.
type DBConfig struct {
	// MaxRequests is the number of trial requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear counts.
	Interval time.Duration

	// Timeout is how long to wait in open state before trying again.
	Timeout time.Duration

	// MinRequests is the minimum number of requests before the failure
	// ratio is evaluated.
	MinRequests uint32

	// FailureThreshold is the failure ratio that trips the circuit.
	FailureThreshold float64
}

// DefaultDBConfig opens after 5 consecutive failures with a 30 second cool-down.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 1.0,
	}
}

// DBCircuitBreaker wraps a database handle with circuit breaker protection.
// When the circuit is open, queries fail immediately with
// gobreaker.ErrOpenState without touching the pool.
type DBCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
	db *sql.DB
}

// NewDBCircuitBreaker creates a database circuit breaker with defaults.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DefaultDBConfig())
}

// NewDBCircuitBreakerWithConfig creates a database circuit breaker with
// custom configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg DBConfig) *DBCircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "database",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("database circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &DBCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker(settings),
		db: db,
	}
}

// QueryContext executes a query with circuit breaker protection.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Rows), nil
}

// ExecContext executes a statement with circuit breaker protection.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return result.(sql.Result), nil
}

// QueryRowContext executes a single-row query. sql.Row defers its error to
// Scan, so circuit breaker protection is limited here.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction with circuit breaker protection.
func (dcb *DBCircuitBreaker) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		return dcb.db.BeginTx(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return result.(*sql.Tx), nil
}

// IsOpen returns true if the database circuit is currently open.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.State() == gobreaker.StateOpen
}

// DB returns the underlying database handle for operations that do not
// need circuit breaker protection.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
