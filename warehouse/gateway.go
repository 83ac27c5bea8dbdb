package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JorgeNachtigall/pandas2redshift/internal/logging"
)

// Execer is the minimal statement-execution surface the loader needs.
// *pgx.Conn, pgx.Tx and *pgxpool.Pool all satisfy it, so the caller decides
// the transactional context. A single handle should back at most one
// in-flight load at a time; pgx connections are not safe for concurrent use.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ExecutionError wraps any failure reported by the warehouse while running a
// statement. Statement holds a loggable rendering (credentials redacted);
// the warehouse's original diagnostic text is preserved via Unwrap.
type ExecutionError struct {
	Statement string
	SQLState  string
	Err       error
}

func (e *ExecutionError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("warehouse execution failed (SQLSTATE %s): %v", e.SQLState, e.Err)
	}
	return fmt.Sprintf("warehouse execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Gateway executes statements against the warehouse. It does not retry and
// does not inspect statement content; ordering is the orchestrator's job.
type Gateway struct {
	db Execer
}

// NewGateway wraps a caller-owned connection, transaction or pool.
func NewGateway(db Execer) *Gateway {
	return &Gateway{db: db}
}

// Execute runs one statement and surfaces any failure as *ExecutionError.
func (g *Gateway) Execute(ctx context.Context, sql string) error {
	return g.ExecuteRedacted(ctx, sql, sql)
}

// ExecuteRedacted runs sql but logs and reports logSQL instead, so statements
// embedding credentials (COPY) never reach logs or error messages verbatim.
func (g *Gateway) ExecuteRedacted(ctx context.Context, sql, logSQL string) error {
	logging.Debug("executing: %s", logSQL)
	if _, err := g.db.Exec(ctx, sql); err != nil {
		execErr := &ExecutionError{Statement: logSQL, Err: err}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			execErr.SQLState = pgErr.Code
		}
		return execErr
	}
	return nil
}
