// Package pandas2redshift bulk-loads in-memory tabular data into a
// Redshift-compatible warehouse. Instead of row-by-row inserts, one load
// stages the dataset as a CSV object in S3 and issues a single COPY
// statement, then removes the staged object.
//
// The pipeline is strictly sequential: validate, ensure schema (optional),
// serialize and stage, truncate (optional), COPY, clean up. Once the staging
// object exists its deletion is attempted on every exit path; a failed
// deletion is reported as a warning and never masks the primary outcome.
//
// The warehouse connection handle is owned by the caller and should back at
// most one in-flight Insert at a time.
package pandas2redshift

import (
	"bytes"
	"context"
	"fmt"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
	"github.com/JorgeNachtigall/pandas2redshift/internal/logging"
	"github.com/JorgeNachtigall/pandas2redshift/staging"
	"github.com/JorgeNachtigall/pandas2redshift/typemap"
	"github.com/JorgeNachtigall/pandas2redshift/warehouse"
)

// LoadRequest carries everything one Insert call needs. It is read-only for
// the duration of the call; nothing is shared between calls.
type LoadRequest struct {
	// Data is the dataset to load. Required.
	Data *dataset.Dataset

	// Schema and Table address the target relation.
	Schema string
	Table  string

	// DB executes warehouse statements in the caller's transactional
	// context. *pgx.Conn, pgx.Tx and *pgxpool.Pool all qualify.
	DB warehouse.Execer

	// Store holds the staging artifact for the duration of the load.
	Store staging.Store

	// Credentials let the warehouse fetch the staged object itself.
	Credentials warehouse.Credentials

	// KeyPrefix is an optional path prefix for staging keys.
	KeyPrefix string

	// EnsureExists creates the schema and table (idempotently) before the
	// load. When false and the table is missing, the COPY fails with the
	// warehouse's own error.
	EnsureExists bool

	// TruncateTable empties the target before loading.
	TruncateTable bool

	// ColumnTypes overrides the inferred warehouse type per column name.
	// Every key must name an existing column.
	ColumnTypes map[string]string

	// TextWidth is the VARCHAR width for inferred text columns.
	// Zero means typemap.DefaultTextWidth.
	TextWidth int

	// CopyOptions replaces warehouse.DefaultCopyOptions. The options must
	// agree with the staging format; leave nil unless you know better.
	CopyOptions []string
}

// InvalidRequestError indicates a malformed LoadRequest, detected before any
// I/O is attempted.
type InvalidRequestError struct {
	Reason string
	Err    error
}

func (e *InvalidRequestError) Error() string {
	return "invalid load request: " + e.Reason
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// Insert loads the dataset into schema.table. On failure it returns one of
// *InvalidRequestError, *warehouse.InvalidIdentifierError,
// *typemap.UnsupportedTypeError, *staging.WriteError or
// *warehouse.ExecutionError; the original cause is always reachable through
// errors.As / errors.Is.
func Insert(ctx context.Context, req LoadRequest) error {
	if err := validateRequest(&req); err != nil {
		return err
	}

	target := warehouse.Target{Schema: req.Schema, Table: req.Table}
	gw := warehouse.NewGateway(req.DB)

	if err := warehouse.Ensure(ctx, gw, target, req.Data.Columns, req.ColumnTypes, req.TextWidth, req.EnsureExists); err != nil {
		return err
	}

	if req.Data.NumRows() == 0 {
		// Loading zero rows is a documented no-op: DDL and truncation are
		// still honored, but nothing is staged and no COPY runs.
		if req.TruncateTable {
			if err := gw.Execute(ctx, warehouse.BuildTruncate(target)); err != nil {
				return err
			}
		}
		logging.Debug("dataset for %s.%s is empty, skipping load", req.Schema, req.Table)
		return nil
	}

	payload, err := staging.Serialize(req.Data)
	if err != nil {
		return &InvalidRequestError{Reason: err.Error(), Err: err}
	}

	key := staging.NewKey(req.KeyPrefix, req.Table)
	location, err := req.Store.Put(ctx, key, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	// The artifact exists from here on: release it on every exit path.
	// Cleanup survives a canceled caller context, but not a process crash.
	defer func() {
		if derr := req.Store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			logging.Warn("staging cleanup failed: %v", derr)
		}
	}()

	if req.TruncateTable {
		if err := gw.Execute(ctx, warehouse.BuildTruncate(target)); err != nil {
			return err
		}
	}

	copySQL, logSQL, err := warehouse.BuildCopy(target, location, req.Credentials, req.CopyOptions)
	if err != nil {
		return &InvalidRequestError{Reason: err.Error(), Err: err}
	}
	if err := gw.ExecuteRedacted(ctx, copySQL, logSQL); err != nil {
		return err
	}

	logging.Info("loaded %d rows into %s.%s", req.Data.NumRows(), req.Schema, req.Table)
	return nil
}

// validateRequest fails fast on anything malformed before the pipeline
// touches the network. Identifier checks run here for all identifiers the
// pipeline will interpolate, whether or not DDL is requested.
func validateRequest(req *LoadRequest) error {
	if req.Data == nil {
		return &InvalidRequestError{Reason: "dataset is required"}
	}
	if req.DB == nil {
		return &InvalidRequestError{Reason: "warehouse connection is required"}
	}
	if req.Store == nil {
		return &InvalidRequestError{Reason: "object store is required"}
	}
	if req.Schema == "" || req.Table == "" {
		return &InvalidRequestError{Reason: "schema and table names are required"}
	}

	target := warehouse.Target{Schema: req.Schema, Table: req.Table}
	if err := target.Validate(); err != nil {
		return err
	}
	for _, c := range req.Data.Columns {
		if err := warehouse.ValidateIdentifier(c.Name); err != nil {
			return err
		}
	}

	if err := req.Data.Validate(); err != nil {
		return &InvalidRequestError{Reason: err.Error(), Err: err}
	}

	for key := range req.ColumnTypes {
		if !req.Data.HasColumn(key) {
			return &InvalidRequestError{Reason: fmt.Sprintf("column type spec references unknown column %q", key)}
		}
	}

	// Each column's semantic type must be mappable even when the load never
	// builds DDL, so unsupported types fail here instead of mid-pipeline.
	for _, c := range req.Data.Columns {
		if _, ok := req.ColumnTypes[c.Name]; ok {
			continue
		}
		if _, err := typemap.Map(c.Type); err != nil {
			return err
		}
	}

	if req.Data.NumRows() > 0 {
		if err := req.Credentials.Validate(); err != nil {
			return &InvalidRequestError{Reason: err.Error(), Err: err}
		}
	}
	return nil
}
