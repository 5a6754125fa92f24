// Package pgstore provides a PostgreSQL implementation of build.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/preslist/internal/build"
)

var tracer = otel.Tracer("github.com/linnemanlabs/preslist/internal/build/pgstore")

//go:embed schema.sql
var schema string

// Store persists build runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on pool and returns a ready Store. The caller owns the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const runColumns = `id, fingerprint, status, request, outputs, warnings, skipped, error,
	created_at, completed_at, duration_s`

// Get retrieves a build run by ID.
//
//nolint:dupl // similar structure to GetByFingerprint is intentional
func (s *Store) Get(ctx context.Context, id string) (*build.Run, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + runColumns + ` FROM build_runs WHERE id = $1`
	r, err := scanRun(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	return r, r != nil, nil
}

// GetByFingerprint retrieves the most recent build run for a fingerprint.
//
//nolint:dupl // similar structure to Get is intentional
func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (*build.Run, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByFingerprint", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + runColumns + ` FROM build_runs WHERE fingerprint = $1 ORDER BY created_at DESC LIMIT 1`
	r, err := scanRun(s.pool.QueryRow(ctx, query, fingerprint))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	return r, r != nil, nil
}

// Put inserts or updates a build run.
func (s *Store) Put(ctx context.Context, r *build.Run) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	requestJSON, err := json.Marshal(r.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	outputsJSON, err := json.Marshal(nonNil(r.Outputs))
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	warningsJSON, err := json.Marshal(nonNil(r.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	var completedAt *time.Time
	if !r.CompletedAt.IsZero() {
		completedAt = &r.CompletedAt
	}

	query := `INSERT INTO build_runs (` + runColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (id) DO UPDATE SET
		fingerprint  = EXCLUDED.fingerprint,
		status       = EXCLUDED.status,
		request      = EXCLUDED.request,
		outputs      = EXCLUDED.outputs,
		warnings     = EXCLUDED.warnings,
		skipped      = EXCLUDED.skipped,
		error        = EXCLUDED.error,
		completed_at = EXCLUDED.completed_at,
		duration_s   = EXCLUDED.duration_s`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.Fingerprint, string(r.Status), requestJSON, outputsJSON, warningsJSON, r.Skipped, r.Error,
		r.CreatedAt, completedAt, r.Duration,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert build run: %w", err)
	}
	return nil
}

// scanRun scans a single row into a build.Run.
// Returns (nil, nil) when no row is found.
func scanRun(row pgx.Row) (*build.Run, error) {
	var (
		r            build.Run
		status       string
		requestJSON  []byte
		outputsJSON  []byte
		warningsJSON []byte
		completedAt  *time.Time
	)

	err := row.Scan(
		&r.ID, &r.Fingerprint, &status, &requestJSON, &outputsJSON, &warningsJSON, &r.Skipped, &r.Error,
		&r.CreatedAt, &completedAt, &r.Duration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.Status = build.Status(status)
	if completedAt != nil {
		r.CompletedAt = *completedAt
	}
	if err := json.Unmarshal(requestJSON, &r.Request); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	if err := json.Unmarshal(outputsJSON, &r.Outputs); err != nil {
		return nil, fmt.Errorf("unmarshal outputs: %w", err)
	}
	if err := json.Unmarshal(warningsJSON, &r.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return &r, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
