// Package pgstore provides a PostgreSQL implementation of docstore.Store.
// Each document is one JSONB row keyed by (collection, _id).
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/preslist/internal/docstore"
	"github.com/linnemanlabs/preslist/internal/postgres"
)

var tracer = otel.Tracer("github.com/linnemanlabs/preslist/internal/docstore/pgstore")

//go:embed schema.sql
var schema string

// Store reads and writes documents in PostgreSQL.
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

// List returns every document in the collection ordered by _id.
func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	ctx, span := tracer.Start(ctx, "pgstore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
		attribute.String("db.collection.name", collection),
	))
	defer span.End()
	ctx = postgres.WithCollection(ctx, collection)

	rows, err := s.pool.Query(ctx, `SELECT body FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var doc docstore.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("rows %s: %w", collection, err)
	}

	span.SetAttributes(attribute.Int("preslist.documents", len(docs)))
	return docs, nil
}

// Put inserts or replaces a document.
func (s *Store) Put(ctx context.Context, collection string, doc docstore.Document) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
		attribute.String("db.collection.name", collection),
	))
	defer span.End()
	ctx = postgres.WithCollection(ctx, collection)

	id := doc.ID()
	if id == "" {
		err := fmt.Errorf("pgstore: document in %s has no %s", collection, docstore.IDKey)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		collection, id, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}
