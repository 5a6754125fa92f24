// Package sqlitestore keeps collections in a single SQLite file, one JSON
// row per document.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// Store reads and writes documents in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "preslist.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		body       TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every document in the collection ordered by _id.
func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var docs []docstore.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var doc docstore.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", collection, err)
	}
	return docs, nil
}

// Put inserts or replaces a document.
func (s *Store) Put(ctx context.Context, collection string, doc docstore.Document) error {
	id := doc.ID()
	if id == "" {
		return fmt.Errorf("sqlitestore: document in %s has no %s", collection, docstore.IDKey)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body`,
		collection, id, string(body)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}
