// Package driver opens the document store selected by docstore.Config.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/preslist/internal/docstore"
	"github.com/linnemanlabs/preslist/internal/docstore/memstore"
	"github.com/linnemanlabs/preslist/internal/docstore/pgstore"
	"github.com/linnemanlabs/preslist/internal/docstore/sqlitestore"
	"github.com/linnemanlabs/preslist/internal/docstore/yamlstore"
)

// ErrPoolRequired is returned when the postgres driver is selected without a pool.
var ErrPoolRequired = errors.New("postgres doc driver requires a database url")

// Opened is an open document store plus its release hook.
type Opened struct {
	Store docstore.Store
	Close func() error
}

// Writer returns the store as a docstore.Writer when it accepts writes.
func (o Opened) Writer() (docstore.Writer, bool) {
	w, ok := o.Store.(docstore.Writer)
	return w, ok
}

// Open constructs the configured store. pool is only used by the postgres
// driver and remains owned by the caller.
func Open(ctx context.Context, c docstore.Config, pool *pgxpool.Pool) (Opened, error) {
	nop := func() error { return nil }
	switch docstore.Driver(c.Driver) {
	case docstore.DriverYAML, "":
		s, err := yamlstore.New(c.DataDir)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Store: s, Close: nop}, nil
	case docstore.DriverPostgres:
		if pool == nil {
			return Opened{}, ErrPoolRequired
		}
		s, err := pgstore.New(ctx, pool)
		if err != nil {
			return Opened{}, fmt.Errorf("docstore pgstore: %w", err)
		}
		return Opened{Store: s, Close: nop}, nil
	case docstore.DriverSQLite:
		s, err := sqlitestore.Open(ctx, c.SQLitePath)
		if err != nil {
			return Opened{}, err
		}
		return Opened{Store: s, Close: s.Close}, nil
	case docstore.DriverMemory:
		return Opened{Store: memstore.New(), Close: nop}, nil
	default:
		return Opened{}, fmt.Errorf("unknown doc driver %s", c.Driver)
	}
}

// Copy writes every document of the named collections from src into dst and
// returns how many were copied. Collections src does not know are skipped.
func Copy(ctx context.Context, dst docstore.Writer, src docstore.Store, collections []string) (int, error) {
	n := 0
	for _, name := range collections {
		docs, err := src.List(ctx, name)
		if errors.Is(err, docstore.ErrUnknownCollection) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", name, err)
		}
		for _, d := range docs {
			if err := dst.Put(ctx, name, d); err != nil {
				return n, fmt.Errorf("write %s/%s: %w", name, d.ID(), err)
			}
			n++
		}
	}
	return n, nil
}
