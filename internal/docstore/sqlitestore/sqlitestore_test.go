package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "docs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndList(t *testing.T) {
	t.Parallel()

	s := openTemp(t)
	ctx := context.Background()

	inst := docstore.Document{
		"_id":  "columbia",
		"name": "Columbia University",
		"departments": map[string]any{
			"apam": map[string]any{"name": "Applied Physics and Applied Mathematics"},
		},
	}
	if err := s.Put(ctx, "institutions", inst); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "institutions", docstore.Document{"_id": "bnl", "name": "Brookhaven"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.List(ctx, "institutions")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID() != "bnl" {
		t.Errorf("first id = %q, want bnl", got[0].ID())
	}
	deps, ok := got[1].Map("departments")
	if !ok {
		t.Fatal("departments not decoded as a map")
	}
	apam, ok := deps.Map("apam")
	if !ok {
		t.Fatal("apam department missing")
	}
	if name, _ := apam.String("name"); name != "Applied Physics and Applied Mathematics" {
		t.Errorf("department name = %q", name)
	}
}

func TestPutUpserts(t *testing.T) {
	t.Parallel()

	s := openTemp(t)
	ctx := context.Background()
	_ = s.Put(ctx, "groups", docstore.Document{"_id": "g1", "name": "old"})
	_ = s.Put(ctx, "groups", docstore.Document{"_id": "g1", "name": "new"})

	got, err := s.List(ctx, "groups")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if name, _ := got[0].String("name"); name != "new" {
		t.Errorf("name = %q, want new", name)
	}
}

func TestPutRequiresID(t *testing.T) {
	t.Parallel()

	if err := openTemp(t).Put(context.Background(), "people", docstore.Document{}); err == nil {
		t.Fatal("expected error for missing _id")
	}
}

func TestListUnknownIsEmpty(t *testing.T) {
	t.Parallel()

	got, err := openTemp(t).List(context.Background(), "contacts")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
