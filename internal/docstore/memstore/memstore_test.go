package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

func TestStore_PutAndList(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	if err := s.Put(ctx, "people", docstore.Document{"_id": "jdoe", "name": "Jane Doe"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "people", docstore.Document{"_id": "asmith", "name": "Al Smith"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.List(ctx, "people")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID() != "jdoe" || got[1].ID() != "asmith" {
		t.Errorf("order = [%s %s], want insertion order [jdoe asmith]", got[0].ID(), got[1].ID())
	}
}

func TestStore_ListUnknownCollection(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.List(context.Background(), "grants")
	if !errors.Is(err, docstore.ErrUnknownCollection) {
		t.Fatalf("err = %v, want ErrUnknownCollection", err)
	}

	s.Ensure("grants")
	docs, err := s.List(context.Background(), "grants")
	if err != nil {
		t.Fatalf("List after Ensure: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("len = %d, want 0", len(docs))
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	_ = s.Put(ctx, "groups", docstore.Document{"_id": "g1", "name": "old"})
	_ = s.Put(ctx, "groups", docstore.Document{"_id": "g1", "name": "new"})

	got, _ := s.List(ctx, "groups")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if name, _ := got[0].String("name"); name != "new" {
		t.Errorf("name = %q, want new", name)
	}
}

func TestStore_PutRequiresID(t *testing.T) {
	t.Parallel()

	if err := New().Put(context.Background(), "people", docstore.Document{"name": "x"}); err == nil {
		t.Fatal("expected error for document without _id")
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	_ = s.Put(ctx, "presentations", docstore.Document{"_id": "p1", "authors": []any{"a"}})

	first, _ := s.List(ctx, "presentations")
	first[0]["authors"] = "mutated"

	second, _ := s.List(ctx, "presentations")
	if _, ok := second[0]["authors"].([]any); !ok {
		t.Errorf("stored document was mutated through List result: %v", second[0]["authors"])
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, "people", docstore.Document{"_id": fmt.Sprintf("p-%d", i)})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.List(ctx, "people")
		}()
	}
	wg.Wait()

	docs, err := s.List(ctx, "people")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 50 {
		t.Errorf("len = %d, want 50", len(docs))
	}
}
