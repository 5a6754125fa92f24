package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/linnemanlabs/preslist/internal/build"
	"github.com/linnemanlabs/preslist/internal/preslist"
)

func TestStore_PutAndGet(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	r := &build.Run{ID: "b-1", Fingerprint: "fp-1", Status: build.StatusPending}
	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "b-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected run to be found")
	}
	if got.ID != "b-1" {
		t.Errorf("ID = %q, want %q", got.ID, "b-1")
	}
	if got.Fingerprint != "fp-1" {
		t.Errorf("Fingerprint = %q, want %q", got.Fingerprint, "fp-1")
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := New()
	_, ok, err := s.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing ID")
	}
}

func TestStore_GetByFingerprintLatest(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	_ = s.Put(ctx, &build.Run{ID: "old", Fingerprint: "fp", Status: build.StatusComplete})
	_ = s.Put(ctx, &build.Run{ID: "new", Fingerprint: "fp", Status: build.StatusPending})

	got, ok, err := s.GetByFingerprint(ctx, "fp")
	if err != nil {
		t.Fatalf("GetByFingerprint: %v", err)
	}
	if !ok || got.ID != "new" {
		t.Fatalf("GetByFingerprint = %+v, %v; want new", got, ok)
	}

	if _, ok, _ := s.GetByFingerprint(ctx, "other"); ok {
		t.Error("expected ok=false for unknown fingerprint")
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	r := &build.Run{
		ID:       "b-2",
		Status:   build.StatusComplete,
		Outputs:  []preslist.Output{{BaseName: "presentations-g1-jdoe"}},
		Warnings: []preslist.Warning{{Presentation: "p1", Kind: preslist.WarnInstitution}},
	}
	_ = s.Put(ctx, r)

	r.Status = build.StatusFailed
	r.Outputs[0].BaseName = "mutated"

	got, _, _ := s.Get(ctx, "b-2")
	if got.Status != build.StatusComplete {
		t.Errorf("Status = %q, want stored copy unaffected", got.Status)
	}
	if got.Outputs[0].BaseName != "presentations-g1-jdoe" {
		t.Errorf("Outputs shared with caller: %+v", got.Outputs)
	}

	got.Warnings[0].Kind = preslist.WarnAuthor
	again, _, _ := s.Get(ctx, "b-2")
	if again.Warnings[0].Kind != preslist.WarnInstitution {
		t.Error("Get returned shared Warnings slice")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("b-%d", i)
			_ = s.Put(ctx, &build.Run{ID: id, Fingerprint: id})
			_, _, _ = s.Get(ctx, id)
			_, _, _ = s.GetByFingerprint(ctx, id)
		}()
	}
	wg.Wait()
}
