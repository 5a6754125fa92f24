package preslist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/docstore"
)

func scenarioSnapshot() *Snapshot {
	return &Snapshot{
		People: []docstore.Document{
			{
				"_id":        "jdoe",
				"name":       "Jane Doe",
				"aka":        []any{"J. Doe", "Doe, J."},
				"position":   "professor",
				"employment": []any{map[string]any{"group": "g1", "position": "professor"}},
			},
			{
				"_id":       "bsmith",
				"name":      "Bob Smith",
				"position":  "graduate student",
				"education": []any{map[string]any{"group": "g1"}},
			},
		},
		Contacts: []docstore.Document{
			{"_id": "asmith", "name": "Alice Smith", "aka": []any{"A. Smith"}},
		},
		Groups: []docstore.Document{{"_id": "g1", "name": "Group One"}},
		Institutions: []docstore.Document{
			{
				"_id":  "columbiau",
				"name": "Columbia University",
				"aka":  []any{"Columbia"},
				"departments": map[string]any{
					"apam": map[string]any{"name": "Applied Physics and Applied Mathematics"},
				},
			},
		},
		Presentations: []docstore.Document{
			{
				"_id":         "p1",
				"title":       "Talk one",
				"authors":     []any{"J. Doe", "A. Smith"},
				"status":      "accepted",
				"type":        "invited",
				"begin_year":  2021,
				"begin_month": 5,
				"begin_day":   3,
				"institution": "Columbia",
				"department":  "apam",
			},
			{
				"_id":     "p2",
				"title":   "Declined talk",
				"authors": []any{"J. Doe", "A. Smith"},
				"status":  "declined",
				"type":    "invited",
				"year":    2022,
			},
		},
	}
}

// recordingRenderer renders a deterministic text dump of the data it receives.
type recordingRenderer struct {
	mu    sync.Mutex
	store *artifact.Memory
	calls []string
	err   error
	data  map[string]RenderData
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{store: artifact.NewMemory(), data: map[string]RenderData{}}
}

func (r *recordingRenderer) Render(ctx context.Context, template, name string, data RenderData) (artifact.Artifact, error) {
	r.mu.Lock()
	r.calls = append(r.calls, template+":"+name)
	r.data[name] = data
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return artifact.Artifact{}, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", template, data.Person.ID())
	for _, e := range data.Presentations {
		fmt.Fprintf(&b, "%s|%s|%s|%d%s\n", e.ID, e.Authors, e.Date, e.BeginDay, e.BeginDaySuffix)
	}
	return r.store.Put(ctx, name, []byte(b.String()), "")
}

func (r *recordingRenderer) sortedCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.calls...)
	sort.Strings(out)
	return out
}

type stubCompiler struct {
	mu    sync.Mutex
	bases []string
	err   error
}

func (c *stubCompiler) Compile(_ context.Context, base string) (artifact.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return artifact.Artifact{}, c.err
	}
	c.bases = append(c.bases, base)
	return artifact.Artifact{Key: base + ".pdf", ContentType: "application/pdf"}, nil
}
