package build

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/linnemanlabs/preslist/internal/preslist"
)

// Status tracks where a build is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started
	StatusPending Status = "pending"

	// StatusInProgress means currently being processed
	StatusInProgress Status = "in_progress"

	// StatusComplete means finished successfully
	StatusComplete Status = "complete"

	// StatusFailed means finished with errors
	StatusFailed Status = "failed"
)

// Request selects what a build produces. Empty lists mean "everyone" for
// People and Groups and the preslist defaults for Statuses and Types.
type Request struct {
	People   []string `json:"people,omitempty"`
	Groups   []string `json:"groups,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// Options converts the request to engine options.
func (r Request) Options(concurrency int) preslist.Options {
	return preslist.Options{
		People:      r.People,
		Groups:      r.Groups,
		Filters:     preslist.Filters{Statuses: r.Statuses, Types: r.Types},
		Concurrency: concurrency,
	}
}

// Fingerprint identifies equivalent requests for deduplication. List order
// and duplicates do not matter, filter defaults are applied first, and a
// filter set holding "all" hashes the same as "all" alone.
func (r Request) Fingerprint() string {
	norm := func(in []string) string {
		cp := slices.Clone(in)
		slices.Sort(cp)
		return strings.Join(slices.Compact(cp), ",")
	}
	filter := func(in []string) string {
		if slices.Contains(in, preslist.All) {
			return preslist.All
		}
		return norm(in)
	}
	f := preslist.Filters{Statuses: r.Statuses, Types: r.Types}.WithDefaults()
	h := sha256.New()
	for _, part := range []string{norm(r.People), norm(r.Groups), filter(f.Statuses), filter(f.Types)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Run is the record of one build.
type Run struct {
	ID          string             `json:"id"`
	Fingerprint string             `json:"fingerprint"`
	Status      Status             `json:"status"`
	Request     Request            `json:"request"`
	Outputs     []preslist.Output  `json:"outputs,omitempty"`
	Skipped     int                `json:"skipped_members"`
	Warnings    []preslist.Warning `json:"warnings,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt time.Time          `json:"completed_at,omitempty"`
	Duration    float64            `json:"duration_seconds,omitempty"`
}

// Documents counts the artifacts a run produced.
func (r *Run) Documents() int {
	n := 0
	for _, o := range r.Outputs {
		n += len(o.Artifacts)
	}
	return n
}
