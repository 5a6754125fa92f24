package preslist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/docstore"
	"golang.org/x/sync/errgroup"
)

// Template names handed to the Renderer.
const (
	LongTemplate  = "preslist.tex"
	ShortTemplate = "preslist.txt"
)

// ErrPersonNotFound is returned when a group member has no people record.
var ErrPersonNotFound = errors.New("person not found")

// RenderData is the data bag a template sees.
type RenderData struct {
	Group         string
	Person        docstore.Document
	Presentations []Entry
	SentenceCase  func(string) string
	MonthStyle    func(int) string
}

// Renderer writes a rendered template to the output named name.
type Renderer interface {
	Render(ctx context.Context, template, name string, data RenderData) (artifact.Artifact, error)
}

// Compiler turns the long-form output <base>.tex into a compiled document.
type Compiler interface {
	Compile(ctx context.Context, base string) (artifact.Artifact, error)
}

// EngineHooks receives build events; any nil hook is skipped.
type EngineHooks struct {
	OnRendered   func(format string)
	OnUnresolved func(kind WarningKind)
	OnSkipped    func()
}

// Options restricts and tunes a run.
type Options struct {
	// People, when non-empty, restricts the run to these member ids.
	People []string `json:"people,omitempty"`
	// Groups, when non-empty, restricts the run to these group ids.
	Groups      []string `json:"groups,omitempty"`
	Filters     Filters  `json:"filters"`
	Concurrency int      `json:"-"`
}

// Output is the set of artifacts produced for one member of one group.
type Output struct {
	Group         string              `json:"group"`
	Member        string              `json:"member"`
	BaseName      string              `json:"base_name"`
	Presentations int                 `json:"presentations"`
	Artifacts     []artifact.Artifact `json:"artifacts"`
}

// MemberRef names a (group, member) pair.
type MemberRef struct {
	Group  string `json:"group"`
	Member string `json:"member"`
}

// RunResult summarizes a finished run.
type RunResult struct {
	Outputs  []Output      `json:"outputs"`
	Skipped  []MemberRef   `json:"skipped,omitempty"`
	Warnings []Warning     `json:"warnings,omitempty"`
	Duration time.Duration `json:"duration"`
}

// BaseName is the output name shared by a member's long form, short form and
// compiled document.
func BaseName(group, member string) string {
	return "presentations-" + group + "-" + member
}

// Engine runs the filter, enrich, sort and render pipeline for every group
// member.
type Engine struct {
	renderer Renderer
	compiler Compiler
	logger   log.Logger
	hooks    EngineHooks
}

// NewEngine creates an engine with the given collaborators.
func NewEngine(renderer Renderer, compiler Compiler, logger log.Logger, hooks EngineHooks) *Engine {
	return &Engine{
		renderer: renderer,
		compiler: compiler,
		logger:   logger,
		hooks:    hooks,
	}
}

type memberResult struct {
	output   *Output
	warnings []Warning
}

// Run builds every (group, member) pair in snap. Members are processed on a
// pool of opts.Concurrency workers; the first render or compile error
// cancels the remaining members and is returned together with the outputs
// finished so far.
func (e *Engine) Run(ctx context.Context, snap *Snapshot, opts Options) (*RunResult, error) {
	start := time.Now()
	items := plan(snap, opts)
	results := make([]memberResult, len(items))

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, it := range items {
		g.Go(func() error {
			res, err := e.buildMember(gctx, snap, it, opts.Filters)
			results[i] = res
			if err != nil {
				return fmt.Errorf("build %s: %w", BaseName(it.Group, it.Member), err)
			}
			return nil
		})
	}
	err := g.Wait()

	rr := &RunResult{}
	seen := make(map[string]struct{})
	for i, res := range results {
		for _, w := range res.warnings {
			if _, dup := seen[w.key()]; dup {
				continue
			}
			seen[w.key()] = struct{}{}
			rr.Warnings = append(rr.Warnings, w)
		}
		switch {
		case res.output != nil:
			rr.Outputs = append(rr.Outputs, *res.output)
		case err == nil:
			rr.Skipped = append(rr.Skipped, items[i])
		}
	}
	for _, w := range rr.Warnings {
		e.logger.Warn(ctx, w.Message,
			"presentation", w.Presentation,
			"kind", string(w.Kind),
			"ref", w.Ref,
		)
		if e.hooks.OnUnresolved != nil {
			e.hooks.OnUnresolved(w.Kind)
		}
	}
	rr.Duration = time.Since(start)

	if err != nil {
		return rr, err
	}
	e.logger.Info(ctx, "preslist build complete",
		"outputs", len(rr.Outputs),
		"skipped", len(rr.Skipped),
		"warnings", len(rr.Warnings),
		"duration", rr.Duration.String(),
	)
	return rr, nil
}

// plan lists the (group, member) pairs to build in deterministic order.
func plan(snap *Snapshot, opts Options) []MemberRef {
	var items []MemberRef
	for _, group := range snap.Groups {
		gid := group.ID()
		if len(opts.Groups) > 0 && !slices.Contains(opts.Groups, gid) {
			continue
		}
		for _, member := range GroupMemberIDs(snap.People, gid) {
			if len(opts.People) > 0 && !slices.Contains(opts.People, member) {
				continue
			}
			items = append(items, MemberRef{Group: gid, Member: member})
		}
	}
	return items
}

func (e *Engine) buildMember(ctx context.Context, snap *Snapshot, it MemberRef, f Filters) (memberResult, error) {
	var res memberResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	kept, warns := Filter(snap.Presentations, snap.Everybody(), it.Member, f)
	res.warnings = warns
	if len(kept) == 0 {
		if e.hooks.OnSkipped != nil {
			e.hooks.OnSkipped()
		}
		return res, nil
	}

	entries := make([]Entry, 0, len(kept))
	for _, p := range kept {
		entry := Enrich(snap, p)
		res.warnings = append(res.warnings, entry.Warnings...)
		entries = append(entries, entry)
	}
	SortEntries(entries)

	person, ok := snap.Person(it.Member)
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrPersonNotFound, it.Member)
	}

	base := BaseName(it.Group, it.Member)
	data := RenderData{
		Group:         it.Group,
		Person:        person.Clone(),
		Presentations: entries,
		SentenceCase:  SentenceCase,
		MonthStyle:    MonthFullName,
	}
	out := &Output{Group: it.Group, Member: it.Member, BaseName: base, Presentations: len(entries)}

	for _, tmpl := range []struct{ name, ext, format string }{
		{LongTemplate, ".tex", "tex"},
		{ShortTemplate, ".txt", "txt"},
	} {
		a, err := e.renderer.Render(ctx, tmpl.name, base+tmpl.ext, data)
		if err != nil {
			return res, fmt.Errorf("render %s: %w", tmpl.name, err)
		}
		out.Artifacts = append(out.Artifacts, a)
		if e.hooks.OnRendered != nil {
			e.hooks.OnRendered(tmpl.format)
		}
	}

	if e.compiler != nil {
		a, err := e.compiler.Compile(ctx, base)
		if err != nil {
			return res, fmt.Errorf("compile: %w", err)
		}
		if a.Key != "" {
			out.Artifacts = append(out.Artifacts, a)
			if e.hooks.OnRendered != nil {
				e.hooks.OnRendered("pdf")
			}
		}
	}

	res.output = out
	return res, nil
}

// SortEntries orders entries newest first with undated entries last. The
// sort is stable, so equal dates keep their input (_id) order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.Compare(b) > 0
	})
}
