package preslist

import (
	"slices"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

const (
	// All disables a status or type filter when present in the filter set.
	All = "all"

	// DefaultStatus is the only status kept when none is requested.
	DefaultStatus = "accepted"
)

// Filters selects which presentations make it into a member's list.
type Filters struct {
	Statuses []string `json:"statuses"`
	Types    []string `json:"types"`
}

// DefaultFilters keeps accepted presentations of every type.
func DefaultFilters() Filters {
	return Filters{Statuses: []string{DefaultStatus}, Types: []string{All}}
}

// WithDefaults fills empty status and type sets from DefaultFilters.
func (f Filters) WithDefaults() Filters {
	d := DefaultFilters()
	if len(f.Statuses) == 0 {
		f.Statuses = d.Statuses
	}
	if len(f.Types) == 0 {
		f.Types = d.Types
	}
	return f
}

func matchSet(set []string, v string) bool {
	return slices.Contains(set, All) || slices.Contains(set, v)
}

// Filter returns the presentations authored by member whose status and type
// pass f, in input order. Authors are resolved against everybody; references
// that resolve to no one take no part in the membership test.
//
// Presentations without authors, or without a status/type the filter needs,
// are excluded and reported as WarnMalformed.
func Filter(presentations, everybody []docstore.Document, member string, f Filters) ([]docstore.Document, []Warning) {
	f = f.WithDefaults()
	var (
		out   []docstore.Document
		warns []Warning
	)
	for _, p := range presentations {
		authors := p.Strings("authors")
		if len(authors) == 0 {
			warns = append(warns, malformed(p, "authors"))
			continue
		}
		if !slices.Contains(f.Statuses, All) {
			status, ok := p.String("status")
			if !ok {
				warns = append(warns, malformed(p, "status"))
				continue
			}
			if !matchSet(f.Statuses, status) {
				continue
			}
		}
		if !slices.Contains(f.Types, All) {
			typ, ok := p.String("type")
			if !ok {
				warns = append(warns, malformed(p, "type"))
				continue
			}
			if !matchSet(f.Types, typ) {
				continue
			}
		}
		if !authoredBy(everybody, authors, member) {
			continue
		}
		out = append(out, p)
	}
	return out, warns
}

func authoredBy(everybody []docstore.Document, authors []string, member string) bool {
	for _, ref := range authors {
		if doc, ok := FuzzyRetrieve(everybody, AuthorFields, ref); ok && doc.ID() == member {
			return true
		}
	}
	return false
}

func malformed(p docstore.Document, field string) Warning {
	return Warning{
		Presentation: p.ID(),
		Kind:         WarnMalformed,
		Ref:          field,
		Message:      "presentation missing " + field + ", excluded",
	}
}
