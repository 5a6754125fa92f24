package preslist

import (
	"fmt"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// Collections read by Load.
const (
	CollectionGroups        = "groups"
	CollectionInstitutions  = "institutions"
	CollectionPeople        = "people"
	CollectionGrants        = "grants"
	CollectionPresentations = "presentations"
	CollectionContacts      = "contacts"
)

// NeededCollections lists every collection a build reads.
var NeededCollections = []string{
	CollectionGroups,
	CollectionInstitutions,
	CollectionPeople,
	CollectionGrants,
	CollectionPresentations,
	CollectionContacts,
}

// Snapshot is the read-only view of the document store a build runs against.
type Snapshot struct {
	People        []docstore.Document
	Contacts      []docstore.Document
	Groups        []docstore.Document
	Institutions  []docstore.Document
	Grants        []docstore.Document
	Presentations []docstore.Document
}

// Everybody returns people followed by contacts, the pool authors are
// resolved against.
func (s *Snapshot) Everybody() []docstore.Document {
	out := make([]docstore.Document, 0, len(s.People)+len(s.Contacts))
	out = append(out, s.People...)
	return append(out, s.Contacts...)
}

// Person returns the person with the given _id.
func (s *Snapshot) Person(id string) (docstore.Document, bool) {
	for _, p := range s.People {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Institution is a resolved (or placeholder) institution reference.
type Institution struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	City     string            `json:"city,omitempty"`
	State    string            `json:"state,omitempty"`
	Country  string            `json:"country,omitempty"`
	Resolved bool              `json:"resolved"`
	Doc      docstore.Document `json:"-"`
}

// Department is a resolved (or placeholder) department of an institution.
type Department struct {
	Key  string `json:"key,omitempty"`
	Name string `json:"name"`
}

// Entry is one presentation prepared for rendering. Entries are built fresh
// for every member, so nothing in them is shared with the Snapshot.
type Entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Type       string   `json:"type"`
	AuthorList []string `json:"author_list"`
	Authors    string   `json:"authors"`

	Date           PartialDate `json:"date"`
	Begin          PartialDate `json:"begin"`
	End            PartialDate `json:"end"`
	BeginYear      int         `json:"begin_year,omitempty"`
	BeginMonth     int         `json:"begin_month,omitempty"`
	BeginDay       int         `json:"begin_day,omitempty"`
	BeginDaySuffix string      `json:"begin_day_suffix,omitempty"`
	EndYear        int         `json:"end_year,omitempty"`
	EndMonth       int         `json:"end_month,omitempty"`
	EndDay         int         `json:"end_day,omitempty"`
	EndDaySuffix   string      `json:"end_day_suffix,omitempty"`

	Institution Institution `json:"institution"`
	Department  Department  `json:"department"`

	// Doc is a private copy of the source document for pass-through fields.
	Doc      docstore.Document `json:"-"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// Field returns a pass-through string field of the source presentation
// (meeting_name, location, abstract, ...), or "" when absent.
func (e Entry) Field(key string) string {
	v, ok := e.Doc[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MultiDay reports whether the entry spans more than one known date.
func (e Entry) MultiDay() bool {
	return !e.End.IsZero() && e.End != e.Begin
}

// WarningKind classifies a data-quality issue.
type WarningKind string

const (
	WarnAuthor      WarningKind = "author"
	WarnInstitution WarningKind = "institution"
	WarnDepartment  WarningKind = "department"
	WarnMalformed   WarningKind = "malformed"
	WarnDate        WarningKind = "date"
)

// Warning is a non-fatal data-quality issue found while building.
type Warning struct {
	Presentation string      `json:"presentation"`
	Kind         WarningKind `json:"kind"`
	Ref          string      `json:"ref,omitempty"`
	Message      string      `json:"message"`
}

func (w Warning) key() string {
	return w.Presentation + "\x00" + string(w.Kind) + "\x00" + w.Ref
}
