package preslist

import (
	"fmt"
	"strings"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// Enrich builds the render-ready Entry for one presentation. Unresolved
// references never fail: they fall back to placeholders and are reported in
// Entry.Warnings.
func Enrich(snap *Snapshot, pres docstore.Document) Entry {
	doc := pres.Clone()
	e := Entry{
		ID:  doc.ID(),
		Doc: doc,
	}
	e.Title, _ = doc.String("title")
	e.Status, _ = doc.String("status")
	e.Type, _ = doc.String("type")

	for _, ref := range doc.Strings("authors") {
		name, ok := DisplayName(snap.People, snap.Contacts, ref)
		if !ok {
			e.warn(WarnAuthor, ref, fmt.Sprintf("author %q not found in people or contacts", ref))
		}
		e.AuthorList = append(e.AuthorList, name)
	}
	e.Authors = strings.Join(e.AuthorList, ", ")

	dates, err := GetDates(doc)
	if err != nil {
		e.warn(WarnDate, "", err.Error())
	}
	e.Begin, e.End = dates.Begin, dates.End
	e.Date = dates.Begin
	e.BeginYear, e.BeginMonth, e.BeginDay = dates.Begin.Year, dates.Begin.Month, dates.Begin.Day
	e.EndYear, e.EndMonth, e.EndDay = dates.End.Year, dates.End.Month, dates.End.Day
	e.BeginDaySuffix = NumberSuffix(e.BeginDay)
	e.EndDaySuffix = NumberSuffix(e.EndDay)

	if ref, ok := doc.String("institution"); ok && ref != "" {
		e.Institution = resolveInstitution(snap.Institutions, ref)
		if !e.Institution.Resolved {
			e.warn(WarnInstitution, ref, fmt.Sprintf("institution %q not found in institutions", ref))
		}
	}

	if key, ok := doc.String("department"); ok && key != "" {
		dept, found := resolveDepartment(e.Institution, key)
		e.Department = dept
		if !found {
			e.warn(WarnDepartment, key, fmt.Sprintf("department %q not found in institution %q", key, e.Institution.ID))
		}
	}
	return e
}

func (e *Entry) warn(kind WarningKind, ref, msg string) {
	e.Warnings = append(e.Warnings, Warning{Presentation: e.ID, Kind: kind, Ref: ref, Message: msg})
}

func resolveInstitution(institutions []docstore.Document, ref string) Institution {
	doc, ok := FuzzyRetrieve(institutions, AuthorFields, ref)
	if !ok {
		return Institution{ID: ref}
	}
	inst := Institution{ID: doc.ID(), Resolved: true, Doc: doc.Clone()}
	inst.Name, _ = doc.String("name")
	inst.City, _ = doc.String("city")
	inst.State, _ = doc.String("state")
	inst.Country, _ = doc.String("country")
	return inst
}

func resolveDepartment(inst Institution, key string) (Department, bool) {
	if !inst.Resolved {
		return Department{Key: key}, false
	}
	depts, ok := inst.Doc.Map("departments")
	if !ok {
		return Department{Key: key}, false
	}
	d, ok := depts.Map(key)
	if !ok {
		return Department{Key: key}, false
	}
	name, _ := d.String("name")
	return Department{Key: key, Name: name}, true
}
