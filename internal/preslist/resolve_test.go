package preslist

import (
	"testing"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

func TestFuzzyRetrieve_RoundTrip(t *testing.T) {
	t.Parallel()

	people := scenarioSnapshot().People
	for _, ref := range []string{"jdoe", "JDOE", "Jane Doe", "jane doe", "J. Doe", "j. doe", "Doe, J."} {
		doc, ok := FuzzyRetrieve(people, AuthorFields, ref)
		if !ok {
			t.Errorf("FuzzyRetrieve(%q) not found", ref)
			continue
		}
		if doc.ID() != "jdoe" {
			t.Errorf("FuzzyRetrieve(%q) = %q, want jdoe", ref, doc.ID())
		}
	}
}

func TestFuzzyRetrieve_NoEditDistance(t *testing.T) {
	t.Parallel()

	people := scenarioSnapshot().People
	for _, ref := range []string{"J Doe", "Jane", "jdo", "", "   "} {
		if _, ok := FuzzyRetrieve(people, AuthorFields, ref); ok {
			t.Errorf("FuzzyRetrieve(%q) matched, want no match", ref)
		}
	}
}

func TestFuzzyRetrieve_FirstMatchWins(t *testing.T) {
	t.Parallel()

	docs := []docstore.Document{
		{"_id": "first", "name": "Sam Lee"},
		{"_id": "second", "aka": []any{"Sam Lee"}},
	}
	doc, ok := FuzzyRetrieve(docs, AuthorFields, "sam lee")
	if !ok || doc.ID() != "first" {
		t.Fatalf("got %v %v, want first", doc.ID(), ok)
	}
}

func TestFuzzyRetrieve_FieldsRestrictSearch(t *testing.T) {
	t.Parallel()

	docs := []docstore.Document{{"_id": "x", "name": "Only Name"}}
	if _, ok := FuzzyRetrieve(docs, []string{"aka"}, "Only Name"); ok {
		t.Error("matched on a field outside the field list")
	}
}

func TestPersonOrContact_PeopleBeforeContacts(t *testing.T) {
	t.Parallel()

	people := []docstore.Document{{"_id": "p", "name": "Pat Kim"}}
	contacts := []docstore.Document{{"_id": "c", "name": "Pat Kim"}, {"_id": "c2", "name": "Only Contact"}}

	if doc, _ := PersonOrContact(people, contacts, "pat kim"); doc.ID() != "p" {
		t.Errorf("got %q, want person p", doc.ID())
	}
	if doc, ok := PersonOrContact(people, contacts, "only contact"); !ok || doc.ID() != "c2" {
		t.Errorf("got %v %v, want contact c2", doc.ID(), ok)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	snap := scenarioSnapshot()
	tests := []struct {
		ref      string
		want     string
		resolved bool
	}{
		{"J. Doe", "Jane Doe", true},
		{"A. Smith", "Alice Smith", true},
		{"N. Body", "N. Body", false},
	}
	for _, tt := range tests {
		got, ok := DisplayName(snap.People, snap.Contacts, tt.ref)
		if got != tt.want || ok != tt.resolved {
			t.Errorf("DisplayName(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.resolved)
		}
	}
}
