package preslist

import (
	"strings"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// AuthorFields is the ordered list of fields compared by author and
// institution lookups.
var AuthorFields = []string{"aka", "name", docstore.IDKey}

// FuzzyRetrieve returns the first document in docs with one of fields equal
// to value, ignoring case. List-valued fields match when any member does.
//
// The match is exact apart from case; there is no edit-distance scoring.
func FuzzyRetrieve(docs []docstore.Document, fields []string, value string) (docstore.Document, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	for _, doc := range docs {
		for _, f := range fields {
			if f == docstore.IDKey {
				if strings.EqualFold(doc.ID(), value) {
					return doc, true
				}
				continue
			}
			for _, s := range doc.Strings(f) {
				if strings.EqualFold(strings.TrimSpace(s), value) {
					return doc, true
				}
			}
		}
	}
	return nil, false
}

// PersonOrContact resolves ref against people first, then contacts.
func PersonOrContact(people, contacts []docstore.Document, ref string) (docstore.Document, bool) {
	if doc, ok := FuzzyRetrieve(people, AuthorFields, ref); ok {
		return doc, true
	}
	return FuzzyRetrieve(contacts, AuthorFields, ref)
}

// DisplayName is the name shown for an author reference: the matched
// record's name, or the reference itself when nothing matches.
func DisplayName(people, contacts []docstore.Document, ref string) (string, bool) {
	doc, ok := PersonOrContact(people, contacts, ref)
	if !ok {
		return ref, false
	}
	if name, ok := doc.String("name"); ok && name != "" {
		return name, true
	}
	return ref, true
}
