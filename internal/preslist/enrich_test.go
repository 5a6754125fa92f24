package preslist

import (
	"testing"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

func TestEnrich_Scenario(t *testing.T) {
	t.Parallel()

	snap := scenarioSnapshot()
	e := Enrich(snap, snap.Presentations[0])

	if e.Authors != "Jane Doe, Alice Smith" {
		t.Errorf("Authors = %q", e.Authors)
	}
	if e.BeginDay != 3 || e.BeginDaySuffix != "rd" {
		t.Errorf("BeginDay = %d%s, want 3rd", e.BeginDay, e.BeginDaySuffix)
	}
	if e.Date != (PartialDate{2021, 5, 3}) {
		t.Errorf("Date = %+v", e.Date)
	}
	if !e.Institution.Resolved || e.Institution.Name != "Columbia University" {
		t.Errorf("Institution = %+v", e.Institution)
	}
	if e.Department.Name != "Applied Physics and Applied Mathematics" {
		t.Errorf("Department = %+v", e.Department)
	}
	if len(e.Warnings) != 0 {
		t.Errorf("Warnings = %+v", e.Warnings)
	}
	if e.Field("title") != "Talk one" || e.Field("missing") != "" {
		t.Errorf("Field() pass-through wrong")
	}
}

func TestEnrich_UnresolvedAuthorKeepsLiteral(t *testing.T) {
	t.Parallel()

	snap := scenarioSnapshot()
	e := Enrich(snap, docstore.Document{"_id": "p", "authors": []any{"J. Doe", "X. Stranger"}})
	if e.Authors != "Jane Doe, X. Stranger" {
		t.Errorf("Authors = %q", e.Authors)
	}
	if len(e.Warnings) != 1 || e.Warnings[0].Kind != WarnAuthor || e.Warnings[0].Ref != "X. Stranger" {
		t.Errorf("Warnings = %+v", e.Warnings)
	}
}

func TestEnrich_InstitutionFallback(t *testing.T) {
	t.Parallel()

	snap := scenarioSnapshot()
	tests := []struct {
		name      string
		doc       docstore.Document
		wantInst  string
		wantKinds []WarningKind
	}{
		{
			name:      "unknown institution",
			doc:       docstore.Document{"_id": "p", "authors": "jdoe", "institution": "Nowhere U", "department": "chem"},
			wantInst:  "Nowhere U",
			wantKinds: []WarningKind{WarnInstitution, WarnDepartment},
		},
		{
			name:      "unknown department",
			doc:       docstore.Document{"_id": "p", "authors": "jdoe", "institution": "columbiau", "department": "chem"},
			wantInst:  "columbiau",
			wantKinds: []WarningKind{WarnDepartment},
		},
		{
			name:     "no department",
			doc:      docstore.Document{"_id": "p", "authors": "jdoe", "institution": "COLUMBIA"},
			wantInst: "columbiau",
		},
		{
			name: "no institution",
			doc:  docstore.Document{"_id": "p", "authors": "jdoe"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := Enrich(snap, tt.doc)
			if e.Institution.ID != tt.wantInst {
				t.Errorf("Institution.ID = %q, want %q", e.Institution.ID, tt.wantInst)
			}
			if e.Department.Name != "" {
				t.Errorf("Department.Name = %q, want empty", e.Department.Name)
			}
			if len(e.Warnings) != len(tt.wantKinds) {
				t.Fatalf("Warnings = %+v, want kinds %v", e.Warnings, tt.wantKinds)
			}
			for i, k := range tt.wantKinds {
				if e.Warnings[i].Kind != k {
					t.Errorf("Warnings[%d].Kind = %s, want %s", i, e.Warnings[i].Kind, k)
				}
			}
		})
	}
}

func TestEnrich_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	snap := scenarioSnapshot()
	src := snap.Presentations[0]
	e := Enrich(snap, src)
	e.Doc["title"] = "changed"

	if authors, ok := src["authors"].([]any); !ok || authors[0] != "J. Doe" {
		t.Errorf("source authors mutated: %v", src["authors"])
	}
	if src["title"] != "Talk one" {
		t.Errorf("source title mutated: %v", src["title"])
	}
	if _, ok := src["institution"].(string); !ok {
		t.Errorf("source institution replaced: %v", src["institution"])
	}
}

func TestEnrich_BadDateWarns(t *testing.T) {
	t.Parallel()

	e := Enrich(scenarioSnapshot(), docstore.Document{"_id": "p", "authors": "jdoe", "date": "someday"})
	if !e.Date.IsZero() {
		t.Errorf("Date = %+v, want zero", e.Date)
	}
	if len(e.Warnings) != 1 || e.Warnings[0].Kind != WarnDate {
		t.Errorf("Warnings = %+v", e.Warnings)
	}
	if e.BeginDaySuffix != "" {
		t.Errorf("BeginDaySuffix = %q, want empty", e.BeginDaySuffix)
	}
}
