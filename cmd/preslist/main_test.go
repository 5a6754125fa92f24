package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/build"
	"github.com/linnemanlabs/preslist/internal/preslist"
)

var fixtures = map[string]string{
	"people.yml": `
jdoe:
  name: Jane Doe
  aka: [J. Doe]
  employment:
    - group: g1
      position: professor
bsmith:
  name: Bob Smith
  education:
    - group: g1
`,
	"contacts.yml": `
asmith:
  name: Alice Smith
  aka: [A. Smith]
`,
	"groups.yml": `
- _id: g1
  name: Group One
`,
	"institutions.yml": `
columbiau:
  name: Columbia University
  aka: [Columbia]
  departments:
    apam:
      name: Applied Physics and Applied Mathematics
`,
	"presentations.yml": `
p1:
  title: Total scattering and PDF methods
  authors: [J. Doe, A. Smith]
  status: accepted
  type: invited
  begin_year: 2021
  begin_month: 5
  begin_day: 3
  institution: Columbia
  department: apam
p2:
  title: Declined talk
  authors: [jdoe]
  status: declined
  type: invited
  year: 2022
`,
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRun_BuildsFromYAML(t *testing.T) {
	data := writeFixtures(t)
	out := t.TempDir()

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-data-dir", data,
		"-build-dir", out,
		"-pdf=false",
	}, &stdout)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stdout.String())
	}

	tex, err := os.ReadFile(filepath.Join(out, "presentations-g1-jdoe.tex"))
	if err != nil {
		t.Fatalf("read tex: %v", err)
	}
	for _, want := range []string{"Jane Doe, Alice Smith", "Columbia University", `3\textsuperscript{rd}`} {
		if !strings.Contains(string(tex), want) {
			t.Errorf("tex missing %q:\n%s", want, tex)
		}
	}
	if strings.Contains(string(tex), "Declined talk") {
		t.Error("declined presentation rendered")
	}
	if _, err := os.Stat(filepath.Join(out, "presentations-g1-jdoe.txt")); err != nil {
		t.Errorf("txt not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "presentations-g1-bsmith.tex")); !os.IsNotExist(err) {
		t.Errorf("member without presentations got output: %v", err)
	}

	summary := stdout.String()
	if !strings.Contains(summary, "wrote presentations-g1-jdoe.tex (1 presentations)") {
		t.Errorf("summary = %q", summary)
	}
	if !strings.Contains(summary, "complete: 1 members, 2 documents, 1 skipped") {
		t.Errorf("summary = %q", summary)
	}
}

func TestRun_RebuildIsByteIdentical(t *testing.T) {
	data := writeFixtures(t)
	out := t.TempDir()
	args := []string{"-data-dir", data, "-build-dir", out, "-pdf=false", "-people", "jdoe"}

	if err := run(context.Background(), args, &bytes.Buffer{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(filepath.Join(out, "presentations-g1-jdoe.tex"))
	if err := run(context.Background(), args, &bytes.Buffer{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(filepath.Join(out, "presentations-g1-jdoe.tex"))

	if len(first) == 0 || !bytes.Equal(first, second) {
		t.Error("rebuild over unchanged data changed the output")
	}
}

func TestRun_ImportIntoSQLiteThenBuild(t *testing.T) {
	data := writeFixtures(t)
	db := filepath.Join(t.TempDir(), "docs.db")

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-doc-driver", "sqlite",
		"-sqlite-path", db,
		"-import-from", data,
	}, &stdout)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(stdout.String(), "imported 7 documents") {
		t.Errorf("import output = %q", stdout.String())
	}

	stdout.Reset()
	err = run(context.Background(), []string{
		"-doc-driver", "sqlite",
		"-sqlite-path", db,
		"-artifact-driver", "memory",
		"-pdf=false",
		"-statuses", "all",
	}, &stdout)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// with every status allowed the declined talk counts too
	if !strings.Contains(stdout.String(), "wrote presentations-g1-jdoe.tex (2 presentations)") {
		t.Errorf("build output = %q", stdout.String())
	}
}

func TestRun_ImportIntoReadOnlyDriver(t *testing.T) {
	data := writeFixtures(t)

	err := run(context.Background(), []string{"-data-dir", data, "-import-from", data}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("run() error = %v, want read-only error", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"concurrency", []string{"-concurrency", "0"}, "CONCURRENCY"},
		{"statuses", []string{"-statuses", " , "}, "STATUSES"},
		{"doc driver", []string{"-doc-driver", "mongo"}, "DOC_DRIVER"},
		{"postgres without url", []string{"-doc-driver", "postgres"}, "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("run(%v) error = %v, want %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"jdoe", []string{"jdoe"}},
		{" jdoe , bsmith ,", []string{"jdoe", "bsmith"}},
	}

	for _, tt := range tests {
		got := splitList(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	r := &build.Run{
		Status: build.StatusFailed,
		Outputs: []preslist.Output{{
			Presentations: 3,
			Artifacts:     []artifact.Artifact{{Key: "presentations-g1-jdoe.tex"}},
		}},
		Warnings: []preslist.Warning{
			{Presentation: "p7", Kind: preslist.WarnDepartment, Ref: "chem"},
			{Presentation: "p8", Kind: preslist.WarnMalformed, Ref: "status", Message: "presentation missing status, excluded"},
			{Presentation: "p9", Kind: preslist.WarnDate, Message: `invalid month "Smarch"`},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, r)

	want := "wrote presentations-g1-jdoe.tex (3 presentations)\n" +
		"warning: p7: unresolved department \"chem\"\n" +
		"warning: p8: malformed: presentation missing status, excluded\n" +
		"warning: p9: date: invalid month \"Smarch\"\n" +
		"failed: 1 members, 1 documents, 0 skipped, 3 warnings\n"
	if buf.String() != want {
		t.Errorf("summary =\n%s\nwant\n%s", buf.String(), want)
	}
}
