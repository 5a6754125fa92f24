// Package render turns preslist data into the long-form (.tex) and short-form
// (.txt) documents and writes them to an artifact store.
package render

import (
	"bytes"
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/preslist"
)

//go:embed templates/*
var embedded embed.FS

// Config selects where templates are read from.
type Config struct {
	TemplateDir string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.TemplateDir, "template-dir", "", "directory overriding the built-in preslist.tex / preslist.txt templates")
}

// FS returns the configured template filesystem.
func (c Config) FS() fs.FS {
	if c.TemplateDir != "" {
		return os.DirFS(c.TemplateDir)
	}
	return Embedded()
}

// Embedded returns the built-in templates.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Templates renders named templates into an artifact store.
type Templates struct {
	store artifact.Store
	set   map[string]*template.Template
}

// New parses every template in fsys. A template is found by file name
// (preslist.tex, preslist.txt).
func New(store artifact.Store, fsys fs.FS) (*Templates, error) {
	if fsys == nil {
		fsys = Embedded()
	}
	names, err := fs.Glob(fsys, "*")
	if err != nil {
		return nil, err
	}
	t := &Templates{store: store, set: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tmpl, err := template.New(name).Option("missingkey=zero").Funcs(funcs).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.set[name] = tmpl
	}
	for _, required := range []string{preslist.LongTemplate, preslist.ShortTemplate} {
		if _, ok := t.set[required]; !ok {
			return nil, fmt.Errorf("template %s missing", required)
		}
	}
	return t, nil
}

// Render executes the template called name and stores the result under out.
func (t *Templates) Render(ctx context.Context, name, out string, data preslist.RenderData) (artifact.Artifact, error) {
	tmpl, ok := t.set[name]
	if !ok {
		return artifact.Artifact{}, fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return artifact.Artifact{}, fmt.Errorf("execute %s: %w", name, err)
	}
	return t.store.Put(ctx, out, buf.Bytes(), artifact.ContentType(out))
}

var funcs = template.FuncMap{
	"tex":  func(v any) string { return LatexSafe(str(v)) },
	"inc":  func(i int) int { return i + 1 },
	"str":  str,
	"when": when,
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// LatexSafe escapes LaTeX special characters in s.
func LatexSafe(s string) string {
	return latexReplacer.Replace(s)
}

// when formats an entry's date span, e.g. "May 3rd, 2021" or
// "May 30th -- June 2nd, 2021". Unknown dates render as "".
func when(data preslist.RenderData, e preslist.Entry, tex bool) string {
	month := data.MonthStyle
	if month == nil {
		month = preslist.MonthFullName
	}
	dash := " - "
	if tex {
		dash = " -- "
	}
	day := func(d preslist.PartialDate) string {
		suffix := preslist.NumberSuffix(d.Day)
		if tex {
			return fmt.Sprintf(`%d\textsuperscript{%s}`, d.Day, suffix)
		}
		return fmt.Sprintf("%d%s", d.Day, suffix)
	}
	b, en := e.Begin, e.End

	switch {
	case b.IsZero():
		return ""
	case b.Month == 0:
		if en.Year > b.Year {
			return fmt.Sprintf("%d%s%d", b.Year, dash, en.Year)
		}
		return fmt.Sprintf("%d", b.Year)
	case b.Day == 0:
		return fmt.Sprintf("%s %d", month(b.Month), b.Year)
	}

	if !e.MultiDay() || en.Compare(b) < 0 || en.Day == 0 {
		return fmt.Sprintf("%s %s, %d", month(b.Month), day(b), b.Year)
	}
	switch {
	case en.Year != b.Year:
		return fmt.Sprintf("%s %s, %d%s%s %s, %d", month(b.Month), day(b), b.Year, dash, month(en.Month), day(en), en.Year)
	case en.Month != b.Month:
		return fmt.Sprintf("%s %s%s%s %s, %d", month(b.Month), day(b), dash, month(en.Month), day(en), b.Year)
	default:
		return fmt.Sprintf("%s %s%s%s, %d", month(b.Month), day(b), strings.TrimSpace(dash), day(en), b.Year)
	}
}
