// Preslist renders presentation lists once and exits: one .tex, .txt and
// (optionally) .pdf per group member with qualifying presentations.
//
// With -import-from it instead copies a directory of collection files into
// the configured document store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/log"
	v "github.com/linnemanlabs/go-core/version"

	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/build"
	"github.com/linnemanlabs/preslist/internal/build/memstore"
	"github.com/linnemanlabs/preslist/internal/docstore"
	"github.com/linnemanlabs/preslist/internal/docstore/driver"
	"github.com/linnemanlabs/preslist/internal/pdf"
	"github.com/linnemanlabs/preslist/internal/postgres"
	"github.com/linnemanlabs/preslist/internal/preslist"
	"github.com/linnemanlabs/preslist/internal/render"
)

const appName = "preslist"
const component = "cli"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

// options are the CLI-only settings; component configs carry the rest.
type options struct {
	DatabaseURL string
	People      string
	Groups      string
	Statuses    string
	Types       string
	Concurrency int
	ImportFrom  string
	ShowVersion bool
}

func (o *options) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.DatabaseURL, "database-url", "", "PostgreSQL connection URL for the postgres doc driver")
	fs.StringVar(&o.People, "people", "", "comma separated person ids to build (empty = every group member)")
	fs.StringVar(&o.Groups, "groups", "", "comma separated group ids to build (empty = all groups)")
	fs.StringVar(&o.Statuses, "statuses", preslist.DefaultStatus, `comma separated presentation statuses to include ("all" for any)`)
	fs.StringVar(&o.Types, "types", preslist.All, `comma separated presentation types to include ("all" for any)`)
	fs.IntVar(&o.Concurrency, "concurrency", 1, "members rendered in parallel (1..64)")
	fs.StringVar(&o.ImportFrom, "import-from", "", "copy collection files from this directory into the doc store and exit")
	fs.BoolVar(&o.ShowVersion, "V", false, "Print version+build information and exit")
}

func (o *options) Validate() error {
	var errs []error
	if o.Concurrency < 1 || o.Concurrency > 64 {
		errs = append(errs, fmt.Errorf("invalid CONCURRENCY %d (must be 1..64)", o.Concurrency))
	}
	if len(splitList(o.Statuses)) == 0 {
		errs = append(errs, errors.New("STATUSES must name at least one status"))
	}
	if len(splitList(o.Types)) == 0 {
		errs = append(errs, errors.New("TYPES must name at least one type"))
	}
	return errors.Join(errs...)
}

func (o *options) request() build.Request {
	return build.Request{
		People:   splitList(o.People),
		Groups:   splitList(o.Groups),
		Statuses: splitList(o.Statuses),
		Types:    splitList(o.Types),
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	v.AppName = appName
	v.Component = component
	vi := v.Get()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	var (
		opts        options
		docCfg      docstore.Config
		artifactCfg artifact.Config
		renderCfg   render.Config
		pdfCfg      pdf.Config
		logCfg      log.Config
	)
	opts.RegisterFlags(fs)
	docCfg.RegisterFlags(fs)
	artifactCfg.RegisterFlags(fs)
	renderCfg.RegisterFlags(fs)
	pdfCfg.RegisterFlags(fs)
	logCfg.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.ShowVersion {
		_, err := fmt.Fprintf(stdout, "%s (%s) %s (commit=%s, build_date=%s, go=%s)\n",
			vi.AppName, vi.Component, vi.Version, vi.Commit, vi.BuildDate, vi.GoVersion)
		return err
	}

	// env vars with prefix PRESLIST_ fill anything not given on the command line
	cfg.FillFromEnv(fs, "PRESLIST_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := errors.Join(
		opts.Validate(),
		docCfg.Validate(),
		artifactCfg.Validate(),
		pdfCfg.Validate(),
		logCfg.Validate(),
	); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if docstore.Driver(docCfg.Driver) == docstore.DriverPostgres && opts.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres doc driver")
	}

	lg, err := log.New(logCfg.ToOptions(v.AppName))
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = lg.Sync() }()
	L := lg.With("component", vi.Component)
	ctx = log.WithContext(ctx, L)

	var pool *pgxpool.Pool
	if opts.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, opts.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres pool: %w", err)
		}
		defer pool.Close()
	}

	docs, err := driver.Open(ctx, docCfg, pool)
	if err != nil {
		return fmt.Errorf("docstore init: %w", err)
	}
	defer func() { _ = docs.Close() }()

	if opts.ImportFrom != "" {
		return importDocs(ctx, L, docs, opts.ImportFrom, stdout)
	}

	artifacts, err := artifact.Open(ctx, artifactCfg)
	if err != nil {
		return fmt.Errorf("artifact store init: %w", err)
	}
	templates, err := render.New(artifacts, renderCfg.FS())
	if err != nil {
		return fmt.Errorf("templates init: %w", err)
	}
	engine := preslist.NewEngine(templates, pdf.New(artifacts, pdfCfg, L), L, preslist.EngineHooks{})

	svc := build.NewService(memstore.New(), docs.Store, engine, L, nil, nil)
	svc.SetConcurrency(opts.Concurrency)

	result, err := svc.Execute(ctx, opts.request())
	if result != nil {
		printSummary(stdout, result)
	}
	return err
}

func importDocs(ctx context.Context, L log.Logger, dst driver.Opened, dir string, stdout io.Writer) error {
	w, ok := dst.Writer()
	if !ok {
		return errors.New("the selected doc driver is read-only; choose postgres, sqlite or memory to import into")
	}
	src, err := driver.Open(ctx, docstore.Config{Driver: string(docstore.DriverYAML), DataDir: dir}, nil)
	if err != nil {
		return fmt.Errorf("open import source: %w", err)
	}
	n, err := driver.Copy(ctx, w, src.Store, preslist.NeededCollections)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	L.Info(ctx, "import complete", "from", dir, "documents", n)
	_, err = fmt.Fprintf(stdout, "imported %d documents from %s\n", n, dir)
	return err
}

// printSummary writes one line per produced artifact followed by the
// unresolved references, so the output reads as a build log.
func printSummary(w io.Writer, r *build.Run) {
	for _, o := range r.Outputs {
		for _, a := range o.Artifacts {
			fmt.Fprintf(w, "wrote %s (%d presentations)\n", a.Key, o.Presentations)
		}
	}
	for _, warn := range r.Warnings {
		switch warn.Kind {
		case preslist.WarnAuthor, preslist.WarnInstitution, preslist.WarnDepartment:
			fmt.Fprintf(w, "warning: %s: unresolved %s %q\n", warn.Presentation, warn.Kind, warn.Ref)
		default:
			fmt.Fprintf(w, "warning: %s: %s: %s\n", warn.Presentation, warn.Kind, warn.Message)
		}
	}
	fmt.Fprintf(w, "%s: %d members, %d documents, %d skipped, %d warnings\n",
		r.Status, len(r.Outputs), r.Documents(), r.Skipped, len(r.Warnings))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
