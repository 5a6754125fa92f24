// Package pdf compiles long-form LaTeX outputs into PDFs with an external
// LaTeX toolchain.
package pdf

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/preslist"
)

// Config controls PDF compilation.
type Config struct {
	Enabled bool
	Command string
	Timeout time.Duration
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enabled, "pdf", true, "compile the long-form output to PDF")
	fs.StringVar(&c.Command, "latex-cmd", "latexmk -pdf -interaction=nonstopmode -halt-on-error", "LaTeX command; the .tex file name is appended")
	fs.DurationVar(&c.Timeout, "latex-timeout", 2*time.Minute, "per-document LaTeX timeout")
}

// Validate checks the command is usable when compilation is enabled.
func (c *Config) Validate() error {
	var errs []error
	if c.Enabled && len(strings.Fields(c.Command)) == 0 {
		errs = append(errs, errors.New("LATEX_CMD is required when PDF compilation is enabled"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("LATEX_TIMEOUT must be >= 0, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// New returns the Compiler selected by cfg: a LaTeX runner, or Nop when
// compilation is disabled.
func New(store artifact.Store, cfg Config, logger log.Logger) preslist.Compiler {
	if !cfg.Enabled {
		return Nop{}
	}
	return &Compiler{
		store:   store,
		argv:    strings.Fields(cfg.Command),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Compiler runs a LaTeX command over <base>.tex in a scratch directory and
// stores the resulting <base>.pdf.
type Compiler struct {
	store   artifact.Store
	argv    []string
	timeout time.Duration
	logger  log.Logger
}

// Compile builds <base>.pdf from the stored <base>.tex.
func (c *Compiler) Compile(ctx context.Context, base string) (artifact.Artifact, error) {
	_, tex, err := c.store.Get(ctx, base+".tex")
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("load %s.tex: %w", base, err)
	}

	dir, err := os.MkdirTemp("", "preslist-pdf-*")
	if err != nil {
		return artifact.Artifact{}, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	texFile := filepath.Base(base) + ".tex"
	if err := os.WriteFile(filepath.Join(dir, texFile), tex, 0o600); err != nil {
		return artifact.Artifact{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	args := append(append([]string(nil), c.argv[1:]...), texFile)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("%s %s: %w: %s", c.argv[0], texFile, err, tail(out, 2048))
	}

	pdf, err := os.ReadFile(filepath.Join(dir, filepath.Base(base)+".pdf"))
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("read compiled pdf: %w", err)
	}

	a, err := c.store.Put(ctx, base+".pdf", pdf, "application/pdf")
	if err != nil {
		return artifact.Artifact{}, err
	}
	c.logger.Info(ctx, "pdf compiled",
		"output", a.Key,
		"size_bytes", a.Size,
		"duration", time.Since(start).String(),
	)
	return a, nil
}

// Nop skips compilation.
type Nop struct{}

// Compile returns a zero Artifact.
func (Nop) Compile(context.Context, string) (artifact.Artifact, error) {
	return artifact.Artifact{}, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return strings.TrimSpace(string(b))
}
