package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Filesystem stores artifacts as plain files under a root directory, so the
// build directory can be handed straight to LaTeX or a web server.
type Filesystem struct {
	root string
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "_build"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// Root returns the directory artifacts are written to.
func (s *Filesystem) Root() string { return s.root }

func (s *Filesystem) pathFor(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *Filesystem) Put(_ context.Context, key string, body []byte, contentType string) (Artifact, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return Artifact{}, err
	}
	// write to a temp file then rename so readers never see a partial document
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return Artifact{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return Artifact{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return Artifact{}, err
	}
	if contentType == "" {
		contentType = ContentType(key)
	}
	return Artifact{
		Key:         key,
		ContentType: contentType,
		Size:        info.Size(),
		ETag:        etag(body),
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

func (s *Filesystem) Get(_ context.Context, key string) (Artifact, []byte, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return Artifact{}, nil, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Artifact{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Artifact{}, nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return Artifact{}, nil, err
	}
	return Artifact{
		Key:         key,
		ContentType: ContentType(key),
		Size:        info.Size(),
		ETag:        etag(body),
		UpdatedAt:   info.ModTime().UTC(),
	}, body, nil
}

func (s *Filesystem) List(_ context.Context, prefix string) ([]Artifact, error) {
	var out []Artifact
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Artifact{
			Key:         key,
			ContentType: ContentType(key),
			Size:        info.Size(),
			UpdatedAt:   info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
