// Package yamlstore reads collections from a directory of YAML (or JSON)
// files, one file per collection.
//
// A collection file is either a mapping of id -> document, in which case the
// key is copied into the document's _id when absent, or a sequence of
// documents that carry their own _id.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// Extensions are tried in order when locating a collection file.
var Extensions = []string{".yml", ".yaml", ".json"}

// Store reads collection files from a directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, which must exist.
func New(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("yamlstore: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("yamlstore: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// List decodes every document in the collection file, ordered by _id.
func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.locate(collection)
	if err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yamlstore: read %s: %w", path, err)
	}
	docs, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("yamlstore: %s: %w", path, err)
	}
	return docs, nil
}

func (s *Store) locate(collection string) (string, error) {
	for _, ext := range Extensions {
		p := filepath.Join(s.dir, collection+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("yamlstore: stat %s: %w", p, err)
		}
	}
	return "", fmt.Errorf("%w: %s (no file in %s)", docstore.ErrUnknownCollection, collection, s.dir)
}

// Decode parses one collection file body.
func Decode(buf []byte) ([]docstore.Document, error) {
	var raw any
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var docs []docstore.Document
	switch v := docstore.Normalize(raw).(type) {
	case nil:
		return nil, nil
	case map[string]any:
		docs = make([]docstore.Document, 0, len(v))
		for key, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("document %q is not a mapping", key)
			}
			doc := docstore.Document(m)
			if !doc.Has(docstore.IDKey) {
				doc[docstore.IDKey] = key
			}
			docs = append(docs, doc)
		}
	case []any:
		docs = make([]docstore.Document, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("document %d is not a mapping", i)
			}
			doc := docstore.Document(m)
			if doc.ID() == "" {
				return nil, fmt.Errorf("document %d has no %s", i, docstore.IDKey)
			}
			docs = append(docs, doc)
		}
	default:
		return nil, fmt.Errorf("top level must be a mapping or sequence, got %T", v)
	}

	docstore.SortByID(docs)
	return docs, nil
}
