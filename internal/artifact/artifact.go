// Package artifact stores rendered build outputs (.tex, .txt, .pdf) on a
// local filesystem, in S3 / MinIO, or in memory.
//
// Unlike an append-only blob store, Put overwrites: regenerating a member's
// presentation list must replace the previous file.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local build directory (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("artifact not found")

// Artifact describes a stored output.
type Artifact struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size_bytes"`
	ETag        string    `json:"etag,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists build outputs.
type Store interface {
	// Put creates or replaces the object at key.
	Put(ctx context.Context, key string, body []byte, contentType string) (Artifact, error)
	// Get returns the artifact metadata and full payload, or ErrNotFound.
	Get(ctx context.Context, key string) (Artifact, []byte, error)
	// List returns artifacts whose keys start with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Artifact, error)
	// Driver returns the backend driver.
	Driver() Driver
}

// ContentType guesses a MIME type from the key's extension.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".tex":
		return "application/x-tex"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ValidateKey rejects keys that could escape a filesystem root or are empty.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid key %q: contains '..'", key)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

func etag(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
