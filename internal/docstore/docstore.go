// Package docstore is the read side of the document database: named
// collections of loosely typed documents (people, groups, presentations, ...).
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// IDKey is the document field holding its identity.
const IDKey = "_id"

// ErrUnknownCollection is returned by stores that can tell a missing
// collection apart from an empty one.
var ErrUnknownCollection = errors.New("unknown collection")

// Store lists every document in a collection.
// Stores that cannot distinguish an empty collection from a missing one
// return an empty slice.
type Store interface {
	List(ctx context.Context, collection string) ([]Document, error)
}

// Writer is implemented by stores that accept documents (used for imports and seeding).
type Writer interface {
	Put(ctx context.Context, collection string, doc Document) error
}

// Document is a single loosely typed record.
type Document map[string]any

// ID returns the document identity, formatting non-string ids.
func (d Document) ID() string {
	v, ok := d[IDKey]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether key is present with a non-nil value.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// String returns the value at key when it is a string scalar.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Strings returns the string values at key. A scalar string becomes a
// one-element slice; non-string list members are dropped.
func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Int returns the value at key as an int. Numeric strings are accepted.
func (d Document) Int(key string) (int, bool) {
	return toInt(d[key])
}

// Map returns the nested document at key.
func (d Document) Map(key string) (Document, bool) {
	return toDocument(d[key])
}

// List returns the nested documents at key, skipping non-map members.
func (d Document) List(key string) []Document {
	items, ok := d[key].([]any)
	if !ok {
		if docs, ok := d[key].([]Document); ok {
			return docs
		}
		return nil
	}
	out := make([]Document, 0, len(items))
	for _, item := range items {
		if doc, ok := toDocument(item); ok {
			out = append(out, doc)
		}
	}
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// SortByID sorts docs in place by ascending ID.
func SortByID(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
}

// Normalize converts decoder output (map[any]any, []Document, ...) into the
// canonical map[string]any / []any shapes used throughout the package.
// Timestamps become strings so every driver hands back the same document:
// a bare date as 2006-01-02, anything else as RFC 3339.
func Normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		return formatTime(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case Document:
		return Normalize(map[string]any(t))
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

func toDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	case map[any]any:
		m, _ := Normalize(t).(map[string]any)
		return Document(m), true
	default:
		return nil, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case time.Time:
		return t
	default:
		return v
	}
}
