package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	artifact Artifact
	body     []byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, key string, body []byte, contentType string) (Artifact, error) {
	if err := ValidateKey(key); err != nil {
		return Artifact{}, err
	}
	if contentType == "" {
		contentType = ContentType(key)
	}
	a := Artifact{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(body)),
		ETag:        etag(body),
		UpdatedAt:   time.Now().UTC(),
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	m.mu.Lock()
	m.objects[key] = memObject{artifact: a, body: cp}
	m.mu.Unlock()
	return a, nil
}

func (m *Memory) Get(_ context.Context, key string) (Artifact, []byte, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return Artifact{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	cp := make([]byte, len(obj.body))
	copy(cp, obj.body)
	return obj.artifact, cp, nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Artifact, 0, len(m.objects))
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, obj.artifact)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
