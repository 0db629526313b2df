package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"
)

var errNoSuchKey = errors.New("no such key")

// MemoryStore keeps objects in process memory. Used for local development
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]memObject{}, now: time.Now}
}

func (m *MemoryStore) List(_ context.Context) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Object, 0, len(m.objects))
	for k, o := range m.objects {
		out = append(out, Object{Key: k, Size: int64(len(o.data)), LastModified: o.modified, ContentType: o.contentType})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Stat(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return Object{}, &Error{Kind: KindNotFound, Op: "stat", Key: key, Err: errNoSuchKey}
	}
	return Object{Key: key, Size: int64(len(o.data)), LastModified: o.modified, ContentType: o.contentType}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, Object, error) {
	info, err := m.Stat(ctx, key)
	if err != nil {
		return nil, Object{}, &Error{Kind: KindNotFound, Op: "get", Key: key, Err: errNoSuchKey}
	}
	m.mu.RLock()
	data := m.objects[key].data
	m.mu.RUnlock()
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: append([]byte(nil), body...), contentType: contentType, modified: m.now().UTC()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Bytes returns a copy of the stored object, for tests.
func (m *MemoryStore) Bytes(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), o.data...), true
}
