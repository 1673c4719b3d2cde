package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrObjectMissing = errors.New("object not found")

type memObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process. Used by tests and STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]map[string]memObject

	// Failure switches for tests.
	FailUpload bool
	FailSign   bool
	FailRemove bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]map[string]memObject{}}
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if m.FailUpload {
		return errors.New("memory store: upload refused")
	}
	key = NormalizeKey(key)
	if key == "" {
		return errors.New("memory store: empty key")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "memory store: read body")
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("memory store: size mismatch (%d != %d)", len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[bucket] == nil {
		m.objects[bucket] = map[string]memObject{}
	}
	m.objects[bucket][key] = memObject{data: data, contentType: contentType}
	return nil
}

func (m *MemoryStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if m.FailSign {
		return "", errors.New("memory store: signing refused")
	}
	key = NormalizeKey(key)
	if !m.Has(bucket, key) {
		return "", errors.Wrapf(ErrObjectMissing, "%s/%s", bucket, key)
	}
	q := url.Values{}
	q.Set("expires", fmt.Sprint(int64(ttl/time.Second)))
	return "memory://" + bucket + "/" + key + "?" + q.Encode(), nil
}

func (m *MemoryStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	if m.FailRemove {
		return errors.New("memory store: remove refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range normalizeKeys(keys) {
		delete(m.objects[bucket], k)
	}
	return nil
}

func (m *MemoryStore) Has(bucket, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[bucket][NormalizeKey(key)]
	return ok
}

// Get returns a copy of the stored bytes and content type.
func (m *MemoryStore) Get(bucket, key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[bucket][NormalizeKey(key)]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(o.data), o.contentType, true
}

// Keys lists the keys of a bucket in sorted order.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.objects[bucket]))
	for k := range m.objects[bucket] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
