// Package blobstore holds uploaded claim evidence off-ledger. The ledger only
// keeps the content hash; the store hands back an addressable URL.
package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Store persists content and returns a URL that resolves to it.
type Store interface {
	Put(ctx context.Context, hash, contentType string, data []byte) (string, error)
}

type Blob struct {
	Hash        string
	ContentType string
	Data        []byte
}

// MemoryStore keeps blobs in process memory, keyed by a random handle.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]Blob
}

// NewMemoryStore returns a store whose URLs are baseURL + "/" + handle.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string]Blob),
	}
}

func (m *MemoryStore) Put(ctx context.Context, hash, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.blobs[id] = Blob{Hash: hash, ContentType: contentType, Data: buf}
	m.mu.Unlock()

	return m.baseURL + "/" + id, nil
}

// Get returns the blob stored under handle id.
func (m *MemoryStore) Get(id string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[id]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}
