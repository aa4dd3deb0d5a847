package filestore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/edufacil/efs/core"
)

// InMemStore holds files in a map; tests use it in place of OSS.
type InMemStore struct {
	mutex sync.RWMutex
	files map[string][]byte
}

var _ core.FileStore = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{files: make(map[string][]byte)}
}

func (s *InMemStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.files[key] = data
	return nil
}

func (s *InMemStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.files[key]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *InMemStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.files, key)
	return nil
}

// Len reports the number of stored files.
func (s *InMemStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.files)
}

// Has reports whether key exists.
func (s *InMemStore) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.files[key]
	return ok
}
