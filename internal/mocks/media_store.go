package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/VitaminP8/postery-admin/internal/media"
)

// MockMediaStore keeps uploads in a map and can be told to fail.
type MockMediaStore struct {
	mu      sync.Mutex
	files   map[string]*media.Upload
	deleted []string
	nextId  int

	StoreErr error
}

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{
		files: make(map[string]*media.Upload),
	}
}

func (m *MockMediaStore) Store(ctx context.Context, upload *media.Upload, directory string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreErr != nil {
		return "", m.StoreErr
	}

	m.nextId++
	path := fmt.Sprintf("%s/file-%d%s", directory, m.nextId, upload.Extension())
	m.files[path] = upload
	return path, nil
}

func (m *MockMediaStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *MockMediaStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.files[path]
	return ok
}

func (m *MockMediaStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.deleted...)
}

func (m *MockMediaStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.files)
}
