package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trendapi/internal/dataprocessing"
	apierrors "trendapi/internal/errors"
	"trendapi/pkg/contracts/domain"
)

// MemoryStore is an in-memory DatasetStore. All access is serialized by an
// RWMutex, so uploads, deletes and analyses may run concurrently.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	order    []string

	now   func() time.Time
	newID func() string
}

// Option configures a MemoryStore
type Option func(*MemoryStore)

// WithClock overrides the upload timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithIDGenerator overrides dataset id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *MemoryStore) { s.newID = newID }
}

// NewMemoryStore creates an empty store
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		datasets: make(map[string]*Dataset),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put registers a table under a fresh id
func (s *MemoryStore) Put(filename string, table *dataprocessing.Table) (*Dataset, error) {
	if table == nil {
		return nil, apierrors.NewProcessingError("cannot register dataset", errors.New("table is nil"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, exists := s.datasets[id]; exists {
		return nil, apierrors.NewProcessingError("cannot register dataset", errors.New("duplicate dataset id "+id))
	}

	ds := &Dataset{
		ID:          id,
		Filename:    filename,
		Table:       table,
		UploadedAt:  s.now(),
		RowCount:    table.RowCount(),
		ColumnCount: table.ColumnCount(),
	}
	s.datasets[id] = ds
	s.order = append(s.order, id)

	dsCopy := *ds
	return &dsCopy, nil
}

// Get returns the dataset with the given id
func (s *MemoryStore) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.datasets[id]
	if !exists {
		return nil, apierrors.NewDatasetNotFoundError(id)
	}

	dsCopy := *ds
	return &dsCopy, nil
}

// List returns summaries of all datasets in upload order
func (s *MemoryStore) List() []domain.DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.DatasetSummary, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.datasets[id].Summary())
	}
	return result
}

// Delete removes the dataset with the given id
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[id]; !exists {
		return apierrors.NewDatasetNotFoundError(id)
	}

	delete(s.datasets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of registered datasets
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}
