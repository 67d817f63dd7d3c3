// Package memory is an in-process store of datasets, PIF systems and
// dataset files backing the sandbox server.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/record"
)

type pendingUpload struct {
	datasetID int
	fileName  string
	data      []byte
	written   bool
}

// Store implements usecase/catalog.Repository and usecase/catalog.FileStore.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	nextID   int
	datasets map[int]record.Dataset
	pifs     []record.Pif
	files    map[int]map[string][]byte
	pending  map[string]*pendingUpload
	now      func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:   1,
		datasets: make(map[int]record.Dataset),
		files:    make(map[int]map[string][]byte),
		pending:  make(map[string]*pendingUpload),
		now:      time.Now,
	}
}

// Ping implements usecase/health.Pinger.
func (s *Store) Ping(_ context.Context) error { return nil }

// AddDataset stores d as is, assigning an ID when d.ID is zero.
func (s *Store) AddDataset(_ context.Context, d record.Dataset) (record.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == 0 {
		d.ID = s.nextID
	}
	if _, ok := s.datasets[d.ID]; ok {
		return record.Dataset{}, errors.Wrapf(domain.ErrInvalidQuery, "dataset %d already exists", d.ID)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	s.datasets[d.ID] = d
	if d.ID >= s.nextID {
		s.nextID = d.ID + 1
	}
	return d, nil
}

// CreateDataset stores a new dataset.
func (s *Store) CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error) {
	return s.AddDataset(ctx, record.Dataset{Name: name, Description: description, Public: public})
}

// AddPif stores p. Its dataset must exist.
func (s *Store) AddPif(_ context.Context, p record.Pif) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[p.DatasetID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "dataset %d", p.DatasetID)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.DatasetVersion == 0 {
		p.DatasetVersion = 1
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now().UTC()
	}
	s.pifs = append(s.pifs, p)
	return nil
}

// FindPifs returns the systems matching f in insertion order, starting at
// from and holding at most size records, plus the total match count.
func (s *Store) FindPifs(_ context.Context, f record.PifFilter, from, size int) ([]record.Pif, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []record.Pif
	for _, p := range s.pifs {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	return window(matched, from, size), len(matched), nil
}

// FindDatasets returns the datasets matching f ordered by ID.
func (s *Store) FindDatasets(
	_ context.Context, f record.DatasetFilter, from, size int,
) ([]record.Dataset, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []record.Dataset
	for _, d := range s.datasets {
		if f.Match(d) {
			matched = append(matched, d)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, from, size), len(matched), nil
}

// CountPifs counts the systems of a dataset.
func (s *Store) CountPifs(_ context.Context, datasetID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.pifs {
		if p.DatasetID == datasetID {
			n++
		}
	}
	return n, nil
}

// BeginUpload reserves an upload of fileName into a dataset and returns its
// request ID.
func (s *Store) BeginUpload(_ context.Context, datasetID int, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[datasetID]; !ok {
		return "", errors.Wrapf(domain.ErrNotFound, "dataset %d", datasetID)
	}
	id := uuid.NewString()
	s.pending[id] = &pendingUpload{datasetID: datasetID, fileName: fileName}
	return id, nil
}

// WriteUpload stores the bytes of a pending upload.
func (s *Store) WriteUpload(_ context.Context, requestID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[requestID]
	if !ok {
		return errors.Wrapf(domain.ErrNotFound, "upload %s", requestID)
	}
	p.data = slices.Clone(data)
	p.written = true
	return nil
}

// ConfirmUpload moves a written upload into the dataset at dest, or at the
// file name given to BeginUpload when dest is empty.
func (s *Store) ConfirmUpload(_ context.Context, datasetID int, requestID, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[requestID]
	if !ok || p.datasetID != datasetID {
		return errors.Wrapf(domain.ErrNotFound, "upload %s", requestID)
	}
	if !p.written {
		return errors.Wrapf(domain.ErrInvalidQuery, "upload %s has no content", requestID)
	}
	if dest == "" {
		dest = p.fileName
	}
	files, ok := s.files[datasetID]
	if !ok {
		files = make(map[string][]byte)
		s.files[datasetID] = files
	}
	files[dest] = p.data
	delete(s.pending, requestID)
	return nil
}

// ListFiles returns the sorted dataset file paths matching path, as
// record.FileFilter selects them.
func (s *Store) ListFiles(_ context.Context, datasetID int, path string, recursive bool) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.datasets[datasetID]; !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "dataset %d", datasetID)
	}

	f := record.FileFilter{Path: path, Recursive: recursive}
	out := make([]string, 0)
	for name := range s.files[datasetID] {
		if f.Match(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// File returns the content of a dataset file.
func (s *Store) File(_ context.Context, datasetID int, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[datasetID][path]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "file %s in dataset %d", path, datasetID)
	}
	return slices.Clone(data), nil
}

func window[T any](items []T, from, size int) []T {
	if from >= len(items) || size <= 0 {
		return []T{}
	}
	end := min(from+size, len(items))
	return slices.Clone(items[from:end])
}
