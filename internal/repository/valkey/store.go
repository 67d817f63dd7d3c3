// Package valkey stores datasets, PIF systems and dataset files in Valkey
// so a sandbox survives restarts and can be shared by several replicas.
//
// Layout, under a configurable prefix:
//
//	datasets          hash  dataset ID -> dataset JSON
//	datasets:seq      int   last assigned dataset ID
//	pifs              list  PIF JSON in insertion order
//	files:<dataset>   hash  path -> content
//	uploads:<id>      hash  pending upload, expires after the upload TTL
package valkey

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/kailas-cloud/citrination/internal/db"
	"github.com/kailas-cloud/citrination/internal/domain"
	"github.com/kailas-cloud/citrination/internal/domain/record"
)

const (
	// DefaultPrefix namespaces every key the store writes.
	DefaultPrefix = "citrination:"
	// DefaultUploadTTL bounds how long a begun upload may stay unconfirmed.
	DefaultUploadTTL = time.Hour

	maxIDAttempts = 64
)

// store is the consumer interface for the catalog (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Store implements usecase/catalog.Repository and usecase/catalog.FileStore.
type Store struct {
	store     store
	prefix    string
	uploadTTL time.Duration
	now       func() time.Time
}

// New creates a store over s with the default prefix and upload TTL.
func New(s store) *Store {
	return &Store{store: s, prefix: DefaultPrefix, uploadTTL: DefaultUploadTTL, now: time.Now}
}

// WithPrefix sets the key prefix. Empty keeps the current one.
func (s *Store) WithPrefix(prefix string) *Store {
	if prefix != "" {
		s.prefix = prefix
	}
	return s
}

// WithUploadTTL sets how long pending uploads live.
func (s *Store) WithUploadTTL(ttl time.Duration) *Store {
	if ttl > 0 {
		s.uploadTTL = ttl
	}
	return s
}

// Ping implements usecase/health.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Store) datasetsKey() string   { return s.prefix + "datasets" }
func (s *Store) datasetSeqKey() string { return s.prefix + "datasets:seq" }
func (s *Store) pifsKey() string       { return s.prefix + "pifs" }

func (s *Store) filesKey(datasetID int) string {
	return s.prefix + "files:" + strconv.Itoa(datasetID)
}

func (s *Store) uploadKey(requestID string) string {
	return s.prefix + "uploads:" + requestID
}

// AddDataset stores d as is, assigning an ID when d.ID is zero.
func (s *Store) AddDataset(ctx context.Context, d record.Dataset) (record.Dataset, error) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}

	if d.ID != 0 {
		ok, err := s.putDataset(ctx, d)
		if err != nil {
			return record.Dataset{}, err
		}
		if !ok {
			return record.Dataset{}, errors.Wrapf(domain.ErrInvalidQuery, "dataset %d already exists", d.ID)
		}
		return d, nil
	}

	// Seeded datasets may hold IDs the counter has not reached yet.
	for range maxIDAttempts {
		id, err := s.store.Incr(ctx, s.datasetSeqKey())
		if err != nil {
			return record.Dataset{}, errors.Wrap(err, "next dataset id")
		}
		d.ID = int(id)
		ok, err := s.putDataset(ctx, d)
		if err != nil {
			return record.Dataset{}, err
		}
		if ok {
			return d, nil
		}
	}
	return record.Dataset{}, errors.Newf("no free dataset id after %d attempts", maxIDAttempts)
}

func (s *Store) putDataset(ctx context.Context, d record.Dataset) (bool, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return false, errors.Wrap(err, "marshal dataset")
	}
	ok, err := s.store.HSetNX(ctx, s.datasetsKey(), strconv.Itoa(d.ID), string(data))
	if err != nil {
		return false, errors.Wrapf(err, "store dataset %d", d.ID)
	}
	return ok, nil
}

// CreateDataset stores a new dataset.
func (s *Store) CreateDataset(ctx context.Context, name, description string, public bool) (record.Dataset, error) {
	return s.AddDataset(ctx, record.Dataset{Name: name, Description: description, Public: public})
}

// checkDataset returns domain.ErrNotFound when the dataset does not exist.
func (s *Store) checkDataset(ctx context.Context, id int) error {
	_, err := s.store.HGet(ctx, s.datasetsKey(), strconv.Itoa(id))
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return errors.Wrapf(domain.ErrNotFound, "dataset %d", id)
	case err != nil:
		return errors.Wrapf(err, "load dataset %d", id)
	}
	return nil
}

// AddPif stores p. Its dataset must exist.
func (s *Store) AddPif(ctx context.Context, p record.Pif) error {
	if err := s.checkDataset(ctx, p.DatasetID); err != nil {
		return err
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
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal pif")
	}
	if err := s.store.RPush(ctx, s.pifsKey(), string(data)); err != nil {
		return errors.Wrapf(err, "store pif %s", p.ID)
	}
	return nil
}

func (s *Store) loadPifs(ctx context.Context) ([]record.Pif, error) {
	rows, err := s.store.LRange(ctx, s.pifsKey(), 0, -1)
	if err != nil {
		return nil, errors.Wrap(err, "load pifs")
	}
	out := make([]record.Pif, 0, len(rows))
	for i, row := range rows {
		var p record.Pif
		if err := json.Unmarshal([]byte(row), &p); err != nil {
			return nil, errors.Wrapf(err, "decode pif %d", i)
		}
		out = append(out, p)
	}
	return out, nil
}

// FindPifs returns the systems matching f in insertion order, starting at
// from and holding at most size records, plus the total match count.
func (s *Store) FindPifs(ctx context.Context, f record.PifFilter, from, size int) ([]record.Pif, int, error) {
	pifs, err := s.loadPifs(ctx)
	if err != nil {
		return nil, 0, err
	}
	var matched []record.Pif
	for _, p := range pifs {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	return window(matched, from, size), len(matched), nil
}

// FindDatasets returns the datasets matching f ordered by ID.
func (s *Store) FindDatasets(
	ctx context.Context, f record.DatasetFilter, from, size int,
) ([]record.Dataset, int, error) {
	rows, err := s.store.HGetAll(ctx, s.datasetsKey())
	if err != nil {
		return nil, 0, errors.Wrap(err, "load datasets")
	}
	var matched []record.Dataset
	for id, row := range rows {
		var d record.Dataset
		if err := json.Unmarshal([]byte(row), &d); err != nil {
			return nil, 0, errors.Wrapf(err, "decode dataset %s", id)
		}
		if f.Match(d) {
			matched = append(matched, d)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return window(matched, from, size), len(matched), nil
}

// CountPifs counts the systems of a dataset.
func (s *Store) CountPifs(ctx context.Context, datasetID int) (int, error) {
	_, n, err := s.FindPifs(ctx, record.PifFilter{IncludeDatasets: []int{datasetID}}, 0, 0)
	return n, err
}

// BeginUpload reserves an upload of fileName into a dataset and returns its
// request ID. The reservation expires after the upload TTL.
func (s *Store) BeginUpload(ctx context.Context, datasetID int, fileName string) (string, error) {
	if err := s.checkDataset(ctx, datasetID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	key := s.uploadKey(id)
	if err := s.store.HSet(ctx, key, map[string]string{
		"dataset_id": strconv.Itoa(datasetID),
		"file_name":  fileName,
	}); err != nil {
		return "", errors.Wrapf(err, "begin upload %s", id)
	}
	if err := s.store.Expire(ctx, key, s.uploadTTL); err != nil {
		return "", errors.Wrapf(err, "expire upload %s", id)
	}
	return id, nil
}

// WriteUpload stores the bytes of a pending upload.
func (s *Store) WriteUpload(ctx context.Context, requestID string, data []byte) error {
	key := s.uploadKey(requestID)
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "check upload %s", requestID)
	}
	if !ok {
		return errors.Wrapf(domain.ErrNotFound, "upload %s", requestID)
	}
	if err := s.store.HSet(ctx, key, map[string]string{"data": string(data), "written": "1"}); err != nil {
		return errors.Wrapf(err, "write upload %s", requestID)
	}
	return nil
}

// ConfirmUpload moves a written upload into the dataset at dest, or at the
// file name given to BeginUpload when dest is empty.
func (s *Store) ConfirmUpload(ctx context.Context, datasetID int, requestID, dest string) error {
	key := s.uploadKey(requestID)
	p, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "load upload %s", requestID)
	}
	if len(p) == 0 || p["dataset_id"] != strconv.Itoa(datasetID) {
		return errors.Wrapf(domain.ErrNotFound, "upload %s", requestID)
	}
	if p["written"] != "1" {
		return errors.Wrapf(domain.ErrInvalidQuery, "upload %s has no content", requestID)
	}
	if dest == "" {
		dest = p["file_name"]
	}
	if err := s.store.HSet(ctx, s.filesKey(datasetID), map[string]string{dest: p["data"]}); err != nil {
		return errors.Wrapf(err, "store file %s", dest)
	}
	if err := s.store.Del(ctx, key); err != nil {
		return errors.Wrapf(err, "clear upload %s", requestID)
	}
	return nil
}

// ListFiles returns the sorted dataset file paths matching path, as
// record.FileFilter selects them.
func (s *Store) ListFiles(ctx context.Context, datasetID int, path string, recursive bool) ([]string, error) {
	if err := s.checkDataset(ctx, datasetID); err != nil {
		return nil, err
	}
	files, err := s.store.HGetAll(ctx, s.filesKey(datasetID))
	if err != nil {
		return nil, errors.Wrapf(err, "load files of dataset %d", datasetID)
	}
	f := record.FileFilter{Path: path, Recursive: recursive}
	out := make([]string, 0)
	for name := range files {
		if f.Match(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// File returns the content of a dataset file.
func (s *Store) File(ctx context.Context, datasetID int, path string) ([]byte, error) {
	v, err := s.store.HGet(ctx, s.filesKey(datasetID), path)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, errors.Wrapf(domain.ErrNotFound, "file %s in dataset %d", path, datasetID)
	case err != nil:
		return nil, errors.Wrapf(err, "load file %s", path)
	}
	return []byte(v), nil
}

func window[T any](items []T, from, size int) []T {
	if from >= len(items) || size <= 0 {
		return []T{}
	}
	end := min(from+size, len(items))
	out := make([]T, end-from)
	copy(out, items[from:end])
	return out
}
