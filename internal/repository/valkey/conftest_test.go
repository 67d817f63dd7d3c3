package valkey

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/citrination/internal/db"
)

// fakeStore is an in-process stand-in for Valkey implementing the consumer
// interface. Setting err[op] makes that operation fail.
type fakeStore struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	lists   map[string][]string
	ints    map[string]int64
	expires map[string]time.Duration
	err     map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes:  make(map[string]map[string]string),
		lists:   make(map[string][]string),
		ints:    make(map[string]int64),
		expires: make(map[string]time.Duration),
		err:     make(map[string]error),
	}
}

func (f *fakeStore) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err["PING"]
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpHSet]; err != nil {
		return err
	}
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (f *fakeStore) HSetNX(_ context.Context, key, field, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpHSetNX]; err != nil {
		return false, err
	}
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	if _, ok := h[field]; ok {
		return false, nil
	}
	h[field] = value
	return true, nil
}

func (f *fakeStore) HGet(_ context.Context, key, field string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpHGet]; err != nil {
		return "", err
	}
	v, ok := f.hashes[key][field]
	if !ok {
		return "", db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpHGetAll]; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpDel]; err != nil {
		return err
	}
	delete(f.hashes, key)
	delete(f.lists, key)
	delete(f.ints, key)
	delete(f.expires, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpExists]; err != nil {
		return false, err
	}
	_, h := f.hashes[key]
	_, l := f.lists[key]
	_, i := f.ints[key]
	return h || l || i, nil
}

func (f *fakeStore) RPush(_ context.Context, key string, values ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpRPush]; err != nil {
		return err
	}
	f.lists[key] = append(f.lists[key], values...)
	return nil
}

func (f *fakeStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpLRange]; err != nil {
		return nil, err
	}
	l := f.lists[key]
	n := int64(len(l))
	if stop < 0 {
		stop += n
	}
	if start >= n || start > stop {
		return []string{}, nil
	}
	stop = min(stop, n-1)
	return append([]string(nil), l[start:stop+1]...), nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpIncr]; err != nil {
		return 0, err
	}
	f.ints[key]++
	return f.ints[key], nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[db.OpExpire]; err != nil {
		return err
	}
	f.expires[key] = ttl
	return nil
}

func (f *fakeStore) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err[op] = err
}
