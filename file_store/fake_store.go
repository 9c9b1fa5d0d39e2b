package file_store

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"sort"
	"sync"
)

// FakeImageStore keeps images in memory. FailSave makes the next Save fail,
// used to exercise upload failures.
type FakeImageStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	FailSave bool
}

func NewFakeImageStore() *FakeImageStore {
	return &FakeImageStore{files: map[string][]byte{}}
}

func (s *FakeImageStore) Save(ctx context.Context, name string, content io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave {
		s.FailSave = false
		return errors.New("fake save failure")
	}
	b, err := ioutil.ReadAll(content)
	if err != nil {
		return err
	}
	s.files[name] = b
	return nil
}

func (s *FakeImageStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok, nil
}

func (s *FakeImageStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *FakeImageStore) UrlFor(name string) string {
	return "/static/images/" + name
}

// Names lists stored image names in order.
func (s *FakeImageStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
