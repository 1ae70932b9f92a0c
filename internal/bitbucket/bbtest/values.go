package bbtest

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.abhg.dev/bbs/internal/httptest"
	"gopkg.in/yaml.v3"
)

// Value returns a value that is stable across recording and replay.
//
// When recording, gen produces the value and it is saved with the fixture.
// When replaying, the saved value is returned.
// Against the fake server, gen produces the value once per test
// and it is kept in memory only.
func (s *Server) Value(name string, gen func() string) string {
	return s.values.Get(name, gen)
}

// valueStore holds the values of a single fixture
// in <dir>/<fixture>.values.yaml.
type valueStore struct {
	t      testing.TB
	path   string
	record bool

	mu     sync.Mutex
	values map[string]string
}

// newMemoryValueStore builds a store that generates values on first use
// and never writes them out.
func newMemoryValueStore(t testing.TB) *valueStore {
	return &valueStore{
		t:      t,
		record: true,
		values: make(map[string]string),
	}
}

func newValueStore(t testing.TB, dir, fixture string, record bool) *valueStore {
	if dir == "" {
		dir = httptest.DefaultFixtureDir
	}
	s := &valueStore{
		t:      t,
		path:   filepath.Join(dir, fixture) + ".values.yaml",
		record: record,
		values: make(map[string]string),
	}

	if record {
		t.Cleanup(func() {
			assert.NoError(t, s.save())
		})
		return s
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.Fatalf("Read fixture values: %v", err)
		}
		return s
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		t.Fatalf("Parse fixture values %v: %v", s.path, err)
	}
	return s
}

// Get returns the value with the given name.
func (s *valueStore) Get(name string, gen func() string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[name]; ok {
		return v
	}
	if !s.record {
		s.t.Fatalf("Fixture value %q was not recorded. Re-run with -update.", name)
		return ""
	}

	v := gen()
	s.values[name] = v
	return v
}

func (s *valueStore) save() error {
	s.mu.Lock()
	values := maps.Clone(s.values)
	s.mu.Unlock()

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create fixture directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write values: %w", err)
	}
	return nil
}
