package marker

import (
	"sort"
	"sync"
)

// Op names a store operation for failure injection.
type Op int

const (
	// OpCheck is IsExcluded.
	OpCheck Op = iota
	// OpAdd is AddExclusion.
	OpAdd
	// OpRemove is RemoveExclusion.
	OpRemove
)

// MemoryStore keeps marks in process memory.
// Path existence is still checked against the filesystem, so the error
// behaviour matches the persistent stores.
type MemoryStore struct {
	mu       sync.Mutex
	marked   map[string]struct{}
	failures map[Op]map[string]error
	adds     []string
	removes  []string
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		marked:   make(map[string]struct{}),
		failures: make(map[Op]map[string]error),
	}
}

// FailOn makes op on path return err until cleared with a nil err.
func (m *MemoryStore) FailOn(op Op, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures[op], path)
		return
	}
	if m.failures[op] == nil {
		m.failures[op] = make(map[string]error)
	}
	m.failures[op][path] = err
}

// Mark sets the mark on path without touching the filesystem or the
// operation history.
func (m *MemoryStore) Mark(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		m.marked[p] = struct{}{}
	}
}

func (m *MemoryStore) injected(op Op, path string) error {
	if err, ok := m.failures[op][path]; ok {
		return err
	}
	return nil
}

// IsExcluded implements Store.
func (m *MemoryStore) IsExcluded(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpCheck, path); err != nil {
		return false, err
	}
	if err := checkExists(path); err != nil {
		return false, err
	}
	_, ok := m.marked[path]
	return ok, nil
}

// AddExclusion implements Store.
func (m *MemoryStore) AddExclusion(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpAdd, path); err != nil {
		return err
	}
	if err := checkExists(path); err != nil {
		return err
	}
	m.marked[path] = struct{}{}
	m.adds = append(m.adds, path)
	return nil
}

// RemoveExclusion implements Store.
func (m *MemoryStore) RemoveExclusion(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpRemove, path); err != nil {
		return err
	}
	if err := checkExists(path); err != nil {
		return err
	}
	delete(m.marked, path)
	m.removes = append(m.removes, path)
	return nil
}

// List returns the marked paths in lexicographic order.
func (m *MemoryStore) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.marked))
	for p := range m.marked {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Adds returns every successful AddExclusion call in order.
func (m *MemoryStore) Adds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.adds...)
}

// Removes returns every successful RemoveExclusion call in order.
func (m *MemoryStore) Removes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removes...)
}
