package store

import "sync"

// MemoryStore is a DataStore that lives for the process only. Numbers are
// stable across runs within the process and, because keys are interned in a
// deterministic order, across processes for unchanged source.
//
// Thread safety: the mutex protects both maps.
type MemoryStore struct {
	mu       sync.Mutex
	entities map[EntityKey]uint32
	next     map[string]uint32
	files    map[string]File
	nextFile int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[EntityKey]uint32),
		next:     make(map[string]uint32),
		files:    make(map[string]File),
	}
}

func (m *MemoryStore) InternAll(keys []EntityKey) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nums := make([]uint32, len(keys))
	for i, k := range keys {
		n, ok := m.entities[k]
		if !ok {
			n = m.next[k.Kind]
			m.next[k.Kind] = n + 1
			m.entities[k] = n
		}
		nums[i] = n
	}
	return nums, nil
}

func (m *MemoryStore) FileByPath(path string) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *MemoryStore) UpsertFile(f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.files[f.Path]; ok {
		f.ID = prev.ID
	} else {
		m.nextFile++
		f.ID = m.nextFile
	}
	m.files[f.Path] = *f
	return nil
}

func (m *MemoryStore) PruneFiles(keep []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(keep))
	for _, p := range keep {
		want[p] = true
	}
	n := 0
	for p := range m.files {
		if !want[p] {
			delete(m.files, p)
			n++
		}
	}
	return n, nil
}
