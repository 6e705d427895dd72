package signals

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// NameTable interns signal names so that dispatchers keep an index instead
// of their own copy of the string.
type NameTable struct {
	mu      sync.RWMutex
	names   []string
	buckets map[uint64][]int
}

func NewNameTable() *NameTable {
	return &NameTable{buckets: make(map[uint64][]int)}
}

var names = NewNameTable()

// Names returns the process-wide name table.
func Names() *NameTable {
	return names
}

// Intern returns the index of name, adding it on first use.
func (t *NameTable) Intern(name string) int {
	h := xxhash.Sum64String(name)

	t.mu.RLock()
	idx, ok := t.lookup(h, name)
	t.mu.RUnlock()
	if ok {
		return idx
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.lookup(h, name); ok {
		return idx
	}
	idx = len(t.names)
	t.names = append(t.names, name)
	t.buckets[h] = append(t.buckets[h], idx)
	return idx
}

func (t *NameTable) lookup(h uint64, name string) (int, bool) {
	for _, idx := range t.buckets[h] {
		if t.names[idx] == name {
			return idx, true
		}
	}
	return 0, false
}

// Name returns the interned string at idx. It panics on an index the table
// never handed out.
func (t *NameTable) Name(idx int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.names[idx]
}

func (t *NameTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
