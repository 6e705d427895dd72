package signals

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"
)

func TestNameTable_InternReturnsSameIndex(t *testing.T) {
	table := NewNameTable()
	a := table.Intern("changed")
	b := table.Intern("pressed")
	c := table.Intern("changed")

	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "changed", table.Name(a))
	assert.Equal(t, "pressed", table.Name(b))
}

func TestNameTable_IndicesFollowInsertionOrder(t *testing.T) {
	table := NewNameTable()
	words := faker.Lorem().Words(20)
	seen := map[string]int{}
	for _, w := range words {
		idx := table.Intern(w)
		if prev, ok := seen[w]; ok {
			assert.Equal(t, prev, idx)
			continue
		}
		assert.Equal(t, len(seen), idx)
		seen[w] = idx
	}
	assert.Equal(t, len(seen), table.Len())
}

func TestNameTable_EmptyName(t *testing.T) {
	table := NewNameTable()
	idx := table.Intern("")
	assert.Equal(t, idx, table.Intern(""))
	assert.Equal(t, "", table.Name(idx))
}

func TestNameTable_ConcurrentIntern(t *testing.T) {
	table := NewNameTable()
	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = table.Intern("ready")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, table.Len())
	for _, idx := range results {
		assert.Equal(t, 0, idx)
	}
}

func TestNames_IsProcessWide(t *testing.T) {
	assert.Same(t, Names(), Names())
	idx := Names().Intern("process_wide_name")
	assert.Equal(t, idx, Names().Intern("process_wide_name"))
}
