package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	assert.Equal(t, []int{1, 2}, q.PopN(2))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []int{3, 4}, q.PopN(0))

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Nil(t, q.PopN(3))
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	const producers, perProducer = 8, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	items := q.PopN(0)
	require.Len(t, items, producers*perProducer)

	seen := make(map[int]bool, len(items))
	last := make(map[int]int)
	for _, v := range items {
		assert.False(t, seen[v])
		seen[v] = true

		// Порядок внутри одного производителя сохраняется
		p := v / perProducer
		if prev, ok := last[p]; ok {
			assert.Less(t, prev, v)
		}
		last[p] = v
	}
}
