package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Snapshot())
}

func TestRingTail(t *testing.T) {
	r := NewRing[int](10)
	for i := 0; i < 6; i++ {
		r.Append(i)
	}
	assert.Equal(t, []int{4, 5}, r.Tail(2))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, r.Tail(100))
}

func TestRingMutateInPlace(t *testing.T) {
	r := NewRing[int](5)
	for i := 1; i <= 3; i++ {
		r.Append(i)
	}
	r.Mutate(func(items []int) {
		for i := range items {
			items[i] *= 10
		}
	})
	assert.Equal(t, []int{10, 20, 30}, r.Snapshot())
	assert.Equal(t, 3, r.Len())
}

func TestRingConcurrentAppend(t *testing.T) {
	r := NewRing[int](100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r.Append(n)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())
}
