package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_LaneOrder(t *testing.T) {
	d := NewDispatcher(2)
	var mu sync.Mutex
	seen := map[int][]int{}

	lanes := [][]int{{0, 3, 4}, {1, 5}, {2}}
	laneOf := map[int]int{0: 0, 3: 0, 4: 0, 1: 1, 5: 1, 2: 2}

	d.Run(context.Background(), lanes, func(_ context.Context, idx int) {
		mu.Lock()
		defer mu.Unlock()
		seen[laneOf[idx]] = append(seen[laneOf[idx]], idx)
	})

	assert.Equal(t, []int{0, 3, 4}, seen[0])
	assert.Equal(t, []int{1, 5}, seen[1])
	assert.Equal(t, []int{2}, seen[2])
}

func TestDispatcher_StopsBetweenPoints(t *testing.T) {
	d := NewDispatcher(1)
	ctx, cancel := context.WithCancel(context.Background())
	var handled []int

	d.Run(ctx, [][]int{{0, 1, 2}}, func(_ context.Context, idx int) {
		handled = append(handled, idx)
		if idx == 1 {
			cancel()
		}
	})

	assert.Equal(t, []int{0, 1}, handled)
}
