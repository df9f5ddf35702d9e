package app

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxLatestWins(t *testing.T) {
	m := NewMailbox()

	m.Post([]mgl32.Vec2{{1, 1}})
	m.Post([]mgl32.Vec2{{2, 2}})
	m.Post([]mgl32.Vec2{{3, 3}})

	targets, ok := m.Poll()
	require.True(t, ok)
	assert.Equal(t, []mgl32.Vec2{{3, 3}}, targets)

	_, ok = m.Poll()
	assert.False(t, ok, "stale layouts must be discarded, not queued")
}

func TestMailboxPollEmpty(t *testing.T) {
	m := NewMailbox()
	targets, ok := m.Poll()
	assert.False(t, ok)
	assert.Nil(t, targets)
}

func TestMailboxConcurrentPosters(t *testing.T) {
	m := NewMailbox()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Post([]mgl32.Vec2{{float32(i), float32(j)}})
			}
		}(i)
	}
	wg.Wait()

	// Whatever survived, it is exactly one whole array.
	targets, ok := m.Poll()
	require.True(t, ok)
	assert.Len(t, targets, 1)
	_, ok = m.Poll()
	assert.False(t, ok)
}
