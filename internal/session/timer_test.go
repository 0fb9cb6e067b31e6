package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTick = 2 * time.Millisecond

func TestCountdown_TicksDownAndExpiresOnce(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	expires := 0
	done := make(chan struct{})

	c := newCountdown(3, testTick,
		func(remaining int) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		func() {
			mu.Lock()
			expires++
			mu.Unlock()
			close(done)
		},
	)
	c.Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown never expired")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, expires)
}

func TestCountdown_StopCancelsFutureTicks(t *testing.T) {
	var mu sync.Mutex
	ticks := 0
	expired := false

	c := newCountdown(1000, testTick,
		func(int) {
			mu.Lock()
			ticks++
			mu.Unlock()
		},
		func() {
			mu.Lock()
			expired = true
			mu.Unlock()
		},
	)
	c.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks > 0
	}, time.Second, time.Millisecond)

	c.Stop()
	mu.Lock()
	seen := ticks
	mu.Unlock()

	time.Sleep(10 * testTick)

	mu.Lock()
	defer mu.Unlock()
	// One in-flight tick may land after Stop; nothing more.
	assert.LessOrEqual(t, ticks, seen+1)
	assert.False(t, expired)
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	c := NewCountdown(1, nil, nil)
	c.Start()
	c.Stop()
	c.Stop() // must not panic

	expired := newCountdown(1, testTick, nil, nil)
	expired.Start()
	time.Sleep(10 * testTick)
	expired.Stop() // after expiry, still a no-op
}
