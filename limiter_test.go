package psiweb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("203.0.113.7"), "attempt %d", i+1)
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		l.Allow("203.0.113.7")
	}
	assert.False(t, l.Allow("203.0.113.7"))
}

func TestRateLimiterTracksIPsSeparately(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	assert.True(t, l.Allow("203.0.113.7"))
	assert.False(t, l.Allow("203.0.113.7"))
	assert.True(t, l.Allow("198.51.100.4"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	l := NewRateLimiter(1, 20*time.Millisecond)
	assert.True(t, l.Allow("203.0.113.7"))
	assert.False(t, l.Allow("203.0.113.7"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("203.0.113.7"), "hits outside the window are dropped")
}
