package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigCache(t *testing.T) {
	c := NewSigCache(0)

	assert.False(t, c.Has("sig1"))
	c.Add("sig1")
	assert.True(t, c.Has("sig1"))

	c.Add("sig1") // duplicate add is a no-op
	assert.Equal(t, 1, c.Len())
}

func TestSigCacheSeed(t *testing.T) {
	c := NewSigCache(100)
	c.Seed([]string{"sig1", "sig2", "sig1"})

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("sig1"))
	assert.True(t, c.Has("sig2"))
}

func TestSigCacheEvictsOldest(t *testing.T) {
	c := NewSigCache(3)
	for i := 0; i < 4; i++ {
		c.Add(fmt.Sprintf("sig%d", i))
	}

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Has("sig0"), "oldest entry is evicted first")
	assert.True(t, c.Has("sig3"))
}
