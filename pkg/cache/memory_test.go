package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	m.Set("a", 42, time.Minute)

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestMiss(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	m.Set("a", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, err := m.Get("a")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())
}

func TestLRUEviction(t *testing.T) {
	m := NewMemory(WithMaxSize(2))
	defer m.Close()

	m.Set("a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	m.Set("b", 2, time.Minute)
	time.Sleep(time.Millisecond)

	// touching a makes b the eviction candidate
	_, err := m.Get("a")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	m.Set("c", 3, time.Minute)

	_, err = m.Get("b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get("a")
	assert.NoError(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "history:1:2:100", Key("history", 1, 2, 100))
}
