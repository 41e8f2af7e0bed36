package tafuzz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectCacheMissOnEmptyBucket(t *testing.T) {
	c := newObjectCache()
	_, _, ok := c.Get(0, 0)
	require.False(t, ok)
}

func TestObjectCacheAddThenGetTakesSlot(t *testing.T) {
	c := newObjectCache()
	obj := newObject(0, "hello")
	c.Add(0, &obj, nil)
	require.Equal(t, 1, c.Len(0))

	got, slot, ok := c.Get(0, 0)
	require.True(t, ok)
	require.Equal(t, 0, slot)
	require.Equal(t, "hello", got.Value())

	// the slot is now empty: a second Get at the same index misses.
	_, _, ok = c.Get(0, 0)
	require.False(t, ok)
}

func TestObjectCacheAddOverwritesExactSlot(t *testing.T) {
	c := newObjectCache()
	first := newObject(0, "a")
	c.Add(0, &first, nil)

	_, slot, ok := c.Get(0, 0)
	require.True(t, ok)

	second := newObject(0, "b")
	c.Add(0, &second, &slot)
	require.Equal(t, 1, c.Len(0))

	got, _, ok := c.Get(0, 0)
	require.True(t, ok)
	require.Equal(t, "b", got.Value())
}

func TestObjectCacheIndexWrapsModBucketLength(t *testing.T) {
	c := newObjectCache()
	a := newObject(0, "a")
	b := newObject(0, "b")
	c.Add(0, &a, nil)
	c.Add(0, &b, nil)

	got, _, ok := c.Get(0, 2) // 2 % 2 == 0
	require.True(t, ok)
	require.Equal(t, "a", got.Value())
}

func TestIDAllocatorStartsAtZeroPerTag(t *testing.T) {
	ids := newIDAllocator()
	require.EqualValues(t, 0, ids.Alloc(0))
	require.EqualValues(t, 1, ids.Alloc(0))
	require.EqualValues(t, 0, ids.Alloc(1)) // independent counter per tag
}
