package tafuzz

// objectCache is the per-test-case Object Cache: a mapping from Api tag to
// a dense vector of optional Objects, so an entry can be taken out by
// index and later refilled. A nil slot means "empty"; taking a slot leaves
// nil behind until the caller writes it back.
//
// The cache is created fresh for every call to Fuzz and dropped when that
// call returns — it never outlives one test case, and it is never shared
// across goroutines: exactly one test case is in flight at a time, so no
// locking is needed on the fuzz path.
type objectCache struct {
	buckets map[ApiTag][]*Object
	ids     *idAllocator
}

func newObjectCache() *objectCache {
	return &objectCache{
		buckets: make(map[ApiTag][]*Object),
		ids:     newIDAllocator(),
	}
}

// Get returns the object at slot (i mod len(bucket)), taking it out of the
// cache (the slot becomes empty until a matching Add call). ok is false on
// an empty bucket — a cache miss.
func (c *objectCache) Get(tag ApiTag, i int) (obj *Object, slot int, ok bool) {
	bucket := c.buckets[tag]
	if len(bucket) == 0 {
		return nil, -1, false
	}
	idx := i % len(bucket)
	if bucket[idx] == nil {
		return nil, idx, false
	}
	obj, bucket[idx] = bucket[idx], nil
	return obj, idx, true
}

// Add writes obj back into bucket tag. If slot is non-nil it overwrites
// that exact index (the object was taken from there earlier in the same
// session); otherwise it is appended as a brand new entry.
func (c *objectCache) Add(tag ApiTag, obj *Object, slot *int) {
	bucket := c.buckets[tag]
	if slot != nil {
		for len(bucket) <= *slot {
			bucket = append(bucket, nil)
		}
		bucket[*slot] = obj
		c.buckets[tag] = bucket
		return
	}
	c.buckets[tag] = append(bucket, obj)
}

// AllocID assigns the next per-Api obj-id to a freshly constructed object.
// Call exactly once, right after a constructor thunk succeeds and before
// the object is ever exposed to Add/Get.
func (c *objectCache) AllocID(tag ApiTag) uint64 {
	return c.ids.Alloc(tag)
}

// Len reports how many slots bucket tag currently has (used by tests to
// assert cache discipline).
func (c *objectCache) Len(tag ApiTag) int {
	return len(c.buckets[tag])
}
