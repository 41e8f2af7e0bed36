package tafuzz

// idAllocator hands out per-Api monotonically increasing obj-ids, starting
// at 0 and incrementing by one on each fresh construction. Both the Object
// Cache (fuzz path, cache.go) and the Assembler (encode path, encoder.go)
// keep one of these, independently — identity is assigned at construction
// time in both directions, never shared between them.
type idAllocator struct {
	next map[ApiTag]uint64
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: make(map[ApiTag]uint64)}
}

// Alloc returns the next obj-id for tag and advances the counter.
func (a *idAllocator) Alloc(tag ApiTag) uint64 {
	id := a.next[tag]
	a.next[tag] = id + 1
	return id
}
