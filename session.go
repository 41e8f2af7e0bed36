package tafuzz

// maxMemberCalls bounds the member-call loop within one API session to a
// small constant rather than letting a session chain members indefinitely.
const maxMemberCalls = 2

// runSession is one API session: pick-or-construct, then zero-or-more
// member calls, then writeback.
func (t *Target) runSession(api *Api, cur *Cursor, cache *objectCache) (Object, error) {
	selector, err := cur.GetU8()
	if err != nil {
		return NoneObject, err
	}

	var obj *Object
	slot := -1 // -1 means "no cache hit; writeback as a fresh push"

	if selector < 128 {
		if hit, idx, ok := cache.Get(api.Tag, int(selector)); ok {
			obj, slot = hit, idx
		}
	}

	if obj == nil {
		ctor, err := SliceChoice(cur, api.Ctors)
		if err != nil {
			return NoneObject, err
		}
		created, err := ctor(t, cur, cache)
		if err != nil {
			return NoneObject, ErrFailedToCreateObject
		}
		if created.tag != api.Tag {
			return NoneObject, ErrInvalidObjectType
		}
		created.id = cache.AllocID(api.Tag)
		obj = &created
	}

	if len(api.Members) > 0 {
		for calls := 0; calls < maxMemberCalls; calls++ {
			cont, err := cur.GetU8()
			if err != nil {
				cache.Add(api.Tag, obj, sessionSlot(slot))
				return *obj, err
			}
			if cont&1 == 0 {
				break
			}
			member, err := SliceChoice(cur, api.Members)
			if err != nil {
				cache.Add(api.Tag, obj, sessionSlot(slot))
				return *obj, err
			}
			if obj.IsNone() {
				// A previous assign-self member poisoned the receiver this
				// session; every subsequent member call fails the same way
				// a type mismatch on the receiver's Api would.
				cache.Add(api.Tag, obj, sessionSlot(slot))
				return *obj, ErrInvalidObjectType
			}
			ret, err := member.Thunk(t, obj, cur, cache)
			if err != nil {
				cache.Add(api.Tag, obj, sessionSlot(slot))
				return *obj, err
			}
			if !member.AssignSelf {
				continue // receiver cannot change identity; ret is ignored
			}
			if ret.IsNone() {
				*obj = NoneObject // graceful poisoning of the receiver
				continue
			}
			if ret.tag != api.Tag {
				cache.Add(api.Tag, obj, sessionSlot(slot))
				return *obj, ErrInvalidObjectType
			}
			*obj = ret
		}
	}

	cache.Add(api.Tag, obj, sessionSlot(slot))
	return *obj, nil
}

func sessionSlot(slot int) *int {
	if slot < 0 {
		return nil
	}
	s := slot
	return &s
}
