package node

import "sync"

// unackedSet tracks message ids that have been sent as part of a
// dissemination but not yet acknowledged. It has its own lock, independent of
// the node state lock, so retry loops can poll it without contending with
// message handlers. Lock order is always state lock first, unackedSet
// second.
type unackedSet struct {
	sync.Mutex
	ids map[uint32]struct{}
}

func newUnackedSet() *unackedSet {
	return &unackedSet{
		ids: make(map[uint32]struct{}),
	}
}

func (u *unackedSet) Add(id uint32) {
	u.Lock()
	defer u.Unlock()
	u.ids[id] = struct{}{}
}

func (u *unackedSet) Remove(id uint32) {
	u.Lock()
	defer u.Unlock()
	delete(u.ids, id)
}

func (u *unackedSet) Contains(id uint32) bool {
	u.Lock()
	defer u.Unlock()
	_, ok := u.ids[id]
	return ok
}

func (u *unackedSet) Len() int {
	u.Lock()
	defer u.Unlock()
	return len(u.ids)
}
