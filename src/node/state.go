package node

import (
	"sort"

	"github.com/nohmar/tranquility/src/peers"
)

// State aggregates the mutable state of a node: its identifier, the set of
// accepted broadcast values, the current topology, the message-id sequencer,
// and the pending continuation table. State carries no lock of its own; the
// owning Node serializes access through its state lock.
type State struct {
	id        string
	seen      map[uint32]struct{}
	neighbors *peers.PeerSet
	nextID    uint32
	pending   map[uint32]func()
}

// NewState returns an empty State seeded with the given neighbor set.
func NewState(neighbors *peers.PeerSet) *State {
	if neighbors == nil {
		neighbors = peers.NewPeerSet(nil)
	}
	return &State{
		seen:      make(map[uint32]struct{}),
		neighbors: neighbors,
		pending:   make(map[uint32]func()),
	}
}

// ID returns the node's identifier, or the empty string before init.
func (s *State) ID() string {
	return s.id
}

// SetID assigns the node's identifier. It reports whether an identifier had
// already been assigned; re-init is not guarded, only surfaced.
func (s *State) SetID(id string) bool {
	prev := s.id != ""
	s.id = id
	return prev
}

// MarkSeen inserts a value into the seen set and reports whether this was
// its first sight. The insert happens before any fan-out so a concurrent
// duplicate delivery is suppressed.
func (s *State) MarkSeen(value uint32) bool {
	if _, ok := s.seen[value]; ok {
		return false
	}
	s.seen[value] = struct{}{}
	return true
}

// SeenValues returns the accepted values, sorted ascending.
func (s *State) SeenValues() []uint32 {
	res := make([]uint32, 0, len(s.seen))
	for v := range s.seen {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// SeenCount returns the number of accepted values.
func (s *State) SeenCount() int {
	return len(s.seen)
}

// Neighbors returns the current neighbor ids.
func (s *State) Neighbors() []string {
	return s.neighbors.IDs()
}

// ReplaceNeighbors swaps in a new neighbor list.
func (s *State) ReplaceNeighbors(ids []string) {
	s.neighbors.Replace(ids)
}

// NextID increments and returns the message-id sequencer. Ids are unique for
// the node's lifetime; wrapping at the uint32 boundary is accepted.
func (s *State) NextID() uint32 {
	s.nextID++
	return s.nextID
}

// LastID returns the most recently allocated message id.
func (s *State) LastID() uint32 {
	return s.nextID
}

// AddPending registers a one-shot continuation keyed by an outbound message
// id.
func (s *State) AddPending(id uint32, fn func()) {
	s.pending[id] = fn
}

// TakePending removes and returns the continuation for id. Removal before
// invocation is what guarantees the continuation runs at most once.
func (s *State) TakePending(id uint32) (func(), bool) {
	fn, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return fn, ok
}

// PendingCount returns the number of outstanding continuations.
func (s *State) PendingCount() int {
	return len(s.pending)
}
