// Package node implements the reactive core of a tranquility node.
//
// A node consumes wire messages from a transport and processes each one in
// its own goroutine. Client-facing requests (init, echo, generate, read,
// topology) mutate the shared node state under a single lock and produce one
// synchronous reply. Broadcast messages additionally feed the gossip
// disseminator.
//
// Gossip
//
// The first time a value is seen, it is recorded in the seen set and
// forwarded to every current neighbor except the immediate sender. Each
// outbound copy carries a fresh message id which is registered in the
// unacknowledged set, together with a one-shot continuation keyed by that id.
// A retry loop scoped to the dissemination event re-sends every copy still
// unacknowledged at a fixed interval, reusing the same message id, until the
// matching broadcast_ok acks have drained the set. Duplicate deliveries of a
// value are acknowledged to their sender but never re-disseminated, so
// correctness holds under arbitrary reordering and duplication.
//
// Locking
//
// All node state (id, seen set, neighbors, sequencer, pending continuations)
// is serialized through one mutex. The unacknowledged set has its own lock
// so retry bookkeeping does not contend with message handling. The lock
// order is state first, unacked second, never reversed.
package node
