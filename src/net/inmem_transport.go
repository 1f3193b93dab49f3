package net

import (
	"fmt"
	"sync"

	"github.com/nohmar/tranquility/src/wire"
)

// InmemTransport implements the Transport interface, to allow a node to be
// tested in-memory without going over a stream. Messages addressed to a
// connected peer are delivered to that peer's consumer channel; every sent
// message is also recorded so tests can observe outbound traffic.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan wire.Message
	localAddr  string
	peers      map[string]*InmemTransport
	sent       []wire.Message
	sentCh     chan wire.Message
}

// NewInmemTransport is used to initialize a new transport for the given
// address.
func NewInmemTransport(addr string) *InmemTransport {
	return &InmemTransport{
		consumerCh: make(chan wire.Message, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		sentCh:     make(chan wire.Message, 1024),
	}
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan wire.Message {
	return i.consumerCh
}

// Send implements the Transport interface. The message is recorded, then
// routed to the destination peer if one is connected.
func (i *InmemTransport) Send(msg wire.Message) error {
	i.Lock()
	i.sent = append(i.sent, msg)
	peer, connected := i.peers[msg.Dest]
	i.Unlock()

	select {
	case i.sentCh <- msg:
	default:
	}

	if connected {
		return peer.Deliver(msg)
	}
	return nil
}

// Deliver pushes a message onto this transport's consumer channel, as if it
// had arrived on the wire.
func (i *InmemTransport) Deliver(msg wire.Message) error {
	select {
	case i.consumerCh <- msg:
		return nil
	default:
		return fmt.Errorf("consumer channel full: %v", i.localAddr)
	}
}

// Sent returns a copy of every message sent so far.
func (i *InmemTransport) Sent() []wire.Message {
	i.RLock()
	defer i.RUnlock()
	res := make([]wire.Message, len(i.sent))
	copy(res, i.sent)
	return res
}

// SentCh returns a channel that receives sent messages as they are emitted.
func (i *InmemTransport) SentCh() <-chan wire.Message {
	return i.sentCh
}

// Connect is used to connect this transport to another transport for a given
// peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Close is used to permanently disable the transport.
func (i *InmemTransport) Close() error {
	i.DisconnectAll()
	return nil
}

// Listen is an empty function as there is no need to defer initialisation of
// the in-memory transport.
func (i *InmemTransport) Listen() {
}
