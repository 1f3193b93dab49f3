// Package net implements transports that carry wire messages between a node
// and the outside world.
//
// There are two implementations of the Transport interface:
//
// - Stream: newline-delimited JSON over a pair of byte streams, normally
// stdin/stdout. This is the transport a supervising harness drives.
//
// - Inmem: in-memory transport used only for testing.
package net

import "github.com/nohmar/tranquility/src/wire"

// Transport provides an interface for a node to exchange wire messages with
// clients and other nodes.
type Transport interface {

	// Listen starts pumping inbound messages to the consumer channel.
	Listen()

	// Consumer returns a channel that delivers inbound messages. It is
	// closed when the inbound stream ends.
	Consumer() <-chan wire.Message

	// Send emits one outbound message. Implementations flush immediately so
	// an observer sees whole messages in emission order.
	Send(msg wire.Message) error

	// LocalAddr is used to return our local address.
	LocalAddr() string

	// Close permanently closes a transport, stopping any associated
	// goroutines and freeing other resources.
	Close() error
}
