package node

import (
	"strconv"
	"sync"
	"time"

	"github.com/nohmar/tranquility/src/net"
	"github.com/nohmar/tranquility/src/peers"
	"github.com/nohmar/tranquility/src/wire"
	"github.com/sirupsen/logrus"
)

// Node is one participant in the cluster. It consumes messages from the
// transport, dispatches each one to its own goroutine, and tracks every
// handler and retry loop in a WaitGroup so Shutdown can drain them.
type Node struct {
	conf   *Config
	logger *logrus.Entry

	state     *State
	stateLock sync.Mutex

	unacked *unackedSet

	trans net.Transport
	netCh <-chan wire.Message

	// Shutdown channel to exit, protected to prevent concurrent exits
	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	wg sync.WaitGroup

	// set once at construction, read concurrently by GetStats
	start time.Time
}

// NewNode is a factory method that returns a Node instance. The seed peer
// set may be nil; a topology message replaces it either way.
func NewNode(conf *Config, trans net.Transport, seed *peers.PeerSet) *Node {
	return &Node{
		conf:       conf,
		logger:     conf.Logger.WithField("component", "node"),
		state:      NewState(seed),
		unacked:    newUnackedSet(),
		trans:      trans,
		netCh:      trans.Consumer(),
		shutdownCh: make(chan struct{}),
		start:      time.Now(),
	}
}

// Run invokes the main loop of the node. It returns when the transport's
// consumer channel is closed or Shutdown is called. Every inbound message is
// processed in its own goroutine, so handlers run concurrently.
func (n *Node) Run() {
	n.trans.Listen()

	for {
		select {
		case msg, ok := <-n.netCh:
			if !ok {
				n.logger.Debug("Input stream closed")
				return
			}
			n.goFunc(func() {
				n.handleMessage(msg)
			})
		case <-n.shutdownCh:
			return
		}
	}
}

// RunAsync calls Run in a separate goroutine.
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")
	go n.Run()
}

// Shutdown signals every background routine to stop, waits for them, then
// closes the transport. Any
// retry loop still running exits on the shutdown channel, so in-flight
// retries are drained rather than abandoned.
func (n *Node) Shutdown() {
	n.shutdownLock.Lock()
	defer n.shutdownLock.Unlock()

	if !n.shutdown {
		n.logger.Debug("Shutdown")
		close(n.shutdownCh)
		n.shutdown = true
	}

	n.wg.Wait()

	if err := n.trans.Close(); err != nil {
		n.logger.WithError(err).Error("Closing transport")
	}
}

// goFunc starts a tracked goroutine. Unlike a bounded pool, every message
// must be processed, so there is no cap.
func (n *Node) goFunc(f func()) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		f()
	}()
}

// send emits one outbound message. Transport errors are logged, not
// propagated: a failed send is indistinguishable from a lost message and is
// recovered by the retry loop where it matters.
func (n *Node) send(msg wire.Message) {
	if err := n.trans.Send(msg); err != nil {
		n.logger.WithFields(logrus.Fields{
			"dest":  msg.Dest,
			"error": err,
		}).Error("Sending message")
	}
}

// ID returns the node's identifier, or the empty string before init.
func (n *Node) ID() string {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	return n.state.ID()
}

// SeenValues returns the accepted broadcast values, sorted ascending.
func (n *Node) SeenValues() []uint32 {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	return n.state.SeenValues()
}

// Neighbors returns the current neighbor ids.
func (n *Node) Neighbors() []string {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	return n.state.Neighbors()
}

// GetStats returns a snapshot of node counters.
func (n *Node) GetStats() map[string]string {
	n.stateLock.Lock()
	id := n.state.ID()
	seen := n.state.SeenCount()
	neighbors := len(n.state.Neighbors())
	lastID := n.state.LastID()
	pending := n.state.PendingCount()
	n.stateLock.Unlock()

	s := map[string]string{
		"id":          id,
		"seen":        strconv.Itoa(seen),
		"neighbors":   strconv.Itoa(neighbors),
		"last_msg_id": strconv.FormatUint(uint64(lastID), 10),
		"pending":     strconv.Itoa(pending),
		"unacked":     strconv.Itoa(n.unacked.Len()),
		"uptime":      time.Since(n.start).String(),
	}
	return s
}

func (n *Node) logStats() {
	stats := n.GetStats()
	n.logger.WithFields(logrus.Fields{
		"id":          stats["id"],
		"seen":        stats["seen"],
		"neighbors":   stats["neighbors"],
		"last_msg_id": stats["last_msg_id"],
		"unacked":     stats["unacked"],
	}).Debug("Stats")
}
