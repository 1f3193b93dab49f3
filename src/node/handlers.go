package node

import (
	"fmt"
	"time"

	"github.com/nohmar/tranquility/src/common"
	"github.com/nohmar/tranquility/src/wire"
	"github.com/sirupsen/logrus"
)

// handleMessage dispatches one inbound message to its handler. The body set
// is closed; anything that matched no known shape arrives as *InvalidBody
// and is answered with the fixed error response.
func (n *Node) handleMessage(msg wire.Message) {
	switch body := msg.Body.(type) {
	case *wire.InitBody:
		n.processInit(msg, body)
	case *wire.EchoBody:
		n.processEcho(msg, body)
	case *wire.GenerateBody:
		n.processGenerate(msg, body)
	case *wire.BroadcastBody:
		n.processBroadcast(msg, body)
	case *wire.BroadcastOkBody:
		n.processBroadcastOk(msg, body)
	case *wire.TopologyBody:
		n.processTopology(msg, body)
	case *wire.ReadBody:
		n.processRead(msg, body)
	default:
		n.processInvalid(msg)
	}
}

func (n *Node) processInit(msg wire.Message, body *wire.InitBody) {
	n.logger.WithFields(logrus.Fields{
		"from":    msg.Src,
		"node_id": body.NodeID,
	}).Debug("process init")

	n.stateLock.Lock()
	if prev := n.state.SetID(body.NodeID); prev {
		n.logger.WithField("node_id", body.NodeID).Warn("Node re-initialised")
	}
	replyID := n.state.NextID()
	id := n.state.ID()
	n.stateLock.Unlock()

	n.reply(msg, id, &wire.InitOkBody{
		Type:      "init_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
	})
}

func (n *Node) processEcho(msg wire.Message, body *wire.EchoBody) {
	n.logger.WithFields(logrus.Fields{
		"from": msg.Src,
		"echo": body.Echo,
	}).Debug("process echo")

	n.stateLock.Lock()
	replyID := n.state.NextID()
	id := n.state.ID()
	n.stateLock.Unlock()

	n.reply(msg, id, &wire.EchoOkBody{
		Type:      "echo_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
		Echo:      body.Echo,
	})
}

func (n *Node) processGenerate(msg wire.Message, body *wire.GenerateBody) {
	n.logger.WithField("from", msg.Src).Debug("process generate")

	n.stateLock.Lock()
	id := n.state.ID()
	if id == "" {
		n.stateLock.Unlock()
		n.logger.Fatal("generate before init: node id is not assigned")
		return
	}
	uid := generateUniqueID(id, msg.Src)
	replyID := n.state.NextID()
	n.stateLock.Unlock()

	n.reply(msg, id, &wire.GenerateOkBody{
		Type:      "generate_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
		ID:        uid,
	})
}

// generateUniqueID derives a practically unique 64-bit id from the node id,
// the requester id, and a nanosecond timestamp. Two calls in the same
// nanosecond for the same requester would collide; the probability is
// accepted as negligible.
func generateUniqueID(nodeID, requester string) uint64 {
	seed := fmt.Sprintf("%s-%s-%d", nodeID, requester, time.Now().UnixNano())
	return common.Hash64([]byte(seed))
}

func (n *Node) processRead(msg wire.Message, body *wire.ReadBody) {
	n.logger.WithField("from", msg.Src).Debug("process read")

	n.stateLock.Lock()
	values := n.state.SeenValues()
	replyID := n.state.NextID()
	id := n.state.ID()
	n.stateLock.Unlock()

	n.reply(msg, id, &wire.ReadOkBody{
		Type:      "read_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
		Messages:  values,
	})
}

func (n *Node) processTopology(msg wire.Message, body *wire.TopologyBody) {
	n.logger.WithFields(logrus.Fields{
		"from":     msg.Src,
		"topology": body.Topology,
	}).Debug("process topology")

	n.stateLock.Lock()
	id := n.state.ID()
	if neighbors, ok := body.Topology[id]; ok {
		n.state.ReplaceNeighbors(neighbors)
	}
	replyID := n.state.NextID()
	n.stateLock.Unlock()

	n.reply(msg, id, &wire.TopologyOkBody{
		Type:      "topology_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
	})
}

func (n *Node) processBroadcastOk(msg wire.Message, body *wire.BroadcastOkBody) {
	n.stateLock.Lock()
	id := n.state.ID()
	if msg.Dest != id {
		n.stateLock.Unlock()
		n.logger.WithFields(logrus.Fields{
			"dest":        msg.Dest,
			"in_reply_to": body.InReplyTo,
		}).Debug("broadcast_ok for another node")
		return
	}

	// Remove before invoking so the continuation runs at most once.
	cb, ok := n.state.TakePending(body.InReplyTo)
	n.stateLock.Unlock()

	if !ok {
		n.logger.WithFields(logrus.Fields{
			"from":        msg.Src,
			"in_reply_to": body.InReplyTo,
		}).Debug("No pending continuation for broadcast_ok")
		return
	}

	cb()
}

func (n *Node) processInvalid(msg wire.Message) {
	n.logger.WithField("from", msg.Src).Error("Unexpected message body")

	if msg.Src == "" {
		return
	}

	n.stateLock.Lock()
	id := n.state.ID()
	n.stateLock.Unlock()

	n.send(wire.Message{
		Src:  id,
		Dest: msg.Src,
		Body: wire.ErrorText,
	})
}

// reply sends a synchronous response back to the message's source. Replies
// are fire-and-forget: only gossip dissemination is retried.
func (n *Node) reply(msg wire.Message, src string, body interface{}) {
	if msg.Src == "" {
		n.logger.Error("Message has no src to reply to")
		return
	}

	n.send(wire.Message{
		Src:  src,
		Dest: msg.Src,
		Body: body,
	})
}
