package node

import (
	"time"

	"github.com/nohmar/tranquility/src/peers"
	"github.com/nohmar/tranquility/src/wire"
	"github.com/sirupsen/logrus"
)

// gossipSend is one outbound copy of a disseminated value. Retries reuse the
// same message id, so an ack matches the copy regardless of which attempt
// got through.
type gossipSend struct {
	target string
	msgID  uint32
}

// disseminationEvent scopes a retry loop to the copies fanned out for one
// first-sight of a value.
type disseminationEvent struct {
	value uint32
	sends []gossipSend
}

// processBroadcast accepts a broadcast value, fans it out to neighbors on
// first sight, and acknowledges the sender. Duplicates are acknowledged but
// never re-disseminated: the seen set, not delivery order, is what the
// protocol's correctness rests on.
func (n *Node) processBroadcast(msg wire.Message, body *wire.BroadcastBody) {
	value := *body.Message

	n.logger.WithFields(logrus.Fields{
		"from":    msg.Src,
		"message": value,
	}).Debug("process broadcast")

	n.stateLock.Lock()
	id := n.state.ID()
	first := n.state.MarkSeen(value)

	var event *disseminationEvent
	var outbound []wire.Message

	if first {
		targets := peers.ExcludePeer(n.state.Neighbors(), msg.Src)
		event = &disseminationEvent{value: value}

		for _, target := range targets {
			msgID := n.state.NextID()
			// The continuation only touches the unacked set, which has
			// its own lock, so it is safe to invoke without the state
			// lock held.
			n.state.AddPending(msgID, func() { n.unacked.Remove(msgID) })
			event.sends = append(event.sends, gossipSend{target: target, msgID: msgID})
			outbound = append(outbound, n.broadcastEnvelope(id, target, msgID, value))
		}
	}

	replyID := n.state.NextID()
	n.stateLock.Unlock()

	if event != nil {
		for _, s := range event.sends {
			n.unacked.Add(s.msgID)
		}
		for _, out := range outbound {
			n.send(out)
		}
		if len(event.sends) > 0 {
			n.goFunc(func() { n.retryLoop(event) })
		}
		n.logStats()
	}

	n.reply(msg, id, &wire.BroadcastOkBody{
		Type:      "broadcast_ok",
		MsgID:     replyID,
		InReplyTo: body.MsgID,
	})
}

// retryLoop re-sends every copy of the event still unacknowledged at a fixed
// interval, and terminates once all of them have been acked or the node
// shuts down. Delivery to every neighbor is therefore eventual, as long as
// the peer eventually acks one of the attempts.
func (n *Node) retryLoop(event *disseminationEvent) {
	n.logger.WithFields(logrus.Fields{
		"message": event.value,
		"copies":  len(event.sends),
	}).Debug("Retry loop started")

	for {
		select {
		case <-time.After(n.conf.RetryTimeout):
		case <-n.shutdownCh:
			return
		}

		n.stateLock.Lock()
		id := n.state.ID()
		n.stateLock.Unlock()

		resent := 0
		for _, s := range event.sends {
			if !n.unacked.Contains(s.msgID) {
				continue
			}
			resent++
			n.send(n.broadcastEnvelope(id, s.target, s.msgID, event.value))
		}

		if resent == 0 {
			n.logger.WithField("message", event.value).Debug("Retry loop done")
			return
		}

		n.logger.WithFields(logrus.Fields{
			"message": event.value,
			"resent":  resent,
		}).Debug("Re-sent unacknowledged broadcasts")
	}
}

func (n *Node) broadcastEnvelope(src, target string, msgID uint32, value uint32) wire.Message {
	v := value
	return wire.Message{
		Src:  src,
		Dest: target,
		Body: &wire.BroadcastBody{
			Type:    "broadcast",
			MsgID:   msgID,
			Message: &v,
		},
	}
}
