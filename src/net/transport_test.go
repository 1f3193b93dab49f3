package net

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nohmar/tranquility/src/common"
	"github.com/nohmar/tranquility/src/wire"
)

// blockedReader blocks until released, simulating an input stream that is
// idle rather than closed.
type blockedReader struct {
	release chan struct{}
}

func (r *blockedReader) Read(p []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func TestStreamTransportListen(t *testing.T) {
	input := strings.Join([]string{
		`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":1,"echo":"hello"}}`,
		`this line is not json`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":2}}`,
	}, "\n") + "\n"

	trans := NewStreamTransport(strings.NewReader(input), new(bytes.Buffer), common.NewTestEntry(t))
	trans.Listen()

	var received []wire.Message
	for {
		select {
		case msg, ok := <-trans.Consumer():
			if !ok {
				if len(received) != 2 {
					t.Fatalf("expected 2 messages, got %d", len(received))
				}
				if _, isEcho := received[0].Body.(*wire.EchoBody); !isEcho {
					t.Fatalf("expected *EchoBody, got %#v", received[0].Body)
				}
				if _, isRead := received[1].Body.(*wire.ReadBody); !isRead {
					t.Fatalf("expected *ReadBody, got %#v", received[1].Body)
				}
				return
			}
			received = append(received, msg)
		case <-time.After(time.Second):
			t.Fatalf("timeout, received %d messages", len(received))
		}
	}
}

func TestStreamTransportSend(t *testing.T) {
	out := new(bytes.Buffer)
	trans := NewStreamTransport(strings.NewReader(""), out, common.NewTestEntry(t))

	value := uint32(42)
	msg := wire.Message{
		Src:  "n1",
		Dest: "n2",
		Body: &wire.BroadcastBody{Type: "broadcast", MsgID: 7, Message: &value},
	}

	if err := trans.Send(msg); err != nil {
		t.Fatalf("err: %v", err)
	}

	line := out.String()
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected a newline-terminated line, got %q", line)
	}

	dec, err := wire.Decode([]byte(strings.TrimSuffix(line, "\n")))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	body, ok := dec.Body.(*wire.BroadcastBody)
	if !ok {
		t.Fatalf("expected *BroadcastBody, got %#v", dec.Body)
	}
	if dec.Dest != "n2" || body.MsgID != 7 || *body.Message != 42 {
		t.Fatalf("message mismatch: %#v %#v", dec, body)
	}
}

func TestStreamTransportCloseReleasesPump(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 200; i++ {
		input.WriteString(`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":1}}` + "\n")
	}

	blocked := &blockedReader{release: make(chan struct{})}
	defer close(blocked.release)

	reader := io.MultiReader(strings.NewReader(input.String()), blocked)
	trans := NewStreamTransport(reader, new(bytes.Buffer), common.NewTestEntry(t))
	trans.Listen()

	// Let the pump fill the consumer buffer and block on the next push.
	time.Sleep(50 * time.Millisecond)

	if err := trans.Close(); err != nil {
		t.Fatalf("err: %v", err)
	}

	// The pump must stop pushing and close the channel instead of draining
	// the rest of the backlog.
	for {
		select {
		case _, ok := <-trans.Consumer():
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("consumer channel still open after close")
		}
	}
}

func TestInmemTransportRouting(t *testing.T) {
	trans1 := NewInmemTransport("n1")
	defer trans1.Close()
	trans2 := NewInmemTransport("n2")
	defer trans2.Close()

	trans1.Connect("n2", trans2)

	value := uint32(1000)
	msg := wire.Message{
		Src:  "n1",
		Dest: "n2",
		Body: &wire.BroadcastBody{Type: "broadcast", MsgID: 1, Message: &value},
	}

	if err := trans1.Send(msg); err != nil {
		t.Fatalf("err: %v", err)
	}

	select {
	case received := <-trans2.Consumer():
		if received.Src != "n1" || received.Dest != "n2" {
			t.Fatalf("envelope mismatch: %#v", received)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout")
	}

	if len(trans1.Sent()) != 1 {
		t.Fatalf("expected 1 recorded message, got %d", len(trans1.Sent()))
	}
}

func TestInmemTransportUnconnectedPeer(t *testing.T) {
	trans := NewInmemTransport("n1")
	defer trans.Close()

	msg := wire.Message{Src: "n1", Dest: "n9", Body: &wire.ReadBody{Type: "read", MsgID: 1}}

	// Sending to an unconnected peer records the message without failing,
	// as if it were lost on the wire.
	if err := trans.Send(msg); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(trans.Sent()) != 1 {
		t.Fatalf("expected 1 recorded message, got %d", len(trans.Sent()))
	}
}
