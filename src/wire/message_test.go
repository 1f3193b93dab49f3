package wire

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeRequestKinds(t *testing.T) {
	testCases := []struct {
		line string
		body interface{}
	}{
		{
			`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1","n2"]}}`,
			&InitBody{Type: "init", MsgID: 1, NodeID: "n1", NodeIDs: []string{"n1", "n2"}},
		},
		{
			`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"hello"}}`,
			&EchoBody{Type: "echo", MsgID: 2, Echo: "hello"},
		},
		{
			`{"src":"c1","dest":"n1","body":{"type":"generate","msg_id":3}}`,
			&GenerateBody{Type: "generate", MsgID: 3},
		},
		{
			`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":4}}`,
			&ReadBody{Type: "read", MsgID: 4},
		},
		{
			`{"src":"c1","dest":"n1","body":{"type":"topology","msg_id":5,"topology":{"n1":["n2","n3"]}}}`,
			&TopologyBody{Type: "topology", MsgID: 5, Topology: map[string][]string{"n1": {"n2", "n3"}}},
		},
		{
			`{"src":"n2","dest":"n1","body":{"type":"broadcast_ok","in_reply_to":8}}`,
			&BroadcastOkBody{Type: "broadcast_ok", InReplyTo: 8},
		},
	}

	for _, tc := range testCases {
		msg, err := Decode([]byte(tc.line))
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if !reflect.DeepEqual(msg.Body, tc.body) {
			t.Fatalf("body mismatch: %#v %#v", msg.Body, tc.body)
		}
	}
}

func TestDecodeBroadcast(t *testing.T) {
	line := `{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":2,"message":42}}`

	msg, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	body, ok := msg.Body.(*BroadcastBody)
	if !ok {
		t.Fatalf("expected *BroadcastBody, got %#v", msg.Body)
	}
	if body.Message == nil || *body.Message != 42 {
		t.Fatalf("expected message 42, got %v", body.Message)
	}

	// A broadcast of zero is a value, not a missing field.
	line = `{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":3,"message":0}}`
	msg, err = Decode([]byte(line))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	body, ok = msg.Body.(*BroadcastBody)
	if !ok {
		t.Fatalf("expected *BroadcastBody, got %#v", msg.Body)
	}
	if body.Message == nil || *body.Message != 0 {
		t.Fatalf("expected message 0, got %v", body.Message)
	}
}

func TestDecodeInvalidFallback(t *testing.T) {
	testCases := []string{
		`{"src":"c1","dest":"n1","body":{"type":"mystery","msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":{"msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":{"type":"topology","msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1}}`,
		`{"src":"c1","dest":"n1","body":"oops"}`,
	}

	for _, line := range testCases {
		msg, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if _, ok := msg.Body.(*InvalidBody); !ok {
			t.Fatalf("expected *InvalidBody for %s, got %#v", line, msg.Body)
		}
	}
}

func TestDecodeBadEnvelope(t *testing.T) {
	if _, err := Decode([]byte("this is not json")); err == nil {
		t.Fatal("expected an error for an unparsable envelope")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	value := uint32(1000)
	msg := Message{
		Src:  "n1",
		Dest: "n2",
		Body: &BroadcastBody{Type: "broadcast", MsgID: 9, Message: &value},
	}

	enc, err := Encode(msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	dec, err := Decode(enc)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if dec.Src != "n1" || dec.Dest != "n2" {
		t.Fatalf("envelope mismatch: %#v", dec)
	}
	body, ok := dec.Body.(*BroadcastBody)
	if !ok {
		t.Fatalf("expected *BroadcastBody, got %#v", dec.Body)
	}
	if body.MsgID != 9 || *body.Message != 1000 {
		t.Fatalf("body mismatch: %#v", body)
	}
}

func TestEncodeErrorResponse(t *testing.T) {
	msg := Message{
		Src:  "n1",
		Dest: "c1",
		Body: ErrorText,
	}

	enc, err := Encode(msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if !strings.Contains(string(enc), `"There was an error."`) {
		t.Fatalf("expected error string body, got %s", enc)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	msg := Message{
		Src:  "n1",
		Dest: "c1",
		Body: &ReadOkBody{Type: "read_ok", MsgID: 3, InReplyTo: 2, Messages: []uint32{1, 2, 3}},
	}

	first, err := Encode(msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	second, err := Encode(msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if string(first) != string(second) {
		t.Fatalf("encoding not deterministic: %s %s", first, second)
	}
}
