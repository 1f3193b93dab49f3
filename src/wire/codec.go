package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ugorji/go/codec"
)

// rawMessage is the first decoding pass: the envelope with an opaque body.
type rawMessage struct {
	Src  string          `json:"src"`
	Dest string          `json:"dest"`
	Body json.RawMessage `json:"body"`
}

type typeProbe struct {
	Type string `json:"type"`
}

// Decode parses one wire line into a Message with a typed body. An envelope
// that fails to parse at all is returned as an error; a body that matches no
// known shape, or is missing a required field, comes back as *InvalidBody so
// the caller can still answer the sender.
func Decode(data []byte) (Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("decoding envelope: %v", err)
	}

	msg := Message{
		Src:  raw.Src,
		Dest: raw.Dest,
		Body: decodeBody(raw.Body),
	}

	return msg, nil
}

func decodeBody(raw json.RawMessage) interface{} {
	var probe typeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &InvalidBody{Raw: raw}
	}

	switch probe.Type {
	case "init":
		body := new(InitBody)
		if err := json.Unmarshal(raw, body); err != nil || body.NodeID == "" {
			break
		}
		return body
	case "echo":
		body := new(EchoBody)
		if err := json.Unmarshal(raw, body); err != nil {
			break
		}
		return body
	case "generate":
		body := new(GenerateBody)
		if err := json.Unmarshal(raw, body); err != nil {
			break
		}
		return body
	case "broadcast":
		body := new(BroadcastBody)
		if err := json.Unmarshal(raw, body); err != nil || body.Message == nil {
			break
		}
		return body
	case "broadcast_ok":
		body := new(BroadcastOkBody)
		if err := json.Unmarshal(raw, body); err != nil {
			break
		}
		return body
	case "topology":
		body := new(TopologyBody)
		if err := json.Unmarshal(raw, body); err != nil || body.Topology == nil {
			break
		}
		return body
	case "read":
		body := new(ReadBody)
		if err := json.Unmarshal(raw, body); err != nil {
			break
		}
		return body
	}

	return &InvalidBody{Raw: raw}
}

// Encode serializes a Message for the wire. The encoding is canonical so the
// byte output is deterministic for a given message.
func Encode(msg Message) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(msg); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
