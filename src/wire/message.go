package wire

// Message is the envelope for everything that travels on the wire. Src is
// empty on messages whose origin is unknown; Dest names the receiving node or
// client. Body holds one of the body structs defined below, or a bare string
// for the error response.
type Message struct {
	Src  string      `json:"src,omitempty"`
	Dest string      `json:"dest"`
	Body interface{} `json:"body"`
}

// ErrorText is the body of the response to an unrecognized message.
const ErrorText = "There was an error."

// InitBody assigns the node its identifier. It is the first message a node
// receives; every id-dependent operation assumes it has been processed.
type InitBody struct {
	Type    string   `json:"type"`
	MsgID   uint32   `json:"msg_id"`
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids,omitempty"`
}

// InitOkBody acknowledges an init message.
type InitOkBody struct {
	Type      string `json:"type"`
	MsgID     uint32 `json:"msg_id"`
	InReplyTo uint32 `json:"in_reply_to"`
}

// EchoBody requests that its payload be echoed back.
type EchoBody struct {
	Type  string `json:"type"`
	MsgID uint32 `json:"msg_id"`
	Echo  string `json:"echo"`
}

// EchoOkBody carries the echoed payload back to the requester.
type EchoOkBody struct {
	Type      string `json:"type"`
	MsgID     uint32 `json:"msg_id"`
	InReplyTo uint32 `json:"in_reply_to"`
	Echo      string `json:"echo"`
}

// GenerateBody requests a cluster-unique 64-bit id.
type GenerateBody struct {
	Type  string `json:"type"`
	MsgID uint32 `json:"msg_id"`
}

// GenerateOkBody returns the generated id.
type GenerateOkBody struct {
	Type      string `json:"type"`
	MsgID     uint32 `json:"msg_id"`
	InReplyTo uint32 `json:"in_reply_to"`
	ID        uint64 `json:"id"`
}

// BroadcastBody disseminates a value. It is sent by clients and relayed
// between peers; Message is a pointer so a missing value can be told apart
// from a broadcast of zero.
type BroadcastBody struct {
	Type    string  `json:"type"`
	MsgID   uint32  `json:"msg_id"`
	Message *uint32 `json:"message"`
}

// BroadcastOkBody acknowledges a broadcast. It doubles as the inbound ack
// that resolves a pending retry, correlated through InReplyTo.
type BroadcastOkBody struct {
	Type      string `json:"type"`
	MsgID     uint32 `json:"msg_id,omitempty"`
	InReplyTo uint32 `json:"in_reply_to"`
}

// TopologyBody replaces the node's neighbor list with the adjacency entry
// keyed by its id.
type TopologyBody struct {
	Type     string              `json:"type"`
	MsgID    uint32              `json:"msg_id"`
	Topology map[string][]string `json:"topology"`
}

// TopologyOkBody acknowledges a topology message.
type TopologyOkBody struct {
	Type      string `json:"type"`
	MsgID     uint32 `json:"msg_id"`
	InReplyTo uint32 `json:"in_reply_to"`
}

// ReadBody requests the full set of accepted broadcast values.
type ReadBody struct {
	Type  string `json:"type"`
	MsgID uint32 `json:"msg_id"`
}

// ReadOkBody returns the accepted values, sorted ascending.
type ReadOkBody struct {
	Type      string   `json:"type"`
	MsgID     uint32   `json:"msg_id"`
	InReplyTo uint32   `json:"in_reply_to"`
	Messages  []uint32 `json:"messages"`
}

// InvalidBody is the fallback for a body that matches no known shape. Raw
// retains the undecoded bytes for logging.
type InvalidBody struct {
	Raw []byte
}
