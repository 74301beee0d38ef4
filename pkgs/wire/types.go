package wire

import "encoding/json"

// MessageType tags the payload carried by a Transport.
type MessageType uint64

const (
	InitMessageType MessageType = iota
	PartMessageType
	AckMessageType
	ComplaintMessageType
	ResultMessageType
	ErrorMessageType
	PingMessageType
	PongMessageType
)

func (t MessageType) String() string {
	switch t {
	case InitMessageType:
		return "InitMessageType"
	case PartMessageType:
		return "PartMessageType"
	case AckMessageType:
		return "AckMessageType"
	case ComplaintMessageType:
		return "ComplaintMessageType"
	case ResultMessageType:
		return "ResultMessageType"
	case ErrorMessageType:
		return "ErrorMessageType"
	case PingMessageType:
		return "PingMessageType"
	case PongMessageType:
		return "PongMessageType"
	default:
		return "no type impl"
	}
}

// Transport is the envelope every ceremony message travels in.
// Identifier ties the message to one ceremony instance.
type Transport struct {
	Type       MessageType `json:"type"`
	Identifier [24]byte    `json:"identifier"`
	Sender     uint64      `json:"sender"`
	Data       []byte      `json:"data"`
	Version    string      `json:"version"`
}

// SignedTransport carries a Transport plus the sender's ed25519
// public key and signature over the encoded Transport.
type SignedTransport struct {
	Message   *Transport `json:"message"`
	Signer    []byte     `json:"signer"`
	Signature []byte     `json:"signature"`
}

// Operator describes one ceremony participant: its 1-based index, the
// address its peers reach it at, and its ed25519 envelope key.
type Operator struct {
	ID     uint64 `json:"id"`
	Addr   string `json:"addr"`
	PubKey []byte `json:"pubKey"`
}

// Init starts a ceremony instance on an operator. The dealer count is
// the length of Operators; ids must be exactly 1..len(Operators).
type Init struct {
	Operators []*Operator `json:"operators"`
	Faulty    uint64      `json:"faulty"`
}

// EncodeInit serializes an init message payload.
func (i *Init) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// DecodeInit parses an init message payload.
func DecodeInit(byts []byte) (*Init, error) {
	init := &Init{}
	if err := json.Unmarshal(byts, init); err != nil {
		return nil, err
	}
	return init, nil
}

// Result is the last message of a ceremony: the node announces the
// group public key set it derived so operators can cross-check runs.
type Result struct {
	NodeID       uint64 `json:"nodeId"`
	PublicKeySet []byte `json:"publicKeySet"`
}

// Ping asks an operator node for liveness and identity.
type Ping struct {
	InitiatorPublicKey []byte `json:"initiatorPublicKey"`
}

// Pong answers a Ping.
type Pong struct {
	ID     uint64 `json:"id"`
	PubKey []byte `json:"pubKey"`
}
