package wire

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

// Sign wraps a transport with the sender's signature over its JSON
// encoding.
func Sign(msg *Transport, signer crypto.Signer) (*SignedTransport, error) {
	byts, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(byts)
	if err != nil {
		return nil, err
	}
	return &SignedTransport{
		Message:   msg,
		Signer:    signer.PublicKey(),
		Signature: sig,
	}, nil
}

// Verify checks the envelope signature against the embedded signer
// key. Callers must still decide whether that key belongs to a
// ceremony participant.
func (st *SignedTransport) Verify() error {
	if st.Message == nil {
		return errors.New("wire: signed transport without message")
	}
	byts, err := json.Marshal(st.Message)
	if err != nil {
		return err
	}
	return crypto.VerifyEnvelopeSignature(st.Signer, byts, st.Signature)
}

// Encode serializes a signed transport for the HTTP body.
func (st *SignedTransport) Encode() ([]byte, error) {
	return json.Marshal(st)
}

// DecodeSignedTransport parses an HTTP body into a signed transport.
func DecodeSignedTransport(byts []byte) (*SignedTransport, error) {
	st := &SignedTransport{}
	if err := json.Unmarshal(byts, st); err != nil {
		return nil, err
	}
	return st, nil
}

type wireErr struct {
	Error string `json:"error"`
}

// MakeErr encodes an error payload for an ErrorMessageType transport.
func MakeErr(err error) []byte {
	byts, _ := json.Marshal(&wireErr{Error: err.Error()})
	return byts
}

// ParseAsError decodes the error payload of an ErrorMessageType
// transport.
func ParseAsError(msg []byte) (string, error) {
	parsed := &wireErr{}
	if err := json.Unmarshal(msg, parsed); err != nil {
		return "", errors.Wrap(err, "unmarshal error message")
	}
	return parsed.Error, nil
}
