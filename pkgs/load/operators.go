// Package load reads operator identities and rosters from disk.
package load

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// operatorJSON is one roster entry: id, reachable address and the
// operator's hex-encoded ed25519 envelope key.
type operatorJSON struct {
	ID     uint64 `json:"id"`
	Addr   string `json:"ip"`
	PubKey string `json:"public_key"`
}

// OperatorsJSON parses a roster file into wire operators, ordered as
// listed.
func OperatorsJSON(operatorsMetaData []byte) ([]*wire.Operator, error) {
	var entries []operatorJSON
	if err := json.Unmarshal(bytes.TrimSpace(operatorsMetaData), &entries); err != nil {
		return nil, err
	}
	operators := make([]*wire.Operator, 0, len(entries))
	for _, entry := range entries {
		pubKey, err := hex.DecodeString(entry.PubKey)
		if err != nil {
			return nil, errors.Wrapf(err, "operator %d public key is not valid hex", entry.ID)
		}
		if len(pubKey) != ed25519.PublicKeySize {
			return nil, errors.Errorf("operator %d public key must be %d bytes, got %d", entry.ID, ed25519.PublicKeySize, len(pubKey))
		}
		operators = append(operators, &wire.Operator{
			ID:     entry.ID,
			Addr:   entry.Addr,
			PubKey: pubKey,
		})
	}
	return operators, nil
}
