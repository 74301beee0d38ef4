package load

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

// Signer reads an operator's envelope key seed from a hex file.
func Signer(path string) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read key file")
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.Wrap(err, "key file is not valid hex")
	}
	return crypto.SignerFromSeed(seed)
}

// GenerateSignerFile creates a fresh envelope key and stores its seed
// at path, owner-readable only. Returns the signer for immediate use.
func GenerateSignerFile(path string) (crypto.Signer, error) {
	signer, seed, err := crypto.GenerateSigner()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(seed)), 0o600); err != nil {
		return nil, errors.Wrap(err, "failed to write key file")
	}
	return signer, nil
}
