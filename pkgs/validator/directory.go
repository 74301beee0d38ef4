package validator

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
)

// ValidateOutputDir checks the files a ceremony wrote to dir: the
// public key set must load, and every share keystore's public metadata
// must sit on the committed polynomial. Shares stay encrypted; only
// their public side is checked.
func ValidateOutputDir(dir string, identifier [24]byte, shareIndices []uint64) (*crypto.PublicKeySet, error) {
	id := utils.IDString(identifier)
	pks, err := keystore.LoadPublicKeySet(filepath.Join(dir, fmt.Sprintf("publicset-%s.json", id)))
	if err != nil {
		return nil, errors.Wrap(err, "load public key set")
	}
	for _, index := range shareIndices {
		path := filepath.Join(dir, fmt.Sprintf("share-%d-%s.json", index, id))
		meta, err := keystore.ReadShareMetadata(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read share %d", index)
		}
		if meta.Index != index {
			return nil, errors.Errorf("share file %s carries index %d", path, meta.Index)
		}
		expected, err := pks.PublicKeyPart(index)
		if err != nil {
			return nil, err
		}
		expectedBytes, err := expected.Point().MarshalBinary()
		if err != nil {
			return nil, err
		}
		if string(expectedBytes) != string(meta.PubKey) {
			return nil, errors.Errorf("share %d pubkey does not sit on the committed polynomial", index)
		}
	}
	return pks, nil
}
