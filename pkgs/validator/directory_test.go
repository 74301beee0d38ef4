package validator

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
)

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	identifier := utils.NewID()
	id := utils.IDString(identifier)

	sks, err := crypto.GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	pks := sks.PublicKeySet()
	require.NoError(t, keystore.SavePublicKeySet(filepath.Join(dir, fmt.Sprintf("publicset-%s.json", id)), pks))

	indices := []uint64{1, 2, 3, 4}
	for _, i := range indices {
		part, err := sks.KeyShare(i)
		require.NoError(t, err)
		path := filepath.Join(dir, fmt.Sprintf("share-%d-%s.json", i, id))
		require.NoError(t, keystore.SaveKeyPart(path, part, "12345678"))
	}

	validated, err := ValidateOutputDir(dir, identifier, indices)
	require.NoError(t, err)
	require.True(t, pks.Equal(validated))

	// A share from a different polynomial must be flagged.
	otherSks, err := crypto.GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	foreignPart, err := otherSks.KeyShare(2)
	require.NoError(t, err)
	path := filepath.Join(dir, fmt.Sprintf("share-2-%s.json", id))
	require.NoError(t, keystore.SaveKeyPart(path, foreignPart, "12345678"))
	_, err = ValidateOutputDir(dir, identifier, indices)
	require.ErrorContains(t, err, "does not sit on the committed polynomial")
}
