package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

func TestKeyPartRoundTrip(t *testing.T) {
	sks, err := crypto.GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	part, err := sks.KeyShare(2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "share-2.json")
	require.NoError(t, SaveKeyPart(path, part, "12345678"))

	restored, err := LoadKeyPart(path, "12345678")
	require.NoError(t, err)
	require.Equal(t, part.Index(), restored.Index())
	require.True(t, part.PublicKeyPart().Equal(restored.PublicKeyPart()))

	_, err = LoadKeyPart(path, "wrong-password")
	require.Error(t, err)
}

func TestSaveKeyPartRequiresPassword(t *testing.T) {
	sks, err := crypto.GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	part, err := sks.KeyShare(1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "share-1.json")
	require.Error(t, SaveKeyPart(path, part, "   "))
}

func TestPublicKeySetRoundTrip(t *testing.T) {
	sks, err := crypto.GenerateRandomSecretKeySet(2)
	require.NoError(t, err)
	pks := sks.PublicKeySet()

	path := filepath.Join(t.TempDir(), "publicset.json")
	require.NoError(t, SavePublicKeySet(path, pks))

	restored, err := LoadPublicKeySet(path)
	require.NoError(t, err)
	require.True(t, pks.Equal(restored))
	require.Equal(t, pks.Threshold(), restored.Threshold())
}
