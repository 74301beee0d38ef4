package load

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignerFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.key")
	signer, err := GenerateSignerFile(path)
	require.NoError(t, err)

	loaded, err := Signer(path)
	require.NoError(t, err)
	require.Equal(t, signer.PublicKey(), loaded.PublicKey())
}

func TestSignerRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.key")
	require.NoError(t, os.WriteFile(path, []byte("zzzz"), 0o600))
	_, err := Signer(path)
	require.ErrorContains(t, err, "not valid hex")
}

func TestOperatorsJSON(t *testing.T) {
	pubKey := hex.EncodeToString(make([]byte, 32))
	roster := fmt.Sprintf(`[
		{"id": 1, "ip": "http://localhost:3030", "public_key": %q},
		{"id": 2, "ip": "http://localhost:3031", "public_key": %q}
	]`, pubKey, pubKey)

	operators, err := OperatorsJSON([]byte(roster))
	require.NoError(t, err)
	require.Len(t, operators, 2)
	require.Equal(t, uint64(1), operators[0].ID)
	require.Equal(t, "http://localhost:3031", operators[1].Addr)

	_, err = OperatorsJSON([]byte(`[{"id": 1, "ip": "x", "public_key": "abcd"}]`))
	require.ErrorContains(t, err, "must be 32 bytes")
}
