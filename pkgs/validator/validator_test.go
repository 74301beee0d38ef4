package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

func testResults(t *testing.T, n int, threshold int) ([]*wire.Result, *crypto.PublicKeySet) {
	t.Helper()
	sks, err := crypto.GenerateRandomSecretKeySet(threshold)
	require.NoError(t, err)
	pks := sks.PublicKeySet()
	byts, err := pks.Bytes()
	require.NoError(t, err)

	results := make([]*wire.Result, 0, n)
	for id := 1; id <= n; id++ {
		results = append(results, &wire.Result{NodeID: uint64(id), PublicKeySet: byts})
	}
	return results, pks
}

func TestValidateResults(t *testing.T) {
	results, pks := testResults(t, 4, 1)
	validated, err := ValidateResults(results, 4, 1)
	require.NoError(t, err)
	require.True(t, pks.Equal(validated))
}

func TestValidateResultsRejectsMismatches(t *testing.T) {
	results, _ := testResults(t, 4, 1)

	_, err := ValidateResults(results[:3], 4, 1)
	require.ErrorContains(t, err, "unexpected number of results")

	dup, _ := testResults(t, 4, 1)
	dup[3].NodeID = 1
	_, err = ValidateResults(dup, 4, 1)
	require.ErrorContains(t, err, "multiple results from node 1")

	other, _ := testResults(t, 4, 1)
	foreign, _ := testResults(t, 1, 1)
	other[2].PublicKeySet = foreign[0].PublicKeySet
	_, err = ValidateResults(other, 4, 1)
	require.ErrorContains(t, err, "different public key set")

	wrongThreshold, _ := testResults(t, 4, 2)
	_, err = ValidateResults(wrongThreshold, 4, 1)
	require.ErrorContains(t, err, "threshold")
}
