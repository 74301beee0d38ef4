// Package validator cross-checks the artifacts of a finished ceremony
// before they are put into service.
package validator

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// ValidateResults checks the results collected from all operators of
// one ceremony: the expected number of nodes reported, node ids cover
// 1..n exactly, and every node derived the same public key set with
// the expected threshold.
func ValidateResults(results []*wire.Result, expectedNodes int, expectedFaulty uint64) (*crypto.PublicKeySet, error) {
	if expectedNodes < 1 {
		return nil, errors.New("expected node count is less than 1")
	}
	if len(results) != expectedNodes {
		return nil, errors.Errorf("unexpected number of results: %d, want %d", len(results), expectedNodes)
	}

	seen := make(map[uint64]struct{}, len(results))
	for _, result := range results {
		if result.NodeID == 0 || result.NodeID > uint64(expectedNodes) {
			return nil, errors.Errorf("result from node %d out of range 1..%d", result.NodeID, expectedNodes)
		}
		if _, ok := seen[result.NodeID]; ok {
			return nil, errors.Errorf("multiple results from node %d", result.NodeID)
		}
		seen[result.NodeID] = struct{}{}
	}

	reference := results[0].PublicKeySet
	for _, result := range results[1:] {
		if !bytes.Equal(reference, result.PublicKeySet) {
			return nil, errors.Errorf("node %d derived a different public key set", result.NodeID)
		}
	}
	pks, err := crypto.PublicKeySetFromBytes(reference)
	if err != nil {
		return nil, errors.Wrap(err, "parse public key set")
	}
	if pks.Threshold() != int(expectedFaulty) {
		return nil, errors.Errorf("public key set has threshold %d, want %d", pks.Threshold(), expectedFaulty)
	}
	return pks, nil
}
