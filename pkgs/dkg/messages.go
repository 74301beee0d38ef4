package dkg

import (
	"github.com/drand/kyber"
	"github.com/drand/kyber/share"

	"github.com/quorumkit/threshold-dkg/pkgs/algebra"
)

// DealerPart is the first-round broadcast of a dealer: the public
// commitment to its bivariate polynomial and one row of shares per
// participant. Shares[i] is the row for node i+1; every node reads
// only its own row and ignores the rest.
type DealerPart struct {
	Author     uint64
	Commitment *algebra.BivarCommitment
	Shares     []*share.PriPoly
}

// Ack is the second-round broadcast a node issues after validating a
// dealer's row. Commitments[j] is the row evaluated at node j+1, so
// every node can cross-check the value it is owed against the dealer's
// public commitment.
type Ack struct {
	Author         uint64
	PartBeingAcked uint64
	Commitments    []kyber.Scalar
}

// Complaint accuses a dealer of misbehavior. The generator surfaces
// misbehavior through its error returns instead of consuming
// complaints itself; the message exists so operators can relay the
// accusation to the rest of the quorum.
type Complaint struct {
	Accused uint64
}
