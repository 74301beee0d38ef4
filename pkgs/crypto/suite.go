// Package crypto implements the threshold key and signature types: transient
// secret key sets for trusted-dealer bootstrap, public key sets shared by all
// nodes, per-node private key parts, and partial/combined BLS signatures with
// Lagrange combination at zero.
//
// One concrete algebra backend is linked per build. This build uses the
// BLS12-381 pairing suite with public keys on G1 and signatures on G2.
package crypto

import (
	"github.com/drand/kyber"
	kyber_bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/pairing"
	drand_bls "github.com/drand/kyber/sign/bls" //nolint:all
	"github.com/drand/kyber/sign/tbls"
)

var suite = kyber_bls12381.NewBLS12381Suite()

var (
	thresholdScheme = tbls.NewThresholdSchemeOnG2(suite)
	sigScheme       = drand_bls.NewSchemeOnG2(suite)
)

// Suite returns the pairing suite this build is linked against.
func Suite() pairing.Suite {
	return suite
}

// G1 returns the group public keys and commitments live in.
func G1() kyber.Group {
	return suite.G1()
}

// G2 returns the group signatures live in.
func G2() kyber.Group {
	return suite.G2()
}
