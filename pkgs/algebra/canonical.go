package algebra

import (
	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/pkg/errors"
)

// Canonicalization: scalars and polynomials received from peers are pushed
// through their byte encoding before any equality or commitment check. The
// byte encoding is the canonical form; internal representations produced by
// arithmetic may differ bit-for-bit from a freshly deserialized value even
// when they denote the same field element. Skipping this step makes honest
// peers fail commitment checks, so it is a correctness requirement, not a
// normalization nicety.

// CanonicalScalar returns the scalar rebuilt from its byte encoding.
func CanonicalScalar(group kyber.Group, s kyber.Scalar) (kyber.Scalar, error) {
	b, err := s.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal scalar")
	}
	out := group.Scalar()
	if err := out.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(err, "unmarshal scalar")
	}
	return out, nil
}

// CanonicalPoint returns the group point rebuilt from its byte encoding.
func CanonicalPoint(group kyber.Group, p kyber.Point) (kyber.Point, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal point")
	}
	out := group.Point()
	if err := out.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(err, "unmarshal point")
	}
	return out, nil
}

// CanonicalPriPoly rebuilds every coefficient of a secret-sharing polynomial
// from its byte encoding.
func CanonicalPriPoly(group kyber.Group, p *share.PriPoly) (*share.PriPoly, error) {
	coeffs := p.Coefficients()
	canonical := make([]kyber.Scalar, len(coeffs))
	for i, c := range coeffs {
		cc, err := CanonicalScalar(group, c)
		if err != nil {
			return nil, errors.Wrapf(err, "coefficient %d", i)
		}
		canonical[i] = cc
	}
	return share.CoefficientsToPriPoly(group, canonical), nil
}
