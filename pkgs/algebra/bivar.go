// Package algebra provides the bivariate polynomial arithmetic used by the
// distributed key generation protocol. It is a thin layer over drand/kyber
// groups: rows of a bivariate polynomial are ordinary kyber share polynomials,
// so everything downstream (commitments, interpolation, threshold signing)
// plugs directly into the kyber share machinery.
package algebra

import (
	"bytes"
	"crypto/cipher"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/pkg/errors"
)

// BivarPoly is a symmetric polynomial in two variables over the scalar field
// of a kyber group: B(x, y) = sum b_jk * x^j * y^k with b_jk == b_kj and
// degree d in each variable. Symmetry means B(i, j) == B(j, i), which is what
// lets two nodes cross-check the values a dealer handed them.
//
// Coefficients are stored triangularly (one scalar per unordered pair {j, k}),
// mirroring the symmetric structure instead of a full (d+1)x(d+1) matrix.
type BivarPoly struct {
	group  kyber.Group
	degree int
	coeffs []kyber.Scalar
}

// coeffPos maps an unordered index pair onto the triangular coefficient slice.
func coeffPos(j, k int) int {
	if j > k {
		j, k = k, j
	}
	return k*(k+1)/2 + j
}

func triangleSize(degree int) int {
	return (degree + 1) * (degree + 2) / 2
}

// NewRandomBivarPoly samples a fresh symmetric bivariate polynomial of the
// given degree with coefficients drawn from the provided randomness stream.
func NewRandomBivarPoly(group kyber.Group, degree int, rand cipher.Stream) (*BivarPoly, error) {
	if degree < 0 {
		return nil, errors.Errorf("invalid bivariate polynomial degree %d", degree)
	}
	coeffs := make([]kyber.Scalar, triangleSize(degree))
	for i := range coeffs {
		coeffs[i] = group.Scalar().Pick(rand)
	}
	return &BivarPoly{group: group, degree: degree, coeffs: coeffs}, nil
}

// Degree returns the degree of the polynomial in each of its two variables.
func (p *BivarPoly) Degree() int {
	return p.degree
}

// powers returns [1, v, v^2, ..., v^degree] as scalars.
func powers(group kyber.Group, v uint64, degree int) []kyber.Scalar {
	x := group.Scalar().SetInt64(int64(v))
	out := make([]kyber.Scalar, degree+1)
	out[0] = group.Scalar().One()
	for i := 1; i <= degree; i++ {
		out[i] = group.Scalar().Mul(out[i-1], x)
	}
	return out
}

// Evaluate computes B(x, y).
func (p *BivarPoly) Evaluate(x, y uint64) kyber.Scalar {
	xPow := powers(p.group, x, p.degree)
	yPow := powers(p.group, y, p.degree)
	result := p.group.Scalar().Zero()
	term := p.group.Scalar()
	for j := 0; j <= p.degree; j++ {
		for k := 0; k <= p.degree; k++ {
			term.Mul(xPow[j], yPow[k])
			term.Mul(term, p.coeffs[coeffPos(j, k)])
			result.Add(result, term)
		}
	}
	return result
}

// Row fixes the first variable, yielding the univariate polynomial
// B(x, y) in y as a kyber secret-sharing polynomial. Row(i) is the share
// generator a dealer hands to node i.
func (p *BivarPoly) Row(x uint64) *share.PriPoly {
	xPow := powers(p.group, x, p.degree)
	coeffs := make([]kyber.Scalar, p.degree+1)
	for k := 0; k <= p.degree; k++ {
		c := p.group.Scalar().Zero()
		term := p.group.Scalar()
		for j := 0; j <= p.degree; j++ {
			term.Mul(xPow[j], p.coeffs[coeffPos(j, k)])
			c.Add(c, term)
		}
		coeffs[k] = c
	}
	return share.CoefficientsToPriPoly(p.group, coeffs)
}

// Commitment returns the public commitment to the polynomial: every
// coefficient lifted to the group via the base point.
func (p *BivarPoly) Commitment() *BivarCommitment {
	points := make([]kyber.Point, len(p.coeffs))
	for i, c := range p.coeffs {
		points[i] = p.group.Point().Mul(c, nil)
	}
	return &BivarCommitment{group: p.group, degree: p.degree, points: points}
}

// BivarCommitment is the public commitment to a symmetric bivariate
// polynomial: the triangular coefficient set lifted to group elements. It lets
// any party verify claimed rows and row values without learning the secret.
type BivarCommitment struct {
	group  kyber.Group
	degree int
	points []kyber.Point
}

// NewBivarCommitment reassembles a commitment from its serialized point set,
// e.g. after wire decoding.
func NewBivarCommitment(group kyber.Group, degree int, points []kyber.Point) (*BivarCommitment, error) {
	if degree < 0 {
		return nil, errors.Errorf("invalid bivariate commitment degree %d", degree)
	}
	if len(points) != triangleSize(degree) {
		return nil, errors.Errorf("bivariate commitment of degree %d needs %d points, got %d",
			degree, triangleSize(degree), len(points))
	}
	return &BivarCommitment{group: group, degree: degree, points: points}, nil
}

// Degree returns the degree of the committed polynomial in each variable.
func (c *BivarCommitment) Degree() int {
	return c.degree
}

// Points exposes the commitment points in triangular order for serialization.
func (c *BivarCommitment) Points() []kyber.Point {
	return c.points
}

// Row fixes the first variable of the committed polynomial, yielding the
// public counterpart of BivarPoly.Row. Row(0) commits to the dealer's
// contribution to the master secret.
func (c *BivarCommitment) Row(x uint64) *share.PubPoly {
	xPow := powers(c.group, x, c.degree)
	commits := make([]kyber.Point, c.degree+1)
	for k := 0; k <= c.degree; k++ {
		acc := c.group.Point().Null()
		term := c.group.Point()
		for j := 0; j <= c.degree; j++ {
			term.Mul(xPow[j], c.points[coeffPos(j, k)])
			acc.Add(acc, term)
		}
		commits[k] = acc
	}
	return share.NewPubPoly(c.group, c.group.Point().Base(), commits)
}

// Evaluate computes the commitment to B(x, y), i.e. G * B(x, y).
func (c *BivarCommitment) Evaluate(x, y uint64) kyber.Point {
	xPow := powers(c.group, x, c.degree)
	yPow := powers(c.group, y, c.degree)
	result := c.group.Point().Null()
	scalar := c.group.Scalar()
	term := c.group.Point()
	for j := 0; j <= c.degree; j++ {
		for k := 0; k <= c.degree; k++ {
			scalar.Mul(xPow[j], yPow[k])
			term.Mul(scalar, c.points[coeffPos(j, k)])
			result.Add(result, term)
		}
	}
	return result
}

// Equal compares two commitments through their byte encoding, so that
// distinct internal representations of the same points compare equal.
func (c *BivarCommitment) Equal(other *BivarCommitment) bool {
	if other == nil || c.degree != other.degree {
		return false
	}
	for i := range c.points {
		a, err := c.points[i].MarshalBinary()
		if err != nil {
			return false
		}
		b, err := other.points[i].MarshalBinary()
		if err != nil {
			return false
		}
		if !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}
