package algebra

import (
	"testing"

	kyber_bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"
)

func TestBivarPolySymmetry(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()
	poly, err := NewRandomBivarPoly(g, 2, random.New())
	require.NoError(t, err)

	for i := uint64(1); i <= 4; i++ {
		for j := uint64(1); j <= 4; j++ {
			require.True(t, poly.Evaluate(i, j).Equal(poly.Evaluate(j, i)),
				"B(%d,%d) != B(%d,%d)", i, j, j, i)
		}
	}
}

func TestBivarPolyRowMatchesEvaluate(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()
	poly, err := NewRandomBivarPoly(g, 1, random.New())
	require.NoError(t, err)

	for i := uint64(1); i <= 4; i++ {
		row := poly.Row(i)
		for j := uint64(1); j <= 4; j++ {
			// kyber share indices are zero based: Eval(j-1) evaluates at x=j.
			require.True(t, row.Eval(int(j-1)).V.Equal(poly.Evaluate(i, j)))
		}
	}
}

func TestBivarCommitmentRowMatchesRowCommitment(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()
	poly, err := NewRandomBivarPoly(g, 1, random.New())
	require.NoError(t, err)
	commit := poly.Commitment()

	for i := uint64(0); i <= 4; i++ {
		rowCommit := poly.Row(i).Commit(g.Point().Base())
		require.True(t, commit.Row(i).Equal(rowCommit), "row %d commitment mismatch", i)
	}
}

func TestBivarCommitmentEvaluate(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()
	poly, err := NewRandomBivarPoly(g, 2, random.New())
	require.NoError(t, err)
	commit := poly.Commitment()

	for i := uint64(1); i <= 3; i++ {
		for j := uint64(1); j <= 3; j++ {
			expected := g.Point().Mul(poly.Evaluate(i, j), nil)
			require.True(t, commit.Evaluate(i, j).Equal(expected))
		}
	}
}

func TestBivarCommitmentWireRoundTrip(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()
	poly, err := NewRandomBivarPoly(g, 2, random.New())
	require.NoError(t, err)
	commit := poly.Commitment()

	rebuilt, err := NewBivarCommitment(g, commit.Degree(), commit.Points())
	require.NoError(t, err)
	require.True(t, commit.Equal(rebuilt))

	_, err = NewBivarCommitment(g, 3, commit.Points())
	require.Error(t, err)
}

func TestCanonicalRoundTrips(t *testing.T) {
	g := kyber_bls12381.NewBLS12381Suite().G1()

	s := g.Scalar().Pick(random.New())
	cs, err := CanonicalScalar(g, s)
	require.NoError(t, err)
	require.True(t, s.Equal(cs))

	p := g.Point().Mul(s, nil)
	cp, err := CanonicalPoint(g, p)
	require.NoError(t, err)
	require.True(t, p.Equal(cp))

	poly, err := NewRandomBivarPoly(g, 2, random.New())
	require.NoError(t, err)
	row := poly.Row(1)
	crow, err := CanonicalPriPoly(g, row)
	require.NoError(t, err)
	require.True(t, row.Equal(crow))
}
