package crypto

import (
	"sort"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/sign/tbls"
	"github.com/pkg/errors"
)

// PartialSignature is a share-level signature over a message: a big-endian
// uint16 share position followed by a compressed G2 signature.
type PartialSignature struct {
	sig []byte
}

// PartialSignatureFromBytes decodes a partial signature from its wire bytes.
func PartialSignatureFromBytes(b []byte) (*PartialSignature, error) {
	if len(b) != 2+SignatureSize {
		return nil, errors.Errorf("partial signature length %d, want %d", len(b), 2+SignatureSize)
	}
	sig := make([]byte, len(b))
	copy(sig, b)
	return &PartialSignature{sig: sig}, nil
}

// Bytes returns the wire encoding of the signature share.
func (ps *PartialSignature) Bytes() []byte {
	out := make([]byte, len(ps.sig))
	copy(out, ps.sig)
	return out
}

// Index returns the 1-based index of the node that produced the share.
func (ps *PartialSignature) Index() (uint64, error) {
	i, err := tbls.SigShare(ps.sig).Index()
	if err != nil {
		return 0, errors.Wrap(err, "signature share index")
	}
	return uint64(i) + 1, nil
}

// Value returns the raw G2 signature without the index prefix.
func (ps *PartialSignature) Value() ([]byte, error) {
	if len(ps.sig) < 2 {
		return nil, errors.New("truncated signature share")
	}
	sh := tbls.SigShare(ps.sig)
	return sh.Value(), nil
}

// CombinedSignature is a full threshold signature reconstructed from
// threshold+1 shares. It verifies against the aggregate public key alone.
type CombinedSignature struct {
	sig []byte
}

// CombinedSignatureFromBytes decodes a combined signature.
func CombinedSignatureFromBytes(b []byte) (*CombinedSignature, error) {
	if len(b) != SignatureSize {
		return nil, errors.Errorf("combined signature length %d, want %d", len(b), SignatureSize)
	}
	sig := make([]byte, len(b))
	copy(sig, b)
	return &CombinedSignature{sig: sig}, nil
}

// Bytes returns the compressed G2 encoding of the signature.
func (cs *CombinedSignature) Bytes() []byte {
	out := make([]byte, len(cs.sig))
	copy(out, cs.sig)
	return out
}

// IndexedSignature pairs a signature share with the 1-based index of the node
// that produced it.
type IndexedSignature struct {
	Index     uint64
	Signature *PartialSignature
}

// VerifyPartial checks the partial signature of the node at the given index
// against this key set.
func (p *PublicKeySet) VerifyPartial(i uint64, msg []byte, psig *PartialSignature) error {
	part, err := p.PublicKeyPart(i)
	if err != nil {
		return err
	}
	return part.Verify(msg, psig)
}

// CombineSignatures reconstructs the threshold signature by Lagrange
// interpolation at x=0 over the supplied shares. It needs threshold+1
// distinct, correctly-indexed shares; any valid superset of correct shares
// for the same message reconstructs the identical signature.
//
// Shares are not individually verified here: combining garbage yields a
// signature that fails PublicKey.Verify, it never yields a silently wrong
// "valid" signature.
func (p *PublicKeySet) CombineSignatures(sigs []IndexedSignature) (*CombinedSignature, error) {
	required := p.Threshold() + 1

	seen := make(map[uint64]struct{}, len(sigs))
	shares := make([]*share.PubShare, 0, len(sigs))
	maxIndex := 0
	for _, is := range sigs {
		if err := validateIndex(is.Index); err != nil {
			return nil, err
		}
		if _, ok := seen[is.Index]; ok {
			return nil, errors.Wrapf(ErrDuplicateEntry, "index %d", is.Index)
		}
		seen[is.Index] = struct{}{}

		embedded, err := is.Signature.Index()
		if err != nil {
			return nil, err
		}
		if embedded != is.Index {
			return nil, errors.Wrapf(ErrInvalidIndex,
				"pair index %d does not match signature share index %d", is.Index, embedded)
		}
		value, err := is.Signature.Value()
		if err != nil {
			return nil, err
		}
		point := G2().Point()
		if err := point.UnmarshalBinary(value); err != nil {
			return nil, errors.Wrapf(err, "signature share %d", is.Index)
		}
		shares = append(shares, &share.PubShare{I: int(is.Index - 1), V: point})
		if int(is.Index) > maxIndex {
			maxIndex = int(is.Index)
		}
	}
	if len(shares) < required {
		return nil, errors.Wrapf(ErrNotEnoughShares, "have %d, need %d", len(shares), required)
	}

	// Interpolation over any threshold+1 points of the signature polynomial
	// lands on the same value at zero; sorting just fixes the subset choice.
	sort.Slice(shares, func(i, j int) bool { return shares[i].I < shares[j].I })
	shares = shares[:required]

	point, err := share.RecoverCommit(G2(), shares, required, maxIndex)
	if err != nil {
		return nil, errors.Wrap(err, "recover combined signature")
	}
	return combinedFromPoint(point)
}

func combinedFromPoint(point kyber.Point) (*CombinedSignature, error) {
	b, err := point.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal combined signature")
	}
	return &CombinedSignature{sig: b}, nil
}

// VerifyCombined checks a combined signature against the aggregate public key
// of this key set.
func (p *PublicKeySet) VerifyCombined(msg []byte, sig *CombinedSignature) error {
	return p.PublicKey().Verify(msg, sig)
}
