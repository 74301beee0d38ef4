package crypto

import (
	"bytes"
	"math"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/util/random"
	"github.com/pkg/errors"
)

const (
	// PublicKeySize is the compressed G1 encoding length of a public key.
	PublicKeySize = 48
	// SignatureSize is the compressed G2 encoding length of a combined
	// signature.
	SignatureSize = 96
)

// Share indices are 1-based on the wire and in this API. Partial signatures
// carry their index as a big-endian uint16, so that is the interpolation
// domain; indices past it are rejected rather than silently truncated.
func validateIndex(i uint64) error {
	if i == 0 {
		return errors.Wrap(ErrInvalidIndex, "share indices start at 1")
	}
	if i-1 > math.MaxUint16 {
		return errors.Wrapf(ErrDegreeTooHigh, "index %d", i)
	}
	return nil
}

// SecretKeySet is a random secret polynomial of degree threshold. It exists
// only transiently: in trusted-dealer bootstrap and tests. A production key
// set is the emergent artifact of a DKG round and is never materialized in
// one place.
type SecretKeySet struct {
	threshold int
	poly      *share.PriPoly
}

// GenerateRandomSecretKeySet samples a fresh secret key set. threshold+1
// shares are required to reconstruct the secret or combine signatures.
func GenerateRandomSecretKeySet(threshold int) (*SecretKeySet, error) {
	if threshold < 0 {
		return nil, errors.Errorf("negative threshold %d", threshold)
	}
	poly := share.NewPriPoly(G1(), threshold+1, nil, random.New())
	return &SecretKeySet{threshold: threshold, poly: poly}, nil
}

// Threshold returns the number of faulty parties tolerated by this key set.
func (s *SecretKeySet) Threshold() int {
	return s.threshold
}

// KeyShare evaluates the secret polynomial at the given 1-based index.
func (s *SecretKeySet) KeyShare(i uint64) (*PrivateKeyPart, error) {
	if err := validateIndex(i); err != nil {
		return nil, err
	}
	sh := s.poly.Eval(int(i - 1))
	return &PrivateKeyPart{index: i, value: sh.V}, nil
}

// PublicKeySet returns the public counterpart of the key set.
func (s *SecretKeySet) PublicKeySet() *PublicKeySet {
	return NewPublicKeySet(s.poly.Commit(G1().Point().Base()))
}

// PublicKeySet is the public commitment to the shared secret polynomial.
// After a successful DKG round it is byte-identical at every honest node.
type PublicKeySet struct {
	poly *share.PubPoly
}

// NewPublicKeySet wraps a kyber public polynomial as a key set.
func NewPublicKeySet(poly *share.PubPoly) *PublicKeySet {
	return &PublicKeySet{poly: poly}
}

// Threshold returns the number of faulty parties tolerated by this key set.
func (p *PublicKeySet) Threshold() int {
	return p.poly.Threshold() - 1
}

// PublicKey returns the aggregate public key, the commitment evaluated at 0.
func (p *PublicKeySet) PublicKey() *PublicKey {
	return &PublicKey{point: p.poly.Commit()}
}

// PublicKeyPart returns the public key share of the node at the given index.
func (p *PublicKeySet) PublicKeyPart(i uint64) (*PublicKeyPart, error) {
	if err := validateIndex(i); err != nil {
		return nil, err
	}
	return &PublicKeyPart{point: p.poly.Eval(int(i - 1)).V}, nil
}

// Commitments exposes the commitment points for serialization.
func (p *PublicKeySet) Commitments() []kyber.Point {
	_, commits := p.poly.Info()
	return commits
}

// Bytes returns the canonical encoding: the concatenated compressed
// commitment points. Honest nodes finishing the same DKG round produce
// identical bytes.
func (p *PublicKeySet) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	for i, c := range p.Commitments() {
		b, err := c.MarshalBinary()
		if err != nil {
			return nil, errors.Wrapf(err, "commitment %d", i)
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// PublicKeySetFromBytes decodes a key set produced by Bytes.
func PublicKeySetFromBytes(b []byte) (*PublicKeySet, error) {
	if len(b) == 0 || len(b)%PublicKeySize != 0 {
		return nil, errors.Wrapf(ErrMalformedKey, "public key set length %d", len(b))
	}
	commits := make([]kyber.Point, 0, len(b)/PublicKeySize)
	for off := 0; off < len(b); off += PublicKeySize {
		point := G1().Point()
		if err := point.UnmarshalBinary(b[off : off+PublicKeySize]); err != nil {
			return nil, errors.Wrapf(ErrMalformedKey, "commitment at offset %d: %v", off, err)
		}
		commits = append(commits, point)
	}
	return NewPublicKeySet(share.NewPubPoly(G1(), G1().Point().Base(), commits)), nil
}

// Equal compares two key sets through their canonical encoding.
func (p *PublicKeySet) Equal(other *PublicKeySet) bool {
	if other == nil {
		return false
	}
	a, err := p.Bytes()
	if err != nil {
		return false
	}
	b, err := other.Bytes()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// PublicKey is the aggregate public key of a key set.
type PublicKey struct {
	point kyber.Point
}

// Point exposes the underlying group element.
func (pk *PublicKey) Point() kyber.Point {
	return pk.point
}

// ToBytes returns the fixed-size compressed encoding of the key.
func (pk *PublicKey) ToBytes() ([]byte, error) {
	return pk.point.MarshalBinary()
}

// PublicKeyFromBytes decodes a public key from its compressed encoding.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, errors.Wrapf(ErrMalformedKey, "public key length %d, want %d", len(b), PublicKeySize)
	}
	point := G1().Point()
	if err := point.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrapf(ErrMalformedKey, "%v", err)
	}
	return &PublicKey{point: point}, nil
}

// Verify checks a combined threshold signature against the aggregate key.
func (pk *PublicKey) Verify(msg []byte, sig *CombinedSignature) error {
	if err := sigScheme.Verify(pk.point, msg, sig.sig); err != nil {
		return errors.Wrapf(ErrWrongSignature, "%v", err)
	}
	return nil
}

// PrivateKeyPart is one node's share of the joint secret. It is owned
// exclusively by its node and never transmitted; only the encrypted keystore
// may persist it.
type PrivateKeyPart struct {
	index uint64
	value kyber.Scalar
}

// NewPrivateKeyPart wraps a raw scalar share. The index is 1-based.
func NewPrivateKeyPart(index uint64, value kyber.Scalar) (*PrivateKeyPart, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	return &PrivateKeyPart{index: index, value: value}, nil
}

// Index returns the 1-based share index.
func (p *PrivateKeyPart) Index() uint64 {
	return p.index
}

// PublicKeyPart derives the public counterpart of this share.
func (p *PrivateKeyPart) PublicKeyPart() *PublicKeyPart {
	return &PublicKeyPart{point: G1().Point().Mul(p.value, nil)}
}

// PartiallySign produces this node's signature share over the message.
// Signing is deterministic: the same message and share always produce the
// same partial signature.
func (p *PrivateKeyPart) PartiallySign(msg []byte) (*PartialSignature, error) {
	sig, err := thresholdScheme.Sign(&share.PriShare{I: int(p.index - 1), V: p.value}, msg)
	if err != nil {
		return nil, errors.Wrap(err, "threshold sign")
	}
	return &PartialSignature{sig: sig}, nil
}

// Bytes returns the scalar encoding of the share for encrypted persistence.
func (p *PrivateKeyPart) Bytes() ([]byte, error) {
	return p.value.MarshalBinary()
}

// PrivateKeyPartFromBytes decodes a share persisted with Bytes.
func PrivateKeyPartFromBytes(index uint64, b []byte) (*PrivateKeyPart, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	value := G1().Scalar()
	if err := value.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrapf(ErrMalformedKey, "%v", err)
	}
	return &PrivateKeyPart{index: index, value: value}, nil
}

// PublicKeyPart is the public key share of a single node.
type PublicKeyPart struct {
	point kyber.Point
}

// Point exposes the underlying group element.
func (p *PublicKeyPart) Point() kyber.Point {
	return p.point
}

// Equal compares two public key parts.
func (p *PublicKeyPart) Equal(other *PublicKeyPart) bool {
	return other != nil && p.point.Equal(other.point)
}

// Verify checks a partial signature against this public key share.
func (p *PublicKeyPart) Verify(msg []byte, psig *PartialSignature) error {
	value, err := psig.Value()
	if err != nil {
		return err
	}
	if err := sigScheme.Verify(p.point, msg, value); err != nil {
		return errors.Wrapf(ErrWrongSignature, "%v", err)
	}
	return nil
}
