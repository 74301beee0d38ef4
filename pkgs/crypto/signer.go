package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"
)

// SignerSignatureSize is the length of a single-key envelope signature.
const SignerSignatureSize = ed25519.SignatureSize

// Signer authenticates protocol envelopes with a plain single-key signature.
// This is deliberately separate from the threshold scheme: it proves who sent
// a message, not that a quorum agreed on it.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	PublicKey() []byte
}

type edSigner struct {
	sk ed25519.PrivateKey
	pk []byte
}

// GenerateSigner creates a fresh ed25519 signer and returns it together with
// the seed needed to recreate it.
func GenerateSigner() (Signer, []byte, error) {
	pub, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate ed25519 key")
	}
	return &edSigner{sk: sk, pk: pub}, sk.Seed(), nil
}

// SignerFromSeed recreates a signer from a stored 32-byte seed.
func SignerFromSeed(seed []byte) (Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrMalformedKey, "seed length %d, want %d", len(seed), ed25519.SeedSize)
	}
	sk := ed25519.NewKeyFromSeed(seed)
	pk := make([]byte, ed25519.PublicKeySize)
	copy(pk, sk[ed25519.SeedSize:])
	return &edSigner{sk: sk, pk: pk}, nil
}

func (s *edSigner) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.sk, msg), nil
}

func (s *edSigner) PublicKey() []byte {
	out := make([]byte, len(s.pk))
	copy(out, s.pk)
	return out
}

// VerifyEnvelopeSignature checks a single-key signature over an envelope.
func VerifyEnvelopeSignature(pub, msg, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrMalformedKey, "public key length %d", len(pub))
	}
	if len(sig) != SignerSignatureSize {
		return errors.Wrapf(ErrWrongSignature, "signature length %d", len(sig))
	}
	if bytes.Equal(sig, make([]byte, SignerSignatureSize)) {
		return errors.Wrap(ErrWrongSignature, "blank signature")
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return ErrWrongSignature
	}
	return nil
}
