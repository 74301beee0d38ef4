package crypto

import (
	"github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
)

func init() {
	_ = bls.Init(bls.BLS12_381)
	_ = bls.SetETHmode(bls.EthModeDraft07)
}

// Consumers that speak the eth-style BLS dialect (herumi) take key material as
// herumi types. Scalar and compressed-G1 encodings are shared between the two
// libraries, so conversion is a byte-level handoff.

// ShareSecretKeyToBLS converts a private key part into a herumi secret key.
func ShareSecretKeyToBLS(part *PrivateKeyPart) (*bls.SecretKey, error) {
	b, err := part.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "marshal key share")
	}
	sk := &bls.SecretKey{}
	if err := sk.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "deserialize key share into BLS secret key")
	}
	return sk, nil
}

// PublicKeyToBLS converts an aggregate public key into a herumi public key.
func PublicKeyToBLS(pk *PublicKey) (*bls.PublicKey, error) {
	b, err := pk.ToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key")
	}
	out := &bls.PublicKey{}
	if err := out.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "deserialize into BLS public key")
	}
	return out, nil
}
