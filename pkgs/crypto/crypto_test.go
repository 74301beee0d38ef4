package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretKeySetDistribution(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	require.Equal(t, 1, sks.Threshold())
	pks := sks.PublicKeySet()
	require.Equal(t, 1, pks.Threshold())

	// Every dealt share sits on the committed polynomial.
	for i := uint64(1); i <= 4; i++ {
		part, err := sks.KeyShare(i)
		require.NoError(t, err)
		require.Equal(t, i, part.Index())
		expected, err := pks.PublicKeyPart(i)
		require.NoError(t, err)
		require.True(t, expected.Equal(part.PublicKeyPart()))
	}

	_, err = sks.KeyShare(0)
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestThresholdSigningAndCombination(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(2)
	require.NoError(t, err)
	pks := sks.PublicKeySet()
	msg := []byte("message under quorum signature")

	partials := make(map[uint64]*PartialSignature)
	for i := uint64(1); i <= 7; i++ {
		part, err := sks.KeyShare(i)
		require.NoError(t, err)
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		require.NoError(t, pks.VerifyPartial(i, msg, psig))

		idx, err := psig.Index()
		require.NoError(t, err)
		require.Equal(t, i, idx)
		partials[i] = psig
	}

	collect := func(indices ...uint64) []IndexedSignature {
		sigs := make([]IndexedSignature, 0, len(indices))
		for _, i := range indices {
			sigs = append(sigs, IndexedSignature{Index: i, Signature: partials[i]})
		}
		return sigs
	}

	first, err := pks.CombineSignatures(collect(1, 2, 3))
	require.NoError(t, err)
	require.NoError(t, pks.PublicKey().Verify(msg, first))
	require.NoError(t, pks.VerifyCombined(msg, first))

	// Any quorum of honest parts yields the same group signature.
	second, err := pks.CombineSignatures(collect(5, 7, 4, 6))
	require.NoError(t, err)
	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestCombineSignaturesRejectsBadInput(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	pks := sks.PublicKeySet()
	msg := []byte("short quorum")

	sign := func(i uint64) IndexedSignature {
		part, err := sks.KeyShare(i)
		require.NoError(t, err)
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		return IndexedSignature{Index: i, Signature: psig}
	}
	one, two := sign(1), sign(2)

	_, err = pks.CombineSignatures([]IndexedSignature{one})
	require.ErrorIs(t, err, ErrNotEnoughShares)

	_, err = pks.CombineSignatures([]IndexedSignature{one, one})
	require.ErrorIs(t, err, ErrDuplicateEntry)

	mismatched := IndexedSignature{Index: 3, Signature: two.Signature}
	_, err = pks.CombineSignatures([]IndexedSignature{one, mismatched})
	require.ErrorIs(t, err, ErrInvalidIndex)

	combined, err := pks.CombineSignatures([]IndexedSignature{one, two})
	require.NoError(t, err)
	require.NoError(t, pks.PublicKey().Verify(msg, combined))
}

func TestVerifyRejectsTampering(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	pks := sks.PublicKeySet()
	msg := []byte("authentic payload")

	sigs := make([]IndexedSignature, 0, 2)
	for i := uint64(1); i <= 2; i++ {
		part, err := sks.KeyShare(i)
		require.NoError(t, err)
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		sigs = append(sigs, IndexedSignature{Index: i, Signature: psig})
	}
	combined, err := pks.CombineSignatures(sigs)
	require.NoError(t, err)

	require.ErrorIs(t, pks.PublicKey().Verify([]byte("forged payload"), combined), ErrWrongSignature)

	raw := combined.Bytes()
	raw[0] ^= 0xff
	tampered, err := CombinedSignatureFromBytes(raw)
	if err == nil {
		require.ErrorIs(t, pks.PublicKey().Verify(msg, tampered), ErrWrongSignature)
	}

	// Partial verification pins the signer index.
	part, err := sks.KeyShare(1)
	require.NoError(t, err)
	psig, err := part.PartiallySign(msg)
	require.NoError(t, err)
	require.Error(t, pks.VerifyPartial(2, msg, psig))
}

func TestKeyMaterialRoundTrips(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	pks := sks.PublicKeySet()

	encoded, err := pks.Bytes()
	require.NoError(t, err)
	decoded, err := PublicKeySetFromBytes(encoded)
	require.NoError(t, err)
	require.True(t, pks.Equal(decoded))

	pkBytes, err := pks.PublicKey().ToBytes()
	require.NoError(t, err)
	require.Len(t, pkBytes, PublicKeySize)
	pk, err := PublicKeyFromBytes(pkBytes)
	require.NoError(t, err)
	require.True(t, pk.Point().Equal(pks.PublicKey().Point()))

	part, err := sks.KeyShare(3)
	require.NoError(t, err)
	partBytes, err := part.Bytes()
	require.NoError(t, err)
	restored, err := PrivateKeyPartFromBytes(3, partBytes)
	require.NoError(t, err)
	require.True(t, restored.PublicKeyPart().Equal(part.PublicKeyPart()))

	_, err = PublicKeyFromBytes(pkBytes[:10])
	require.ErrorIs(t, err, ErrMalformedKey)
	_, err = PartialSignatureFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
	_, err = CombinedSignatureFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestBLSKeyInterop(t *testing.T) {
	sks, err := GenerateRandomSecretKeySet(1)
	require.NoError(t, err)
	pks := sks.PublicKeySet()

	part, err := sks.KeyShare(1)
	require.NoError(t, err)
	sk, err := ShareSecretKeyToBLS(part)
	require.NoError(t, err)

	// The herumi-side public key must match the kyber-side point.
	expected, err := part.PublicKeyPart().Point().MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, expected, sk.GetPublicKey().Serialize())

	pk, err := PublicKeyToBLS(pks.PublicKey())
	require.NoError(t, err)
	groupBytes, err := pks.PublicKey().ToBytes()
	require.NoError(t, err)
	require.Equal(t, groupBytes, pk.Serialize())
}

func TestEnvelopeSigner(t *testing.T) {
	signer, seed, err := GenerateSigner()
	require.NoError(t, err)
	msg := []byte("envelope body")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	require.NoError(t, VerifyEnvelopeSignature(signer.PublicKey(), msg, sig))

	require.ErrorIs(t, VerifyEnvelopeSignature(signer.PublicKey(), []byte("other body"), sig), ErrWrongSignature)
	require.Error(t, VerifyEnvelopeSignature(signer.PublicKey(), msg, make([]byte, len(sig))))

	restored, err := SignerFromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, signer.PublicKey(), restored.PublicKey())
	sig2, err := restored.Sign(msg)
	require.NoError(t, err)
	require.NoError(t, VerifyEnvelopeSignature(signer.PublicKey(), msg, sig2))
}
