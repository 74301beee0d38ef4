// Package keystore persists ceremony key material: private key parts
// encrypted at rest, public key sets as plain JSON.
package keystore

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	keystorev4 "github.com/wealdtech/go-eth2-wallet-encryptor-keystorev4"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
)

const keystoreVersion = 4

type shareFile struct {
	Index   uint64         `json:"index"`
	PubKey  string         `json:"pubkey"`
	Crypto  map[string]any `json:"crypto"`
	Version uint64         `json:"version"`
}

// SaveKeyPart encrypts a private key part under the given password and
// writes it to path. File mode keeps the keystore owner-readable only.
func SaveKeyPart(path string, part *crypto.PrivateKeyPart, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("keystore: password required")
	}
	secret, err := part.Bytes()
	if err != nil {
		return err
	}
	cryptoFields, err := keystorev4.New().Encrypt(secret, password)
	if err != nil {
		return errors.Wrap(err, "encrypt key part")
	}
	pubBytes, err := part.PublicKeyPart().Point().MarshalBinary()
	if err != nil {
		return err
	}
	file := &shareFile{
		Index:   part.Index(),
		PubKey:  hex.EncodeToString(pubBytes),
		Crypto:  cryptoFields,
		Version: keystoreVersion,
	}
	byts, err := json.MarshalIndent(file, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, byts, 0o600)
}

// LoadKeyPart reads an encrypted key part back from path.
func LoadKeyPart(path, password string) (*crypto.PrivateKeyPart, error) {
	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := &shareFile{}
	if err := json.Unmarshal(byts, file); err != nil {
		return nil, errors.Wrap(err, "parse keystore file")
	}
	if file.Version != keystoreVersion {
		return nil, errors.Errorf("keystore: unsupported version %d", file.Version)
	}
	secret, err := keystorev4.New().Decrypt(file.Crypto, password)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt key part")
	}
	part, err := crypto.PrivateKeyPartFromBytes(file.Index, secret)
	if err != nil {
		return nil, err
	}

	// Guard against a keystore whose metadata was edited.
	pubBytes, err := part.PublicKeyPart().Point().MarshalBinary()
	if err != nil {
		return nil, err
	}
	if hex.EncodeToString(pubBytes) != file.PubKey {
		return nil, errors.New("keystore: pubkey does not match decrypted share")
	}
	return part, nil
}

// ShareMetadata is the public part of a keystore file, readable
// without the password.
type ShareMetadata struct {
	Index  uint64
	PubKey []byte
}

// ReadShareMetadata reads the unencrypted metadata of a keystore file.
func ReadShareMetadata(path string) (*ShareMetadata, error) {
	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := &shareFile{}
	if err := json.Unmarshal(byts, file); err != nil {
		return nil, errors.Wrap(err, "parse keystore file")
	}
	pubKey, err := hex.DecodeString(file.PubKey)
	if err != nil {
		return nil, errors.Wrap(err, "parse keystore pubkey")
	}
	return &ShareMetadata{Index: file.Index, PubKey: pubKey}, nil
}

type publicSetFile struct {
	PublicKey   string   `json:"publicKey"`
	Threshold   int      `json:"threshold"`
	Commitments []string `json:"commitments"`
}

// SavePublicKeySet writes a public key set as JSON. It is public
// material and travels unencrypted.
func SavePublicKeySet(path string, pks *crypto.PublicKeySet) error {
	pkBytes, err := pks.PublicKey().ToBytes()
	if err != nil {
		return err
	}
	commits := pks.Commitments()
	encoded := make([]string, 0, len(commits))
	for _, c := range commits {
		byts, err := c.MarshalBinary()
		if err != nil {
			return err
		}
		encoded = append(encoded, hex.EncodeToString(byts))
	}
	return utils.WriteJSON(path, &publicSetFile{
		PublicKey:   hex.EncodeToString(pkBytes),
		Threshold:   pks.Threshold(),
		Commitments: encoded,
	})
}

// LoadPublicKeySet reads a public key set written by SavePublicKeySet.
func LoadPublicKeySet(path string) (*crypto.PublicKeySet, error) {
	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := &publicSetFile{}
	if err := json.Unmarshal(byts, file); err != nil {
		return nil, errors.Wrap(err, "parse public key set file")
	}
	raw := make([]byte, 0, len(file.Commitments)*crypto.PublicKeySize)
	for _, c := range file.Commitments {
		byts, err := hex.DecodeString(c)
		if err != nil {
			return nil, err
		}
		raw = append(raw, byts...)
	}
	pks, err := crypto.PublicKeySetFromBytes(raw)
	if err != nil {
		return nil, err
	}
	pkBytes, err := pks.PublicKey().ToBytes()
	if err != nil {
		return nil, err
	}
	if hex.EncodeToString(pkBytes) != file.PublicKey {
		return nil, errors.New("keystore: public key does not match commitments")
	}
	return pks, nil
}
