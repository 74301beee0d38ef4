package operator_test

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/client"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/utils/test_utils"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

func TestHealthCheck(t *testing.T) {
	op := test_utils.CreateTestOperator(t, 1)
	c := client.New(zap.NewNop())

	resp, err := c.GetAndCollect(op.Wire(), "health_check")
	require.NoError(t, err)
	pong := &wire.Pong{}
	require.NoError(t, json.Unmarshal(resp, pong))
	require.Equal(t, uint64(1), pong.ID)
	require.Equal(t, op.Signer.PublicKey(), pong.PubKey)
}

func TestInitRejectsForeignOperatorSet(t *testing.T) {
	op := test_utils.CreateTestOperator(t, 1)
	c := client.New(zap.NewNop())

	// An operator set that does not contain this operator's key.
	stranger, _, err := crypto.GenerateSigner()
	require.NoError(t, err)
	ops := []*wire.Operator{
		{ID: 1, Addr: op.HttpSrv.URL, PubKey: stranger.PublicKey()},
		{ID: 2, Addr: op.HttpSrv.URL, PubKey: stranger.PublicKey()},
		{ID: 3, Addr: op.HttpSrv.URL, PubKey: stranger.PublicKey()},
		{ID: 4, Addr: op.HttpSrv.URL, PubKey: stranger.PublicKey()},
	}
	initMsg := &wire.Init{Operators: ops, Faulty: 1}
	byts, err := initMsg.Encode()
	require.NoError(t, err)

	initiator, _, err := crypto.GenerateSigner()
	require.NoError(t, err)
	signed, err := wire.Sign(&wire.Transport{
		Type:       wire.InitMessageType,
		Identifier: utils.NewID(),
		Data:       byts,
		Version:    wire.Version,
	}, initiator)
	require.NoError(t, err)
	raw, err := signed.Encode()
	require.NoError(t, err)

	_, err = c.SendAndCollect(op.Wire(), "init", raw)
	require.ErrorContains(t, err, "missing inside the operator list")
}

func TestInitRejectsTamperedMessage(t *testing.T) {
	op := test_utils.CreateTestOperator(t, 1)
	c := client.New(zap.NewNop())

	initMsg := &wire.Init{Operators: []*wire.Operator{op.Wire()}, Faulty: 0}
	byts, err := initMsg.Encode()
	require.NoError(t, err)

	initiator, _, err := crypto.GenerateSigner()
	require.NoError(t, err)
	signed, err := wire.Sign(&wire.Transport{
		Type:       wire.InitMessageType,
		Identifier: utils.NewID(),
		Data:       byts,
		Version:    wire.Version,
	}, initiator)
	require.NoError(t, err)
	signed.Message.Sender = 42
	raw, err := signed.Encode()
	require.NoError(t, err)

	_, err = c.SendAndCollect(op.Wire(), "init", raw)
	require.ErrorContains(t, err, "signature isn't valid")
}

func TestDkgRejectsUnknownInstance(t *testing.T) {
	op := test_utils.CreateTestOperator(t, 1)
	c := client.New(zap.NewNop())

	signed, err := wire.Sign(&wire.Transport{
		Type:       wire.AckMessageType,
		Identifier: utils.NewID(),
		Sender:     2,
		Data:       []byte("{}"),
		Version:    wire.Version,
	}, op.Signer)
	require.NoError(t, err)
	raw, err := signed.Encode()
	require.NoError(t, err)

	_, err = c.SendAndCollect(op.Wire(), "dkg", raw)
	require.ErrorContains(t, err, "send Init first")
}

func TestFullCeremonyOverHTTP(t *testing.T) {
	operators := make([]*test_utils.TestOperator, 0, 4)
	ops := make([]*wire.Operator, 0, 4)
	for id := uint64(1); id <= 4; id++ {
		op := test_utils.CreateTestOperator(t, id)
		operators = append(operators, op)
		ops = append(ops, op.Wire())
	}

	initMsg := &wire.Init{Operators: ops, Faulty: 1}
	byts, err := initMsg.Encode()
	require.NoError(t, err)

	initiator, _, err := crypto.GenerateSigner()
	require.NoError(t, err)
	identifier := utils.NewID()
	signed, err := wire.Sign(&wire.Transport{
		Type:       wire.InitMessageType,
		Identifier: identifier,
		Data:       byts,
		Version:    wire.Version,
	}, initiator)
	require.NoError(t, err)
	raw, err := signed.Encode()
	require.NoError(t, err)

	c := client.New(zap.NewNop())
	_, errs := c.SendToAll("init", raw, ops)
	require.Empty(t, errs)

	// Wait for every operator to publish its result.
	results := make([]*wire.Result, len(operators))
	require.Eventually(t, func() bool {
		for i, op := range operators {
			if results[i] != nil {
				continue
			}
			resp, err := c.GetAndCollect(op.Wire(), fmt.Sprintf("results/%s", utils.IDString(identifier)))
			if err != nil {
				return false
			}
			result := &wire.Result{}
			if err := json.Unmarshal(resp, result); err != nil {
				return false
			}
			results[i] = result
		}
		return true
	}, time.Minute, 250*time.Millisecond)

	pks, err := crypto.PublicKeySetFromBytes(results[0].PublicKeySet)
	require.NoError(t, err)
	for _, result := range results[1:] {
		require.Equal(t, results[0].PublicKeySet, result.PublicKeySet)
	}

	// The persisted shares must form a working signing quorum.
	msg := []byte("signed by the quorum generated over http")
	sigs := make([]crypto.IndexedSignature, 0, 2)
	for _, op := range operators[:2] {
		sharePath := filepath.Join(op.OutputPath, fmt.Sprintf("share-%d-%s.json", op.ID, utils.IDString(identifier)))
		part, err := keystore.LoadKeyPart(sharePath, test_utils.TestKeystorePassword)
		require.NoError(t, err)
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		sigs = append(sigs, crypto.IndexedSignature{Index: part.Index(), Signature: psig})
	}
	combined, err := pks.CombineSignatures(sigs)
	require.NoError(t, err)
	require.NoError(t, pks.PublicKey().Verify(msg, combined))
}
