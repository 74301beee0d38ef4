package dkg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

type testNode struct {
	id   uint64
	gen  *DistributedKeyGenerator
	part *DealerPart
}

func newTestNodes(t *testing.T, params Params) []*testNode {
	t.Helper()
	nodes := make([]*testNode, 0, params.Dealers)
	for id := uint64(1); id <= params.Dealers; id++ {
		gen, part, err := New(params, id)
		require.NoError(t, err)
		require.Equal(t, id, part.Author)
		require.Len(t, part.Shares, int(params.Dealers))
		nodes = append(nodes, &testNode{id: id, gen: gen, part: part})
	}
	return nodes
}

// exchange delivers every part to every node and then every resulting
// ack to every node, the happy-path ordering.
func exchange(t *testing.T, nodes []*testNode) {
	t.Helper()
	var acks []*Ack
	for _, receiver := range nodes {
		for _, dealer := range nodes {
			ack, err := receiver.gen.HandlePart(dealer.id, dealer.part)
			require.NoError(t, err)
			acks = append(acks, ack)
		}
	}
	for _, receiver := range nodes {
		for _, ack := range acks {
			require.NoError(t, receiver.gen.HandleAck(ack.Author, ack))
		}
	}
}

func TestCeremonyProducesConsistentKeys(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)
	exchange(t, nodes)

	var pks *crypto.PublicKeySet
	parts := make([]*crypto.PrivateKeyPart, 0, len(nodes))
	for _, node := range nodes {
		require.Equal(t, params.Dealers, node.gen.Complete())
		require.True(t, node.gen.IsReady())
		set, part, err := node.gen.Finalize()
		require.NoError(t, err)
		require.Equal(t, node.id, part.Index())
		if pks == nil {
			pks = set
		} else {
			require.True(t, pks.Equal(set), "node %d derived a different public key set", node.id)
		}
		parts = append(parts, part)
	}
	require.Equal(t, int(params.Faulty), pks.Threshold())

	// Every derived secret part must sit on the group polynomial.
	for _, part := range parts {
		expected, err := pks.PublicKeyPart(part.Index())
		require.NoError(t, err)
		require.True(t, expected.Equal(part.PublicKeyPart()))
	}

	// Any faulty+1 parts sign for the group key.
	msg := []byte("ceremony output in active service")
	sigs := make([]crypto.IndexedSignature, 0, 2)
	for _, part := range parts[1:3] {
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		sigs = append(sigs, crypto.IndexedSignature{Index: part.Index(), Signature: psig})
	}
	combined, err := pks.CombineSignatures(sigs)
	require.NoError(t, err)
	require.NoError(t, pks.PublicKey().Verify(msg, combined))
}

func TestAcksBeforePartsAreBuffered(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	// Node 1 receives every ack for dealer 2 before dealer 2's part.
	late := nodes[0]
	var acks []*Ack
	for _, receiver := range nodes[1:] {
		for _, dealer := range nodes {
			ack, err := receiver.gen.HandlePart(dealer.id, dealer.part)
			require.NoError(t, err)
			acks = append(acks, ack)
		}
	}
	for _, receiver := range nodes {
		for _, ack := range acks {
			require.NoError(t, receiver.gen.HandleAck(ack.Author, ack))
		}
	}
	// The parts finally reach node 1; the buffered acks replay and its
	// own acks complete every dealer.
	for _, dealer := range nodes {
		ack, err := late.gen.HandlePart(dealer.id, dealer.part)
		require.NoError(t, err)
		for _, receiver := range nodes {
			require.NoError(t, receiver.gen.HandleAck(ack.Author, ack))
		}
	}

	require.True(t, late.gen.IsReady())
	var reference *crypto.PublicKeySet
	for _, node := range nodes {
		set, _, err := node.gen.Finalize()
		require.NoError(t, err)
		if reference == nil {
			reference = set
		} else {
			require.True(t, reference.Equal(set))
		}
	}
}

func TestCrashedDealerIsExcluded(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	// Node 4 crashes before broadcasting anything.
	alive := nodes[:3]
	var acks []*Ack
	for _, receiver := range alive {
		for _, dealer := range alive {
			ack, err := receiver.gen.HandlePart(dealer.id, dealer.part)
			require.NoError(t, err)
			acks = append(acks, ack)
		}
	}
	for _, receiver := range alive {
		for _, ack := range acks {
			require.NoError(t, receiver.gen.HandleAck(ack.Author, ack))
		}
	}

	var pks *crypto.PublicKeySet
	parts := make([]*crypto.PrivateKeyPart, 0, len(alive))
	for _, node := range alive {
		require.Equal(t, uint64(3), node.gen.Complete())
		require.True(t, node.gen.IsReady())
		set, part, err := node.gen.Finalize()
		require.NoError(t, err)
		if pks == nil {
			pks = set
		} else {
			require.True(t, pks.Equal(set))
		}
		parts = append(parts, part)
	}

	msg := []byte("signed without the crashed node")
	sigs := make([]crypto.IndexedSignature, 0, 2)
	for _, part := range parts[:2] {
		psig, err := part.PartiallySign(msg)
		require.NoError(t, err)
		sigs = append(sigs, crypto.IndexedSignature{Index: part.Index(), Signature: psig})
	}
	combined, err := pks.CombineSignatures(sigs)
	require.NoError(t, err)
	require.NoError(t, pks.PublicKey().Verify(msg, combined))
}

func TestHandlePartRejectsWrongRowCount(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	bad := *nodes[1].part
	bad.Shares = bad.Shares[:2]
	_, err = nodes[0].gen.HandlePart(nodes[1].id, &bad)
	var wrongCount *WrongPartCountError
	require.ErrorAs(t, err, &wrongCount)
	require.Equal(t, 2, wrongCount.Got)
	require.Equal(t, 4, wrongCount.Want)
}

func TestHandlePartRejectsMismatchedRow(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	// Dealer 2 sends node 1 the row meant for node 3.
	tampered := *nodes[1].part
	shares := append(nodes[1].part.Shares[:0:0], nodes[1].part.Shares...)
	shares[0] = shares[2]
	tampered.Shares = shares
	_, err = nodes[0].gen.HandlePart(nodes[1].id, &tampered)
	var wrongCommit *WrongPartCommitmentError
	require.ErrorAs(t, err, &wrongCommit)
	require.Equal(t, nodes[1].id, wrongCommit.Dealer)

	// The bad part was not recorded, so the honest copy still goes through.
	_, err = nodes[0].gen.HandlePart(nodes[1].id, nodes[1].part)
	require.NoError(t, err)
}

func TestHandlePartDetectsEquivocation(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	_, err = nodes[0].gen.HandlePart(nodes[1].id, nodes[1].part)
	require.NoError(t, err)

	// Same part again: redundant, not malicious.
	_, err = nodes[0].gen.HandlePart(nodes[1].id, nodes[1].part)
	var dup *AlreadyReceivedPartError
	require.ErrorAs(t, err, &dup)

	// A second, different polynomial from the same dealer is evidence.
	_, other, err := New(params, nodes[1].id)
	require.NoError(t, err)
	_, err = nodes[0].gen.HandlePart(nodes[1].id, other)
	var multi *MultiplePartsError
	require.ErrorAs(t, err, &multi)
	require.Equal(t, nodes[1].id, multi.Dealer)
}

func TestHandleAckRejectsBadValues(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	_, err = nodes[0].gen.HandlePart(nodes[1].id, nodes[1].part)
	require.NoError(t, err)
	ack, err := nodes[2].gen.HandlePart(nodes[1].id, nodes[1].part)
	require.NoError(t, err)

	short := *ack
	short.Commitments = short.Commitments[:1]
	var wrongLen *WrongAckLengthError
	require.ErrorAs(t, nodes[0].gen.HandleAck(ack.Author, &short), &wrongLen)

	tampered := *ack
	values := append(ack.Commitments[:0:0], ack.Commitments...)
	values[0] = crypto.G1().Scalar().Add(values[0], crypto.G1().Scalar().One())
	tampered.Commitments = values
	var wrongCommit *WrongAckCommitmentError
	require.ErrorAs(t, nodes[0].gen.HandleAck(ack.Author, &tampered), &wrongCommit)
	require.Equal(t, ack.Author, wrongCommit.Sender)
	require.Equal(t, nodes[1].id, wrongCommit.Dealer)

	require.NoError(t, nodes[0].gen.HandleAck(ack.Author, ack))
	var dup *AlreadyReceivedAckError
	require.ErrorAs(t, nodes[0].gen.HandleAck(ack.Author, ack), &dup)
}

func TestFinalizeNeedsEnoughFinishedDealers(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)

	require.False(t, nodes[0].gen.IsReady())
	_, _, err = nodes[0].gen.Finalize()
	var notEnough *NotEnoughFinishedDealersError
	require.ErrorAs(t, err, &notEnough)
	require.Equal(t, 0, notEnough.Completed)
}

func TestFinalizeConsumesGenerator(t *testing.T) {
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	nodes := newTestNodes(t, params)
	exchange(t, nodes)

	gen := nodes[0].gen
	_, _, err = gen.Finalize()
	require.NoError(t, err)
	_, _, err = gen.Finalize()
	require.ErrorIs(t, err, ErrFinalized)
	_, err = gen.HandlePart(nodes[1].id, nodes[1].part)
	require.ErrorIs(t, err, ErrFinalized)
}

func TestNewParamsRejectsWeakQuorums(t *testing.T) {
	_, err := NewParams(0, 0)
	require.Error(t, err)
	_, err = NewParams(3, 1)
	require.Error(t, err)
	params, err := NewParams(4, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(4), params.Dealers)

	_, _, err = New(params, 0)
	require.ErrorIs(t, err, ErrUnknownSender)
	_, _, err = New(params, 5)
	require.ErrorIs(t, err, ErrUnknownSender)
}
