// Package dkg implements a dealer-less distributed key generation over
// bivariate polynomial commitments. Every node acts as a dealer,
// contributing its own random polynomial; the group secret is the sum
// of the contributions from the dealers that finish the ack round, so
// no single party ever learns it.
package dkg

import (
	"sort"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/util/random"
	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/algebra"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
)

// Params fixes the ceremony dimensions. Dealers is the number of
// participating nodes; Faulty is the bound on misbehaving ones. The
// resulting keys need Faulty+1 signature parts to combine.
type Params struct {
	Dealers uint64
	Faulty  uint64
}

// NewParams validates the ceremony dimensions. Safety and liveness
// both require dealers >= 3*faulty + 1.
func NewParams(dealers, faulty uint64) (Params, error) {
	if dealers == 0 {
		return Params{}, errors.New("dkg: at least one dealer required")
	}
	if dealers < 3*faulty+1 {
		return Params{}, errors.Errorf("dkg: %d dealers cannot tolerate %d faulty nodes, need at least %d", dealers, faulty, 3*faulty+1)
	}
	return Params{Dealers: dealers, Faulty: faulty}, nil
}

// NodeState tracks what we know about one dealer: its commitment, the
// ack values other nodes reported for us, and which nodes acked.
type NodeState struct {
	commit *algebra.BivarCommitment
	values map[uint64]kyber.Scalar
	acks   map[uint64]struct{}
}

func newNodeState(commit *algebra.BivarCommitment) *NodeState {
	return &NodeState{
		commit: commit,
		values: make(map[uint64]kyber.Scalar),
		acks:   make(map[uint64]struct{}),
	}
}

// isComplete reports whether enough acks arrived that at least
// faulty+1 of them came from honest nodes.
func (s *NodeState) isComplete(faulty uint64) bool {
	return uint64(len(s.acks)) > 2*faulty
}

type pendingAck struct {
	sender uint64
	ack    *Ack
}

// DistributedKeyGenerator drives one node's view of the ceremony. It
// is not safe for concurrent use; callers serialize message delivery.
type DistributedKeyGenerator struct {
	params       Params
	ourID        uint64
	ownGenerator *algebra.BivarPoly
	states       map[uint64]*NodeState
	pendingAcks  map[uint64][]pendingAck
	complete     uint64
	finalized    bool
}

// New creates the generator for node ourID (1-based) and the dealer
// part it must broadcast to the other participants.
func New(params Params, ourID uint64) (*DistributedKeyGenerator, *DealerPart, error) {
	if ourID == 0 || ourID > params.Dealers {
		return nil, nil, ErrUnknownSender
	}
	gen, err := algebra.NewRandomBivarPoly(crypto.G1(), int(params.Faulty), random.New())
	if err != nil {
		return nil, nil, errors.Wrap(err, "sample generator polynomial")
	}
	shares := make([]*share.PriPoly, 0, params.Dealers)
	for node := uint64(1); node <= params.Dealers; node++ {
		shares = append(shares, gen.Row(node))
	}
	part := &DealerPart{
		Author:     ourID,
		Commitment: gen.Commitment(),
		Shares:     shares,
	}
	d := &DistributedKeyGenerator{
		params:       params,
		ourID:        ourID,
		ownGenerator: gen,
		states:       make(map[uint64]*NodeState),
		pendingAcks:  make(map[uint64][]pendingAck),
	}
	return d, part, nil
}

// OurID returns this node's 1-based index.
func (d *DistributedKeyGenerator) OurID() uint64 {
	return d.ourID
}

// Params returns the ceremony dimensions.
func (d *DistributedKeyGenerator) Params() Params {
	return d.params
}

// Complete returns the number of dealers whose ack round finished.
func (d *DistributedKeyGenerator) Complete() uint64 {
	return d.complete
}

// IsReady reports whether finalizing now would yield usable keys:
// more dealers finished than could possibly be faulty.
func (d *DistributedKeyGenerator) IsReady() bool {
	return d.complete > d.params.Faulty
}

// HandlePart validates a dealer's broadcast and, on success, returns
// the ack this node must broadcast in response. Buffered acks that
// arrived for the dealer before its part are replayed before
// returning.
func (d *DistributedKeyGenerator) HandlePart(sender uint64, part *DealerPart) (*Ack, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	if sender == 0 || sender > d.params.Dealers {
		return nil, ErrUnknownSender
	}
	row, err := d.acceptPart(sender, part)
	if err != nil {
		return nil, err
	}

	values := make([]kyber.Scalar, 0, d.params.Dealers)
	for node := uint64(1); node <= d.params.Dealers; node++ {
		values = append(values, row.Eval(int(node-1)).V)
	}
	ack := &Ack{Author: d.ourID, PartBeingAcked: sender, Commitments: values}

	if pending, ok := d.pendingAcks[sender]; ok {
		delete(d.pendingAcks, sender)
		for _, p := range pending {
			if err := d.HandleAck(p.sender, p.ack); err != nil {
				return nil, errors.Wrapf(err, "replay buffered ack from node %d", p.sender)
			}
		}
	}
	return ack, nil
}

func (d *DistributedKeyGenerator) acceptPart(sender uint64, part *DealerPart) (*share.PriPoly, error) {
	if uint64(len(part.Shares)) != d.params.Dealers {
		return nil, &WrongPartCountError{Dealer: sender, Got: len(part.Shares), Want: int(d.params.Dealers)}
	}
	if state, ok := d.states[sender]; ok {
		if !state.commit.Equal(part.Commitment) {
			return nil, &MultiplePartsError{Dealer: sender}
		}
		return nil, &AlreadyReceivedPartError{Dealer: sender}
	}

	// Decode-then-reencode before verifying, so commitment equality is
	// checked against what the row actually deserializes to.
	row, err := algebra.CanonicalPriPoly(crypto.G1(), part.Shares[d.ourID-1])
	if err != nil {
		return nil, errors.Wrapf(err, "canonicalize row from dealer %d", sender)
	}
	if !row.Commit(crypto.G1().Point().Base()).Equal(part.Commitment.Row(d.ourID)) {
		return nil, &WrongPartCommitmentError{Dealer: sender}
	}
	d.states[sender] = newNodeState(part.Commitment)
	return row, nil
}

// HandleAck processes another node's ack for some dealer. Acks that
// arrive before the dealer's part are buffered, not rejected.
func (d *DistributedKeyGenerator) HandleAck(sender uint64, ack *Ack) error {
	if d.finalized {
		return ErrFinalized
	}
	if sender == 0 || sender > d.params.Dealers {
		return ErrUnknownSender
	}
	state, ok := d.states[ack.PartBeingAcked]
	if !ok {
		d.pendingAcks[ack.PartBeingAcked] = append(d.pendingAcks[ack.PartBeingAcked], pendingAck{sender: sender, ack: ack})
		return nil
	}
	if uint64(len(ack.Commitments)) != d.params.Dealers {
		return &WrongAckLengthError{Sender: sender, Dealer: ack.PartBeingAcked, Got: len(ack.Commitments), Want: int(d.params.Dealers)}
	}

	value, err := algebra.CanonicalScalar(crypto.G1(), ack.Commitments[d.ourID-1])
	if err != nil {
		return errors.Wrapf(err, "canonicalize ack value from node %d", sender)
	}
	if !state.commit.Evaluate(d.ourID, sender).Equal(crypto.G1().Point().Mul(value, nil)) {
		return &WrongAckCommitmentError{Sender: sender, Dealer: ack.PartBeingAcked}
	}
	if _, ok := state.acks[sender]; ok {
		return &AlreadyReceivedAckError{Sender: sender, Dealer: ack.PartBeingAcked}
	}
	state.acks[sender] = struct{}{}
	state.values[sender] = value
	if uint64(len(state.acks)) == 2*d.params.Faulty+1 {
		d.complete++
	}
	return nil
}

// Finalize derives the group public key set and this node's private
// key part from the dealers that completed their ack round. The
// generator rejects all further messages afterwards. Every node that
// finalizes after a successful run derives the same PublicKeySet.
func (d *DistributedKeyGenerator) Finalize() (*crypto.PublicKeySet, *crypto.PrivateKeyPart, error) {
	if d.finalized {
		return nil, nil, ErrFinalized
	}
	completed := make([]uint64, 0, len(d.states))
	for dealer, state := range d.states {
		if state.isComplete(d.params.Faulty) {
			completed = append(completed, dealer)
		}
	}
	if uint64(len(completed)) <= d.params.Faulty {
		return nil, nil, &NotEnoughFinishedDealersError{Completed: len(completed), Faulty: d.params.Faulty}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i] < completed[j] })

	var pub *share.PubPoly
	secret := crypto.G1().Scalar().Zero()
	for _, dealer := range completed {
		state := d.states[dealer]
		row := state.commit.Row(0)
		if pub == nil {
			pub = row
		} else {
			sum, err := pub.Add(row)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "sum commitment of dealer %d", dealer)
			}
			pub = sum
		}
		contribution, err := d.recoverContribution(state)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "recover contribution of dealer %d", dealer)
		}
		secret.Add(secret, contribution)
	}

	part, err := crypto.NewPrivateKeyPart(d.ourID, secret)
	if err != nil {
		return nil, nil, err
	}
	d.finalized = true
	return crypto.NewPublicKeySet(pub), part, nil
}

// recoverContribution interpolates our share of one dealer's secret
// from the values acked for us. Any faulty+1 of the recorded values
// determine the same polynomial; the lowest sender indices are used so
// every call is deterministic.
func (d *DistributedKeyGenerator) recoverContribution(state *NodeState) (kyber.Scalar, error) {
	senders := make([]uint64, 0, len(state.values))
	for sender := range state.values {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool { return senders[i] < senders[j] })
	senders = senders[:d.params.Faulty+1]

	shares := make([]*share.PriShare, 0, len(senders))
	for _, sender := range senders {
		shares = append(shares, &share.PriShare{I: int(sender - 1), V: state.values[sender]})
	}
	return share.RecoverSecret(crypto.G1(), shares, int(d.params.Faulty+1), int(d.params.Dealers))
}
