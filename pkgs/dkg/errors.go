package dkg

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrFinalized is returned once Finalize has succeeded and the
// generator no longer accepts messages.
var ErrFinalized = errors.New("dkg: generator already finalized")

// ErrUnknownSender is returned when a message names a node index
// outside 1..dealers.
var ErrUnknownSender = errors.New("dkg: sender index out of range")

// WrongPartCountError reports a dealer part that does not carry one
// share row per participant.
type WrongPartCountError struct {
	Dealer uint64
	Got    int
	Want   int
}

func (e *WrongPartCountError) Error() string {
	return fmt.Sprintf("dkg: part from dealer %d has %d rows, want %d", e.Dealer, e.Got, e.Want)
}

// AlreadyReceivedPartError reports a redundant copy of a part we have
// already validated. Harmless on a lossy network, but not acked twice.
type AlreadyReceivedPartError struct {
	Dealer uint64
}

func (e *AlreadyReceivedPartError) Error() string {
	return fmt.Sprintf("dkg: part from dealer %d already received", e.Dealer)
}

// MultiplePartsError reports a dealer that equivocated: a second part
// whose commitment differs from the first one it sent.
type MultiplePartsError struct {
	Dealer uint64
}

func (e *MultiplePartsError) Error() string {
	return fmt.Sprintf("dkg: dealer %d sent multiple parts with different commitments", e.Dealer)
}

// WrongPartCommitmentError reports a share row that does not match the
// dealer's own public commitment.
type WrongPartCommitmentError struct {
	Dealer uint64
}

func (e *WrongPartCommitmentError) Error() string {
	return fmt.Sprintf("dkg: share row from dealer %d does not match its commitment", e.Dealer)
}

// WrongAckLengthError reports an ack that does not carry one value per
// participant.
type WrongAckLengthError struct {
	Sender uint64
	Dealer uint64
	Got    int
	Want   int
}

func (e *WrongAckLengthError) Error() string {
	return fmt.Sprintf("dkg: ack from node %d for dealer %d has %d values, want %d", e.Sender, e.Dealer, e.Got, e.Want)
}

// WrongAckCommitmentError reports an ack whose value for us does not
// match the dealer's public commitment.
type WrongAckCommitmentError struct {
	Sender uint64
	Dealer uint64
}

func (e *WrongAckCommitmentError) Error() string {
	return fmt.Sprintf("dkg: ack from node %d for dealer %d does not match the commitment", e.Sender, e.Dealer)
}

// AlreadyReceivedAckError reports a duplicate ack from the same node
// for the same dealer.
type AlreadyReceivedAckError struct {
	Sender uint64
	Dealer uint64
}

func (e *AlreadyReceivedAckError) Error() string {
	return fmt.Sprintf("dkg: ack from node %d for dealer %d already received", e.Sender, e.Dealer)
}

// IsEvidence reports whether an error proves the peer misbehaved, as
// opposed to redundant or late delivery. Evidence errors are what a
// node turns into complaints.
func IsEvidence(err error) bool {
	var (
		multi       *MultiplePartsError
		partCommit  *WrongPartCommitmentError
		ackCommit   *WrongAckCommitmentError
		wrongRows   *WrongPartCountError
		wrongValues *WrongAckLengthError
	)
	return errors.As(err, &multi) ||
		errors.As(err, &partCommit) ||
		errors.As(err, &ackCommit) ||
		errors.As(err, &wrongRows) ||
		errors.As(err, &wrongValues)
}

// NotEnoughFinishedDealersError reports a finalize attempt before more
// than the faulty bound of dealers completed their ack round.
type NotEnoughFinishedDealersError struct {
	Completed int
	Faulty    uint64
}

func (e *NotEnoughFinishedDealersError) Error() string {
	return fmt.Sprintf("dkg: only %d dealers finished, need more than %d", e.Completed, e.Faulty)
}
