// Package node runs one participant of a key generation ceremony: it
// owns the generator, reacts to board traffic, and emits the derived
// key material when the ceremony completes.
package node

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/board"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// Result is the key material one node derives from a ceremony.
type Result struct {
	NodeID       uint64
	PublicKeySet *crypto.PublicKeySet
	KeyPart      *crypto.PrivateKeyPart
}

// Opts carries the parameters for one LocalNode instance.
type Opts struct {
	Logger     *zap.Logger
	ID         uint64
	Params     dkg.Params
	Identifier [24]byte
	BroadcastF func(msg *wire.Transport) error
}

// LocalNode drives a single node through a ceremony instance. Message
// processing is serialized by the run loop; the exported channels are
// how callers observe the outcome.
type LocalNode struct {
	Logger    *zap.Logger
	ID        uint64
	ResultC   chan *Result
	ErrorC    chan error
	generator *dkg.DistributedKeyGenerator
	ownPart   *dkg.DealerPart
	board     *board.Board
	params    dkg.Params
	done      chan struct{}
	doneOnce  sync.Once
}

// New creates the node and its dealer part. Nothing is broadcast until
// Start is called.
func New(opts *Opts) (*LocalNode, error) {
	generator, part, err := dkg.New(opts.Params, opts.ID)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger.With(zap.Uint64("node", opts.ID))
	return &LocalNode{
		Logger:    logger,
		ID:        opts.ID,
		ResultC:   make(chan *Result, 1),
		ErrorC:    make(chan error, 1),
		generator: generator,
		ownPart:   part,
		board:     board.New(logger, opts.Identifier, opts.BroadcastF),
		params:    opts.Params,
		done:      make(chan struct{}),
	}, nil
}

// Board exposes the node's message board so a transport can deliver
// incoming traffic.
func (n *LocalNode) Board() *board.Board {
	return n.board
}

// Start broadcasts the dealer part and launches the processing loop.
// The loop exits when the ceremony completes, fails, or ctx is done.
func (n *LocalNode) Start(ctx context.Context) {
	go n.run(ctx)
	go func() {
		if err := n.board.PushPart(n.ownPart); err != nil {
			n.fail(errors.Wrap(err, "broadcast dealer part"))
		}
	}()
}

// Done closes when the node finished, successfully or not.
func (n *LocalNode) Done() <-chan struct{} {
	return n.done
}

func (n *LocalNode) run(ctx context.Context) {
	// In a full exchange every node sees one part per dealer and one
	// ack per (node, dealer) pair. Once all of them are processed the
	// generator's view cannot improve further.
	var partsSeen, acksSeen uint64
	expectedParts := n.params.Dealers
	expectedAcks := n.params.Dealers * n.params.Dealers

	for {
		select {
		case incoming := <-n.board.IncomingPart():
			partsSeen++
			n.handlePart(incoming)
		case incoming := <-n.board.IncomingAck():
			acksSeen++
			n.handleAck(incoming)
		case complaint := <-n.board.IncomingComplaint():
			// Accusations are surfaced to the operator; the generator
			// itself already refuses anything it can disprove.
			n.Logger.Warn("received complaint", zap.Uint64("accused", complaint.Accused))
		case <-ctx.Done():
			n.fail(ctx.Err())
			return
		}
		if partsSeen == expectedParts && acksSeen == expectedAcks {
			n.finalize()
			return
		}
	}
}

func (n *LocalNode) handlePart(incoming board.IncomingPart) {
	ack, err := n.generator.HandlePart(incoming.Sender, incoming.Part)
	if err != nil {
		if dkg.IsEvidence(err) {
			n.Logger.Warn("dealer part rejected", zap.Uint64("dealer", incoming.Sender), zap.Error(err))
			if err := n.board.PushComplaint(n.ID, &dkg.Complaint{Accused: incoming.Sender}); err != nil {
				n.Logger.Error("failed to broadcast complaint", zap.Error(err))
			}
			return
		}
		n.Logger.Debug("ignoring dealer part", zap.Uint64("dealer", incoming.Sender), zap.Error(err))
		return
	}
	if err := n.board.PushAck(ack); err != nil {
		n.fail(errors.Wrap(err, "broadcast ack"))
	}
}

func (n *LocalNode) handleAck(incoming board.IncomingAck) {
	if err := n.generator.HandleAck(incoming.Sender, incoming.Ack); err != nil {
		if dkg.IsEvidence(err) {
			n.Logger.Warn("ack rejected", zap.Uint64("sender", incoming.Sender), zap.Error(err))
			if err := n.board.PushComplaint(n.ID, &dkg.Complaint{Accused: incoming.Sender}); err != nil {
				n.Logger.Error("failed to broadcast complaint", zap.Error(err))
			}
			return
		}
		n.Logger.Debug("ignoring ack", zap.Uint64("sender", incoming.Sender), zap.Error(err))
	}
}

func (n *LocalNode) finalize() {
	if !n.generator.IsReady() {
		n.fail(errors.Errorf("ceremony ended with only %d finished dealers", n.generator.Complete()))
		return
	}
	pks, part, err := n.generator.Finalize()
	if err != nil {
		n.fail(err)
		return
	}
	n.Logger.Info("ceremony complete", zap.Uint64("finished dealers", n.generator.Complete()))
	n.ResultC <- &Result{NodeID: n.ID, PublicKeySet: pks, KeyPart: part}
	n.doneOnce.Do(func() { close(n.done) })
}

func (n *LocalNode) fail(err error) {
	select {
	case n.ErrorC <- err:
	default:
	}
	n.doneOnce.Do(func() { close(n.done) })
}
