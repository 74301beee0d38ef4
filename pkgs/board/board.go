// Package board decouples the key generator from the transport: the
// generator pushes outgoing ceremony messages through a broadcast
// callback and consumes incoming ones from channels, so the same node
// logic runs over HTTP fan-out or an in-process loopback alike.
package board

import (
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// IncomingPart is a dealer part attributed to its network sender.
type IncomingPart struct {
	Sender uint64
	Part   *dkg.DealerPart
}

// IncomingAck is an ack attributed to its network sender.
type IncomingAck struct {
	Sender uint64
	Ack    *dkg.Ack
}

type Board struct {
	logger     *zap.Logger
	broadcastF func(msg *wire.Transport) error
	identifier [24]byte

	PartC      chan IncomingPart
	AckC       chan IncomingAck
	ComplaintC chan *dkg.Complaint
}

func New(logger *zap.Logger, identifier [24]byte, broadcastF func(msg *wire.Transport) error) *Board {
	return &Board{
		logger:     logger,
		broadcastF: broadcastF,
		identifier: identifier,

		PartC:      make(chan IncomingPart),
		AckC:       make(chan IncomingAck),
		ComplaintC: make(chan *dkg.Complaint),
	}
}

// PushPart broadcasts this node's dealer part.
func (b *Board) PushPart(part *dkg.DealerPart) error {
	b.logger.Info("pushing dealer part", zap.Uint64("author", part.Author))

	byts, err := wire.EncodeDealerPart(part)
	if err != nil {
		return err
	}
	return b.broadcastF(&wire.Transport{
		Type:       wire.PartMessageType,
		Identifier: b.identifier,
		Sender:     part.Author,
		Data:       byts,
		Version:    wire.Version,
	})
}

// IncomingPart delivers dealer parts received from other nodes.
func (b *Board) IncomingPart() <-chan IncomingPart {
	return b.PartC
}

// PushAck broadcasts this node's ack for a dealer part.
func (b *Board) PushAck(ack *dkg.Ack) error {
	b.logger.Info("pushing ack",
		zap.Uint64("author", ack.Author),
		zap.Uint64("part", ack.PartBeingAcked))

	byts, err := wire.EncodeAck(ack)
	if err != nil {
		return err
	}
	return b.broadcastF(&wire.Transport{
		Type:       wire.AckMessageType,
		Identifier: b.identifier,
		Sender:     ack.Author,
		Data:       byts,
		Version:    wire.Version,
	})
}

// IncomingAck delivers acks received from other nodes.
func (b *Board) IncomingAck() <-chan IncomingAck {
	return b.AckC
}

// PushComplaint broadcasts an accusation against a misbehaving dealer.
func (b *Board) PushComplaint(from uint64, c *dkg.Complaint) error {
	b.logger.Warn("pushing complaint", zap.Uint64("accused", c.Accused))

	byts, err := wire.EncodeComplaint(c)
	if err != nil {
		return err
	}
	return b.broadcastF(&wire.Transport{
		Type:       wire.ComplaintMessageType,
		Identifier: b.identifier,
		Sender:     from,
		Data:       byts,
		Version:    wire.Version,
	})
}

// IncomingComplaint delivers complaints received from other nodes.
func (b *Board) IncomingComplaint() <-chan *dkg.Complaint {
	return b.ComplaintC
}

// Deliver decodes a raw transport and routes it to the matching
// channel. It runs on the transport's receive path.
func (b *Board) Deliver(msg *wire.Transport) error {
	switch msg.Type {
	case wire.PartMessageType:
		part, err := wire.DecodeDealerPart(msg.Data, crypto.G1())
		if err != nil {
			return err
		}
		b.PartC <- IncomingPart{Sender: msg.Sender, Part: part}
	case wire.AckMessageType:
		ack, err := wire.DecodeAck(msg.Data, crypto.G1())
		if err != nil {
			return err
		}
		b.AckC <- IncomingAck{Sender: msg.Sender, Ack: ack}
	case wire.ComplaintMessageType:
		c, err := wire.DecodeComplaint(msg.Data)
		if err != nil {
			return err
		}
		b.ComplaintC <- c
	default:
		b.logger.Warn("dropping transport with unexpected type", zap.String("type", msg.Type.String()))
	}
	return nil
}
