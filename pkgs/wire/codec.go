package wire

import (
	"encoding/hex"
	"encoding/json"

	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/pkg/errors"

	"github.com/quorumkit/threshold-dkg/pkgs/algebra"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
)

type encodedDealerPart struct {
	Author     uint64     `json:"author"`
	Degree     int        `json:"degree"`
	Commitment []string   `json:"commitment"`
	Shares     [][]string `json:"shares"`
}

// EncodeDealerPart encodes a dealer part for broadcast. Group elements
// travel as hex strings of their compressed encodings.
func EncodeDealerPart(part *dkg.DealerPart) ([]byte, error) {
	commitment, err := pointsToHex(part.Commitment.Points())
	if err != nil {
		return nil, err
	}
	shares := make([][]string, 0, len(part.Shares))
	for _, row := range part.Shares {
		coeffs, err := scalarsToHex(row.Coefficients())
		if err != nil {
			return nil, err
		}
		shares = append(shares, coeffs)
	}
	obj := &encodedDealerPart{
		Author:     part.Author,
		Degree:     part.Commitment.Degree(),
		Commitment: commitment,
		Shares:     shares,
	}
	return json.MarshalIndent(obj, "", " ")
}

// DecodeDealerPart decodes a dealer part received from the network.
func DecodeDealerPart(byts []byte, group kyber.Group) (*dkg.DealerPart, error) {
	obj := &encodedDealerPart{}
	if err := json.Unmarshal(byts, obj); err != nil {
		return nil, err
	}
	points, err := hexToPoints(group, obj.Commitment)
	if err != nil {
		return nil, err
	}
	commitment, err := algebra.NewBivarCommitment(group, obj.Degree, points)
	if err != nil {
		return nil, err
	}
	shares := make([]*share.PriPoly, 0, len(obj.Shares))
	for _, row := range obj.Shares {
		coeffs, err := hexToScalars(group, row)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share.CoefficientsToPriPoly(group, coeffs))
	}
	return &dkg.DealerPart{Author: obj.Author, Commitment: commitment, Shares: shares}, nil
}

type encodedAck struct {
	Author         uint64   `json:"author"`
	PartBeingAcked uint64   `json:"partBeingAcked"`
	Commitments    []string `json:"commitments"`
}

// EncodeAck encodes an ack for broadcast.
func EncodeAck(ack *dkg.Ack) ([]byte, error) {
	values, err := scalarsToHex(ack.Commitments)
	if err != nil {
		return nil, err
	}
	obj := &encodedAck{
		Author:         ack.Author,
		PartBeingAcked: ack.PartBeingAcked,
		Commitments:    values,
	}
	return json.MarshalIndent(obj, "", " ")
}

// DecodeAck decodes an ack received from the network.
func DecodeAck(byts []byte, group kyber.Group) (*dkg.Ack, error) {
	obj := &encodedAck{}
	if err := json.Unmarshal(byts, obj); err != nil {
		return nil, err
	}
	values, err := hexToScalars(group, obj.Commitments)
	if err != nil {
		return nil, err
	}
	return &dkg.Ack{Author: obj.Author, PartBeingAcked: obj.PartBeingAcked, Commitments: values}, nil
}

// EncodeComplaint encodes a complaint for broadcast.
func EncodeComplaint(c *dkg.Complaint) ([]byte, error) {
	return json.MarshalIndent(c, "", " ")
}

// DecodeComplaint decodes a complaint received from the network.
func DecodeComplaint(byts []byte) (*dkg.Complaint, error) {
	c := &dkg.Complaint{}
	if err := json.Unmarshal(byts, c); err != nil {
		return nil, err
	}
	return c, nil
}

func pointsToHex(points []kyber.Point) ([]string, error) {
	out := make([]string, 0, len(points))
	for _, p := range points {
		byts, err := p.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, hex.EncodeToString(byts))
	}
	return out, nil
}

func hexToPoints(group kyber.Group, encoded []string) ([]kyber.Point, error) {
	out := make([]kyber.Point, 0, len(encoded))
	for _, s := range encoded {
		byts, err := hex.DecodeString(s)
		if err != nil {
			return nil, err
		}
		point := group.Point()
		if err := point.UnmarshalBinary(byts); err != nil {
			return nil, errors.Wrap(err, "unmarshal point")
		}
		out = append(out, point)
	}
	return out, nil
}

func scalarsToHex(scalars []kyber.Scalar) ([]string, error) {
	out := make([]string, 0, len(scalars))
	for _, s := range scalars {
		byts, err := s.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, hex.EncodeToString(byts))
	}
	return out, nil
}

func hexToScalars(group kyber.Group, encoded []string) ([]kyber.Scalar, error) {
	out := make([]kyber.Scalar, 0, len(encoded))
	for _, s := range encoded {
		byts, err := hex.DecodeString(s)
		if err != nil {
			return nil, err
		}
		scalar := group.Scalar()
		if err := scalar.UnmarshalBinary(byts); err != nil {
			return nil, errors.Wrap(err, "unmarshal scalar")
		}
		out = append(out, scalar)
	}
	return out, nil
}
