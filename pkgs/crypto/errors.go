package crypto

import "github.com/pkg/errors"

var (
	// ErrNotEnoughShares is returned when fewer than threshold+1 distinct
	// signature shares are supplied for combination.
	ErrNotEnoughShares = errors.New("not enough signature shares")
	// ErrDuplicateEntry is returned when the same share index appears twice
	// in a combination input.
	ErrDuplicateEntry = errors.New("duplicate share index")
	// ErrDegreeTooHigh is returned when a share index cannot be represented
	// in the index domain used for interpolation.
	ErrDegreeTooHigh = errors.New("share index exceeds interpolation domain")
	// ErrWrongSignature is returned when a partial or combined signature does
	// not verify against the corresponding public key.
	ErrWrongSignature = errors.New("signature verification failed")
	// ErrInvalidIndex is returned for share indices outside 1..=n.
	ErrInvalidIndex = errors.New("invalid share index")
	// ErrMalformedKey is returned when stored or transmitted key bytes cannot
	// be decoded.
	ErrMalformedKey = errors.New("malformed key bytes")
)
