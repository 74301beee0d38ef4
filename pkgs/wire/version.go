package wire

import (
	goversion "github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// Version is the wire protocol version stamped on every transport.
const Version = "1.0.0"

// CheckVersion rejects transports from nodes running an incompatible
// protocol. Versions are compatible when their major segments match.
func CheckVersion(remote string) error {
	local, err := goversion.NewVersion(Version)
	if err != nil {
		return err
	}
	theirs, err := goversion.NewVersion(remote)
	if err != nil {
		return errors.Wrapf(err, "parse remote version %q", remote)
	}
	if theirs.Segments()[0] != local.Segments()[0] {
		return errors.Errorf("wire: incompatible version: remote %s local %s", remote, Version)
	}
	return nil
}
