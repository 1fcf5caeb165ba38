//go:build unix

package storage

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isEphemeralError reports whether err comes from a file held by another writer.
func isEphemeralError(err error) bool {
	return errors.Is(err, unix.EWOULDBLOCK)
}
