//go:build !unix && !windows

package storage

func isEphemeralError(error) bool {
	return false
}
