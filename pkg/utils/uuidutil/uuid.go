package uuidutil

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UUID returns a random UUID as 32 hex digits without dashes.
func UUID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
