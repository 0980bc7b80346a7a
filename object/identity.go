package object

import "github.com/google/uuid"

// IdentityGenerator produces unique instance IDs.
// Implemented by UUIDGenerator (production) and the sequential generator
// in internal/testutil (tests).
type IdentityGenerator interface {
	NewID() string
}

// UUIDGenerator generates UUIDv7 instance IDs.
//
// UUIDv7 provides:
//   - Time-ordered: IDs sort chronologically
//   - Unique: 74 bits of randomness
//   - Standard format: 36-character string
type UUIDGenerator struct{}

// NewID returns a new UUIDv7 as a string.
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
