package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string, used for user, usage-event and transcript
// ids. ULIDs sort lexicographically by creation time and are safe as
// DynamoDB partition keys. Payment events do not use this: their id is the
// external payment id.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
