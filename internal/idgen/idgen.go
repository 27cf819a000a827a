// Package idgen provides identifier generation for the layout service.
//
// Presentations use random UUIDs. Version records use timestamp-prefixed
// identifiers whose natural string ordering matches creation ordering, so
// ledger listings can sort lexically without parsing timestamps.
package idgen

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

const versionPrefix = "v_"

// timestampLayout is fixed width and zero padded so lexical order equals
// chronological order down to the nanosecond.
const timestampLayout = "20060102T150405.000000000"

// VersionID produces a version identifier for the given instant:
// "v_<compact-UTC-timestamp>_<random6>". Two ids minted at the same
// wall-clock instant are ordered by the random suffix; the ledger never
// assumes wall-clock uniqueness.
func VersionID(now time.Time) string {
	return versionPrefix + now.UTC().Format(timestampLayout) + "_" + randBase36(6)
}

// PresentationID produces a random UUID for a new presentation.
func PresentationID() uuid.UUID {
	return uuid.New()
}

func randBase36(length int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("idgen: crypto/rand failed: " + err.Error())
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(out)
}
