// Package daily derives the card everyone shares on a given UTC day.
//
// The day's key is a normal fresh key whose random source is seeded from
// HMAC-SHA256(salt, YYYY-MM-DD), so it is stable for the day and for the
// salt, and unguessable without the salt.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/robalobadob/bingo/internal/keycodec"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the deterministic seed for a date.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a PRNG seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Key returns the day's key for a catalog of n phrases.
func Key(date time.Time, salt string, n int) (string, error) {
	return keycodec.NewKey(rand.New(rand.NewSource(Seed(date, salt))), n)
}
