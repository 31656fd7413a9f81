package domain

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// TimestampRandGenerator builds ids from a millisecond timestamp plus a
// short random base36 suffix. No coordination needed; the suffix keeps
// the collision probability negligible within one millisecond.
type TimestampRandGenerator struct{}

func (TimestampRandGenerator) NewID() string {
	var suffix strings.Builder
	for i := 0; i < 7; i++ {
		suffix.WriteByte(base36Alphabet[rand.IntN(len(base36Alphabet))])
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix.String()
}

// UUIDGenerator is the drop-in alternative id policy.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}
