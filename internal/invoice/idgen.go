package invoice

import (
	"crypto/rand"
	"math/big"
)

const (
	idPrefix    = "INV-"
	idSuffixLen = 12
	idAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewID returns a fresh invoice id: a fixed prefix plus a random
// alphanumeric suffix. 12 characters over a 36-symbol alphabet give
// ~62 bits of entropy, far beyond what enumeration could cover.
// Uniqueness is still enforced by the store's primary key; callers
// retry on ErrDuplicateID.
func NewID() string {
	buf := make([]byte, idSuffixLen)
	max := big.NewInt(int64(len(idAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform's entropy source is
			// broken; there is no safe fallback for an unguessable id.
			panic("invoice: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = idAlphabet[n.Int64()]
	}

	return idPrefix + string(buf)
}
