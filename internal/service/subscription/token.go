package subscription

import (
	"crypto/rand"
	"math/big"
)

// tokenAlphabet is the character set for confirmation tokens: URL-safe,
// case-sensitive alphanumerics.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// tokenLength gives ~148 bits of entropy over the 62-char alphabet, so
// collisions are negligible; the store's uniqueness constraint is the
// enforcement backstop, not this function.
const tokenLength = 25

// NewToken returns a fresh confirmation token drawn from a
// cryptographically secure source. Issuance knows nothing about which
// subscriber the token will be bound to; binding happens in the store.
func NewToken() string {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, tokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform RNG is broken;
			// nothing sensible to do but stop.
			panic("subscription: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf)
}
