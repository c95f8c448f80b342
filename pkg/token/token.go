package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length of every generated token, in characters.
const Length = 24

// Base58: URL-safe, no look-alike characters (0, O, I, l).
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// New returns an unguessable opaque token drawn from a cryptographically
// strong random source. Tokens are the only externally addressable identity
// of a trip, so the format must stay stable.
func New() (string, error) {
	out := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("token generate: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
