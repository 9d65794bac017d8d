package datum

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash returns the hex blake2b-256 digest of a raw datum, the identifier used on chain.
func Hash(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
