package cl

import (
	"crypto/sha256"
	"math/big"
	"strconv"
)

// EncodeAttribute maps a raw attribute value onto the integer that is
// signed. Values in int32 range encode as themselves so predicates can
// compare them; anything else becomes the decimal of its SHA-256 digest.
func EncodeAttribute(raw string) string {
	if IsInt32(raw) {
		return raw
	}
	sum := sha256.Sum256([]byte(raw))
	return new(big.Int).SetBytes(sum[:]).String()
}

// IsInt32 reports whether raw is a canonical int32 literal.
func IsInt32(raw string) bool {
	v, err := strconv.ParseInt(raw, 10, 32)
	return err == nil && strconv.FormatInt(v, 10) == raw
}
