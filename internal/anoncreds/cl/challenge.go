package cl

import (
	"encoding/binary"
	"math/big"

	"github.com/zeebo/blake3"
)

// challenge hashes the values in order into a 256-bit Fiat-Shamir
// challenge. Each value is length prefixed so the encoding is injective.
func challenge(values ...*big.Int) *big.Int {
	h := blake3.New()
	var l [4]byte
	for _, v := range values {
		b := v.Bytes()
		if v.Sign() < 0 {
			b = append([]byte{0xff}, b...)
		}
		binary.BigEndian.PutUint32(l[:], uint32(len(b)))
		_, _ = h.Write(l[:])
		_, _ = h.Write(b)
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}
