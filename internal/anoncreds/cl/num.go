package cl

import (
	"crypto/rand"
	"encoding/json"
	"math/big"

	dErrors "indy/pkg/domain-errors"
)

// Num is a big integer that travels as a decimal string.
type Num big.Int

// N wraps x without copying.
func N(x *big.Int) *Num { return (*Num)(x) }

// Int exposes the underlying integer.
func (n *Num) Int() *big.Int { return (*big.Int)(n) }

func (n *Num) String() string { return (*big.Int)(n).String() }

func (n *Num) MarshalJSON() ([]byte, error) {
	return json.Marshal((*big.Int)(n).String())
}

func (n *Num) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "big number must be a decimal string")
	}
	if _, ok := (*big.Int)(n).SetString(s, 10); !ok {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "invalid big number %q", s)
	}
	return nil
}

// Nums converts a name-keyed map.
func Nums(m map[string]*big.Int) map[string]*Num {
	out := make(map[string]*Num, len(m))
	for k, v := range m {
		out[k] = N(v)
	}
	return out
}

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// randBits returns a uniform integer in [0, 2^bits).
func randBits(bits int) *big.Int {
	max := new(big.Int).Lsh(one, uint(bits))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("cl: entropy source failed: " + err.Error())
	}
	return n
}

// randBelow returns a uniform integer in [0, max).
func randBelow(max *big.Int) *big.Int {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("cl: entropy source failed: " + err.Error())
	}
	return n
}

// modPow is base^exp mod m for any sign of exp. base must be invertible
// when exp is negative.
func modPow(base, exp, m *big.Int) *big.Int {
	if exp.Sign() >= 0 {
		return new(big.Int).Exp(base, exp, m)
	}
	inv := new(big.Int).ModInverse(base, m)
	if inv == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Exp(inv, new(big.Int).Neg(exp), m)
}

func mulMod(m *big.Int, xs ...*big.Int) *big.Int {
	out := big.NewInt(1)
	for _, x := range xs {
		out.Mul(out, x)
		out.Mod(out, m)
	}
	return out
}

func invMod(x, m *big.Int) *big.Int {
	inv := new(big.Int).ModInverse(x, m)
	if inv == nil {
		return big.NewInt(0)
	}
	return inv
}

// plusTimes is a + c*b.
func plusTimes(a, c, b *big.Int) *big.Int {
	out := new(big.Int).Mul(c, b)
	return out.Add(out, a)
}

// safePrime returns p = 2p'+1 with both p and p' prime, and p'.
func safePrime(bits int) (p, pPrime *big.Int, err error) {
	for {
		q, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "generate prime")
		}
		cand := new(big.Int).Lsh(q, 1)
		cand.Add(cand, one)
		if cand.ProbablyPrime(20) {
			return cand, q, nil
		}
	}
}

// primeInRange returns a random prime in [start, start+2^rangeBits).
func primeInRange(start *big.Int, rangeBits int) *big.Int {
	for {
		cand := new(big.Int).Add(start, randBits(rangeBits))
		cand.SetBit(cand, 0, 1)
		if cand.ProbablyPrime(25) {
			return cand
		}
	}
}

// randQR returns a random quadratic residue mod n.
func randQR(n *big.Int) *big.Int {
	r := randBelow(n)
	return r.Mul(r, r).Mod(r, n)
}
