package cl

import (
	"math"
	"math/big"

	dErrors "indy/pkg/domain-errors"
)

// PredicateType is the comparison a range proof establishes.
type PredicateType string

const (
	GE PredicateType = ">="
	GT PredicateType = ">"
	LE PredicateType = "<="
	LT PredicateType = "<"
)

// Predicate compares an attribute against a public int32 bound.
type Predicate struct {
	AttrName string        `json:"attr_name"`
	PType    PredicateType `json:"p_type"`
	Value    int32         `json:"value"`
}

// Valid reports whether the predicate type is known.
func (t PredicateType) Valid() bool {
	switch t {
	case GE, GT, LE, LT:
		return true
	}
	return false
}

// deltaTerms returns sign and k so that the predicate holds iff
// sign*m + k >= 0.
func (p Predicate) deltaTerms() (int64, *big.Int, error) {
	v := int64(p.Value)
	switch p.PType {
	case GE:
		return 1, big.NewInt(-v), nil
	case GT:
		return 1, big.NewInt(-v - 1), nil
	case LE:
		return -1, big.NewInt(v), nil
	case LT:
		return -1, big.NewInt(v - 1), nil
	}
	return 0, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown predicate type %q", p.PType)
}

// Satisfied reports whether the encoded value m satisfies the predicate.
func (p Predicate) Satisfied(m *big.Int) (bool, error) {
	sign, k, err := p.deltaTerms()
	if err != nil {
		return false, err
	}
	d := new(big.Int).Mul(big.NewInt(sign), m)
	return d.Add(d, k).Sign() >= 0, nil
}

func isqrt(x uint64) uint64 {
	r := uint64(math.Sqrt(float64(x)))
	for r*r > x {
		r--
	}
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}

// fourSquares decomposes delta into u0^2+u1^2+u2^2+u3^2.
func fourSquares(delta uint64) [4]uint64 {
	for a := isqrt(delta); ; a-- {
		r1 := delta - a*a
		for b := isqrt(r1); ; b-- {
			r2 := r1 - b*b
			for c := isqrt(r2); c*c*2 >= r2; c-- {
				r3 := r2 - c*c
				if d := isqrt(r3); d*d == r3 {
					return [4]uint64{a, b, c, d}
				}
				if c == 0 {
					break
				}
			}
			if b == 0 {
				break
			}
		}
		if a == 0 {
			return [4]uint64{}
		}
	}
}
