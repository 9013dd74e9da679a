package revocation

import (
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	dErrors "indy/pkg/domain-errors"
)

// Registry is the public accumulator value.
type Registry struct {
	Accum G2 `json:"accum"`
}

// Delta describes the change between two accumulator values.
type Delta struct {
	PrevAccum *G2      `json:"prevAccum,omitempty"`
	Accum     G2       `json:"accum"`
	Issued    []uint32 `json:"issued"`
	Revoked   []uint32 `json:"revoked"`
}

// NewRegistry returns the initial accumulator. Under issuance by default
// every index starts issued; on demand the accumulator starts empty.
func NewRegistry(tails *Tails, maxCredNum uint32, byDefault bool) (*Registry, *Delta, error) {
	var acc bn254.G2Affine
	acc.SetInfinity()
	var issued []uint32
	if byDefault {
		for i := uint32(1); i <= maxCredNum; i++ {
			issued = append(issued, i)
		}
		var err error
		if acc, err = applyIndices(tails, maxCredNum, acc, issued, nil); err != nil {
			return nil, nil, err
		}
	}
	reg := &Registry{Accum: G2{acc}}
	return reg, &Delta{Accum: G2{acc}, Issued: issued, Revoked: []uint32{}}, nil
}

func applyIndices(tails *Tails, maxCredNum uint32, acc bn254.G2Affine, issued, revoked []uint32) (bn254.G2Affine, error) {
	for _, i := range issued {
		t, err := tails.Get(maxCredNum + 1 - i)
		if err != nil {
			return acc, err
		}
		acc.Add(&acc, &t)
	}
	for _, i := range revoked {
		t, err := tails.Get(maxCredNum + 1 - i)
		if err != nil {
			return acc, err
		}
		acc.Sub(&acc, &t)
	}
	return acc, nil
}

// Apply moves the registry by issuing and revoking indices and returns
// the delta that describes the move.
func (r *Registry) Apply(tails *Tails, maxCredNum uint32, issued, revoked []uint32) (*Delta, error) {
	for _, i := range append(slices.Clone(issued), revoked...) {
		if i == 0 || i > maxCredNum {
			return nil, dErrors.Newf(dErrors.CodeInvalidUserRevocID, "revocation index %d out of range", i)
		}
	}
	prev := r.Accum
	acc, err := applyIndices(tails, maxCredNum, r.Accum.G2Affine, issued, revoked)
	if err != nil {
		return nil, err
	}
	r.Accum = G2{acc}
	return &Delta{
		PrevAccum: &prev,
		Accum:     r.Accum,
		Issued:    nonNil(issued),
		Revoked:   nonNil(revoked),
	}, nil
}

// Merge composes a then b. b must start from the accumulator a ends with.
// issued and revoked cancel each other so the
// result describes the net change.
func Merge(a, b *Delta) (*Delta, error) {
	if a == nil || b == nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "missing registry delta")
	}
	if b.PrevAccum == nil || !b.PrevAccum.Equal(&a.Accum) {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "registry deltas are not consecutive")
	}
	out := &Delta{
		PrevAccum: a.PrevAccum,
		Accum:     b.Accum,
		Issued:    difference(union(a.Issued, b.Issued), b.Revoked),
		Revoked:   difference(union(a.Revoked, b.Revoked), b.Issued),
	}
	return out, nil
}

func union(a, b []uint32) []uint32 {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return nonNil(slices.Compact(out))
}

func difference(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a))
	for _, v := range a {
		if !slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(v []uint32) []uint32 {
	if v == nil {
		return []uint32{}
	}
	return v
}
