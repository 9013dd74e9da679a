package revocation

import (
	"math/big"
	"slices"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	dErrors "indy/pkg/domain-errors"
)

// Witness proves that index I is part of an accumulator.
type Witness struct {
	Omega G2 `json:"omega"`
}

// State is what the prover keeps per credential and timestamp.
type State struct {
	Witness   Witness  `json:"witness"`
	RevReg    Registry `json:"rev_reg"`
	Timestamp uint64   `json:"timestamp"`
}

// NewWitness builds the witness of idx against the registry reached by
// delta, which must start at the registry's creation.
func NewWitness(tails *Tails, maxCredNum, idx uint32, byDefault bool, delta *Delta) (*Witness, error) {
	if idx == 0 || idx > maxCredNum {
		return nil, dErrors.Newf(dErrors.CodeInvalidUserRevocID, "revocation index %d out of range", idx)
	}
	if slices.Contains(delta.Revoked, idx) {
		return nil, dErrors.Newf(dErrors.CodeCredentialRevoked, "credential %d is revoked", idx)
	}
	var valid []uint32
	if byDefault {
		for j := uint32(1); j <= maxCredNum; j++ {
			valid = append(valid, j)
		}
	} else {
		valid = slices.Clone(delta.Issued)
	}
	valid = difference(valid, delta.Revoked)

	w := &Witness{}
	w.Omega.SetInfinity()
	if err := w.apply(tails, maxCredNum, idx, valid, nil); err != nil {
		return nil, err
	}
	return w, nil
}

// Update moves the witness of idx along delta.
func (w *Witness) Update(tails *Tails, maxCredNum, idx uint32, delta *Delta) error {
	if slices.Contains(delta.Revoked, idx) {
		return dErrors.Newf(dErrors.CodeCredentialRevoked, "credential %d is revoked", idx)
	}
	return w.apply(tails, maxCredNum, idx, delta.Issued, delta.Revoked)
}

func (w *Witness) apply(tails *Tails, maxCredNum, idx uint32, add, sub []uint32) error {
	omega := w.Omega.G2Affine
	step := func(j uint32, neg bool) error {
		if j == idx {
			return nil
		}
		if j == 0 || j > maxCredNum {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "revocation index %d out of range", j)
		}
		t, err := tails.Get(maxCredNum + 1 - j + idx)
		if err != nil {
			return err
		}
		if neg {
			omega.Sub(&omega, &t)
		} else {
			omega.Add(&omega, &t)
		}
		return nil
	}
	for _, j := range add {
		if err := step(j, false); err != nil {
			return err
		}
	}
	for _, j := range sub {
		if err := step(j, true); err != nil {
			return err
		}
	}
	w.Omega = G2{omega}
	return nil
}

// Proof shows that a signed index is in the accumulator without
// revealing it.
type Proof struct {
	G     G1 `json:"g"`
	W     G2 `json:"w"`
	Sigma G1 `json:"sigma"`
}

// Prove randomises the signature and witness against reg.
func Prove(pk *PublicKey, sig *Signature, w *Witness, reg *Registry) *Proof {
	rho := randScalar()
	var rg bn254.G1Affine
	rg.ScalarMultiplication(&pk.G.G1Affine, rho)
	var rAcc bn254.G2Affine
	rAcc.ScalarMultiplication(&reg.Accum.G2Affine, rho)
	var rx bn254.G1Affine
	rx.ScalarMultiplication(&pk.X1.G1Affine, rho)

	p := &Proof{}
	p.G.Add(&sig.GI.G1Affine, &rg)
	p.W.Add(&w.Omega.G2Affine, &rAcc)
	p.Sigma.Add(&sig.SigmaI.G1Affine, &rx)
	return p
}

// Verify checks the proof against the accumulator and the registry key.
func Verify(pk *PublicKey, rpk *RegistryPublicKey, reg *Registry, p *Proof) (bool, error) {
	var negG bn254.G1Affine
	negG.Neg(&pk.G.G1Affine)
	lhs, err := bn254.Pair(
		[]bn254.G1Affine{p.G.G1Affine, negG},
		[]bn254.G2Affine{reg.Accum.G2Affine, p.W.G2Affine},
	)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "non-revocation pairing")
	}
	if !lhs.Equal(&rpk.Z.GT) {
		return false, nil
	}
	var negProofG bn254.G1Affine
	negProofG.Neg(&p.G.G1Affine)
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{p.Sigma.G1Affine, negProofG},
		[]bn254.G2Affine{pk.GDash.G2Affine, pk.PK.G2Affine},
	)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "non-revocation pairing")
	}
	return ok, nil
}

// CList returns the proof's commitments for the aggregated challenge.
func (p *Proof) CList() []*big.Int {
	return []*big.Int{p.G.Int(), p.W.Int(), p.Sigma.Int()}
}
