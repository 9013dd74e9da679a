package cl

import (
	"math/big"
	"slices"
	"sort"
	"strconv"

	dErrors "indy/pkg/domain-errors"
)

const deltaKey = "DELTA"

// SubProofRequest names what a single credential discloses.
type SubProofRequest struct {
	Revealed   []string
	Predicates []Predicate
}

// EqProof proves possession of a signature over the revealed and hidden
// attribute values.
type EqProof struct {
	RevealedAttrs map[string]*Num `json:"revealed_attrs"`
	APrime        *Num            `json:"a_prime"`
	E             *Num            `json:"e"`
	V             *Num            `json:"v"`
	M             map[string]*Num `json:"m"`
}

// GeProof proves a predicate over one hidden attribute.
type GeProof struct {
	U         map[string]*Num `json:"u"`
	R         map[string]*Num `json:"r"`
	Mj        *Num            `json:"mj"`
	Alpha     *Num            `json:"alpha"`
	T         map[string]*Num `json:"t"`
	Predicate Predicate       `json:"predicate"`
}

// PrimaryProof is the CL part of one sub-proof.
type PrimaryProof struct {
	EqProof  *EqProof   `json:"eq_proof"`
	GeProofs []*GeProof `json:"ge_proofs"`
}

// AggregatedProof binds all sub-proofs to one challenge.
type AggregatedProof struct {
	CHash *Num   `json:"c_hash"`
	CList []*Num `json:"c_list"`
}

type eqInit struct {
	pk         *PublicKey
	values     map[string]*big.Int
	revealed   []string
	unrevealed []string
	aPrime     *big.Int
	vPrime     *big.Int
	ePrime     *big.Int
	eTilde     *big.Int
	vTilde     *big.Int
	mTilde     map[string]*big.Int
	t          *big.Int
}

type geInit struct {
	pred        Predicate
	u           [4]*big.Int
	r           [4]*big.Int
	rDelta      *big.Int
	uTilde      [4]*big.Int
	rTilde      [4]*big.Int
	rDeltaTilde *big.Int
	alpha       *big.Int
	alphaTilde  *big.Int
	t           [4]*big.Int
	tDelta      *big.Int
	mTilde      *big.Int
	m           *big.Int
}

// ProofBuilder accumulates sub-proofs that share a master secret and a
// single Fiat-Shamir challenge.
type ProofBuilder struct {
	msTilde *big.Int
	eqs     []*eqInit
	ges     [][]*geInit
	tauList []*big.Int
	cList   []*big.Int
}

// NewProofBuilder starts an empty proof.
func NewProofBuilder() *ProofBuilder {
	return &ProofBuilder{msTilde: randBits(LargeMTilde)}
}

// AddSubProof commits to one credential. values carries every encoded
// attribute including the master secret. extraC are commitments of the
// credential's non-revocation proof and join the challenge.
func (b *ProofBuilder) AddSubProof(pk *PublicKey, sig *Signature, values map[string]*big.Int, req SubProofRequest, extraC []*big.Int) error {
	if err := pk.Validate(); err != nil {
		return err
	}
	if sig == nil || sig.A == nil || sig.E == nil || sig.V == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "incomplete credential signature")
	}
	if _, ok := values[MasterSecretName]; !ok {
		return dErrors.New(dErrors.CodeInvalidStructure, "credential values miss the master secret")
	}
	n, s := pk.N.Int(), pk.S.Int()

	revealed := slices.Clone(req.Revealed)
	sort.Strings(revealed)
	revealed = slices.Compact(revealed)
	isRevealed := make(map[string]bool, len(revealed))
	for _, name := range revealed {
		if _, ok := values[name]; !ok || name == MasterSecretName {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "revealed attribute %q is not in the credential", name)
		}
		isRevealed[name] = true
	}
	var unrevealed []string
	for _, name := range pk.Attrs() {
		if _, ok := values[name]; !ok {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "credential has no value for %q", name)
		}
		if !isRevealed[name] {
			unrevealed = append(unrevealed, name)
		}
	}

	rA := randBits(LargeR)
	aPrime := mulMod(n, sig.A.Int(), new(big.Int).Exp(s, rA, n))
	vPrime := new(big.Int).Mul(sig.E.Int(), rA)
	vPrime.Sub(sig.V.Int(), vPrime)
	eq := &eqInit{
		pk:         pk,
		values:     values,
		revealed:   revealed,
		unrevealed: unrevealed,
		aPrime:     aPrime,
		vPrime:     vPrime,
		ePrime:     new(big.Int).Sub(sig.E.Int(), eStart),
		eTilde:     randBits(LargeETilde),
		vTilde:     randBits(LargeVTilde),
		mTilde:     make(map[string]*big.Int, len(unrevealed)),
	}
	parts := []*big.Int{new(big.Int).Exp(aPrime, eq.eTilde, n), new(big.Int).Exp(s, eq.vTilde, n)}
	for _, name := range unrevealed {
		mt := randBits(LargeMTilde)
		if name == MasterSecretName {
			mt = b.msTilde
		}
		eq.mTilde[name] = mt
		parts = append(parts, new(big.Int).Exp(pk.R[name].Int(), mt, n))
	}
	eq.t = mulMod(n, parts...)

	var ges []*geInit
	for _, pred := range req.Predicates {
		if isRevealed[pred.AttrName] {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %q is both revealed and predicated", pred.AttrName)
		}
		mt, ok := eq.mTilde[pred.AttrName]
		if !ok || pred.AttrName == MasterSecretName {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "predicate attribute %q is not in the credential", pred.AttrName)
		}
		ge, err := initGe(pk, pred, values[pred.AttrName], mt)
		if err != nil {
			return err
		}
		ges = append(ges, ge)
	}

	b.cList = append(b.cList, aPrime)
	b.tauList = append(b.tauList, eq.t)
	for _, ge := range ges {
		b.cList = append(b.cList, ge.t[0], ge.t[1], ge.t[2], ge.t[3], ge.tDelta)
		b.tauList = append(b.tauList, ge.tau(pk)...)
	}
	b.cList = append(b.cList, extraC...)
	b.eqs = append(b.eqs, eq)
	b.ges = append(b.ges, ges)
	return nil
}

func initGe(pk *PublicKey, pred Predicate, m, mTilde *big.Int) (*geInit, error) {
	sign, k, err := pred.deltaTerms()
	if err != nil {
		return nil, err
	}
	delta := new(big.Int).Mul(big.NewInt(sign), m)
	delta.Add(delta, k)
	if delta.Sign() < 0 {
		return nil, dErrors.Newf(dErrors.CodeProofRejected, "predicate on %q is not satisfied", pred.AttrName)
	}
	if !delta.IsUint64() {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate on %q is out of range", pred.AttrName)
	}
	n, s, z := pk.N.Int(), pk.S.Int(), pk.Z.Int()
	squares := fourSquares(delta.Uint64())

	ge := &geInit{pred: pred, m: m, mTilde: mTilde, rDelta: randBits(LargeR)}
	sumUR := new(big.Int)
	for i := range 4 {
		ge.u[i] = new(big.Int).SetUint64(squares[i])
		ge.r[i] = randBits(LargeR)
		ge.uTilde[i] = randBits(LargeUTilde)
		ge.rTilde[i] = randBits(LargeRTilde)
		ge.t[i] = mulMod(n, new(big.Int).Exp(z, ge.u[i], n), new(big.Int).Exp(s, ge.r[i], n))
		sumUR.Add(sumUR, new(big.Int).Mul(ge.u[i], ge.r[i]))
	}
	ge.tDelta = mulMod(n, new(big.Int).Exp(z, delta, n), new(big.Int).Exp(s, ge.rDelta, n))
	ge.rDeltaTilde = randBits(LargeRTilde)
	ge.alpha = new(big.Int).Sub(ge.rDelta, sumUR)
	ge.alphaTilde = randBits(LargeAlphaTilde)
	return ge, nil
}

func (ge *geInit) tau(pk *PublicKey) []*big.Int {
	n, s, z := pk.N.Int(), pk.S.Int(), pk.Z.Int()
	sign, _, _ := ge.pred.deltaTerms()
	out := make([]*big.Int, 0, 6)
	for i := range 4 {
		out = append(out, mulMod(n, new(big.Int).Exp(z, ge.uTilde[i], n), new(big.Int).Exp(s, ge.rTilde[i], n)))
	}
	signedM := new(big.Int).Mul(big.NewInt(sign), ge.mTilde)
	out = append(out, mulMod(n, modPow(z, signedM, n), new(big.Int).Exp(s, ge.rDeltaTilde, n)))
	q := []*big.Int{new(big.Int).Exp(s, ge.alphaTilde, n)}
	for i := range 4 {
		q = append(q, new(big.Int).Exp(ge.t[i], ge.uTilde[i], n))
	}
	return append(out, mulMod(n, q...))
}

// Finalize derives the challenge over every commitment and the verifier's
// nonce and returns the sub-proofs in insertion order.
func (b *ProofBuilder) Finalize(nonce *big.Int) ([]*PrimaryProof, *AggregatedProof) {
	values := append(slices.Clone(b.tauList), b.cList...)
	c := challenge(append(values, nonce)...)

	proofs := make([]*PrimaryProof, len(b.eqs))
	for i, eq := range b.eqs {
		proofs[i] = &PrimaryProof{EqProof: eq.finish(c)}
		for _, ge := range b.ges[i] {
			proofs[i].GeProofs = append(proofs[i].GeProofs, ge.finish(c))
		}
	}
	cList := make([]*Num, len(b.cList))
	for i, v := range b.cList {
		cList[i] = N(v)
	}
	return proofs, &AggregatedProof{CHash: N(c), CList: cList}
}

func (eq *eqInit) finish(c *big.Int) *EqProof {
	out := &EqProof{
		RevealedAttrs: make(map[string]*Num, len(eq.revealed)),
		APrime:        N(eq.aPrime),
		E:             N(plusTimes(eq.eTilde, c, eq.ePrime)),
		V:             N(plusTimes(eq.vTilde, c, eq.vPrime)),
		M:             make(map[string]*Num, len(eq.unrevealed)),
	}
	for _, name := range eq.revealed {
		out.RevealedAttrs[name] = N(new(big.Int).Set(eq.values[name]))
	}
	for _, name := range eq.unrevealed {
		out.M[name] = N(plusTimes(eq.mTilde[name], c, eq.values[name]))
	}
	return out
}

func (ge *geInit) finish(c *big.Int) *GeProof {
	out := &GeProof{
		U:         make(map[string]*Num, 4),
		R:         make(map[string]*Num, 5),
		T:         make(map[string]*Num, 5),
		Mj:        N(plusTimes(ge.mTilde, c, ge.m)),
		Alpha:     N(plusTimes(ge.alphaTilde, c, ge.alpha)),
		Predicate: ge.pred,
	}
	for i := range 4 {
		key := strconv.Itoa(i)
		out.U[key] = N(plusTimes(ge.uTilde[i], c, ge.u[i]))
		out.R[key] = N(plusTimes(ge.rTilde[i], c, ge.r[i]))
		out.T[key] = N(ge.t[i])
	}
	out.R[deltaKey] = N(plusTimes(ge.rDeltaTilde, c, ge.rDelta))
	out.T[deltaKey] = N(ge.tDelta)
	return out
}
