package cl

import (
	"math/big"
	"slices"
	"strconv"

	dErrors "indy/pkg/domain-errors"
)

// VerifierSubProof is one credential's proof with the key and request it
// must satisfy.
type VerifierSubProof struct {
	PublicKey *PublicKey
	Proof     *PrimaryProof
	Request   SubProofRequest
	ExtraC    []*big.Int
}

// VerifyProof rebuilds the challenge of an aggregated proof. Structural
// problems are errors; a proof that is well formed but does not verify
// returns false.
func VerifyProof(subs []VerifierSubProof, agg *AggregatedProof, nonce *big.Int) (bool, error) {
	if agg == nil || agg.CHash == nil {
		return false, dErrors.New(dErrors.CodeInvalidStructure, "missing aggregated proof")
	}
	c := agg.CHash.Int()
	var tauList, cList []*big.Int
	var msCap *big.Int
	for _, sub := range subs {
		taus, cs, ms, err := verifyTau(sub, c)
		if err != nil {
			return false, err
		}
		if taus == nil {
			return false, nil
		}
		if msCap == nil {
			msCap = ms
		} else if msCap.Cmp(ms) != 0 {
			return false, nil
		}
		tauList = append(tauList, taus...)
		cList = append(cList, cs...)
		cList = append(cList, sub.ExtraC...)
	}

	if len(cList) != len(agg.CList) {
		return false, nil
	}
	for i := range cList {
		if agg.CList[i] == nil || agg.CList[i].Int().Cmp(cList[i]) != 0 {
			return false, nil
		}
	}
	values := append(slices.Clone(tauList), cList...)
	return challenge(append(values, nonce)...).Cmp(c) == 0, nil
}

// verifyTau returns nil taus when a bound check fails.
func verifyTau(sub VerifierSubProof, c *big.Int) (taus, cs []*big.Int, ms *big.Int, err error) {
	pk, proof := sub.PublicKey, sub.Proof
	if err := pk.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if proof == nil || proof.EqProof == nil {
		return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "missing primary proof")
	}
	eq := proof.EqProof
	if eq.APrime == nil || eq.E == nil || eq.V == nil {
		return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "incomplete equality proof")
	}
	if len(proof.GeProofs) != len(sub.Request.Predicates) {
		return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "predicate count does not match the request")
	}
	for _, name := range sub.Request.Revealed {
		if _, ok := eq.RevealedAttrs[name]; !ok {
			return nil, nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "revealed attribute %q is missing", name)
		}
	}
	n, s, z := pk.N.Int(), pk.S.Int(), pk.Z.Int()
	negC := new(big.Int).Neg(c)

	for name := range pk.R {
		_, rev := eq.RevealedAttrs[name]
		m, hidden := eq.M[name]
		if rev == hidden || (hidden && m == nil) {
			return nil, nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %q must be either revealed or hidden", name)
		}
	}
	if len(eq.RevealedAttrs)+len(eq.M) != len(pk.R) {
		return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "proof attributes do not match the credential definition")
	}
	if _, ok := eq.M[MasterSecretName]; !ok {
		return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "master secret must stay hidden")
	}
	if eq.E.Int().BitLen() > LargeETilde+1 {
		return nil, nil, nil, nil
	}

	revealedPart := []*big.Int{new(big.Int).Exp(eq.APrime.Int(), eStart, n)}
	for name, m := range eq.RevealedAttrs {
		if m == nil {
			return nil, nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "revealed attribute %q is empty", name)
		}
		revealedPart = append(revealedPart, modPow(pk.R[name].Int(), m.Int(), n))
	}
	zRev := mulMod(n, z, invMod(mulMod(n, revealedPart...), n))
	parts := []*big.Int{
		modPow(zRev, negC, n),
		modPow(eq.APrime.Int(), eq.E.Int(), n),
		modPow(s, eq.V.Int(), n),
	}
	for _, name := range pk.Attrs() {
		if m, ok := eq.M[name]; ok {
			parts = append(parts, modPow(pk.R[name].Int(), m.Int(), n))
		}
	}
	taus = []*big.Int{mulMod(n, parts...)}
	cs = []*big.Int{eq.APrime.Int()}

	for i, ge := range proof.GeProofs {
		want := sub.Request.Predicates[i]
		if ge == nil || ge.Predicate != want {
			return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "predicate does not match the request")
		}
		mCap, ok := eq.M[want.AttrName]
		if !ok {
			return nil, nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate attribute %q is not hidden", want.AttrName)
		}
		if ge.Mj == nil || ge.Alpha == nil {
			return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "incomplete predicate proof")
		}
		if ge.Mj.Int().Cmp(mCap.Int()) != 0 {
			return nil, nil, nil, nil
		}
		sign, k, err := want.deltaTerms()
		if err != nil {
			return nil, nil, nil, err
		}
		var t [5]*big.Int
		var u [4]*big.Int
		var r [5]*big.Int
		for j := range 5 {
			key := deltaKey
			if j < 4 {
				key = strconv.Itoa(j)
				if u[j] = numsGet(ge.U, key); u[j] == nil {
					return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "incomplete predicate proof")
				}
			}
			t[j], r[j] = numsGet(ge.T, key), numsGet(ge.R, key)
			if t[j] == nil || r[j] == nil {
				return nil, nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "incomplete predicate proof")
			}
		}
		for j := range 4 {
			taus = append(taus, mulMod(n, modPow(t[j], negC, n), modPow(z, u[j], n), modPow(s, r[j], n)))
		}
		tdz := mulMod(n, t[4], modPow(z, new(big.Int).Neg(k), n))
		signedM := new(big.Int).Mul(big.NewInt(sign), ge.Mj.Int())
		taus = append(taus, mulMod(n, modPow(tdz, negC, n), modPow(z, signedM, n), modPow(s, r[4], n)))
		q := []*big.Int{modPow(t[4], negC, n), modPow(s, ge.Alpha.Int(), n)}
		for j := range 4 {
			q = append(q, modPow(t[j], u[j], n))
		}
		taus = append(taus, mulMod(n, q...))
		cs = append(cs, t[0], t[1], t[2], t[3], t[4])
	}
	return taus, cs, eq.M[MasterSecretName].Int(), nil
}

func numsGet(m map[string]*Num, key string) *big.Int {
	if v, ok := m[key]; ok && v != nil {
		return v.Int()
	}
	return nil
}
