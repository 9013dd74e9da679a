package cl

import (
	"math/big"

	dErrors "indy/pkg/domain-errors"
)

// Signature is the primary CL signature over a credential's values.
type Signature struct {
	A *Num `json:"a"`
	E *Num `json:"e"`
	V *Num `json:"v"`
}

// SignatureCorrectnessProof lets the prover check A without learning the
// issuer's factorisation.
type SignatureCorrectnessProof struct {
	SE *Num `json:"se"`
	C  *Num `json:"c"`
}

// Sign signs the known attribute values together with the blinded
// commitment. values must be keyed by attribute names present in pk.
func Sign(pk *PublicKey, sk *PrivateKey, bs *BlindedSecrets, values map[string]*big.Int, nonce *big.Int) (*Signature, *SignatureCorrectnessProof, error) {
	if bs == nil || bs.U == nil {
		return nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "missing blinded secrets")
	}
	n := pk.N.Int()
	order := sk.order()

	denom := []*big.Int{bs.U.Int()}
	for name, m := range values {
		r, ok := pk.R[name]
		if !ok || name == MasterSecretName {
			return nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %q is not part of the credential definition", name)
		}
		denom = append(denom, new(big.Int).Exp(r.Int(), m, n))
	}

	e := primeInRange(eStart, LargeERange)
	vpp := randBits(LargeVPrimePrime - 1)
	vpp.SetBit(vpp, LargeVPrimePrime-1, 1)
	denom = append(denom, new(big.Int).Exp(pk.S.Int(), vpp, n))

	q := mulMod(n, pk.Z.Int(), invMod(mulMod(n, denom...), n))
	eInv := invMod(e, order)
	a := new(big.Int).Exp(q, eInv, n)

	r := randBelow(order)
	aCap := new(big.Int).Exp(q, r, n)
	c := challenge(q, a, aCap, nonce)
	se := new(big.Int).Mul(c, eInv)
	se.Sub(r, se).Mod(se, order)

	return &Signature{A: N(a), E: N(e), V: N(vpp)}, &SignatureCorrectnessProof{SE: N(se), C: N(c)}, nil
}

// ProcessSignature checks an issued signature and folds the prover's
// blinding factor into it. values must include the master secret.
func ProcessSignature(pk *PublicKey, sig *Signature, proof *SignatureCorrectnessProof, bf *BlindingFactors, values map[string]*big.Int, nonce *big.Int) (*Signature, error) {
	if sig == nil || sig.A == nil || sig.E == nil || sig.V == nil || proof == nil || proof.C == nil || proof.SE == nil || bf == nil || bf.VPrime == nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "incomplete credential signature")
	}
	n := pk.N.Int()
	a, e := sig.A.Int(), sig.E.Int()
	if !e.ProbablyPrime(25) {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "signature exponent is not prime")
	}
	q := new(big.Int).Exp(a, e, n)
	c := proof.C.Int()
	aCap := modPow(a, plusTimes(c, proof.SE.Int(), e), n)
	if challenge(q, a, aCap, nonce).Cmp(c) != 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "signature correctness proof is invalid")
	}

	v := new(big.Int).Add(bf.VPrime.Int(), sig.V.Int())
	out := &Signature{A: N(new(big.Int).Set(a)), E: N(new(big.Int).Set(e)), V: N(v)}
	if err := VerifySignature(pk, out, values); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifySignature checks Z = A^e * S^v * prod(R_i^m_i).
func VerifySignature(pk *PublicKey, sig *Signature, values map[string]*big.Int) error {
	n := pk.N.Int()
	parts := []*big.Int{
		new(big.Int).Exp(sig.A.Int(), sig.E.Int(), n),
		new(big.Int).Exp(pk.S.Int(), sig.V.Int(), n),
	}
	for name, m := range values {
		r, ok := pk.R[name]
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %q is not part of the credential definition", name)
		}
		parts = append(parts, new(big.Int).Exp(r.Int(), m, n))
	}
	if mulMod(n, parts...).Cmp(pk.Z.Int()) != 0 {
		return dErrors.New(dErrors.CodeInvalidStructure, "credential signature does not verify")
	}
	return nil
}
