package cl

import (
	"math/big"
	"sort"

	dErrors "indy/pkg/domain-errors"
)

// PublicKey is the primary public key of a credential definition. R holds
// one base per attribute plus the master secret slot.
type PublicKey struct {
	N *Num            `json:"n"`
	S *Num            `json:"s"`
	R map[string]*Num `json:"r"`
	Z *Num            `json:"z"`
}

// PrivateKey holds the Sophie Germain halves of the modulus primes.
type PrivateKey struct {
	P *Num `json:"p"`
	Q *Num `json:"q"`
}

// KeyCorrectnessProof shows that Z and every R are powers of S.
type KeyCorrectnessProof struct {
	C     *Num            `json:"c"`
	XZCap *Num            `json:"xz_cap"`
	XRCap map[string]*Num `json:"xr_cap"`
}

func (k *PrivateKey) order() *big.Int {
	return new(big.Int).Mul(k.P.Int(), k.Q.Int())
}

// Attrs returns the attribute names of the key in sorted order, master
// secret included.
func (pk *PublicKey) Attrs() []string {
	names := make([]string, 0, len(pk.R))
	for name := range pk.R {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the key is complete.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.N == nil || pk.S == nil || pk.Z == nil || len(pk.R) == 0 {
		return dErrors.New(dErrors.CodeInvalidStructure, "incomplete primary public key")
	}
	if _, ok := pk.R[MasterSecretName]; !ok {
		return dErrors.New(dErrors.CodeInvalidStructure, "public key has no master secret base")
	}
	for name, r := range pk.R {
		if r == nil {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "public key base %q is empty", name)
		}
	}
	return nil
}

// NewKeys generates a key pair for attrs over a modulus of modulusBits.
func NewKeys(attrs []string, modulusBits int) (*PublicKey, *PrivateKey, *KeyCorrectnessProof, error) {
	p, pp, err := safePrime(modulusBits / 2)
	if err != nil {
		return nil, nil, nil, err
	}
	q, qq, err := safePrime(modulusBits / 2)
	if err != nil {
		return nil, nil, nil, err
	}
	for p.Cmp(q) == 0 {
		if q, qq, err = safePrime(modulusBits / 2); err != nil {
			return nil, nil, nil, err
		}
	}
	n := new(big.Int).Mul(p, q)
	sk := &PrivateKey{P: N(pp), Q: N(qq)}
	order := sk.order()

	s := randQR(n)
	xz := randBelow(order)
	z := new(big.Int).Exp(s, xz, n)

	names := append([]string{MasterSecretName}, attrs...)
	xr := make(map[string]*big.Int, len(names))
	r := make(map[string]*big.Int, len(names))
	for _, name := range names {
		x := randBelow(order)
		xr[name] = x
		r[name] = new(big.Int).Exp(s, x, n)
	}
	pk := &PublicKey{N: N(n), S: N(s), Z: N(z), R: Nums(r)}
	return pk, sk, proveKey(pk, xz, xr), nil
}

func proveKey(pk *PublicKey, xz *big.Int, xr map[string]*big.Int) *KeyCorrectnessProof {
	n, s := pk.N.Int(), pk.S.Int()
	bits := n.BitLen() + LargeNonce + 256
	names := pk.Attrs()

	xzTilde := randBits(bits)
	xrTilde := make(map[string]*big.Int, len(names))
	values := []*big.Int{pk.Z.Int()}
	for _, name := range names {
		values = append(values, pk.R[name].Int())
	}
	values = append(values, new(big.Int).Exp(s, xzTilde, n))
	for _, name := range names {
		t := randBits(bits)
		xrTilde[name] = t
		values = append(values, new(big.Int).Exp(s, t, n))
	}
	c := challenge(values...)

	caps := make(map[string]*big.Int, len(names))
	for _, name := range names {
		caps[name] = plusTimes(xrTilde[name], c, xr[name])
	}
	return &KeyCorrectnessProof{C: N(c), XZCap: N(plusTimes(xzTilde, c, xz)), XRCap: Nums(caps)}
}

// VerifyKey checks a key correctness proof against pk.
func VerifyKey(pk *PublicKey, proof *KeyCorrectnessProof) error {
	if err := pk.Validate(); err != nil {
		return err
	}
	if proof == nil || proof.C == nil || proof.XZCap == nil || len(proof.XRCap) != len(pk.R) {
		return dErrors.New(dErrors.CodeInvalidStructure, "incomplete key correctness proof")
	}
	n, s := pk.N.Int(), pk.S.Int()
	c := proof.C.Int()
	negC := new(big.Int).Neg(c)
	names := pk.Attrs()

	values := []*big.Int{pk.Z.Int()}
	for _, name := range names {
		values = append(values, pk.R[name].Int())
	}
	values = append(values, mulMod(n, modPow(pk.Z.Int(), negC, n), new(big.Int).Exp(s, proof.XZCap.Int(), n)))
	for _, name := range names {
		xCap, ok := proof.XRCap[name]
		if !ok || xCap == nil {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "key correctness proof misses %q", name)
		}
		values = append(values, mulMod(n, modPow(pk.R[name].Int(), negC, n), modPow(s, xCap.Int(), n)))
	}
	if challenge(values...).Cmp(c) != 0 {
		return dErrors.New(dErrors.CodeInvalidStructure, "key correctness proof does not match the credential definition")
	}
	return nil
}
