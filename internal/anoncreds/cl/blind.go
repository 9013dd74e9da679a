package cl

import (
	"math/big"

	dErrors "indy/pkg/domain-errors"
)

// BlindedSecrets is the prover's commitment to the master secret.
type BlindedSecrets struct {
	U *Num `json:"u"`
}

// BlindedSecretsProof proves knowledge of the committed values.
type BlindedSecretsProof struct {
	C        *Num            `json:"c"`
	VDashCap *Num            `json:"v_dash_cap"`
	MCaps    map[string]*Num `json:"m_caps"`
	RCaps    map[string]*Num `json:"r_caps"`
}

// BlindingFactors stays with the prover until the signature arrives.
type BlindingFactors struct {
	VPrime *Num `json:"v_prime"`
}

// Blind commits to masterSecret under pk and proves the commitment
// against the issuer's nonce.
func Blind(pk *PublicKey, kcp *KeyCorrectnessProof, masterSecret, nonce *big.Int) (*BlindedSecrets, *BlindedSecretsProof, *BlindingFactors, error) {
	if err := VerifyKey(pk, kcp); err != nil {
		return nil, nil, nil, err
	}
	n, s, rms := pk.N.Int(), pk.S.Int(), pk.R[MasterSecretName].Int()

	vPrime := randBits(LargeVPrime)
	u := mulMod(n, new(big.Int).Exp(s, vPrime, n), new(big.Int).Exp(rms, masterSecret, n))

	vTilde := randBits(LargeVPrime + LargeMTilde + LargeNonce)
	mTilde := randBits(LargeMTilde)
	uTilde := mulMod(n, new(big.Int).Exp(s, vTilde, n), new(big.Int).Exp(rms, mTilde, n))

	c := challenge(u, uTilde, nonce)
	proof := &BlindedSecretsProof{
		C:        N(c),
		VDashCap: N(plusTimes(vTilde, c, vPrime)),
		MCaps:    map[string]*Num{MasterSecretName: N(plusTimes(mTilde, c, masterSecret))},
		RCaps:    map[string]*Num{},
	}
	return &BlindedSecrets{U: N(u)}, proof, &BlindingFactors{VPrime: N(vPrime)}, nil
}

// VerifyBlinding checks the prover's commitment proof.
func VerifyBlinding(pk *PublicKey, bs *BlindedSecrets, proof *BlindedSecretsProof, nonce *big.Int) error {
	if bs == nil || bs.U == nil || proof == nil || proof.C == nil || proof.VDashCap == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "incomplete blinded secrets")
	}
	mCap, ok := proof.MCaps[MasterSecretName]
	if !ok || mCap == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "blinded secrets proof misses the master secret")
	}
	n, s, rms := pk.N.Int(), pk.S.Int(), pk.R[MasterSecretName].Int()
	c := proof.C.Int()
	uTilde := mulMod(n,
		modPow(bs.U.Int(), new(big.Int).Neg(c), n),
		new(big.Int).Exp(s, proof.VDashCap.Int(), n),
		modPow(rms, mCap.Int(), n),
	)
	if challenge(bs.U.Int(), uTilde, nonce).Cmp(c) != 0 {
		return dErrors.New(dErrors.CodeInvalidStructure, "blinded secrets proof is invalid")
	}
	return nil
}
