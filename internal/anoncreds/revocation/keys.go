package revocation

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	dErrors "indy/pkg/domain-errors"
)

// PublicKey is the revocation part of a credential definition.
type PublicKey struct {
	G     G1 `json:"g"`
	GDash G2 `json:"g_dash"`
	X1    G1 `json:"x1"`
	PK    G2 `json:"pk"`
}

// PrivateKey signs revocation indices.
type PrivateKey struct {
	X *big.Int `json:"x"`
}

// NewKeys generates a revocation key pair.
func NewKeys() (*PublicKey, *PrivateKey) {
	x := randScalar()
	pk := &PublicKey{G: G1{g1Gen}, GDash: G2{g2Gen}}
	pk.X1.ScalarMultiplication(&g1Gen, x)
	pk.PK.ScalarMultiplication(&g2Gen, x)
	return pk, &PrivateKey{X: x}
}

// RegistryPublicKey is the accumulator's public key.
type RegistryPublicKey struct {
	Z GT `json:"z"`
}

// RegistryPrivateKey is the trapdoor of the tails.
type RegistryPrivateKey struct {
	Gamma *big.Int `json:"gamma"`
}

// NewRegistryKeys generates the trapdoor and z = e(g, g'^(gamma^(L+1))).
func NewRegistryKeys(pk *PublicKey, maxCredNum uint32) (*RegistryPublicKey, *RegistryPrivateKey, error) {
	gamma := randScalar()
	exp := new(big.Int).Exp(gamma, big.NewInt(int64(maxCredNum)+1), order)
	var h bn254.G2Affine
	h.ScalarMultiplication(&pk.GDash.G2Affine, exp)
	z, err := bn254.Pair([]bn254.G1Affine{pk.G.G1Affine}, []bn254.G2Affine{h})
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "compute registry key")
	}
	return &RegistryPublicKey{Z: GT{z}}, &RegistryPrivateKey{Gamma: gamma}, nil
}

// Signature is the issuer's non-revocation signature on index I.
type Signature struct {
	I      uint32 `json:"i"`
	GI     G1     `json:"g_i"`
	SigmaI G1     `json:"sigma_i"`
}

// Sign issues the non-revocation signature for idx: g_i = g^(gamma^i),
// sigma_i = g_i^x.
func Sign(pk *PublicKey, sk *PrivateKey, rsk *RegistryPrivateKey, idx uint32) *Signature {
	exp := new(big.Int).Exp(rsk.Gamma, big.NewInt(int64(idx)), order)
	sig := &Signature{I: idx}
	sig.GI.ScalarMultiplication(&pk.G.G1Affine, exp)
	sig.SigmaI.ScalarMultiplication(&sig.GI.G1Affine, sk.X)
	return sig
}
