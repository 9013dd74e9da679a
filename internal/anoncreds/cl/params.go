package cl

import "math/big"

// Bit lengths of the random values used by the protocols.
const (
	DefaultModulusBits = 2048

	LargeMasterSecret = 256
	LargeEStart       = 596
	LargeERange       = 119
	LargeVPrime       = 2128
	LargeVPrimePrime  = 2724
	LargeETilde       = 456
	LargeVTilde       = 3060
	LargeMTilde       = 592
	LargeUTilde       = 592
	LargeR            = 2128
	LargeRTilde       = 2464
	LargeAlphaTilde   = 2787
	LargeNonce        = 80
)

// MasterSecretName is the attribute slot holding the prover's secret.
const MasterSecretName = "master_secret"

var eStart = new(big.Int).Lsh(big.NewInt(1), LargeEStart)

// NewNonce returns a fresh 80-bit nonce.
func NewNonce() *big.Int {
	return randBits(LargeNonce)
}

// NewMasterSecret returns a fresh master secret.
func NewMasterSecret() *big.Int {
	return randBits(LargeMasterSecret)
}
