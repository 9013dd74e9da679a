package revocation

import (
	"encoding/hex"
	"encoding/json"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	dErrors "indy/pkg/domain-errors"
)

// G1, G2 and GT travel as hex of their compressed encodings.
type (
	G1 struct{ bn254.G1Affine }
	G2 struct{ bn254.G2Affine }
	GT struct{ bn254.GT }
)

var (
	g1Gen, g2Gen = generators()
	order        = fr.Modulus()
)

func generators() (bn254.G1Affine, bn254.G2Affine) {
	_, _, g1, g2 := bn254.Generators()
	return g1, g2
}

func randScalar() *big.Int {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic("revocation: entropy source failed: " + err.Error())
	}
	return e.BigInt(new(big.Int))
}

func (p G1) MarshalJSON() ([]byte, error) {
	b := p.Bytes()
	return json.Marshal(hex.EncodeToString(b[:]))
}

func (p *G1) UnmarshalJSON(data []byte) error {
	raw, err := decodeHex(data)
	if err != nil {
		return err
	}
	if _, err := p.SetBytes(raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "invalid G1 point")
	}
	return nil
}

func (p G2) MarshalJSON() ([]byte, error) {
	b := p.Bytes()
	return json.Marshal(hex.EncodeToString(b[:]))
}

func (p *G2) UnmarshalJSON(data []byte) error {
	raw, err := decodeHex(data)
	if err != nil {
		return err
	}
	if _, err := p.SetBytes(raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "invalid G2 point")
	}
	return nil
}

func (p GT) MarshalJSON() ([]byte, error) {
	b := p.Bytes()
	return json.Marshal(hex.EncodeToString(b[:]))
}

func (p *GT) UnmarshalJSON(data []byte) error {
	raw, err := decodeHex(data)
	if err != nil {
		return err
	}
	if err := p.SetBytes(raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "invalid GT element")
	}
	return nil
}

func decodeHex(data []byte) ([]byte, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "group element must be a hex string")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "group element must be a hex string")
	}
	return raw, nil
}

// Int folds a G1 point into an integer for a Fiat-Shamir transcript.
func (p *G1) Int() *big.Int {
	b := p.Bytes()
	return new(big.Int).SetBytes(b[:])
}

// Int folds a G2 point into an integer for a Fiat-Shamir transcript.
func (p *G2) Int() *big.Int {
	b := p.Bytes()
	return new(big.Int).SetBytes(b[:])
}

// Equal compares two accumulator values.
func (p *G2) Equal(q *G2) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.G2Affine.Equal(&q.G2Affine)
}
