package revocation

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	dErrors "indy/pkg/domain-errors"
)

const (
	tailsVersion    uint16 = 2
	tailsHeaderSize        = 2
	tailSize               = bn254.SizeOfG2AffineCompressed
)

// TailsReader gives random access to a tails blob.
type TailsReader interface {
	ReadAt(p []byte, off int64) (int, error)
}

// TailsSize is the byte length of a tails blob for maxCredNum slots.
func TailsSize(maxCredNum uint32) int64 {
	return tailsHeaderSize + 2*int64(maxCredNum)*tailSize
}

// WriteTails writes g'^(gamma^k) for k in 1..2L. Slot L+1 is the
// identity, its exponent being the trapdoor of z.
func WriteTails(w io.Writer, pk *PublicKey, rsk *RegistryPrivateKey, maxCredNum uint32) error {
	bw := bufio.NewWriter(w)
	var hdr [tailsHeaderSize]byte
	binary.BigEndian.PutUint16(hdr[:], tailsVersion)
	if _, err := bw.Write(hdr[:]); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "write tails header")
	}
	exp := new(big.Int).Set(rsk.Gamma)
	var point bn254.G2Affine
	for k := uint32(1); k <= 2*maxCredNum; k++ {
		if k == maxCredNum+1 {
			point.SetInfinity()
		} else {
			point.ScalarMultiplication(&pk.GDash.G2Affine, exp)
		}
		b := point.Bytes()
		if _, err := bw.Write(b[:]); err != nil {
			return dErrors.Wrap(err, dErrors.CodeIOError, "write tails")
		}
		exp.Mul(exp, rsk.Gamma).Mod(exp, order)
	}
	if err := bw.Flush(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "write tails")
	}
	return nil
}

// Tails reads tails elements by 1-based index.
type Tails struct {
	r          TailsReader
	maxCredNum uint32
	checked    bool
}

// NewTails wraps a tails blob.
func NewTails(r TailsReader, maxCredNum uint32) *Tails {
	return &Tails{r: r, maxCredNum: maxCredNum}
}

// Get returns tail k.
func (t *Tails) Get(k uint32) (bn254.G2Affine, error) {
	var point bn254.G2Affine
	if k == 0 || k > 2*t.maxCredNum {
		return point, dErrors.Newf(dErrors.CodeInvalidStructure, "tails index %d out of range", k)
	}
	if !t.checked {
		var hdr [tailsHeaderSize]byte
		if _, err := t.r.ReadAt(hdr[:], 0); err != nil {
			return point, dErrors.Wrap(err, dErrors.CodeIOError, "read tails header")
		}
		if binary.BigEndian.Uint16(hdr[:]) != tailsVersion {
			return point, dErrors.New(dErrors.CodeInvalidStructure, "unsupported tails version")
		}
		t.checked = true
	}
	buf := make([]byte, tailSize)
	off := tailsHeaderSize + int64(k-1)*tailSize
	if _, err := t.r.ReadAt(buf, off); err != nil {
		return point, dErrors.Wrap(err, dErrors.CodeIOError, "read tails")
	}
	if _, err := point.SetBytes(buf); err != nil {
		return point, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "corrupt tails element")
	}
	return point, nil
}
