// Package crypto implements the key operations of the library: ed25519
// signing keys, their X25519 counterparts for authenticated and anonymous
// encryption, and the JWE-like message envelope.
package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
)

// TypeEd25519 is the only supported crypto type.
const TypeEd25519 = "ed25519"

// Key is an ed25519 key pair. Both halves are kept in base58, which is the
// form they are stored and exchanged in.
type Key struct {
	Verkey  string `json:"verkey"`
	Signkey string `json:"signkey"`
}

// KeyInfo describes a key to create.
type KeyInfo struct {
	Seed       string `json:"seed,omitempty"`
	CryptoType string `json:"crypto_type,omitempty"`
}

// CheckCryptoType accepts the empty string as the default type.
func CheckCryptoType(t string) error {
	if t == "" || t == TypeEd25519 {
		return nil
	}
	return dErrors.Newf(dErrors.CodeUnknownCryptoType, "unknown crypto type %q", t)
}

// ParseSeed accepts a raw 32-character seed or its base64 encoding.
func ParseSeed(seed string) ([]byte, error) {
	if seed == "" {
		return nil, nil
	}
	if len(seed) == ed25519.SeedSize {
		return []byte(seed), nil
	}
	if strings.HasSuffix(seed, "=") {
		raw, err := base64.StdEncoding.DecodeString(seed)
		if err == nil && len(raw) == ed25519.SeedSize {
			return raw, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeInvalidStructure, "seed must be 32 bytes or their base64 encoding")
}

// CreateKey generates a key pair, deterministically when a seed is given.
func CreateKey(info KeyInfo) (*Key, error) {
	if err := CheckCryptoType(info.CryptoType); err != nil {
		return nil, err
	}
	seed, err := ParseSeed(info.Seed)
	if err != nil {
		return nil, err
	}
	var priv ed25519.PrivateKey
	if seed != nil {
		priv = ed25519.NewKeyFromSeed(seed)
	} else {
		_, priv, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "generate key")
		}
	}
	return &Key{
		Verkey:  base58.Encode(priv.Public().(ed25519.PublicKey)),
		Signkey: base58.Encode(priv),
	}, nil
}

// SplitVerkey strips an optional ":<crypto_type>" suffix.
func SplitVerkey(verkey string) (string, error) {
	vk, typ, found := strings.Cut(verkey, ":")
	if found {
		if err := CheckCryptoType(typ); err != nil {
			return "", err
		}
	}
	return vk, nil
}

// DecodeVerkey returns the raw public key.
func DecodeVerkey(verkey string) (ed25519.PublicKey, error) {
	vk, err := SplitVerkey(verkey)
	if err != nil {
		return nil, err
	}
	raw, err := base58.Decode(vk)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "invalid verkey %q", verkey)
	}
	return raw, nil
}

// ValidateVerkey accepts full and abbreviated verkeys.
func ValidateVerkey(verkey string) error {
	if rest, ok := strings.CutPrefix(verkey, "~"); ok {
		raw, err := base58.Decode(rest)
		if err != nil || len(raw) != 16 {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "invalid abbreviated verkey %q", verkey)
		}
		return nil
	}
	_, err := DecodeVerkey(verkey)
	return err
}

func (k *Key) private() (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(k.Signkey)
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidState, "corrupt signing key")
	}
	return raw, nil
}

// Sign signs msg with the key.
func Sign(k *Key, msg []byte) ([]byte, error) {
	priv, err := k.private()
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, msg), nil
}

// Verify checks an ed25519 signature. A malformed verkey is an error; a
// wrong signature is false.
func Verify(verkey string, msg, sig []byte) (bool, error) {
	pub, err := DecodeVerkey(verkey)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, msg, sig), nil
}

// publicToX25519 maps an ed25519 public key onto the Montgomery curve.
func publicToX25519(pub ed25519.PublicKey) (*[32]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "verkey is not a curve point")
	}
	var out [32]byte
	copy(out[:], p.BytesMontgomery())
	return &out, nil
}

// privateToX25519 derives the X25519 scalar from an ed25519 seed the same
// way ed25519 derives its signing scalar.
func privateToX25519(priv ed25519.PrivateKey) *[32]byte {
	h := sha512.Sum512(priv.Seed())
	var out [32]byte
	copy(out[:], h[:32])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return &out
}

func (k *Key) x25519() (pub, priv *[32]byte, err error) {
	sk, err := k.private()
	if err != nil {
		return nil, nil, err
	}
	pub, err = publicToX25519(sk.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, nil, err
	}
	return pub, privateToX25519(sk), nil
}

// AbbreviateVerkey shortens verkey to "~" + base58(last 16 bytes) when its
// first half equals the 16-byte DID. Otherwise it is returned unchanged.
func AbbreviateVerkey(did, verkey string) (string, error) {
	didRaw, err := base58.Decode(did)
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid did %q", did)
	}
	vk, err := DecodeVerkey(verkey)
	if err != nil {
		return "", err
	}
	if len(didRaw) != 16 || !bytes.Equal(didRaw, vk[:16]) {
		return verkey, nil
	}
	return "~" + base58.Encode(vk[16:]), nil
}

// FullVerkey expands an abbreviated verkey relative to its DID.
func FullVerkey(did, verkey string) (string, error) {
	rest, ok := strings.CutPrefix(verkey, "~")
	if !ok {
		return verkey, nil
	}
	didRaw, err := base58.Decode(unqualify(did))
	if err != nil || len(didRaw) != 16 {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "did %q cannot expand an abbreviated verkey", did)
	}
	tail, err := base58.Decode(rest)
	if err != nil || len(tail) != 16 {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid abbreviated verkey %q", verkey)
	}
	return base58.Encode(append(didRaw, tail...)), nil
}

func unqualify(did string) string {
	if rest, ok := strings.CutPrefix(did, "did:"); ok {
		if _, id, found := strings.Cut(rest, ":"); found {
			return id
		}
	}
	return did
}

func (k *Key) String() string {
	return fmt.Sprintf("Key(%s)", k.Verkey)
}
