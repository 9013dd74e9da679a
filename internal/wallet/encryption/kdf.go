// Package encryption derives wallet keys and encrypts records before they
// reach a storage backend.
package encryption

import (
	"crypto/rand"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"

	dErrors "indy/pkg/domain-errors"
)

// KeyDerivationMethod selects how the master key is obtained from the
// passphrase supplied in the wallet credentials.
type KeyDerivationMethod string

const (
	KDFArgon2iMod KeyDerivationMethod = "ARGON2I_MOD"
	KDFArgon2iInt KeyDerivationMethod = "ARGON2I_INT"
	KDFRaw        KeyDerivationMethod = "RAW"
)

const (
	KeySize  = 32
	SaltSize = 16
)

// Argon2Params are the argon2i cost parameters of one method.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// Cost parameters. Tests lower them.
var (
	ModerateParams    = Argon2Params{Time: 6, MemoryKiB: 256 * 1024, Threads: 1}
	InteractiveParams = Argon2Params{Time: 4, MemoryKiB: 32 * 1024, Threads: 1}
)

// ParseMethod validates a method name. The empty string selects ARGON2I_MOD.
func ParseMethod(s string) (KeyDerivationMethod, error) {
	switch m := KeyDerivationMethod(s); m {
	case "":
		return KDFArgon2iMod, nil
	case KDFArgon2iMod, KDFArgon2iInt, KDFRaw:
		return m, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unknown key derivation method %q", s)
}

// ID is the one-byte identifier written into export headers.
func (m KeyDerivationMethod) ID() byte {
	switch m {
	case KDFArgon2iInt:
		return 1
	case KDFRaw:
		return 2
	}
	return 0
}

// MethodFromID reverses ID.
func MethodFromID(id byte) (KeyDerivationMethod, error) {
	switch id {
	case 0:
		return KDFArgon2iMod, nil
	case 1:
		return KDFArgon2iInt, nil
	case 2:
		return KDFRaw, nil
	}
	return "", dErrors.Newf(dErrors.CodeWalletDecodingError, "unknown key derivation id %d", id)
}

// NewSalt returns a random salt. RAW keys need none.
func NewSalt(m KeyDerivationMethod) ([]byte, error) {
	if m == KDFRaw {
		return nil, nil
	}
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "read salt")
	}
	return salt, nil
}

// DeriveMasterKey turns a passphrase into the key that seals the wallet
// keys. It is CPU and memory heavy for the argon2 methods.
func DeriveMasterKey(m KeyDerivationMethod, passphrase string, salt []byte) (*[KeySize]byte, error) {
	var out [KeySize]byte
	switch m {
	case KDFRaw:
		raw, err := base58.Decode(passphrase)
		if err != nil || len(raw) != KeySize {
			return nil, dErrors.New(dErrors.CodeInvalidStructure, "raw wallet key must be base58 of 32 bytes")
		}
		copy(out[:], raw)
		return &out, nil
	case KDFArgon2iMod, KDFArgon2iInt:
		if len(salt) != SaltSize {
			return nil, dErrors.New(dErrors.CodeWalletDecodingError, "invalid key derivation salt")
		}
		p := ModerateParams
		if m == KDFArgon2iInt {
			p = InteractiveParams
		}
		copy(out[:], argon2.Key([]byte(passphrase), salt, p.Time, p.MemoryKiB, p.Threads, KeySize))
		return &out, nil
	}
	return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown key derivation method %q", m)
}

// GenerateKey returns a base58 key usable with RAW. A non-empty seed makes
// the result deterministic.
func GenerateKey(seed []byte) (string, error) {
	key := make([]byte, KeySize)
	switch {
	case len(seed) == 0:
		if _, err := rand.Read(key); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "generate key")
		}
	case len(seed) == KeySize:
		copy(key, seed)
	default:
		return "", dErrors.New(dErrors.CodeInvalidStructure, "seed must be 32 bytes")
	}
	return base58.Encode(key), nil
}
