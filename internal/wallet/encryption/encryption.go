package encryption

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "indy/pkg/domain-errors"
)

// MetadataVersion is the current layout of Metadata.
const MetadataVersion = 1

// Keys are the content keys of one wallet. They are generated once at
// creation and stored sealed under the master key, so rekeying only
// re-seals them.
type Keys struct {
	Type     [KeySize]byte
	Name     [KeySize]byte
	Value    [KeySize]byte
	ItemHMAC [KeySize]byte
	TagName  [KeySize]byte
	TagValue [KeySize]byte
	TagsHMAC [KeySize]byte
}

func (k *Keys) all() []*[KeySize]byte {
	return []*[KeySize]byte{&k.Type, &k.Name, &k.Value, &k.ItemHMAC, &k.TagName, &k.TagValue, &k.TagsHMAC}
}

// NewKeys generates fresh random content keys.
func NewKeys() (*Keys, error) {
	k := &Keys{}
	for _, key := range k.all() {
		if _, err := rand.Read(key[:]); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "generate wallet keys")
		}
	}
	return k, nil
}

// Seal encrypts the keys under master.
func (k *Keys) Seal(master *[KeySize]byte) ([]byte, error) {
	buf := make([]byte, 0, 7*KeySize)
	for _, key := range k.all() {
		buf = append(buf, key[:]...)
	}
	return EncryptRandom(master, buf)
}

// OpenKeys decrypts sealed keys. A wrong master key fails with
// WalletAccessFailed.
func OpenKeys(master *[KeySize]byte, sealed []byte) (*Keys, error) {
	buf, err := Decrypt(master, sealed)
	if err != nil || len(buf) != 7*KeySize {
		return nil, dErrors.New(dErrors.CodeWalletAccessFailed, "invalid wallet key")
	}
	k := &Keys{}
	for i, key := range k.all() {
		copy(key[:], buf[i*KeySize:])
	}
	return k, nil
}

// Metadata is what a backend stores next to the records: everything needed
// to turn credentials back into Keys.
type Metadata struct {
	Version int                 `json:"version"`
	KDF     KeyDerivationMethod `json:"kdf"`
	Salt    []byte              `json:"salt,omitempty"`
	Keys    []byte              `json:"keys"`
}

// NewMetadata seals keys under master.
func NewMetadata(keys *Keys, m KeyDerivationMethod, salt []byte, master *[KeySize]byte) (*Metadata, error) {
	sealed, err := keys.Seal(master)
	if err != nil {
		return nil, err
	}
	return &Metadata{Version: MetadataVersion, KDF: m, Salt: salt, Keys: sealed}, nil
}

// ParseMetadata decodes stored metadata.
func ParseMetadata(raw []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletDecodingError, "decode wallet metadata")
	}
	if md.Version != MetadataVersion {
		return nil, dErrors.Newf(dErrors.CodeWalletDecodingError, "unsupported wallet metadata version %d", md.Version)
	}
	if _, err := ParseMethod(string(md.KDF)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletDecodingError, "decode wallet metadata")
	}
	return &md, nil
}

// Marshal encodes md.
func (md *Metadata) Marshal() ([]byte, error) {
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "encode wallet metadata")
	}
	return raw, nil
}

// EncryptRandom seals pt with a random nonce. The output is nonce||ciphertext.
func EncryptRandom(key *[KeySize]byte, pt []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletEncryptionError, "init cipher")
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(pt)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "read nonce")
	}
	return aead.Seal(nonce, nonce, pt, nil), nil
}

// EncryptDeterministic seals pt with a nonce derived from HMAC(hmacKey, pt).
// Equal plaintexts give equal ciphertexts, which allows exact lookups.
func EncryptDeterministic(key, hmacKey *[KeySize]byte, pt []byte) []byte {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		// Only fails on a wrong key size, which the array type rules out.
		panic(err)
	}
	nonce := MAC(hmacKey, pt)[:aead.NonceSize()]
	out := make([]byte, len(nonce), len(nonce)+len(pt)+aead.Overhead())
	copy(out, nonce)
	return aead.Seal(out, nonce, pt, nil)
}

// Decrypt opens the output of EncryptRandom or EncryptDeterministic.
func Decrypt(key *[KeySize]byte, ct []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletEncryptionError, "init cipher")
	}
	if len(ct) < aead.NonceSize()+aead.Overhead() {
		return nil, dErrors.New(dErrors.CodeWalletEncryptionError, "ciphertext too short")
	}
	pt, err := aead.Open(nil, ct[:aead.NonceSize()], ct[aead.NonceSize():], nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletEncryptionError, "decrypt")
	}
	return pt, nil
}

// MAC is HMAC-SHA256 over the concatenated parts.
func MAC(key *[KeySize]byte, parts ...[]byte) []byte {
	h := hmac.New(sha256.New, key[:])
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
