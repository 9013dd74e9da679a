package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"

	dErrors "indy/pkg/domain-errors"
)

const (
	packEnc       = "xchacha20poly1305_ietf"
	packTyp       = "JWM/1.0"
	algAuthcrypt  = "Authcrypt"
	algAnoncrypt  = "Anoncrypt"
	tagSize       = chacha20poly1305.Overhead
	boxNonceBytes = 24
)

var b64 = base64.RawURLEncoding

// PackedMessage is the JWE-like envelope produced by Pack.
type PackedMessage struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type protectedHeader struct {
	Enc        string      `json:"enc"`
	Typ        string      `json:"typ"`
	Alg        string      `json:"alg"`
	Recipients []recipient `json:"recipients"`
}

type recipient struct {
	EncryptedKey string          `json:"encrypted_key"`
	Header       recipientHeader `json:"header"`
}

type recipientHeader struct {
	Kid    string `json:"kid"`
	Sender string `json:"sender,omitempty"`
	IV     string `json:"iv,omitempty"`
}

// UnpackedMessage is the result of Unpack.
type UnpackedMessage struct {
	Message         string `json:"message"`
	RecipientVerkey string `json:"recipient_verkey"`
	SenderVerkey    string `json:"sender_verkey,omitempty"`
}

// KeyLookup finds a local key by verkey. It returns a WalletItemNotFound
// error for keys the wallet does not hold.
type KeyLookup func(verkey string) (*Key, error)

// Pack encrypts msg for every receiver. With a nil sender the message is
// anoncrypted; otherwise each content key is authcrypted from sender.
func Pack(msg []byte, receivers []string, sender *Key) ([]byte, error) {
	if len(receivers) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "no receivers")
	}
	cek := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "content key")
	}

	hdr := protectedHeader{Enc: packEnc, Typ: packTyp, Alg: algAnoncrypt}
	if sender != nil {
		hdr.Alg = algAuthcrypt
	}
	for _, vk := range receivers {
		r, err := wrapKey(cek, vk, sender)
		if err != nil {
			return nil, err
		}
		hdr.Recipients = append(hdr.Recipients, r)
	}
	rawHdr, err := json.Marshal(hdr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "encode header")
	}
	protected := b64.EncodeToString(rawHdr)

	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "content cipher")
	}
	iv := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "iv")
	}
	sealed := aead.Seal(nil, iv, msg, []byte(protected))
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return json.Marshal(PackedMessage{
		Protected:  protected,
		IV:         b64.EncodeToString(iv),
		Ciphertext: b64.EncodeToString(ct),
		Tag:        b64.EncodeToString(tag),
	})
}

func wrapKey(cek []byte, theirVerkey string, sender *Key) (recipient, error) {
	if sender == nil {
		enc, err := AnonCrypt(theirVerkey, cek)
		if err != nil {
			return recipient{}, err
		}
		return recipient{EncryptedKey: b64.EncodeToString(enc), Header: recipientHeader{Kid: theirVerkey}}, nil
	}

	theirPub, err := DecodeVerkey(theirVerkey)
	if err != nil {
		return recipient{}, err
	}
	theirX, err := publicToX25519(theirPub)
	if err != nil {
		return recipient{}, err
	}
	_, priv, err := sender.x25519()
	if err != nil {
		return recipient{}, err
	}
	var nonce [boxNonceBytes]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return recipient{}, dErrors.Wrap(err, dErrors.CodeInvalidState, "nonce")
	}
	encSender, err := AnonCrypt(theirVerkey, []byte(sender.Verkey))
	if err != nil {
		return recipient{}, err
	}
	return recipient{
		EncryptedKey: b64.EncodeToString(box.Seal(nil, cek, &nonce, theirX, priv)),
		Header: recipientHeader{
			Kid:    theirVerkey,
			Sender: b64.EncodeToString(encSender),
			IV:     b64.EncodeToString(nonce[:]),
		},
	}, nil
}

// Unpack decrypts a packed message with the first recipient key the
// wallet holds.
func Unpack(data []byte, lookup KeyLookup) (*UnpackedMessage, error) {
	var pm PackedMessage
	if err := json.Unmarshal(data, &pm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed packed message")
	}
	rawHdr, err := b64.DecodeString(pm.Protected)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed protected header")
	}
	var hdr protectedHeader
	if err := json.Unmarshal(rawHdr, &hdr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed protected header")
	}
	if hdr.Alg != algAuthcrypt && hdr.Alg != algAnoncrypt {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unsupported alg %q", hdr.Alg)
	}

	for _, r := range hdr.Recipients {
		key, err := lookup(r.Header.Kid)
		if dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cek, sender, err := unwrapKey(key, hdr.Alg, r)
		if err != nil {
			return nil, err
		}
		msg, err := openContent(cek, pm)
		if err != nil {
			return nil, err
		}
		return &UnpackedMessage{Message: string(msg), RecipientVerkey: key.Verkey, SenderVerkey: sender}, nil
	}
	return nil, dErrors.New(dErrors.CodeWalletItemNotFound, "no recipient key found in wallet")
}

func unwrapKey(k *Key, alg string, r recipient) ([]byte, string, error) {
	encKey, err := b64.DecodeString(r.EncryptedKey)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed encrypted_key")
	}
	if alg == algAnoncrypt {
		cek, err := AnonDecrypt(k, encKey)
		return cek, "", err
	}

	encSender, err := b64.DecodeString(r.Header.Sender)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed sender")
	}
	senderVk, err := AnonDecrypt(k, encSender)
	if err != nil {
		return nil, "", err
	}
	senderPub, err := DecodeVerkey(string(senderVk))
	if err != nil {
		return nil, "", err
	}
	senderX, err := publicToX25519(senderPub)
	if err != nil {
		return nil, "", err
	}
	iv, err := b64.DecodeString(r.Header.IV)
	if err != nil || len(iv) != boxNonceBytes {
		return nil, "", dErrors.New(dErrors.CodeInvalidStructure, "malformed iv")
	}
	var nonce [boxNonceBytes]byte
	copy(nonce[:], iv)
	_, priv, err := k.x25519()
	if err != nil {
		return nil, "", err
	}
	cek, ok := box.Open(nil, encKey, &nonce, senderX, priv)
	if !ok {
		return nil, "", dErrors.New(dErrors.CodeInvalidStructure, "cannot decrypt content key")
	}
	return cek, string(senderVk), nil
}

func openContent(cek []byte, pm PackedMessage) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "content key")
	}
	iv, err1 := b64.DecodeString(pm.IV)
	ct, err2 := b64.DecodeString(pm.Ciphertext)
	tag, err3 := b64.DecodeString(pm.Tag)
	if err1 != nil || err2 != nil || err3 != nil || len(iv) != aead.NonceSize() {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "malformed packed message")
	}
	msg, err := aead.Open(nil, iv, append(ct, tag...), []byte(pm.Protected))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "cannot decrypt message")
	}
	return msg, nil
}
