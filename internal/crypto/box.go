package crypto

import (
	"crypto/rand"
	"encoding/json"
	"io"

	"golang.org/x/crypto/nacl/box"

	dErrors "indy/pkg/domain-errors"
)

// authEnvelope is the anoncrypted carrier of an authcrypted message.
type authEnvelope struct {
	Sender string `json:"sender"`
	Nonce  []byte `json:"nonce"`
	Msg    []byte `json:"msg"`
}

// AnonCrypt seals msg for the holder of theirVerkey. The sender stays
// anonymous: an ephemeral X25519 key is used and the nonce is the blake2b
// hash of both public keys.
func AnonCrypt(theirVerkey string, msg []byte) ([]byte, error) {
	pub, err := DecodeVerkey(theirVerkey)
	if err != nil {
		return nil, err
	}
	xpub, err := publicToX25519(pub)
	if err != nil {
		return nil, err
	}
	out, err := box.SealAnonymous(nil, msg, xpub, rand.Reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "seal")
	}
	return out, nil
}

// AnonDecrypt opens a sealed message addressed to k.
func AnonDecrypt(k *Key, data []byte) ([]byte, error) {
	pub, priv, err := k.x25519()
	if err != nil {
		return nil, err
	}
	out, ok := box.OpenAnonymous(nil, data, pub, priv)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "cannot decrypt message")
	}
	return out, nil
}

// AuthCrypt encrypts msg from k to theirVerkey so the recipient learns and
// can authenticate the sender's verkey.
func AuthCrypt(k *Key, theirVerkey string, msg []byte) ([]byte, error) {
	_, priv, err := k.x25519()
	if err != nil {
		return nil, err
	}
	theirPub, err := DecodeVerkey(theirVerkey)
	if err != nil {
		return nil, err
	}
	theirX, err := publicToX25519(theirPub)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "nonce")
	}
	env, err := json.Marshal(authEnvelope{
		Sender: k.Verkey,
		Nonce:  nonce[:],
		Msg:    box.Seal(nil, msg, &nonce, theirX, priv),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "encode envelope")
	}
	return AnonCrypt(theirVerkey, env)
}

// AuthDecrypt reverses AuthCrypt and returns the sender verkey.
func AuthDecrypt(k *Key, data []byte) (string, []byte, error) {
	raw, err := AnonDecrypt(k, data)
	if err != nil {
		return "", nil, err
	}
	var env authEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Nonce) != 24 {
		return "", nil, dErrors.New(dErrors.CodeInvalidStructure, "malformed authcrypt envelope")
	}
	senderPub, err := DecodeVerkey(env.Sender)
	if err != nil {
		return "", nil, err
	}
	senderX, err := publicToX25519(senderPub)
	if err != nil {
		return "", nil, err
	}
	_, priv, err := k.x25519()
	if err != nil {
		return "", nil, err
	}
	var nonce [24]byte
	copy(nonce[:], env.Nonce)
	msg, ok := box.Open(nil, env.Msg, &nonce, senderX, priv)
	if !ok {
		return "", nil, dErrors.New(dErrors.CodeInvalidStructure, "cannot authenticate sender")
	}
	return env.Sender, msg, nil
}
