package crypto

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/command"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

type KeyServiceSuite struct {
	suite.Suite
	ctx     context.Context
	wallets *walletservice.Service
	h       command.WalletHandle
	svc     *Service
}

func TestKeyServiceSuite(t *testing.T) {
	suite.Run(t, new(KeyServiceSuite))
}

func (s *KeyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.wallets = walletservice.New(s.T().TempDir())
	config := testutil.WalletConfig()
	s.Require().NoError(s.wallets.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := s.wallets.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.h = h
	s.svc = NewService(s.wallets)
}

func (s *KeyServiceSuite) TestCreateAndLoad() {
	vk, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{Seed: testutil.MySeed})
	s.Require().NoError(err)
	s.Equal(testutil.MyVerkey, vk)

	key, err := s.svc.Key(s.ctx, s.h, vk)
	s.Require().NoError(err)
	s.Equal(vk, key.Verkey)

	s.Run("duplicate key", func() {
		_, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{Seed: testutil.MySeed})
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists))
	})

	s.Run("unknown crypto type", func() {
		_, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{CryptoType: "secp256k1"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownCryptoType))
	})

	s.Run("missing key", func() {
		_, err := s.svc.Key(s.ctx, s.h, testutil.TrusteeVerkey)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})
}

func (s *KeyServiceSuite) TestMetadata() {
	vk, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{})
	s.Require().NoError(err)

	_, err = s.svc.GetKeyMetadata(s.ctx, s.h, vk)
	s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))

	s.Require().NoError(s.svc.SetKeyMetadata(s.ctx, s.h, vk, "first"))
	s.Require().NoError(s.svc.SetKeyMetadata(s.ctx, s.h, vk, "second"))
	md, err := s.svc.GetKeyMetadata(s.ctx, s.h, vk)
	s.Require().NoError(err)
	s.Equal("second", md)
}

func (s *KeyServiceSuite) TestSignAndCrypt() {
	signer, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{Seed: testutil.TrusteeSeed})
	s.Require().NoError(err)
	recipient, err := s.svc.CreateKey(s.ctx, s.h, KeyInfo{})
	s.Require().NoError(err)
	msg := []byte("hello")

	s.Run("sign with a wallet key", func() {
		sig, err := s.svc.Sign(s.ctx, s.h, signer, msg)
		s.Require().NoError(err)
		ok, err := Verify(signer, msg, sig)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("authcrypt between wallet keys", func() {
		ct, err := s.svc.AuthCrypt(s.ctx, s.h, signer, recipient, msg)
		s.Require().NoError(err)
		sender, pt, err := s.svc.AuthDecrypt(s.ctx, s.h, recipient, ct)
		s.Require().NoError(err)
		s.Equal(signer, sender)
		s.Equal(msg, pt)
	})

	s.Run("anoncrypt to a wallet key", func() {
		ct, err := AnonCrypt(recipient, msg)
		s.Require().NoError(err)
		pt, err := s.svc.AnonDecrypt(s.ctx, s.h, recipient, ct)
		s.Require().NoError(err)
		s.Equal(msg, pt)
	})

	s.Run("pack and unpack", func() {
		receivers, _ := json.Marshal([]string{recipient})
		packed, err := s.svc.PackMessage(s.ctx, s.h, msg, string(receivers), signer)
		s.Require().NoError(err)
		raw, err := s.svc.UnpackMessage(s.ctx, s.h, packed)
		s.Require().NoError(err)

		var out UnpackedMessage
		s.Require().NoError(json.Unmarshal(raw, &out))
		s.Equal(string(msg), out.Message)
		s.Equal(recipient, out.RecipientVerkey)
		s.Equal(signer, out.SenderVerkey)
	})

	s.Run("pack rejects bad receivers", func() {
		_, err := s.svc.PackMessage(s.ctx, s.h, msg, `"not-an-array"`, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}
