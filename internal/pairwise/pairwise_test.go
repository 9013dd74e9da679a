package pairwise

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/command"
	"indy/internal/wallet"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

type PairwiseSuite struct {
	suite.Suite
	ctx     context.Context
	wallets *walletservice.Service
	h       command.WalletHandle
	svc     *Service
}

func TestPairwiseSuite(t *testing.T) {
	suite.Run(t, new(PairwiseSuite))
}

func (s *PairwiseSuite) SetupTest() {
	s.ctx = context.Background()
	s.wallets = walletservice.New(s.T().TempDir())
	config := testutil.WalletConfig()
	s.Require().NoError(s.wallets.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := s.wallets.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.h = h
	s.svc = NewService(s.wallets)

	mine, _ := json.Marshal(map[string]string{"did": testutil.MyDID, "verkey": testutil.MyVerkey})
	theirs, _ := json.Marshal(map[string]string{"did": testutil.TrusteeDID, "verkey": testutil.TrusteeVerkey})
	s.Require().NoError(s.wallets.AddRecord(s.ctx, h, wallet.TypeDid, testutil.MyDID, string(mine), nil))
	s.Require().NoError(s.wallets.AddRecord(s.ctx, h, wallet.TypeTheirDid, testutil.TrusteeDID, string(theirs), nil))
}

func (s *PairwiseSuite) TestCreateAndGet() {
	meta := "known peer"
	s.Require().NoError(s.svc.CreatePairwise(s.ctx, s.h, testutil.TrusteeDID, testutil.MyDID, &meta))

	ok, err := s.svc.PairwiseExists(s.ctx, s.h, testutil.TrusteeDID)
	s.Require().NoError(err)
	s.True(ok)

	info, err := s.svc.GetPairwise(s.ctx, s.h, testutil.TrusteeDID)
	s.Require().NoError(err)
	raw, err := json.Marshal(info)
	s.Require().NoError(err)
	s.JSONEq(`{"my_did":"`+testutil.MyDID+`","metadata":"known peer"}`, string(raw))

	s.Run("twice", func() {
		err := s.svc.CreatePairwise(s.ctx, s.h, testutil.TrusteeDID, testutil.MyDID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists))
	})
}

func (s *PairwiseSuite) TestCreateRequiresKnownDids() {
	s.Run("their did not stored", func() {
		err := s.svc.CreatePairwise(s.ctx, s.h, testutil.IssuerDID, testutil.MyDID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})

	s.Run("my did not local", func() {
		err := s.svc.CreatePairwise(s.ctx, s.h, testutil.TrusteeDID, testutil.IssuerDID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})

	s.Run("malformed did", func() {
		err := s.svc.CreatePairwise(s.ctx, s.h, "abc", testutil.MyDID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	ok, err := s.svc.PairwiseExists(s.ctx, s.h, testutil.IssuerDID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PairwiseSuite) TestListAndMetadata() {
	list, err := s.svc.ListPairwise(s.ctx, s.h)
	s.Require().NoError(err)
	s.Empty(list)

	s.Require().NoError(s.svc.CreatePairwise(s.ctx, s.h, testutil.TrusteeDID, testutil.MyDID, nil))
	list, err = s.svc.ListPairwise(s.ctx, s.h)
	s.Require().NoError(err)
	s.Equal([]string{`{"my_did":"` + testutil.MyDID + `","their_did":"` + testutil.TrusteeDID + `"}`}, list)

	meta := "m"
	s.Require().NoError(s.svc.SetPairwiseMetadata(s.ctx, s.h, testutil.TrusteeDID, &meta))
	info, err := s.svc.GetPairwise(s.ctx, s.h, testutil.TrusteeDID)
	s.Require().NoError(err)
	s.Require().NotNil(info.Metadata)
	s.Equal("m", *info.Metadata)

	s.Require().NoError(s.svc.SetPairwiseMetadata(s.ctx, s.h, testutil.TrusteeDID, nil))
	info, err = s.svc.GetPairwise(s.ctx, s.h, testutil.TrusteeDID)
	s.Require().NoError(err)
	s.Nil(info.Metadata)

	s.Run("unknown pairwise", func() {
		err := s.svc.SetPairwiseMetadata(s.ctx, s.h, testutil.IssuerDID, &meta)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})
}

func (s *PairwiseSuite) TestRewriteMyDid() {
	s.Require().NoError(s.svc.CreatePairwise(s.ctx, s.h, testutil.TrusteeDID, testutil.MyDID, nil))
	s.Require().NoError(RewriteMyDid(s.ctx, s.wallets, s.h, testutil.MyDID, "did:sov:"+testutil.MyDID))

	info, err := s.svc.GetPairwise(s.ctx, s.h, testutil.TrusteeDID)
	s.Require().NoError(err)
	s.Equal("did:sov:"+testutil.MyDID, info.MyDid)

	recs, err := wallet.SearchAll(s.ctx, s.wallets, s.h, wallet.TypePairwise,
		`{"my_did":"did:sov:`+testutil.MyDID+`"}`, wallet.DefaultSearchOptions())
	s.Require().NoError(err)
	s.Len(recs, 1)
}
