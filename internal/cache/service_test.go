package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"indy/internal/cache"
	"indy/internal/cache/mocks"
	"indy/internal/command"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

const (
	schemaID  = testutil.IssuerDID + ":2:gvt:1.0"
	credDefID = testutil.IssuerDID + ":3:CL:1:tag"
	pool      = command.PoolHandle(7)
)

type CacheSuite struct {
	suite.Suite
	ctx    context.Context
	now    time.Time
	ledger *mocks.MockLedger
	h      command.WalletHandle
	svc    *cache.Service
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Unix(1_700_000_000, 0)
	s.ledger = mocks.NewMockLedger(gomock.NewController(s.T()))

	wallets := walletservice.New(s.T().TempDir())
	config := testutil.WalletConfig()
	s.Require().NoError(wallets.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := wallets.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.h = h

	s.svc = cache.NewService(wallets, s.ledger, cache.WithClock(func() time.Time { return s.now }))
}

func (s *CacheSuite) expectSchemaFetch(value string) {
	s.ledger.EXPECT().GetSchema(gomock.Any(), pool, testutil.MyDID, schemaID).Return("reply", nil)
	s.ledger.EXPECT().ParseGetSchemaResponse("reply").Return(schemaID, value, nil)
}

func (s *CacheSuite) options(raw string) cache.GetOptions {
	opts, err := cache.ParseGetOptions(raw)
	s.Require().NoError(err)
	return opts
}

func (s *CacheSuite) TestGetSchema() {
	s.Run("miss goes to the ledger and caches", func() {
		s.expectSchemaFetch(`{"id":"v1"}`)
		value, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(""))
		s.Require().NoError(err)
		s.Equal(`{"id":"v1"}`, value)

		value, err = s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(""))
		s.Require().NoError(err)
		s.Equal(`{"id":"v1"}`, value)
	})

	s.Run("stale entry is refreshed", func() {
		s.now = s.now.Add(time.Minute)
		s.expectSchemaFetch(`{"id":"v2"}`)
		value, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(`{"minFresh":30}`))
		s.Require().NoError(err)
		s.Equal(`{"id":"v2"}`, value)

		value, err = s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(`{"minFresh":30}`))
		s.Require().NoError(err)
		s.Equal(`{"id":"v2"}`, value)
	})

	s.Run("noCache always asks the ledger", func() {
		s.expectSchemaFetch(`{"id":"v3"}`)
		value, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(`{"noCache":true,"noStore":true}`))
		s.Require().NoError(err)
		s.Equal(`{"id":"v3"}`, value)

		value, _, err = s.svc.CachedSchema(s.ctx, s.h, schemaID, s.options(""))
		s.Require().NoError(err)
		s.Equal(`{"id":"v2"}`, value, "noStore keeps the old entry")
	})

	s.Run("noUpdate fails on a miss", func() {
		_, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, testutil.IssuerDID+":2:other:1.0", s.options(`{"noUpdate":true}`))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})

	s.Run("ledger errors pass through", func() {
		s.ledger.EXPECT().GetSchema(gomock.Any(), pool, testutil.MyDID, schemaID).
			Return("", dErrors.New(dErrors.CodePoolLedgerTimeout, "timeout"))
		_, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(`{"noCache":true}`))
		s.True(dErrors.HasCode(err, dErrors.CodePoolLedgerTimeout))
	})

	s.Run("invalid options", func() {
		_, err := cache.ParseGetOptions(`{"minFresh":-5}`)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
		_, err = cache.ParseGetOptions(`not json`)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *CacheSuite) TestTwoPhase() {
	_, ok, err := s.svc.CachedCredDef(s.ctx, s.h, credDefID, s.options(""))
	s.Require().NoError(err)
	s.False(ok)

	s.ledger.EXPECT().GetCredDef(gomock.Any(), pool, "", credDefID).Return("reply", nil)
	reply, err := s.svc.FetchCredDef(s.ctx, pool, "", credDefID)
	s.Require().NoError(err)

	s.ledger.EXPECT().ParseGetCredDefResponse(reply).Return(credDefID, `{"id":"cd"}`, nil)
	value, err := s.svc.GetCredDefContinue(s.ctx, s.h, credDefID, reply, s.options(""))
	s.Require().NoError(err)
	s.Equal(`{"id":"cd"}`, value)

	value, ok, err = s.svc.CachedCredDef(s.ctx, s.h, credDefID, s.options(""))
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(`{"id":"cd"}`, value)
}

func (s *CacheSuite) TestPurge() {
	s.expectSchemaFetch(`{"id":"old"}`)
	_, err := s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, schemaID, s.options(""))
	s.Require().NoError(err)

	s.now = s.now.Add(time.Hour)
	newer := testutil.IssuerDID + ":2:newer:1.0"
	s.ledger.EXPECT().GetSchema(gomock.Any(), pool, testutil.MyDID, newer).Return("reply2", nil)
	s.ledger.EXPECT().ParseGetSchemaResponse("reply2").Return(newer, `{"id":"new"}`, nil)
	_, err = s.svc.GetSchema(s.ctx, pool, s.h, testutil.MyDID, newer, s.options(""))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.PurgeSchemaCache(s.ctx, s.h, cache.PurgeOptions{MaxAge: 60}))
	_, ok, err := s.svc.CachedSchema(s.ctx, s.h, schemaID, s.options(""))
	s.Require().NoError(err)
	s.False(ok, "an hour old entry is purged")
	_, ok, err = s.svc.CachedSchema(s.ctx, s.h, newer, s.options(""))
	s.Require().NoError(err)
	s.True(ok)

	opts, err := cache.ParsePurgeOptions("")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.PurgeSchemaCache(s.ctx, s.h, opts))
	_, ok, err = s.svc.CachedSchema(s.ctx, s.h, newer, s.options(""))
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.svc.PurgeCredDefCache(s.ctx, s.h, opts))
}
