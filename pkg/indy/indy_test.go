package indy_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"indy/internal/locator"
	"indy/internal/platform/config"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/indy"
	"indy/pkg/testutil"
)

type reply struct {
	code   indy.ErrorCode
	values []any
}

type IndySuite struct {
	suite.Suite
	next indy.CommandHandle
}

func TestIndySuite(t *testing.T) {
	suite.Run(t, new(IndySuite))
}

func (s *IndySuite) SetupSuite() {
	home := s.T().TempDir()
	s.Require().True(locator.Configure(func(cfg *config.Runtime) {
		cfg.HomeDir = home
		cfg.Workers = 2
	}))
	s.Equal(indy.Success, indy.SetRuntimeConfig(`{"crypto_thread_pool_size":2}`))
}

func (s *IndySuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Equal(indy.Success, indy.Shutdown(ctx))
}

func (s *IndySuite) handle() indy.CommandHandle {
	s.next++
	return s.next
}

// call issues a command through start and waits for its callback.
func (s *IndySuite) call(start func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode) reply {
	ch := s.handle()
	done := make(chan reply, 1)
	s.Require().Equal(indy.Success, start(ch, done))
	select {
	case r := <-done:
		return r
	case <-time.After(10 * time.Second):
		s.FailNow("callback not delivered")
		return reply{}
	}
}

func (s *IndySuite) none(start func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode) indy.ErrorCode {
	return s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
		return start(ch, func(got indy.CommandHandle, code indy.ErrorCode) {
			s.Equal(ch, got)
			done <- reply{code: code}
		})
	}).code
}

func (s *IndySuite) str(start func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode) (string, indy.ErrorCode) {
	r := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
		return start(ch, func(got indy.CommandHandle, code indy.ErrorCode, v string) {
			s.Equal(ch, got)
			done <- reply{code: code, values: []any{v}}
		})
	})
	return r.values[0].(string), r.code
}

func (s *IndySuite) openWallet() (indy.WalletHandle, string) {
	config := testutil.WalletConfig()
	s.Require().Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
		return indy.CreateWallet(ch, config, testutil.WalletCredentials(), cb)
	}))
	r := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
		return indy.OpenWallet(ch, config, testutil.WalletCredentials(), func(_ indy.CommandHandle, code indy.ErrorCode, h indy.WalletHandle) {
			done <- reply{code: code, values: []any{h}}
		})
	})
	s.Require().Equal(indy.Success, r.code)
	return r.values[0].(indy.WalletHandle), config
}

func (s *IndySuite) TestSynchronousValidation() {
	noop := func(indy.CommandHandle, indy.ErrorCode) {}

	s.Equal(dErrors.CodeInvalidParam2, indy.CreateWallet(1, "", testutil.WalletCredentials(), noop))
	s.Equal(dErrors.CodeInvalidParam3, indy.CreateWallet(1, testutil.WalletConfig(), "{not json", noop))
	s.Equal(dErrors.CodeInvalidParam4, indy.CreateWallet(1, testutil.WalletConfig(), testutil.WalletCredentials(), nil))
	s.Equal(dErrors.CodeInvalidParam3, indy.KeyForLocalDid(1, 1, "", func(indy.CommandHandle, indy.ErrorCode, string) {}))
	s.Equal(dErrors.CodeInvalidParam9, indy.ProverCreateProof(1, 1, "{}", "{}", "ms", "{}", "{}", "{}", nil))
	s.Equal(dErrors.CodeInvalidParam1, indy.SetRuntimeConfig(`{"crypto_thread_pool_size":-1}`))
	s.Equal(dErrors.CodeInvalidParam6, indy.GetSchema(1, 1, 1, testutil.MyDID, "id", `{"minFresh":-3}`,
		func(indy.CommandHandle, indy.ErrorCode, string) {}))
}

func (s *IndySuite) TestWalletAndDidFlow() {
	h, config := s.openWallet()

	r := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
		return indy.CreateAndStoreMyDid(ch, h, `{"seed":"`+testutil.MySeed+`"}`, func(_ indy.CommandHandle, code indy.ErrorCode, did, vk string) {
			done <- reply{code: code, values: []any{did, vk}}
		})
	})
	s.Require().Equal(indy.Success, r.code)
	s.Equal(testutil.MyDID, r.values[0])
	s.Equal(testutil.MyVerkey, r.values[1])

	vk, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.KeyForLocalDid(ch, h, testutil.MyDID, cb)
	})
	s.Require().Equal(indy.Success, code)
	s.Equal(testutil.MyVerkey, vk)

	s.Run("sign and verify", func() {
		msg := []byte("message to sign")
		signed := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
			return indy.CryptoSign(ch, h, testutil.MyVerkey, msg, func(_ indy.CommandHandle, code indy.ErrorCode, sig []byte) {
				done <- reply{code: code, values: []any{sig}}
			})
		})
		s.Require().Equal(indy.Success, signed.code)
		verified := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
			return indy.CryptoVerify(ch, testutil.MyVerkey, msg, signed.values[0].([]byte), func(_ indy.CommandHandle, code indy.ErrorCode, ok bool) {
				done <- reply{code: code, values: []any{ok}}
			})
		})
		s.Equal(indy.Success, verified.code)
		s.Equal(true, verified.values[0])
	})

	s.Run("pairwise", func() {
		s.Require().Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
			return indy.StoreTheirDid(ch, h, `{"did":"`+testutil.TrusteeDID+`","verkey":"`+testutil.TrusteeVerkey+`"}`, cb)
		}))
		s.Require().Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
			return indy.CreatePairwise(ch, h, testutil.TrusteeDID, testutil.MyDID, "friends", cb)
		}))
		out, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
			return indy.GetPairwise(ch, h, testutil.TrusteeDID, cb)
		})
		s.Require().Equal(indy.Success, code)
		s.JSONEq(`{"my_did":"`+testutil.MyDID+`","metadata":"friends"}`, out)
	})

	s.Run("records", func() {
		s.Require().Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
			return indy.AddWalletRecord(ch, h, "note", "n1", "hello", `{"color":"blue"}`, cb)
		}))
		out, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
			return indy.GetWalletRecord(ch, h, "note", "n1", `{"retrieveTags":true}`, cb)
		})
		s.Require().Equal(indy.Success, code)
		var rec map[string]any
		s.Require().NoError(json.Unmarshal([]byte(out), &rec))
		s.Equal("hello", rec["value"])

		_, code = s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
			return indy.GetWalletRecord(ch, h, "note", "missing", "", cb)
		})
		s.Equal(dErrors.CodeWalletItemNotFound, code)
	})

	s.Require().Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
		return indy.CloseWallet(ch, h, cb)
	}))
	s.Equal(dErrors.CodeWalletInvalidHandle, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
		return indy.CloseWallet(ch, h, cb)
	}))
	s.Equal(indy.Success, s.none(func(ch indy.CommandHandle, cb indy.Callback) indy.ErrorCode {
		return indy.DeleteWallet(ch, config, testutil.WalletCredentials(), cb)
	}))
}

func (s *IndySuite) TestOpenFailureReturnsInvalidHandle() {
	r := s.call(func(ch indy.CommandHandle, done chan<- reply) indy.ErrorCode {
		return indy.OpenWallet(ch, testutil.WalletConfig(), testutil.WalletCredentials(), func(_ indy.CommandHandle, code indy.ErrorCode, h indy.WalletHandle) {
			done <- reply{code: code, values: []any{h}}
		})
	})
	s.Equal(dErrors.CodeWalletNotFound, r.code)
	s.Equal(indy.WalletHandle(indy.InvalidHandle), r.values[0])
}

func (s *IndySuite) TestStatelessCommands() {
	nonce, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.GenerateNonce(ch, cb)
	})
	s.Require().Equal(indy.Success, code)
	s.Regexp(`^[0-9]+$`, nonce)

	abbr, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.AbbreviateVerkey(ch, testutil.MyDID, testutil.MyVerkey, cb)
	})
	s.Require().Equal(indy.Success, code)
	s.Equal(testutil.MyAbbreviatedVerkey, abbr)

	req, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.BuildGetNymRequest(ch, "", testutil.MyDID, cb)
	})
	s.Require().Equal(indy.Success, code)
	s.Contains(req, `"dest":"`+testutil.MyDID+`"`)

	_, code = s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.ListPools(ch, cb)
	})
	s.Equal(indy.Success, code)
}

func (s *IndySuite) TestCollectMetricsCountsCommands() {
	_, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.GenerateNonce(ch, cb)
	})
	s.Require().Equal(indy.Success, code)

	out, code := s.str(func(ch indy.CommandHandle, cb indy.StringCallback) indy.ErrorCode {
		return indy.CollectMetrics(ch, cb)
	})
	s.Require().Equal(indy.Success, code)

	var doc map[string][]struct {
		Tags  map[string]string `json:"tags"`
		Value uint64            `json:"value"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &doc))
	var executed uint64
	for _, v := range doc["commands_count"] {
		if v.Tags["subcommand"] == "generate_nonce" && v.Tags["stage"] == "executed" {
			executed = v.Value
		}
	}
	s.GreaterOrEqual(executed, uint64(1))
	s.Contains(doc, "wallet_count")
}
