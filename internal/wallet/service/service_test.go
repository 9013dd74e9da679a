package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/command"
	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *Service
	config string
	h      command.WalletHandle
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupSuite() {
	encryption.ModerateParams = encryption.Argon2Params{Time: 1, MemoryKiB: 64, Threads: 1}
	encryption.InteractiveParams = encryption.Argon2Params{Time: 1, MemoryKiB: 32, Threads: 1}
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = New(s.T().TempDir())
	s.config = testutil.WalletConfig()
	s.Require().NoError(s.svc.Create(s.ctx, s.config, testutil.WalletCredentials()))
	h, err := s.svc.Open(s.ctx, s.config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.h = h
}

func (s *ServiceSuite) TestLifecycle() {
	s.Run("create twice", func() {
		err := s.svc.Create(s.ctx, s.config, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAlreadyExists))
	})

	s.Run("open twice", func() {
		_, err := s.svc.Open(s.ctx, s.config, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAlreadyOpened))
	})

	s.Run("open missing", func() {
		_, err := s.svc.Open(s.ctx, testutil.WalletConfig(), testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletNotFound))
	})

	s.Run("unknown storage type", func() {
		err := s.svc.Create(s.ctx, `{"id":"x","storage_type":"nope"}`, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletUnknownType))
	})

	s.Run("malformed config", func() {
		err := s.svc.Create(s.ctx, `{"storage_type":"inmem"}`, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
		err = s.svc.Create(s.ctx, testutil.WalletConfig(), `{"key":"k","key_derivation_method":"MD5"}`)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("close and reopen", func() {
		s.Require().NoError(s.svc.Close(s.ctx, s.h))
		s.True(dErrors.HasCode(s.svc.Close(s.ctx, s.h), dErrors.CodeWalletInvalidHandle))
		h, err := s.svc.Open(s.ctx, s.config, testutil.WalletCredentials())
		s.Require().NoError(err)
		s.NotEqual(s.h, h)
		s.h = h
	})
}

func (s *ServiceSuite) TestPassphraseWallets() {
	config := testutil.WalletConfig()
	creds := `{"key":"secret","key_derivation_method":"ARGON2I_INT"}`
	s.Require().NoError(s.svc.Create(s.ctx, config, creds))

	s.Run("wrong key", func() {
		_, err := s.svc.Open(s.ctx, config, `{"key":"other","key_derivation_method":"ARGON2I_INT"}`)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))
		s.Equal(0, s.svc.Stats().PendingForOpen)
	})

	s.Run("rekey", func() {
		h, err := s.svc.Open(s.ctx, config, `{"key":"secret","rekey":"fresh","rekey_derivation_method":"ARGON2I_MOD"}`)
		s.Require().NoError(err)
		s.Require().NoError(s.svc.AddRecord(s.ctx, h, "t", "1", "kept", nil))
		s.Require().NoError(s.svc.Close(s.ctx, h))

		_, err = s.svc.Open(s.ctx, config, creds)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))

		h, err = s.svc.Open(s.ctx, config, `{"key":"fresh"}`)
		s.Require().NoError(err)
		rec, err := s.svc.GetRecord(s.ctx, h, "t", "1", wallet.DefaultRecordOptions())
		s.Require().NoError(err)
		s.Equal("kept", rec.Value)
		s.Require().NoError(s.svc.Close(s.ctx, h))
	})
}

func (s *ServiceSuite) TestDelete() {
	s.Run("opened wallet", func() {
		err := s.svc.Delete(s.ctx, s.config, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Require().NoError(s.svc.Close(s.ctx, s.h))

	s.Run("wrong key", func() {
		other, _ := encryption.GenerateKey(nil)
		err := s.svc.Delete(s.ctx, s.config, `{"key":"`+other+`","key_derivation_method":"RAW"}`)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))
	})

	s.Run("success", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, s.config, testutil.WalletCredentials()))
		_, err := s.svc.Open(s.ctx, s.config, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletNotFound))
	})
}

func (s *ServiceSuite) TestConcurrentOpen() {
	s.Require().NoError(s.svc.Close(s.ctx, s.h))

	handles := make([]command.WalletHandle, 8)
	result := testutil.RunConcurrent(8, func(i int) error {
		h, err := s.svc.Open(s.ctx, s.config, testutil.WalletCredentials())
		handles[i] = h
		return err
	})
	s.EqualValues(1, result.Successes)
	s.EqualValues(7, result.Conflicts)
	for _, h := range handles {
		if h != command.WalletHandle(command.InvalidHandle) {
			s.h = h
		}
	}
	s.Equal(1, s.svc.Stats().Opened)
}

func (s *ServiceSuite) TestRecords() {
	tags := wallet.Tags{"~plain": "1", "enc": "x"}
	s.Require().NoError(s.svc.AddRecord(s.ctx, s.h, "cred", "a", "v1", tags))

	s.Run("round trip", func() {
		rec, err := s.svc.GetRecord(s.ctx, s.h, "cred", "a", wallet.FullRecordOptions())
		s.Require().NoError(err)
		s.Equal(&wallet.Record{Type: "cred", ID: "a", Value: "v1", Tags: tags}, rec)
	})

	s.Run("duplicate", func() {
		err := s.svc.AddRecord(s.ctx, s.h, "cred", "a", "v2", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists))
	})

	s.Run("same id other type", func() {
		s.NoError(s.svc.AddRecord(s.ctx, s.h, "other", "a", "v", nil))
	})

	s.Run("update value is idempotent", func() {
		for i := 0; i < 2; i++ {
			s.Require().NoError(s.svc.UpdateRecordValue(s.ctx, s.h, "cred", "a", "v3"))
		}
		rec, err := s.svc.GetRecord(s.ctx, s.h, "cred", "a", wallet.DefaultRecordOptions())
		s.Require().NoError(err)
		s.Equal("v3", rec.Value)
		s.Empty(rec.Type)
		s.Nil(rec.Tags)
	})

	s.Run("tag operations", func() {
		s.Require().NoError(s.svc.AddRecordTags(s.ctx, s.h, "cred", "a", wallet.Tags{"new": "n", "enc": "y"}))
		s.Require().NoError(s.svc.DeleteRecordTags(s.ctx, s.h, "cred", "a", []string{"~plain"}))
		rec, err := s.svc.GetRecord(s.ctx, s.h, "cred", "a", wallet.FullRecordOptions())
		s.Require().NoError(err)
		s.Equal(wallet.Tags{"enc": "y", "new": "n"}, rec.Tags)

		s.Require().NoError(s.svc.UpdateRecordTags(s.ctx, s.h, "cred", "a", wallet.Tags{"only": "1"}))
		rec, err = s.svc.GetRecord(s.ctx, s.h, "cred", "a", wallet.FullRecordOptions())
		s.Require().NoError(err)
		s.Equal(wallet.Tags{"only": "1"}, rec.Tags)
	})

	s.Run("missing record", func() {
		_, err := s.svc.GetRecord(s.ctx, s.h, "cred", "zz", wallet.DefaultRecordOptions())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
		err = s.svc.UpdateRecordValue(s.ctx, s.h, "cred", "zz", "v")
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})

	s.Run("empty type", func() {
		err := s.svc.AddRecord(s.ctx, s.h, "", "a", "v", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("invalid handle", func() {
		err := s.svc.AddRecord(s.ctx, 424242, "cred", "b", "v", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletInvalidHandle))
	})

	s.Run("delete", func() {
		s.Require().NoError(s.svc.DeleteRecord(s.ctx, s.h, "cred", "a"))
		err := s.svc.DeleteRecord(s.ctx, s.h, "cred", "a")
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})
}

func (s *ServiceSuite) addCredentials() {
	for _, r := range []struct{ id, age, issuer string }{
		{"c1", "18", "DidA"},
		{"c2", "25", "DidA"},
		{"c3", "40", "DidB"},
	} {
		s.Require().NoError(s.svc.AddRecord(s.ctx, s.h, "cred", r.id, "v-"+r.id, wallet.Tags{"~age": r.age, "issuer": r.issuer}))
	}
}

func (s *ServiceSuite) TestCompoundSearch() {
	s.addCredentials()
	recs, err := wallet.SearchAll(s.ctx, s.svc, s.h, "cred",
		`{"$and":[{"~age":{"$gte":20}},{"issuer":"DidA"}]}`, wallet.DefaultSearchOptions())
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("c2", recs[0].ID)
	s.Equal("v-c2", recs[0].Value)
}

func (s *ServiceSuite) TestSearchHandles() {
	s.addCredentials()
	opts := wallet.SearchOptions{RetrieveRecords: true, RetrieveTotalCount: true}
	sh, err := s.svc.OpenSearch(s.ctx, s.h, "cred", `{"issuer":{"$in":["DidA","DidB"]}}`, opts)
	s.Require().NoError(err)

	s.Run("zero count is an empty page", func() {
		page, err := s.svc.FetchNext(s.ctx, s.h, sh, 0)
		s.Require().NoError(err)
		s.Empty(page.Records)
		s.Require().NotNil(page.TotalCount)
		s.Equal(3, *page.TotalCount)
	})

	s.Run("pages until exhausted", func() {
		page, err := s.svc.FetchNext(s.ctx, s.h, sh, 2)
		s.Require().NoError(err)
		s.Len(page.Records, 2)
		s.Empty(page.Records[0].Value)

		page, err = s.svc.FetchNext(s.ctx, s.h, sh, 2)
		s.Require().NoError(err)
		s.Len(page.Records, 1)

		_, err = s.svc.FetchNext(s.ctx, s.h, sh, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletNoRecords))
	})

	s.Run("snapshot ignores later writes", func() {
		sh2, err := s.svc.OpenSearch(s.ctx, s.h, "cred", "{}", wallet.DefaultSearchOptions())
		s.Require().NoError(err)
		s.Require().NoError(s.svc.AddRecord(s.ctx, s.h, "cred", "c4", "v", nil))
		page, err := s.svc.FetchNext(s.ctx, s.h, sh2, 10)
		s.Require().NoError(err)
		s.Len(page.Records, 3)
		s.Require().NoError(s.svc.CloseSearch(sh2))
	})

	s.Run("closing the wallet releases searches", func() {
		s.Equal(1, s.svc.OpenSearches())
		s.Require().NoError(s.svc.Close(s.ctx, s.h))
		s.Equal(0, s.svc.OpenSearches())
		s.True(dErrors.HasCode(s.svc.CloseSearch(sh), dErrors.CodeWalletInvalidHandle))
	})
}

func (s *ServiceSuite) TestSearchRejectsBadQueries() {
	_, err := s.svc.OpenSearch(s.ctx, s.h, "cred", `{"issuer":{"$gt":"1"}}`, wallet.DefaultSearchOptions())
	s.True(dErrors.HasCode(err, dErrors.CodeWalletQueryError))
}

func (s *ServiceSuite) TestExportImport() {
	s.addCredentials()
	s.Require().NoError(s.svc.AddRecord(s.ctx, s.h, wallet.TypeDid, "did", "{}", nil))
	path := filepath.Join(s.T().TempDir(), "backup", "wallet.bak")
	exportCfg := `{"path":"` + path + `","key":"backup","key_derivation_method":"ARGON2I_INT"}`
	importCfg := `{"path":"` + path + `","key":"backup"}`

	s.Require().NoError(s.svc.Export(s.ctx, s.h, exportCfg))

	s.Run("existing file is not overwritten", func() {
		err := s.svc.Export(s.ctx, s.h, exportCfg)
		s.True(dErrors.HasCode(err, dErrors.CodeIOError))
	})

	s.Run("import restores every record", func() {
		config := testutil.WalletConfig()
		s.Require().NoError(s.svc.Import(s.ctx, config, testutil.WalletCredentials(), importCfg))
		h, err := s.svc.Open(s.ctx, config, testutil.WalletCredentials())
		s.Require().NoError(err)
		defer s.svc.Close(s.ctx, h)

		opts := wallet.SearchOptions{RetrieveRecords: true, RetrieveType: true, RetrieveValue: true, RetrieveTags: true}
		want, err := wallet.SearchAll(s.ctx, s.svc, s.h, "cred", "{}", opts)
		s.Require().NoError(err)
		got, err := wallet.SearchAll(s.ctx, s.svc, h, "cred", "{}", opts)
		s.Require().NoError(err)
		s.ElementsMatch(want, got)

		did, err := s.svc.GetRecord(s.ctx, h, wallet.TypeDid, "did", wallet.DefaultRecordOptions())
		s.Require().NoError(err)
		s.Equal("{}", did.Value)
	})

	s.Run("existing wallet", func() {
		err := s.svc.Import(s.ctx, s.config, testutil.WalletCredentials(), importCfg)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAlreadyExists))
	})

	s.Run("wrong export key", func() {
		err := s.svc.Import(s.ctx, testutil.WalletConfig(), testutil.WalletCredentials(), `{"path":"`+path+`","key":"nope"}`)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))
	})

	s.Run("tampered export leaves no wallet", func() {
		data, err := os.ReadFile(path)
		s.Require().NoError(err)
		data[len(data)-1] ^= 1
		tampered := filepath.Join(s.T().TempDir(), "tampered.bak")
		s.Require().NoError(os.WriteFile(tampered, data, 0o600))

		config := testutil.WalletConfig()
		err = s.svc.Import(s.ctx, config, testutil.WalletCredentials(), `{"path":"`+tampered+`","key":"backup"}`)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
		_, err = s.svc.Open(s.ctx, config, testutil.WalletCredentials())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletNotFound))
		s.Equal(0, s.svc.Stats().PendingForImport)
	})
}

func (s *ServiceSuite) TestPebbleBackedWallet() {
	config := `{"id":"durable"}`
	s.Require().NoError(s.svc.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := s.svc.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.Require().NoError(s.svc.AddRecord(s.ctx, h, "t", "1", "persisted", wallet.Tags{"~k": "v"}))
	s.Require().NoError(s.svc.Close(s.ctx, h))

	h, err = s.svc.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	rec, err := s.svc.GetRecord(s.ctx, h, "t", "1", wallet.DefaultRecordOptions())
	s.Require().NoError(err)
	s.Equal("persisted", rec.Value)
	s.Require().NoError(s.svc.Close(s.ctx, h))
	s.Require().NoError(s.svc.Delete(s.ctx, config, testutil.WalletCredentials()))
}

func (s *ServiceSuite) TestGenerateKey() {
	key, err := s.svc.GenerateKey(`{"seed":"` + testutil.MySeed + `"}`)
	s.Require().NoError(err)
	again, err := s.svc.GenerateKey(`{"seed":"` + testutil.MySeed + `"}`)
	s.Require().NoError(err)
	s.Equal(key, again)

	random, err := s.svc.GenerateKey("")
	s.Require().NoError(err)
	s.NotEqual(key, random)

	config := testutil.WalletConfig()
	creds := `{"key":"` + key + `","key_derivation_method":"RAW"}`
	s.Require().NoError(s.svc.Create(s.ctx, config, creds))
	h, err := s.svc.Open(s.ctx, config, creds)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Close(s.ctx, h))
}

func (s *ServiceSuite) TestRegisterStorage() {
	err := s.svc.RegisterStorage("inmem", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeWalletTypeAlreadyRegistered))
}
