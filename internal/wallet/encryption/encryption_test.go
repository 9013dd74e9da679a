package encryption

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/suite"

	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

type EncryptionSuite struct {
	suite.Suite
	keys *Keys
}

func TestEncryptionSuite(t *testing.T) {
	suite.Run(t, new(EncryptionSuite))
}

func (s *EncryptionSuite) SetupSuite() {
	ModerateParams = Argon2Params{Time: 1, MemoryKiB: 64, Threads: 1}
	InteractiveParams = Argon2Params{Time: 1, MemoryKiB: 32, Threads: 1}
}

func (s *EncryptionSuite) SetupTest() {
	keys, err := NewKeys()
	s.Require().NoError(err)
	s.keys = keys
}

func (s *EncryptionSuite) TestMethods() {
	s.Run("empty selects moderate", func() {
		m, err := ParseMethod("")
		s.Require().NoError(err)
		s.Equal(KDFArgon2iMod, m)
	})

	s.Run("unknown method", func() {
		_, err := ParseMethod("SCRYPT")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("ids round trip", func() {
		for _, m := range []KeyDerivationMethod{KDFArgon2iMod, KDFArgon2iInt, KDFRaw} {
			back, err := MethodFromID(m.ID())
			s.Require().NoError(err)
			s.Equal(m, back)
		}
		_, err := MethodFromID(9)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
	})
}

func (s *EncryptionSuite) TestDeriveMasterKey() {
	s.Run("argon2 is deterministic per salt", func() {
		salt, err := NewSalt(KDFArgon2iInt)
		s.Require().NoError(err)
		a, err := DeriveMasterKey(KDFArgon2iInt, "pass", salt)
		s.Require().NoError(err)
		b, err := DeriveMasterKey(KDFArgon2iInt, "pass", salt)
		s.Require().NoError(err)
		s.Equal(*a, *b)

		other, _ := NewSalt(KDFArgon2iInt)
		c, err := DeriveMasterKey(KDFArgon2iInt, "pass", other)
		s.Require().NoError(err)
		s.NotEqual(*a, *c)
	})

	s.Run("raw decodes base58", func() {
		key, err := GenerateKey(nil)
		s.Require().NoError(err)
		master, err := DeriveMasterKey(KDFRaw, key, nil)
		s.Require().NoError(err)
		raw, _ := base58.Decode(key)
		s.Equal(raw, master[:])
	})

	s.Run("raw rejects short keys", func() {
		_, err := DeriveMasterKey(KDFRaw, "abc", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("seeded generation is deterministic", func() {
		seed := []byte("00000000000000000000000000000My1")
		a, err := GenerateKey(seed)
		s.Require().NoError(err)
		b, _ := GenerateKey(seed)
		s.Equal(a, b)
		_, err = GenerateKey([]byte("short"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *EncryptionSuite) TestKeysSealing() {
	master := &[KeySize]byte{1}
	md, err := NewMetadata(s.keys, KDFRaw, nil, master)
	s.Require().NoError(err)
	raw, err := md.Marshal()
	s.Require().NoError(err)

	parsed, err := ParseMetadata(raw)
	s.Require().NoError(err)
	s.Equal(KDFRaw, parsed.KDF)

	s.Run("right key opens", func() {
		keys, err := OpenKeys(master, parsed.Keys)
		s.Require().NoError(err)
		s.Equal(*s.keys, *keys)
	})

	s.Run("wrong key is access failure", func() {
		_, err := OpenKeys(&[KeySize]byte{2}, parsed.Keys)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletAccessFailed))
	})

	s.Run("garbage metadata", func() {
		_, err := ParseMetadata([]byte(`{"version":7}`))
		s.True(dErrors.HasCode(err, dErrors.CodeWalletDecodingError))
	})
}

func (s *EncryptionSuite) TestDeterministicEncryption() {
	a := s.keys.EncryptID("cred-1")
	b := s.keys.EncryptID("cred-1")
	s.Equal(a, b)
	s.NotEqual(a, s.keys.EncryptID("cred-2"))
	s.NotEqual(a, s.keys.EncryptType("cred-1"))

	pt, err := Decrypt(&s.keys.Name, a)
	s.Require().NoError(err)
	s.Equal("cred-1", string(pt))
}

func (s *EncryptionSuite) TestRandomEncryption() {
	a, err := EncryptRandom(&s.keys.Value, []byte("v"))
	s.Require().NoError(err)
	b, err := EncryptRandom(&s.keys.Value, []byte("v"))
	s.Require().NoError(err)
	s.False(bytes.Equal(a, b))

	a[len(a)-1] ^= 1
	_, err = Decrypt(&s.keys.Value, a)
	s.True(dErrors.HasCode(err, dErrors.CodeWalletEncryptionError))
}

func (s *EncryptionSuite) TestRecordRoundTrip() {
	rec := wallet.Record{
		Type:  "cred",
		ID:    "1",
		Value: `{"a":1}`,
		Tags:  wallet.Tags{"~plain": "visible", "secret": "hidden"},
	}
	enc, err := s.keys.EncryptRecord(rec)
	s.Require().NoError(err)

	s.Run("plain tags keep cleartext values", func() {
		var plain, hidden int
		for _, t := range enc.Tags {
			if t.Plain {
				plain++
				s.Equal("visible", string(t.Value))
				s.Nil(t.HMAC)
			} else {
				hidden++
				s.NotContains(string(t.Value), "hidden")
				s.Equal(s.keys.TagValueHMAC("secret", "hidden"), t.HMAC)
			}
		}
		s.Equal(1, plain)
		s.Equal(1, hidden)
	})

	s.Run("full projection", func() {
		got, err := s.keys.DecryptRecord(enc, wallet.FullRecordOptions())
		s.Require().NoError(err)
		s.Equal(rec, got)
	})

	s.Run("id only", func() {
		got, err := s.keys.DecryptRecord(enc, wallet.RecordOptions{})
		s.Require().NoError(err)
		s.Equal(wallet.Record{ID: "1"}, got)
	})

	s.Run("other wallet keys cannot decrypt", func() {
		other, err := NewKeys()
		s.Require().NoError(err)
		_, err = other.DecryptRecord(enc, wallet.DefaultRecordOptions())
		s.True(dErrors.HasCode(err, dErrors.CodeWalletEncryptionError))
	})
}
