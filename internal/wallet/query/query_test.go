package query

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	"indy/internal/wallet/storage"
	dErrors "indy/pkg/domain-errors"
)

type QuerySuite struct {
	suite.Suite
	keys *encryption.Keys
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	keys, err := encryption.NewKeys()
	s.Require().NoError(err)
	s.keys = keys
}

func (s *QuerySuite) tags(t wallet.Tags) []storage.Tag {
	enc, err := s.keys.EncryptTags(t)
	s.Require().NoError(err)
	return enc
}

func (s *QuerySuite) compile(raw string) *Compiled {
	q, err := Parse(raw)
	s.Require().NoError(err)
	c, err := Compile(q, s.keys)
	s.Require().NoError(err)
	return c
}

func (s *QuerySuite) TestParse() {
	s.Run("empty matches all", func() {
		for _, raw := range []string{"", "{}"} {
			q, err := Parse(raw)
			s.Require().NoError(err)
			s.Equal(OpAnd, q.Op)
			s.Empty(q.Sub)
		}
	})

	s.Run("implicit and over keys", func() {
		q, err := Parse(`{"a":"1","~b":{"$gt":2}}`)
		s.Require().NoError(err)
		s.Equal(OpAnd, q.Op)
		s.Require().Len(q.Sub, 2)
		s.Equal(&Query{Op: OpEq, Name: "a", Value: "1"}, q.Sub[0])
		s.Equal(&Query{Op: OpGt, Name: "~b", Value: "2"}, q.Sub[1])
	})

	s.Run("nested nodes", func() {
		q, err := Parse(`{"$or":[{"a":"1"},{"$not":{"b":{"$in":["x","y"]}}}]}`)
		s.Require().NoError(err)
		s.Equal(OpOr, q.Op)
		s.Equal(OpNot, q.Sub[1].Op)
		s.Equal([]string{"x", "y"}, q.Sub[1].Sub[0].Values)
		s.ElementsMatch([]string{"a", "b"}, q.TagNames())
	})

	s.Run("malformed queries", func() {
		for _, raw := range []string{
			`[]`,
			`{"$and":{}}`,
			`{"$foo":[]}`,
			`{"a":{"$gt":1,"$lt":2}}`,
			`{"a":{"$in":"x"}}`,
			`{"a":true}`,
			`{"~a":{"$regex":"("}}`,
			`not json`,
		} {
			_, err := Parse(raw)
			s.True(dErrors.HasCode(err, dErrors.CodeWalletQueryError), raw)
		}
	})

	s.Run("encrypted tags only support equality and in", func() {
		for _, raw := range []string{
			`{"a":{"$neq":"1"}}`,
			`{"a":{"$gt":"1"}}`,
			`{"a":{"$like":"x%"}}`,
			`{"a":{"$regex":"x"}}`,
		} {
			_, err := Parse(raw)
			s.True(dErrors.HasCode(err, dErrors.CodeWalletQueryError), raw)
		}
	})
}

func (s *QuerySuite) TestMatchPlain() {
	tags := s.tags(wallet.Tags{"~age": "25", "~name": "alice"})

	cases := []struct {
		query string
		want  bool
	}{
		{`{"~age":"25"}`, true},
		{`{"~age":{"$neq":"25"}}`, false},
		{`{"~age":{"$gt":"9"}}`, true},
		{`{"~age":{"$gte":25}}`, true},
		{`{"~age":{"$lt":100}}`, true},
		{`{"~age":{"$lte":"24"}}`, false},
		{`{"~name":{"$like":"al%"}}`, true},
		{`{"~name":{"$like":"a_ice"}}`, true},
		{`{"~name":{"$like":"li%"}}`, false},
		{`{"~name":{"$regex":"^a.*e$"}}`, true},
		{`{"~name":{"$in":["bob","alice"]}}`, true},
		{`{"~missing":{"$neq":"x"}}`, false},
		{`{"$not":{"~missing":"x"}}`, true},
		{`{"~name":{"$gt":"ali"}}`, true},
	}
	for _, tc := range cases {
		s.Equal(tc.want, s.compile(tc.query).Match(tags), tc.query)
	}
}

func (s *QuerySuite) TestMatchEncrypted() {
	tags := s.tags(wallet.Tags{"issuer": "DidA"})

	s.True(s.compile(`{"issuer":"DidA"}`).Match(tags))
	s.False(s.compile(`{"issuer":"DidB"}`).Match(tags))
	s.True(s.compile(`{"issuer":{"$in":["DidB","DidA"]}}`).Match(tags))

	s.Run("plain and encrypted names do not collide", func() {
		s.False(s.compile(`{"~issuer":"DidA"}`).Match(tags))
	})
}

func (s *QuerySuite) TestCompoundSearch() {
	records := []wallet.Tags{
		{"~age": "18", "issuer": "DidA"},
		{"~age": "25", "issuer": "DidA"},
		{"~age": "40", "issuer": "DidB"},
	}
	c := s.compile(`{"$and":[{"~age":{"$gte":20}},{"issuer":"DidA"}]}`)

	var matched []string
	for _, r := range records {
		if c.Match(s.tags(r)) {
			matched = append(matched, r["~age"])
		}
	}
	s.Equal([]string{"25"}, matched)
}

func (s *QuerySuite) TestMatchTags() {
	tags := wallet.Tags{"schema_name": "gvt", "issuer_did": "DidA", "~seq": "7"}
	match := func(raw string) bool {
		q, err := Parse(raw)
		s.Require().NoError(err)
		ok, err := MatchTags(q, tags)
		s.Require().NoError(err)
		return ok
	}

	s.True(match(`{"$or":[{"schema_name":"xyz"},{"issuer_did":"DidA"}]}`))
	s.False(match(`{"schema_name":"gvt","issuer_did":"DidB"}`))
	s.True(match(`{"~seq":{"$gt":"5"}}`))
	s.True(match(``))
}
