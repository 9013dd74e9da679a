package query

import (
	"bytes"
	"regexp"
	"strconv"

	"indy/internal/wallet"
	"indy/internal/wallet/storage"
)

// Encryptor is the part of the wallet keys needed to compare a query with
// stored tags.
type Encryptor interface {
	EncryptTagName(name string) []byte
	TagValueHMAC(name, value string) []byte
}

// Compiled is a query bound to one wallet's keys.
type Compiled struct {
	op     Op
	name   []byte
	plain  bool
	value  string
	values []string
	hmacs  [][]byte
	re     *regexp.Regexp
	sub    []*Compiled
}

// Compile validates q and encrypts its tag names and equality tokens.
func Compile(q *Query, enc Encryptor) (*Compiled, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return compile(q, enc)
}

func compile(q *Query, enc Encryptor) (*Compiled, error) {
	c := &Compiled{op: q.Op, value: q.Value, values: q.Values}
	switch q.Op {
	case OpAnd, OpOr, OpNot:
		for _, s := range q.Sub {
			cs, err := compile(s, enc)
			if err != nil {
				return nil, err
			}
			c.sub = append(c.sub, cs)
		}
		return c, nil
	}

	c.name = enc.EncryptTagName(q.Name)
	c.plain = wallet.IsPlainTag(q.Name)
	if !c.plain {
		switch q.Op {
		case OpEq:
			c.hmacs = [][]byte{enc.TagValueHMAC(q.Name, q.Value)}
		case OpIn:
			for _, v := range q.Values {
				c.hmacs = append(c.hmacs, enc.TagValueHMAC(q.Name, v))
			}
		}
	}
	var err error
	switch q.Op {
	case OpRegex:
		c.re, err = regexp.Compile(q.Value)
	case OpLike:
		c.re, err = likePattern(q.Value)
	}
	if err != nil {
		return nil, queryError("invalid pattern for tag %q: %v", q.Name, err)
	}
	return c, nil
}

// Match evaluates c against the stored tags of one record. A leaf whose
// tag is absent is false.
func (c *Compiled) Match(tags []storage.Tag) bool {
	switch c.op {
	case OpAnd:
		for _, s := range c.sub {
			if !s.Match(tags) {
				return false
			}
		}
		return true
	case OpOr:
		for _, s := range c.sub {
			if s.Match(tags) {
				return true
			}
		}
		return false
	case OpNot:
		return !c.sub[0].Match(tags)
	}

	t, ok := find(tags, c.name)
	if !ok {
		return false
	}
	if !c.plain {
		for _, h := range c.hmacs {
			if bytes.Equal(h, t.HMAC) {
				return true
			}
		}
		return false
	}

	v := string(t.Value)
	switch c.op {
	case OpEq:
		return v == c.value
	case OpNeq:
		return v != c.value
	case OpGt:
		return compare(v, c.value) > 0
	case OpGte:
		return compare(v, c.value) >= 0
	case OpLt:
		return compare(v, c.value) < 0
	case OpLte:
		return compare(v, c.value) <= 0
	case OpLike, OpRegex:
		return c.re.MatchString(v)
	case OpIn:
		for _, want := range c.values {
			if v == want {
				return true
			}
		}
	}
	return false
}

func find(tags []storage.Tag, name []byte) (storage.Tag, bool) {
	for _, t := range tags {
		if bytes.Equal(t.Name, name) {
			return t, true
		}
	}
	return storage.Tag{}, false
}

// compare orders integers numerically and everything else lexically.
func compare(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type plainEncryptor struct{}

func (plainEncryptor) EncryptTagName(name string) []byte    { return []byte(name) }
func (plainEncryptor) TagValueHMAC(_, value string) []byte { return []byte(value) }

// MatchTags evaluates q against decrypted tags, for records that never
// went through a wallet.
func MatchTags(q *Query, tags wallet.Tags) (bool, error) {
	c, err := Compile(q, plainEncryptor{})
	if err != nil {
		return false, err
	}
	stored := make([]storage.Tag, 0, len(tags))
	for name, value := range tags {
		stored = append(stored, storage.Tag{
			Name:  []byte(name),
			Value: []byte(value),
			Plain: wallet.IsPlainTag(name),
			HMAC:  []byte(value),
		})
	}
	return c.Match(stored), nil
}
