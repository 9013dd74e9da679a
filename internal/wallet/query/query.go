// Package query parses the wallet query language and evaluates it against
// encrypted tags.
//
// A query is a JSON object. Keys starting with "$" combine sub-queries
// ($and, $or, $not); any other key is a tag name mapped either to a string
// (equality) or to a single-operator object such as {"$gt": "5"}.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

// Op is a query node kind.
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpNot
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpLike
	OpRegex
	OpIn
)

var operators = map[string]Op{
	"$neq":   OpNeq,
	"$gt":    OpGt,
	"$gte":   OpGte,
	"$lt":    OpLt,
	"$lte":   OpLte,
	"$like":  OpLike,
	"$regex": OpRegex,
	"$in":    OpIn,
}

// Query is a parsed query tree. Leaves carry Name and either Value or
// Values; And/Or/Not carry Sub.
type Query struct {
	Op     Op
	Name   string
	Value  string
	Values []string
	Sub    []*Query
}

// All matches every record.
func All() *Query {
	return &Query{Op: OpAnd}
}

func queryError(format string, args ...any) error {
	return dErrors.Newf(dErrors.CodeWalletQueryError, format, args...)
}

// Parse decodes a query. The empty string and "{}" match everything.
func Parse(raw string) (*Query, error) {
	if strings.TrimSpace(raw) == "" {
		return All(), nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletQueryError, "query is not valid JSON")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, queryError("query must be a JSON object")
	}
	q, err := parseObject(obj)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func parseObject(obj map[string]any) (*Query, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	and := &Query{Op: OpAnd}
	for _, k := range keys {
		sub, err := parseEntry(k, obj[k])
		if err != nil {
			return nil, err
		}
		and.Sub = append(and.Sub, sub)
	}
	if len(and.Sub) == 1 {
		return and.Sub[0], nil
	}
	return and, nil
}

func parseEntry(key string, v any) (*Query, error) {
	switch key {
	case "$and", "$or":
		arr, ok := v.([]any)
		if !ok {
			return nil, queryError("%s expects an array", key)
		}
		op := OpAnd
		if key == "$or" {
			op = OpOr
		}
		node := &Query{Op: op}
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, queryError("%s items must be objects", key)
			}
			sub, err := parseObject(obj)
			if err != nil {
				return nil, err
			}
			node.Sub = append(node.Sub, sub)
		}
		return node, nil
	case "$not":
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, queryError("$not expects an object")
		}
		sub, err := parseObject(obj)
		if err != nil {
			return nil, err
		}
		return &Query{Op: OpNot, Sub: []*Query{sub}}, nil
	}
	if strings.HasPrefix(key, "$") {
		return nil, queryError("unknown operator %s", key)
	}
	return parseLeaf(key, v)
}

func parseLeaf(name string, v any) (*Query, error) {
	if s, ok := scalar(v); ok {
		return &Query{Op: OpEq, Name: name, Value: s}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return nil, queryError("tag %q needs a value or a single operator", name)
	}
	for k, arg := range obj {
		op, ok := operators[k]
		if !ok {
			return nil, queryError("unknown operator %s for tag %q", k, name)
		}
		if op == OpIn {
			arr, ok := arg.([]any)
			if !ok {
				return nil, queryError("$in for tag %q expects an array", name)
			}
			leaf := &Query{Op: OpIn, Name: name, Values: make([]string, 0, len(arr))}
			for _, item := range arr {
				s, ok := scalar(item)
				if !ok {
					return nil, queryError("$in for tag %q expects scalar values", name)
				}
				leaf.Values = append(leaf.Values, s)
			}
			return leaf, nil
		}
		s, ok := scalar(arg)
		if !ok {
			return nil, queryError("%s for tag %q expects a scalar", k, name)
		}
		return &Query{Op: op, Name: name, Value: s}, nil
	}
	return nil, queryError("tag %q needs a value", name)
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// Validate checks that every leaf uses an operator its tag mode supports:
// encrypted tags only allow equality and $in.
func (q *Query) Validate() error {
	switch q.Op {
	case OpAnd, OpOr, OpNot:
		for _, s := range q.Sub {
			if err := s.Validate(); err != nil {
				return err
			}
		}
		return nil
	case OpEq, OpIn:
		return nil
	}
	if !wallet.IsPlainTag(q.Name) {
		return queryError("tag %q is encrypted and only supports equality and $in", q.Name)
	}
	if q.Op == OpRegex {
		if _, err := regexp.Compile(q.Value); err != nil {
			return dErrors.Wrap(err, dErrors.CodeWalletQueryError, fmt.Sprintf("invalid $regex for tag %q", q.Name))
		}
	}
	return nil
}

// TagNames lists the tag names referenced by q.
func (q *Query) TagNames() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*Query)
	walk = func(n *Query) {
		if n.Name != "" && !seen[n.Name] {
			seen[n.Name] = true
			out = append(out, n.Name)
		}
		for _, s := range n.Sub {
			walk(s)
		}
	}
	walk(q)
	return out
}

// likePattern converts a SQL LIKE pattern (% and _) to an anchored regexp.
func likePattern(p string) (*regexp.Regexp, error) {
	var b bytes.Buffer
	b.WriteString("^")
	for _, r := range p {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
