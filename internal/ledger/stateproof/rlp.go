package stateproof

import (
	"encoding/binary"
	"errors"
)

// item is one RLP value: a byte string or a list of items.
type item struct {
	str    []byte
	list   []item
	isList bool
}

func str(b []byte) item       { return item{str: b} }
func list(items ...item) item { return item{list: items, isList: true} }

var errRLP = errors.New("malformed rlp")

func encodeLength(n int, offset byte) []byte {
	if n < 56 {
		return []byte{offset + byte(n)}
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return append([]byte{offset + 55 + byte(8-i)}, buf[i:]...)
}

func encode(it item) []byte {
	if !it.isList {
		if len(it.str) == 1 && it.str[0] < 0x80 {
			return []byte{it.str[0]}
		}
		return append(encodeLength(len(it.str), 0x80), it.str...)
	}
	var body []byte
	for _, child := range it.list {
		body = append(body, encode(child)...)
	}
	return append(encodeLength(len(body), 0xc0), body...)
}

func decode(b []byte) (item, error) {
	it, rest, err := decodeOne(b)
	if err != nil {
		return item{}, err
	}
	if len(rest) != 0 {
		return item{}, errRLP
	}
	return it, nil
}

func decodeOne(b []byte) (item, []byte, error) {
	if len(b) == 0 {
		return item{}, nil, errRLP
	}
	prefix := b[0]
	switch {
	case prefix < 0x80:
		return str(b[:1]), b[1:], nil
	case prefix < 0xb8:
		n := int(prefix - 0x80)
		if len(b) < 1+n {
			return item{}, nil, errRLP
		}
		return str(b[1 : 1+n]), b[1+n:], nil
	case prefix < 0xc0:
		body, rest, err := longPayload(b, prefix-0xb7)
		if err != nil {
			return item{}, nil, err
		}
		return str(body), rest, nil
	case prefix < 0xf8:
		n := int(prefix - 0xc0)
		if len(b) < 1+n {
			return item{}, nil, errRLP
		}
		children, err := decodeList(b[1 : 1+n])
		return list(children...), b[1+n:], err
	default:
		body, rest, err := longPayload(b, prefix-0xf7)
		if err != nil {
			return item{}, nil, err
		}
		children, err := decodeList(body)
		return list(children...), rest, err
	}
}

func longPayload(b []byte, lenOfLen byte) ([]byte, []byte, error) {
	ll := int(lenOfLen)
	if ll > 8 || len(b) < 1+ll {
		return nil, nil, errRLP
	}
	var n uint64
	for _, c := range b[1 : 1+ll] {
		n = n<<8 | uint64(c)
	}
	if n > uint64(len(b)-1-ll) {
		return nil, nil, errRLP
	}
	start := 1 + ll
	return b[start : start+int(n)], b[start+int(n):], nil
}

func decodeList(b []byte) ([]item, error) {
	var out []item
	for len(b) > 0 {
		it, rest, err := decodeOne(b)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
		b = rest
	}
	return out, nil
}
