package stateproof

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
)

// Node hashes are SHA-256 over the node's RLP encoding. Child references
// shorter than a hash are embedded in their parent.

var errProof = errors.New("proof does not match root")

func nodeHash(enc []byte) []byte {
	h := sha256.Sum256(enc)
	return h[:]
}

func toNibbles(key []byte) []byte {
	out := make([]byte, 0, 2*len(key))
	for _, b := range key {
		out = append(out, b>>4, b&0x0f)
	}
	return out
}

// hexPrefix packs a nibble path with its leaf flag.
func hexPrefix(nibbles []byte, leaf bool) []byte {
	var flag byte
	if leaf {
		flag = 2
	}
	var out []byte
	if len(nibbles)%2 == 1 {
		out = append(out, (flag+1)<<4|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flag<<4)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func fromHexPrefix(b []byte) (nibbles []byte, leaf bool, err error) {
	if len(b) == 0 {
		return nil, false, errRLP
	}
	flag := b[0] >> 4
	if flag > 3 {
		return nil, false, errRLP
	}
	leaf = flag >= 2
	if flag%2 == 1 {
		nibbles = append(nibbles, b[0]&0x0f)
	}
	return append(nibbles, toNibbles(b[1:])...), leaf, nil
}

// proofDB indexes the proof's nodes by hash.
type proofDB map[string]item

func newProofDB(nodes [][]byte) (proofDB, error) {
	db := make(proofDB, len(nodes))
	for _, enc := range nodes {
		n, err := decode(enc)
		if err != nil {
			return nil, err
		}
		db[hex.EncodeToString(nodeHash(enc))] = n
	}
	return db, nil
}

func (db proofDB) resolve(ref item) (item, bool) {
	if ref.isList {
		return ref, true
	}
	if len(ref.str) == 0 {
		return item{}, false
	}
	n, ok := db[hex.EncodeToString(ref.str)]
	return n, ok
}

// lookup walks the trie from root along key. It returns nil when the proof
// shows the key is absent.
func lookup(root []byte, nodes [][]byte, key []byte) ([]byte, error) {
	db, err := newProofDB(nodes)
	if err != nil {
		return nil, err
	}
	node, ok := db.resolve(str(root))
	if !ok {
		return nil, errProof
	}
	path := toNibbles(key)
	for {
		if !node.isList {
			if len(node.str) == 0 {
				return nil, nil
			}
			return nil, errRLP
		}
		switch len(node.list) {
		case 17:
			if len(path) == 0 {
				v := node.list[16]
				if len(v.str) == 0 {
					return nil, nil
				}
				return v.str, nil
			}
			child := node.list[path[0]]
			if !child.isList && len(child.str) == 0 {
				return nil, nil
			}
			if node, ok = db.resolve(child); !ok {
				return nil, errProof
			}
			path = path[1:]
		case 2:
			nibbles, leaf, err := fromHexPrefix(node.list[0].str)
			if err != nil {
				return nil, err
			}
			if leaf {
				if bytes.Equal(nibbles, path) {
					return node.list[1].str, nil
				}
				return nil, nil
			}
			if !bytes.HasPrefix(path, nibbles) {
				return nil, nil
			}
			if node, ok = db.resolve(node.list[1]); !ok {
				return nil, errProof
			}
			path = path[len(nibbles):]
		default:
			return nil, errRLP
		}
	}
}

// Build constructs the trie holding kvs and returns its root hash together
// with the encoding of every node, which is a valid proof for each key.
func Build(kvs map[string][]byte) (root []byte, nodes [][]byte) {
	keys := make([]string, 0, len(kvs))
	for k := range kvs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{path: toNibbles([]byte(k)), value: kvs[k]}
	}
	b := &builder{}
	if len(entries) == 0 {
		enc := encode(str(nil))
		return nodeHash(enc), [][]byte{enc}
	}
	enc := encode(b.node(entries, 0))
	b.nodes = append(b.nodes, enc)
	return nodeHash(enc), b.nodes
}

type entry struct {
	path  []byte
	value []byte
}

type builder struct {
	nodes [][]byte
}

func (b *builder) ref(n item) item {
	enc := encode(n)
	if len(enc) < 32 {
		return n
	}
	b.nodes = append(b.nodes, enc)
	return str(nodeHash(enc))
}

func (b *builder) node(entries []entry, depth int) item {
	if len(entries) == 1 {
		return list(str(hexPrefix(entries[0].path[depth:], true)), str(entries[0].value))
	}
	common := len(entries[0].path) - depth
	for _, e := range entries[1:] {
		n := 0
		for n < common && depth+n < len(e.path) && e.path[depth+n] == entries[0].path[depth+n] {
			n++
		}
		common = n
	}
	if common > 0 {
		ext := entries[0].path[depth : depth+common]
		return list(str(hexPrefix(ext, false)), b.ref(b.node(entries, depth+common)))
	}
	slots := make([]item, 17)
	for i := range slots {
		slots[i] = str(nil)
	}
	for nibble := byte(0); nibble < 16; nibble++ {
		var group []entry
		for _, e := range entries {
			if len(e.path) > depth && e.path[depth] == nibble {
				group = append(group, e)
			}
		}
		if len(group) > 0 {
			slots[nibble] = b.ref(b.node(group, depth+1))
		}
	}
	for _, e := range entries {
		if len(e.path) == depth {
			slots[16] = str(e.value)
		}
	}
	return list(slots...)
}
