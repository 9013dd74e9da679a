package stateproof

import (
	"maps"
	"sync"
	"sync/atomic"

	dErrors "indy/pkg/domain-errors"
)

// Parser turns the "result" object of a custom transaction's reply into a
// JSON list of ParsedProof.
type Parser func(replyResult string) (string, error)

// Registry maps transaction types to host-provided parsers. Lookups read
// an immutable snapshot; registration swaps in a new one.
type Registry struct {
	mu      sync.Mutex
	parsers atomic.Pointer[map[string]Parser]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[string]Parser{}
	r.parsers.Store(&empty)
	return r
}

// Register installs p for txnType, replacing any earlier parser.
func (r *Registry) Register(txnType string, p Parser) error {
	if txnType == "" || p == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "transaction type and parser are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.parsers.Load()
	next := maps.Clone(cur)
	next[txnType] = p
	r.parsers.Store(&next)
	return nil
}

// Lookup returns the parser registered for txnType.
func (r *Registry) Lookup(txnType string) (Parser, bool) {
	p, ok := (*r.parsers.Load())[txnType]
	return p, ok
}
