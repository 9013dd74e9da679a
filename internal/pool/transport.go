package pool

import (
	"context"
	"errors"
	"sync"
)

//go:generate mockgen -source=transport.go -destination=mocks/mocks.go -package=mocks Transport

// Transport carries one request frame to a node and returns its reply.
type Transport interface {
	Send(ctx context.Context, address string, msg []byte) ([]byte, error)
	// Disconnect drops any connection held to address.
	Disconnect(address string)
	Close() error
}

// Handler answers one request frame on the node side.
type Handler func(ctx context.Context, msg []byte) ([]byte, error)

// ErrUnreachable is returned by the memory transport for unknown addresses.
var ErrUnreachable = errors.New("node unreachable")

// MemoryTransport routes requests to in-process handlers by address.
type MemoryTransport struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewMemoryTransport creates an empty in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{handlers: map[string]Handler{}}
}

// Register serves address with h. A nil handler removes the address.
func (t *MemoryTransport) Register(address string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h == nil {
		delete(t.handlers, address)
		return
	}
	t.handlers[address] = h
}

func (t *MemoryTransport) Send(ctx context.Context, address string, msg []byte) ([]byte, error) {
	t.mu.RLock()
	h, ok := t.handlers[address]
	t.mu.RUnlock()
	if !ok {
		return nil, ErrUnreachable
	}
	type answer struct {
		reply []byte
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		reply, err := h(ctx, msg)
		done <- answer{reply, err}
	}()
	select {
	case a := <-done:
		return a.reply, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *MemoryTransport) Disconnect(string) {}

func (t *MemoryTransport) Close() error { return nil }
