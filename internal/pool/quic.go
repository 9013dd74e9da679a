package pool

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// alpnProtocol is the ALPN identifier of the client-to-node protocol.
	alpnProtocol = "indy-pool/1"

	defaultRequestTimeout = 30 * time.Second
)

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 10 * time.Second,
	}
}

// QUICTransport sends each request on its own bidirectional stream of a
// connection cached per node address.
type QUICTransport struct {
	tlsConfig  *tls.Config
	quicConfig *quic.Config
	logger     *slog.Logger

	mu    sync.Mutex
	conns map[string]*quic.Conn
}

// NewQUICTransport creates a client transport with a throwaway identity.
func NewQUICTransport(logger *slog.Logger) (*QUICTransport, error) {
	cert, err := selfSignedCertificate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QUICTransport{
		tlsConfig: &tls.Config{
			Certificates:       []tls.Certificate{cert},
			InsecureSkipVerify: true, // replies are authenticated by state proofs and consensus
			NextProtos:         []string{alpnProtocol},
		},
		quicConfig: quicConfig(),
		logger:     logger,
		conns:      map[string]*quic.Conn{},
	}, nil
}

func (t *QUICTransport) conn(ctx context.Context, address string) (*quic.Conn, error) {
	t.mu.Lock()
	c, ok := t.conns[address]
	t.mu.Unlock()
	if ok && c.Context().Err() == nil {
		return c, nil
	}
	c, err := quic.DialAddr(ctx, address, t.tlsConfig, t.quicConfig)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.conns[address]; ok && existing.Context().Err() == nil {
		_ = c.CloseWithError(0, "duplicate")
		return existing, nil
	}
	t.conns[address] = c
	return c, nil
}

// Send writes msg on a new stream and waits for the node's reply.
func (t *QUICTransport) Send(ctx context.Context, address string, msg []byte) ([]byte, error) {
	c, err := t.conn(ctx, address)
	if err != nil {
		return nil, err
	}
	stream, err := c.OpenStreamSync(ctx)
	if err != nil {
		t.Disconnect(address)
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultRequestTimeout)
	}
	_ = stream.SetDeadline(deadline)

	if err := writeFrame(stream, msg); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	reply, err := readFrame(stream)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

func (t *QUICTransport) Disconnect(address string) {
	t.mu.Lock()
	c, ok := t.conns[address]
	delete(t.conns, address)
	t.mu.Unlock()
	if ok {
		_ = c.CloseWithError(0, "disconnect")
	}
}

func (t *QUICTransport) Close() error {
	t.mu.Lock()
	conns := t.conns
	t.conns = map[string]*quic.Conn{}
	t.mu.Unlock()
	for address, c := range conns {
		if err := c.CloseWithError(0, "closed"); err != nil {
			t.logger.Debug("close node connection", "address", address, "error", err)
		}
	}
	return nil
}

// QUICServer is the node side of the QUIC transport. Local pools and tests
// use it to stand in for validator nodes.
type QUICServer struct {
	listener *quic.Listener
	handler  Handler
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// ListenQUIC serves h on address until Close.
func ListenQUIC(address string, h Handler, logger *slog.Logger) (*QUICServer, error) {
	cert, err := selfSignedCertificate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := quic.ListenAddr(address, &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpnProtocol},
	}, quicConfig())
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &QUICServer{listener: ln, handler: h, logger: logger, cancel: cancel}
	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return s, nil
}

// Addr is the address the server listens on.
func (s *QUICServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *QUICServer) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		c, err := s.listener.Accept(ctx)
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.serveConn(ctx, c)
	}
}

func (s *QUICServer) serveConn(ctx context.Context, c *quic.Conn) {
	defer s.wg.Done()
	for {
		stream, err := c.AcceptStream(ctx)
		if err != nil {
			return
		}
		go s.serveStream(ctx, stream)
	}
}

func (s *QUICServer) serveStream(ctx context.Context, stream *quic.Stream) {
	defer stream.Close()
	_ = stream.SetDeadline(time.Now().Add(defaultRequestTimeout))
	msg, err := readFrame(stream)
	if err != nil {
		s.logger.Debug("read request", "error", err)
		return
	}
	reply, err := s.handler(ctx, msg)
	if err != nil {
		s.logger.Debug("handle request", "error", err)
		return
	}
	if err := writeFrame(stream, reply); err != nil {
		s.logger.Debug("write reply", "error", err)
	}
}

// Close stops accepting and waits for open connections to drain.
func (s *QUICServer) Close() error {
	s.cancel()
	err := s.listener.Close()
	s.wg.Wait()
	return err
}
