package pool

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"indy/internal/command"
	"indy/internal/ledger"
	"indy/internal/ledger/stateproof"
	"indy/pkg/canonical"
	dErrors "indy/pkg/domain-errors"
)

// actionNoReply is reported for nodes that did not answer an action.
const actionNoReply = "timeout"

var (
	errBreakerOpen    = errors.New("node circuit open")
	errMalformedReply = errors.New("malformed node reply")
)

var _ ledger.Pool = (*Service)(nil)

type nodeReply struct {
	node  Node
	reply []byte
	err   error
}

func requestType(request string) (string, error) {
	var r struct {
		Operation *struct {
			Type string `json:"type"`
		} `json:"operation"`
	}
	if err := json.Unmarshal([]byte(request), &r); err != nil || r.Operation == nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "request has no operation")
	}
	return r.Operation.Type, nil
}

func timeoutErr(what string) error {
	return dErrors.Newf(dErrors.CodePoolLedgerTimeout, "%s: no reply from the pool in time", what)
}

// Submit sends request to the pool of h. Reads go to a few nodes at a time
// and are accepted on a valid state proof or f+1 equal replies. Writes go
// to every node and need f+1 equal replies.
func (s *Service) Submit(ctx context.Context, h command.PoolHandle, request string) (string, error) {
	p, err := s.get(h)
	if err != nil {
		return "", err
	}
	p.inflight.Add(1)
	defer p.inflight.Done()

	txnType, err := requestType(request)
	if err != nil {
		return "", err
	}
	v := p.current()
	kind, submit := "write", s.write
	if ledger.IsRead(txnType) {
		kind, submit = "read", s.read
	}
	reply, err := submit(ctx, p, v, []byte(request))
	s.countRequest(kind, err)
	return reply, err
}

func (s *Service) countRequest(kind string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case dErrors.HasCode(err, dErrors.CodePoolLedgerTimeout):
		outcome = "timeout"
	case dErrors.HasCode(err, dErrors.CodeLedgerNoConsensus):
		outcome = "no_consensus"
	case err != nil:
		outcome = "error"
	}
	s.metrics.IncrementLedgerRequests(kind, outcome)
}

// readOrder lists preordered nodes first, then the rest shuffled.
func readOrder(p *openPool, v *view) []Node {
	var first, rest []Node
	for _, n := range v.nodes {
		if slices.Contains(p.preordered, n.Alias) {
			first = append(first, n)
		} else {
			rest = append(rest, n)
		}
	}
	slices.SortFunc(first, func(a, b Node) int {
		return slices.Index(p.preordered, a.Alias) - slices.Index(p.preordered, b.Alias)
	})
	rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(first, rest...)
}

func (s *Service) read(ctx context.Context, p *openPool, v *view, msg []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	order := readOrder(p, v)
	need := faulty(len(v.nodes)) + 1
	tally := map[string]int{}
	var failures, replies int
	for len(order) > 0 && failures <= s.retryBudget {
		batch := order[:min(p.readNodes, len(order))]
		order = order[len(batch):]
		for _, r := range s.fanout(ctx, v, batch, msg) {
			if r.err != nil {
				if !errors.Is(r.err, errBreakerOpen) {
					failures++
				}
				continue
			}
			replies++
			verified, err := checkRead(v, r.reply)
			if err != nil {
				if s.metrics != nil {
					s.metrics.IncrementStateProofFailures()
				}
				if v.breakers[r.node.Alias].Blacklist() {
					s.logger.WarnContext(ctx, "node blacklisted", "pool", p.name, "node", r.node.Alias, "error", err)
					if s.metrics != nil {
						s.metrics.IncrementNodesBlacklisted()
					}
				}
				failures++
				continue
			}
			if verified {
				return string(r.reply), nil
			}
			k, err := consensusKey(r.reply)
			if err != nil {
				continue
			}
			if tally[k]++; tally[k] >= need {
				return string(r.reply), nil
			}
		}
		if ctx.Err() != nil {
			return "", timeoutErr("read")
		}
	}
	if replies == 0 {
		return "", timeoutErr("read")
	}
	return "", dErrors.New(dErrors.CodeLedgerNoConsensus, "nodes did not agree on the reply")
}

// checkRead reports whether reply carries a valid state proof. An error
// means the proof is present and wrong.
func checkRead(v *view, reply []byte) (bool, error) {
	var head replyHead
	if err := json.Unmarshal(reply, &head); err != nil {
		return false, errMalformedReply
	}
	if head.Op != ledger.OpReply || v.verifier == nil || len(head.Result) == 0 || string(head.Result) == "null" {
		return false, nil
	}
	err := v.verifier.Verify(head.Result)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, stateproof.ErrNoProof):
		return false, nil
	}
	return false, err
}

func consensusKey(reply []byte) (string, error) {
	var v any
	if err := canonical.Decode(reply, &v); err != nil {
		return "", err
	}
	k, err := canonical.JSON(v)
	return string(k), err
}

func (s *Service) fanout(ctx context.Context, v *view, nodes []Node, msg []byte) []nodeReply {
	out := make([]nodeReply, len(nodes))
	var g errgroup.Group
	for i, n := range nodes {
		g.Go(func() error {
			reply, err := s.send(ctx, v, n, msg)
			out[i] = nodeReply{node: n, reply: reply, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) write(ctx context.Context, p *openPool, v *view, msg []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.extTimeout)
	defer cancel()

	results := make(chan nodeReply, len(v.nodes))
	for _, n := range v.nodes {
		go func() {
			reply, err := s.send(ctx, v, n, msg)
			results <- nodeReply{node: n, reply: reply, err: err}
		}()
	}
	need := faulty(len(v.nodes)) + 1
	tally := map[string]int{}
	replies := 0
	for range v.nodes {
		select {
		case r := <-results:
			if r.err != nil {
				continue
			}
			k, err := consensusKey(r.reply)
			if err != nil {
				continue
			}
			replies++
			if tally[k]++; tally[k] >= need {
				return string(r.reply), nil
			}
		case <-ctx.Done():
			return "", timeoutErr("write")
		}
	}
	if replies == 0 {
		return "", timeoutErr("write")
	}
	return "", dErrors.New(dErrors.CodeLedgerNoConsensus, "nodes did not agree on the reply")
}

// SubmitAction sends request to the named nodes, every node when nodes is
// empty, and returns each reply by alias. Nodes that do not answer within
// timeout are reported as "timeout".
func (s *Service) SubmitAction(ctx context.Context, h command.PoolHandle, request string, nodes []string, timeout time.Duration) (map[string]string, error) {
	p, err := s.get(h)
	if err != nil {
		return nil, err
	}
	p.inflight.Add(1)
	defer p.inflight.Done()

	v := p.current()
	targets := v.nodes
	if len(nodes) > 0 {
		targets = make([]Node, 0, len(nodes))
		for _, alias := range nodes {
			n, ok := nodeByAlias(v.nodes, alias)
			if !ok {
				return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown node %q", alias)
			}
			targets = append(targets, n)
		}
	}
	if timeout <= 0 {
		timeout = p.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := make(map[string]string, len(targets))
	for _, r := range s.fanout(ctx, v, targets, []byte(request)) {
		if r.err != nil {
			out[r.node.Alias] = actionNoReply
			continue
		}
		out[r.node.Alias] = string(r.reply)
	}
	s.countRequest("action", nil)
	return out, nil
}
