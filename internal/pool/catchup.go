package pool

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	dErrors "indy/pkg/domain-errors"
)

// send delivers msg to n unless its breaker is open and records the
// outcome on the breaker.
func (s *Service) send(ctx context.Context, v *view, n Node, msg []byte) ([]byte, error) {
	b := v.breakers[n.Alias]
	if b != nil && !b.Allow() {
		return nil, errBreakerOpen
	}
	reply, err := s.transport.Send(ctx, n.Address, msg)
	if b != nil {
		if err != nil && ctx.Err() == nil {
			if change := b.RecordFailure(); change.Opened {
				s.logger.WarnContext(ctx, "node circuit opened", "node", n.Alias)
			}
		} else if err == nil {
			if change := b.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "node circuit closed", "node", n.Alias)
			}
		}
	}
	return reply, err
}

// catchup brings the pool ledger of v up to the size and root at least
// f+1 nodes agree on and returns the resulting view.
func (s *Service) catchup(ctx context.Context, p *openPool, v *view) (*view, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	localRoot, err := LedgerRoot(v.txns)
	if err != nil {
		return nil, err
	}
	statuses := s.ledgerStatuses(ctx, v, localRoot)
	target, sources, ok := agreedStatus(statuses, faulty(len(v.nodes))+1)
	if !ok {
		if ctx.Err() != nil {
			return nil, dErrors.New(dErrors.CodePoolLedgerTimeout, "timed out waiting for ledger status")
		}
		return nil, dErrors.New(dErrors.CodePoolLedgerTimeout, "pool did not agree on the ledger state")
	}
	switch {
	case target.TxnSeqNo < len(v.txns):
		s.logger.WarnContext(ctx, "pool reports a shorter ledger than cached", "pool", p.name,
			"pool_size", target.TxnSeqNo, "local_size", len(v.txns))
		return v, nil
	case target.TxnSeqNo == len(v.txns):
		if target.MerkleRoot != localRoot {
			return nil, dErrors.New(dErrors.CodeInvalidState, "cached pool ledger diverges from the pool")
		}
		return v, nil
	}

	for _, alias := range sources {
		n, _ := nodeByAlias(v.nodes, alias)
		fetched, err := s.fetch(ctx, v, n, len(v.txns)+1, target.TxnSeqNo)
		if err != nil {
			s.logger.DebugContext(ctx, "catchup from node failed", "node", alias, "error", err)
			continue
		}
		txns := append(slices.Clone(v.txns), fetched...)
		root, err := LedgerRoot(txns)
		if err != nil || root != target.MerkleRoot {
			s.logger.WarnContext(ctx, "node served transactions not matching the agreed root", "node", alias)
			continue
		}
		nodes, err := NodesFromTxns(txns, s.ProtocolVersion())
		if err != nil {
			return nil, err
		}
		if err := writeSnapshot(snapshotPath(s.dir, p.name), txns); err != nil {
			s.logger.WarnContext(ctx, "persist pool snapshot", "pool", p.name, "error", err)
		}
		s.logger.InfoContext(ctx, "pool ledger caught up", "pool", p.name, "from", len(v.txns), "to", len(txns))
		return s.newView(txns, nodes, v), nil
	}
	if ctx.Err() != nil {
		return nil, dErrors.New(dErrors.CodePoolLedgerTimeout, "timed out during catchup")
	}
	return nil, dErrors.New(dErrors.CodeLedgerNoConsensus, "no node served the agreed pool ledger")
}

func (s *Service) ledgerStatuses(ctx context.Context, v *view, localRoot string) map[string]LedgerStatus {
	msg, _ := json.Marshal(LedgerStatus{
		Op:              OpLedgerStatus,
		LedgerID:        poolLedgerID,
		TxnSeqNo:        len(v.txns),
		MerkleRoot:      localRoot,
		ProtocolVersion: s.ProtocolVersion(),
	})
	results := make([]*LedgerStatus, len(v.nodes))
	var g errgroup.Group
	for i, n := range v.nodes {
		g.Go(func() error {
			reply, err := s.send(ctx, v, n, msg)
			if err != nil {
				return nil
			}
			var st LedgerStatus
			if json.Unmarshal(reply, &st) != nil || st.Op != OpLedgerStatus || st.LedgerID != poolLedgerID {
				return nil
			}
			results[i] = &st
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]LedgerStatus, len(results))
	for i, st := range results {
		if st != nil {
			out[v.nodes[i].Alias] = *st
		}
	}
	return out
}

// agreedStatus returns the ⟨size, root⟩ reported by at least quorum nodes
// and the aliases that reported it.
func agreedStatus(statuses map[string]LedgerStatus, quorum int) (LedgerStatus, []string, bool) {
	type key struct {
		size int
		root string
	}
	groups := map[key][]string{}
	for alias, st := range statuses {
		k := key{st.TxnSeqNo, st.MerkleRoot}
		groups[k] = append(groups[k], alias)
	}
	var best key
	var sources []string
	for k, aliases := range groups {
		if len(aliases) >= quorum && len(aliases) > len(sources) {
			best, sources = k, aliases
		}
	}
	if sources == nil {
		return LedgerStatus{}, nil, false
	}
	slices.Sort(sources)
	return LedgerStatus{Op: OpLedgerStatus, TxnSeqNo: best.size, MerkleRoot: best.root}, sources, true
}

func (s *Service) fetch(ctx context.Context, v *view, n Node, start, end int) ([]json.RawMessage, error) {
	msg, _ := json.Marshal(CatchupReq{
		Op:          OpCatchupReq,
		LedgerID:    poolLedgerID,
		SeqNoStart:  start,
		SeqNoEnd:    end,
		CatchupTill: end,
	})
	reply, err := s.send(ctx, v, n, msg)
	if err != nil {
		return nil, err
	}
	var rep CatchupRep
	if err := json.Unmarshal(reply, &rep); err != nil || rep.Op != OpCatchupRep {
		return nil, errMalformedReply
	}
	txns := make([]json.RawMessage, 0, end-start+1)
	for seqNo := start; seqNo <= end; seqNo++ {
		txn, ok := rep.Txns[strconv.Itoa(seqNo)]
		if !ok {
			return nil, errMalformedReply
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func nodeByAlias(nodes []Node, alias string) (Node, bool) {
	for _, n := range nodes {
		if n.Alias == alias {
			return n, true
		}
	}
	return Node{}, false
}
