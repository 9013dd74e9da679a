package pool

import "encoding/json"

// Catchup message types exchanged with nodes.
const (
	OpLedgerStatus = "LEDGER_STATUS"
	OpCatchupReq   = "CATCHUP_REQ"
	OpCatchupRep   = "CATCHUP_REP"
)

// poolLedgerID identifies the pool ledger in catchup messages.
const poolLedgerID = 0

// LedgerStatus asks for, and reports, the size and root of a ledger.
type LedgerStatus struct {
	Op              string `json:"op"`
	LedgerID        int    `json:"ledgerId"`
	TxnSeqNo        int    `json:"txnSeqNo"`
	MerkleRoot      string `json:"merkleRoot"`
	ProtocolVersion int    `json:"protocolVersion"`
}

// CatchupReq requests the transactions SeqNoStart..SeqNoEnd inclusive.
type CatchupReq struct {
	Op          string `json:"op"`
	LedgerID    int    `json:"ledgerId"`
	SeqNoStart  int    `json:"seqNoStart"`
	SeqNoEnd    int    `json:"seqNoEnd"`
	CatchupTill int    `json:"catchupTill"`
}

// CatchupRep carries transactions keyed by their decimal sequence number.
type CatchupRep struct {
	Op       string                     `json:"op"`
	LedgerID int                        `json:"ledgerId"`
	Txns     map[string]json.RawMessage `json:"txns"`
}

type replyHead struct {
	Op     string          `json:"op"`
	Result json.RawMessage `json:"result"`
}
