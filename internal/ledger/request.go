// Package ledger builds, signs and parses the JSON requests exchanged with
// the validator pool.
package ledger

import (
	"sync/atomic"
	"time"

	"indy/pkg/canonical"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// Protocol versions understood by the pool.
const (
	ProtocolVersion1       = 1
	ProtocolVersion2       = 2
	DefaultProtocolVersion = ProtocolVersion2
)

// Request is the envelope every ledger request shares.
type Request struct {
	ReqID           uint64            `json:"reqId"`
	Identifier      string            `json:"identifier,omitempty"`
	Operation       map[string]any    `json:"operation"`
	ProtocolVersion int               `json:"protocolVersion"`
	Signature       string            `json:"signature,omitempty"`
	Signatures      map[string]string `json:"signatures,omitempty"`
	TAAAcceptance   *TAAAcceptance    `json:"taaAcceptance,omitempty"`
	Endorser        string            `json:"endorser,omitempty"`
}

var lastReqID atomic.Uint64

// NextReqID returns a request id greater than every id handed out before
// in this process. Ids follow wall-clock nanoseconds when the clock moves
// forward.
func NextReqID() uint64 {
	for {
		last := lastReqID.Load()
		next := max(uint64(time.Now().UnixNano()), last+1)
		if lastReqID.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Canonical serialises v the way request signatures are computed over.
func Canonical(v any) ([]byte, error) {
	return canonical.JSON(v)
}

// decodeRequest parses a request produced by a builder or by the host.
// Unknown envelope fields are preserved.
func decodeRequest(requestJSON string) (map[string]any, error) {
	var req map[string]any
	if err := canonical.Decode([]byte(requestJSON), &req); err != nil || req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "request is not a JSON object")
	}
	if _, ok := req["operation"].(map[string]any); !ok {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "request has no operation")
	}
	return req, nil
}

func encodeRequest(req any) (string, error) {
	raw, err := Canonical(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode request")
	}
	return string(raw), nil
}

// checkDid validates an optional or required submitter/target DID.
func checkDid(did string, required bool, what string) error {
	if did == "" {
		if required {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "%s is required", what)
		}
		return nil
	}
	if !validation.IsDID(did) {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "invalid %s %q", what, did)
	}
	return nil
}

// rawJSON parses a JSON document passed as a string argument.
func rawJSON(raw, what string) (any, error) {
	var v any
	if err := canonical.Decode([]byte(raw), &v); err != nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "%s is not valid JSON", what)
	}
	return v, nil
}
