package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mr-tron/base58"

	"indy/internal/command"
	"indy/internal/did"
	dErrors "indy/pkg/domain-errors"
)

// SignatureInput returns the bytes a request signature covers: the
// canonical form of its operation.
func SignatureInput(requestJSON string) ([]byte, error) {
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return nil, err
	}
	return Canonical(req["operation"])
}

func (s *Service) signOperation(ctx context.Context, h command.WalletHandle, submitter string, req map[string]any) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	verkey, err := s.keys.KeyForLocalDid(ctx, h, submitter)
	if err != nil {
		return "", err
	}
	msg, err := Canonical(req["operation"])
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "serialise operation")
	}
	sig, err := s.signer.Sign(ctx, h, verkey, msg)
	if err != nil {
		return "", err
	}
	return base58.Encode(sig), nil
}

// SignRequest signs request with the key of submitter and stores the
// result in "signature".
func (s *Service) SignRequest(ctx context.Context, h command.WalletHandle, submitter, requestJSON string) (string, error) {
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return "", err
	}
	sig, err := s.signOperation(ctx, h, submitter, req)
	if err != nil {
		return "", err
	}
	if _, ok := req["identifier"]; !ok {
		req["identifier"] = did.Unqualify(submitter)
	}
	req["signature"] = sig
	return encodeRequest(req)
}

// MultiSignRequest adds the signature of submitter to "signatures". An
// existing single signature is moved there under the request identifier.
func (s *Service) MultiSignRequest(ctx context.Context, h command.WalletHandle, submitter, requestJSON string) (string, error) {
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return "", err
	}
	sig, err := s.signOperation(ctx, h, submitter, req)
	if err != nil {
		return "", err
	}
	sigs, _ := req["signatures"].(map[string]any)
	if sigs == nil {
		sigs = map[string]any{}
	}
	if single, ok := req["signature"].(string); ok {
		if identifier, ok := req["identifier"].(string); ok {
			sigs[identifier] = single
		}
		delete(req, "signature")
	}
	sigs[did.Unqualify(submitter)] = sig
	req["signatures"] = sigs
	return encodeRequest(req)
}

// SignAndSubmitRequest signs request and submits it through pool.
func (s *Service) SignAndSubmitRequest(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, submitter, requestJSON string) (string, error) {
	signed, err := s.SignRequest(ctx, h, submitter, requestJSON)
	if err != nil {
		return "", err
	}
	return s.SubmitRequest(ctx, pool, signed)
}

// SubmitRequest submits a prepared request.
func (s *Service) SubmitRequest(ctx context.Context, pool command.PoolHandle, requestJSON string) (string, error) {
	if s.pool == nil {
		return "", dErrors.New(dErrors.CodePoolLedgerInvalidPoolHandle, "no pool available")
	}
	if _, err := decodeRequest(requestJSON); err != nil {
		return "", err
	}
	return s.pool.Submit(ctx, pool, requestJSON)
}

// SubmitAction sends a POOL_RESTART or GET_VALIDATOR_INFO request to the
// nodes listed in nodesJSON (every node when empty) and returns their
// replies keyed by alias. A non-positive timeout uses the pool default.
func (s *Service) SubmitAction(ctx context.Context, pool command.PoolHandle, requestJSON, nodesJSON string, timeoutSec int32) (string, error) {
	if s.pool == nil {
		return "", dErrors.New(dErrors.CodePoolLedgerInvalidPoolHandle, "no pool available")
	}
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return "", err
	}
	txnType, _ := req["operation"].(map[string]any)["type"].(string)
	if !actionTxns[txnType] {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "transaction type %q is not an action", txnType)
	}
	var nodes []string
	if nodesJSON != "" && nodesJSON != "null" {
		if err := json.Unmarshal([]byte(nodesJSON), &nodes); err != nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "nodes must be a JSON list of aliases")
		}
	}
	var timeout time.Duration
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	replies, err := s.pool.SubmitAction(ctx, pool, requestJSON, nodes, timeout)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(replies)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode replies")
	}
	return string(out), nil
}
