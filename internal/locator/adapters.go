package locator

import (
	"context"
	"encoding/json"

	"indy/internal/cache"
	"indy/internal/command"
	"indy/internal/did"
	"indy/internal/ledger"
	dErrors "indy/pkg/domain-errors"
)

// ledgerLookups answers the ledger reads the DID and cache services fall
// back to.
type ledgerLookups struct {
	ledger *ledger.Service
}

var (
	_ did.Ledger   = (*ledgerLookups)(nil)
	_ cache.Ledger = (*ledgerLookups)(nil)
)

func (a *ledgerLookups) submit(ctx context.Context, pool command.PoolHandle, request string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return a.ledger.SubmitRequest(ctx, pool, request)
}

func (a *ledgerLookups) GetNym(ctx context.Context, pool command.PoolHandle, _ command.WalletHandle, target string) (*did.Did, error) {
	req, err := a.ledger.BuildGetNymRequest("", target)
	resp, err := a.submit(ctx, pool, req, err)
	if err != nil {
		return nil, err
	}
	nym, err := a.ledger.ParseGetNym(resp)
	if err != nil {
		return nil, err
	}
	if nym.Verkey == nil {
		return nil, dErrors.Newf(dErrors.CodeLedgerNotFound, "nym %s has no verkey", target)
	}
	return &did.Did{Did: nym.Did, Verkey: *nym.Verkey}, nil
}

func (a *ledgerLookups) GetEndpoint(ctx context.Context, pool command.PoolHandle, _ command.WalletHandle, target string) (*did.Endpoint, error) {
	raw := "endpoint"
	req, err := a.ledger.BuildGetAttribRequest("", target, &raw, nil, nil)
	resp, err := a.submit(ctx, pool, req, err)
	if err != nil {
		return nil, err
	}
	data, err := a.ledger.ParseGetAttrib(resp)
	if err != nil {
		return nil, err
	}
	var attr struct {
		Endpoint *did.Endpoint `json:"endpoint"`
	}
	if err := json.Unmarshal([]byte(data), &attr); err != nil || attr.Endpoint == nil || attr.Endpoint.Address == "" {
		return nil, dErrors.Newf(dErrors.CodeLedgerNotFound, "%s has no endpoint attribute", target)
	}
	return attr.Endpoint, nil
}

func (a *ledgerLookups) GetSchema(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error) {
	req, err := a.ledger.BuildGetSchemaRequest(submitterDID, id)
	return a.submit(ctx, pool, req, err)
}

func (a *ledgerLookups) GetCredDef(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error) {
	req, err := a.ledger.BuildGetCredDefRequest(submitterDID, id)
	return a.submit(ctx, pool, req, err)
}

func (a *ledgerLookups) ParseGetSchemaResponse(response string) (string, string, error) {
	return a.ledger.ParseGetSchemaResponse(response)
}

func (a *ledgerLookups) ParseGetCredDefResponse(response string) (string, string, error) {
	return a.ledger.ParseGetCredDefResponse(response)
}
