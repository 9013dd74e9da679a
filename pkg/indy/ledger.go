package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/ledger"
	"indy/internal/ledger/stateproof"
	"indy/internal/locator"
)

// PoolUpgrade describes a POOL_UPGRADE request.
type PoolUpgrade = ledger.PoolUpgrade

// StateProofParser turns the result of a custom transaction reply into the
// entries its state proof covers.
type StateProofParser = stateproof.Parser

// build runs a request builder as command idx.
func build(ch CommandHandle, idx command.Index, cb StringCallback, fn func(*ledger.Service) (string, error)) ErrorCode {
	return submit(idx, func(_ context.Context, l *locator.Locator) (string, error) {
		return fn(l.Ledger)
	}, str(ch, cb))
}

// SignAndSubmitRequest signs request as submitterDid and sends it to pool.
func SignAndSubmitRequest(ch CommandHandle, pool PoolHandle, h WalletHandle, submitterDid, requestJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(4, submitterDid), j(5, requestJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandSignAndSubmitRequest, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Ledger.SignAndSubmitRequest(ctx, pool, h, submitterDid, requestJSON)
	}, str(ch, cb))
}

// SubmitRequest sends a prepared request to pool and returns the reply.
func SubmitRequest(ch CommandHandle, pool PoolHandle, requestJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, j(3, requestJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandSubmitRequest, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Ledger.SubmitRequest(ctx, pool, requestJSON)
	}, str(ch, cb))
}

// SubmitAction sends an action request to the nodes in nodesJSON, or every
// node, and collects each node's reply. timeoutSec of -1 keeps the
// default.
func SubmitAction(ch CommandHandle, pool PoolHandle, requestJSON, nodesJSON string, timeoutSec int32, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, j(3, requestJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandSubmitAction, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Ledger.SubmitAction(ctx, pool, requestJSON, nodesJSON, timeoutSec)
	}, str(ch, cb))
}

// SignRequest adds submitterDid's signature to request.
func SignRequest(ch CommandHandle, h WalletHandle, submitterDid, requestJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, submitterDid), j(4, requestJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandSignRequest, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Ledger.SignRequest(ctx, h, submitterDid, requestJSON)
	}, str(ch, cb))
}

// MultiSignRequest adds submitterDid to the signatures of request.
func MultiSignRequest(ch CommandHandle, h WalletHandle, submitterDid, requestJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, submitterDid), j(4, requestJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandMultiSignRequest, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Ledger.MultiSignRequest(ctx, h, submitterDid, requestJSON)
	}, str(ch, cb))
}

// BuildGetDdoRequest builds a GET_DDO request.
func BuildGetDdoRequest(ch CommandHandle, submitterDid, targetDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, targetDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetDdoRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetDdoRequest(submitterDid, targetDid)
	})
}

// BuildNymRequest builds a NYM request. Empty verkey, alias and role are
// left out. Role "NONE" clears the target's role.
func BuildNymRequest(ch CommandHandle, submitterDid, targetDid, verkey, alias, role string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(2, submitterDid), a(3, targetDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildNymRequest, cb, func(s *ledger.Service) (string, error) {
		r := optionalString(role)
		if role == "NONE" {
			r = new(string)
		}
		return s.BuildNymRequest(submitterDid, targetDid, optionalString(verkey), optionalString(alias), r)
	})
}

// BuildAttribRequest builds an ATTRIB request carrying exactly one of
// hash, raw and enc.
func BuildAttribRequest(ch CommandHandle, submitterDid, targetDid, hash, raw, enc string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(2, submitterDid), a(3, targetDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildAttribRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildAttribRequest(submitterDid, targetDid, optionalString(hash), optionalString(raw), optionalString(enc))
	})
}

// BuildGetAttribRequest builds a GET_ATTRIB request for one of raw, hash
// and enc.
func BuildGetAttribRequest(ch CommandHandle, submitterDid, targetDid, raw, hash, enc string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(3, targetDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetAttribRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetAttribRequest(submitterDid, targetDid, optionalString(raw), optionalString(hash), optionalString(enc))
	})
}

// BuildGetNymRequest builds a GET_NYM request.
func BuildGetNymRequest(ch CommandHandle, submitterDid, targetDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, targetDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetNymRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetNymRequest(submitterDid, targetDid)
	})
}

// ParseGetNymResponse extracts the NYM data of a GET_NYM reply.
func ParseGetNymResponse(ch CommandHandle, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandParseGetNymResponse, cb, func(s *ledger.Service) (string, error) {
		return s.ParseGetNymResponse(responseJSON)
	})
}

// BuildSchemaRequest builds a SCHEMA request.
func BuildSchemaRequest(ch CommandHandle, submitterDid, schemaJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, submitterDid), j(3, schemaJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildSchemaRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildSchemaRequest(submitterDid, schemaJSON)
	})
}

// BuildGetSchemaRequest builds a GET_SCHEMA request.
func BuildGetSchemaRequest(ch CommandHandle, submitterDid, id string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, id)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetSchemaRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetSchemaRequest(submitterDid, id)
	})
}

// ParseGetSchemaResponse returns the schema id and JSON of a GET_SCHEMA
// reply.
func ParseGetSchemaResponse(ch CommandHandle, responseJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandParseGetSchemaResponse, func(_ context.Context, l *locator.Locator) (pair, error) {
		id, schema, err := l.Ledger.ParseGetSchemaResponse(responseJSON)
		return pair{id, schema}, err
	}, two(ch, cb))
}

// BuildCredDefRequest builds a CRED_DEF request.
func BuildCredDefRequest(ch CommandHandle, submitterDid, credDefJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, submitterDid), j(3, credDefJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildCredDefRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildCredDefRequest(submitterDid, credDefJSON)
	})
}

// BuildGetCredDefRequest builds a GET_CRED_DEF request.
func BuildGetCredDefRequest(ch CommandHandle, submitterDid, id string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, id)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetCredDefRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetCredDefRequest(submitterDid, id)
	})
}

// ParseGetCredDefResponse returns the id and JSON of a GET_CRED_DEF reply.
func ParseGetCredDefResponse(ch CommandHandle, responseJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandParseGetCredDefResponse, func(_ context.Context, l *locator.Locator) (pair, error) {
		id, cd, err := l.Ledger.ParseGetCredDefResponse(responseJSON)
		return pair{id, cd}, err
	}, two(ch, cb))
}

// BuildNodeRequest builds a NODE request.
func BuildNodeRequest(ch CommandHandle, submitterDid, targetDid, dataJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(2, submitterDid), a(3, targetDid), j(4, dataJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildNodeRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildNodeRequest(submitterDid, targetDid, dataJSON)
	})
}

// BuildGetValidatorInfoRequest builds a GET_VALIDATOR_INFO request.
func BuildGetValidatorInfoRequest(ch CommandHandle, submitterDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3, a(2, submitterDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetValidatorInfoRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetValidatorInfoRequest(submitterDid)
	})
}

// BuildGetTxnRequest builds a GET_TXN request for seqNo on ledgerType
// (DOMAIN when empty).
func BuildGetTxnRequest(ch CommandHandle, submitterDid, ledgerType string, seqNo int64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetTxnRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetTxnRequest(submitterDid, ledgerType, seqNo)
	})
}

// BuildPoolConfigRequest builds a POOL_CONFIG request.
func BuildPoolConfigRequest(ch CommandHandle, submitterDid string, writes, force bool, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(2, submitterDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildPoolConfigRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildPoolConfigRequest(submitterDid, writes, force)
	})
}

// BuildPoolRestartRequest builds a POOL_RESTART request.
func BuildPoolRestartRequest(ch CommandHandle, submitterDid, action, datetime string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(2, submitterDid), a(3, action)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildPoolRestartRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildPoolRestartRequest(submitterDid, action, optionalString(datetime))
	})
}

// BuildPoolUpgradeRequest builds a POOL_UPGRADE request.
func BuildPoolUpgradeRequest(ch CommandHandle, submitterDid string, upgrade PoolUpgrade, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, submitterDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildPoolUpgradeRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildPoolUpgradeRequest(submitterDid, upgrade)
	})
}

// BuildRevocRegDefRequest builds a REVOC_REG_DEF request.
func BuildRevocRegDefRequest(ch CommandHandle, submitterDid, defJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, submitterDid), j(3, defJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildRevocRegDefRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildRevocRegDefRequest(submitterDid, defJSON)
	})
}

// BuildGetRevocRegDefRequest builds a GET_REVOC_REG_DEF request.
func BuildGetRevocRegDefRequest(ch CommandHandle, submitterDid, id string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, id)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetRevocRegDefRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetRevocRegDefRequest(submitterDid, id)
	})
}

// ParseGetRevocRegDefResponse returns the id and JSON of a
// GET_REVOC_REG_DEF reply.
func ParseGetRevocRegDefResponse(ch CommandHandle, responseJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandParseGetRevocRegDefResponse, func(_ context.Context, l *locator.Locator) (pair, error) {
		id, def, err := l.Ledger.ParseGetRevocRegDefResponse(responseJSON)
		return pair{id, def}, err
	}, two(ch, cb))
}

// BuildRevocRegEntryRequest builds a REVOC_REG_ENTRY request.
func BuildRevocRegEntryRequest(ch CommandHandle, submitterDid, revRegDefID, revDefType, deltaJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(2, submitterDid), a(3, revRegDefID), a(4, revDefType), j(5, deltaJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildRevocRegEntryRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildRevocRegEntryRequest(submitterDid, revRegDefID, revDefType, deltaJSON)
	})
}

// BuildGetRevocRegRequest builds a GET_REVOC_REG request for the registry
// state at timestamp.
func BuildGetRevocRegRequest(ch CommandHandle, submitterDid, revRegDefID string, timestamp int64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, revRegDefID)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetRevocRegRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetRevocRegRequest(submitterDid, revRegDefID, timestamp)
	})
}

// TimedCallback receives an id, a JSON value and the ledger time it holds
// for.
type TimedCallback func(CommandHandle, ErrorCode, string, string, uint64)

type timed struct {
	id, value string
	ts        uint64
}

func timedOut(ch CommandHandle, cb TimedCallback) func(timed, ErrorCode) {
	return func(v timed, code ErrorCode) { cb(ch, code, v.id, v.value, v.ts) }
}

// ParseGetRevocRegResponse returns the registry id, accumulator and time
// of a GET_REVOC_REG reply.
func ParseGetRevocRegResponse(ch CommandHandle, responseJSON string, cb TimedCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandParseGetRevocRegResponse, func(_ context.Context, l *locator.Locator) (timed, error) {
		id, reg, ts, err := l.Ledger.ParseGetRevocRegResponse(responseJSON)
		return timed{id, reg, ts}, err
	}, timedOut(ch, cb))
}

// BuildGetRevocRegDeltaRequest builds a GET_REVOC_REG_DELTA request over
// [from, to]. from of -1 asks for the delta since the registry start.
func BuildGetRevocRegDeltaRequest(ch CommandHandle, submitterDid, revRegDefID string, from, to int64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(3, revRegDefID)); code != Success {
		return code
	}
	var fromPtr *int64
	if from >= 0 {
		fromPtr = &from
	}
	return build(ch, command.LedgerCommandBuildGetRevocRegDeltaRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetRevocRegDeltaRequest(submitterDid, revRegDefID, fromPtr, to)
	})
}

// ParseGetRevocRegDeltaResponse returns the registry id, delta and time of
// a GET_REVOC_REG_DELTA reply.
func ParseGetRevocRegDeltaResponse(ch CommandHandle, responseJSON string, cb TimedCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return submit(command.LedgerCommandParseGetRevocRegDeltaResponse, func(_ context.Context, l *locator.Locator) (timed, error) {
		id, delta, ts, err := l.Ledger.ParseGetRevocRegDeltaResponse(responseJSON)
		return timed{id, delta, ts}, err
	}, timedOut(ch, cb))
}

// RegisterTransactionParserForSP lets replies to txnType be checked
// against their state proof.
func RegisterTransactionParserForSP(ch CommandHandle, txnType string, parser StateProofParser, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(2, txnType)); code != Success {
		return code
	}
	if parser == nil {
		return invalidParam(3)
	}
	return submit(command.LedgerCommandRegisterSPParser, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Ledger.RegisterTransactionParserForSP(txnType, parser))
	}, none(ch, cb))
}

// GetResponseMetadata returns the seqNo, txnTime and last-seen times of a
// reply.
func GetResponseMetadata(ch CommandHandle, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3, j(2, responseJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandGetResponseMetadata, cb, func(s *ledger.Service) (string, error) {
		return s.GetResponseMetadata(responseJSON)
	})
}

// BuildAuthRuleRequest builds an AUTH_RULE request changing one rule.
func BuildAuthRuleRequest(ch CommandHandle, submitterDid, txnType, action, field, oldValue, newValue, constraintJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 9, a(2, submitterDid), a(3, txnType), a(4, action), a(5, field), j(8, constraintJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildAuthRuleRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildAuthRuleRequest(submitterDid, txnType, action, field, optionalString(oldValue), optionalString(newValue), constraintJSON)
	})
}

// BuildAuthRulesRequest builds an AUTH_RULES request changing many rules.
func BuildAuthRulesRequest(ch CommandHandle, submitterDid, rulesJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, submitterDid), j(3, rulesJSON)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildAuthRulesRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildAuthRulesRequest(submitterDid, rulesJSON)
	})
}

// BuildGetAuthRuleRequest builds a GET_AUTH_RULE request. With every
// filter empty it asks for all rules.
func BuildGetAuthRuleRequest(ch CommandHandle, submitterDid, txnType, action, field, oldValue, newValue string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 8); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetAuthRuleRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetAuthRuleRequest(submitterDid, optionalString(txnType), optionalString(action), optionalString(field),
			optionalString(oldValue), optionalString(newValue))
	})
}

func optionalInt(v int64) *int64 {
	if v < 0 {
		return nil
	}
	return &v
}

// BuildTxnAuthorAgreementRequest builds a TXN_AUTHR_AGRMT request.
// Negative timestamps are left out.
func BuildTxnAuthorAgreementRequest(ch CommandHandle, submitterDid, text, version string, ratificationTs, retirementTs int64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(2, submitterDid), a(4, version)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildTxnAuthorAgreementRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildTxnAuthorAgreementRequest(submitterDid, optionalString(text), version, optionalInt(ratificationTs), optionalInt(retirementTs))
	})
}

// BuildDisableAllTxnAuthorAgreementsRequest builds a
// TXN_AUTHR_AGRMT_DISABLE request.
func BuildDisableAllTxnAuthorAgreementsRequest(ch CommandHandle, submitterDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3, a(2, submitterDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildDisableAllTxnAuthorAgreementsRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildDisableAllTxnAuthorAgreementsRequest(submitterDid)
	})
}

// BuildGetTxnAuthorAgreementRequest builds a GET_TXN_AUTHR_AGRMT request,
// for the active agreement when queryJSON is empty.
func BuildGetTxnAuthorAgreementRequest(ch CommandHandle, submitterDid, queryJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetTxnAuthorAgreementRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetTxnAuthorAgreementRequest(submitterDid, optionalString(queryJSON))
	})
}

// BuildAcceptanceMechanismsRequest builds a TXN_AUTHR_AGRMT_AML request.
func BuildAcceptanceMechanismsRequest(ch CommandHandle, submitterDid, amlJSON, version, amlContext string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(2, submitterDid), j(3, amlJSON), a(4, version)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildAcceptanceMechanismRequests, cb, func(s *ledger.Service) (string, error) {
		return s.BuildAcceptanceMechanismsRequest(submitterDid, amlJSON, version, optionalString(amlContext))
	})
}

// BuildGetAcceptanceMechanismsRequest builds a GET_TXN_AUTHR_AGRMT_AML
// request. A negative timestamp and an empty version are left out.
func BuildGetAcceptanceMechanismsRequest(ch CommandHandle, submitterDid string, timestamp int64, version string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandBuildGetAcceptanceMechanismsRequest, cb, func(s *ledger.Service) (string, error) {
		return s.BuildGetAcceptanceMechanismsRequest(submitterDid, optionalInt(timestamp), optionalString(version))
	})
}

// AppendTxnAuthorAgreementAcceptanceToRequest records the acceptance of an
// agreement, named by text and version or by digest, in request.
func AppendTxnAuthorAgreementAcceptanceToRequest(ch CommandHandle, requestJSON, text, version, digest, mechanism string, acceptedAt uint64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 8, j(2, requestJSON), a(6, mechanism)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandAppendTxnAuthorAgreementAcceptanceToRequest, cb, func(s *ledger.Service) (string, error) {
		return s.AppendTxnAuthorAgreementAcceptanceToRequest(requestJSON, optionalString(text), optionalString(version),
			optionalString(digest), mechanism, acceptedAt)
	})
}

// AppendRequestEndorser names the endorser who will sign request.
func AppendRequestEndorser(ch CommandHandle, requestJSON, endorserDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, j(2, requestJSON), a(3, endorserDid)); code != Success {
		return code
	}
	return build(ch, command.LedgerCommandAppendRequestEndorser, cb, func(s *ledger.Service) (string, error) {
		return s.AppendRequestEndorser(requestJSON, endorserDid)
	})
}
