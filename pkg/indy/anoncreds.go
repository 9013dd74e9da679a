package indy

import (
	"context"

	"indy/internal/anoncreds"
	"indy/internal/anoncreds/models"
	"indy/internal/command"
	"indy/internal/locator"
)

// TripleCallback receives three string outputs.
type TripleCallback func(CommandHandle, ErrorCode, string, string, string)

type triple struct{ a, b, c string }

func three(ch CommandHandle, cb TripleCallback) func(triple, ErrorCode) {
	return func(v triple, code ErrorCode) { cb(ch, code, v.a, v.b, v.c) }
}

// IssuerCreateSchema builds a schema and returns its id and JSON. Nothing
// is stored.
func IssuerCreateSchema(ch CommandHandle, issuerDid, name, version, attrsJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 6, a(2, issuerDid), a(3, name), a(4, version), j(5, attrsJSON)); code != Success {
		return code
	}
	return submit(command.IssuerCommandCreateSchema, func(_ context.Context, l *locator.Locator) (pair, error) {
		id, schema, err := l.Issuer.CreateSchema(issuerDid, name, version, attrsJSON)
		return pair{id, schema}, err
	}, two(ch, cb))
}

// IssuerCreateAndStoreCredentialDef generates the keys of a credential
// definition for schemaJSON and stores the private part in the wallet.
func IssuerCreateAndStoreCredentialDef(ch CommandHandle, h WalletHandle, issuerDid, schemaJSON, tag, signatureType, configJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 8, a(3, issuerDid), j(4, schemaJSON), a(5, tag)); code != Success {
		return code
	}
	return submitOffload(command.IssuerCommandCreateAndStoreCredentialDefinition,
		func(ctx context.Context, l *locator.Locator) (*anoncreds.CredDefDraft, error) {
			return l.Issuer.PrepareCredentialDefinition(ctx, h, issuerDid, schemaJSON, tag, signatureType, configJSON)
		},
		func(l *locator.Locator, d *anoncreds.CredDefDraft) (*anoncreds.CredDefKeys, error) {
			return l.Issuer.GenerateCredentialDefinition(d)
		},
		command.IssuerCommandCreateAndStoreCredentialDefinitionContinue,
		func(ctx context.Context, l *locator.Locator, k *anoncreds.CredDefKeys) (pair, error) {
			id, cd, err := l.Issuer.StoreCredentialDefinition(ctx, h, k)
			return pair{id, cd}, err
		},
		two(ch, cb))
}

// IssuerRotateCredentialDefStart generates new keys for credDefID and keeps
// them aside until IssuerRotateCredentialDefApply.
func IssuerRotateCredentialDefStart(ch CommandHandle, h WalletHandle, credDefID, configJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, credDefID)); code != Success {
		return code
	}
	return submitOffload(command.IssuerCommandRotateCredentialDefinitionStart,
		func(ctx context.Context, l *locator.Locator) (*anoncreds.CredDefDraft, error) {
			return l.Issuer.PrepareRotation(ctx, h, credDefID, configJSON)
		},
		func(l *locator.Locator, d *anoncreds.CredDefDraft) (*anoncreds.CredDefKeys, error) {
			return l.Issuer.GenerateCredentialDefinition(d)
		},
		command.IssuerCommandRotateCredentialDefinitionStartComplete,
		func(ctx context.Context, l *locator.Locator, k *anoncreds.CredDefKeys) (string, error) {
			_, cd, err := l.Issuer.StoreCredentialDefinition(ctx, h, k)
			return cd, err
		},
		str(ch, cb))
}

// IssuerRotateCredentialDefApply replaces the keys of credDefID with the
// ones from the last rotation start.
func IssuerRotateCredentialDefApply(ch CommandHandle, h WalletHandle, credDefID string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(3, credDefID)); code != Success {
		return code
	}
	return submit(command.IssuerCommandRotateCredentialDefinitionApply, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Issuer.RotateCredentialDefinitionApply(ctx, h, credDefID))
	}, none(ch, cb))
}

// IssuerCreateAndStoreRevocReg creates a revocation registry for credDefID
// and writes its tails file through writer. It returns the registry id,
// definition and initial entry.
func IssuerCreateAndStoreRevocReg(ch CommandHandle, h WalletHandle, issuerDid, revocDefType, tag, credDefID, configJSON string, writer BlobWriterHandle, cb TripleCallback) ErrorCode {
	if code := check(cb == nil, 9, a(3, issuerDid), a(5, tag), a(6, credDefID), j(7, configJSON)); code != Success {
		return code
	}
	return submit(command.IssuerCommandCreateAndStoreRevocationRegistry, func(ctx context.Context, l *locator.Locator) (triple, error) {
		id, def, entry, err := l.Issuer.CreateAndStoreRevocationRegistry(ctx, h, issuerDid, revocDefType, tag, credDefID, configJSON, writer)
		return triple{id, def, entry}, err
	}, three(ch, cb))
}

// IssuerCreateCredentialOffer creates an offer for credDefID.
func IssuerCreateCredentialOffer(ch CommandHandle, h WalletHandle, credDefID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, credDefID)); code != Success {
		return code
	}
	return submit(command.IssuerCommandCreateCredentialOffer, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Issuer.CreateCredentialOffer(ctx, h, credDefID)
	}, str(ch, cb))
}

// IssuerCreateCredential signs the values of a credential request. For a
// revocable definition it also returns the credential's revocation id and
// the registry delta.
func IssuerCreateCredential(ch CommandHandle, h WalletHandle, offerJSON, requestJSON, valuesJSON, revRegID string, reader BlobReaderHandle, cb TripleCallback) ErrorCode {
	if code := check(cb == nil, 8, j(3, offerJSON), j(4, requestJSON), j(5, valuesJSON)); code != Success {
		return code
	}
	return submit(command.IssuerCommandCreateCredential, func(ctx context.Context, l *locator.Locator) (triple, error) {
		cred, revID, delta, err := l.Issuer.CreateCredential(ctx, h, offerJSON, requestJSON, valuesJSON, revRegID, reader)
		return triple{cred, revID, delta}, err
	}, three(ch, cb))
}

// IssuerRevokeCredential revokes credRevID and returns the registry delta.
func IssuerRevokeCredential(ch CommandHandle, h WalletHandle, reader BlobReaderHandle, revRegID, credRevID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(4, revRegID), a(5, credRevID)); code != Success {
		return code
	}
	return submit(command.IssuerCommandRevokeCredential, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Issuer.RevokeCredential(ctx, h, reader, revRegID, credRevID)
	}, str(ch, cb))
}

// IssuerMergeRevocationRegistryDeltas folds delta b into delta a.
func IssuerMergeRevocationRegistryDeltas(ch CommandHandle, deltaA, deltaB string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, j(2, deltaA), j(3, deltaB)); code != Success {
		return code
	}
	return submit(command.IssuerCommandMergeRevocationRegistryDeltas, func(context.Context, *locator.Locator) (string, error) {
		return anoncreds.MergeRevocationRegistryDeltas(deltaA, deltaB)
	}, str(ch, cb))
}

// ProverCreateMasterSecret stores a new link secret under name, or under a
// random name when name is empty, and returns the name.
func ProverCreateMasterSecret(ch CommandHandle, h WalletHandle, name string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	return submit(command.ProverCommandCreateMasterSecret, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.CreateMasterSecret(ctx, h, name)
	}, str(ch, cb))
}

// ProverCreateCredentialReq answers an offer with a blinded link secret.
// It returns the request and the metadata StoreCredential needs.
func ProverCreateCredentialReq(ch CommandHandle, h WalletHandle, proverDid, offerJSON, credDefJSON, masterSecret string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 7, a(3, proverDid), j(4, offerJSON), j(5, credDefJSON), a(6, masterSecret)); code != Success {
		return code
	}
	return submit(command.ProverCommandCreateCredentialRequest, func(ctx context.Context, l *locator.Locator) (pair, error) {
		req, meta, err := l.Prover.CreateCredentialRequest(ctx, h, proverDid, offerJSON, credDefJSON, masterSecret)
		return pair{req, meta}, err
	}, two(ch, cb))
}

// ProverSetCredentialAttrTagPolicy chooses which attributes of credentials
// from credDefID are tagged. retroactive retags stored credentials.
func ProverSetCredentialAttrTagPolicy(ch CommandHandle, h WalletHandle, credDefID, policyJSON string, retroactive bool, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, credDefID)); code != Success {
		return code
	}
	return submit(command.ProverCommandSetCredentialAttrTagPolicy, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Prover.SetCredentialAttrTagPolicy(ctx, h, credDefID, policyJSON, retroactive))
	}, none(ch, cb))
}

// ProverGetCredentialAttrTagPolicy returns the tag policy of credDefID.
func ProverGetCredentialAttrTagPolicy(ch CommandHandle, h WalletHandle, credDefID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, credDefID)); code != Success {
		return code
	}
	return submit(command.ProverCommandGetCredentialAttrTagPolicy, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.GetCredentialAttrTagPolicy(ctx, h, credDefID)
	}, str(ch, cb))
}

// ProverStoreCredential checks and stores an issued credential and returns
// its id.
func ProverStoreCredential(ch CommandHandle, h WalletHandle, credID, metaJSON, credJSON, credDefJSON, revRegDefJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 8, j(4, metaJSON), j(5, credJSON), j(6, credDefJSON)); code != Success {
		return code
	}
	return submit(command.ProverCommandStoreCredential, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.StoreCredential(ctx, h, credID, metaJSON, credJSON, credDefJSON, revRegDefJSON)
	}, str(ch, cb))
}

// ProverGetCredential returns the summary of a stored credential.
func ProverGetCredential(ch CommandHandle, h WalletHandle, credID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, credID)); code != Success {
		return code
	}
	return submit(command.ProverCommandGetCredential, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.GetCredential(ctx, h, credID)
	}, str(ch, cb))
}

// ProverDeleteCredential removes a stored credential.
func ProverDeleteCredential(ch CommandHandle, h WalletHandle, credID string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(3, credID)); code != Success {
		return code
	}
	return submit(command.ProverCommandDeleteCredential, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Prover.DeleteCredential(ctx, h, credID))
	}, none(ch, cb))
}

// ProverGetCredentials returns the credentials matching filterJSON.
func ProverGetCredentials(ch CommandHandle, h WalletHandle, filterJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	return submit(command.ProverCommandGetCredentials, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.GetCredentials(ctx, h, filterJSON)
	}, str(ch, cb))
}

// ProverSearchCredentials opens a search over stored credentials and
// reports how many match.
func ProverSearchCredentials(ch CommandHandle, h WalletHandle, queryJSON string, cb func(CommandHandle, ErrorCode, SearchHandle, int)) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	type opened struct {
		sh    SearchHandle
		count int
	}
	return submit(command.ProverCommandSearchCredentials, func(ctx context.Context, l *locator.Locator) (opened, error) {
		sh, n, err := l.Prover.SearchCredentials(ctx, h, queryJSON)
		return opened{sh, n}, err
	}, func(o opened, code ErrorCode) {
		if code != Success {
			o.sh = SearchHandle(InvalidHandle)
		}
		cb(ch, code, o.sh, o.count)
	})
}

// ProverFetchCredentials returns up to count further credentials.
func ProverFetchCredentials(ch CommandHandle, sh SearchHandle, count int, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	if count < 0 {
		return invalidParam(3)
	}
	return submit(command.ProverCommandFetchCredentials, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.FetchCredentials(ctx, sh, count)
	}, str(ch, cb))
}

// ProverCloseCredentialsSearch releases a credential search.
func ProverCloseCredentialsSearch(ch CommandHandle, sh SearchHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.ProverCommandCloseCredentialsSearch, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Prover.CloseCredentialsSearch(sh))
	}, none(ch, cb))
}

// ProverGetCredentialsForProofReq returns, per referent of a proof
// request, every stored credential that can satisfy it.
func ProverGetCredentialsForProofReq(ch CommandHandle, h WalletHandle, proofReqJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, j(3, proofReqJSON)); code != Success {
		return code
	}
	return submit(command.ProverCommandGetCredentialsForProofReq, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.GetCredentialsForProofReq(ctx, h, proofReqJSON)
	}, str(ch, cb))
}

// ProverSearchCredentialsForProofReq opens one search per referent of a
// proof request, narrowed by extraQueryJSON.
func ProverSearchCredentialsForProofReq(ch CommandHandle, h WalletHandle, proofReqJSON, extraQueryJSON string, cb SearchHandleCallback) ErrorCode {
	if code := check(cb == nil, 5, j(3, proofReqJSON)); code != Success {
		return code
	}
	return submit(command.ProverCommandSearchCredentialsForProofReq, func(ctx context.Context, l *locator.Locator) (SearchHandle, error) {
		return l.Prover.SearchCredentialsForProofReq(ctx, h, proofReqJSON, extraQueryJSON)
	}, func(sh SearchHandle, code ErrorCode) {
		if code != Success {
			sh = SearchHandle(InvalidHandle)
		}
		cb(ch, code, sh)
	})
}

// ProverFetchCredentialsForProofReq returns up to count further
// credentials for one referent.
func ProverFetchCredentialsForProofReq(ch CommandHandle, sh SearchHandle, referent string, count int, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, referent)); code != Success {
		return code
	}
	if count < 0 {
		return invalidParam(4)
	}
	return submit(command.ProverCommandFetchCredentialForProofReq, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.FetchCredentialsForProofReq(ctx, sh, referent, count)
	}, str(ch, cb))
}

// ProverCloseCredentialsSearchForProofReq releases a proof request search.
func ProverCloseCredentialsSearchForProofReq(ch CommandHandle, sh SearchHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.ProverCommandCloseCredentialsSearchForProofReq, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Prover.CloseCredentialsSearchForProofReq(sh))
	}, none(ch, cb))
}

// ProverCreateProof builds a proof for a proof request from the requested
// credentials.
func ProverCreateProof(ch CommandHandle, h WalletHandle, proofReqJSON, requestedJSON, masterSecret, schemasJSON, credDefsJSON, revStatesJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 9, j(3, proofReqJSON), j(4, requestedJSON), a(5, masterSecret), j(6, schemasJSON), j(7, credDefsJSON), j(8, revStatesJSON)); code != Success {
		return code
	}
	return submit(command.ProverCommandCreateProof, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Prover.CreateProof(ctx, h, proofReqJSON, requestedJSON, masterSecret, schemasJSON, credDefsJSON, revStatesJSON)
	}, str(ch, cb))
}

// CreateRevocationState computes the witness of credRevID at timestamp.
func CreateRevocationState(ch CommandHandle, reader BlobReaderHandle, revRegDefJSON, deltaJSON string, timestamp uint64, credRevID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, j(3, revRegDefJSON), j(4, deltaJSON), a(6, credRevID)); code != Success {
		return code
	}
	return submit(command.ProverCommandCreateRevocationState, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.Prover.CreateRevocationState(reader, revRegDefJSON, deltaJSON, timestamp, credRevID)
	}, str(ch, cb))
}

// UpdateRevocationState moves a revocation state forward by a delta.
func UpdateRevocationState(ch CommandHandle, reader BlobReaderHandle, stateJSON, revRegDefJSON, deltaJSON string, timestamp uint64, credRevID string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 8, j(3, stateJSON), j(4, revRegDefJSON), j(5, deltaJSON), a(7, credRevID)); code != Success {
		return code
	}
	return submit(command.ProverCommandUpdateRevocationState, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.Prover.UpdateRevocationState(reader, stateJSON, revRegDefJSON, deltaJSON, timestamp, credRevID)
	}, str(ch, cb))
}

// VerifierVerifyProof checks a proof against its request. A proof that is
// well formed but wrong yields false, not an error.
func VerifierVerifyProof(ch CommandHandle, proofReqJSON, proofJSON, schemasJSON, credDefsJSON, revRegDefsJSON, revRegsJSON string, cb BoolCallback) ErrorCode {
	if code := check(cb == nil, 8, j(2, proofReqJSON), j(3, proofJSON), j(4, schemasJSON), j(5, credDefsJSON), j(6, revRegDefsJSON), j(7, revRegsJSON)); code != Success {
		return code
	}
	return submit(command.VerifierCommandVerifyProof, func(ctx context.Context, l *locator.Locator) (bool, error) {
		return l.Verifier.VerifyProof(ctx, proofReqJSON, proofJSON, schemasJSON, credDefsJSON, revRegDefsJSON, revRegsJSON)
	}, boolean(ch, cb))
}

// GenerateNonce returns a fresh 80-bit decimal nonce for proof requests.
func GenerateNonce(ch CommandHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 2); code != Success {
		return code
	}
	return submit(command.VerifierCommandGenerateNonce, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.Verifier.GenerateNonce(), nil
	}, str(ch, cb))
}

// ToUnqualified strips the DID method qualifiers from an id or an
// anoncreds object.
func ToUnqualified(ch CommandHandle, entity string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3, a(2, entity)); code != Success {
		return code
	}
	return submit(command.AnoncredsCommandToUnqualified, func(context.Context, *locator.Locator) (string, error) {
		return models.ToUnqualified(entity)
	}, str(ch, cb))
}
