package anoncreds

import (
	"context"
	"encoding/json"
	"math/big"
	"slices"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/models"
	"indy/internal/anoncreds/revocation"
	"indy/internal/blobstorage"
	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	strs "indy/pkg/platform/strings"
	s "indy/pkg/string"
	"indy/pkg/validation"
)

// Prover implements the prover commands.
type Prover struct {
	store wallet.Store
	blobs *blobstorage.Service
	opts  options

	searches      command.Table[command.SearchHandle, wallet.Cursor]
	proofSearches command.Table[command.SearchHandle, *proofRequestSearch]
}

// NewProver creates a prover over store. blobs serves tails files.
func NewProver(store wallet.Store, blobs *blobstorage.Service, opts ...Option) *Prover {
	return &Prover{store: store, blobs: blobs, opts: newOptions(opts)}
}

// CreateMasterSecret stores a new master secret under name, or under a
// random id when name is empty.
func (p *Prover) CreateMasterSecret(ctx context.Context, h command.WalletHandle, name string) (string, error) {
	if name == "" {
		name = uuid.NewString()
	}
	ms := models.MasterSecret{Value: cl.N(cl.NewMasterSecret())}
	err := wallet.AddObject(ctx, p.store, h, wallet.TypeMasterSecret, name, ms, nil)
	if dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists) {
		return "", dErrors.Newf(dErrors.CodeMasterSecretDuplicateName, "master secret %q already exists", name)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *Prover) masterSecret(ctx context.Context, h command.WalletHandle, name string) (*big.Int, error) {
	ms, err := wallet.GetObject[models.MasterSecret](ctx, p.store, h, wallet.TypeMasterSecret, name)
	if err != nil {
		return nil, err
	}
	if ms.Value == nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "master secret %q is empty", name)
	}
	return ms.Value.Int(), nil
}

// CreateCredentialRequest blinds the master secret for the offered
// credential definition. The metadata must be kept for StoreCredential.
func (p *Prover) CreateCredentialRequest(ctx context.Context, h command.WalletHandle, proverDid, offerJSON, credDefJSON, msName string) (string, string, error) {
	if !validation.IsDID(proverDid) {
		return "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid prover did %q", proverDid)
	}
	var offer models.CredentialOffer
	if err := validation.DecodeJSON(offerJSON, &offer); err != nil {
		return "", "", err
	}
	var cd models.CredentialDefinition
	if err := validation.DecodeJSON(credDefJSON, &cd); err != nil {
		return "", "", err
	}
	if models.Unqualify(offer.CredDefID) != models.Unqualify(cd.ID) {
		return "", "", dErrors.New(dErrors.CodeInvalidStructure, "offer and credential definition do not match")
	}
	ms, err := p.masterSecret(ctx, h, msName)
	if err != nil {
		return "", "", err
	}
	bs, proof, bf, err := cl.Blind(cd.Value.Primary, offer.KeyCorrectnessProof, ms, offer.Nonce.Int())
	if err != nil {
		return "", "", err
	}
	nonce := cl.N(cl.NewNonce())
	reqJSON, err := encode(models.CredentialRequest{
		ProverDID:                 proverDid,
		CredDefID:                 cd.ID,
		BlindedMS:                 bs,
		BlindedMSCorrectnessProof: proof,
		Nonce:                     nonce,
	})
	if err != nil {
		return "", "", err
	}
	metaJSON, err := encode(models.CredentialRequestMetadata{
		MasterSecretBlindingData: bf,
		Nonce:                    nonce,
		MasterSecretName:         msName,
	})
	if err != nil {
		return "", "", err
	}
	return reqJSON, metaJSON, nil
}

func (p *Prover) tagPolicy(ctx context.Context, h command.WalletHandle, credDefID string) (models.TagPolicy, error) {
	policy, err := wallet.GetObject[models.TagPolicy](ctx, p.store, h, wallet.TypeAttrTagPolicy, credDefID)
	if dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
		return nil, nil
	}
	return policy, err
}

// SetCredentialAttrTagPolicy selects the attributes of credDefID that get
// attr:: tags. An empty or null policy tags every attribute. With
// retroactive set, stored credentials are retagged.
func (p *Prover) SetCredentialAttrTagPolicy(ctx context.Context, h command.WalletHandle, credDefID, policyJSON string, retroactive bool) error {
	var policy models.TagPolicy
	if !isNull(json.RawMessage(policyJSON)) {
		if err := json.Unmarshal([]byte(policyJSON), &policy); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "tag policy must be a json array of attribute names")
		}
		policy = strs.DedupeCanonical(policy)
		for i, name := range policy {
			policy[i] = s.Canonical(name)
		}
	}

	if policy == nil {
		if err := p.store.DeleteRecord(ctx, h, wallet.TypeAttrTagPolicy, credDefID); err != nil && !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
			return err
		}
	} else {
		raw, err := encode(policy)
		if err != nil {
			return err
		}
		if err := wallet.Upsert(ctx, p.store, h, wallet.TypeAttrTagPolicy, credDefID, raw); err != nil {
			return err
		}
	}
	if !retroactive {
		return nil
	}

	filter, err := json.Marshal(map[string]string{models.TagCredDefID: credDefID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode credential filter")
	}
	recs, err := wallet.SearchAll(ctx, p.store, h, wallet.TypeCredential, string(filter), wallet.DefaultSearchOptions())
	if err != nil {
		return err
	}
	for _, rec := range recs {
		var cred models.Credential
		if err := json.Unmarshal([]byte(rec.Value), &cred); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidState, "decode credential "+rec.ID)
		}
		if err := p.store.UpdateRecordTags(ctx, h, wallet.TypeCredential, rec.ID, models.CredentialTags(&cred, policy)); err != nil {
			return err
		}
	}
	p.opts.logger.InfoContext(ctx, "credentials retagged", "cred_def_id", credDefID, "count", len(recs))
	return nil
}

// GetCredentialAttrTagPolicy returns the policy of credDefID, or null when
// every attribute is tagged.
func (p *Prover) GetCredentialAttrTagPolicy(ctx context.Context, h command.WalletHandle, credDefID string) (string, error) {
	policy, err := p.tagPolicy(ctx, h, credDefID)
	if err != nil {
		return "", err
	}
	return encode(policy)
}

// StoreCredential completes the issuer's signature with the blinding
// factors and stores the credential under credID, or a random id.
func (p *Prover) StoreCredential(ctx context.Context, h command.WalletHandle, credID, metaJSON, credJSON, credDefJSON, revRegDefJSON string) (string, error) {
	var meta models.CredentialRequestMetadata
	if err := validation.DecodeJSON(metaJSON, &meta); err != nil {
		return "", err
	}
	var cred models.Credential
	if err := validation.DecodeJSON(credJSON, &cred); err != nil {
		return "", err
	}
	var cd models.CredentialDefinition
	if err := validation.DecodeJSON(credDefJSON, &cd); err != nil {
		return "", err
	}
	if models.Unqualify(cred.CredDefID) != models.Unqualify(cd.ID) {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "credential and credential definition do not match")
	}
	if cred.RevRegID != nil {
		var def models.RevRegDef
		if isNull(json.RawMessage(revRegDefJSON)) {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "revocable credential needs its registry definition")
		}
		if err := validation.DecodeJSON(revRegDefJSON, &def); err != nil {
			return "", err
		}
		if def.ID != *cred.RevRegID || cred.Signature.R == nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "credential does not belong to the revocation registry")
		}
	}

	ms, err := p.masterSecret(ctx, h, meta.MasterSecretName)
	if err != nil {
		return "", err
	}
	values, err := signedValues(cred.Values, ms)
	if err != nil {
		return "", err
	}
	sig, err := cl.ProcessSignature(cd.Value.Primary, cred.Signature.P, cred.SignatureCorrectnessProof, meta.MasterSecretBlindingData, values, meta.Nonce.Int())
	if err != nil {
		return "", err
	}
	cred.Signature.P = sig

	policy, err := p.tagPolicy(ctx, h, cred.CredDefID)
	if err != nil {
		return "", err
	}
	if credID == "" {
		credID = uuid.NewString()
	}
	if err := wallet.AddObject(ctx, p.store, h, wallet.TypeCredential, credID, cred, models.CredentialTags(&cred, policy)); err != nil {
		return "", err
	}
	p.opts.logger.InfoContext(ctx, "credential stored", "cred_def_id", cred.CredDefID)
	return credID, nil
}

// signedValues maps the encoded credential values, plus ms when set, to
// integers.
func signedValues(values models.CredentialValues, ms *big.Int) (map[string]*big.Int, error) {
	out := make(map[string]*big.Int, len(values)+1)
	for name, v := range values {
		m, err := parseDecimal(v.Encoded, "encoded value of "+name)
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	if ms != nil {
		out[cl.MasterSecretName] = ms
	}
	return out, nil
}

func credentialInfo(id string, cred *models.Credential) models.CredentialInfo {
	info := models.CredentialInfo{
		Referent:  id,
		Attrs:     make(map[string]string, len(cred.Values)),
		SchemaID:  cred.SchemaID,
		CredDefID: cred.CredDefID,
		RevRegID:  cred.RevRegID,
	}
	for name, v := range cred.Values {
		info.Attrs[name] = v.Raw
	}
	if cred.Signature.R != nil {
		idx := strconv.FormatUint(uint64(cred.Signature.R.I), 10)
		info.CredRevID = &idx
	}
	return info
}

func decodeCredential(rec wallet.Record) (*models.Credential, error) {
	var cred models.Credential
	if err := json.Unmarshal([]byte(rec.Value), &cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "decode credential "+rec.ID)
	}
	return &cred, nil
}

func (p *Prover) credential(ctx context.Context, h command.WalletHandle, id string) (*models.Credential, error) {
	cred, err := wallet.GetObject[models.Credential](ctx, p.store, h, wallet.TypeCredential, id)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// GetCredential returns the summary of a stored credential.
func (p *Prover) GetCredential(ctx context.Context, h command.WalletHandle, credID string) (string, error) {
	cred, err := p.credential(ctx, h, credID)
	if err != nil {
		return "", err
	}
	return encode(credentialInfo(credID, cred))
}

// DeleteCredential removes a stored credential.
func (p *Prover) DeleteCredential(ctx context.Context, h command.WalletHandle, credID string) error {
	return p.store.DeleteRecord(ctx, h, wallet.TypeCredential, credID)
}

// GetCredentials lists the credentials matching a WQL filter.
func (p *Prover) GetCredentials(ctx context.Context, h command.WalletHandle, filterJSON string) (string, error) {
	recs, err := wallet.SearchAll(ctx, p.store, h, wallet.TypeCredential, filterJSON, wallet.DefaultSearchOptions())
	if err != nil {
		return "", err
	}
	infos := make([]models.CredentialInfo, 0, len(recs))
	for _, rec := range recs {
		cred, err := decodeCredential(rec)
		if err != nil {
			return "", err
		}
		infos = append(infos, credentialInfo(rec.ID, cred))
	}
	return encode(infos)
}

// SearchCredentials opens a search over stored credentials and returns
// its handle and the number of matches.
func (p *Prover) SearchCredentials(ctx context.Context, h command.WalletHandle, queryJSON string) (command.SearchHandle, int, error) {
	cur, err := p.store.Search(ctx, h, wallet.TypeCredential, queryJSON, wallet.SearchOptions{
		RetrieveRecords:    true,
		RetrieveTotalCount: true,
		RetrieveValue:      true,
	})
	if err != nil {
		return 0, 0, err
	}
	total, _ := cur.TotalCount()
	return p.searches.Insert(cur), total, nil
}

func nextInfos(ctx context.Context, cur wallet.Cursor, count int) ([]models.CredentialInfo, error) {
	recs, err := cur.Next(ctx, count)
	if dErrors.HasCode(err, dErrors.CodeWalletNoRecords) {
		return []models.CredentialInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	infos := make([]models.CredentialInfo, 0, len(recs))
	for _, rec := range recs {
		cred, err := decodeCredential(rec)
		if err != nil {
			return nil, err
		}
		infos = append(infos, credentialInfo(rec.ID, cred))
	}
	return infos, nil
}

// FetchCredentials returns up to count credentials of an open search. An
// exhausted search returns an empty list.
func (p *Prover) FetchCredentials(ctx context.Context, sh command.SearchHandle, count int) (string, error) {
	if err := validation.CheckSliceCount("count", count, validation.MaxFetchCount); err != nil {
		return "", err
	}
	cur, ok := p.searches.Get(sh)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "unknown credential search %d", sh)
	}
	infos, err := nextInfos(ctx, cur, count)
	if err != nil {
		return "", err
	}
	return encode(infos)
}

// CloseCredentialsSearch releases an open search.
func (p *Prover) CloseCredentialsSearch(sh command.SearchHandle) error {
	cur, ok := p.searches.Remove(sh)
	if !ok {
		return dErrors.Newf(dErrors.CodeInvalidState, "unknown credential search %d", sh)
	}
	return cur.Close()
}

type referentSearch struct {
	cur       wallet.Cursor
	predicate *cl.Predicate
	interval  *models.NonRevokedInterval
}

type proofRequestSearch struct {
	referents map[string]*referentSearch
}

func (ps *proofRequestSearch) close() error {
	var first error
	for _, r := range ps.referents {
		if err := r.cur.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// satisfies reports whether cred has a value meeting pred.
func satisfies(cred *models.Credential, pred *cl.Predicate) (bool, error) {
	v, ok := cred.Values[pred.AttrName]
	if !ok {
		return false, nil
	}
	m, err := parseDecimal(v.Encoded, "encoded value of "+pred.AttrName)
	if err != nil {
		return false, err
	}
	ok, err = pred.Satisfied(m)
	if dErrors.HasCode(err, dErrors.CodeInvalidStructure) {
		return false, nil
	}
	return ok, err
}

// next pulls up to count candidates, skipping credentials that fail the
// referent's predicate.
func (r *referentSearch) next(ctx context.Context, count int) ([]models.RequestedCredential, error) {
	out := []models.RequestedCredential{}
	for len(out) < count {
		recs, err := r.cur.Next(ctx, count-len(out))
		if dErrors.HasCode(err, dErrors.CodeWalletNoRecords) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			cred, err := decodeCredential(rec)
			if err != nil {
				return nil, err
			}
			if r.predicate != nil {
				ok, err := satisfies(cred, r.predicate)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}
			out = append(out, models.RequestedCredential{CredInfo: credentialInfo(rec.ID, cred), Interval: r.interval})
		}
	}
	return out, nil
}

func (p *Prover) openReferents(ctx context.Context, h command.WalletHandle, req *models.ProofRequest, extra map[string]json.RawMessage) (*proofRequestSearch, error) {
	search := &proofRequestSearch{referents: make(map[string]*referentSearch)}
	open := func(ref, name string, restrictions json.RawMessage, pred *cl.Predicate, own *models.NonRevokedInterval) error {
		q, err := referentQuery(name, restrictions, extra[ref])
		if err != nil {
			return err
		}
		cur, err := p.store.Search(ctx, h, wallet.TypeCredential, q, wallet.DefaultSearchOptions())
		if err != nil {
			return err
		}
		search.referents[ref] = &referentSearch{cur: cur, predicate: pred, interval: req.Interval(own)}
		return nil
	}
	for ref, attr := range req.RequestedAttributes {
		if err := open(ref, attr.Name, attr.Restrictions, nil, attr.NonRevoked); err != nil {
			search.close() //nolint:errcheck
			return nil, err
		}
	}
	for ref, pi := range req.RequestedPredicates {
		pred := predicateOf(pi)
		if err := open(ref, pi.Name, pi.Restrictions, &pred, pi.NonRevoked); err != nil {
			search.close() //nolint:errcheck
			return nil, err
		}
	}
	return search, nil
}

func parseExtraQuery(raw string) (map[string]json.RawMessage, error) {
	if isNull(json.RawMessage(raw)) {
		return nil, nil
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "extra query must map referents to queries")
	}
	return extra, nil
}

// GetCredentialsForProofReq lists every candidate credential per referent.
func (p *Prover) GetCredentialsForProofReq(ctx context.Context, h command.WalletHandle, reqJSON string) (string, error) {
	req, err := parseProofRequest(reqJSON)
	if err != nil {
		return "", err
	}
	search, err := p.openReferents(ctx, h, req, nil)
	if err != nil {
		return "", err
	}
	defer search.close() //nolint:errcheck

	out := models.CredentialsForProofRequest{
		Attrs:      make(map[string][]models.RequestedCredential),
		Predicates: make(map[string][]models.RequestedCredential),
	}
	for ref, r := range search.referents {
		var all []models.RequestedCredential
		for {
			page, err := r.next(ctx, validation.MaxFetchCount)
			if err != nil {
				return "", err
			}
			if len(page) == 0 {
				break
			}
			all = append(all, page...)
		}
		if all == nil {
			all = []models.RequestedCredential{}
		}
		if r.predicate != nil {
			out.Predicates[ref] = all
		} else {
			out.Attrs[ref] = all
		}
	}
	return encode(out)
}

// SearchCredentialsForProofReq opens one search per referent. extraJSON
// optionally maps referents to additional WQL queries.
func (p *Prover) SearchCredentialsForProofReq(ctx context.Context, h command.WalletHandle, reqJSON, extraJSON string) (command.SearchHandle, error) {
	req, err := parseProofRequest(reqJSON)
	if err != nil {
		return 0, err
	}
	extra, err := parseExtraQuery(extraJSON)
	if err != nil {
		return 0, err
	}
	search, err := p.openReferents(ctx, h, req, extra)
	if err != nil {
		return 0, err
	}
	return p.proofSearches.Insert(search), nil
}

// FetchCredentialsForProofReq returns up to count candidates for one
// referent of an open search.
func (p *Prover) FetchCredentialsForProofReq(ctx context.Context, sh command.SearchHandle, referent string, count int) (string, error) {
	if err := validation.CheckSliceCount("count", count, validation.MaxFetchCount); err != nil {
		return "", err
	}
	search, ok := p.proofSearches.Get(sh)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "unknown proof request search %d", sh)
	}
	r, ok := search.referents[referent]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unknown referent %q", referent)
	}
	page, err := r.next(ctx, count)
	if err != nil {
		return "", err
	}
	return encode(page)
}

// CloseCredentialsSearchForProofReq releases every cursor of a search.
func (p *Prover) CloseCredentialsSearchForProofReq(sh command.SearchHandle) error {
	search, ok := p.proofSearches.Remove(sh)
	if !ok {
		return dErrors.Newf(dErrors.CodeInvalidState, "unknown proof request search %d", sh)
	}
	return search.close()
}

// proofGroup is the set of referents answered by one credential at one
// timestamp.
type proofGroup struct {
	credID     string
	timestamp  *uint64
	revealed   []string
	referents  []string
	predicates []models.PredicateInfo
	predRefs   []string
}

func groupKey(credID string, ts *uint64) string {
	if ts == nil {
		return credID
	}
	return credID + "@" + strconv.FormatUint(*ts, 10)
}

// CreateProof answers a proof request with the chosen credentials.
func (p *Prover) CreateProof(ctx context.Context, h command.WalletHandle, reqJSON, requestedJSON, msName, schemasJSON, credDefsJSON, revStatesJSON string) (string, error) {
	req, err := parseProofRequest(reqJSON)
	if err != nil {
		return "", err
	}
	var requested models.RequestedCredentials
	if err := validation.DecodeJSON(requestedJSON, &requested); err != nil {
		return "", err
	}
	var schemas map[string]models.Schema
	if err := json.Unmarshal([]byte(schemasJSON), &schemas); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed schemas")
	}
	var credDefs map[string]models.CredentialDefinition
	if err := json.Unmarshal([]byte(credDefsJSON), &credDefs); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed credential definitions")
	}
	var revStates models.RevocationStates
	if !isNull(json.RawMessage(revStatesJSON)) {
		if err := json.Unmarshal([]byte(revStatesJSON), &revStates); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed revocation states")
		}
	}
	ms, err := p.masterSecret(ctx, h, msName)
	if err != nil {
		return "", err
	}
	nonce, _ := parseDecimal(req.Nonce, "nonce")

	groups, order, err := groupReferents(req, &requested)
	if err != nil {
		return "", err
	}

	out := models.Proof{
		RequestedProof: models.RequestedProof{
			RevealedAttrs:     map[string]models.RevealedAttributeInfo{},
			SelfAttestedAttrs: map[string]string{},
			UnrevealedAttrs:   map[string]models.SubProofReferent{},
			Predicates:        map[string]models.SubProofReferent{},
		},
		Identifiers: []models.Identifier{},
	}
	for ref, v := range requested.SelfAttestedAttributes {
		out.RequestedProof.SelfAttestedAttrs[ref] = v
	}

	builder := cl.NewProofBuilder()
	var nonRevoc []*revocation.Proof
	for idx, key := range order {
		g := groups[key]
		cred, err := p.credential(ctx, h, g.credID)
		if err != nil {
			return "", err
		}
		cd, ok := credDefs[cred.CredDefID]
		if !ok {
			return "", dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s not provided", cred.CredDefID)
		}
		if _, ok := schemas[cred.SchemaID]; !ok {
			return "", dErrors.Newf(dErrors.CodeInvalidStructure, "schema %s not provided", cred.SchemaID)
		}
		if err := checkCredentialRestrictions(req, g, cred); err != nil {
			return "", err
		}

		values, err := signedValues(cred.Values, ms)
		if err != nil {
			return "", err
		}
		sub := cl.SubProofRequest{}
		for _, ref := range g.referents {
			name := s.Canonical(req.RequestedAttributes[ref].Name)
			v, ok := cred.Values[name]
			if !ok {
				return "", dErrors.Newf(dErrors.CodeInvalidStructure, "credential %s has no attribute %q", g.credID, name)
			}
			if slices.Contains(g.revealed, ref) {
				if !slices.Contains(sub.Revealed, name) {
					sub.Revealed = append(sub.Revealed, name)
				}
				out.RequestedProof.RevealedAttrs[ref] = models.RevealedAttributeInfo{SubProofIndex: idx, Raw: v.Raw, Encoded: v.Encoded}
			} else {
				out.RequestedProof.UnrevealedAttrs[ref] = models.SubProofReferent{SubProofIndex: idx}
			}
		}
		for i, pi := range g.predicates {
			sub.Predicates = append(sub.Predicates, predicateOf(pi))
			out.RequestedProof.Predicates[g.predRefs[i]] = models.SubProofReferent{SubProofIndex: idx}
		}

		var nrp *revocation.Proof
		if g.timestamp != nil {
			if nrp, err = nonRevocationProof(cred, &cd, revStates, *g.timestamp); err != nil {
				return "", err
			}
		}
		var extraC []*big.Int
		if nrp != nil {
			extraC = nrp.CList()
		}
		if err := builder.AddSubProof(cd.Value.Primary, cred.Signature.P, values, sub, extraC); err != nil {
			return "", err
		}
		nonRevoc = append(nonRevoc, nrp)
		out.Identifiers = append(out.Identifiers, models.Identifier{
			SchemaID:  cred.SchemaID,
			CredDefID: cred.CredDefID,
			RevRegID:  cred.RevRegID,
			Timestamp: g.timestamp,
		})
	}

	primaries, agg := builder.Finalize(nonce)
	out.Proof.AggregatedProof = agg
	out.Proof.Proofs = make([]models.SubProof, len(primaries))
	for i, pp := range primaries {
		out.Proof.Proofs[i] = models.SubProof{PrimaryProof: pp, NonRevocProof: nonRevoc[i]}
	}
	p.opts.logger.DebugContext(ctx, "proof created", "sub_proofs", len(primaries))
	return encode(out)
}

// groupReferents assigns every referent to its (credential, timestamp)
// group. Groups are ordered by their first referent: attributes by name,
// then predicates by name.
func groupReferents(req *models.ProofRequest, requested *models.RequestedCredentials) (map[string]*proofGroup, []string, error) {
	groups := make(map[string]*proofGroup)
	var order []string
	group := func(credID string, ts *uint64) *proofGroup {
		k := groupKey(credID, ts)
		g, ok := groups[k]
		if !ok {
			g = &proofGroup{credID: credID, timestamp: ts}
			groups[k] = g
			order = append(order, k)
		}
		return g
	}

	attrRefs := make([]string, 0, len(req.RequestedAttributes))
	for ref := range req.RequestedAttributes {
		attrRefs = append(attrRefs, ref)
	}
	sort.Strings(attrRefs)
	for _, ref := range attrRefs {
		if _, ok := requested.SelfAttestedAttributes[ref]; ok {
			continue
		}
		ra, ok := requested.RequestedAttributes[ref]
		if !ok {
			return nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %s is not answered", ref)
		}
		g := group(ra.CredID, ra.Timestamp)
		g.referents = append(g.referents, ref)
		if ra.Revealed {
			g.revealed = append(g.revealed, ref)
		}
	}

	predRefs := make([]string, 0, len(req.RequestedPredicates))
	for ref := range req.RequestedPredicates {
		predRefs = append(predRefs, ref)
	}
	sort.Strings(predRefs)
	for _, ref := range predRefs {
		rp, ok := requested.RequestedPredicates[ref]
		if !ok {
			return nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate %s is not answered", ref)
		}
		g := group(rp.CredID, rp.Timestamp)
		g.predicates = append(g.predicates, req.RequestedPredicates[ref])
		g.predRefs = append(g.predRefs, ref)
	}
	return groups, order, nil
}

func checkCredentialRestrictions(req *models.ProofRequest, g *proofGroup, cred *models.Credential) error {
	tags := models.CredentialTags(cred, nil)
	check := func(ref string, restrictions json.RawMessage) error {
		ok, err := matchRestrictions(restrictions, tags)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "credential %s does not satisfy the restrictions of %s", g.credID, ref)
		}
		return nil
	}
	for _, ref := range g.referents {
		if err := check(ref, req.RequestedAttributes[ref].Restrictions); err != nil {
			return err
		}
	}
	for i, ref := range g.predRefs {
		if err := check(ref, g.predicates[i].Restrictions); err != nil {
			return err
		}
	}
	return nil
}

func nonRevocationProof(cred *models.Credential, cd *models.CredentialDefinition, states models.RevocationStates, ts uint64) (*revocation.Proof, error) {
	if cred.RevRegID == nil || cred.Signature.R == nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "timestamp given for a credential that cannot be revoked")
	}
	if cd.Value.Revocation == nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s has no revocation key", cd.ID)
	}
	state, ok := states[*cred.RevRegID][strconv.FormatUint(ts, 10)]
	if !ok || state == nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "no revocation state for %s at %d", *cred.RevRegID, ts)
	}
	return revocation.Prove(cd.Value.Revocation, cred.Signature.R, &state.Witness, &state.RevReg), nil
}

func (p *Prover) openTails(reader command.BlobReaderHandle, def *models.RevRegDef) (*revocation.Tails, func(), error) {
	blob, err := p.blobs.OpenBlob(reader, def.Value.TailsLocation, def.Value.TailsHash)
	if err != nil {
		return nil, nil, err
	}
	return revocation.NewTails(blob, def.Value.MaxCredNum), func() { _ = blob.Close() }, nil
}

func parseRevocationInputs(revRegDefJSON, deltaJSON, credRevID string) (*models.RevRegDef, *models.RevocationRegistryDelta, uint32, error) {
	var def models.RevRegDef
	if err := validation.DecodeJSON(revRegDefJSON, &def); err != nil {
		return nil, nil, 0, err
	}
	var delta models.RevocationRegistryDelta
	if err := validation.DecodeJSON(deltaJSON, &delta); err != nil {
		return nil, nil, 0, err
	}
	idx, err := strconv.ParseUint(credRevID, 10, 32)
	if err != nil {
		return nil, nil, 0, dErrors.Newf(dErrors.CodeInvalidUserRevocID, "invalid revocation id %q", credRevID)
	}
	return &def, &delta, uint32(idx), nil
}

// CreateRevocationState builds the witness of credRevID against the
// registry reached by delta, which must be the accumulated delta from the
// registry's creation.
func (p *Prover) CreateRevocationState(reader command.BlobReaderHandle, revRegDefJSON, deltaJSON string, timestamp uint64, credRevID string) (string, error) {
	def, delta, idx, err := parseRevocationInputs(revRegDefJSON, deltaJSON, credRevID)
	if err != nil {
		return "", err
	}
	tails, closeTails, err := p.openTails(reader, def)
	if err != nil {
		return "", err
	}
	defer closeTails()
	w, err := revocation.NewWitness(tails, def.Value.MaxCredNum, idx, def.Value.IssuanceType.ByDefault(), &delta.Value)
	if err != nil {
		return "", err
	}
	return encode(revocation.State{
		Witness:   *w,
		RevReg:    revocation.Registry{Accum: delta.Value.Accum},
		Timestamp: timestamp,
	})
}

// UpdateRevocationState moves a state along delta, which must start at the
// state's accumulator.
func (p *Prover) UpdateRevocationState(reader command.BlobReaderHandle, stateJSON, revRegDefJSON, deltaJSON string, timestamp uint64, credRevID string) (string, error) {
	def, delta, idx, err := parseRevocationInputs(revRegDefJSON, deltaJSON, credRevID)
	if err != nil {
		return "", err
	}
	var state revocation.State
	if err := validation.DecodeJSON(stateJSON, &state); err != nil {
		return "", err
	}
	if delta.Value.PrevAccum != nil && !delta.Value.PrevAccum.Equal(&state.RevReg.Accum) {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "delta does not start at the state's accumulator")
	}
	tails, closeTails, err := p.openTails(reader, def)
	if err != nil {
		return "", err
	}
	defer closeTails()
	if err := state.Witness.Update(tails, def.Value.MaxCredNum, idx, &delta.Value); err != nil {
		return "", err
	}
	state.RevReg = revocation.Registry{Accum: delta.Value.Accum}
	state.Timestamp = timestamp
	return encode(state)
}
