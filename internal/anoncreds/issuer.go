package anoncreds

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"slices"
	"strconv"
	"sync"

	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/models"
	"indy/internal/anoncreds/revocation"
	"indy/internal/blobstorage"
	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	s "indy/pkg/string"
	"indy/pkg/validation"
)

// Issuer implements the issuer commands.
type Issuer struct {
	store wallet.Store
	blobs *blobstorage.Service
	opts  options

	// registry state is read-modify-write across several records
	regMu sync.Mutex
}

// NewIssuer creates an issuer over store. blobs serves tails files.
func NewIssuer(store wallet.Store, blobs *blobstorage.Service, opts ...Option) *Issuer {
	return &Issuer{store: store, blobs: blobs, opts: newOptions(opts)}
}

// CreateSchema derives a schema id and document. Nothing is stored.
func (i *Issuer) CreateSchema(issuerDid, name, version, attrsJSON string) (string, string, error) {
	if !validation.IsDID(issuerDid) {
		return "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid issuer did %q", issuerDid)
	}
	var attrs []string
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "attribute names must be a json array of strings")
	}
	if _, err := models.CanonicalAttrs(attrs); err != nil {
		return "", "", err
	}
	schema := models.Schema{
		Ver:       models.Version,
		ID:        models.SchemaID(issuerDid, name, version),
		Name:      name,
		Version:   version,
		AttrNames: attrs,
	}
	if err := validation.Validate(&schema); err != nil {
		return "", "", err
	}
	out, err := encode(schema)
	if err != nil {
		return "", "", err
	}
	return schema.ID, out, nil
}

// CredDefDraft is the outcome of the first phase of credential definition
// creation: everything but the keys.
type CredDefDraft struct {
	ID                string
	SchemaID          string
	Tag               string
	Attrs             []string
	SupportRevocation bool
	rotate            bool
}

// CredDefKeys is a generated key set waiting to be stored.
type CredDefKeys struct {
	Draft   *CredDefDraft
	CredDef *models.CredentialDefinition
	Private *models.CredDefPrivate
	Proof   *cl.KeyCorrectnessProof
}

type temporaryCredDef struct {
	CredDef *models.CredentialDefinition `json:"cred_def"`
	Private *models.CredDefPrivate       `json:"cred_def_priv_key"`
	Proof   *cl.KeyCorrectnessProof      `json:"cred_def_correctness_proof"`
}

// PrepareCredentialDefinition validates the inputs and refuses a
// duplicate before any expensive key generation.
func (i *Issuer) PrepareCredentialDefinition(ctx context.Context, h command.WalletHandle, issuerDid, schemaJSON, tag, sigType, configJSON string) (*CredDefDraft, error) {
	if !validation.IsDID(issuerDid) {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "invalid issuer did %q", issuerDid)
	}
	if sigType != "" && sigType != models.SignatureTypeCL {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unsupported signature type %q", sigType)
	}
	var schema models.Schema
	if err := validation.DecodeJSON(schemaJSON, &schema); err != nil {
		return nil, err
	}
	var cfg models.CredDefConfig
	if configJSON != "" {
		if err := validation.DecodeJSON(configJSON, &cfg); err != nil {
			return nil, err
		}
	}
	attrs, err := models.CanonicalAttrs(schema.AttrNames)
	if err != nil {
		return nil, err
	}
	ref := schema.ID
	if schema.SeqNo != nil {
		ref = strconv.FormatUint(uint64(*schema.SeqNo), 10)
	}
	id := models.CredDefID(issuerDid, ref, tag)
	exists, err := wallet.Exists(ctx, i.store, h, wallet.TypeCredDef, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, dErrors.Newf(dErrors.CodeCredDefAlreadyExists, "credential definition %s already exists", id)
	}
	return &CredDefDraft{ID: id, SchemaID: schema.ID, Tag: tag, Attrs: attrs, SupportRevocation: cfg.SupportRevocation}, nil
}

// GenerateCredentialDefinition creates the keys of a draft. It touches no
// wallet and is meant for the blocking pool.
func (i *Issuer) GenerateCredentialDefinition(d *CredDefDraft) (*CredDefKeys, error) {
	pk, sk, kcp, err := cl.NewKeys(d.Attrs, i.opts.modulusBits)
	if err != nil {
		return nil, err
	}
	keys := &CredDefKeys{
		Draft: d,
		CredDef: &models.CredentialDefinition{
			Ver:      models.Version,
			ID:       d.ID,
			SchemaID: d.SchemaID,
			Type:     models.SignatureTypeCL,
			Tag:      d.Tag,
			Value:    models.CredDefValue{Primary: pk},
		},
		Private: &models.CredDefPrivate{Primary: sk},
		Proof:   kcp,
	}
	if d.SupportRevocation {
		rpk, rsk := revocation.NewKeys()
		keys.CredDef.Value.Revocation = rpk
		keys.Private.Revocation = rsk
	}
	return keys, nil
}

// StoreCredentialDefinition persists generated keys and returns the id
// and public document.
func (i *Issuer) StoreCredentialDefinition(ctx context.Context, h command.WalletHandle, k *CredDefKeys) (string, string, error) {
	out, err := encode(k.CredDef)
	if err != nil {
		return "", "", err
	}
	if k.Draft.rotate {
		tmp := temporaryCredDef{CredDef: k.CredDef, Private: k.Private, Proof: k.Proof}
		raw, err := encode(tmp)
		if err != nil {
			return "", "", err
		}
		if err := wallet.Upsert(ctx, i.store, h, wallet.TypeTemporaryCredDef, k.CredDef.ID, raw); err != nil {
			return "", "", err
		}
		return k.CredDef.ID, out, nil
	}
	if err := i.store.AddRecord(ctx, h, wallet.TypeCredDef, k.CredDef.ID, out, nil); err != nil {
		if dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists) {
			return "", "", dErrors.Newf(dErrors.CodeCredDefAlreadyExists, "credential definition %s already exists", k.CredDef.ID)
		}
		return "", "", err
	}
	written := []string{wallet.TypeCredDef}
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeCredDefPrivate, k.CredDef.ID, k.Private, nil); err != nil {
		return "", "", i.unstore(ctx, h, k.CredDef.ID, written, err)
	}
	written = append(written, wallet.TypeCredDefPrivate)
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeCredDefProof, k.CredDef.ID, k.Proof, nil); err != nil {
		return "", "", i.unstore(ctx, h, k.CredDef.ID, written, err)
	}
	written = append(written, wallet.TypeCredDefProof)
	if err := i.store.AddRecord(ctx, h, wallet.TypeSchemaID, k.CredDef.ID, k.CredDef.SchemaID, nil); err != nil {
		return "", "", i.unstore(ctx, h, k.CredDef.ID, written, err)
	}
	i.opts.logger.InfoContext(ctx, "credential definition stored", "cred_def_id", k.CredDef.ID, "revocation", k.Private.Revocation != nil)
	return k.CredDef.ID, out, nil
}

// unstore deletes the records of id written before cause, newest first, so
// a failed store leaves nothing behind.
func (i *Issuer) unstore(ctx context.Context, h command.WalletHandle, id string, types []string, cause error) error {
	for n := len(types) - 1; n >= 0; n-- {
		if err := i.store.DeleteRecord(ctx, h, types[n], id); err != nil {
			i.opts.logger.WarnContext(ctx, "roll back credential definition", "cred_def_id", id, "type", types[n], "error", err)
		}
	}
	return cause
}

// CreateAndStoreCredentialDefinition runs every phase inline.
func (i *Issuer) CreateAndStoreCredentialDefinition(ctx context.Context, h command.WalletHandle, issuerDid, schemaJSON, tag, sigType, configJSON string) (string, string, error) {
	d, err := i.PrepareCredentialDefinition(ctx, h, issuerDid, schemaJSON, tag, sigType, configJSON)
	if err != nil {
		return "", "", err
	}
	k, err := i.GenerateCredentialDefinition(d)
	if err != nil {
		return "", "", err
	}
	return i.StoreCredentialDefinition(ctx, h, k)
}

// PrepareRotation starts the rotation of an existing credential definition.
func (i *Issuer) PrepareRotation(ctx context.Context, h command.WalletHandle, credDefID, configJSON string) (*CredDefDraft, error) {
	cd, err := wallet.GetObject[models.CredentialDefinition](ctx, i.store, h, wallet.TypeCredDef, credDefID)
	if err != nil {
		return nil, err
	}
	cfg := models.CredDefConfig{SupportRevocation: cd.Value.Revocation != nil}
	if configJSON != "" {
		if err := validation.DecodeJSON(configJSON, &cfg); err != nil {
			return nil, err
		}
	}
	var attrs []string
	for _, name := range cd.Value.Primary.Attrs() {
		if name != cl.MasterSecretName {
			attrs = append(attrs, name)
		}
	}
	return &CredDefDraft{
		ID:                cd.ID,
		SchemaID:          cd.SchemaID,
		Tag:               cd.Tag,
		Attrs:             attrs,
		SupportRevocation: cfg.SupportRevocation,
		rotate:            true,
	}, nil
}

// RotateCredentialDefinitionStart generates new keys for credDefID and
// keeps them aside until applied.
func (i *Issuer) RotateCredentialDefinitionStart(ctx context.Context, h command.WalletHandle, credDefID, configJSON string) (string, error) {
	d, err := i.PrepareRotation(ctx, h, credDefID, configJSON)
	if err != nil {
		return "", err
	}
	k, err := i.GenerateCredentialDefinition(d)
	if err != nil {
		return "", err
	}
	_, out, err := i.StoreCredentialDefinition(ctx, h, k)
	return out, err
}

// RotateCredentialDefinitionApply replaces the stored keys of credDefID
// with the ones generated by the last rotation start.
func (i *Issuer) RotateCredentialDefinitionApply(ctx context.Context, h command.WalletHandle, credDefID string) error {
	tmp, err := wallet.GetObject[temporaryCredDef](ctx, i.store, h, wallet.TypeTemporaryCredDef, credDefID)
	if err != nil {
		return err
	}
	if err := wallet.UpdateObject(ctx, i.store, h, wallet.TypeCredDef, credDefID, tmp.CredDef); err != nil {
		return err
	}
	if err := wallet.UpdateObject(ctx, i.store, h, wallet.TypeCredDefPrivate, credDefID, tmp.Private); err != nil {
		return err
	}
	if err := wallet.UpdateObject(ctx, i.store, h, wallet.TypeCredDefProof, credDefID, tmp.Proof); err != nil {
		return err
	}
	return i.store.DeleteRecord(ctx, h, wallet.TypeTemporaryCredDef, credDefID)
}

// CreateAndStoreRevocationRegistry allocates an accumulator for a
// revocable credential definition and writes its tails through writer.
func (i *Issuer) CreateAndStoreRevocationRegistry(ctx context.Context, h command.WalletHandle, issuerDid, revocDefType, tag, credDefID, configJSON string, writer command.BlobWriterHandle) (string, string, string, error) {
	if !validation.IsDID(issuerDid) {
		return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid issuer did %q", issuerDid)
	}
	if revocDefType != "" && revocDefType != models.RevocDefTypeCL {
		return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "unsupported revocation type %q", revocDefType)
	}
	cfg := models.RevRegConfig{}
	if configJSON != "" {
		if err := validation.DecodeJSON(configJSON, &cfg); err != nil {
			return "", "", "", err
		}
	}
	if cfg.IssuanceType == "" {
		cfg.IssuanceType = models.IssuanceOnDemand
	}
	if cfg.MaxCredNum == 0 {
		cfg.MaxCredNum = models.DefaultMaxCredNum
	}

	cd, err := wallet.GetObject[models.CredentialDefinition](ctx, i.store, h, wallet.TypeCredDef, credDefID)
	if err != nil {
		return "", "", "", err
	}
	if cd.Value.Revocation == nil {
		return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s does not support revocation", credDefID)
	}
	id := models.RevRegID(issuerDid, credDefID, tag)
	if ok, err := wallet.Exists(ctx, i.store, h, wallet.TypeRevRegDef, id); err != nil {
		return "", "", "", err
	} else if ok {
		return "", "", "", dErrors.Newf(dErrors.CodeWalletItemAlreadyExists, "revocation registry %s already exists", id)
	}

	rpk, rsk, err := revocation.NewRegistryKeys(cd.Value.Revocation, cfg.MaxCredNum)
	if err != nil {
		return "", "", "", err
	}
	w, err := i.blobs.CreateBlob(writer)
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := revocation.WriteTails(io.MultiWriter(w, &buf), cd.Value.Revocation, rsk, cfg.MaxCredNum); err != nil {
		w.Abort()
		return "", "", "", err
	}
	location, hash, err := w.Finalize()
	if err != nil {
		return "", "", "", err
	}
	tails := revocation.NewTails(bytes.NewReader(buf.Bytes()), cfg.MaxCredNum)
	reg, delta, err := revocation.NewRegistry(tails, cfg.MaxCredNum, cfg.IssuanceType.ByDefault())
	if err != nil {
		return "", "", "", err
	}

	def := models.RevRegDef{
		Ver:          models.Version,
		ID:           id,
		RevocDefType: models.RevocDefTypeCL,
		Tag:          tag,
		CredDefID:    credDefID,
		Value: models.RevRegDefValue{
			IssuanceType:  cfg.IssuanceType,
			MaxCredNum:    cfg.MaxCredNum,
			PublicKeys:    models.RevRegPublicKeys{AccumKey: rpk},
			TailsHash:     hash,
			TailsLocation: location,
		},
	}
	entry := models.RevocationRegistryDelta{Ver: models.Version, Value: *delta}
	entry.Value.Issued = []uint32{}
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeRevRegDef, id, def, nil); err != nil {
		return "", "", "", err
	}
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeRevRegDefPrivate, id, models.RevRegDefPrivate{Value: rsk}, nil); err != nil {
		return "", "", "", err
	}
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeRevReg, id, models.RevocationRegistry{Ver: models.Version, Value: *reg}, nil); err != nil {
		return "", "", "", err
	}
	info := models.RevRegInfo{ID: id, UsedIDs: []uint32{}, Revoked: []uint32{}, Timestamp: i.opts.now().Unix()}
	if err := wallet.AddObject(ctx, i.store, h, wallet.TypeRevRegInfo, id, info, nil); err != nil {
		return "", "", "", err
	}

	defJSON, err := encode(def)
	if err != nil {
		return "", "", "", err
	}
	entryJSON, err := encode(entry)
	if err != nil {
		return "", "", "", err
	}
	i.opts.logger.InfoContext(ctx, "revocation registry created", "rev_reg_id", id, "max_cred_num", cfg.MaxCredNum, "issuance_type", cfg.IssuanceType)
	return id, defJSON, entryJSON, nil
}

// CreateCredentialOffer binds a fresh nonce to a stored credential
// definition.
func (i *Issuer) CreateCredentialOffer(ctx context.Context, h command.WalletHandle, credDefID string) (string, error) {
	kcp, err := wallet.GetObject[cl.KeyCorrectnessProof](ctx, i.store, h, wallet.TypeCredDefProof, credDefID)
	if err != nil {
		return "", err
	}
	rec, err := i.store.GetRecord(ctx, h, wallet.TypeSchemaID, credDefID, wallet.DefaultRecordOptions())
	if err != nil {
		return "", err
	}
	offer := models.CredentialOffer{
		SchemaID:            rec.Value,
		CredDefID:           credDefID,
		KeyCorrectnessProof: &kcp,
		Nonce:               cl.N(cl.NewNonce()),
	}
	if models.IsQualified(credDefID) {
		offer.MethodName = "sov"
	}
	return encode(offer)
}

// CreateCredential signs the prover's request. With a registry id the
// credential gets the next free index; revRegDelta is empty when the
// registry issues by default.
func (i *Issuer) CreateCredential(ctx context.Context, h command.WalletHandle, offerJSON, requestJSON, valuesJSON, revRegID string, reader command.BlobReaderHandle) (credJSON, credRevID, revRegDelta string, err error) {
	var offer models.CredentialOffer
	if err := validation.DecodeJSON(offerJSON, &offer); err != nil {
		return "", "", "", err
	}
	var req models.CredentialRequest
	if err := validation.DecodeJSON(requestJSON, &req); err != nil {
		return "", "", "", err
	}
	var raw models.CredentialValues
	if err := json.Unmarshal([]byte(valuesJSON), &raw); err != nil {
		return "", "", "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed credential values")
	}
	if models.Unqualify(req.CredDefID) != models.Unqualify(offer.CredDefID) {
		return "", "", "", dErrors.New(dErrors.CodeInvalidStructure, "request and offer name different credential definitions")
	}

	cd, err := wallet.GetObject[models.CredentialDefinition](ctx, i.store, h, wallet.TypeCredDef, offer.CredDefID)
	if err != nil {
		return "", "", "", err
	}
	priv, err := wallet.GetObject[models.CredDefPrivate](ctx, i.store, h, wallet.TypeCredDefPrivate, offer.CredDefID)
	if err != nil {
		return "", "", "", err
	}
	if err := cl.VerifyBlinding(cd.Value.Primary, req.BlindedMS, req.BlindedMSCorrectnessProof, offer.Nonce.Int()); err != nil {
		return "", "", "", err
	}

	values, encoded, err := encodeValues(cd.Value.Primary, raw)
	if err != nil {
		return "", "", "", err
	}
	sig, proof, err := cl.Sign(cd.Value.Primary, priv.Primary, req.BlindedMS, encoded, req.Nonce.Int())
	if err != nil {
		return "", "", "", err
	}
	cred := models.Credential{
		SchemaID:                  offer.SchemaID,
		CredDefID:                 offer.CredDefID,
		Values:                    values,
		Signature:                 models.CredentialSignature{P: sig},
		SignatureCorrectnessProof: proof,
	}

	if revRegID != "" {
		if priv.Revocation == nil {
			return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s does not support revocation", offer.CredDefID)
		}
		idx, delta, err := i.issueIndex(ctx, h, revRegID, reader, cd.Value.Revocation, priv.Revocation, &cred)
		if err != nil {
			return "", "", "", err
		}
		credRevID = strconv.FormatUint(uint64(idx), 10)
		if delta != nil {
			if revRegDelta, err = encode(models.RevocationRegistryDelta{Ver: models.Version, Value: *delta}); err != nil {
				return "", "", "", err
			}
		}
	}

	credJSON, err = encode(cred)
	if err != nil {
		return "", "", "", err
	}
	return credJSON, credRevID, revRegDelta, nil
}

// encodeValues canonicalises attribute names, fills in missing encodings
// and checks that exactly the definition's attributes are present.
func encodeValues(pk *cl.PublicKey, raw models.CredentialValues) (models.CredentialValues, map[string]*big.Int, error) {
	values := make(models.CredentialValues, len(raw))
	encoded := make(map[string]*big.Int, len(raw))
	for name, v := range raw {
		c := s.Canonical(name)
		if _, dup := values[c]; dup {
			return nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "duplicate attribute %q", name)
		}
		if v.Encoded == "" {
			v.Encoded = cl.EncodeAttribute(v.Raw)
		}
		m, err := parseDecimal(v.Encoded, "encoded value of "+name)
		if err != nil {
			return nil, nil, err
		}
		values[c] = v
		encoded[c] = m
	}
	for _, name := range pk.Attrs() {
		if name == cl.MasterSecretName {
			continue
		}
		if _, ok := values[name]; !ok {
			return nil, nil, dErrors.Newf(dErrors.CodeInvalidStructure, "value for attribute %q is missing", name)
		}
	}
	if len(values) != len(pk.R)-1 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidStructure, "credential values do not match the credential definition")
	}
	return values, encoded, nil
}

type registryState struct {
	def   models.RevRegDef
	reg   models.RevocationRegistry
	info  models.RevRegInfo
	tails *revocation.Tails
	blob  *blobstorage.Blob
}

func (i *Issuer) loadRegistry(ctx context.Context, h command.WalletHandle, revRegID string, reader command.BlobReaderHandle) (*registryState, error) {
	def, err := wallet.GetObject[models.RevRegDef](ctx, i.store, h, wallet.TypeRevRegDef, revRegID)
	if err != nil {
		return nil, err
	}
	reg, err := wallet.GetObject[models.RevocationRegistry](ctx, i.store, h, wallet.TypeRevReg, revRegID)
	if err != nil {
		return nil, err
	}
	info, err := wallet.GetObject[models.RevRegInfo](ctx, i.store, h, wallet.TypeRevRegInfo, revRegID)
	if err != nil {
		return nil, err
	}
	blob, err := i.blobs.OpenBlob(reader, def.Value.TailsLocation, def.Value.TailsHash)
	if err != nil {
		return nil, err
	}
	return &registryState{
		def:   def,
		reg:   reg,
		info:  info,
		tails: revocation.NewTails(blob, def.Value.MaxCredNum),
		blob:  blob,
	}, nil
}

func (i *Issuer) saveRegistry(ctx context.Context, h command.WalletHandle, st *registryState) error {
	st.info.Timestamp = i.opts.now().Unix()
	if err := wallet.UpdateObject(ctx, i.store, h, wallet.TypeRevReg, st.def.ID, st.reg); err != nil {
		return err
	}
	return wallet.UpdateObject(ctx, i.store, h, wallet.TypeRevRegInfo, st.def.ID, st.info)
}

// valid lists the indices currently in the accumulator.
func (st *registryState) valid() []uint32 {
	var out []uint32
	if st.def.Value.IssuanceType.ByDefault() {
		for j := uint32(1); j <= st.def.Value.MaxCredNum; j++ {
			out = append(out, j)
		}
	} else {
		out = slices.Clone(st.info.UsedIDs)
	}
	return slices.DeleteFunc(out, func(j uint32) bool { return slices.Contains(st.info.Revoked, j) })
}

func (i *Issuer) issueIndex(ctx context.Context, h command.WalletHandle, revRegID string, reader command.BlobReaderHandle, pk *revocation.PublicKey, sk *revocation.PrivateKey, cred *models.Credential) (uint32, *revocation.Delta, error) {
	i.regMu.Lock()
	defer i.regMu.Unlock()

	st, err := i.loadRegistry(ctx, h, revRegID, reader)
	if err != nil {
		return 0, nil, err
	}
	defer st.blob.Close() //nolint:errcheck
	if models.Unqualify(st.def.CredDefID) != models.Unqualify(cred.CredDefID) {
		return 0, nil, dErrors.New(dErrors.CodeInvalidStructure, "revocation registry belongs to another credential definition")
	}
	idx := st.info.CurrID + 1
	if idx > st.def.Value.MaxCredNum {
		return 0, nil, dErrors.Newf(dErrors.CodeRevocationRegistryFull, "revocation registry %s is full", revRegID)
	}
	rsk, err := wallet.GetObject[models.RevRegDefPrivate](ctx, i.store, h, wallet.TypeRevRegDefPrivate, revRegID)
	if err != nil {
		return 0, nil, err
	}

	var delta *revocation.Delta
	if !st.def.Value.IssuanceType.ByDefault() {
		if delta, err = st.reg.Value.Apply(st.tails, st.def.Value.MaxCredNum, []uint32{idx}, nil); err != nil {
			return 0, nil, err
		}
	}
	st.info.CurrID = idx
	st.info.UsedIDs = append(st.info.UsedIDs, idx)

	witness, err := revocation.NewWitness(st.tails, st.def.Value.MaxCredNum, idx, false, &revocation.Delta{Issued: st.valid()})
	if err != nil {
		return 0, nil, err
	}
	if err := i.saveRegistry(ctx, h, st); err != nil {
		return 0, nil, err
	}

	id := revRegID
	reg := st.reg.Value
	cred.RevRegID = &id
	cred.Signature.R = revocation.Sign(pk, sk, rsk.Value, idx)
	cred.RevReg = &reg
	cred.Witness = witness
	return idx, delta, nil
}

// RevokeCredential removes credRevID from the accumulator and returns the
// delta to publish.
func (i *Issuer) RevokeCredential(ctx context.Context, h command.WalletHandle, reader command.BlobReaderHandle, revRegID, credRevID string) (string, error) {
	idx64, err := strconv.ParseUint(credRevID, 10, 32)
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidUserRevocID, "invalid revocation id %q", credRevID)
	}
	idx := uint32(idx64)

	i.regMu.Lock()
	defer i.regMu.Unlock()

	st, err := i.loadRegistry(ctx, h, revRegID, reader)
	if err != nil {
		return "", err
	}
	defer st.blob.Close() //nolint:errcheck
	if !slices.Contains(st.valid(), idx) {
		return "", dErrors.Newf(dErrors.CodeInvalidUserRevocID, "credential %d of %s is not issued", idx, revRegID)
	}
	delta, err := st.reg.Value.Apply(st.tails, st.def.Value.MaxCredNum, nil, []uint32{idx})
	if err != nil {
		return "", err
	}
	st.info.Revoked = append(st.info.Revoked, idx)
	slices.Sort(st.info.Revoked)
	if err := i.saveRegistry(ctx, h, st); err != nil {
		return "", err
	}
	i.opts.logger.InfoContext(ctx, "credential revoked", "rev_reg_id", revRegID, "cred_rev_id", idx)
	return encode(models.RevocationRegistryDelta{Ver: models.Version, Value: *delta})
}

// MergeRevocationRegistryDeltas composes two consecutive deltas.
func MergeRevocationRegistryDeltas(aJSON, bJSON string) (string, error) {
	var a, b models.RevocationRegistryDelta
	if err := validation.DecodeJSON(aJSON, &a); err != nil {
		return "", err
	}
	if err := validation.DecodeJSON(bJSON, &b); err != nil {
		return "", err
	}
	merged, err := revocation.Merge(&a.Value, &b.Value)
	if err != nil {
		return "", err
	}
	return encode(models.RevocationRegistryDelta{Ver: models.Version, Value: *merged})
}
