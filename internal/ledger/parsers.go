package ledger

import (
	"encoding/json"
	"errors"
	"strconv"

	"indy/internal/anoncreds/models"
	"indy/internal/ledger/stateproof"
	"indy/pkg/canonical"
	dErrors "indy/pkg/domain-errors"
)

// Reply operations.
const (
	OpReply   = "REPLY"
	OpReqNack = "REQNACK"
	OpReject  = "REJECT"
)

type reply struct {
	Op     string          `json:"op"`
	Result json.RawMessage `json:"result"`
	Reason string          `json:"reason"`
}

// ReplyResult extracts the "result" of a successful reply.
func ReplyResult(responseJSON string) (json.RawMessage, error) {
	var r reply
	if err := json.Unmarshal([]byte(responseJSON), &r); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "response is not a JSON object")
	}
	switch r.Op {
	case OpReply:
		if isNull(r.Result) {
			return nil, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "reply has no result")
		}
		return r.Result, nil
	case OpReqNack, OpReject:
		return nil, dErrors.Newf(dErrors.CodeLedgerInvalidTransaction, "request rejected: %s", r.Reason)
	}
	return nil, dErrors.Newf(dErrors.CodeLedgerInvalidTransaction, "unexpected reply %q", r.Op)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// result parses a read reply and checks its state proof when it has one.
func (s *Service) result(responseJSON string, v any) error {
	raw, err := ReplyResult(responseJSON)
	if err != nil {
		return err
	}
	err = stateproof.NewVerifier(nil, 0, s.parsers).Verify(raw)
	if err != nil && !errors.Is(err, stateproof.ErrNoProof) {
		return err
	}
	if err := canonical.Decode(raw, v); err != nil {
		return dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed reply result")
	}
	return nil
}

func notFound(what string) error {
	return dErrors.Newf(dErrors.CodeLedgerNotFound, "%s not found on the ledger", what)
}

func encodeOutput(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode ledger entity")
	}
	return string(raw), nil
}

// NymData is the parsed answer to GET_NYM.
type NymData struct {
	Did    string  `json:"did"`
	Verkey *string `json:"verkey"`
	Role   *string `json:"role"`
}

// ParseGetNym parses a GET_NYM reply.
func (s *Service) ParseGetNym(responseJSON string) (*NymData, error) {
	var r struct {
		Dest string  `json:"dest"`
		Data *string `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return nil, err
	}
	if r.Data == nil {
		return nil, notFound("nym")
	}
	var nym struct {
		Dest   string  `json:"dest"`
		Verkey *string `json:"verkey"`
		Role   *string `json:"role"`
	}
	if err := json.Unmarshal([]byte(*r.Data), &nym); err != nil {
		return nil, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed nym data")
	}
	if nym.Dest == "" {
		nym.Dest = r.Dest
	}
	return &NymData{Did: nym.Dest, Verkey: nym.Verkey, Role: nym.Role}, nil
}

// ParseGetNymResponse parses a GET_NYM reply into {did, verkey, role}.
func (s *Service) ParseGetNymResponse(responseJSON string) (string, error) {
	nym, err := s.ParseGetNym(responseJSON)
	if err != nil {
		return "", err
	}
	return encodeOutput(nym)
}

// ParseGetAttrib returns the attribute document of a GET_ATTR reply.
func (s *Service) ParseGetAttrib(responseJSON string) (string, error) {
	var r struct {
		Data *string `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", err
	}
	if r.Data == nil {
		return "", notFound("attribute")
	}
	return *r.Data, nil
}

// ParseGetSchemaResponse parses a GET_SCHEMA reply into the schema id and
// document.
func (s *Service) ParseGetSchemaResponse(responseJSON string) (string, string, error) {
	var r struct {
		Dest  string  `json:"dest"`
		SeqNo *uint32 `json:"seqNo"`
		Data  struct {
			Name      string   `json:"name"`
			Version   string   `json:"version"`
			AttrNames []string `json:"attr_names"`
		} `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", "", err
	}
	if r.SeqNo == nil || r.Data.AttrNames == nil {
		return "", "", notFound("schema")
	}
	schema := models.Schema{
		Ver:       models.Version,
		ID:        models.SchemaID(r.Dest, r.Data.Name, r.Data.Version),
		Name:      r.Data.Name,
		Version:   r.Data.Version,
		AttrNames: r.Data.AttrNames,
		SeqNo:     r.SeqNo,
	}
	out, err := encodeOutput(schema)
	return schema.ID, out, err
}

type ledgerCredDef struct {
	Ver      string          `json:"ver"`
	ID       string          `json:"id"`
	SchemaID string          `json:"schemaId"`
	Type     string          `json:"type"`
	Tag      string          `json:"tag"`
	Value    json.RawMessage `json:"value"`
}

// ParseGetCredDefResponse parses a GET_CRED_DEF reply into the definition
// id and document.
func (s *Service) ParseGetCredDefResponse(responseJSON string) (string, string, error) {
	var r struct {
		Origin        string          `json:"origin"`
		Ref           json.Number     `json:"ref"`
		SignatureType string          `json:"signature_type"`
		Tag           *string         `json:"tag"`
		Data          json.RawMessage `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", "", err
	}
	if isNull(r.Data) {
		return "", "", notFound("credential definition")
	}
	tag := "tag"
	if r.Tag != nil {
		tag = *r.Tag
	}
	schemaID := r.Ref.String()
	if _, err := strconv.ParseUint(schemaID, 10, 32); err != nil {
		return "", "", dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed schema reference")
	}
	cd := ledgerCredDef{
		Ver:      models.Version,
		ID:       models.CredDefID(r.Origin, schemaID, tag),
		SchemaID: schemaID,
		Type:     r.SignatureType,
		Tag:      tag,
		Value:    r.Data,
	}
	out, err := encodeOutput(cd)
	return cd.ID, out, err
}

// ParseGetRevocRegDefResponse parses a GET_REVOC_REG_DEF reply into the
// registry id and definition.
func (s *Service) ParseGetRevocRegDefResponse(responseJSON string) (string, string, error) {
	var r struct {
		Data *struct {
			ID           string          `json:"id"`
			RevocDefType string          `json:"revocDefType"`
			Tag          string          `json:"tag"`
			CredDefID    string          `json:"credDefId"`
			Value        json.RawMessage `json:"value"`
		} `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", "", err
	}
	if r.Data == nil {
		return "", "", notFound("revocation registry definition")
	}
	def := map[string]any{
		"ver":          models.Version,
		"id":           r.Data.ID,
		"revocDefType": r.Data.RevocDefType,
		"tag":          r.Data.Tag,
		"credDefId":    r.Data.CredDefID,
		"value":        r.Data.Value,
	}
	out, err := encodeOutput(def)
	return r.Data.ID, out, err
}

// ParseGetRevocRegResponse parses a GET_REVOC_REG reply into the registry
// id, the accumulator document and the time it was written.
func (s *Service) ParseGetRevocRegResponse(responseJSON string) (string, string, uint64, error) {
	var r struct {
		RevocRegDefID string  `json:"revocRegDefId"`
		TxnTime       *uint64 `json:"txnTime"`
		Data          *struct {
			Value json.RawMessage `json:"value"`
		} `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", "", 0, err
	}
	if r.Data == nil || r.TxnTime == nil {
		return "", "", 0, notFound("revocation registry")
	}
	out, err := encodeOutput(map[string]any{"ver": models.Version, "value": r.Data.Value})
	return r.RevocRegDefID, out, *r.TxnTime, err
}

type accumEntry struct {
	Value struct {
		Accum json.RawMessage `json:"accum"`
	} `json:"value"`
	TxnTime uint64 `json:"txnTime"`
}

// ParseGetRevocRegDeltaResponse parses a GET_REVOC_REG_DELTA reply into
// the registry id, the delta document and the time of its last entry.
func (s *Service) ParseGetRevocRegDeltaResponse(responseJSON string) (string, string, uint64, error) {
	var r struct {
		RevocRegDefID string `json:"revocRegDefId"`
		Data          *struct {
			Value struct {
				AccumFrom *accumEntry `json:"accum_from"`
				AccumTo   *accumEntry `json:"accum_to"`
				Issued    []uint32    `json:"issued"`
				Revoked   []uint32    `json:"revoked"`
			} `json:"value"`
		} `json:"data"`
	}
	if err := s.result(responseJSON, &r); err != nil {
		return "", "", 0, err
	}
	if r.Data == nil || r.Data.Value.AccumTo == nil {
		return "", "", 0, notFound("revocation registry delta")
	}
	v := r.Data.Value
	value := map[string]any{
		"accum":   v.AccumTo.Value.Accum,
		"issued":  nonNil(v.Issued),
		"revoked": nonNil(v.Revoked),
	}
	if v.AccumFrom != nil {
		value["prevAccum"] = v.AccumFrom.Value.Accum
	}
	out, err := encodeOutput(map[string]any{"ver": models.Version, "value": value})
	return r.RevocRegDefID, out, v.AccumTo.TxnTime, err
}

func nonNil(v []uint32) []uint32 {
	if v == nil {
		return []uint32{}
	}
	return v
}

// ResponseMetadata describes where a reply sits in the ledger.
type ResponseMetadata struct {
	SeqNo       *uint64 `json:"seqNo,omitempty"`
	TxnTime     *uint64 `json:"txnTime,omitempty"`
	LastTxnTime *uint64 `json:"lastTxnTime,omitempty"`
	LastSeqNo   *uint64 `json:"lastSeqNo,omitempty"`
}

// GetResponseMetadata extracts the ledger position of a reply. Write
// replies carry it in txnMetadata; read replies at the top of the result.
func (s *Service) GetResponseMetadata(responseJSON string) (string, error) {
	raw, err := ReplyResult(responseJSON)
	if err != nil {
		return "", err
	}
	var r struct {
		SeqNo       *uint64 `json:"seqNo"`
		TxnTime     *uint64 `json:"txnTime"`
		LastSeqNo   *uint64 `json:"lastSeqNo"`
		TxnMetadata *struct {
			SeqNo   *uint64 `json:"seqNo"`
			TxnTime *uint64 `json:"txnTime"`
		} `json:"txnMetadata"`
		StateProof *stateproof.Proof `json:"state_proof"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed reply result")
	}
	meta := ResponseMetadata{SeqNo: r.SeqNo, TxnTime: r.TxnTime, LastSeqNo: r.LastSeqNo}
	if r.TxnMetadata != nil {
		meta.SeqNo, meta.TxnTime = r.TxnMetadata.SeqNo, r.TxnMetadata.TxnTime
	}
	if r.StateProof != nil && r.StateProof.MultiSignature != nil {
		ts := r.StateProof.MultiSignature.Value.Timestamp
		meta.LastTxnTime = &ts
	}
	return encodeOutput(meta)
}
