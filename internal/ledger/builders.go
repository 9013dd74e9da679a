package ledger

import (
	"encoding/json"
	"strconv"
	"strings"

	"indy/internal/anoncreds/models"
	"indy/internal/did"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// defaultSubmitter signs nothing; it fills "identifier" on reads sent
// without a submitter.
const defaultSubmitter = "LibindyDid111111111111"

func (s *Service) request(submitter string, op map[string]any) (string, error) {
	if submitter == "" {
		submitter = defaultSubmitter
	}
	return encodeRequest(Request{
		ReqID:           NextReqID(),
		Identifier:      did.Unqualify(submitter),
		Operation:       op,
		ProtocolVersion: s.protocolVersion(),
	})
}

func op(txnType string) map[string]any {
	return map[string]any{"type": txnType}
}

func setOpt[T any](o map[string]any, key string, v *T) {
	if v != nil {
		o[key] = *v
	}
}

// BuildGetDdoRequest builds a GET_DDO request.
func (s *Service) BuildGetDdoRequest(submitter, target string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if err := checkDid(target, true, "target did"); err != nil {
		return "", err
	}
	o := op(TxnGetDDO)
	o["dest"] = did.Unqualify(target)
	return s.request(submitter, o)
}

// BuildNymRequest builds a NYM request. A nil role leaves the role
// untouched and an empty role clears it.
func (s *Service) BuildNymRequest(submitter, target string, verkey, alias, role *string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if err := checkDid(target, true, "target did"); err != nil {
		return "", err
	}
	o := op(TxnNym)
	o["dest"] = did.Unqualify(target)
	setOpt(o, "verkey", verkey)
	setOpt(o, "alias", alias)
	if role != nil {
		switch code, ok := roles[*role]; {
		case *role == "":
			o["role"] = nil
		case ok:
			o["role"] = code
		default:
			if !isRoleCode(*role) {
				return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unknown role %q", *role)
			}
			o["role"] = *role
		}
	}
	return s.request(submitter, o)
}

func isRoleCode(r string) bool {
	for _, code := range roles {
		if code == r {
			return true
		}
	}
	return false
}

// BuildAttribRequest builds an ATTRIB request. At least one of hash, raw
// and enc is required; raw must be JSON.
func (s *Service) BuildAttribRequest(submitter, target string, hash, raw, enc *string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if err := checkDid(target, true, "target did"); err != nil {
		return "", err
	}
	if hash == nil && raw == nil && enc == nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "either raw or hash or enc must be specified")
	}
	if raw != nil {
		if _, err := rawJSON(*raw, "raw attribute"); err != nil {
			return "", err
		}
	}
	o := op(TxnAttrib)
	o["dest"] = did.Unqualify(target)
	setOpt(o, "hash", hash)
	setOpt(o, "raw", raw)
	setOpt(o, "enc", enc)
	return s.request(submitter, o)
}

// BuildGetAttribRequest builds a GET_ATTR request for exactly one of raw
// (the attribute name), hash and enc.
func (s *Service) BuildGetAttribRequest(submitter, target string, raw, hash, enc *string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if err := checkDid(target, true, "target did"); err != nil {
		return "", err
	}
	given := 0
	for _, v := range []*string{raw, hash, enc} {
		if v != nil {
			given++
		}
	}
	if given != 1 {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "exactly one of raw, hash and enc must be specified")
	}
	o := op(TxnGetAttr)
	o["dest"] = did.Unqualify(target)
	setOpt(o, "raw", raw)
	setOpt(o, "hash", hash)
	setOpt(o, "enc", enc)
	return s.request(submitter, o)
}

// BuildGetNymRequest builds a GET_NYM request.
func (s *Service) BuildGetNymRequest(submitter, target string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if err := checkDid(target, true, "target did"); err != nil {
		return "", err
	}
	o := op(TxnGetNym)
	o["dest"] = did.Unqualify(target)
	return s.request(submitter, o)
}

// BuildSchemaRequest builds a SCHEMA request from a schema document.
func (s *Service) BuildSchemaRequest(submitter, schemaJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	var schema models.Schema
	if err := validation.DecodeJSON(schemaJSON, &schema); err != nil {
		return "", err
	}
	o := op(TxnSchema)
	o["data"] = map[string]any{
		"name":       schema.Name,
		"version":    schema.Version,
		"attr_names": schema.AttrNames,
	}
	return s.request(submitter, o)
}

// BuildGetSchemaRequest builds a GET_SCHEMA request for a schema id.
func (s *Service) BuildGetSchemaRequest(submitter, id string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	issuer, name, version, err := models.SchemaIDParts(id)
	if err != nil {
		return "", err
	}
	o := op(TxnGetSchema)
	o["dest"] = did.Unqualify(issuer)
	o["data"] = map[string]any{"name": name, "version": version}
	return s.request(submitter, o)
}

// BuildCredDefRequest builds a CRED_DEF request. The definition must
// reference its schema by sequence number.
func (s *Service) BuildCredDefRequest(submitter, credDefJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	var cd models.CredentialDefinition
	if err := validation.DecodeJSON(credDefJSON, &cd); err != nil {
		return "", err
	}
	ref, err := strconv.ParseUint(cd.SchemaID, 10, 32)
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "schema id %q is not a sequence number", cd.SchemaID)
	}
	o := op(TxnCredDef)
	o["ref"] = ref
	o["signature_type"] = cd.Type
	o["tag"] = cd.Tag
	o["data"] = cd.Value
	return s.request(submitter, o)
}

// BuildGetCredDefRequest builds a GET_CRED_DEF request for a definition id.
func (s *Service) BuildGetCredDefRequest(submitter, id string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	issuer, schemaRef, tag, err := models.CredDefIDParts(id)
	if err != nil {
		return "", err
	}
	ref, err := strconv.ParseUint(schemaRef, 10, 32)
	if err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %q does not reference a schema sequence number", id)
	}
	o := op(TxnGetCredDef)
	o["ref"] = ref
	o["signature_type"] = models.SignatureTypeCL
	o["origin"] = did.Unqualify(issuer)
	o["tag"] = tag
	return s.request(submitter, o)
}

// NodeData is the payload of a NODE request.
type NodeData struct {
	Alias      string   `json:"alias" validate:"notblank"`
	ClientIP   string   `json:"client_ip,omitempty" validate:"omitempty,ip"`
	ClientPort int      `json:"client_port,omitempty" validate:"omitempty,min=1,max=65535"`
	NodeIP     string   `json:"node_ip,omitempty" validate:"omitempty,ip"`
	NodePort   int      `json:"node_port,omitempty" validate:"omitempty,min=1,max=65535"`
	Services   []string `json:"services,omitempty" validate:"omitempty,dive,eq=VALIDATOR"`
	BlsKey     string   `json:"blskey,omitempty"`
	BlsKeyPop  string   `json:"blskey_pop,omitempty" validate:"required_with=BlsKey"`
}

// BuildNodeRequest builds a NODE request.
func (s *Service) BuildNodeRequest(submitter, target, dataJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if target == "" {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "target is required")
	}
	var data NodeData
	if err := validation.DecodeJSON(dataJSON, &data); err != nil {
		return "", err
	}
	o := op(TxnNode)
	o["dest"] = target
	o["data"] = data
	return s.request(submitter, o)
}

// BuildGetValidatorInfoRequest builds a GET_VALIDATOR_INFO request.
func (s *Service) BuildGetValidatorInfoRequest(submitter string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	return s.request(submitter, op(TxnGetValidatorInfo))
}

// BuildGetTxnRequest builds a GET_TXN request. ledgerType is POOL, DOMAIN
// (default), CONFIG or a numeric ledger id.
func (s *Service) BuildGetTxnRequest(submitter, ledgerType string, seqNo int64) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if seqNo <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "seq_no must be positive")
	}
	ledgerID := LedgerDomain
	if ledgerType != "" {
		id, ok := ledgerIDs[strings.ToUpper(ledgerType)]
		if !ok {
			n, err := strconv.Atoi(ledgerType)
			if err != nil || n < 0 {
				return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unknown ledger type %q", ledgerType)
			}
			id = n
		}
		ledgerID = id
	}
	o := op(TxnGetTxn)
	o["data"] = seqNo
	o["ledgerId"] = ledgerID
	return s.request(submitter, o)
}

// BuildPoolConfigRequest builds a POOL_CONFIG request.
func (s *Service) BuildPoolConfigRequest(submitter string, writes, force bool) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	o := op(TxnPoolConfig)
	o["writes"] = writes
	o["force"] = force
	return s.request(submitter, o)
}

// BuildPoolRestartRequest builds a POOL_RESTART request.
func (s *Service) BuildPoolRestartRequest(submitter, action string, datetime *string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if action != "start" && action != "cancel" {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid action %q", action)
	}
	o := op(TxnPoolRestart)
	o["action"] = action
	setOpt(o, "datetime", datetime)
	return s.request(submitter, o)
}

// PoolUpgrade is the input of BuildPoolUpgradeRequest.
type PoolUpgrade struct {
	Name          string
	Version       string
	Action        string
	SHA256        string
	Timeout       *int64
	ScheduleJSON  *string
	Justification *string
	Reinstall     bool
	Force         bool
	Package       *string
}

// BuildPoolUpgradeRequest builds a POOL_UPGRADE request.
func (s *Service) BuildPoolUpgradeRequest(submitter string, u PoolUpgrade) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if u.Name == "" || u.Version == "" || u.SHA256 == "" {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "name, version and sha256 are required")
	}
	if u.Action != "start" && u.Action != "cancel" {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid action %q", u.Action)
	}
	o := op(TxnPoolUpgrade)
	o["name"] = u.Name
	o["version"] = u.Version
	o["action"] = u.Action
	o["sha256"] = u.SHA256
	o["reinstall"] = u.Reinstall
	o["force"] = u.Force
	setOpt(o, "timeout", u.Timeout)
	setOpt(o, "justification", u.Justification)
	setOpt(o, "package", u.Package)
	if u.ScheduleJSON != nil {
		var schedule map[string]string
		if err := json.Unmarshal([]byte(*u.ScheduleJSON), &schedule); err != nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "schedule must map node ids to times")
		}
		o["schedule"] = schedule
	}
	if u.Action == "start" && u.ScheduleJSON == nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "schedule is required to start an upgrade")
	}
	return s.request(submitter, o)
}

// BuildRevocRegDefRequest builds a REVOC_REG_DEF request.
func (s *Service) BuildRevocRegDefRequest(submitter, defJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	var def models.RevRegDef
	if err := validation.DecodeJSON(defJSON, &def); err != nil {
		return "", err
	}
	o := op(TxnRevocRegDef)
	o["id"] = models.Unqualify(def.ID)
	o["revocDefType"] = def.RevocDefType
	o["tag"] = def.Tag
	o["credDefId"] = models.Unqualify(def.CredDefID)
	o["value"] = def.Value
	return s.request(submitter, o)
}

// BuildGetRevocRegDefRequest builds a GET_REVOC_REG_DEF request.
func (s *Service) BuildGetRevocRegDefRequest(submitter, id string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if _, err := models.RevRegCredDef(id); err != nil {
		return "", err
	}
	o := op(TxnGetRevocRegDef)
	o["id"] = models.Unqualify(id)
	return s.request(submitter, o)
}

// BuildRevocRegEntryRequest builds a REVOC_REG_ENTRY request from a
// registry delta.
func (s *Service) BuildRevocRegEntryRequest(submitter, revRegDefID, revDefType, deltaJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if _, err := models.RevRegCredDef(revRegDefID); err != nil {
		return "", err
	}
	if revDefType != models.RevocDefTypeCL {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unsupported revocation type %q", revDefType)
	}
	var delta struct {
		Value json.RawMessage `json:"value" validate:"required"`
	}
	if err := validation.DecodeJSON(deltaJSON, &delta); err != nil {
		return "", err
	}
	value, err := rawJSON(string(delta.Value), "delta value")
	if err != nil {
		return "", err
	}
	o := op(TxnRevocRegEntry)
	o["revocRegDefId"] = models.Unqualify(revRegDefID)
	o["revocDefType"] = revDefType
	o["value"] = value
	return s.request(submitter, o)
}

// BuildGetRevocRegRequest builds a GET_REVOC_REG request for the registry
// state at timestamp.
func (s *Service) BuildGetRevocRegRequest(submitter, revRegDefID string, timestamp int64) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if _, err := models.RevRegCredDef(revRegDefID); err != nil {
		return "", err
	}
	o := op(TxnGetRevocReg)
	o["revocRegDefId"] = models.Unqualify(revRegDefID)
	o["timestamp"] = timestamp
	return s.request(submitter, o)
}

// BuildGetRevocRegDeltaRequest builds a GET_REVOC_REG_DELTA request. A nil
// from asks for the delta from the registry's creation.
func (s *Service) BuildGetRevocRegDeltaRequest(submitter, revRegDefID string, from *int64, to int64) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if _, err := models.RevRegCredDef(revRegDefID); err != nil {
		return "", err
	}
	if from != nil && *from > to {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "from is after to")
	}
	o := op(TxnGetRevocRegDelta)
	o["revocRegDefId"] = models.Unqualify(revRegDefID)
	setOpt(o, "from", from)
	o["to"] = to
	return s.request(submitter, o)
}

// Auth rule actions.
const (
	AuthActionAdd  = "ADD"
	AuthActionEdit = "EDIT"
)

// AuthRule is one entry of an AUTH_RULES request.
type AuthRule struct {
	AuthType   string          `json:"auth_type" validate:"notblank"`
	AuthAction string          `json:"auth_action" validate:"oneof=ADD EDIT"`
	Field      string          `json:"field" validate:"notblank"`
	OldValue   *string         `json:"old_value,omitempty"`
	NewValue   *string         `json:"new_value,omitempty"`
	Constraint json.RawMessage `json:"constraint" validate:"required"`
}

func (r *AuthRule) normalise() error {
	code, ok := TxnCode(r.AuthType)
	if !ok {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "unknown transaction type %q", r.AuthType)
	}
	r.AuthType = code
	if r.AuthAction == AuthActionEdit && r.OldValue == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "old_value is required to edit")
	}
	if r.AuthAction == AuthActionAdd {
		r.OldValue = nil
	}
	var constraint map[string]any
	if err := json.Unmarshal(r.Constraint, &constraint); err != nil || constraint["constraint_id"] == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "constraint must be an object with a constraint_id")
	}
	return nil
}

// BuildAuthRuleRequest builds an AUTH_RULE request.
func (s *Service) BuildAuthRuleRequest(submitter, txnType, action, field string, oldValue, newValue *string, constraintJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	rule := AuthRule{
		AuthType:   txnType,
		AuthAction: action,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Constraint: json.RawMessage(constraintJSON),
	}
	if err := validation.Validate(&rule); err != nil {
		return "", err
	}
	if err := rule.normalise(); err != nil {
		return "", err
	}
	o := op(TxnAuthRule)
	o["auth_type"] = rule.AuthType
	o["auth_action"] = rule.AuthAction
	o["field"] = rule.Field
	setOpt(o, "old_value", rule.OldValue)
	setOpt(o, "new_value", rule.NewValue)
	o["constraint"] = rule.Constraint
	return s.request(submitter, o)
}

// BuildAuthRulesRequest builds an AUTH_RULES request from a JSON list of
// rules.
func (s *Service) BuildAuthRulesRequest(submitter, rulesJSON string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	var rules []AuthRule
	if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "rules must be a JSON list")
	}
	if len(rules) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "empty list of auth rules")
	}
	for i := range rules {
		if err := validation.Validate(&rules[i]); err != nil {
			return "", err
		}
		if err := rules[i].normalise(); err != nil {
			return "", err
		}
	}
	o := op(TxnAuthRules)
	o["rules"] = rules
	return s.request(submitter, o)
}

// BuildGetAuthRuleRequest builds a GET_AUTH_RULE request. With no
// arguments every rule is requested; otherwise txnType, action and field
// are required.
func (s *Service) BuildGetAuthRuleRequest(submitter string, txnType, action, field, oldValue, newValue *string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	o := op(TxnGetAuthRule)
	if txnType == nil && action == nil && field == nil && oldValue == nil && newValue == nil {
		return s.request(submitter, o)
	}
	if txnType == nil || action == nil || field == nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "txn_type, action and field are required together")
	}
	code, ok := TxnCode(*txnType)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "unknown transaction type %q", *txnType)
	}
	if *action != AuthActionAdd && *action != AuthActionEdit {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid action %q", *action)
	}
	o["auth_type"] = code
	o["auth_action"] = *action
	o["field"] = *field
	if *action == AuthActionEdit {
		setOpt(o, "old_value", oldValue)
	}
	setOpt(o, "new_value", newValue)
	return s.request(submitter, o)
}

// BuildTxnAuthorAgreementRequest builds a TXN_AUTHOR_AGREEMENT request.
func (s *Service) BuildTxnAuthorAgreementRequest(submitter string, text *string, version string, ratificationTs, retirementTs *int64) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	if version == "" {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "version is required")
	}
	o := op(TxnTAA)
	o["version"] = version
	setOpt(o, "text", text)
	setOpt(o, "ratification_ts", ratificationTs)
	setOpt(o, "retirement_ts", retirementTs)
	return s.request(submitter, o)
}

// BuildDisableAllTxnAuthorAgreementsRequest builds a DISABLE_ALL_TXN_AUTHR_AGRMTS request.
func (s *Service) BuildDisableAllTxnAuthorAgreementsRequest(submitter string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	return s.request(submitter, op(TxnDisableAllTAA))
}

// GetTAAQuery selects the agreement GET_TXN_AUTHR_AGRMT returns. At most
// one field may be set; none selects the active agreement.
type GetTAAQuery struct {
	Digest    *string `json:"digest,omitempty"`
	Version   *string `json:"version,omitempty"`
	Timestamp *int64  `json:"timestamp,omitempty"`
}

// BuildGetTxnAuthorAgreementRequest builds a GET_TXN_AUTHR_AGRMT request.
func (s *Service) BuildGetTxnAuthorAgreementRequest(submitter string, queryJSON *string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	o := op(TxnGetTAA)
	if queryJSON != nil && *queryJSON != "null" {
		var q GetTAAQuery
		if err := json.Unmarshal([]byte(*queryJSON), &q); err != nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "malformed agreement query")
		}
		set := 0
		for _, ok := range []bool{q.Digest != nil, q.Version != nil, q.Timestamp != nil} {
			if ok {
				set++
			}
		}
		if set > 1 {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "only one of digest, version and timestamp may be set")
		}
		setOpt(o, "digest", q.Digest)
		setOpt(o, "version", q.Version)
		setOpt(o, "timestamp", q.Timestamp)
	}
	return s.request(submitter, o)
}

// BuildAcceptanceMechanismsRequest builds a TXN_AUTHOR_AGREEMENT_AML
// request.
func (s *Service) BuildAcceptanceMechanismsRequest(submitter, amlJSON, version string, amlContext *string) (string, error) {
	if err := checkDid(submitter, true, "submitter did"); err != nil {
		return "", err
	}
	var aml map[string]any
	if err := json.Unmarshal([]byte(amlJSON), &aml); err != nil || len(aml) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "aml must be a non-empty JSON object")
	}
	if version == "" {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "version is required")
	}
	o := op(TxnTAAAML)
	o["aml"] = aml
	o["version"] = version
	setOpt(o, "amlContext", amlContext)
	return s.request(submitter, o)
}

// BuildGetAcceptanceMechanismsRequest builds a GET_TXN_AUTHR_AGRMT_AML
// request. timestamp and version are mutually exclusive.
func (s *Service) BuildGetAcceptanceMechanismsRequest(submitter string, timestamp *int64, version *string) (string, error) {
	if err := checkDid(submitter, false, "submitter did"); err != nil {
		return "", err
	}
	if timestamp != nil && version != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "timestamp and version cannot be combined")
	}
	o := op(TxnGetTAAAML)
	setOpt(o, "timestamp", timestamp)
	setOpt(o, "version", version)
	return s.request(submitter, o)
}

// AppendRequestEndorser names the DID that will endorse request.
func (s *Service) AppendRequestEndorser(requestJSON, endorser string) (string, error) {
	if err := checkDid(endorser, true, "endorser did"); err != nil {
		return "", err
	}
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return "", err
	}
	req["endorser"] = did.Unqualify(endorser)
	return encodeRequest(req)
}
