package stateproof

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"indy/pkg/canonical"
	dErrors "indy/pkg/domain-errors"
)

// Read transaction types with a built-in key/value mapping.
const (
	txnGetAttr          = "104"
	txnGetNym           = "105"
	txnGetSchema        = "107"
	txnGetCredDef       = "108"
	txnGetRevocRegDef   = "115"
	txnGetRevocReg      = "116"
	txnGetRevocRegDelta = "117"
)

// Markers separating the DID from the rest of a state key.
const (
	markerAttr     = "\x01"
	markerSchema   = "\x02"
	markerCredDef  = "\x03"
	markerRevocReg = "5"
)

type replyResult struct {
	Type          string          `json:"type"`
	Dest          string          `json:"dest"`
	Raw           string          `json:"raw"`
	Hash          string          `json:"hash"`
	Enc           string          `json:"enc"`
	Origin        string          `json:"origin"`
	Ref           json.Number     `json:"ref"`
	SignatureType string          `json:"signature_type"`
	Tag           *string         `json:"tag"`
	ID            string          `json:"id"`
	RevocRegDefID string          `json:"revocRegDefId"`
	SeqNo         *uint64         `json:"seqNo"`
	TxnTime       *uint64         `json:"txnTime"`
	Data          json.RawMessage `json:"data"`
}

// ledgerValue is how every state entry except NYM is stored.
type ledgerValue struct {
	Lsn uint64 `json:"lsn"`
	Lut uint64 `json:"lut"`
	Val any    `json:"val"`
}

type nymValue struct {
	Identifier *string `json:"identifier"`
	Role       *string `json:"role"`
	SeqNo      uint64  `json:"seqNo"`
	TxnTime    uint64  `json:"txnTime"`
	Verkey     *string `json:"verkey"`
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func hashHex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func encodeValue(v any) (*string, error) {
	raw, err := canonical.JSON(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func decodeAny(raw json.RawMessage) (any, error) {
	var v any
	err := canonical.Decode(raw, &v)
	return v, err
}

// Extract returns the state key a read reply is about and the value the
// state must hold for the reply to be honest. A nil value means the reply
// claims the key is absent. ok is false for transaction types without a
// built-in mapping.
func Extract(result json.RawMessage) (key []byte, value *string, ok bool, err error) {
	var r replyResult
	if err := canonical.Decode(result, &r); err != nil {
		return nil, nil, false, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed reply result")
	}
	key, value, ok, err = extract(&r)
	if err != nil {
		return nil, nil, false, dErrors.Wrap(err, dErrors.CodeLedgerInvalidTransaction, "malformed reply data")
	}
	return key, value, ok, nil
}

func extract(r *replyResult) ([]byte, *string, bool, error) {
	switch r.Type {
	case txnGetNym:
		k := sha256.Sum256([]byte(r.Dest))
		v, err := nymStateValue(r)
		return k[:], v, true, err
	case txnGetAttr:
		name := r.Hash
		switch {
		case r.Raw != "":
			name = hashHex(r.Raw)
		case r.Enc != "":
			name = hashHex(r.Enc)
		}
		key := []byte(r.Dest + ":" + markerAttr + ":" + name)
		if isNull(r.Data) || r.SeqNo == nil {
			return key, nil, true, nil
		}
		var data string
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, nil, false, err
		}
		v, err := r.ledgerValue(hashHex(data))
		return key, v, true, err
	case txnGetSchema:
		var data map[string]any
		if err := canonical.Decode(r.Data, &data); err != nil {
			return nil, nil, false, err
		}
		name, _ := data["name"].(string)
		version, _ := data["version"].(string)
		key := []byte(r.Dest + ":" + markerSchema + ":" + name + ":" + version)
		if _, found := data["attr_names"]; !found || r.SeqNo == nil {
			return key, nil, true, nil
		}
		delete(data, "name")
		delete(data, "version")
		v, err := r.ledgerValue(data)
		return key, v, true, err
	case txnGetCredDef:
		key := r.Origin + ":" + markerCredDef + ":" + r.SignatureType + ":" + r.Ref.String()
		if r.Tag != nil {
			key += ":" + *r.Tag
		}
		v, err := r.dataValue()
		return []byte(key), v, true, err
	case txnGetRevocRegDef:
		v, err := r.dataValue()
		return []byte(r.ID), v, true, err
	case txnGetRevocReg:
		v, err := r.dataValue()
		return []byte(markerRevocReg + ":" + r.RevocRegDefID), v, true, err
	case txnGetRevocRegDelta:
		return deltaStateValue(r)
	}
	return nil, nil, false, nil
}

func (r *replyResult) ledgerValue(val any) (*string, error) {
	var lut uint64
	if r.TxnTime != nil {
		lut = *r.TxnTime
	}
	return encodeValue(ledgerValue{Lsn: *r.SeqNo, Lut: lut, Val: val})
}

func (r *replyResult) dataValue() (*string, error) {
	if isNull(r.Data) || r.SeqNo == nil {
		return nil, nil
	}
	data, err := decodeAny(r.Data)
	if err != nil {
		return nil, err
	}
	return r.ledgerValue(data)
}

func nymStateValue(r *replyResult) (*string, error) {
	if isNull(r.Data) {
		return nil, nil
	}
	var inner string
	if err := json.Unmarshal(r.Data, &inner); err != nil {
		return nil, err
	}
	var nym struct {
		Identifier *string `json:"identifier"`
		Role       *string `json:"role"`
		Verkey     *string `json:"verkey"`
		SeqNo      uint64  `json:"seqNo"`
		TxnTime    uint64  `json:"txnTime"`
	}
	if err := json.Unmarshal([]byte(inner), &nym); err != nil {
		return nil, err
	}
	v := nymValue{Identifier: nym.Identifier, Role: nym.Role, Verkey: nym.Verkey, SeqNo: nym.SeqNo, TxnTime: nym.TxnTime}
	if r.SeqNo != nil {
		v.SeqNo = *r.SeqNo
	}
	if r.TxnTime != nil {
		v.TxnTime = *r.TxnTime
	}
	return encodeValue(v)
}

// deltaStateValue proves the registry entry at the end of a delta. Deltas
// that start from an earlier accumulator are not covered.
func deltaStateValue(r *replyResult) ([]byte, *string, bool, error) {
	key := []byte(markerRevocReg + ":" + r.RevocRegDefID)
	if isNull(r.Data) {
		return key, nil, true, nil
	}
	var data struct {
		Value struct {
			AccumFrom json.RawMessage `json:"accum_from"`
			AccumTo   json.RawMessage `json:"accum_to"`
		} `json:"value"`
	}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil, nil, false, err
	}
	if !isNull(data.Value.AccumFrom) {
		return nil, nil, false, nil
	}
	var to struct {
		SeqNo   *uint64 `json:"seqNo"`
		TxnTime *uint64 `json:"txnTime"`
	}
	if err := json.Unmarshal(data.Value.AccumTo, &to); err != nil {
		return nil, nil, false, err
	}
	if to.SeqNo == nil {
		return key, nil, true, nil
	}
	val, err := decodeAny(data.Value.AccumTo)
	if err != nil {
		return nil, nil, false, err
	}
	sub := replyResult{SeqNo: to.SeqNo, TxnTime: to.TxnTime}
	v, err := sub.ledgerValue(val)
	return key, v, true, err
}
