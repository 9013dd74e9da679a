package payments

import (
	"encoding/json"

	"indy/internal/ledger"
	dErrors "indy/pkg/domain-errors"
)

// PreparePaymentExtraWithAcceptanceData adds a transaction author agreement
// acceptance to the extra object of a payment. An empty extra starts from
// an empty object.
func PreparePaymentExtraWithAcceptanceData(extraJSON string, text, version, digest *string, mechanism string, acceptedAt uint64) (string, error) {
	extra := map[string]any{}
	if extraJSON != "" && extraJSON != "null" {
		if err := json.Unmarshal([]byte(extraJSON), &extra); err != nil || extra == nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "extra must be a JSON object")
		}
	}
	acc, err := ledger.NewTAAAcceptance(text, version, digest, mechanism, acceptedAt)
	if err != nil {
		return "", err
	}
	extra["taaAcceptance"] = acc
	raw, err := json.Marshal(extra)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode payment extra")
	}
	return string(raw), nil
}
