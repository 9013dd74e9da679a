package payments

import (
	"encoding/json"

	"indy/internal/ledger"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// Auth rule constraint kinds.
const (
	constraintRole      = "ROLE"
	constraintAnd       = "AND"
	constraintOr        = "OR"
	constraintForbidden = "FORBIDDEN"

	anyRole = "*"
)

type constraint struct {
	ID                 string       `json:"constraint_id"`
	Role               *string      `json:"role"`
	SigCount           uint32       `json:"sig_count"`
	NeedToBeOwner      bool         `json:"need_to_be_owner"`
	OffLedgerSignature bool         `json:"off_ledger_signature"`
	Metadata           *ruleMeta    `json:"metadata"`
	AuthConstraints    []constraint `json:"auth_constraints"`
}

type ruleMeta struct {
	Fees string `json:"fees"`
}

type authRule struct {
	Constraint *constraint `json:"constraint"`
}

// RequesterInfo describes who is about to send a request.
type RequesterInfo struct {
	Role          *string `json:"role"`
	NeedToBeOwner bool    `json:"need_to_be_owner"`
	SigCount      uint32  `json:"sig_count" validate:"gte=1"`
}

// Requirement is one set of signatures that authorises a request.
type Requirement struct {
	Role               string `json:"role"`
	SigCount           uint32 `json:"sig_count"`
	NeedToBeOwner      bool   `json:"need_to_be_owner"`
	OffLedgerSignature bool   `json:"off_ledger_signature"`
}

// RequestInfo is the cheapest way the requester may send the request.
type RequestInfo struct {
	Price        uint64        `json:"price"`
	Requirements []Requirement `json:"requirements"`
}

// GetRequestInfo reads a GET_AUTH_RULE reply holding exactly one rule and
// returns the cheapest requirement the requester meets. fees maps fee
// aliases from the rule metadata to amounts.
func GetRequestInfo(getAuthRuleResponse, requesterInfoJSON, feesJSON string) (string, error) {
	result, err := ledger.ReplyResult(getAuthRuleResponse)
	if err != nil {
		return "", err
	}
	var body struct {
		Data []authRule `json:"data"`
	}
	if err := json.Unmarshal(result, &body); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "malformed auth rule reply")
	}
	if len(body.Data) != 1 || body.Data[0].Constraint == nil {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "auth rule reply must hold exactly one rule, got %d", len(body.Data))
	}
	var requester RequesterInfo
	if err := validation.DecodeJSON(requesterInfoJSON, &requester); err != nil {
		return "", err
	}
	fees := map[string]uint64{}
	if err := json.Unmarshal([]byte(feesJSON), &fees); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "fees must map aliases to amounts")
	}

	options, err := evaluate(body.Data[0].Constraint, &requester, fees)
	if err != nil {
		return "", err
	}
	if len(options) == 0 {
		return "", dErrors.New(dErrors.CodeTransactionNotAllowed, "requester does not meet the auth rule")
	}
	best := options[0]
	for _, o := range options[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	raw, err := json.Marshal(best)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode request info")
	}
	return string(raw), nil
}

// evaluate returns every way the requester satisfies c.
func evaluate(c *constraint, r *RequesterInfo, fees map[string]uint64) ([]RequestInfo, error) {
	switch c.ID {
	case constraintRole:
		if !meets(c, r) {
			return nil, nil
		}
		role := ""
		if c.Role != nil {
			role = *c.Role
		}
		var price uint64
		if c.Metadata != nil && c.Metadata.Fees != "" {
			price = fees[c.Metadata.Fees]
		}
		return []RequestInfo{{
			Price: price,
			Requirements: []Requirement{{
				Role:               role,
				SigCount:           c.SigCount,
				NeedToBeOwner:      c.NeedToBeOwner,
				OffLedgerSignature: c.OffLedgerSignature,
			}},
		}}, nil
	case constraintOr:
		var out []RequestInfo
		for i := range c.AuthConstraints {
			options, err := evaluate(&c.AuthConstraints[i], r, fees)
			if err != nil {
				return nil, err
			}
			out = append(out, options...)
		}
		return out, nil
	case constraintAnd:
		combined := RequestInfo{Requirements: []Requirement{}}
		for i := range c.AuthConstraints {
			options, err := evaluate(&c.AuthConstraints[i], r, fees)
			if err != nil {
				return nil, err
			}
			if len(options) == 0 {
				return nil, nil
			}
			cheapest := options[0]
			for _, o := range options[1:] {
				if o.Price < cheapest.Price {
					cheapest = o
				}
			}
			combined.Price = max(combined.Price, cheapest.Price)
			combined.Requirements = append(combined.Requirements, cheapest.Requirements...)
		}
		return []RequestInfo{combined}, nil
	case constraintForbidden:
		return nil, nil
	}
	return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unknown auth constraint %q", c.ID)
}

func meets(c *constraint, r *RequesterInfo) bool {
	if c.SigCount == 0 {
		return true
	}
	if c.NeedToBeOwner && !r.NeedToBeOwner {
		return false
	}
	if r.SigCount < c.SigCount {
		return false
	}
	want, have := "", ""
	if c.Role != nil {
		want = *c.Role
	}
	if r.Role != nil {
		have = *r.Role
	}
	return want == anyRole || want == have
}
