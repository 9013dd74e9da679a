package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	dErrors "indy/pkg/domain-errors"
)

const secondsPerDay = 86400

// TAAAcceptance records that the author accepted the transaction author
// agreement identified by Digest.
type TAAAcceptance struct {
	Mechanism string `json:"mechanism"`
	Digest    string `json:"taaDigest"`
	Time      uint64 `json:"time"`
}

// TAADigest is the hex SHA-256 of version followed by text.
func TAADigest(text, version string) string {
	h := sha256.Sum256([]byte(version + text))
	return hex.EncodeToString(h[:])
}

// NewTAAAcceptance resolves the agreement digest and truncates the
// acceptance time to the start of its day. Either text and version or
// digest are required; when all are given they must agree.
func NewTAAAcceptance(text, version, digest *string, mechanism string, acceptedAt uint64) (*TAAAcceptance, error) {
	if mechanism == "" {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "acceptance mechanism is required")
	}
	if (text == nil) != (version == nil) {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "text and version must be given together")
	}
	var resolved string
	switch {
	case text != nil:
		resolved = TAADigest(*text, *version)
		if digest != nil && !strings.EqualFold(*digest, resolved) {
			return nil, dErrors.New(dErrors.CodeInvalidStructure, "digest does not match text and version")
		}
	case digest != nil:
		resolved = strings.ToLower(*digest)
	default:
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "either text and version or digest must be given")
	}
	return &TAAAcceptance{
		Mechanism: mechanism,
		Digest:    resolved,
		Time:      acceptedAt - acceptedAt%secondsPerDay,
	}, nil
}

// AppendTxnAuthorAgreementAcceptanceToRequest attaches an agreement
// acceptance to request.
func (s *Service) AppendTxnAuthorAgreementAcceptanceToRequest(requestJSON string, text, version, digest *string, mechanism string, acceptedAt uint64) (string, error) {
	req, err := decodeRequest(requestJSON)
	if err != nil {
		return "", err
	}
	acc, err := NewTAAAcceptance(text, version, digest, mechanism, acceptedAt)
	if err != nil {
		return "", err
	}
	req["taaAcceptance"] = acc
	return encodeRequest(req)
}
