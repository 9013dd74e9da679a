// Package did manages the caller's own DIDs, the DIDs of their peers and
// the data attached to both.
package did

import (
	"regexp"
	"strings"

	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
)

// Did is the stored form of both own and peer DIDs.
type Did struct {
	Did    string `json:"did"`
	Verkey string `json:"verkey"`
}

// MyDidInfo describes a DID to create. Every field is optional.
type MyDidInfo struct {
	Did        string `json:"did,omitempty"`
	Seed       string `json:"seed,omitempty"`
	CryptoType string `json:"crypto_type,omitempty"`
	Cid        bool   `json:"cid,omitempty"`
	MethodName string `json:"method_name,omitempty"`
}

// TheirDidInfo identifies a peer. A missing verkey means the DID itself is
// the full verkey.
type TheirDidInfo struct {
	Did        string `json:"did" validate:"required"`
	Verkey     string `json:"verkey,omitempty"`
	CryptoType string `json:"crypto_type,omitempty"`
}

// Endpoint is the network address of a DID and the key to reach it with.
type Endpoint struct {
	Address string `json:"ha"`
	Verkey  string `json:"verkey,omitempty"`
}

// WithMeta is a listing entry for one of the caller's DIDs.
type WithMeta struct {
	Did        string  `json:"did"`
	Verkey     string  `json:"verkey"`
	TempVerkey *string `json:"tempVerkey"`
	Metadata   *string `json:"metadata"`
}

var methodPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Qualify prefixes did with "did:<method>:". An already qualified DID is
// requalified under method.
func Qualify(did, method string) (string, error) {
	if !methodPattern.MatchString(method) {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "invalid did method %q", method)
	}
	return "did:" + method + ":" + Unqualify(did), nil
}

// Unqualify strips a "did:<method>:" prefix.
func Unqualify(did string) string {
	if rest, ok := strings.CutPrefix(did, "did:"); ok {
		if _, id, found := strings.Cut(rest, ":"); found {
			return id
		}
	}
	return did
}

// Method returns the DID method of a qualified DID, or "".
func Method(did string) string {
	if rest, ok := strings.CutPrefix(did, "did:"); ok {
		if m, _, found := strings.Cut(rest, ":"); found {
			return m
		}
	}
	return ""
}

// Validate accepts base58 identifiers of 16 or 32 bytes, qualified or not.
func Validate(did string) error {
	raw, err := base58.Decode(Unqualify(did))
	if err != nil || (len(raw) != 16 && len(raw) != 32) {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "invalid did %q", did)
	}
	return nil
}
