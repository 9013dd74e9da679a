package ledger

import "strconv"

// Transaction type codes.
const (
	TxnNode             = "0"
	TxnNym              = "1"
	TxnGetTxn           = "3"
	TxnTAA              = "4"
	TxnTAAAML           = "5"
	TxnGetTAA           = "6"
	TxnGetTAAAML        = "7"
	TxnDisableAllTAA    = "8"
	TxnAttrib           = "100"
	TxnSchema           = "101"
	TxnCredDef          = "102"
	TxnGetAttr          = "104"
	TxnGetNym           = "105"
	TxnGetSchema        = "107"
	TxnGetCredDef       = "108"
	TxnPoolUpgrade      = "109"
	TxnPoolConfig       = "111"
	TxnRevocRegDef      = "113"
	TxnRevocRegEntry    = "114"
	TxnGetRevocRegDef   = "115"
	TxnGetRevocReg      = "116"
	TxnGetRevocRegDelta = "117"
	TxnPoolRestart      = "118"
	TxnGetValidatorInfo = "119"
	TxnAuthRule         = "120"
	TxnGetAuthRule      = "121"
	TxnAuthRules        = "122"
	TxnGetDDO           = "120"
)

var txnNames = map[string]string{
	"NODE":                     TxnNode,
	"NYM":                      TxnNym,
	"GET_TXN":                  TxnGetTxn,
	"TXN_AUTHOR_AGREEMENT":     TxnTAA,
	"TXN_AUTHOR_AGREEMENT_AML": TxnTAAAML,
	"ATTRIB":                   TxnAttrib,
	"SCHEMA":                   TxnSchema,
	"CRED_DEF":                 TxnCredDef,
	"POOL_UPGRADE":             TxnPoolUpgrade,
	"POOL_CONFIG":              TxnPoolConfig,
	"REVOC_REG_DEF":            TxnRevocRegDef,
	"REVOC_REG_ENTRY":          TxnRevocRegEntry,
	"POOL_RESTART":             TxnPoolRestart,
	"VALIDATOR_INFO":           TxnGetValidatorInfo,
	"AUTH_RULE":                TxnAuthRule,
	"AUTH_RULES":               TxnAuthRules,
}

// TxnCode resolves a transaction name such as "NYM" to its code. Codes
// pass through unchanged.
func TxnCode(nameOrCode string) (string, bool) {
	if code, ok := txnNames[nameOrCode]; ok {
		return code, true
	}
	if _, err := strconv.Atoi(nameOrCode); err == nil {
		return nameOrCode, true
	}
	return "", false
}

// Ledger ids used by GET_TXN.
const (
	LedgerPool   = 0
	LedgerDomain = 1
	LedgerConfig = 2
)

var ledgerIDs = map[string]int{
	"POOL":   LedgerPool,
	"DOMAIN": LedgerDomain,
	"CONFIG": LedgerConfig,
}

// Role names accepted by NYM requests.
var roles = map[string]string{
	"TRUSTEE":         "0",
	"STEWARD":         "2",
	"TRUST_ANCHOR":    "101",
	"ENDORSER":        "101",
	"NETWORK_MONITOR": "201",
}

// readTxns are answered by a single node.
var readTxns = map[string]bool{
	TxnGetTxn:           true,
	TxnGetTAA:           true,
	TxnGetTAAAML:        true,
	TxnGetAttr:          true,
	TxnGetNym:           true,
	TxnGetSchema:        true,
	TxnGetCredDef:       true,
	TxnGetRevocRegDef:   true,
	TxnGetRevocReg:      true,
	TxnGetRevocRegDelta: true,
	TxnGetAuthRule:      true,
}

// IsRead reports whether txnType is a read transaction.
func IsRead(txnType string) bool {
	return readTxns[txnType]
}

// actionTxns may be sent with SubmitAction.
var actionTxns = map[string]bool{
	TxnPoolRestart:      true,
	TxnGetValidatorInfo: true,
}
