package command

// Index is the dense ordinal of a command kind. Every invocation is
// classified into exactly one Index on entry; the metrics collector keeps
// one counter slot per Index.
type Index int

const (
	// Issuer
	IssuerCommandCreateSchema Index = iota
	IssuerCommandCreateAndStoreCredentialDefinition
	IssuerCommandCreateAndStoreCredentialDefinitionContinue
	IssuerCommandRotateCredentialDefinitionStart
	IssuerCommandRotateCredentialDefinitionStartComplete
	IssuerCommandRotateCredentialDefinitionApply
	IssuerCommandCreateAndStoreRevocationRegistry
	IssuerCommandCreateCredentialOffer
	IssuerCommandCreateCredential
	IssuerCommandRevokeCredential
	IssuerCommandMergeRevocationRegistryDeltas

	// Prover
	ProverCommandCreateMasterSecret
	ProverCommandCreateCredentialRequest
	ProverCommandSetCredentialAttrTagPolicy
	ProverCommandGetCredentialAttrTagPolicy
	ProverCommandStoreCredential
	ProverCommandGetCredentials
	ProverCommandGetCredential
	ProverCommandDeleteCredential
	ProverCommandSearchCredentials
	ProverCommandFetchCredentials
	ProverCommandCloseCredentialsSearch
	ProverCommandGetCredentialsForProofReq
	ProverCommandSearchCredentialsForProofReq
	ProverCommandFetchCredentialForProofReq
	ProverCommandCloseCredentialsSearchForProofReq
	ProverCommandCreateProof
	ProverCommandCreateRevocationState
	ProverCommandUpdateRevocationState

	// Verifier
	VerifierCommandVerifyProof
	VerifierCommandGenerateNonce

	// Anoncreds
	AnoncredsCommandToUnqualified

	// BlobStorage
	BlobStorageCommandOpenReader
	BlobStorageCommandOpenWriter

	// Crypto
	CryptoCommandCreateKey
	CryptoCommandSetKeyMetadata
	CryptoCommandGetKeyMetadata
	CryptoCommandCryptoSign
	CryptoCommandCryptoVerify
	CryptoCommandAuthenticatedEncrypt
	CryptoCommandAuthenticatedDecrypt
	CryptoCommandAnonymousEncrypt
	CryptoCommandAnonymousDecrypt
	CryptoCommandPackMessage
	CryptoCommandUnpackMessage

	// Ledger
	LedgerCommandSignAndSubmitRequest
	LedgerCommandSubmitRequest
	LedgerCommandSubmitAck
	LedgerCommandSubmitAction
	LedgerCommandSignRequest
	LedgerCommandMultiSignRequest
	LedgerCommandBuildGetDdoRequest
	LedgerCommandBuildNymRequest
	LedgerCommandBuildAttribRequest
	LedgerCommandBuildGetAttribRequest
	LedgerCommandBuildGetNymRequest
	LedgerCommandParseGetNymResponse
	LedgerCommandBuildSchemaRequest
	LedgerCommandBuildGetSchemaRequest
	LedgerCommandParseGetSchemaResponse
	LedgerCommandBuildCredDefRequest
	LedgerCommandBuildGetCredDefRequest
	LedgerCommandParseGetCredDefResponse
	LedgerCommandBuildNodeRequest
	LedgerCommandBuildGetValidatorInfoRequest
	LedgerCommandBuildGetTxnRequest
	LedgerCommandBuildPoolConfigRequest
	LedgerCommandBuildPoolRestartRequest
	LedgerCommandBuildPoolUpgradeRequest
	LedgerCommandBuildRevocRegDefRequest
	LedgerCommandBuildGetRevocRegDefRequest
	LedgerCommandParseGetRevocRegDefResponse
	LedgerCommandBuildRevocRegEntryRequest
	LedgerCommandBuildGetRevocRegRequest
	LedgerCommandParseGetRevocRegResponse
	LedgerCommandBuildGetRevocRegDeltaRequest
	LedgerCommandParseGetRevocRegDeltaResponse
	LedgerCommandRegisterSPParser
	LedgerCommandGetResponseMetadata
	LedgerCommandBuildAuthRuleRequest
	LedgerCommandBuildAuthRulesRequest
	LedgerCommandBuildGetAuthRuleRequest
	LedgerCommandGetSchema
	LedgerCommandGetSchemaContinue
	LedgerCommandGetCredDef
	LedgerCommandGetCredDefContinue
	LedgerCommandBuildTxnAuthorAgreementRequest
	LedgerCommandBuildDisableAllTxnAuthorAgreementsRequest
	LedgerCommandBuildGetTxnAuthorAgreementRequest
	LedgerCommandBuildAcceptanceMechanismRequests
	LedgerCommandBuildGetAcceptanceMechanismsRequest
	LedgerCommandAppendTxnAuthorAgreementAcceptanceToRequest
	LedgerCommandAppendRequestEndorser

	// Pool
	PoolCommandCreate
	PoolCommandDelete
	PoolCommandOpen
	PoolCommandOpenAck
	PoolCommandList
	PoolCommandClose
	PoolCommandCloseAck
	PoolCommandRefresh
	PoolCommandRefreshAck
	PoolCommandSetProtocolVersion

	// Did
	DidCommandCreateAndStoreMyDid
	DidCommandReplaceKeysStart
	DidCommandReplaceKeysApply
	DidCommandStoreTheirDid
	DidCommandGetMyDidWithMeta
	DidCommandListMyDidsWithMeta
	DidCommandKeyForDid
	DidCommandKeyForLocalDid
	DidCommandSetEndpointForDid
	DidCommandGetEndpointForDid
	DidCommandSetDidMetadata
	DidCommandGetDidMetadata
	DidCommandAbbreviateVerkey
	DidCommandGetNymAck
	DidCommandGetAttribAck
	DidCommandQualifyDid

	// Wallet
	WalletCommandRegisterWalletType
	WalletCommandCreate
	WalletCommandCreateContinue
	WalletCommandOpen
	WalletCommandOpenContinue
	WalletCommandClose
	WalletCommandDelete
	WalletCommandDeleteContinue
	WalletCommandExport
	WalletCommandExportContinue
	WalletCommandImport
	WalletCommandImportContinue
	WalletCommandGenerateKey
	WalletCommandDeriveKey

	// Pairwise
	PairwiseCommandPairwiseExists
	PairwiseCommandCreatePairwise
	PairwiseCommandListPairwise
	PairwiseCommandGetPairwise
	PairwiseCommandSetPairwiseMetadata

	// NonSecrets
	NonSecretsCommandAddRecord
	NonSecretsCommandUpdateRecordValue
	NonSecretsCommandUpdateRecordTags
	NonSecretsCommandAddRecordTags
	NonSecretsCommandDeleteRecordTags
	NonSecretsCommandDeleteRecord
	NonSecretsCommandGetRecord
	NonSecretsCommandOpenSearch
	NonSecretsCommandFetchSearchNextRecords
	NonSecretsCommandCloseSearch

	// Payments
	PaymentsCommandRegisterMethod
	PaymentsCommandCreateAddress
	PaymentsCommandCreateAddressAck
	PaymentsCommandListAddresses
	PaymentsCommandAddRequestFees
	PaymentsCommandAddRequestFeesAck
	PaymentsCommandParseResponseWithFees
	PaymentsCommandParseResponseWithFeesAck
	PaymentsCommandBuildGetPaymentSourcesRequest
	PaymentsCommandBuildGetPaymentSourcesRequestAck
	PaymentsCommandParseGetPaymentSourcesResponse
	PaymentsCommandParseGetPaymentSourcesResponseAck
	PaymentsCommandBuildPaymentReq
	PaymentsCommandBuildPaymentReqAck
	PaymentsCommandParsePaymentResponse
	PaymentsCommandParsePaymentResponseAck
	PaymentsCommandAppendTxnAuthorAgreementAcceptanceToExtra
	PaymentsCommandBuildMintReq
	PaymentsCommandBuildMintReqAck
	PaymentsCommandBuildSetTxnFeesReq
	PaymentsCommandBuildSetTxnFeesReqAck
	PaymentsCommandBuildGetTxnFeesReq
	PaymentsCommandBuildGetTxnFeesReqAck
	PaymentsCommandParseGetTxnFeesResponse
	PaymentsCommandParseGetTxnFeesResponseAck
	PaymentsCommandBuildVerifyPaymentReq
	PaymentsCommandBuildVerifyPaymentReqAck
	PaymentsCommandParseVerifyPaymentResponse
	PaymentsCommandParseVerifyPaymentResponseAck
	PaymentsCommandGetRequestInfo
	PaymentsCommandSignWithAddressReq
	PaymentsCommandSignWithAddressAck
	PaymentsCommandVerifyWithAddressReq
	PaymentsCommandVerifyWithAddressAck

	// Cache
	CacheCommandGetSchema
	CacheCommandGetSchemaContinue
	CacheCommandGetCredDef
	CacheCommandGetCredDefContinue
	CacheCommandPurgeSchemaCache
	CacheCommandPurgeCredDefCache

	// Metrics
	MetricsCommandCollectMetrics

	// Exit
	Exit

	// Count is the number of command kinds.
	Count int = iota
)

var names = [Count]string{
	IssuerCommandCreateSchema:                                "IssuerCommandCreateSchema",
	IssuerCommandCreateAndStoreCredentialDefinition:          "IssuerCommandCreateAndStoreCredentialDefinition",
	IssuerCommandCreateAndStoreCredentialDefinitionContinue:  "IssuerCommandCreateAndStoreCredentialDefinitionContinue",
	IssuerCommandRotateCredentialDefinitionStart:             "IssuerCommandRotateCredentialDefinitionStart",
	IssuerCommandRotateCredentialDefinitionStartComplete:     "IssuerCommandRotateCredentialDefinitionStartComplete",
	IssuerCommandRotateCredentialDefinitionApply:             "IssuerCommandRotateCredentialDefinitionApply",
	IssuerCommandCreateAndStoreRevocationRegistry:            "IssuerCommandCreateAndStoreRevocationRegistry",
	IssuerCommandCreateCredentialOffer:                       "IssuerCommandCreateCredentialOffer",
	IssuerCommandCreateCredential:                            "IssuerCommandCreateCredential",
	IssuerCommandRevokeCredential:                            "IssuerCommandRevokeCredential",
	IssuerCommandMergeRevocationRegistryDeltas:               "IssuerCommandMergeRevocationRegistryDeltas",
	ProverCommandCreateMasterSecret:                          "ProverCommandCreateMasterSecret",
	ProverCommandCreateCredentialRequest:                     "ProverCommandCreateCredentialRequest",
	ProverCommandSetCredentialAttrTagPolicy:                  "ProverCommandSetCredentialAttrTagPolicy",
	ProverCommandGetCredentialAttrTagPolicy:                  "ProverCommandGetCredentialAttrTagPolicy",
	ProverCommandStoreCredential:                             "ProverCommandStoreCredential",
	ProverCommandGetCredentials:                              "ProverCommandGetCredentials",
	ProverCommandGetCredential:                               "ProverCommandGetCredential",
	ProverCommandDeleteCredential:                            "ProverCommandDeleteCredential",
	ProverCommandSearchCredentials:                           "ProverCommandSearchCredentials",
	ProverCommandFetchCredentials:                            "ProverCommandFetchCredentials",
	ProverCommandCloseCredentialsSearch:                      "ProverCommandCloseCredentialsSearch",
	ProverCommandGetCredentialsForProofReq:                   "ProverCommandGetCredentialsForProofReq",
	ProverCommandSearchCredentialsForProofReq:                "ProverCommandSearchCredentialsForProofReq",
	ProverCommandFetchCredentialForProofReq:                  "ProverCommandFetchCredentialForProofReq",
	ProverCommandCloseCredentialsSearchForProofReq:           "ProverCommandCloseCredentialsSearchForProofReq",
	ProverCommandCreateProof:                                 "ProverCommandCreateProof",
	ProverCommandCreateRevocationState:                       "ProverCommandCreateRevocationState",
	ProverCommandUpdateRevocationState:                       "ProverCommandUpdateRevocationState",
	VerifierCommandVerifyProof:                               "VerifierCommandVerifyProof",
	VerifierCommandGenerateNonce:                             "VerifierCommandGenerateNonce",
	AnoncredsCommandToUnqualified:                            "AnoncredsCommandToUnqualified",
	BlobStorageCommandOpenReader:                             "BlobStorageCommandOpenReader",
	BlobStorageCommandOpenWriter:                             "BlobStorageCommandOpenWriter",
	CryptoCommandCreateKey:                                   "CryptoCommandCreateKey",
	CryptoCommandSetKeyMetadata:                              "CryptoCommandSetKeyMetadata",
	CryptoCommandGetKeyMetadata:                              "CryptoCommandGetKeyMetadata",
	CryptoCommandCryptoSign:                                  "CryptoCommandCryptoSign",
	CryptoCommandCryptoVerify:                                "CryptoCommandCryptoVerify",
	CryptoCommandAuthenticatedEncrypt:                        "CryptoCommandAuthenticatedEncrypt",
	CryptoCommandAuthenticatedDecrypt:                        "CryptoCommandAuthenticatedDecrypt",
	CryptoCommandAnonymousEncrypt:                            "CryptoCommandAnonymousEncrypt",
	CryptoCommandAnonymousDecrypt:                            "CryptoCommandAnonymousDecrypt",
	CryptoCommandPackMessage:                                 "CryptoCommandPackMessage",
	CryptoCommandUnpackMessage:                               "CryptoCommandUnpackMessage",
	LedgerCommandSignAndSubmitRequest:                        "LedgerCommandSignAndSubmitRequest",
	LedgerCommandSubmitRequest:                               "LedgerCommandSubmitRequest",
	LedgerCommandSubmitAck:                                   "LedgerCommandSubmitAck",
	LedgerCommandSubmitAction:                                "LedgerCommandSubmitAction",
	LedgerCommandSignRequest:                                 "LedgerCommandSignRequest",
	LedgerCommandMultiSignRequest:                            "LedgerCommandMultiSignRequest",
	LedgerCommandBuildGetDdoRequest:                          "LedgerCommandBuildGetDdoRequest",
	LedgerCommandBuildNymRequest:                             "LedgerCommandBuildNymRequest",
	LedgerCommandBuildAttribRequest:                          "LedgerCommandBuildAttribRequest",
	LedgerCommandBuildGetAttribRequest:                       "LedgerCommandBuildGetAttribRequest",
	LedgerCommandBuildGetNymRequest:                          "LedgerCommandBuildGetNymRequest",
	LedgerCommandParseGetNymResponse:                         "LedgerCommandParseGetNymResponse",
	LedgerCommandBuildSchemaRequest:                          "LedgerCommandBuildSchemaRequest",
	LedgerCommandBuildGetSchemaRequest:                       "LedgerCommandBuildGetSchemaRequest",
	LedgerCommandParseGetSchemaResponse:                      "LedgerCommandParseGetSchemaResponse",
	LedgerCommandBuildCredDefRequest:                         "LedgerCommandBuildCredDefRequest",
	LedgerCommandBuildGetCredDefRequest:                      "LedgerCommandBuildGetCredDefRequest",
	LedgerCommandParseGetCredDefResponse:                     "LedgerCommandParseGetCredDefResponse",
	LedgerCommandBuildNodeRequest:                            "LedgerCommandBuildNodeRequest",
	LedgerCommandBuildGetValidatorInfoRequest:                "LedgerCommandBuildGetValidatorInfoRequest",
	LedgerCommandBuildGetTxnRequest:                          "LedgerCommandBuildGetTxnRequest",
	LedgerCommandBuildPoolConfigRequest:                      "LedgerCommandBuildPoolConfigRequest",
	LedgerCommandBuildPoolRestartRequest:                     "LedgerCommandBuildPoolRestartRequest",
	LedgerCommandBuildPoolUpgradeRequest:                     "LedgerCommandBuildPoolUpgradeRequest",
	LedgerCommandBuildRevocRegDefRequest:                     "LedgerCommandBuildRevocRegDefRequest",
	LedgerCommandBuildGetRevocRegDefRequest:                  "LedgerCommandBuildGetRevocRegDefRequest",
	LedgerCommandParseGetRevocRegDefResponse:                 "LedgerCommandParseGetRevocRegDefResponse",
	LedgerCommandBuildRevocRegEntryRequest:                   "LedgerCommandBuildRevocRegEntryRequest",
	LedgerCommandBuildGetRevocRegRequest:                     "LedgerCommandBuildGetRevocRegRequest",
	LedgerCommandParseGetRevocRegResponse:                    "LedgerCommandParseGetRevocRegResponse",
	LedgerCommandBuildGetRevocRegDeltaRequest:                "LedgerCommandBuildGetRevocRegDeltaRequest",
	LedgerCommandParseGetRevocRegDeltaResponse:               "LedgerCommandParseGetRevocRegDeltaResponse",
	LedgerCommandRegisterSPParser:                            "LedgerCommandRegisterSPParser",
	LedgerCommandGetResponseMetadata:                         "LedgerCommandGetResponseMetadata",
	LedgerCommandBuildAuthRuleRequest:                        "LedgerCommandBuildAuthRuleRequest",
	LedgerCommandBuildAuthRulesRequest:                       "LedgerCommandBuildAuthRulesRequest",
	LedgerCommandBuildGetAuthRuleRequest:                     "LedgerCommandBuildGetAuthRuleRequest",
	LedgerCommandGetSchema:                                   "LedgerCommandGetSchema",
	LedgerCommandGetSchemaContinue:                           "LedgerCommandGetSchemaContinue",
	LedgerCommandGetCredDef:                                  "LedgerCommandGetCredDef",
	LedgerCommandGetCredDefContinue:                          "LedgerCommandGetCredDefContinue",
	LedgerCommandBuildTxnAuthorAgreementRequest:              "LedgerCommandBuildTxnAuthorAgreementRequest",
	LedgerCommandBuildDisableAllTxnAuthorAgreementsRequest:   "LedgerCommandBuildDisableAllTxnAuthorAgreementsRequest",
	LedgerCommandBuildGetTxnAuthorAgreementRequest:           "LedgerCommandBuildGetTxnAuthorAgreementRequest",
	LedgerCommandBuildAcceptanceMechanismRequests:            "LedgerCommandBuildAcceptanceMechanismRequests",
	LedgerCommandBuildGetAcceptanceMechanismsRequest:         "LedgerCommandBuildGetAcceptanceMechanismsRequest",
	LedgerCommandAppendTxnAuthorAgreementAcceptanceToRequest: "LedgerCommandAppendTxnAuthorAgreementAcceptanceToRequest",
	LedgerCommandAppendRequestEndorser:                       "LedgerCommandAppendRequestEndorser",
	PoolCommandCreate:                                        "PoolCommandCreate",
	PoolCommandDelete:                                        "PoolCommandDelete",
	PoolCommandOpen:                                          "PoolCommandOpen",
	PoolCommandOpenAck:                                       "PoolCommandOpenAck",
	PoolCommandList:                                          "PoolCommandList",
	PoolCommandClose:                                         "PoolCommandClose",
	PoolCommandCloseAck:                                      "PoolCommandCloseAck",
	PoolCommandRefresh:                                       "PoolCommandRefresh",
	PoolCommandRefreshAck:                                    "PoolCommandRefreshAck",
	PoolCommandSetProtocolVersion:                            "PoolCommandSetProtocolVersion",
	DidCommandCreateAndStoreMyDid:                            "DidCommandCreateAndStoreMyDid",
	DidCommandReplaceKeysStart:                               "DidCommandReplaceKeysStart",
	DidCommandReplaceKeysApply:                               "DidCommandReplaceKeysApply",
	DidCommandStoreTheirDid:                                  "DidCommandStoreTheirDid",
	DidCommandGetMyDidWithMeta:                               "DidCommandGetMyDidWithMeta",
	DidCommandListMyDidsWithMeta:                             "DidCommandListMyDidsWithMeta",
	DidCommandKeyForDid:                                      "DidCommandKeyForDid",
	DidCommandKeyForLocalDid:                                 "DidCommandKeyForLocalDid",
	DidCommandSetEndpointForDid:                              "DidCommandSetEndpointForDid",
	DidCommandGetEndpointForDid:                              "DidCommandGetEndpointForDid",
	DidCommandSetDidMetadata:                                 "DidCommandSetDidMetadata",
	DidCommandGetDidMetadata:                                 "DidCommandGetDidMetadata",
	DidCommandAbbreviateVerkey:                               "DidCommandAbbreviateVerkey",
	DidCommandGetNymAck:                                      "DidCommandGetNymAck",
	DidCommandGetAttribAck:                                   "DidCommandGetAttribAck",
	DidCommandQualifyDid:                                     "DidCommandQualifyDid",
	WalletCommandRegisterWalletType:                          "WalletCommandRegisterWalletType",
	WalletCommandCreate:                                      "WalletCommandCreate",
	WalletCommandCreateContinue:                              "WalletCommandCreateContinue",
	WalletCommandOpen:                                        "WalletCommandOpen",
	WalletCommandOpenContinue:                                "WalletCommandOpenContinue",
	WalletCommandClose:                                       "WalletCommandClose",
	WalletCommandDelete:                                      "WalletCommandDelete",
	WalletCommandDeleteContinue:                              "WalletCommandDeleteContinue",
	WalletCommandExport:                                      "WalletCommandExport",
	WalletCommandExportContinue:                              "WalletCommandExportContinue",
	WalletCommandImport:                                      "WalletCommandImport",
	WalletCommandImportContinue:                              "WalletCommandImportContinue",
	WalletCommandGenerateKey:                                 "WalletCommandGenerateKey",
	WalletCommandDeriveKey:                                   "WalletCommandDeriveKey",
	PairwiseCommandPairwiseExists:                            "PairwiseCommandPairwiseExists",
	PairwiseCommandCreatePairwise:                            "PairwiseCommandCreatePairwise",
	PairwiseCommandListPairwise:                              "PairwiseCommandListPairwise",
	PairwiseCommandGetPairwise:                               "PairwiseCommandGetPairwise",
	PairwiseCommandSetPairwiseMetadata:                       "PairwiseCommandSetPairwiseMetadata",
	NonSecretsCommandAddRecord:                               "NonSecretsCommandAddRecord",
	NonSecretsCommandUpdateRecordValue:                       "NonSecretsCommandUpdateRecordValue",
	NonSecretsCommandUpdateRecordTags:                        "NonSecretsCommandUpdateRecordTags",
	NonSecretsCommandAddRecordTags:                           "NonSecretsCommandAddRecordTags",
	NonSecretsCommandDeleteRecordTags:                        "NonSecretsCommandDeleteRecordTags",
	NonSecretsCommandDeleteRecord:                            "NonSecretsCommandDeleteRecord",
	NonSecretsCommandGetRecord:                               "NonSecretsCommandGetRecord",
	NonSecretsCommandOpenSearch:                              "NonSecretsCommandOpenSearch",
	NonSecretsCommandFetchSearchNextRecords:                  "NonSecretsCommandFetchSearchNextRecords",
	NonSecretsCommandCloseSearch:                             "NonSecretsCommandCloseSearch",
	PaymentsCommandRegisterMethod:                            "PaymentsCommandRegisterMethod",
	PaymentsCommandCreateAddress:                             "PaymentsCommandCreateAddress",
	PaymentsCommandCreateAddressAck:                          "PaymentsCommandCreateAddressAck",
	PaymentsCommandListAddresses:                             "PaymentsCommandListAddresses",
	PaymentsCommandAddRequestFees:                            "PaymentsCommandAddRequestFees",
	PaymentsCommandAddRequestFeesAck:                         "PaymentsCommandAddRequestFeesAck",
	PaymentsCommandParseResponseWithFees:                     "PaymentsCommandParseResponseWithFees",
	PaymentsCommandParseResponseWithFeesAck:                  "PaymentsCommandParseResponseWithFeesAck",
	PaymentsCommandBuildGetPaymentSourcesRequest:             "PaymentsCommandBuildGetPaymentSourcesRequest",
	PaymentsCommandBuildGetPaymentSourcesRequestAck:          "PaymentsCommandBuildGetPaymentSourcesRequestAck",
	PaymentsCommandParseGetPaymentSourcesResponse:            "PaymentsCommandParseGetPaymentSourcesResponse",
	PaymentsCommandParseGetPaymentSourcesResponseAck:         "PaymentsCommandParseGetPaymentSourcesResponseAck",
	PaymentsCommandBuildPaymentReq:                           "PaymentsCommandBuildPaymentReq",
	PaymentsCommandBuildPaymentReqAck:                        "PaymentsCommandBuildPaymentReqAck",
	PaymentsCommandParsePaymentResponse:                      "PaymentsCommandParsePaymentResponse",
	PaymentsCommandParsePaymentResponseAck:                   "PaymentsCommandParsePaymentResponseAck",
	PaymentsCommandAppendTxnAuthorAgreementAcceptanceToExtra: "PaymentsCommandAppendTxnAuthorAgreementAcceptanceToExtra",
	PaymentsCommandBuildMintReq:                              "PaymentsCommandBuildMintReq",
	PaymentsCommandBuildMintReqAck:                           "PaymentsCommandBuildMintReqAck",
	PaymentsCommandBuildSetTxnFeesReq:                        "PaymentsCommandBuildSetTxnFeesReq",
	PaymentsCommandBuildSetTxnFeesReqAck:                     "PaymentsCommandBuildSetTxnFeesReqAck",
	PaymentsCommandBuildGetTxnFeesReq:                        "PaymentsCommandBuildGetTxnFeesReq",
	PaymentsCommandBuildGetTxnFeesReqAck:                     "PaymentsCommandBuildGetTxnFeesReqAck",
	PaymentsCommandParseGetTxnFeesResponse:                   "PaymentsCommandParseGetTxnFeesResponse",
	PaymentsCommandParseGetTxnFeesResponseAck:                "PaymentsCommandParseGetTxnFeesResponseAck",
	PaymentsCommandBuildVerifyPaymentReq:                     "PaymentsCommandBuildVerifyPaymentReq",
	PaymentsCommandBuildVerifyPaymentReqAck:                  "PaymentsCommandBuildVerifyPaymentReqAck",
	PaymentsCommandParseVerifyPaymentResponse:                "PaymentsCommandParseVerifyPaymentResponse",
	PaymentsCommandParseVerifyPaymentResponseAck:             "PaymentsCommandParseVerifyPaymentResponseAck",
	PaymentsCommandGetRequestInfo:                            "PaymentsCommandGetRequestInfo",
	PaymentsCommandSignWithAddressReq:                        "PaymentsCommandSignWithAddressReq",
	PaymentsCommandSignWithAddressAck:                        "PaymentsCommandSignWithAddressAck",
	PaymentsCommandVerifyWithAddressReq:                      "PaymentsCommandVerifyWithAddressReq",
	PaymentsCommandVerifyWithAddressAck:                      "PaymentsCommandVerifyWithAddressAck",
	CacheCommandGetSchema:                                    "CacheCommandGetSchema",
	CacheCommandGetSchemaContinue:                            "CacheCommandGetSchemaContinue",
	CacheCommandGetCredDef:                                   "CacheCommandGetCredDef",
	CacheCommandGetCredDefContinue:                           "CacheCommandGetCredDefContinue",
	CacheCommandPurgeSchemaCache:                             "CacheCommandPurgeSchemaCache",
	CacheCommandPurgeCredDefCache:                            "CacheCommandPurgeCredDefCache",
	MetricsCommandCollectMetrics:                             "MetricsCommandCollectMetrics",
	Exit:                                                     "Exit",
}
