package payments_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"indy/internal/command"
	"indy/internal/crypto"
	"indy/internal/ledger"
	"indy/internal/payments"
	"indy/internal/payments/mocks"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

type PaymentsSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	wallets *walletservice.Service
	h       command.WalletHandle
	svc     *payments.Service
	mock    *mocks.MockMethod
}

func TestPaymentsSuite(t *testing.T) {
	suite.Run(t, new(PaymentsSuite))
}

func (s *PaymentsSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.wallets = walletservice.New(s.T().TempDir())
	config := testutil.WalletConfig()
	s.Require().NoError(s.wallets.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := s.wallets.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	s.h = h

	s.svc = payments.NewService(s.wallets)
	s.Require().NoError(s.svc.RegisterMethod(payments.NullMethodName, payments.NewNullMethod(crypto.NewService(s.wallets))))
	s.mock = mocks.NewMockMethod(s.ctrl)
	s.Require().NoError(s.svc.RegisterMethod("sov", s.mock))
}

func (s *PaymentsSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *PaymentsSuite) TestRegistry() {
	s.Equal([]string{"null", "sov"}, s.svc.Methods())
	s.requireCode(s.svc.RegisterMethod("sov", s.mock), dErrors.CodeInvalidState)
	s.requireCode(s.svc.RegisterMethod("", s.mock), dErrors.CodeInvalidStructure)

	_, err := s.svc.CreateAddress(s.ctx, s.h, "btc", "{}")
	s.requireCode(err, dErrors.CodePaymentUnknownMethod)
}

func (s *PaymentsSuite) TestMethodSelection() {
	cases := []struct {
		name    string
		inputs  string
		outputs string
		method  string
		code    dErrors.Code
	}{
		{"inputs only", `["pay:sov:txo1"]`, `[]`, "sov", 0},
		{"outputs only", `[]`, `[{"recipient":"pay:sov:addr1","amount":1},{"recipient":"pay:sov:addr2","amount":2}]`, "sov", 0},
		{"both agree", `["pay:sov:txo1"]`, `[{"recipient":"pay:sov:addr1","amount":1}]`, "sov", 0},
		{"both disagree", `["pay:sov:txo1"]`, `[{"recipient":"pay:null:addr1","amount":1}]`, "", dErrors.CodePaymentIncompatibleMethods},
		{"inputs mix methods", `["pay:sov:txo1","pay:null:txo2"]`, `[]`, "", dErrors.CodePaymentIncompatibleMethods},
		{"outputs mix methods", `[]`, `[{"recipient":"pay:sov:a","amount":1},{"recipient":"pay:null:b","amount":1}]`, "", dErrors.CodePaymentIncompatibleMethods},
		{"nothing", `[]`, `[]`, "", dErrors.CodePaymentIncompatibleMethods},
		{"not an address", `["txo1"]`, `[]`, "", dErrors.CodePaymentIncompatibleMethods},
		{"malformed inputs", `{}`, `[]`, "", dErrors.CodeInvalidStructure},
		{"output without recipient", `[]`, `[{"amount":1}]`, "", dErrors.CodeInvalidStructure},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			method, err := payments.MethodFromInputsOutputs(tc.inputs, tc.outputs)
			if tc.code != 0 {
				s.requireCode(err, tc.code)
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.method, method)
		})
	}

	s.Run("address", func() {
		m, err := payments.MethodFromAddress("pay:sov:a:b")
		s.Require().NoError(err)
		s.Equal("sov", m)
		_, err = payments.MethodFromAddress("sov:addr")
		s.requireCode(err, dErrors.CodePaymentIncompatibleMethods)
	})
}

func (s *PaymentsSuite) TestAddresses() {
	s.Run("create and list", func() {
		addr, err := s.svc.CreateAddress(s.ctx, s.h, payments.NullMethodName, `{"seed":"`+testutil.MySeed+`"}`)
		s.Require().NoError(err)
		s.Equal("pay:null:"+testutil.MyVerkey, addr)
		_, err = s.svc.StoreAddress(s.ctx, s.h, addr)
		s.Require().NoError(err)

		s.mock.EXPECT().CreateAddress(gomock.Any(), s.h, "{}").Return("pay:sov:abc", nil)
		other, err := s.svc.CreateAddress(s.ctx, s.h, "sov", "{}")
		s.Require().NoError(err)
		_, err = s.svc.StoreAddress(s.ctx, s.h, other)
		s.Require().NoError(err)

		list, err := s.svc.ListAddresses(s.ctx, s.h)
		s.Require().NoError(err)
		s.JSONEq(`["pay:null:`+testutil.MyVerkey+`","pay:sov:abc"]`, list)
	})

	s.Run("malformed address from a method", func() {
		_, err := s.svc.StoreAddress(s.ctx, s.h, "abc")
		s.requireCode(err, dErrors.CodeInvalidState)
	})

	s.Run("sign and verify", func() {
		addr := "pay:null:" + testutil.MyVerkey
		sig, err := s.svc.SignWithAddress(s.ctx, s.h, addr, []byte("message"))
		s.Require().NoError(err)
		ok, err := s.svc.VerifyWithAddress(s.ctx, addr, []byte("message"), sig)
		s.Require().NoError(err)
		s.True(ok)
		ok, err = s.svc.VerifyWithAddress(s.ctx, addr, []byte("other"), sig)
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *PaymentsSuite) TestDispatch() {
	inputs := `["pay:sov:txo1"]`
	outputs := `[{"recipient":"pay:sov:addr1","amount":10}]`

	s.Run("request fees", func() {
		s.mock.EXPECT().AddRequestFees(gomock.Any(), s.h, testutil.TrusteeDID, `{"reqId":1}`, inputs, outputs, "").
			Return(`{"reqId":1,"fees":[]}`, nil)
		req, method, err := s.svc.AddRequestFees(s.ctx, s.h, testutil.TrusteeDID, `{"reqId":1}`, inputs, outputs, "")
		s.Require().NoError(err)
		s.Equal("sov", method)
		s.Equal(`{"reqId":1,"fees":[]}`, req)

		_, _, err = s.svc.AddRequestFees(s.ctx, s.h, testutil.TrusteeDID, `not json`, inputs, outputs, "")
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})

	s.Run("payment", func() {
		s.mock.EXPECT().BuildPaymentRequest(gomock.Any(), s.h, "", inputs, outputs, "").Return("req", nil)
		req, method, err := s.svc.BuildPaymentRequest(s.ctx, s.h, "", inputs, outputs, "")
		s.Require().NoError(err)
		s.Equal("req", req)
		s.Equal("sov", method)

		s.mock.EXPECT().ParsePaymentResponse(gomock.Any(), "resp").
			Return("", dErrors.New(dErrors.CodePaymentInsufficientFunds, "insufficient"))
		_, err = s.svc.ParsePaymentResponse(s.ctx, "sov", "resp")
		s.requireCode(err, dErrors.CodePaymentInsufficientFunds)
	})

	s.Run("sources and receipts", func() {
		s.mock.EXPECT().BuildGetPaymentSourcesRequest(gomock.Any(), s.h, "", "pay:sov:addr1", nil).Return("req", nil)
		_, method, err := s.svc.BuildGetPaymentSourcesRequest(s.ctx, s.h, "", "pay:sov:addr1", nil)
		s.Require().NoError(err)
		s.Equal("sov", method)

		s.mock.EXPECT().BuildVerifyPaymentRequest(gomock.Any(), s.h, "", "pay:sov:rcpt").Return("req", nil)
		_, method, err = s.svc.BuildVerifyPaymentRequest(s.ctx, s.h, "", "pay:sov:rcpt")
		s.Require().NoError(err)
		s.Equal("sov", method)
	})

	s.Run("mint picks the outputs method", func() {
		s.mock.EXPECT().BuildMintRequest(gomock.Any(), s.h, testutil.TrusteeDID, outputs, "").Return("mint", nil)
		_, method, err := s.svc.BuildMintRequest(s.ctx, s.h, testutil.TrusteeDID, outputs, "")
		s.Require().NoError(err)
		s.Equal("sov", method)
	})

	s.Run("fees", func() {
		_, err := s.svc.BuildSetTxnFeesRequest(s.ctx, s.h, testutil.TrusteeDID, "sov", `{"1":"ten"}`)
		s.requireCode(err, dErrors.CodeInvalidStructure)
		s.mock.EXPECT().BuildSetTxnFeesRequest(gomock.Any(), s.h, testutil.TrusteeDID, `{"1":10}`).Return("set", nil)
		_, err = s.svc.BuildSetTxnFeesRequest(s.ctx, s.h, testutil.TrusteeDID, "sov", `{"1":10}`)
		s.Require().NoError(err)
	})
}

func (s *PaymentsSuite) TestNullMethod() {
	addr := "pay:null:" + testutil.MyVerkey
	null := payments.NewNullMethod(crypto.NewService(s.wallets))

	s.Run("payment round trip", func() {
		req, method, err := s.svc.BuildPaymentRequest(s.ctx, s.h, testutil.TrusteeDID,
			`["pay:null:txo1"]`, `[{"recipient":"`+addr+`","amount":5}]`, `{"memo":"x"}`)
		s.Require().NoError(err)
		s.Equal(payments.NullMethodName, method)
		var m map[string]any
		s.Require().NoError(json.Unmarshal([]byte(req), &m))
		op := m["operation"].(map[string]any)
		s.Equal("NULL_PAYMENT", op["type"])
		s.Equal(map[string]any{"memo": "x"}, op["extra"])

		receipts, err := s.svc.ParsePaymentResponse(s.ctx, method, `{"op":"REPLY","result":{"receipts":[{"receipt":"pay:null:r1","amount":5}]}}`)
		s.Require().NoError(err)
		s.JSONEq(`[{"receipt":"pay:null:r1","amount":5}]`, receipts)
	})

	s.Run("sources paging", func() {
		sources, next, err := null.ParseGetPaymentSourcesResponse(s.ctx, `{"op":"REPLY","result":{"sources":[{"source":"pay:null:s1","amount":3}],"next":7}}`)
		s.Require().NoError(err)
		s.JSONEq(`[{"source":"pay:null:s1","amount":3}]`, sources)
		s.EqualValues(7, next)

		sources, next, err = null.ParseGetPaymentSourcesResponse(s.ctx, `{"op":"REPLY","result":{}}`)
		s.Require().NoError(err)
		s.Equal("[]", sources)
		s.EqualValues(-1, next)
	})

	s.Run("rejected reply", func() {
		_, err := null.ParseResponseWithFees(s.ctx, `{"op":"REJECT","reason":"insufficient funds"}`)
		s.requireCode(err, dErrors.CodeLedgerInvalidTransaction)
	})

	s.Run("unknown receipt", func() {
		_, err := null.ParseVerifyPaymentResponse(s.ctx, `{"op":"REPLY","result":{"receipt_info":null}}`)
		s.requireCode(err, dErrors.CodePaymentSourceDoesNotExist)
	})

	s.Run("foreign address", func() {
		_, err := null.SignWithAddress(s.ctx, s.h, "pay:sov:abc", []byte("m"))
		s.requireCode(err, dErrors.CodePaymentIncompatibleMethods)
	})

	s.Run("unsupported operations", func() {
		var u payments.Unimplemented
		_, err := u.BuildMintRequest(s.ctx, s.h, "", "[]", "")
		s.requireCode(err, dErrors.CodePaymentOperationNotSupported)
	})
}

func authRuleReply(constraint string) string {
	return `{"op":"REPLY","result":{"data":[{"auth_type":"1","auth_action":"ADD","field":"role","old_value":null,"new_value":"101","constraint":` + constraint + `}]}}`
}

func (s *PaymentsSuite) TestGetRequestInfo() {
	fees := `{"trustee_fee":20,"steward_fee":10}`
	orRule := `{"constraint_id":"OR","auth_constraints":[
		{"constraint_id":"ROLE","role":"0","sig_count":1,"need_to_be_owner":false,"metadata":{"fees":"trustee_fee"}},
		{"constraint_id":"ROLE","role":"2","sig_count":1,"need_to_be_owner":false,"metadata":{"fees":"steward_fee"}},
		{"constraint_id":"ROLE","role":"*","sig_count":1,"need_to_be_owner":false,"metadata":{"fees":"trustee_fee"}}]}`

	s.Run("cheapest matching requirement", func() {
		info, err := payments.GetRequestInfo(authRuleReply(orRule), `{"role":"2","sig_count":1}`, fees)
		s.Require().NoError(err)
		s.JSONEq(`{"price":10,"requirements":[{"role":"2","sig_count":1,"need_to_be_owner":false,"off_ledger_signature":false}]}`, info)
	})

	s.Run("wildcard role", func() {
		info, err := payments.GetRequestInfo(authRuleReply(orRule), `{"role":"101","sig_count":1}`, fees)
		s.Require().NoError(err)
		s.JSONEq(`{"price":20,"requirements":[{"role":"*","sig_count":1,"need_to_be_owner":false,"off_ledger_signature":false}]}`, info)
	})

	s.Run("and needs every part", func() {
		rule := `{"constraint_id":"AND","auth_constraints":[
			{"constraint_id":"ROLE","role":"0","sig_count":1,"metadata":{"fees":"steward_fee"}},
			{"constraint_id":"ROLE","role":"0","sig_count":1,"need_to_be_owner":true}]}`
		_, err := payments.GetRequestInfo(authRuleReply(rule), `{"role":"0","sig_count":1}`, fees)
		s.requireCode(err, dErrors.CodeTransactionNotAllowed)
		info, err := payments.GetRequestInfo(authRuleReply(rule), `{"role":"0","sig_count":1,"need_to_be_owner":true}`, fees)
		s.Require().NoError(err)
		var out payments.RequestInfo
		s.Require().NoError(json.Unmarshal([]byte(info), &out))
		s.EqualValues(10, out.Price)
		s.Len(out.Requirements, 2)
	})

	s.Run("not enough signatures", func() {
		rule := `{"constraint_id":"ROLE","role":"0","sig_count":3}`
		_, err := payments.GetRequestInfo(authRuleReply(rule), `{"role":"0","sig_count":2}`, fees)
		s.requireCode(err, dErrors.CodeTransactionNotAllowed)
	})

	s.Run("forbidden", func() {
		_, err := payments.GetRequestInfo(authRuleReply(`{"constraint_id":"FORBIDDEN"}`), `{"role":"0","sig_count":1}`, fees)
		s.requireCode(err, dErrors.CodeTransactionNotAllowed)
	})

	s.Run("reply must hold one rule", func() {
		_, err := payments.GetRequestInfo(`{"op":"REPLY","result":{"data":[]}}`, `{"role":"0","sig_count":1}`, fees)
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})

	s.Run("requester must sign", func() {
		_, err := payments.GetRequestInfo(authRuleReply(orRule), `{"role":"0","sig_count":0}`, fees)
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})
}

func (s *PaymentsSuite) TestExtraWithAcceptance() {
	text, version := "some agreement text", "1.0.0"
	extra, err := payments.PreparePaymentExtraWithAcceptanceData(`{"memo":"rent"}`, &text, &version, nil, "click_agreement", 86400*3+100)
	s.Require().NoError(err)
	s.JSONEq(`{"memo":"rent","taaAcceptance":{"mechanism":"click_agreement","taaDigest":"`+
		ledger.TAADigest(text, version)+`","time":259200}}`, extra)

	extra, err = payments.PreparePaymentExtraWithAcceptanceData("", &text, &version, nil, "click_agreement", 0)
	s.Require().NoError(err)
	s.Contains(extra, "taaAcceptance")

	_, err = payments.PreparePaymentExtraWithAcceptanceData(`[1]`, &text, &version, nil, "click_agreement", 0)
	s.requireCode(err, dErrors.CodeInvalidStructure)
	_, err = payments.PreparePaymentExtraWithAcceptanceData("", nil, nil, nil, "click_agreement", 0)
	s.requireCode(err, dErrors.CodeInvalidStructure)
}
