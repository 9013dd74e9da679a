package validation

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "indy/pkg/domain-errors"
)

// ValidationSuite covers the boundary validators. Every JSON argument
// crossing the public API goes through DecodeJSON.
type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

type walletConfig struct {
	ID          string `json:"id" validate:"notblank"`
	StorageType string `json:"storage_type" validate:"omitempty,oneof=default inmem postgres"`
	Owner       string `json:"owner" validate:"omitempty,did"`
}

func (s *ValidationSuite) TestDecodeJSON() {
	s.Run("accepts a valid document", func() {
		var c walletConfig
		s.NoError(DecodeJSON(`{"id":"w1","storage_type":"default"}`, &c))
		s.Equal("w1", c.ID)
	})

	s.Run("malformed json is invalid structure", func() {
		var c walletConfig
		err := DecodeJSON(`{"id":`, &c)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("blank id names the json field", func() {
		var c walletConfig
		err := DecodeJSON(`{"id":"  "}`, &c)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
		s.Equal("id must not be blank", err.Error())
	})

	s.Run("oneof reports allowed values", func() {
		var c walletConfig
		err := DecodeJSON(`{"id":"w","storage_type":"mysql"}`, &c)
		s.Contains(err.Error(), "storage_type must be one of")
	})

	s.Run("did rule", func() {
		var c walletConfig
		s.NoError(DecodeJSON(`{"id":"w","owner":"NcYxiDXkpYi6ov5FcYDi1e"}`, &c))
		s.Error(DecodeJSON(`{"id":"w","owner":"not-a-did"}`, &c))
	})
}

func (s *ValidationSuite) TestIsDID() {
	s.True(IsDID("NcYxiDXkpYi6ov5FcYDi1e"))
	s.True(IsDID("did:sov:NcYxiDXkpYi6ov5FcYDi1e"))
	s.False(IsDID("did:sov"))
	s.False(IsDID("0OIl"))
	s.False(IsDID(""))
}

func (s *ValidationSuite) TestParam() {
	s.Run("position maps to numbered code", func() {
		s.True(dErrors.HasCode(NonEmpty(2, ""), dErrors.CodeInvalidParam2))
		s.True(dErrors.HasCode(JSON(14, "{"), dErrors.CodeInvalidParam14))
	})

	s.Run("valid values pass", func() {
		s.NoError(NonEmpty(1, "x"))
		s.NoError(JSON(3, `{"a":1}`))
	})
}

func (s *ValidationSuite) TestCheckSliceCount() {
	s.NoError(CheckSliceCount("attr_names", MaxSchemaAttributes, MaxSchemaAttributes))
	s.True(dErrors.HasCode(CheckSliceCount("attr_names", MaxSchemaAttributes+1, MaxSchemaAttributes), dErrors.CodeInvalidStructure))
}
