package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
	s "indy/pkg/string"
)

// Limits enforced at the boundary.
const (
	// MaxSchemaAttributes is the largest attribute set a schema may carry.
	MaxSchemaAttributes = 125

	// MaxFetchCount caps one page of a search cursor.
	MaxFetchCount = 10_000
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("did", func(fl validator.FieldLevel) bool {
		return IsDID(fl.Field().String())
	})
	return v
}

// IsDID reports whether did is an unqualified DID (base58 of 16 or 32
// bytes) or a fully qualified did:<method>:<id>.
func IsDID(did string) bool {
	if rest, ok := strings.CutPrefix(did, "did:"); ok {
		method, id, found := strings.Cut(rest, ":")
		return found && method != "" && id != ""
	}
	raw, err := base58.Decode(did)
	return err == nil && (len(raw) == 16 || len(raw) == 32)
}

// Validate validates a struct using the default validator and returns a
// CommonInvalidStructure domain error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeInvalidStructure, ErrorMessage(err))
	}
	return nil
}

// DecodeJSON unmarshals a JSON document into v and validates it.
// Malformed JSON and failed validation both yield CommonInvalidStructure.
func DecodeJSON(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed json: "+err.Error())
	}
	return Validate(v)
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid structure"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "did":
		return fmt.Sprintf("%s must be a did", field)
	default:
		if field == "" {
			return "invalid structure"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeInvalidStructure, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// Param checks a boundary argument. It returns CommonInvalidParam<pos>
// when ok is false.
func Param(pos int, ok bool, what string) error {
	if ok {
		return nil
	}
	return dErrors.Newf(dErrors.InvalidParam(pos), "invalid parameter %d: %s", pos, what)
}

// NonEmpty is Param for required string arguments.
func NonEmpty(pos int, v string) error {
	return Param(pos, v != "", "empty string")
}

// JSON is Param for arguments that must be a well-formed JSON document.
func JSON(pos int, v string) error {
	return Param(pos, v != "" && json.Valid([]byte(v)), "malformed json")
}
