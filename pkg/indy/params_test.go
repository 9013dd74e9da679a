package indy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "indy/pkg/domain-errors"
)

func TestInvalidParamPositions(t *testing.T) {
	assert.Equal(t, dErrors.CodeInvalidParam1, invalidParam(1))
	assert.Equal(t, dErrors.Code(111), invalidParam(12))
	assert.Equal(t, dErrors.Code(115), invalidParam(13))
	assert.Equal(t, dErrors.Code(129), invalidParam(27))
	assert.Equal(t, dErrors.CodeInvalidStructure, invalidParam(28))
}

func TestCheckReportsFirstBadArgument(t *testing.T) {
	assert.Equal(t, Success, check(false, 5, a(2, "x"), j(3, `{}`)))
	assert.Equal(t, invalidParam(2), check(false, 5, a(2, ""), j(3, "nope")))
	assert.Equal(t, invalidParam(3), check(false, 5, a(2, "x"), j(3, "nope")))
	assert.Equal(t, invalidParam(5), check(true, 5, a(2, "x")))
}
