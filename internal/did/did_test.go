package did

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualification(t *testing.T) {
	q, err := Qualify("VsKV7grR1BUE29mG2Fm2kX", "sov")
	assert.NoError(t, err)
	assert.Equal(t, "did:sov:VsKV7grR1BUE29mG2Fm2kX", q)
	assert.Equal(t, "sov", Method(q))
	assert.Equal(t, "VsKV7grR1BUE29mG2Fm2kX", Unqualify(q))
	assert.Equal(t, "VsKV7grR1BUE29mG2Fm2kX", Unqualify("VsKV7grR1BUE29mG2Fm2kX"))
	assert.Empty(t, Method("VsKV7grR1BUE29mG2Fm2kX"))

	requalified, err := Qualify(q, "peer")
	assert.NoError(t, err)
	assert.Equal(t, "did:peer:VsKV7grR1BUE29mG2Fm2kX", requalified)
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{
		"VsKV7grR1BUE29mG2Fm2kX",
		"GjZWsBLgZCR18aL468JAT7w9CZRiBnpxUPPgyQxh4voa",
		"did:sov:VsKV7grR1BUE29mG2Fm2kX",
	} {
		assert.NoError(t, Validate(ok), ok)
	}
	for _, bad := range []string{"", "abc", "did:sov:0OIl", "VsKV7grR1BUE29mG2Fm2kXVsKV7gr"} {
		assert.Error(t, Validate(bad), bad)
	}
}
