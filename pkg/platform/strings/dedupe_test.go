package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}

func TestDedupeCanonical(t *testing.T) {
	got := DedupeCanonical([]string{"First Name", "firstname", "age", " Age ", "height"})
	assert.Equal(t, []string{"First Name", "age", "height"}, got)
}
