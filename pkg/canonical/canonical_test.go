package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	t.Run("sorts keys at every depth", func(t *testing.T) {
		out, err := JSON(map[string]any{"b": 1, "a": map[string]any{"z": true, "y": nil}})
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"y":null,"z":true},"b":1}`, string(out))
	})

	t.Run("keeps integers and markup intact", func(t *testing.T) {
		var v any
		require.NoError(t, Decode([]byte(`{"n": 12345678901234567890, "s": "<a&b>"}`), &v))
		out, err := JSON(v)
		require.NoError(t, err)
		assert.Equal(t, `{"n":12345678901234567890,"s":"<a&b>"}`, string(out))
	})
}
