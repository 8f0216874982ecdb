package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	list := []any{"prompt_id", "p-1", "attempts", 3, "reason", "key_superseded", "dangling"}

	assert.Equal(t, "p-1", ExtractString(list, "prompt_id"))
	assert.Equal(t, "key_superseded", ExtractString(list, "reason"))
	assert.Equal(t, "", ExtractString(list, "attempts"), "non-string values are ignored")
	assert.Equal(t, "", ExtractString(list, "dangling"), "a key without a value is ignored")
	assert.Equal(t, "", ExtractString(nil, "reason"))
}
