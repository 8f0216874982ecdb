package contacts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sendgate/pkg/domain-errors"
)

func TestInMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewInMemoryDirectory()

	t.Run("miss is not an error", func(t *testing.T) {
		name, ok, err := dir.DisplayName(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, name)
	})

	t.Run("stores trimmed names", func(t *testing.T) {
		require.NoError(t, dir.Put(ctx, "alice", "  Alice Liddell "))

		name, ok, err := dir.DisplayName(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Alice Liddell", name)
	})

	t.Run("rejects blank and oversized names", func(t *testing.T) {
		err := dir.Put(ctx, "bob", "   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		err = dir.Put(ctx, "bob", strings.Repeat("x", maxDisplayNameLength+1))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, ok, _ := dir.DisplayName(ctx, "bob")
		assert.False(t, ok)
	})
}
