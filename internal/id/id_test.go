package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for range 500 {
		v, err := Generate(PrefixOrder)
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup, "duplicate id %s", v)
		seen[v] = struct{}{}
	}
}

func TestGenerate_Prefixes(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixAuthor, PrefixBook, PrefixCartItem, PrefixOrder, PrefixOrderItem} {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(v, prefix+"-"), "id %s", v)
			// NanoID default length is 21.
			assert.Len(t, strings.TrimPrefix(v, prefix+"-"), 21)
		})
	}
}

