package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{40}$`)

func TestCryptoRandomBytes(t *testing.T) {
	a, err := CryptoRandomBytes(32)
	require.NoError(t, err)
	b, err := CryptoRandomBytes(32)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestFeedKeyTokenFormat(t *testing.T) {
	token, err := FeedKeyToken(7, "alice")
	require.NoError(t, err)
	assert.True(t, hexToken.MatchString(token), "token %q is not 40 lowercase hex chars", token)
}

func TestFeedKeyTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		// Same inputs must still yield distinct tokens: uniqueness comes
		// from the entropy, not the site/login mix-in.
		token, err := FeedKeyToken(7, "alice")
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}
