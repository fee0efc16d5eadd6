package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.SplitN(hash, ":", 2)
	require.Len(t, parts, 2, "hash must be salt:key")

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("samepassword")
	require.NoError(t, err)
	second, err := Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password must produce different hashes")
	assert.True(t, Verify("samepassword", first))
	assert.True(t, Verify("samepassword", second))
}

func TestVerifyMalformedHash(t *testing.T) {
	tests := []struct {
		name       string
		storedHash string
	}{
		{name: "empty string", storedHash: ""},
		{name: "no separator", storedHash: "justonechunk"},
		{name: "bad base64 salt", storedHash: "***:YWJjZA=="},
		{name: "bad base64 key", storedHash: "YWJjZA==:***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Verify("anything", tt.storedHash))
		})
	}
}
