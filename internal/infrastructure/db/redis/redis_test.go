package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions_URLWins(t *testing.T) {
	opts, err := Config{URL: "redis://:s3cret@cache:6380/2", Addr: "ignored:6379", DB: 9}.options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestConfigOptions_Addr(t *testing.T) {
	opts, err := Config{Addr: "localhost:6379", Password: "pw", DB: 1}.options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestConfigOptions_BadURL(t *testing.T) {
	_, err := Config{URL: "http://nope"}.options()
	require.Error(t, err)
}

func TestRevocationKey(t *testing.T) {
	assert.Equal(t, "revoked:refresh:abc", revocationKey("abc"))
}
