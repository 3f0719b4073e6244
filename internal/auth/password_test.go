package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, VerifyPassword("correct horse battery staple", hash))
	require.False(t, VerifyPassword("correct horse battery stapl", hash))
}

func TestPasswordHashesDiffer(t *testing.T) {
	first, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	second, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	// bcrypt salts every digest, so equality would indicate a broken hasher.
	require.NotEqual(t, first, second)
	require.True(t, VerifyPassword("s3cret-pass", first))
	require.True(t, VerifyPassword("s3cret-pass", second))
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	require.False(t, VerifyPassword("anything", "not-a-bcrypt-digest"))
	require.False(t, VerifyPassword("anything", ""))
}
