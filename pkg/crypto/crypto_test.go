package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	require.True(t, VerifyPassword(hash, "secret"))
	require.False(t, VerifyPassword(hash, "incorrect"))
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	first, err := HashPassword("secret")
	require.NoError(t, err)
	second, err := HashPassword("secret")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.NotEqual(t, SaltFromHash(first), SaltFromHash(second))
	require.True(t, VerifyPassword(first, "secret"))
	require.True(t, VerifyPassword(second, "secret"))
}

func TestVerifyPasswordRejectsMalformedDigest(t *testing.T) {
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "secret"))
	require.False(t, VerifyPassword("", ""))
}

func TestHashPasswordAcceptsLongMultibytePasswords(t *testing.T) {
	password := strings.Repeat("é", 60)
	require.Greater(t, len(password), maxPasswordBytes)

	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, password))
	require.False(t, VerifyPassword(hash, strings.Repeat("é", 30)))
}

func TestSaltFromHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	salt := SaltFromHash(hash)
	require.Len(t, salt, 29)
	require.Equal(t, hash[:29], salt)
	require.Empty(t, SaltFromHash("short"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = GenerateToken(0)
	require.ErrorIs(t, err, ErrInvalidTokenLength)
}

func TestGenerateHexToken(t *testing.T) {
	token, err := GenerateHexToken(32)
	require.NoError(t, err)
	require.Len(t, token, 64)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 32)

	other, err := GenerateHexToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
