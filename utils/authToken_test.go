package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestKey(t *testing.T) {
	t.Helper()
	t.Setenv("SYMMETRIC_KEY", "0123456789abcdef0123456789abcdef")
}

func TestGenerateAndValidateTokenRoundTrip(t *testing.T) {
	setTestKey(t)

	token, err := GenerateAccessToken(7, "A12345")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "A12345", claims.RegNo)

	doctorID, err := claims.DoctorIDValue()
	require.NoError(t, err)
	assert.Equal(t, uint(7), doctorID)
}

func TestGenerateTokensReturnsDistinctPair(t *testing.T) {
	setTestKey(t)

	accessToken, refreshToken, err := GenerateTokens(7, "A12345")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	for _, token := range []string{accessToken, refreshToken} {
		claims, err := ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "A12345", claims.RegNo)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setTestKey(t)

	_, err := ValidateToken("v2.local.garbage")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	setTestKey(t)
	token, err := GenerateAccessToken(7, "A12345")
	require.NoError(t, err)

	t.Setenv("SYMMETRIC_KEY", "ffffffffffffffffffffffffffffffff")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
