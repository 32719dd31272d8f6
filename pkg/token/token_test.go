package token

import (
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HRCore/config"
	"HRCore/pkg/errors"
)

func setup(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 30
	config.Cfg.JWTRefreshDays = 7
	require.NoError(t, Init())
}

func parse(t *testing.T, raw string) jwtv5.MapClaims {
	t.Helper()
	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(raw, claims, func(*jwtv5.Token) (interface{}, error) {
		return []byte(config.Cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestAccessTokenCarriesSubject(t *testing.T) {
	setup(t)
	emp := int64(42)

	access, _, expiresIn, err := GenerateTokenPair(Subject{AccountID: 7, EmployeeID: &emp, Roles: []string{"RRHH"}})
	require.NoError(t, err)
	assert.Positive(t, expiresIn)

	sub, err := SubjectFromClaims(parse(t, access))
	require.NoError(t, err)
	assert.Equal(t, int64(7), sub.AccountID)
	require.NotNil(t, sub.EmployeeID)
	assert.Equal(t, emp, *sub.EmployeeID)
	assert.Equal(t, []string{"RRHH"}, sub.Roles)
}

func TestAccountWithoutEmployee(t *testing.T) {
	setup(t)

	access, _, _, err := GenerateTokenPair(Subject{AccountID: 1, Roles: []string{"ADMIN"}})
	require.NoError(t, err)

	sub, err := SubjectFromClaims(parse(t, access))
	require.NoError(t, err)
	assert.Nil(t, sub.EmployeeID)
}

func TestRefreshTokenTypeIsEnforced(t *testing.T) {
	setup(t)

	access, refresh, _, err := GenerateTokenPair(Subject{AccountID: 9})
	require.NoError(t, err)

	id, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	_, err = ValidateRefreshToken(access)
	assert.ErrorIs(t, err, errors.ErrInvalidTokenType)

	_, err = SubjectFromClaims(parse(t, refresh))
	assert.ErrorIs(t, err, errors.ErrInvalidTokenType)
}

func TestRefreshRejectsForeignSignature(t *testing.T) {
	setup(t)

	forged, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		IdentityKey: "1",
		TypeKey:     "refresh",
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = ValidateRefreshToken(forged)
	assert.ErrorIs(t, err, errors.ErrInvalidToken)
}
