package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	Secret:   "test-secret",
	Issuer:   "niente",
	Audience: "niente-api",
	TTL:      time.Hour,
}

func TestIssueAndVerify(t *testing.T) {
	token, err := NewIssuer(testConfig).Issue("editor-1", "Editor")
	require.NoError(t, err)

	principal, err := NewVerifier(testConfig).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "editor-1", principal.Subject)
	assert.Equal(t, "Editor", principal.Name)
}

func TestVerifyFailures(t *testing.T) {
	valid, err := NewIssuer(testConfig).Issue("editor-1", "")
	require.NoError(t, err)

	otherSecret := testConfig
	otherSecret.Secret = "someone-else"
	forged, err := NewIssuer(otherSecret).Issue("editor-1", "")
	require.NoError(t, err)

	otherIssuer := testConfig
	otherIssuer.Issuer = "elsewhere"
	wrongIssuer, err := NewIssuer(otherIssuer).Issue("editor-1", "")
	require.NoError(t, err)

	otherAudience := testConfig
	otherAudience.Audience = "other-api"
	wrongAudience, err := NewIssuer(otherAudience).Issue("editor-1", "")
	require.NoError(t, err)

	expiredIssuer := NewIssuer(testConfig)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue("editor-1", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:   testConfig.Issuer,
		Audience: jwt.ClaimStrings{testConfig.Audience},
		Subject:  "forever",
	}})
	eternal, err := noExpiry.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    testConfig.Issuer,
		Audience:  jwt.ClaimStrings{testConfig.Audience},
		Subject:   "editor-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	otherAlg, err := hs512.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	verifier := NewVerifier(testConfig)
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "missing", token: "", want: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", want: ErrInvalidToken},
		{name: "wrong secret", token: forged, want: ErrInvalidToken},
		{name: "expired", token: expired, want: ErrInvalidToken},
		{name: "alg none", token: unsigned, want: ErrInvalidToken},
		{name: "no exp", token: eternal, want: ErrInvalidToken},
		{name: "hs512", token: otherAlg, want: ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, want: ErrInvalidIssuer},
		{name: "wrong audience", token: wrongAudience, want: ErrInvalidAudience},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = verifier.Verify(valid)
	assert.NoError(t, err)
}

func TestUnconfiguredSecret(t *testing.T) {
	_, err := NewIssuer(Config{}).Issue("a", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier(Config{}).Verify("a.b.c")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
