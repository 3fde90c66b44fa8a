package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reading-practice/internal/model"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	raw, exp, err := NewAccessToken(testSecret, 42, model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), exp, 5*time.Second)

	claim, err := VerifyToken(testSecret, raw, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claim.AccountID)
	assert.Equal(t, model.RoleAdmin, claim.Role)
	assert.Equal(t, KindAccess, claim.Kind)
	assert.Equal(t, exp.Unix(), claim.ExpiresAt.Unix())
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	raw, _, err := NewRefreshToken(testSecret, 7, model.RoleRegular, 24*time.Hour)
	require.NoError(t, err)

	claim, err := VerifyToken(testSecret, raw, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claim.AccountID)
	assert.Equal(t, model.RoleRegular, claim.Role)
}

func TestPasswordResetTokenRoundTrip(t *testing.T) {
	raw, _, err := NewPasswordResetToken(testSecret, "user@example.com", 15*time.Minute)
	require.NoError(t, err)

	claim, err := VerifyToken(testSecret, raw, KindPasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claim.Email)
}

func TestActivationTokenRoundTrip(t *testing.T) {
	raw, _, err := NewActivationToken(testSecret, "new@example.com", model.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claim, err := VerifyToken(testSecret, raw, KindActivation)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claim.Email)
	assert.Equal(t, model.RoleAdmin, claim.RequestedRole)
}

func TestSessionTokensAreIndependent(t *testing.T) {
	access, refresh, err := NewSessionTokens(testSecret, 3, model.RoleRegular, time.Minute, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	_, err = VerifyToken(testSecret, access, KindAccess)
	assert.NoError(t, err)
	_, err = VerifyToken(testSecret, refresh, KindRefresh)
	assert.NoError(t, err)
}

// Every token verifies only against its own kind; presenting one kind
// where another is expected fails like a forgery, never like expiry.
// The one deliberate asymmetry: an activation token satisfies the
// password-reset shape (both only require a signed email), which is
// harmless because both kinds prove control of the same mailbox.
func TestKindIsolation(t *testing.T) {
	access, _, err := NewAccessToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)
	refresh, _, err := NewRefreshToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)
	reset, _, err := NewPasswordResetToken(testSecret, "a@b.c", time.Hour)
	require.NoError(t, err)
	activation, _, err := NewActivationToken(testSecret, "a@b.c", model.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		kind TokenKind
		ok   bool
	}{
		{"access as refresh", access, KindRefresh, false},
		{"access as reset", access, KindPasswordReset, false},
		{"access as activation", access, KindActivation, false},
		{"refresh as access", refresh, KindAccess, false},
		{"refresh as reset", refresh, KindPasswordReset, false},
		{"refresh as activation", refresh, KindActivation, false},
		{"reset as access", reset, KindAccess, false},
		{"reset as refresh", reset, KindRefresh, false},
		{"reset as activation", reset, KindActivation, false},
		{"activation as access", activation, KindAccess, false},
		{"activation as refresh", activation, KindRefresh, false},
		{"activation as reset", activation, KindPasswordReset, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(testSecret, tt.raw, tt.kind)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestExpiredTokenIsReportedAsExpired(t *testing.T) {
	raw, _, err := NewAccessToken(testSecret, 1, model.RoleRegular, -2*time.Second)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenValidUpToExpiry(t *testing.T) {
	// A token is accepted while now <= expires; only a strictly past
	// expiry rejects. Two seconds of margin keeps this deterministic.
	raw, _, err := NewPasswordResetToken(testSecret, "a@b.c", 2*time.Second)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw, KindPasswordReset)
	assert.NoError(t, err)
}

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	sign := func(expires int64) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email":   "a@b.c",
			"expires": expires,
		})
		raw, err := tok.SignedString([]byte(testSecret))
		require.NoError(t, err)
		return raw
	}

	// A token expiring exactly now still verifies: now <= expires holds.
	_, err := VerifyToken(testSecret, sign(time.Now().UTC().Unix()), KindPasswordReset)
	assert.NoError(t, err)

	// One second past the boundary it is expired, not invalid.
	_, err = VerifyToken(testSecret, sign(time.Now().UTC().Unix()-1), KindPasswordReset)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecretRejected(t *testing.T) {
	raw, _, err := NewAccessToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", raw, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	raw, _, err := NewAccessToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)

	// Flip a character in the middle of the signature segment.
	i := len(raw) - 10
	swap := byte('A')
	if raw[i] == 'A' {
		swap = 'B'
	}
	tampered := raw[:i] + string(swap) + raw[i+1:]

	_, err = VerifyToken(testSecret, tampered, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	for _, raw := range []string{"", "x", "a.b.c", "not a jwt at all"} {
		_, err := VerifyToken(testSecret, raw, KindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestMissingExpiresClaimRejected(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": 1,
		"role":       "REGULAR",
		"is_access":  true,
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnknownRoleInTokenRejected(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": 1,
		"role":       "ROOT",
		"is_access":  true,
		"expires":    time.Now().UTC().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, raw, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
