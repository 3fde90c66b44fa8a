package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // sentinel errors surfaced by token verification
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/reading-practice/internal/model"
)

// TokenKind discriminates the four token purposes. Every purpose carries
// its own payload shape and lifetime, and verification is always performed
// against an expected kind so tokens cannot cross purposes.
type TokenKind int

const (
	KindAccess        TokenKind = iota // short-lived bearer token for protected routes
	KindRefresh                        // long-lived token exchanged for fresh access tokens
	KindPasswordReset                  // emailed link token proving control of an address
	KindActivation                     // emailed invite token carrying the requested role
)

// Verification failures. Callers that talk to clients must collapse
// ErrInvalidToken into one generic response; ErrTokenExpired may be
// reported separately only in flows where an expiry hint is safe
// (password reset confirmation).
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified, typed content decoded from a token. Only the
// fields relevant to the token's kind are populated: AccountID/Role for
// access and refresh tokens, Email for reset tokens, Email/RequestedRole
// for activation tokens.
type Claims struct {
	Kind          TokenKind
	AccountID     uint64
	Role          model.Role
	Email         string
	RequestedRole model.Role
	ExpiresAt     time.Time
}

// Tokens are stateless and self-contained: once issued they remain valid
// until natural expiry and there is no server-side revocation list. A
// client discarding its tokens does not invalidate them. This is a
// documented limitation, not an oversight; adding revocation would
// require a denylist keyed by token id.

// NewAccessToken builds and signs an HS256 JWT granting access for a
// single account. The payload carries the account id, its role, the
// is_access discriminator and an absolute expiry.
func NewAccessToken(secret string, accountID uint64, role model.Role, ttl time.Duration) (string, time.Time, error) {
	return newSessionToken(secret, accountID, role, true, ttl)
}

// NewRefreshToken is shaped exactly like an access token except for the
// is_access flag, so the verifier can keep the two kinds apart.
func NewRefreshToken(secret string, accountID uint64, role model.Role, ttl time.Duration) (string, time.Time, error) {
	return newSessionToken(secret, accountID, role, false, ttl)
}

func newSessionToken(secret string, accountID uint64, role model.Role, isAccess bool, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       string(role),
		"is_access":  isAccess,
		"expires":    exp.Unix(),
	}
	signed, err := sign(secret, claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// NewSessionTokens issues the (access, refresh) pair returned at login.
// Both tokens are fresh values; nothing shared is mutated.
func NewSessionTokens(secret string, accountID uint64, role model.Role, accessTTL, refreshTTL time.Duration) (access, refresh string, err error) {
	access, _, err = NewAccessToken(secret, accountID, role, accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, _, err = NewRefreshToken(secret, accountID, role, refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// NewPasswordResetToken signs a token proving that whoever presents it
// received mail at the given address. The payload is only the email and
// the expiry.
func NewPasswordResetToken(secret, email string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().UTC().Add(ttl)
	signed, err := sign(secret, jwt.MapClaims{
		"email":   email,
		"expires": exp.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// NewActivationToken signs an invite for a not-yet-existing account. The
// requested role is fixed at issuance time by the inviting superadmin and
// cannot be altered without breaking the signature.
func NewActivationToken(secret, email string, requested model.Role, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().UTC().Add(ttl)
	signed, err := sign(secret, jwt.MapClaims{
		"email":          email,
		"requested_role": string(requested),
		"expires":        exp.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func sign(secret string, claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken decodes raw and validates it against the expected kind.
// The checks run in a fixed order: signature and structure first, then
// expiry, then kind-specific payload shape. A token is accepted exactly
// while now <= expires; only expires < now rejects. Any mismatch other
// than expiry is reported as ErrInvalidToken without further detail, so
// callers cannot build an oracle out of the failure reason.
func VerifyToken(secret, raw string, kind TokenKind) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC before touching the payload.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	expVal, ok := mc["expires"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	exp := time.Unix(int64(expVal), 0).UTC()
	if exp.Unix() < time.Now().UTC().Unix() {
		return Claims{}, ErrTokenExpired
	}

	c := Claims{Kind: kind, ExpiresAt: exp}
	switch kind {
	case KindAccess, KindRefresh:
		id, ok := mc["account_id"].(float64)
		if !ok {
			return Claims{}, ErrInvalidToken
		}
		roleStr, ok := mc["role"].(string)
		if !ok {
			return Claims{}, ErrInvalidToken
		}
		role, err := model.ParseRole(roleStr)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		isAccess, ok := mc["is_access"].(bool)
		if !ok || isAccess != (kind == KindAccess) {
			// Right signature, wrong kind is indistinguishable from a bad token.
			return Claims{}, ErrInvalidToken
		}
		c.AccountID = uint64(id)
		c.Role = role
	case KindPasswordReset:
		email, ok := mc["email"].(string)
		if !ok || email == "" {
			return Claims{}, ErrInvalidToken
		}
		c.Email = email
	case KindActivation:
		email, ok := mc["email"].(string)
		if !ok || email == "" {
			return Claims{}, ErrInvalidToken
		}
		roleStr, ok := mc["requested_role"].(string)
		if !ok {
			return Claims{}, ErrInvalidToken
		}
		role, err := model.ParseRole(roleStr)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		c.Email = email
		c.RequestedRole = role
	default:
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}
