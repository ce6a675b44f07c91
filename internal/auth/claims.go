package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTokenTTL applies when a non-positive TTL is requested.
const DefaultAccessTokenTTL = 60 * time.Minute

// Claims extends the JWT registered claims with the account role.
// The subject is the decimal user ID.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// UserID parses the subject back into a user ID.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject is not a user id", ErrTokenInvalid)
	}
	return id, nil
}

// TokenIssuer signs and verifies HS256 access tokens with one process-wide secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A non-positive ttl falls back to DefaultAccessTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration, issuer string) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// TTL returns the default token lifetime.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue creates a token for the user with the default lifetime.
func (ti *TokenIssuer) Issue(userID int64, role Role) (string, time.Time, error) {
	return ti.IssueWithTTL(userID, role, ti.ttl)
}

// IssueWithTTL creates a token embedding subject, role and absolute expiry.
func (ti *TokenIssuer) IssueWithTTL(userID int64, role Role, ttl time.Duration) (string, time.Time, error) {
	now := ti.now()
	expires := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates signature, algorithm and expiry and returns the claims.
// Every failure wraps ErrTokenInvalid.
func (ti *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	}
	if ti.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ti.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return ti.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !IsValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: missing or unknown role", ErrTokenInvalid)
	}

	return claims, nil
}

// GenerateAccessToken signs a token with a one-off issuer. Handlers use a
// shared TokenIssuer; this form suits tooling and tests.
func GenerateAccessToken(userID int64, role Role, ttl time.Duration, secret string) (string, time.Time, error) {
	return NewTokenIssuer(secret, ttl, "").Issue(userID, role)
}

// ParseToken validates token against secret without an issuer check.
func ParseToken(token, secret string) (*Claims, error) {
	return NewTokenIssuer(secret, 0, "").Parse(token)
}
