package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum HS256 key size accepted by NewTokenCodec.
const MinSecretLength = 32

// Token errors. The request filter downgrades all of them to an anonymous
// caller; they never reach an HTTP response.
var (
	ErrTokenMissing      = errors.New("auth: token missing")
	ErrTokenMalformed    = errors.New("auth: token malformed")
	ErrTokenBadSignature = errors.New("auth: token signature invalid")
	ErrTokenExpired      = errors.New("auth: token expired")
)

// Claims is the verified content of a credential token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and parses HS256 signed credential tokens. It is
// immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec builds a codec around a copy of secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: token secret must be at least %d bytes", MinSecretLength)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	c := &TokenCodec{
		secret: key,
		now:    time.Now,
		parser: jwt.NewParser(jwt.WithStrictDecoding()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subject that expires ttl from now.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject required")
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature of token and only then decodes its claims.
// Expiry is not checked; see IsExpired.
func (c *TokenCodec) Parse(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrTokenMissing
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrTokenMalformed, len(parts))
	}

	// Strict decoding rejects non-zero padding bits, so every character of
	// the signature segment is significant.
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil || len(sig) == 0 {
		return Claims{}, ErrTokenBadSignature
	}
	// HMAC comparison inside Verify is constant time.
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return Claims{}, ErrTokenBadSignature
	}

	var registered jwt.RegisteredClaims
	parsed, _, err := c.parser.ParseUnverified(token, &registered)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if parsed.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return Claims{}, fmt.Errorf("%w: unexpected alg %q", ErrTokenMalformed, parsed.Method.Alg())
	}
	if registered.Subject == "" || registered.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: sub and exp are required", ErrTokenMalformed)
	}

	claims := Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}

// IsExpired reports whether the current time is at or past claims.ExpiresAt.
func (c *TokenCodec) IsExpired(claims Claims) bool {
	return !c.now().Before(claims.ExpiresAt)
}

// Verify parses token and rejects it when expired.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return Claims{}, err
	}
	if c.IsExpired(claims) {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}
