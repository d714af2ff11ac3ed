package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/addrauth/core"
	"github.com/layer-3/addrauth/ports"
)

// JWTCodec implements the TokenCodec interface using HS256 JWTs
type JWTCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a JWTCodec
type Option func(*JWTCodec)

// WithClock overrides the time source used for signing and expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) {
		c.now = now
	}
}

// NewJWTCodec creates a new JWT codec signing with secret
func NewJWTCodec(secret string, opts ...Option) (ports.TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	c := &JWTCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	return c, nil
}

// reservedClaims are time claims the parser validates itself. Callers may not set them.
var reservedClaims = []string{"nbf", "iat"}

// Sign copies payload, sets its expiry to now+ttl and signs it.
// A non-positive ttl produces a token that is already expired; a positive ttl
// is rounded up to the next whole second so the token is never born expired.
// Any exp in payload is replaced; nbf and iat are rejected.
func (c *JWTCodec) Sign(payload core.Claims, ttl time.Duration) (string, error) {
	for _, name := range reservedClaims {
		if _, ok := payload[name]; ok {
			return "", core.NewValidationError("payload", fmt.Sprintf("claim %q is reserved", name))
		}
	}

	claims := jwt.MapClaims(payload.Clone())
	claims[core.ClaimExpiresAt] = jwt.NewNumericDate(expiresAt(c.now(), ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// expiresAt returns now+ttl, rounded up to whole seconds when ttl is positive
// since NumericDate truncates to seconds.
func expiresAt(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if ttl <= 0 {
		return exp
	}
	if truncated := exp.Truncate(time.Second); truncated.Before(exp) {
		return truncated.Add(time.Second)
	}
	return exp
}

// Verify checks the signature and expiry of token and returns its payload
func (c *JWTCodec) Verify(tokenStr string) (core.Claims, error) {
	claims := jwt.MapClaims{}

	_, err := c.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		// The signature is checked before the claims, so an expired token
		// reaching this point has a valid signature.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrTokenInvalid
	}

	return core.Claims(claims), nil
}
