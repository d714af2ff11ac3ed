package ports

import (
	"time"

	"github.com/layer-3/addrauth/core"
)

// TokenCodec signs payloads into self-contained tokens and verifies them back
type TokenCodec interface {
	// Sign embeds payload and an expiry of now+ttl into a signed token.
	// exp is set by Sign; the registered time claims nbf and iat are reserved and rejected.
	Sign(payload core.Claims, ttl time.Duration) (string, error)

	// Verify returns the payload of a valid token, or core.ErrTokenInvalid / core.ErrTokenExpired
	Verify(token string) (core.Claims, error)
}
