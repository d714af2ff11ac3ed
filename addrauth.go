// Package addrauth authenticates wallet addresses with a challenge/response
// protocol: the server issues a challenge bound to an address, the wallet signs
// it, and a verified signature is exchanged for a long-lived session token.
//
// Challenges are never stored server side. The challenge and the address it was
// issued to travel inside a signed, short-lived challenge token.
package addrauth

import (
	"context"

	"github.com/layer-3/addrauth/core"
	"github.com/layer-3/addrauth/service"
)

// Client represents the public interface of the authentication protocol
type Client interface {
	// GenerateChallenge returns a fresh challenge and its challenge token
	GenerateChallenge(address string) (*core.Challenge, error)

	// VerifyChallenge verifies the signed challenge and returns a session token
	VerifyChallenge(ctx context.Context, token, signature, publicKey, address string, included map[string]any) (*core.Session, error)

	// VerifyJWT verifies a session token and returns its claims
	VerifyJWT(token string) (core.Claims, error)
}

var _ Client = (*service.AuthService)(nil)

// New creates a Client from cfg
func New(cfg service.Config) (Client, error) {
	s, err := service.New(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
