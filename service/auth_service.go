package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/addrauth/adapters/tokenizer"
	"github.com/layer-3/addrauth/config"
	"github.com/layer-3/addrauth/core"
	"github.com/layer-3/addrauth/ports"
)

// Config is the constructor configuration of an AuthService
type Config struct {
	// VerifySignature performs the actual cryptographic signature check. Required.
	VerifySignature ports.SignatureVerifier
	// JWTSecret signs and verifies every token. Required.
	JWTSecret string
	// ChallengeExpiresIn is the challenge token lifetime, e.g. "10m"
	ChallengeExpiresIn string
	// JWTExpiresIn is the session token lifetime, e.g. "100d"
	JWTExpiresIn string

	// Store makes challenge tokens single-use when set
	Store ports.ChallengeStore
	// Events is notified of every minted session when set
	Events ports.EventPublisher
	Logger *slog.Logger
	// Clock overrides time.Now for token expiry
	Clock func() time.Time
}

// AuthService issues challenges, turns signed challenges into session tokens and
// verifies session tokens. It is immutable after construction and safe for concurrent use.
type AuthService struct {
	codec    ports.TokenCodec
	verifier ports.SignatureVerifier
	store    ports.ChallengeStore
	eventPub ports.EventPublisher
	logger   *slog.Logger

	challengeTTL time.Duration
	sessionTTL   time.Duration
	now          func() time.Time
}

// New creates a new authentication service
func New(cfg Config) (*AuthService, error) {
	if cfg.VerifySignature == nil {
		return nil, core.NewValidationError("VerifySignature", "a signature verifier is required")
	}
	if cfg.JWTSecret == "" {
		return nil, core.NewValidationError("JWTSecret", "must be a non-empty string")
	}
	if cfg.ChallengeExpiresIn == "" {
		cfg.ChallengeExpiresIn = config.DefaultChallengeExpiresIn
	}
	if cfg.JWTExpiresIn == "" {
		cfg.JWTExpiresIn = config.DefaultJWTExpiresIn
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	challengeTTL, err := config.ParseExpiry(cfg.ChallengeExpiresIn)
	if err != nil {
		return nil, core.NewValidationError("ChallengeExpiresIn", err.Error())
	}
	sessionTTL, err := config.ParseExpiry(cfg.JWTExpiresIn)
	if err != nil {
		return nil, core.NewValidationError("JWTExpiresIn", err.Error())
	}

	codec, err := tokenizer.NewJWTCodec(cfg.JWTSecret, tokenizer.WithClock(cfg.Clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	return &AuthService{
		codec:        codec,
		verifier:     cfg.VerifySignature,
		store:        cfg.Store,
		eventPub:     cfg.Events,
		logger:       cfg.Logger,
		challengeTTL: challengeTTL,
		sessionTTL:   sessionTTL,
		now:          cfg.Clock,
	}, nil
}

// GenerateChallenge creates a fresh challenge bound to address
func (s *AuthService) GenerateChallenge(address string) (*core.Challenge, error) {
	if address == "" {
		return nil, core.NewValidationError("address", "must be a non-empty string")
	}

	// Generate random challenge
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	challenge := &core.Challenge{
		ID:      uuid.New().String(),
		Address: address,
		Value:   hex.EncodeToString(nonceBytes) + core.ChallengeSuffix,
	}

	token, err := s.codec.Sign(core.Claims{
		core.ClaimAddress:   challenge.Address,
		core.ClaimChallenge: challenge.Value,
		core.ClaimID:        challenge.ID,
	}, s.challengeTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge token: %w", err)
	}
	challenge.Token = token

	s.logger.Debug("challenge issued", "address", address, "challenge_id", challenge.ID)

	return challenge, nil
}

// VerifyChallenge checks that signature signs the challenge carried by token and
// mints a session token for the address embedded in that challenge token.
// The address argument is only forwarded to the signature verifier.
func (s *AuthService) VerifyChallenge(
	ctx context.Context,
	token, signature, publicKey, address string,
	included map[string]any,
) (*core.Session, error) {
	if err := validateVerifyArgs(token, signature, publicKey, address, included); err != nil {
		return nil, err
	}

	decoded, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	boundAddress, ok := decoded.String(core.ClaimAddress)
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	challenge, ok := decoded.String(core.ClaimChallenge)
	if !ok {
		return nil, core.ErrTokenInvalid
	}

	// Errors from the verifier are returned unchanged
	valid, err := s.verifier.Verify(ctx, challenge, signature, publicKey, address)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, core.ErrInvalidSignature
	}

	challengeID, _ := decoded.String(core.ClaimID)
	if err := s.consume(ctx, decoded, challengeID); err != nil {
		return nil, err
	}

	claims := core.Claims{
		core.ClaimAddress:                   boundAddress,
		core.ClaimChallengeThatWasPresented: challenge,
		core.ClaimSignedChallenge:           signature,
	}
	if included != nil {
		claims[core.ClaimIncluded] = included
	}

	sessionToken, err := s.codec.Sign(claims, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	s.logger.Debug("session issued", "address", boundAddress, "challenge_id", challengeID)

	if s.eventPub != nil {
		if err := s.eventPub.PublishSessionIssued(ctx, boundAddress, challengeID); err != nil {
			// Publishing is best effort
			s.logger.Warn("failed to publish session event", "address", boundAddress, "error", err)
		}
	}

	return &core.Session{
		Address: boundAddress,
		Token:   sessionToken,
	}, nil
}

// VerifyJWT verifies a session token and returns its claims
func (s *AuthService) VerifyJWT(token string) (core.Claims, error) {
	if token == "" {
		return nil, core.NewValidationError("token", "must be a non-empty string")
	}

	return s.codec.Verify(token)
}

// consume marks the challenge as redeemed when single-use challenges are enabled
func (s *AuthService) consume(ctx context.Context, decoded core.Claims, challengeID string) error {
	if s.store == nil {
		return nil
	}
	if challengeID == "" {
		return core.ErrTokenInvalid
	}

	ttl := s.challengeTTL
	if exp, ok := decoded[core.ClaimExpiresAt].(float64); ok {
		ttl = time.Unix(int64(exp), 0).Sub(s.now()) + time.Second
	}

	fresh, err := s.store.Consume(ctx, challengeID, ttl)
	if err != nil {
		return fmt.Errorf("failed to record challenge use: %w", err)
	}
	if !fresh {
		return core.ErrChallengeConsumed
	}

	return nil
}

func validateVerifyArgs(token, signature, publicKey, address string, included map[string]any) error {
	args := []struct{ name, value string }{
		{"token", token},
		{"signature", signature},
		{"publicKey", publicKey},
		{"address", address},
	}
	for _, arg := range args {
		if arg.value == "" {
			return core.NewValidationError(arg.name, "must be a non-empty string")
		}
	}

	if included != nil {
		if _, err := json.Marshal(included); err != nil {
			return core.NewValidationError("included", "must be a JSON object: "+err.Error())
		}
	}

	return nil
}
