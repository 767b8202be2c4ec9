// Package ucp implements the UCP commerce bridge: an OAuth2-style
// authorization broker, an ephemeral checkout-session broker and capability
// discovery, in front of an external catalog and cart backend.
package ucp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Redemptive-Software/woocommerce-ucp/api"
	"github.com/Redemptive-Software/woocommerce-ucp/cache"
	"github.com/Redemptive-Software/woocommerce-ucp/domain"
	"github.com/Redemptive-Software/woocommerce-ucp/errors"
)

// TokenScope is the fixed scope granted on every successful exchange.
const TokenScope = "ucp:scopes:checkout_session"

// Default lifetimes for issued credentials.
const (
	DefaultAuthCodeTTL    = 10 * time.Minute
	DefaultAccessTokenTTL = 24 * time.Hour
)

const (
	authCodeKeyPrefix    = "ucp:auth_code:"
	accessTokenKeyPrefix = "ucp:access_token:"
)

// AuthServer implements the authorization-code grant: it mints short-lived
// single-use codes bound to a user and client, exchanges them for opaque
// bearer tokens, and validates bearer tokens on inbound requests.
type AuthServer struct {
	store    cache.Store
	codeTTL  time.Duration
	tokenTTL time.Duration
}

// NewAuthServer creates an AuthServer persisting codes and tokens in store.
// Zero TTLs fall back to the defaults (10 minutes, 24 hours).
func NewAuthServer(store cache.Store, codeTTL, tokenTTL time.Duration) *AuthServer {
	if codeTTL <= 0 {
		codeTTL = DefaultAuthCodeTTL
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultAccessTokenTTL
	}

	return &AuthServer{
		store:    store,
		codeTTL:  codeTTL,
		tokenTTL: tokenTTL,
	}
}

// Authorize mints an authorization code bound to the authenticated user and
// the requesting client. The caller is responsible for having authenticated
// the principal first.
func (s *AuthServer) Authorize(ctx context.Context, userID, clientID string) (string, error) {
	code, err := generateSecret(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}

	authCode := &domain.AuthCode{
		Code:      code,
		ClientID:  clientID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.store.Set(ctx, authCodeKeyPrefix+code, authCode, s.codeTTL); err != nil {
		return "", fmt.Errorf("failed to persist authorization code: %w", err)
	}

	log.Debug().
		Str("client_id", clientID).
		Str("user_id", userID).
		Msg("authorization code issued")

	return code, nil
}

// Exchange consumes an authorization code and mints a bearer token bound to
// the same user and client. The code entry is removed atomically, so a code
// can be exchanged at most once; never-issued, already-consumed and expired
// codes are indistinguishable to the caller.
func (s *AuthServer) Exchange(ctx context.Context, code string) (*api.TokenResponse, error) {
	if code == "" {
		return nil, errors.NewInvalidGrant("Invalid or expired authorization code")
	}

	var authCode domain.AuthCode
	if err := s.store.GetDelete(ctx, authCodeKeyPrefix+code, &authCode); err != nil {
		// A store outage is reported the same way: fail closed.
		return nil, errors.NewInvalidGrant("Invalid or expired authorization code")
	}

	tokenValue, err := generateSecret(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	token := &domain.Token{
		ID:         uuid.NewString(),
		TokenValue: tokenValue,
		ClientID:   authCode.ClientID,
		UserID:     authCode.UserID,
		Scope:      TokenScope,
		ExpiresAt:  time.Now().Add(s.tokenTTL),
		CreatedAt:  time.Now(),
	}

	if err := s.store.Set(ctx, accessTokenKeyPrefix+tokenValue, token, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	log.Info().
		Str("client_id", authCode.ClientID).
		Str("user_id", authCode.UserID).
		Msg("authorization code exchanged for access token")

	return &api.TokenResponse{
		AccessToken: tokenValue,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		Scope:       TokenScope,
	}, nil
}

// Validate resolves a bearer token to the bound user identity. It is a pure
// lookup with no side effects; any failure, including a store outage, reads
// as "not authorized".
func (s *AuthServer) Validate(ctx context.Context, tokenValue string) (string, error) {
	var token domain.Token
	if err := s.store.Get(ctx, accessTokenKeyPrefix+tokenValue, &token); err != nil {
		return "", fmt.Errorf("token not found: %w", err)
	}

	return token.UserID, nil
}

// generateSecret returns n random bytes hex encoded, so the result has a
// fixed width of 2n characters.
func generateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
