// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates sign-up, sign-in, and refresh-token
// rotation over the password verifier, the token codec, and the refresh
// ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/server/auth"
	"github.com/matoscout/api/internal/server/config"
	"github.com/matoscout/api/internal/server/models"
	"github.com/matoscout/api/internal/server/password"
	"github.com/matoscout/api/internal/server/repositories/repomanager"
	"github.com/matoscout/api/internal/server/tokens"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token
// in their serialized wire form.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService provides authentication-related operations:
//   - SignUp: create credentials
//   - SignIn: verify credentials and mint a token pair
//   - Refresh: rotate a refresh token and mint a new pair
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	codec                       *auth.Codec
	passwords                   *password.Verifier
	ledger                      *tokens.Ledger
	accessTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, passwords *password.Verifier, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		codec:                       auth.NewCodec([]byte(cfg.SecretKey)),
		passwords:                   passwords,
		ledger:                      tokens.NewLedger(m.RefreshTokens(db), cfg.RefreshTokenValidityDuration),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// SignUp normalizes and validates the email, hashes the password, and stores
// the credential. A duplicate email yields common.ErrEmailTaken; surfacing
// that to the caller discloses account existence, a documented trade-off of
// the current design.
func (s *AuthService) SignUp(ctx context.Context, email, pass string) (*models.User, error) {
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(ctx, pass)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: normalized, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// SignIn verifies the credentials and, on success, opens a brand-new refresh
// family and returns a serialized token pair. A non-existent email and a
// wrong password both return common.ErrInvalidCredentials, and both paths
// run the full hash verification so their latency is indistinguishable.
func (s *AuthService) SignIn(ctx context.Context, email, pass string) (*TokenPair, error) {
	normalized, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	// When no user matches we still verify against a precomputed dummy hash
	// of the same cost. Do not short-circuit this path.
	var user *models.User
	expectedHash := s.passwords.DummyHash()

	repo := s.repomanager.Users(s.db)
	stored, err := repo.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		user = stored
		expectedHash = stored.PasswordHash
	case errors.Is(err, common.ErrorNotFound):
		// fall through with the dummy hash
	default:
		return nil, fmt.Errorf("looking up credentials: %w", err)
	}

	if err := s.passwords.Verify(ctx, pass, expectedHash); err != nil {
		if errors.Is(err, common.ErrorInternal) {
			return nil, fmt.Errorf("verifying password: %w", err)
		}
		return nil, common.ErrInvalidCredentials
	}
	if user == nil {
		return nil, common.ErrInvalidCredentials
	}

	refresh := s.ledger.Issue(user.ID, uuid.NewString())
	if err := s.ledger.Persist(ctx, refresh); err != nil {
		return nil, err
	}

	return s.encodePair(refresh)
}

// Refresh decodes the presented refresh token, validates it against the
// ledger, rotates it, and mints a new access token. Every client-caused
// failure (bad signature, malformed or expired token, stale jit, lost
// rotation race) collapses into common.ErrInvalidRefreshToken; storage failures
// propagate separately so they surface as internal errors, never as a 401.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.Decode[auth.RefreshClaims](s.codec, refreshToken)
	if err != nil {
		return nil, common.ErrInvalidRefreshToken
	}

	if err := s.ledger.Validate(ctx, claims); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}

	next, err := s.ledger.Rotate(ctx, claims)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}

	return s.encodePair(next)
}

// encodePair serializes refresh plus a matching access token. The access
// token shares the refresh token's iat so both halves of a pair carry the
// same issue instant.
func (s *AuthService) encodePair(refresh *auth.RefreshClaims) (*TokenPair, error) {
	access := auth.NewAccessClaims(refresh.Subject, refresh.IssuedAt.Time, s.accessTokenValidityDuration)

	accessToken, err := s.codec.Encode(access)
	if err != nil {
		return nil, fmt.Errorf("encoding access token: %w", err)
	}
	refreshToken, err := s.codec.Encode(refresh)
	if err != nil {
		return nil, fmt.Errorf("encoding refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
