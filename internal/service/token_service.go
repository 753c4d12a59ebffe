package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/repo"
	"github.com/Skotchmaster/tube_accounts/internal/tokens"
)

type TokenService struct {
	Users         UserStore
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func NewTokenService(users UserStore, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		Users:         users,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssuePair(u *models.User) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := tokens.SignAccess(tokens.AccessClaims{
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.AccessSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.SignRefresh(u.ID.String(), now, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// PersistRefresh stores the digest of refresh as the only valid one for the user.
func (s *TokenService) PersistRefresh(ctx context.Context, userID uuid.UUID, refresh string) error {
	digest := tokens.Digest(refresh)
	if err := s.Users.SetRefreshDigest(ctx, userID, &digest); err != nil {
		return internal("Something went wrong while generating refresh and access token", err)
	}
	return nil
}

// VerifyRefresh returns the owner of a refresh token that is still the stored one.
func (s *TokenService) VerifyRefresh(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthorized("Unauthorized request", nil)
	}

	claims, err := tokens.RefreshClaimsFromToken(token, s.RefreshSecret)
	if err != nil {
		return nil, unauthorized(err.Error(), err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, unauthorized("Invalid refresh token", err)
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, unauthorized("Invalid refresh token", err)
		}
		return nil, internal("Something went wrong while verifying refresh token", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != tokens.Digest(token) {
		return nil, unauthorized("Refresh token is expired or used", nil)
	}
	return user, nil
}

func (s *TokenService) VerifyAccess(token string) (*tokens.AccessClaims, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.AccessSecret)
	if err != nil {
		return nil, unauthorized(err.Error(), err)
	}
	return claims, nil
}

// Rotate issues a new pair for u and swaps it in only if old is still the stored token.
func (s *TokenService) Rotate(ctx context.Context, u *models.User, old string) (*TokenPair, error) {
	pair, err := s.IssuePair(u)
	if err != nil {
		return nil, internal("Something went wrong while generating refresh and access token", err)
	}

	err = s.Users.SwapRefreshDigest(ctx, u.ID, tokens.Digest(old), tokens.Digest(pair.RefreshToken))
	if err != nil {
		if errors.Is(err, repo.ErrRefreshMismatch) {
			return nil, unauthorized("Refresh token is expired or used", err)
		}
		return nil, internal("Something went wrong while generating refresh and access token", err)
	}
	return pair, nil
}

// Revoke clears the stored refresh token; a missing user is not an error.
func (s *TokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.Users.SetRefreshDigest(ctx, userID, nil); err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return internal("Something went wrong while logging out", err)
	}
	return nil
}
