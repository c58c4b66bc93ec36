package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/pkg/jwt"
)

// SubjectLookup resolves a token subject
type SubjectLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// TokenService is the Session Layer: it issues tokens and verifies them,
// including that the subject still exists.
type TokenService struct {
	jwtService *jwt.Service
	users      SubjectLookup
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService *jwt.Service
	Users      SubjectLookup
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		jwtService: cfg.JWTService,
		users:      cfg.Users,
	}
}

// IssuedToken is a signed session token
type IssuedToken struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// Issue signs a session token carrying user's identity claims
func (s *TokenService) Issue(user *model.User) (*IssuedToken, error) {
	claims := jwt.Claims{
		UserID:     user.ID,
		Name:       user.Name,
		Role:       string(user.Role),
		RollNumber: stringValue(user.RollNumber),
		ClubName:   stringValue(user.ClubName),
	}

	token, err := s.jwtService.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &IssuedToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.jwtService.GetExpiration().Seconds()),
	}, nil
}

// ValidateAccessToken verifies token and confirms its subject exists. The
// failures are ErrTokenExpired, ErrTokenMalformed and ErrUnknownSubject;
// any other error is a store fault.
func (s *TokenService) ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if !model.Role(claims.Role).IsValid() {
		return nil, ErrTokenMalformed
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownSubject
	}

	// The stored role wins over a stale claim
	claims.Role = string(user.Role)
	return claims, nil
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
