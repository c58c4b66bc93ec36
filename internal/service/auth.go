package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgo/clubhub/api/internal/model"
)

// UserRepository defines the interface for the Credential Store
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetStudent(ctx context.Context, name, rollNumber string) (*model.User, error)
	GetCouncilMember(ctx context.Context, name, clubName string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
}

// AuthService handles login, password changes and user lookup
type AuthService struct {
	users  UserRepository
	hasher Hasher
	tokens *TokenService
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	Users        UserRepository
	Hasher       Hasher
	TokenService *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultBcryptCost)
	}
	return &AuthService{
		users:  cfg.Users,
		hasher: hasher,
		tokens: cfg.TokenService,
	}
}

// LoginRequest identifies a student by name and roll number, or a club head
// or PR council member by name and club name.
type LoginRequest struct {
	Name       string
	RollNumber string
	ClubName   string
	Password   string
	UserType   model.LoginType
}

// LoginResult represents a successful login
type LoginResult struct {
	User  *model.User
	Token *IssuedToken
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Password == "" || req.UserType == "" {
		return nil, ErrMissingFields
	}

	var (
		user *model.User
		err  error
	)
	switch req.UserType {
	case model.LoginTypeStudent:
		roll := strings.TrimSpace(req.RollNumber)
		if roll == "" {
			return nil, ErrMissingRollNumber
		}
		user, err = s.users.GetStudent(ctx, name, roll)
	case model.LoginTypeCouncil:
		club := strings.TrimSpace(req.ClubName)
		if club == "" {
			return nil, ErrMissingClubName
		}
		user, err = s.users.GetCouncilMember(ctx, name, club)
	default:
		return nil, ErrInvalidLoginType
	}
	if err != nil {
		return nil, err
	}

	// Unknown identity and wrong password are indistinguishable
	if user == nil || user.Hash == "" || !s.hasher.Compare(user.Hash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

// ChangePassword replaces the caller's password. The strength rule is
// checked before the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !s.hasher.Compare(user.Hash, currentPassword) {
		return ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// GetUser returns a user by ID
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUser hashes password and persists user
func (s *AuthService) CreateUser(ctx context.Context, user *model.User, password string) error {
	if !user.Role.IsValid() {
		return NewValidationError("role", "must be student, club_head or pr_council")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Hash = hash
	return s.users.Create(ctx, user)
}
