package handler

import (
	"net/http"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login endpoint request body
type LoginRequest struct {
	Name       string          `json:"name"`
	RollNumber string          `json:"roll_number,omitempty"`
	ClubName   string          `json:"club_name,omitempty"`
	Password   string          `json:"password"`
	UserType   model.LoginType `json:"user_type"`
}

// ChangePasswordRequest represents the change-password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginResponse is a session token with the signed-in user
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	User      *model.User `json:"user"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, invalidBody())
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginRequest{
		Name:       req.Name,
		RollNumber: req.RollNumber,
		ClubName:   req.ClubName,
		Password:   req.Password,
		UserType:   req.UserType,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, LoginResponse{
		Token:     result.Token.Token,
		TokenType: result.Token.TokenType,
		ExpiresIn: result.Token.ExpiresIn,
		User:      result.User,
	}, map[string]string{
		"self": "/v1/auth/verify-token",
	})
}

// ChangePassword handles POST /v1/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, invalidBody())
		return
	}

	caller := middleware.GetCaller(r.Context())
	if err := h.authService.ChangePassword(r.Context(), caller.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]string{"message": "password changed"}, nil)
}

// VerifyToken handles GET /v1/auth/verify-token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"user":  user,
	}, nil)
}
