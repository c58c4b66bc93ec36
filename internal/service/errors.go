package service

import (
	"errors"
	"strings"

	"github.com/forgo/clubhub/api/internal/model"
)

// Centralized service layer errors.
// Handlers map these to problem details in one place (handler.MapServiceError).

// ===== Authentication Errors =====
var (
	ErrMissingFields          = errors.New("required fields are missing")
	ErrMissingRollNumber      = errors.New("roll number is required for student login")
	ErrMissingClubName        = errors.New("club name is required for council login")
	ErrInvalidLoginType       = errors.New("user type must be student or council")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	ErrWeakPassword           = errors.New("password must be at least 8 characters and contain a symbol")
	ErrUserNotFound           = errors.New("user not found")
)

// ===== Session Errors =====
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrUnknownSubject = errors.New("token subject no longer exists")
)

// ===== Authorization Errors =====
var (
	ErrAccessDenied            = errors.New("access denied")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== Club Errors =====
var (
	ErrClubNotFound    = errors.New("club not found")
	ErrClubNameExists  = errors.New("a club with this name already exists")
	ErrAlreadyMember   = errors.New("already a member of this club")
	ErrRequestExists   = errors.New("join request already pending")
	ErrRequestNotFound = errors.New("no pending request for this user")
	ErrNotAMember      = errors.New("user is not a member of this club")
	ErrInvalidAction   = errors.New("action must be approve or reject")
)

// ===== Event Errors =====
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("not registered for this event")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrCapacityBelowCount = errors.New("capacity cannot be lower than current registrations")
)

// ===== Message Errors =====
var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrInvalidTargetType = errors.New("target type must be college_wide or club_specific")
	ErrMissingTargetID   = errors.New("target id is required for club specific messages")
)

// ===== Hall of Fame Errors =====
var (
	ErrAchievementNotFound = errors.New("achievement not found")
)

// ValidationError carries field-level failures. Fields use the wire names,
// nested fields dotted (achiever.type).
type ValidationError struct {
	Fields []model.FieldError
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []model.FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
