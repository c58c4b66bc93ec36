package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error code
type ErrorCode string

const (
	// Input
	ErrCodeMissingFields     ErrorCode = "MISSING_FIELDS"
	ErrCodeMissingRollNumber ErrorCode = "MISSING_ROLL_NUMBER"
	ErrCodeMissingClubName   ErrorCode = "MISSING_CLUB_NAME"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidTargetType ErrorCode = "INVALID_TARGET_TYPE"
	ErrCodeMissingTargetID   ErrorCode = "MISSING_TARGET_ID"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeWeakPassword      ErrorCode = "WEAK_PASSWORD"

	// Authentication
	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidCurrentPassword ErrorCode = "INVALID_CURRENT_PASSWORD"
	ErrCodeNoToken                ErrorCode = "NO_TOKEN"
	ErrCodeTokenExpired           ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"

	// Authorization
	ErrCodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeAccessDenied            ErrorCode = "ACCESS_DENIED"

	// Not found
	ErrCodeClubNotFound        ErrorCode = "CLUB_NOT_FOUND"
	ErrCodeEventNotFound       ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeMessageNotFound     ErrorCode = "MESSAGE_NOT_FOUND"
	ErrCodeAchievementNotFound ErrorCode = "ACHIEVEMENT_NOT_FOUND"
	ErrCodeRequestNotFound     ErrorCode = "REQUEST_NOT_FOUND"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"

	// Conflict and state
	ErrCodeAlreadyMember     ErrorCode = "ALREADY_MEMBER"
	ErrCodeRequestExists     ErrorCode = "REQUEST_EXISTS"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeClubNameExists    ErrorCode = "CLUB_NAME_EXISTS"
	ErrCodeEventFull         ErrorCode = "EVENT_FULL"
	ErrCodeNotAMember        ErrorCode = "NOT_A_MEMBER"
	ErrCodeNotRegistered     ErrorCode = "NOT_REGISTERED"

	// Infrastructure
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

const problemTypeBase = "https://clubhub-api.forgo.software/errors/"

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	// Extension fields
	Code ErrorCode `json:"code"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d %s] %s: %s", p.Status, p.Code, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// Common error constructors

func NewUnauthorizedError(code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "unauthorized",
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
		Code:   code,
	}
}

func NewForbiddenError(code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "forbidden",
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
		Code:   code,
	}
}

func NewNotFoundError(code ErrorCode, resource string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "not-found",
		Title:  "Not Found",
		Status: http.StatusNotFound,
		Detail: fmt.Sprintf("%s not found", resource),
		Code:   code,
	}
}

func NewValidationError(errors []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	if len(errors) > 0 {
		detail = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
		if len(errors) > 1 {
			detail = fmt.Sprintf("%s (and %d more errors)", detail, len(errors)-1)
		}
	}
	return &ProblemDetails{
		Type:   problemTypeBase + "validation",
		Title:  "Validation Error",
		Status: http.StatusUnprocessableEntity,
		Detail: detail,
		Code:   ErrCodeValidation,
		Errors: errors,
	}
}

func NewConflictError(code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "conflict",
		Title:  "Conflict",
		Status: http.StatusConflict,
		Detail: detail,
		Code:   code,
	}
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return &ProblemDetails{
		Type:   problemTypeBase + "internal",
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: detail,
		Code:   ErrCodeInternal,
	}
}

func NewBadRequestError(code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + "bad-request",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
		Code:   code,
	}
}
