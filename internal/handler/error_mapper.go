package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Errors it does not recognize become a generic 500.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Fields)
	}

	switch {
	// ===== Bad Request → 400 =====
	case errors.Is(err, service.ErrMissingFields):
		return model.NewBadRequestError(model.ErrCodeMissingFields, err.Error())
	case errors.Is(err, service.ErrMissingRollNumber):
		return model.NewBadRequestError(model.ErrCodeMissingRollNumber, err.Error())
	case errors.Is(err, service.ErrMissingClubName):
		return model.NewBadRequestError(model.ErrCodeMissingClubName, err.Error())
	case errors.Is(err, service.ErrInvalidTargetType):
		return model.NewBadRequestError(model.ErrCodeInvalidTargetType, err.Error())
	case errors.Is(err, service.ErrMissingTargetID):
		return model.NewBadRequestError(model.ErrCodeMissingTargetID, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		return model.NewBadRequestError(model.ErrCodeWeakPassword, err.Error())
	case errors.Is(err, service.ErrInvalidLoginType),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrInvalidDate):
		return model.NewBadRequestError(model.ErrCodeInvalidRequest, err.Error())

	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(model.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrInvalidCurrentPassword):
		return model.NewUnauthorizedError(model.ErrCodeInvalidCurrentPassword, err.Error())
	case errors.Is(err, service.ErrTokenExpired):
		return model.NewUnauthorizedError(model.ErrCodeTokenExpired, err.Error())
	case errors.Is(err, service.ErrTokenMalformed):
		return model.NewUnauthorizedError(model.ErrCodeInvalidToken, err.Error())
	case errors.Is(err, service.ErrUnknownSubject),
		errors.Is(err, service.ErrUserNotFound):
		return model.NewUnauthorizedError(model.ErrCodeUserNotFound, err.Error())

	// ===== Authorization → 403 =====
	case errors.Is(err, service.ErrInsufficientPermissions):
		return model.NewForbiddenError(model.ErrCodeInsufficientPermissions, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		return model.NewForbiddenError(model.ErrCodeAccessDenied, err.Error())

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrClubNotFound):
		return model.NewNotFoundError(model.ErrCodeClubNotFound, "club")
	case errors.Is(err, service.ErrEventNotFound):
		return model.NewNotFoundError(model.ErrCodeEventNotFound, "event")
	case errors.Is(err, service.ErrMessageNotFound):
		return model.NewNotFoundError(model.ErrCodeMessageNotFound, "message")
	case errors.Is(err, service.ErrAchievementNotFound):
		return model.NewNotFoundError(model.ErrCodeAchievementNotFound, "achievement")
	case errors.Is(err, service.ErrRequestNotFound):
		return model.NewNotFoundError(model.ErrCodeRequestNotFound, "pending request")

	// ===== Conflict → 409 =====
	case errors.Is(err, service.ErrAlreadyMember):
		return model.NewConflictError(model.ErrCodeAlreadyMember, err.Error())
	case errors.Is(err, service.ErrRequestExists):
		return model.NewConflictError(model.ErrCodeRequestExists, err.Error())
	case errors.Is(err, service.ErrAlreadyRegistered):
		return model.NewConflictError(model.ErrCodeAlreadyRegistered, err.Error())
	case errors.Is(err, service.ErrClubNameExists):
		return model.NewConflictError(model.ErrCodeClubNameExists, err.Error())
	case errors.Is(err, service.ErrEventFull):
		return model.NewConflictError(model.ErrCodeEventFull, err.Error())
	case errors.Is(err, service.ErrNotAMember):
		return model.NewConflictError(model.ErrCodeNotAMember, err.Error())
	case errors.Is(err, service.ErrNotRegistered):
		return model.NewConflictError(model.ErrCodeNotRegistered, err.Error())

	// ===== Validation → 422 =====
	case errors.Is(err, service.ErrCapacityBelowCount):
		return model.NewValidationError([]model.FieldError{{Field: "max_capacity", Message: err.Error()}})

	default:
		return model.NewInternalError("")
	}
}

// writeServiceError maps err and writes it. Unmapped errors are logged with
// the request id; the client only sees the generic detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	problem := MapServiceError(err)
	if problem.Status == http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, problem)
}
