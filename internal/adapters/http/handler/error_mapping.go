package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/job"
	"github.com/hireloop/portal-api/internal/core/meeting"
	"github.com/hireloop/portal-api/internal/core/notification"
	"github.com/hireloop/portal-api/internal/core/user"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrInvalidID),
		errors.Is(err, notification.ErrInvalidID),
		errors.Is(err, notification.ErrInvalidRecipient),
		errors.Is(err, notification.ErrInvalidTitle),
		errors.Is(err, notification.ErrInvalidPageSize),
		errors.Is(err, notification.ErrInvalidPageToken),
		errors.Is(err, employee.ErrInvalidCompanyID),
		errors.Is(err, employee.ErrInvalidUserID),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidEmail),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, meeting.ErrInvalidTitle),
		errors.Is(err, meeting.ErrInvalidStart),
		errors.Is(err, meeting.ErrInvalidDuration),
		errors.Is(err, meeting.ErrInvalidID),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrUnregistered):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrForbidden),
		errors.Is(err, notification.ErrForbidden),
		errors.Is(err, employee.ErrForbidden),
		errors.Is(err, company.ErrForbidden),
		errors.Is(err, meeting.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, application.ErrApplicationNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, meeting.ErrMeetingNotFound),
		errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrTransitionNotAllowed),
		errors.Is(err, application.ErrAlreadyApplied),
		errors.Is(err, application.ErrJobClosed),
		errors.Is(err, company.ErrNotPending),
		errors.Is(err, company.ErrAlreadyAffiliated),
		errors.Is(err, meeting.ErrNotPending),
		errors.Is(err, user.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, meeting.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a use-case error onto the response. Internal errors
// are logged and replaced with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, code, "internal server error")
		return
	}
	if code == http.StatusBadGateway {
		slog.Warn("upstream failure", "path", r.URL.Path, "error", err)
		writeError(w, code, meeting.ErrProvider.Error())
		return
	}
	writeError(w, code, err.Error())
}
