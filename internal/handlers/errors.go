package handlers

import (
	"errors"
	"net/http"

	"flight_board/internal/auth"
	"flight_board/internal/board"

	"go.uber.org/zap"
)

const (
	invalidDateMessage   = "Invalid date format. Expected YYYY-MM-DD."
	invalidLoginMessage  = "Invalid username or password"
	internalErrorMessage = "internal error"
)

// errorResponder turns service errors into HTTP responses. It is the only
// place that decides status codes for failures.
type errorResponder struct {
	logger       *zap.Logger
	exposeErrors bool
}

func (e errorResponder) write(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, board.ErrInvalidDateFormat):
		writeError(w, http.StatusBadRequest, invalidDateMessage)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": invalidLoginMessage,
		})
	default:
		e.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg := internalErrorMessage
		if e.exposeErrors {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}
