package handlers

import (
	"errors"
	"net/http"

	"activityPlanner/internal/logger"
	"activityPlanner/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError writes the response for a service error. Anything that
// is not a BusinessError is a 500.
func handleBusinessError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode),
			zap.String("client_ip", r.RemoteAddr))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: service error", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "internal error")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
