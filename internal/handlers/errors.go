package handlers

import (
	"errors"
	"net/http"

	"taskdeck/internal/logger"
	"taskdeck/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError reports whether err carried a BusinessError and was
// already written to the response.
func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: business error",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode, map[string]any{
		"error":   businessErr.Code,
		"message": businessErr.Message,
		"details": businessErr.Details,
	})
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
