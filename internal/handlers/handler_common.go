package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestIdentity returns the authenticated user and clinic, answering 401
// when the token did not carry them.
func requestIdentity(c *gin.Context, logger *slog.Logger) (userID, clinicID string, ok bool) {
	userID, userOK := middleware.GetUserIDFromContext(c)
	clinicID, clinicOK := middleware.GetClinicIDFromContext(c)
	if !userOK || !clinicOK {
		logger.Error("User or clinic not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", "", false
	}
	return userID, clinicID, true
}

// bindJSON binds the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, logger *slog.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Failed to bind JSON", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

// bindQuery binds the query string into params and answers 400 on failure.
func bindQuery(c *gin.Context, logger *slog.Logger, params any) bool {
	if err := c.ShouldBindQuery(params); err != nil {
		logger.Warn("Failed to bind query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return false
	}
	return true
}

// respondError maps service errors to status codes. Unexpected errors are
// logged in full and answered with failMsg only.
func respondError(c *gin.Context, logger *slog.Logger, err error, failMsg string) {
	var status int
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	default:
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: failMsg})
		return
	}
	logger.Warn(failMsg, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
