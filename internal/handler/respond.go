package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/pkg/logger"
)

// respondError maps err onto a status code and writes the error body.
// Unexpected errors are logged and answered without detail.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	log = logger.WithTrace(c.Request.Context(), log)

	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		log.Warn(op+": validation failed", zap.String("field", ve.Field), zap.String("reason", ve.Message))
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, apperr.ErrInvalidTransition):
		log.Warn(op+": invalid transition", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		log.Info(op+": not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrConversionInProgress):
		log.Warn(op+": conversion in progress", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "conversion already in progress"})
	case errors.Is(err, apperr.ErrDuplicate):
		log.Warn(op+": duplicate", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		log.Error(op+": failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, log *zap.Logger, op string, err error) {
	logger.WithTrace(c.Request.Context(), log).Warn(op+": invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
