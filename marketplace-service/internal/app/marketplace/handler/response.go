package handler

import (
	"errors"
	"fmt"
	"net/http"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/service"
	"homehero/marketplace-service/internal/app/marketplace/validation"
	"homehero/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgUnauthorized   = "unauthorized access"
	msgForbidden      = "forbidden access"
	msgInternal       = "Internal server error"
	msgInvalidBody    = "Invalid request body"
	msgValidation     = "Validation failed"
	msgInvalidID      = "Invalid ID format"
	msgRouteNotFound  = "Route not found"
	msgUserExists     = "user is already in collection"
	msgUserNotFound   = "User not found"
	msgServiceMissing = "Service not found"
	msgBookingMissing = "Booking not found"
	msgDatabaseDown   = "Database connection failed"
)

// Responder пишет ошибки в едином формате {message, error?, errors?}.
// В production текст внутренней ошибки клиенту не отдается.
type Responder struct {
	production bool
}

func NewResponder(production bool) *Responder {
	return &Responder{production: production}
}

// Error переводит ошибку сервиса в HTTP статус
func (r *Responder) Error(c *gin.Context, err error) {
	var verr *validation.Error

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: msgValidation, Errors: verr.Messages})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: msgInvalidID})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Message: msgForbidden})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: msgUserNotFound})
	case errors.Is(err, service.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: msgServiceMissing})
	case errors.Is(err, service.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: msgBookingMissing})
	default:
		r.Internal(c, err)
	}
}

// Internal - 500 для всего, что не входит в таксономию ошибок
func (r *Responder) Internal(c *gin.Context, err error) {
	r.internal(c, msgInternal, err)
}

func (r *Responder) internal(c *gin.Context, message string, err error) {
	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")

	body := entity.ErrorResponse{Message: message}
	if !r.production {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// Recovery превращает panic в обычный 500 ответ
func (r *Responder) Recovery(c *gin.Context, recovered any) {
	r.Internal(c, fmt.Errorf("panic: %v", recovered))
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: msgInvalidBody})
}

func principal(c *gin.Context) string {
	return c.GetString(logger.PrincipalKey)
}
