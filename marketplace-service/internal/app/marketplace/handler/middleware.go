package handler

import (
	"errors"
	"net/http"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/service"
	"homehero/pkg/logger"
	"homehero/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// UIDKey - ключ gin.Context с uid провайдера идентификации
const UIDKey = "uid"

// AuthMiddleware проверяет ID токен и роль пользователя
type AuthMiddleware struct {
	authService AuthServiceInterface
	userService UserServiceInterface
	responder   *Responder
}

func NewAuthMiddleware(authService AuthServiceInterface, userService UserServiceInterface, responder *Responder) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userService: userService,
		responder:   responder,
	}
}

// Authenticate кладет проверенный email в контекст; клиентские данные об identity не используются
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.authService.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMissingToken):
				metrics.RecordAuthFailure("missing_token")
			case errors.Is(err, service.ErrInvalidToken):
				metrics.RecordAuthFailure("invalid_token")
			default:
				// провайдер недоступен - это не вина клиента
				metrics.RecordAuthFailure("provider_error")
				m.responder.Internal(c, err)
				return
			}

			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Request rejected by token verifier")
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.MessageResponse{Message: msgUnauthorized})
			return
		}

		c.Set(logger.PrincipalKey, token.Email)
		c.Set(UIDKey, token.UID)

		c.Next()
	}
}

// RequireRole перечитывает роль из базы на каждый запрос
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := principal(c)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.MessageResponse{Message: msgUnauthorized})
			return
		}

		if err := m.userService.Authorize(c.Request.Context(), email, role); err != nil {
			if errors.Is(err, service.ErrForbidden) {
				metrics.RecordAuthFailure("forbidden_role")
				c.AbortWithStatusJSON(http.StatusForbidden, entity.MessageResponse{Message: msgForbidden})
				return
			}
			m.responder.Internal(c, err)
			return
		}

		c.Next()
	}
}
