package handler

import (
	"errors"
	"net/http"
	"strings"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/service"
	"homehero/marketplace-service/internal/app/marketplace/validation"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService UserServiceInterface
	validator   *validation.Validator
	responder   *Responder
}

func NewUserHandler(userService UserServiceInterface, validator *validation.Validator, responder *Responder) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		responder:   responder,
	}
}

// Register - POST /users, повторная регистрация отвечает сообщением, а не ошибкой
func (h *UserHandler) Register(c *gin.Context) {
	var req entity.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	// пробелы по краям email не считаются ошибкой
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusOK, entity.MessageResponse{Message: msgUserExists})
			return
		}
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRole - GET /users/role, документ самого вызывающего
func (h *UserHandler) GetRole(c *gin.Context) {
	user, err := h.userService.GetByEmail(c.Request.Context(), principal(c))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ChangeRole - PATCH /users/:id/role (только admin)
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req entity.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.userService.ChangeRole(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
