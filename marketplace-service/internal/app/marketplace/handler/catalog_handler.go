package handler

import (
	"net/http"
	"strconv"
	"strings"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/validation"

	"github.com/gin-gonic/gin"
)

const msgEmptyPatch = "At least one field is required"

type CatalogHandler struct {
	catalogService CatalogServiceInterface
	validator      *validation.Validator
	responder      *Responder
}

func NewCatalogHandler(catalogService CatalogServiceInterface, validator *validation.Validator, responder *Responder) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator,
		responder:      responder,
	}
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// FilterServices - GET /filter-services?min&max, каждая граница необязательна
func (h *CatalogHandler) FilterServices(c *gin.Context) {
	var (
		priceRange entity.PriceRange
		messages   []string
	)

	minPrice, ok := parseBound(c.Query("min"))
	if !ok {
		messages = append(messages, "min must be a number")
	}
	maxPrice, ok := parseBound(c.Query("max"))
	if !ok {
		messages = append(messages, "max must be a number")
	}
	if len(messages) > 0 {
		h.responder.Error(c, &validation.Error{Messages: messages})
		return
	}
	priceRange.Min, priceRange.Max = minPrice, maxPrice

	services, err := h.catalogService.FilterServices(c.Request.Context(), priceRange)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// parseBound: пустое значение - границы нет, 0 - настоящая граница
func parseBound(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &value, true
}

func (h *CatalogHandler) HomeServices(c *gin.Context) {
	services, err := h.catalogService.HomeServices(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *CatalogHandler) MyServices(c *gin.Context) {
	services, err := h.catalogService.MyServices(c.Request.Context(), principal(c), c.Query("email"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req entity.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.catalogService.CreateService(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateService - PATCH /services/:id, проверяются только переданные поля
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req entity.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if req.IsEmpty() {
		h.responder.Error(c, &validation.Error{Messages: []string{msgEmptyPatch}})
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.catalogService.UpdateService(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	result, err := h.catalogService.DeleteService(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AddReview - PATCH /services/reviews/:id, отзыв дописывается в конец
func (h *CatalogHandler) AddReview(c *gin.Context) {
	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.catalogService.AddReview(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) Testimonials(c *gin.Context) {
	testimonials, err := h.catalogService.Testimonials(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, testimonials)
}
