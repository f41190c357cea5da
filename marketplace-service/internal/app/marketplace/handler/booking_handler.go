package handler

import (
	"net/http"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/validation"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService BookingServiceInterface
	validator      *validation.Validator
	responder      *Responder
}

func NewBookingHandler(bookingService BookingServiceInterface, validator *validation.Validator, responder *Responder) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator,
		responder:      responder,
	}
}

// CreateBooking - POST /bookings, Email заказа берется из токена
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req entity.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), principal(c), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.bookingService.MyBookings(c.Request.Context(), principal(c), c.Query("email"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) AllBookings(c *gin.Context) {
	bookings, err := h.bookingService.AllBookings(c.Request.Context())
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	result, err := h.bookingService.DeleteBooking(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req entity.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		h.responder.Error(c, err)
		return
	}

	result, err := h.bookingService.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
