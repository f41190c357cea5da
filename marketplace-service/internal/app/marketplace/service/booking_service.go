package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure"
	"homehero/marketplace-service/internal/app/marketplace/repository"
	"homehero/pkg/metrics"
)

// known статусы для метки метрики, остальные считаются как other
var knownBookingStatuses = map[string]bool{
	"pending":   true,
	"confirmed": true,
	"completed": true,
	"cancelled": true,
	"rejected":  true,
}

type BookingService struct {
	bookingRepo repository.BookingRepository
	events      eventPublisher
	ownership   ownership
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	kafkaProducer infrastructure.MessagePublisher,
	ownerOnly bool,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		events:      eventPublisher{producer: kafkaProducer},
		ownership:   ownership{ownerOnly: ownerOnly, userRepo: userRepo},
	}
}

// CreateBooking - Email всегда равен principal, статус pending
func (s *BookingService) CreateBooking(ctx context.Context, principal string, req *entity.CreateBookingRequest) (*entity.InsertResult, error) {
	now := time.Now().UTC()
	booking := &entity.Booking{
		ServiceID:     req.ServiceID,
		ServiceName:   req.ServiceName,
		CustomerEmail: req.CustomerEmail,
		Price:         req.Price.Value,
		BookingDate:   req.BookingDate,
		Email:         principal,
		Status:        entity.BookingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingsCreated.Inc()
	s.events.publish(ctx, entity.EventBookingCreated, booking.ID.Hex(), principal, map[string]interface{}{
		"serviceId": booking.ServiceID,
		"price":     booking.Price,
	})

	return result, nil
}

// MyBookings - email из запроса, если передан, должен совпадать с principal
func (s *BookingService) MyBookings(ctx context.Context, principal string, email string) ([]entity.Booking, error) {
	if email != "" && email != principal {
		return nil, ErrForbidden
	}

	bookings, err := s.bookingRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) AllBookings(ctx context.Context) ([]entity.Booking, error) {
	bookings, err := s.bookingRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, principal string, id string) (*entity.DeleteResult, error) {
	if err := s.ownership.check(ctx, principal, s.bookingOwner(id)); err != nil {
		return nil, err
	}

	result, err := s.bookingRepo.Delete(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	if result.DeletedCount > 0 {
		s.events.publish(ctx, entity.EventBookingDeleted, id, principal, nil)
	}
	return result, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, principal string, id string, req *entity.UpdateBookingStatusRequest) (*entity.UpdateResult, error) {
	if err := s.ownership.check(ctx, principal, s.bookingOwner(id)); err != nil {
		return nil, err
	}

	status := strings.TrimSpace(req.Status)
	result, err := s.bookingRepo.UpdateStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, translate(err)
	}

	if result.MatchedCount > 0 {
		metrics.BookingStatusUpdates.WithLabelValues(statusLabel(status)).Inc()
		s.events.publish(ctx, entity.EventBookingStatusUpdated, id, principal, map[string]string{"status": status})
	}
	return result, nil
}

func (s *BookingService) bookingOwner(id string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return booking.Email, nil
	}
}

func statusLabel(status string) string {
	status = strings.ToLower(status)
	if knownBookingStatuses[status] {
		return status
	}
	return "other"
}
