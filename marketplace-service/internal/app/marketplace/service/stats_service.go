package service

import (
	"context"
	"fmt"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/repository"
	"homehero/pkg/metrics"
)

// StatsService - агрегаты для /stats, проверка базы для /api/test и gauge документов
type StatsService struct {
	userRepo    repository.UserRepository
	serviceRepo repository.ServiceRepository
	bookingRepo repository.BookingRepository
	pinger      repository.Pinger
}

func NewStatsService(
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	bookingRepo repository.BookingRepository,
	pinger repository.Pinger,
) *StatsService {
	return &StatsService{
		userRepo:    userRepo,
		serviceRepo: serviceRepo,
		bookingRepo: bookingRepo,
		pinger:      pinger,
	}
}

func (s *StatsService) Stats(ctx context.Context) (*entity.StatsResponse, error) {
	users, services, bookings, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}

	recentServices, err := s.serviceRepo.GetRecent(ctx, HomeServicesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent services: %w", err)
	}

	recentBookings, err := s.bookingRepo.GetRecent(ctx, HomeServicesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent bookings: %w", err)
	}

	return &entity.StatsResponse{
		TotalUsers:     users,
		TotalServices:  services,
		TotalBookings:  bookings,
		RecentServices: recentServices,
		RecentBookings: recentBookings,
	}, nil
}

func (s *StatsService) Ping(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}

// RefreshDocumentGauges обновляет marketplace_documents (вызывается из cron)
func (s *StatsService) RefreshDocumentGauges(ctx context.Context) error {
	users, services, bookings, err := s.counts(ctx)
	if err != nil {
		return err
	}

	metrics.DocumentsTotal.WithLabelValues(repository.UsersCollection).Set(float64(users))
	metrics.DocumentsTotal.WithLabelValues(repository.ServicesCollection).Set(float64(services))
	metrics.DocumentsTotal.WithLabelValues(repository.BookingsCollection).Set(float64(bookings))

	return nil
}

func (s *StatsService) counts(ctx context.Context) (users, services, bookings int64, err error) {
	if users, err = s.userRepo.Count(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if services, err = s.serviceRepo.Count(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count services: %w", err)
	}
	if bookings, err = s.bookingRepo.Count(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return users, services, bookings, nil
}
