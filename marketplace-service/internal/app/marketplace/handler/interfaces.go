package handler

import (
	"context"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/identity"
)

type AuthServiceInterface interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*identity.Token, error)
}

type UserServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterUserRequest) (*entity.InsertResult, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Authorize(ctx context.Context, email string, role string) error
	ListUsers(ctx context.Context) ([]entity.User, error)
	ChangeRole(ctx context.Context, actorEmail string, id string, req *entity.UpdateRoleRequest) (*entity.UpdateResult, error)
}

type CatalogServiceInterface interface {
	ListServices(ctx context.Context) ([]entity.Service, error)
	FilterServices(ctx context.Context, priceRange entity.PriceRange) ([]entity.Service, error)
	HomeServices(ctx context.Context) ([]entity.Service, error)
	GetService(ctx context.Context, id string) (*entity.Service, error)
	MyServices(ctx context.Context, principal string, email string) ([]entity.Service, error)
	CreateService(ctx context.Context, principal string, req *entity.CreateServiceRequest) (*entity.InsertResult, error)
	UpdateService(ctx context.Context, principal string, id string, req *entity.UpdateServiceRequest) (*entity.UpdateResult, error)
	DeleteService(ctx context.Context, principal string, id string) (*entity.DeleteResult, error)
	AddReview(ctx context.Context, principal string, id string, req *entity.CreateReviewRequest) (*entity.UpdateResult, error)
	Testimonials(ctx context.Context) ([]entity.Testimonial, error)
}

type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, principal string, req *entity.CreateBookingRequest) (*entity.InsertResult, error)
	MyBookings(ctx context.Context, principal string, email string) ([]entity.Booking, error)
	AllBookings(ctx context.Context) ([]entity.Booking, error)
	DeleteBooking(ctx context.Context, principal string, id string) (*entity.DeleteResult, error)
	UpdateStatus(ctx context.Context, principal string, id string, req *entity.UpdateBookingStatusRequest) (*entity.UpdateResult, error)
}

type StatsServiceInterface interface {
	Stats(ctx context.Context) (*entity.StatsResponse, error)
	Ping(ctx context.Context) error
}
