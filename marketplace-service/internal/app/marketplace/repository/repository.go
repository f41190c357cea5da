package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	serviceName = "marketplace-service"

	UsersCollection    = "users"
	ServicesCollection = "Services"
	BookingsCollection = "bookings"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrInvalidID         = errors.New("invalid document id")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrServiceNotFound   = errors.New("service not found")
	ErrBookingNotFound   = errors.New("booking not found")
)

// UserRepository - коллекция users
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.InsertResult, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	UpdateRole(ctx context.Context, id string, role string, updatedAt time.Time) (*entity.UpdateResult, error)
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// ServiceRepository - коллекция Services вместе со встроенными отзывами
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) (*entity.InsertResult, error)
	GetAll(ctx context.Context) ([]entity.Service, error)
	GetByPriceRange(ctx context.Context, priceRange entity.PriceRange) ([]entity.Service, error)
	GetRecent(ctx context.Context, limit int64) ([]entity.Service, error)
	GetByID(ctx context.Context, id string) (*entity.Service, error)
	GetByOwner(ctx context.Context, email string) ([]entity.Service, error)
	Update(ctx context.Context, id string, req *entity.UpdateServiceRequest, updatedAt time.Time) (*entity.UpdateResult, error)
	Delete(ctx context.Context, id string) (*entity.DeleteResult, error)
	AddReview(ctx context.Context, id string, review entity.Review) (*entity.UpdateResult, error)
	GetTestimonials(ctx context.Context) ([]entity.Testimonial, error)
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// BookingRepository - коллекция bookings
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) (*entity.InsertResult, error)
	GetAll(ctx context.Context) ([]entity.Booking, error)
	GetByEmail(ctx context.Context, email string) ([]entity.Booking, error)
	GetRecent(ctx context.Context, limit int64) ([]entity.Booking, error)
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id string, status string, updatedAt time.Time) (*entity.UpdateResult, error)
	Delete(ctx context.Context, id string) (*entity.DeleteResult, error)
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// Pinger проверяет доступность базы (/api/test)
type Pinger interface {
	Ping(ctx context.Context) error
}

type databasePinger struct {
	db *mongo.Database
}

func NewDatabasePinger(db *mongo.Database) Pinger {
	return &databasePinger{db: db}
}

func (p *databasePinger) Ping(ctx context.Context) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpPing, "")
	err := p.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func toObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Ответы повторяют результат драйвера; запись идет с acknowledged write concern

func insertResult(res *mongo.InsertOneResult) *entity.InsertResult {
	out := &entity.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = oid
	}
	return out
}

func updateResult(res *mongo.UpdateResult) *entity.UpdateResult {
	return &entity.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}
}

func deleteResult(res *mongo.DeleteResult) *entity.DeleteResult {
	return &entity.DeleteResult{
		Acknowledged: true,
		DeletedCount: res.DeletedCount,
	}
}
