package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

// NewBookingRepository создает репозиторий заказов поверх коллекции bookings
func NewBookingRepository(db *mongo.Database) BookingRepository {
	return &bookingRepository{collection: db.Collection(BookingsCollection)}
}

// EnsureIndexes создает индексы по Email (/my-bookings) и created_at (/stats)
func (r *bookingRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "Email", Value: 1}},
			Options: options.Index().SetName("email_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create bookings indexes: %w", err)
	}
	return nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) (*entity.InsertResult, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, BookingsCollection)
	result, err := r.collection.InsertOne(ctx, booking)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	inserted := insertResult(result)
	booking.ID = inserted.InsertedID
	return inserted, nil
}

func (r *bookingRepository) GetAll(ctx context.Context) ([]entity.Booking, error) {
	return r.find(ctx, bson.M{})
}

// GetByEmail - заказы, оформленные пользователем; пустой email возвращает все заказы
func (r *bookingRepository) GetByEmail(ctx context.Context, email string) ([]entity.Booking, error) {
	filter := bson.M{}
	if email != "" {
		filter["Email"] = email
	}
	return r.find(ctx, filter)
}

func (r *bookingRepository) GetRecent(ctx context.Context, limit int64) ([]entity.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, BookingsCollection)

	var booking entity.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrBookingNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	timer.Done(nil)

	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, status string, updatedAt time.Time) (*entity.UpdateResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, BookingsCollection)
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": updatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return updateResult(result), nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) (*entity.DeleteResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, BookingsCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	return deleteResult(result), nil
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, BookingsCollection)
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]entity.Booking, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, BookingsCollection)

	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]entity.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	timer.Done(nil)

	return bookings, nil
}
