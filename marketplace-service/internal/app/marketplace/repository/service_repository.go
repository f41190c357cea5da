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

type serviceRepository struct {
	collection *mongo.Collection
}

// NewServiceRepository создает репозиторий услуг поверх коллекции Services
func NewServiceRepository(db *mongo.Database) ServiceRepository {
	return &serviceRepository{collection: db.Collection(ServicesCollection)}
}

// EnsureIndexes создает индексы для /services/home, /my-services и фильтра по цене
func (r *serviceRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "Email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("price_idx"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create services indexes: %w", err)
	}
	return nil
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) (*entity.InsertResult, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, ServicesCollection)
	result, err := r.collection.InsertOne(ctx, service)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	inserted := insertResult(result)
	service.ID = inserted.InsertedID
	return inserted, nil
}

func (r *serviceRepository) GetAll(ctx context.Context) ([]entity.Service, error) {
	return r.find(ctx, bson.M{})
}

// GetByPriceRange - пустой диапазон возвращает все услуги, границы включительные
func (r *serviceRepository) GetByPriceRange(ctx context.Context, priceRange entity.PriceRange) ([]entity.Service, error) {
	return r.find(ctx, priceFilter(priceRange))
}

func priceFilter(priceRange entity.PriceRange) bson.M {
	bounds := bson.M{}
	if priceRange.Min != nil {
		bounds["$gte"] = *priceRange.Min
	}
	if priceRange.Max != nil {
		bounds["$lte"] = *priceRange.Max
	}

	if len(bounds) == 0 {
		return bson.M{}
	}
	return bson.M{"price": bounds}
}

func (r *serviceRepository) GetRecent(ctx context.Context, limit int64) ([]entity.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, ServicesCollection)

	var service entity.Service
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrServiceNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	timer.Done(nil)

	return &service, nil
}

// GetByOwner - услуги провайдера, новые первыми; пустой email возвращает все услуги
func (r *serviceRepository) GetByOwner(ctx context.Context, email string) ([]entity.Service, error) {
	filter := bson.M{}
	if email != "" {
		filter["Email"] = email
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

// Update применяет только переданные поля запроса
func (r *serviceRepository) Update(ctx context.Context, id string, req *entity.UpdateServiceRequest, updatedAt time.Time) (*entity.UpdateResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": updatedAt}
	if req.ServiceName != nil {
		set["serviceName"] = *req.ServiceName
	}
	if req.ImageURL != nil {
		set["imageUrl"] = *req.ImageURL
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = req.Price.Value
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, ServicesCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	return updateResult(result), nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) (*entity.DeleteResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, ServicesCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to delete service: %w", err)
	}

	return deleteResult(result), nil
}

// AddReview дописывает отзыв в конец serviceReviews ($push)
func (r *serviceRepository) AddReview(ctx context.Context, id string, review entity.Review) (*entity.UpdateResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, ServicesCollection)
	update := bson.M{"$push": bson.M{"serviceReviews": review}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	return updateResult(result), nil
}

// GetTestimonials - проекция {_id, serviceReviews} по всем услугам
func (r *serviceRepository) GetTestimonials(ctx context.Context) ([]entity.Testimonial, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, ServicesCollection)

	opts := options.Find().SetProjection(bson.M{"serviceReviews": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find testimonials: %w", err)
	}
	defer cursor.Close(ctx)

	testimonials := make([]entity.Testimonial, 0)
	if err := cursor.All(ctx, &testimonials); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode testimonials: %w", err)
	}
	timer.Done(nil)

	return testimonials, nil
}

func (r *serviceRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, ServicesCollection)
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *serviceRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]entity.Service, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, ServicesCollection)

	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	services := make([]entity.Service, 0)
	if err := cursor.All(ctx, &services); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	timer.Done(nil)

	return services, nil
}
