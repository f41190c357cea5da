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

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository создает репозиторий пользователей поверх коллекции users
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection(UsersCollection)}
}

// EnsureIndexes создает уникальный индекс по userEmail
func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userEmail", Value: 1}},
		Options: options.Index().SetName("userEmail_unique").SetUnique(true),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create index on userEmail: %w", err)
	}
	return nil
}

// Create вставляет пользователя; повтор userEmail дает ErrUserAlreadyExists
func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.InsertResult, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, UsersCollection)
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return nil, ErrUserAlreadyExists
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	timer.Done(nil)

	inserted := insertResult(result)
	user.ID = inserted.InsertedID
	return inserted, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, UsersCollection)

	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"userEmail": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrUserNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	timer.Done(nil)

	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpFind, UsersCollection)

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]entity.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	timer.Done(nil)

	return users, nil
}

// UpdateRole меняет роль пользователя, найденного по _id
func (r *userRepository) UpdateRole(ctx context.Context, id string, role string, updatedAt time.Time) (*entity.UpdateResult, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, UsersCollection)
	update := bson.M{
		"$set": bson.M{
			"role":       role,
			"updated_at": updatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	return updateResult(result), nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, UsersCollection)
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
