package repository

import (
	"context"
	"testing"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const servicesNS = "HomeHeroDB.Services"

func float(v float64) *float64 { return &v }

func serviceDoc(id primitive.ObjectID, name string, price float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "serviceName", Value: name},
		{Key: "price", Value: price},
		{Key: "Email", Value: "pro@example.com"},
		{Key: "serviceReviews", Value: bson.A{}},
	}
}

func TestPriceFilter(t *testing.T) {
	testCases := []struct {
		name     string
		input    entity.PriceRange
		expected bson.M
	}{
		{"no bounds", entity.PriceRange{}, bson.M{}},
		{"min only", entity.PriceRange{Min: float(50)}, bson.M{"price": bson.M{"$gte": 50.0}}},
		{"max only", entity.PriceRange{Max: float(200)}, bson.M{"price": bson.M{"$lte": 200.0}}},
		{"both", entity.PriceRange{Min: float(50), Max: float(200)}, bson.M{"price": bson.M{"$gte": 50.0, "$lte": 200.0}}},
		{"zero is a real bound", entity.PriceRange{Min: float(0)}, bson.M{"price": bson.M{"$gte": 0.0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, priceFilter(tc.input))
		})
	}
}

func TestServiceRepository_Create(t *testing.T) {
	mt := newMockT(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		service := &entity.Service{ServiceName: "Plumbing", Price: 120, ServiceReviews: []entity.Review{}}
		result, err := repo.Create(context.Background(), service)

		require.NoError(mt, err)
		assert.True(mt, result.Acknowledged)
		assert.Equal(mt, result.InsertedID, service.ID)
	})
}

func TestServiceRepository_Finders(t *testing.T) {
	mt := newMockT(t)

	mt.Run("get all", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch,
			serviceDoc(primitive.NewObjectID(), "Plumbing", 120),
			serviceDoc(primitive.NewObjectID(), "Cleaning", 60),
		))

		services, err := repo.GetAll(context.Background())

		require.NoError(mt, err)
		require.Len(mt, services, 2)
		assert.Equal(mt, "Cleaning", services[1].ServiceName)
		assert.Equal(mt, 60.0, services[1].Price)
	})

	mt.Run("price range", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch,
			serviceDoc(primitive.NewObjectID(), "Plumbing", 120),
		))

		services, err := repo.GetByPriceRange(context.Background(), entity.PriceRange{Min: float(100)})

		require.NoError(mt, err)
		assert.Len(mt, services, 1)
	})

	mt.Run("recent", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch))

		services, err := repo.GetRecent(context.Background(), 5)

		require.NoError(mt, err)
		assert.NotNil(mt, services)
		assert.Empty(mt, services)
	})

	mt.Run("by owner", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch,
			serviceDoc(primitive.NewObjectID(), "Plumbing", 120),
		))

		services, err := repo.GetByOwner(context.Background(), "pro@example.com")

		require.NoError(mt, err)
		require.Len(mt, services, 1)
		assert.Equal(mt, "pro@example.com", services[0].Email)
	})

	mt.Run("find error", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "unknown operator: $gte",
			Name:    "BadValue",
		}))

		services, err := repo.GetAll(context.Background())

		assert.Error(mt, err)
		assert.Nil(mt, services)
	})
}

func TestServiceRepository_GetByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch, serviceDoc(id, "Plumbing", 120)))

		service, err := repo.GetByID(context.Background(), id.Hex())

		require.NoError(mt, err)
		assert.Equal(mt, id, service.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch))

		service, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, ErrServiceNotFound)
		assert.Nil(mt, service)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)

		service, err := repo.GetByID(context.Background(), "xyz")

		assert.ErrorIs(mt, err, ErrInvalidID)
		assert.Nil(mt, service)
	})
}

func TestServiceRepository_Mutations(t *testing.T) {
	mt := newMockT(t)

	mt.Run("update echoes driver counts", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		name := "Deep cleaning"
		result, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(),
			&entity.UpdateServiceRequest{ServiceName: &name}, time.Now())

		require.NoError(mt, err)
		assert.Equal(mt, int64(0), result.MatchedCount)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		result, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())

		require.NoError(mt, err)
		assert.True(mt, result.Acknowledged)
		assert.Equal(mt, int64(1), result.DeletedCount)
	})

	mt.Run("delete malformed id", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)

		result, err := repo.Delete(context.Background(), "123")

		assert.ErrorIs(mt, err, ErrInvalidID)
		assert.Nil(mt, result)
	})

	mt.Run("add review", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		review := entity.Review{User: "Jane", Rating: 5, Comment: "Excellent work", ReviewerEmail: "jane@example.com"}
		result, err := repo.AddReview(context.Background(), primitive.NewObjectID().Hex(), review)

		require.NoError(mt, err)
		assert.Equal(mt, int64(1), result.ModifiedCount)
	})
}

func TestServiceRepository_Testimonials(t *testing.T) {
	mt := newMockT(t)

	mt.Run("projection keeps id and reviews", func(mt *mtest.T) {
		repo := NewServiceRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, servicesNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "serviceReviews", Value: bson.A{
				bson.D{{Key: "user", Value: "Jane"}, {Key: "rating", Value: 4}, {Key: "comment", Value: "Solid job"}},
			}},
		}))

		testimonials, err := repo.GetTestimonials(context.Background())

		require.NoError(mt, err)
		require.Len(mt, testimonials, 1)
		assert.Equal(mt, id, testimonials[0].ID)
		require.Len(mt, testimonials[0].ServiceReviews, 1)
		assert.Equal(mt, 4, testimonials[0].ServiceReviews[0].Rating)
	})
}
