package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserHandler_Register_Success(t *testing.T) {
	env := newTestEnv(envOptions{})
	insertedID := primitive.NewObjectID()

	env.userRepo.On("GetByEmail", mock.Anything, aliceEmail).Return(nil, repository.ErrUserNotFound)
	env.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.UserEmail == aliceEmail && u.Role == entity.RoleProvider
	})).Return(&entity.InsertResult{Acknowledged: true, InsertedID: insertedID}, nil)

	w := env.do(http.MethodPost, "/users", "", map[string]string{
		"userEmail": "  " + aliceEmail + " ",
		"name":      "Alice",
		"role":      "admin",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result entity.InsertResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Acknowledged)
	assert.Equal(t, insertedID, result.InsertedID)
	env.userRepo.AssertExpectations(t)
}

func TestUserHandler_Register_Twice(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.userRepo.On("GetByEmail", mock.Anything, aliceEmail).
		Return(&entity.User{UserEmail: aliceEmail, Role: entity.RoleProvider}, nil)

	w := env.do(http.MethodPost, "/users", "", map[string]string{"userEmail": aliceEmail})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user is already in collection", decodeBody(t, w)["message"])
	env.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserHandler_Register_RaceOnUniqueIndex(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.userRepo.On("GetByEmail", mock.Anything, aliceEmail).Return(nil, repository.ErrUserNotFound)
	env.userRepo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrUserAlreadyExists)

	w := env.do(http.MethodPost, "/users", "", map[string]string{"userEmail": aliceEmail})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user is already in collection", decodeBody(t, w)["message"])
}

func TestUserHandler_Register_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"malformed json", `{"userEmail":`, "Invalid request body"},
		{"missing email", map[string]string{"name": "Alice"}, "Validation failed"},
		{"bad email shape", map[string]string{"userEmail": "not-an-email"}, "Validation failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(envOptions{})

			w := env.do(http.MethodPost, "/users", "", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, decodeBody(t, w)["message"])
			env.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUserHandler_GetRole(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.asRole(aliceEmail, entity.RoleCustomer)

	w := env.do(http.MethodGet, "/users/role", aliceToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, aliceEmail, body["userEmail"])
	assert.Equal(t, entity.RoleCustomer, body["role"])
}

func TestUserHandler_GetRole_Unregistered(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.userRepo.On("GetByEmail", mock.Anything, aliceEmail).Return(nil, repository.ErrUserNotFound)

	w := env.do(http.MethodGet, "/users/role", aliceToken, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeBody(t, w)["message"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"single segment", "Bearer", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"provider outage", "Bearer " + outageToken, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(envOptions{})

			req := httptest.NewRequest(http.MethodGet, "/users/role", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, tc.expected, w.Code)
			env.userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestUserHandler_ListUsers_NonAdmin(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.asRole(bobEmail, entity.RoleProvider)

	w := env.do(http.MethodGet, "/all-users", bobToken, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, `{"message":"forbidden access"}`, w.Body.String())
	env.userRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestUserHandler_ListUsers_UnregisteredCaller(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.userRepo.On("GetByEmail", mock.Anything, bobEmail).Return(nil, repository.ErrUserNotFound)

	w := env.do(http.MethodGet, "/all-users", bobToken, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_ListUsers_Admin(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.asAdmin(aliceEmail)
	env.userRepo.On("GetAll", mock.Anything).Return([]entity.User{
		{UserEmail: aliceEmail, Role: entity.RoleAdmin},
		{UserEmail: bobEmail, Role: entity.RoleProvider},
	}, nil)

	w := env.do(http.MethodGet, "/all-users", aliceToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var users []entity.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestUserHandler_ChangeRole(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.asAdmin(aliceEmail)
	targetID := primitive.NewObjectID().Hex()
	env.userRepo.On("UpdateRole", mock.Anything, targetID, entity.RoleCustomer, mock.AnythingOfType("time.Time")).
		Return(&entity.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil)

	w := env.do(http.MethodPatch, fmt.Sprintf("/users/%s/role", targetID), aliceToken, map[string]string{"role": "customer"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["modifiedCount"])
	env.publisher.AssertCalled(t, "PublishMessage", mock.Anything, targetID, mock.Anything)
}

func TestUserHandler_ChangeRole_Invalid(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		env := newTestEnv(envOptions{})
		env.asAdmin(aliceEmail)

		w := env.do(http.MethodPatch, "/users/"+primitive.NewObjectID().Hex()+"/role", aliceToken, map[string]string{"role": "superuser"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeErrors(t, w)
		assert.Equal(t, "Validation failed", body.Message)
		assert.NotEmpty(t, body.Errors)
	})

	t.Run("malformed id", func(t *testing.T) {
		env := newTestEnv(envOptions{})
		env.asAdmin(aliceEmail)
		env.userRepo.On("UpdateRole", mock.Anything, "not-an-id", entity.RoleCustomer, mock.Anything).
			Return(nil, fmt.Errorf("%w: not-an-id", repository.ErrInvalidID))

		w := env.do(http.MethodPatch, "/users/not-an-id/role", aliceToken, map[string]string{"role": "customer"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid ID format", decodeBody(t, w)["message"])
	})
}

func TestUserHandler_ChangeRole_NoMatchEchoesCounts(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.asAdmin(aliceEmail)
	targetID := primitive.NewObjectID().Hex()
	env.userRepo.On("UpdateRole", mock.Anything, targetID, entity.RoleAdmin, mock.Anything).
		Return(&entity.UpdateResult{Acknowledged: true}, nil)

	w := env.do(http.MethodPatch, "/users/"+targetID+"/role", aliceToken, map[string]string{"role": "admin"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["matchedCount"])
	env.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}
