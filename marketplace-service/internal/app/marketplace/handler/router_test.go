package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/identity"
	"homehero/marketplace-service/internal/app/marketplace/repository/mocks"
	"homehero/marketplace-service/internal/app/marketplace/service"
	"homehero/marketplace-service/internal/app/marketplace/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	aliceToken  = "alice-token"
	bobToken    = "bob-token"
	outageToken = "outage-token"

	aliceEmail = "alice@example.com"
	bobEmail   = "bob@example.com"
)

// stubVerifier знает два токена; outageToken имитирует недоступность провайдера
type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*identity.Token, error) {
	switch idToken {
	case aliceToken:
		return &identity.Token{UID: "uid-alice", Email: aliceEmail}, nil
	case bobToken:
		return &identity.Token{UID: "uid-bob", Email: bobEmail}, nil
	case outageToken:
		return nil, fmt.Errorf("%w: certificates fetch failed", identity.ErrProviderUnavailable)
	}
	return nil, fmt.Errorf("%w: unknown test token", identity.ErrInvalidToken)
}

type testEnv struct {
	router      *gin.Engine
	userRepo    *mocks.MockUserRepository
	serviceRepo *mocks.MockServiceRepository
	bookingRepo *mocks.MockBookingRepository
	pinger      *mocks.MockPinger
	publisher   *mocks.MockMessagePublisher
}

type envOptions struct {
	production bool
	ownerOnly  bool
}

// newTestEnv собирает роутер с настоящими сервисами поверх моков репозиториев
func newTestEnv(opts envOptions) *testEnv {
	env := &testEnv{
		userRepo:    new(mocks.MockUserRepository),
		serviceRepo: new(mocks.MockServiceRepository),
		bookingRepo: new(mocks.MockBookingRepository),
		pinger:      new(mocks.MockPinger),
		publisher:   new(mocks.MockMessagePublisher),
	}
	env.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	userService := service.NewUserService(env.userRepo, env.publisher)
	catalogService := service.NewCatalogService(env.serviceRepo, env.userRepo, env.publisher, opts.ownerOnly)
	bookingService := service.NewBookingService(env.bookingRepo, env.userRepo, env.publisher, opts.ownerOnly)
	statsService := service.NewStatsService(env.userRepo, env.serviceRepo, env.bookingRepo, env.pinger)
	authService := service.NewAuthService(stubVerifier{})

	validator := validation.New()
	responder := NewResponder(opts.production)

	env.router = SetupRoutes(Handlers{
		User:    NewUserHandler(userService, validator, responder),
		Catalog: NewCatalogHandler(catalogService, validator, responder),
		Booking: NewBookingHandler(bookingService, validator, responder),
		System:  NewSystemHandler(statsService, responder),
	}, NewAuthMiddleware(authService, userService, responder), responder, []string{"*"})

	return env
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// asAdmin - RequireRole находит principal с ролью admin
func (e *testEnv) asAdmin(email string) {
	e.userRepo.On("GetByEmail", mock.Anything, email).
		Return(&entity.User{UserEmail: email, Role: entity.RoleAdmin}, nil)
}

func (e *testEnv) asRole(email, role string) {
	e.userRepo.On("GetByEmail", mock.Anything, email).
		Return(&entity.User{UserEmail: email, Role: role}, nil)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var body entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRouter_Root(t *testing.T) {
	env := newTestEnv(envOptions{})

	w := env.do(http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Home Hero Server is running", decodeBody(t, w)["message"])
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(envOptions{})

	w := env.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "timestamp")
}

func TestRouter_APITest(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		env := newTestEnv(envOptions{})
		env.pinger.On("Ping", mock.Anything).Return(nil)

		w := env.do(http.MethodGet, "/api/test", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Database connection successful", decodeBody(t, w)["message"])
	})

	t.Run("database down", func(t *testing.T) {
		env := newTestEnv(envOptions{})
		env.pinger.On("Ping", mock.Anything).Return(errors.New("server selection timeout"))

		w := env.do(http.MethodGet, "/api/test", "", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeErrors(t, w)
		assert.Equal(t, "Database connection failed", body.Message)
		assert.Contains(t, body.Error, "server selection timeout")
	})
}

func TestRouter_UnknownRoute(t *testing.T) {
	env := newTestEnv(envOptions{})

	w := env.do(http.MethodGet, "/no-such-route", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Route not found", body["message"])
	assert.Equal(t, "/no-such-route", body["path"])
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(envOptions{})

	w := env.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_PanicBecomes500(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.serviceRepo.On("GetAll", mock.Anything).
		Run(func(mock.Arguments) { panic("cursor exploded") }).
		Return(nil, nil)

	w := env.do(http.MethodGet, "/services", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeErrors(t, w)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Contains(t, body.Error, "cursor exploded")
}

func TestRouter_InternalErrorDetail(t *testing.T) {
	testCases := []struct {
		name       string
		production bool
		expectErr  bool
	}{
		{"development shows detail", false, true},
		{"production hides detail", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(envOptions{production: tc.production})
			env.serviceRepo.On("GetAll", mock.Anything).Return(nil, errors.New("connection reset"))

			w := env.do(http.MethodGet, "/services", "", nil)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "Internal server error", body["message"])
			_, hasError := body["error"]
			assert.Equal(t, tc.expectErr, hasError)
		})
	}
}

func TestRouter_CORSWildcard(t *testing.T) {
	env := newTestEnv(envOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/services", nil)
	req.Header.Set("Origin", "https://homehero.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfig(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		cfg := corsConfig([]string{"*"})
		assert.True(t, cfg.AllowAllOrigins)
		assert.False(t, cfg.AllowCredentials)
	})

	t.Run("empty list", func(t *testing.T) {
		cfg := corsConfig(nil)
		assert.True(t, cfg.AllowAllOrigins)
	})

	t.Run("explicit origins", func(t *testing.T) {
		cfg := corsConfig([]string{"https://homehero.example"})
		assert.False(t, cfg.AllowAllOrigins)
		assert.True(t, cfg.AllowCredentials)
		assert.Equal(t, []string{"https://homehero.example"}, cfg.AllowOrigins)
		assert.NoError(t, cfg.Validate())
	})
}

func TestRouter_Stats(t *testing.T) {
	env := newTestEnv(envOptions{})
	env.userRepo.On("Count", mock.Anything).Return(int64(3), nil)
	env.serviceRepo.On("Count", mock.Anything).Return(int64(7), nil)
	env.bookingRepo.On("Count", mock.Anything).Return(int64(2), nil)
	env.serviceRepo.On("GetRecent", mock.Anything, int64(service.HomeServicesLimit)).Return([]entity.Service{{ServiceName: "Plumbing"}}, nil)
	env.bookingRepo.On("GetRecent", mock.Anything, int64(service.HomeServicesLimit)).Return([]entity.Booking{}, nil)

	w := env.do(http.MethodGet, "/stats", aliceToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var stats entity.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(7), stats.TotalServices)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Len(t, stats.RecentServices, 1)
}

func TestRouter_StatsRequiresToken(t *testing.T) {
	env := newTestEnv(envOptions{})

	w := env.do(http.MethodGet, "/stats", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized access", decodeBody(t, w)["message"])
}
