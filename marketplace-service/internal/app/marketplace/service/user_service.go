package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure"
	"homehero/marketplace-service/internal/app/marketplace/repository"
	"homehero/pkg/metrics"
)

type UserService struct {
	userRepo repository.UserRepository
	events   eventPublisher
}

func NewUserService(userRepo repository.UserRepository, kafkaProducer infrastructure.MessagePublisher) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   eventPublisher{producer: kafkaProducer},
	}
}

// Register создает пользователя с ролью provider. Повторная регистрация
// того же userEmail возвращает ErrUserExists и ничего не меняет.
func (s *UserService) Register(ctx context.Context, req *entity.RegisterUserRequest) (*entity.InsertResult, error) {
	email := strings.TrimSpace(req.UserEmail)

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		UserEmail: email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		Role:      entity.RoleProvider,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// гонка двух регистраций ловится уникальным индексом
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UserRegistrations.Inc()
	s.events.publish(ctx, entity.EventUserRegistered, user.ID.Hex(), email, map[string]string{"role": user.Role})

	return result, nil
}

// GetByEmail возвращает документ пользователя (/users/role)
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// Authorize проверяет, что у пользователя с этим email сохранена роль role.
// Отсутствующий пользователь тоже ErrForbidden.
func (s *UserService) Authorize(ctx context.Context, email string, role string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to load user role: %w", err)
	}

	if user.Role != role {
		return ErrForbidden
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ChangeRole меняет роль пользователя по _id; вызывающий уже прошел проверку admin
func (s *UserService) ChangeRole(ctx context.Context, actorEmail string, id string, req *entity.UpdateRoleRequest) (*entity.UpdateResult, error) {
	result, err := s.userRepo.UpdateRole(ctx, id, req.Role, time.Now().UTC())
	if err != nil {
		return nil, translate(err)
	}

	if result.MatchedCount > 0 {
		metrics.UserRoleChanges.WithLabelValues(req.Role).Inc()
		s.events.publish(ctx, entity.EventUserRoleChanged, id, actorEmail, map[string]string{"role": req.Role})
	}

	return result, nil
}

// translate переводит ошибки репозитория в ошибки сервиса
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrServiceNotFound):
		return ErrServiceNotFound
	case errors.Is(err, repository.ErrBookingNotFound):
		return ErrBookingNotFound
	default:
		return err
	}
}
