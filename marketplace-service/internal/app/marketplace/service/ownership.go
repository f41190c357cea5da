package service

import (
	"context"
	"errors"
	"fmt"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/repository"
)

// ownership решает, может ли principal менять чужой документ.
// В режиме permissive достаточно валидного токена, в режиме owner нужен
// владелец документа (поле Email) или пользователь с ролью admin.
type ownership struct {
	ownerOnly bool
	userRepo  repository.UserRepository
}

func (o ownership) check(ctx context.Context, principal string, owner func(ctx context.Context) (string, error)) error {
	if !o.ownerOnly {
		return nil
	}

	ownerEmail, err := owner(ctx)
	if err != nil {
		return translate(err)
	}
	if ownerEmail == principal {
		return nil
	}

	user, err := o.userRepo.GetByEmail(ctx, principal)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("failed to load user role: %w", err)
	}
	if user.Role != entity.RoleAdmin {
		return ErrForbidden
	}

	return nil
}
