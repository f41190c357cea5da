package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"homehero/marketplace-service/internal/app/marketplace/identity"
)

// TokenVerifier проверяет ID токен провайдера идентификации
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Token, error)
}

type AuthService struct {
	verifier TokenVerifier
}

func NewAuthService(verifier TokenVerifier) *AuthService {
	return &AuthService{verifier: verifier}
}

// Authenticate проверяет значение заголовка Authorization.
// Токен - второй сегмент через пробел; без второго сегмента токен пустой и отклоняется.
func (s *AuthService) Authenticate(ctx context.Context, authorizationHeader string) (*identity.Token, error) {
	if authorizationHeader == "" {
		return nil, ErrMissingToken
	}

	token, err := s.verifier.VerifyIDToken(ctx, bearerToken(authorizationHeader))
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	return token, nil
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
