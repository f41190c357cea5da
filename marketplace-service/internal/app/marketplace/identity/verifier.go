package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrUnknownKey          = errors.New("token signed with unknown key")
)

const issuerPrefix = "https://securetoken.google.com/"

// KeyProvider отдает текущие публичные ключи провайдера по kid
type KeyProvider interface {
	PublicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// Claims - полезная нагрузка Firebase ID токена
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Token - проверенный токен; Email становится principal запроса
type Token struct {
	UID           string
	Email         string
	EmailVerified bool
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Verifier проверяет Firebase ID токены (RS256, aud = project id,
// iss = https://securetoken.google.com/<project id>, обязательные exp/sub/email)
type Verifier struct {
	keys   KeyProvider
	parser *jwt.Parser
}

func NewVerifier(projectID string, keys KeyProvider) *Verifier {
	return &Verifier{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(projectID),
			jwt.WithIssuer(issuerPrefix+projectID),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(5*time.Second),
		),
	}
}

// VerifyIDToken возвращает ErrInvalidToken для любого отклоненного токена
// и ErrProviderUnavailable, если ключи провайдера получить не удалось.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	var keysErr error
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKey
		}

		keys, err := v.keys.PublicKeys(ctx)
		if err != nil {
			keysErr = err
			return nil, err
		}

		key, ok := keys[kid]
		if !ok {
			return nil, ErrUnknownKey
		}
		return key, nil
	})
	if keysErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, keysErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", ErrInvalidToken)
	}

	token := &Token{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}

	return token, nil
}
