package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"homehero/pkg/logger"
	"homehero/pkg/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker"
)

const (
	defaultCertsTTL = time.Hour
	fetchTimeout    = 10 * time.Second
)

var maxAgePattern = regexp.MustCompile(`max-age=(\d+)`)

// CertificateStore - общий для реплик кеш PEM-сертификатов (Redis).
// Load возвращает nil, nil при промахе.
type CertificateStore interface {
	LoadCertificates(ctx context.Context) (map[string]string, error)
	SaveCertificates(ctx context.Context, certs map[string]string, ttl time.Duration) error
}

// RemoteKeyProvider загружает X.509 сертификаты провайдера и держит разобранные ключи
// в памяти до истечения Cache-Control max-age. Сетевой вызов идет через circuit breaker.
type RemoteKeyProvider struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	store   CertificateStore
	now     func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

// NewRemoteKeyProvider создает провайдер ключей; store может быть nil
func NewRemoteKeyProvider(url string, client *http.Client, store CertificateStore) *RemoteKeyProvider {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	return &RemoteKeyProvider{
		url:     url,
		client:  client,
		breaker: newBreaker("identity-certificates"),
		store:   store,
		now:     time.Now,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// PublicKeys отдает ключи из памяти, при истечении - из общего кеша или провайдера
func (p *RemoteKeyProvider) PublicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	p.mu.RLock()
	keys, expiresAt := p.keys, p.expiresAt
	p.mu.RUnlock()

	if keys != nil && p.now().Before(expiresAt) {
		return keys, nil
	}

	return p.load(ctx, false)
}

// Refresh принудительно загружает сертификаты с провайдера (cron)
func (p *RemoteKeyProvider) Refresh(ctx context.Context) error {
	_, err := p.load(ctx, true)
	return err
}

func (p *RemoteKeyProvider) load(ctx context.Context, force bool) (map[string]*rsa.PublicKey, error) {
	if !force && p.store != nil {
		if keys, ok := p.loadFromStore(ctx); ok {
			return keys, nil
		}
	}

	certs, ttl, err := p.fetch(ctx)
	metrics.RecordIdentityKeyRefresh("remote", err)
	if err != nil {
		return nil, err
	}

	keys, err := parseCertificates(certs)
	if err != nil {
		return nil, err
	}
	p.remember(keys, ttl)

	if p.store != nil {
		if err := p.store.SaveCertificates(ctx, certs, ttl); err != nil {
			logger.Warn().Err(err).Msg("Failed to share identity certificates")
		}
	}

	return keys, nil
}

func (p *RemoteKeyProvider) loadFromStore(ctx context.Context) (map[string]*rsa.PublicKey, bool) {
	certs, err := p.store.LoadCertificates(ctx)
	if err != nil {
		metrics.RecordIdentityKeyRefresh("redis", err)
		logger.Warn().Err(err).Msg("Failed to load identity certificates from cache")
		return nil, false
	}
	if len(certs) == 0 {
		return nil, false
	}

	keys, err := parseCertificates(certs)
	if err != nil {
		logger.Warn().Err(err).Msg("Cached identity certificates are corrupted")
		return nil, false
	}
	metrics.RecordIdentityKeyRefresh("redis", nil)

	// Срок жизни в Redis не известен точно - держим в памяти минуту и перечитываем
	p.remember(keys, time.Minute)
	return keys, true
}

func (p *RemoteKeyProvider) remember(keys map[string]*rsa.PublicKey, ttl time.Duration) {
	p.mu.Lock()
	p.keys = keys
	p.expiresAt = p.now().Add(ttl)
	p.mu.Unlock()
}

func (p *RemoteKeyProvider) fetch(ctx context.Context) (map[string]string, time.Duration, error) {
	type result struct {
		certs map[string]string
		ttl   time.Duration
	}

	// отмена запроса клиентом не должна считаться отказом провайдера в breaker
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()

	out, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, p.url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build certificates request: %w", err)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch certificates: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("certificates endpoint returned %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("failed to read certificates: %w", err)
		}

		var certs map[string]string
		if err := json.Unmarshal(body, &certs); err != nil {
			return nil, fmt.Errorf("failed to decode certificates: %w", err)
		}

		return result{certs: certs, ttl: maxAge(resp.Header.Get("Cache-Control"))}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	r := out.(result)
	return r.certs, r.ttl, nil
}

func parseCertificates(certs map[string]string) (map[string]*rsa.PublicKey, error) {
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates in response")
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate %s: %w", kid, err)
		}
		keys[kid] = key
	}

	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	m := maxAgePattern.FindStringSubmatch(cacheControl)
	if m == nil {
		return defaultCertsTTL
	}

	seconds, err := strconv.Atoi(m[1])
	if err != nil || seconds <= 0 {
		return defaultCertsTTL
	}

	return time.Duration(seconds) * time.Second
}

// StaticKeyProvider - фиксированный набор ключей (эмулятор, тесты)
type StaticKeyProvider map[string]*rsa.PublicKey

func (s StaticKeyProvider) PublicKeys(context.Context) (map[string]*rsa.PublicKey, error) {
	return s, nil
}
