package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homehero/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName     = "marketplace-service"
	certificatesKey = "identity:certificates"
	keyPrefix       = "identity"
)

// RedisClient хранит сертификаты провайдера идентификации, общие для всех реплик
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SaveCertificates сохраняет PEM-сертификаты по kid на время max-age ответа провайдера
func (r *RedisClient) SaveCertificates(ctx context.Context, certs map[string]string, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(certs)
	if err != nil {
		return fmt.Errorf("failed to marshal certificates: %w", err)
	}

	if err := r.client.Set(ctx, certificatesKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set certificates in cache: %w", err)
	}

	return nil
}

// LoadCertificates возвращает nil, nil если в кеше ничего нет
func (r *RedisClient) LoadCertificates(ctx context.Context) (map[string]string, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, certificatesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, keyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get certificates from cache: %w", err)
	}

	var certs map[string]string
	if err := json.Unmarshal(data, &certs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal certificates: %w", err)
	}
	metrics.RecordCacheHit(serviceName, keyPrefix)

	return certs, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
