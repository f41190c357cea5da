package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// PolicyPermissive - любой аутентифицированный пользователь может изменять чужие услуги и бронирования
	PolicyPermissive = "permissive"
	// PolicyOwner - изменять документ может только его владелец или администратор
	PolicyOwner = "owner"
)

const defaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Config содержит все настройки Marketplace Service
type Config struct {
	App      AppConfig
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Identity IdentityConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type AppConfig struct {
	Env            string   // production скрывает детали внутренних ошибок
	LogLevel       string
	LogstashAddr   string
	MutationPolicy string   // permissive | owner
	AllowedOrigins []string // CORS
	StatsSchedule  string   // cron-выражение обновления метрик по коллекциям
}

type ServerConfig struct {
	Host string
	Port string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// IdentityConfig - проверка Firebase ID токенов
type IdentityConfig struct {
	ProjectID    string // aud токена; iss = https://securetoken.google.com/<ProjectID>
	CertsURL     string // X.509 сертификаты securetoken
	KeysSchedule string // cron-выражение принудительного обновления сертификатов
}

// RedisConfig - общий кеш сертификатов; пустой Host отключает Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - доменные события; пустой список брокеров отключает публикацию
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	policy := strings.ToLower(getEnv("MUTATION_POLICY", PolicyPermissive))
	if policy != PolicyPermissive && policy != PolicyOwner {
		return nil, fmt.Errorf("invalid MUTATION_POLICY value %q: expected %s or %s", policy, PolicyPermissive, PolicyOwner)
	}

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	return &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", EnvDevelopment),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogstashAddr:   os.Getenv("LOGSTASH_ADDR"),
			MutationPolicy: policy,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			StatsSchedule:  getEnv("STATS_SCHEDULE", "@every 1m"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", getEnv("PORT", "3000")),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "HomeHeroDB"),
		},
		Identity: IdentityConfig{
			ProjectID:    projectID,
			CertsURL:     getEnv("IDENTITY_CERTS_URL", defaultCertsURL),
			KeysSchedule: getEnv("IDENTITY_KEYS_SCHEDULE", "@every 30m"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "marketplace_events"),
		},
	}, nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
