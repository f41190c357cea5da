package infrastructure

import "context"

// MessagePublisher интерфейс для отправки доменных событий в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
