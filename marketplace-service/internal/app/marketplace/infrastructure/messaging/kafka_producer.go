package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"homehero/pkg/logger"
	"homehero/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const (
	serviceName = "marketplace-service"

	queueSize      = 1000
	batchSize      = 100
	publishTimeout = 10 * time.Second
)

var (
	ErrQueueFull      = errors.New("kafka publish queue is full")
	ErrProducerClosed = errors.New("kafka producer is closed")
)

// KafkaProducer публикует доменные события маркетплейса в один топик.
// PublishMessage только ставит событие в очередь, запись в Kafka идет в фоне.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

// NewKafkaProducer создает producer и запускает фоновую запись; brokers в формате ["host:port"]
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:  kafka.TCP(brokers...),
		Topic: topic,
		// один ключ (id документа) всегда попадает в одну партицию
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
	}

	p := newKafkaProducer(writer, topic, queueSize)
	go p.run()
	return p
}

func newKafkaProducer(writer *kafka.Writer, topic string, size int) *KafkaProducer {
	return &KafkaProducer{
		writer: writer,
		topic:  topic,
		queue:  make(chan kafka.Message, size),
		done:   make(chan struct{}),
	}
}

// PublishMessage ставит событие в очередь; key - id документа.
// Запрос не ждет брокер: при переполненной очереди событие отбрасывается.
func (p *KafkaProducer) PublishMessage(_ context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.queue <- message:
		return nil
	default:
		metrics.RecordKafkaError(serviceName, p.topic, "enqueue")
		return ErrQueueFull
	}
}

func (p *KafkaProducer) run() {
	defer close(p.done)

	for message := range p.queue {
		batch := []kafka.Message{message}
	collect:
		for len(batch) < batchSize {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break collect
				}
				batch = append(batch, next)
			default:
				break collect
			}
		}

		p.write(batch)
	}
}

func (p *KafkaProducer) write(batch []kafka.Message) {
	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		timer.Error()
		logger.Warn().
			Err(err).
			Str("topic", p.topic).
			Int("messages", len(batch)).
			Msg("Failed to write events to Kafka")
		return
	}

	for range batch {
		timer.Success()
	}
}

// Close дописывает очередь и закрывает writer
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

// NoopPublisher используется, когда брокеры не настроены
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(context.Context, string, []byte) error { return nil }

func (NoopPublisher) Close() error { return nil }
