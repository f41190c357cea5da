package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure"
	"homehero/pkg/logger"
)

// eventPublisher отправляет доменные события; ошибки Kafka не доходят до клиента
type eventPublisher struct {
	producer infrastructure.MessagePublisher
}

func (p eventPublisher) publish(ctx context.Context, eventType, entityID, actor string, data interface{}) {
	event := entity.MarketplaceEvent{
		EventType:  eventType,
		EntityID:   entityID,
		ActorEmail: actor,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	}

	if err := p.send(ctx, event); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("entity_id", entityID).
			Msg("Failed to publish marketplace event")
	}
}

func (p eventPublisher) send(ctx context.Context, event entity.MarketplaceEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// ключ = id документа, события одного документа идут в одну партицию
	if err := p.producer.PublishMessage(ctx, event.EntityID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
