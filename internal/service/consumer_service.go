// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-fitness-be/internal/dto"
	"ai-fitness-be/internal/pkg/cache"
	"ai-fitness-be/internal/repository/unitofwork"
	"ai-fitness-be/pkg/events"
	pkgNats "ai-fitness-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process research-completed topic: it warms
// the redis cache and fans the event out to NATS for other services.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	uowFactory    unitofwork.RepositoryFactory
	researchCache *cache.ResearchCache
	natsPublisher *pkgNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	researchCache *cache.ResearchCache,
	natsPublisher *pkgNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		uowFactory:    uowFactory,
		researchCache: researchCache,
		natsPublisher: natsPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishResearchCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing research completed for ResearchId: %s", payload.ResearchId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	result, err := uow.ResearchResultRepository().FindById(ctx, payload.ResearchId)
	if err != nil {
		log.Printf("[ERROR] Failed to load research %s: %v", payload.ResearchId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if result == nil {
		log.Printf("[ERROR] Research not found: %s", payload.ResearchId)
		msg.Ack() // Deleted meanwhile? Ack.
		return
	}

	cs.researchCache.Set(ctx, result)

	if cs.natsPublisher != nil {
		evt := events.NewResearchCompleted(
			payload.ResearchId.String(),
			payload.UserId.String(),
			payload.Query,
		)
		if err := cs.natsPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish NATS event for research %s: %v", payload.ResearchId, err)
		}
	}

	msg.Ack()
}
