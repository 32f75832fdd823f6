package service

import (
	"context"

	"legal-analyzer-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Encode(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.SetContext(ctx)

	return ps.publisher.Publish(ps.topicName, msg)
}
