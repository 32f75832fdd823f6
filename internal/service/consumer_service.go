package service

import (
	"context"

	"legal-analyzer-be/internal/mapper"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder relays events off the process, e.g. to NATS JetStream.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	analysisRepo contract.AnalysisRepository
	forwarder    EventForwarder
	mapper       *mapper.AnalysisMapper
	audit        logger.ILogger
	logger       logger.ILogger
}

// NewConsumerService wires the event consumer. analysisRepo and forwarder
// are optional.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	analysisRepo contract.AnalysisRepository,
	forwarder EventForwarder,
	audit logger.ILogger,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		analysisRepo: analysisRepo,
		forwarder:    forwarder,
		mapper:       mapper.NewAnalysisMapper(),
		audit:        audit,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

// processMessage always acks: a message that cannot be handled now will not
// be handled on redelivery either.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("consumer", "Failed to decode event", map[string]interface{}{"message_id": msg.UUID, "error": err})
		return
	}

	switch event.EventType() {
	case events.TypeDocumentAnalyzed, events.TypeDocumentRejected:
		cs.recordAnalysis(ctx, event)
	case events.TypeSessionDocumentIndexed:
		cs.audit.Info("consumer", "Session document indexed", event.Payload())
	default:
		cs.logger.Warn("consumer", "Unknown event type", map[string]interface{}{"type": event.EventType()})
		return
	}

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.logger.Error("consumer", "Failed to forward event", map[string]interface{}{"type": event.EventType(), "error": err})
		}
	}
}

func (cs *consumerService) recordAnalysis(ctx context.Context, event events.BaseEvent) {
	var payload events.AnalysisPayload
	if err := events.DecodePayload(event, &payload); err != nil {
		cs.logger.Error("consumer", "Invalid analysis payload", map[string]interface{}{"error": err})
		return
	}

	cs.audit.Info("consumer", "Document analysed", map[string]interface{}{
		"analysis_id":   payload.AnalysisID,
		"filename":      payload.Filename,
		"decision":      payload.Decision,
		"document_type": payload.DocumentType,
		"duration_ms":   payload.DurationMs,
	})

	if cs.analysisRepo == nil {
		return
	}
	record, err := cs.mapper.ToModel(payload, event.Timestamp())
	if err != nil {
		cs.logger.Error("consumer", "Failed to map analysis record", map[string]interface{}{"error": err})
		return
	}
	if err := cs.analysisRepo.Create(ctx, record); err != nil {
		cs.logger.Error("consumer", "Failed to persist analysis record", map[string]interface{}{
			"analysis_id": payload.AnalysisID,
			"error":       err,
		})
	}
}
