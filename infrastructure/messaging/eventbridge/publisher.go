package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/events"
)

const eventSource = "openclique.matching"

// putEventsBatchLimit is the PutEvents hard cap per request.
const putEventsBatchLimit = 10

// EventBridgePublisher implements ports.EventBus on AWS EventBridge.
// Subscriptions are in-process: handlers registered here run after a
// successful publish, which covers the local read-model updates the
// service needs without a second consumer stack.
type EventBridgePublisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger

	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
}

// NewEventBridgePublisher creates a publisher for the named bus
func NewEventBridgePublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventBus {
	return &EventBridgePublisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
		handlers:     make(map[string][]ports.EventHandler),
	}
}

// Publish sends a single event
func (p *EventBridgePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events in PutEvents-sized chunks
func (p *EventBridgePublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	for start := 0; start < len(batch); start += putEventsBatchLimit {
		end := start + putEventsBatchLimit
		if end > len(batch) {
			end = len(batch)
		}

		entries := make([]types.PutEventsRequestEntry, 0, end-start)
		for _, event := range batch[start:end] {
			detail, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
			}
			entries = append(entries, types.PutEventsRequestEntry{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(event.GetEventType()),
				Detail:       aws.String(string(detail)),
			})
		}

		out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("failed to put events: %w", err)
		}
		if out.FailedEntryCount > 0 {
			for _, entry := range out.Entries {
				if entry.ErrorCode != nil {
					p.logger.Error("EventBridge rejected entry",
						zap.String("error_code", aws.ToString(entry.ErrorCode)),
						zap.String("error_message", aws.ToString(entry.ErrorMessage)),
					)
				}
			}
			return fmt.Errorf("eventbridge rejected %d of %d entries", out.FailedEntryCount, len(entries))
		}
	}

	p.dispatchLocal(ctx, batch)

	p.logger.Debug("Published domain events",
		zap.Int("count", len(batch)),
		zap.String("bus", p.eventBusName),
	)
	return nil
}

// Subscribe registers an in-process handler for an event type
func (p *EventBridgePublisher) Subscribe(eventType string, handler ports.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[eventType] = append(p.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes a previously registered handler
func (p *EventBridgePublisher) Unsubscribe(eventType string, handler ports.EventHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	registered := p.handlers[eventType]
	for i, h := range registered {
		if h == handler {
			p.handlers[eventType] = append(registered[:i], registered[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not registered for event type %s", eventType)
}

func (p *EventBridgePublisher) dispatchLocal(ctx context.Context, batch []events.DomainEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, event := range batch {
		for _, handler := range p.handlers[event.GetEventType()] {
			if !handler.CanHandle(event.GetEventType()) {
				continue
			}
			if err := handler.Handle(ctx, event); err != nil {
				p.logger.Warn("Local event handler failed",
					zap.String("event_type", event.GetEventType()),
					zap.Error(err),
				)
			}
		}
	}
}
