package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fleetwash/config"
	"fleetwash/pkg/logger"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	BROADCAST_CHANNEL Channel = "broadcast"
	LEDGER_CHANNEL    Channel = "ledger"
	APPROVAL_CHANNEL  Channel = "approvals"
)

type MessageType string

const (
	PING               MessageType = "ping"
	PONG               MessageType = "pong"
	ERROR              MessageType = "error"
	ENTRY_CREATED      MessageType = "entry_created"
	ENTRY_REMOVED      MessageType = "entry_removed"
	ENTRY_RESTORED     MessageType = "entry_restored"
	APPROVAL_SUBMITTED MessageType = "approval_submitted"
	APPROVAL_RESOLVED  MessageType = "approval_resolved"
	CUTOFF_CHANGED     MessageType = "cutoff_changed"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// EventBus fans mutation notifications out over valkey pubsub so every
// instance can refresh connected boards. Publishing is best effort from the
// caller's point of view; a mutation never fails because its event did.
type EventBus struct {
	client   valkey.Client
	logger   logger.Logger
	config   config.Config
	handlers map[Channel][]EventHandler
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(client valkey.Client, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:   client,
		logger:   logger.New("EventBus"),
		config:   config,
		handlers: make(map[Channel][]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	// Without a valkey client the bus runs local-only; handlers on this
	// instance still fire.
	if eb.client == nil {
		eb.notifyLocalHandlers(channel, event)
		return nil
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel",
			channel,
			"eventID",
			event.ID,
		)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)

	// Also notify local handlers
	eb.notifyLocalHandlers(channel, event)

	return nil
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	go eb.listenToChannel(channel)

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers, exists := eb.handlers[channel]
	eb.mutex.RUnlock()

	if !exists || len(handlers) == 0 {
		return
	}

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er(
					"handler failed",
					err,
					"channel",
					channel,
					"eventID",
					event.ID,
					"handlerIndex",
					handlerIndex,
				)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")

	if eb.client == nil {
		return
	}

	ctx, cancel := context.WithCancel(eb.ctx)
	defer cancel()

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel, "message", msg.Message)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}

// PublishEntryEvent announces a ledger mutation for one (location, day)
// slot so boards showing that day can refetch.
func (eb *EventBus) PublishEntryEvent(
	eventType MessageType,
	entryID, vehicleID, locationID uuid.UUID,
	serviceDate string,
) error {
	return eb.Publish(LEDGER_CHANNEL, Event{
		Type: eventType,
		Data: map[string]any{
			"entryId":     entryID.String(),
			"vehicleId":   vehicleID.String(),
			"locationId":  locationID.String(),
			"serviceDate": serviceDate,
		},
	})
}

// PublishApprovalEvent targets the user who should react: the manager for
// a new request, the employee for a verdict.
func (eb *EventBus) PublishApprovalEvent(
	eventType MessageType,
	requestID uuid.UUID,
	recipientID uuid.UUID,
	status string,
) error {
	return eb.Publish(APPROVAL_CHANNEL, Event{
		Type:   eventType,
		UserID: &recipientID,
		Data: map[string]any{
			"requestId": requestID.String(),
			"status":    status,
		},
	})
}

// PublishCutoffChanged tells every connected board which days just locked
// or unlocked.
func (eb *EventBus) PublishCutoffChanged(newDate string, actorID uuid.UUID) error {
	return eb.Publish(BROADCAST_CHANNEL, Event{
		Type: CUTOFF_CHANGED,
		Data: map[string]any{
			"cutoffDate": newDate,
			"actorId":    actorID.String(),
		},
	})
}
