// Package pubsub adapts Pub/Sub CloudEvents to the preference use case.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
	prefuc "github.com/kailas-cloud/pilotprefs/internal/usecase/preference"
)

// CallerAttribute carries the publisher-asserted caller id.
const CallerAttribute = "callerId"

// MessagePublishedData is the payload of a google.cloud.pubsub.topic.v1.messagePublished event.
type MessagePublishedData struct {
	Message Message `json:"message"`
}

// Message is a single Pub/Sub message.
type Message struct {
	ID         string            `json:"messageId"`
	Data       []byte            `json:"data"`
	Attributes map[string]string `json:"attributes"`
}

// PreferenceUpdater is the slice of the preference service the event path needs.
type PreferenceUpdater interface {
	Update(ctx context.Context, caller domain.Caller, req prefuc.Request) (prefuc.Result, error)
}

// Handler processes preference update events.
type Handler struct {
	prefs  PreferenceUpdater
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(prefs PreferenceUpdater, logger *zap.Logger) *Handler {
	return &Handler{prefs: prefs, logger: logger}
}

// Handle runs one event through the preference service.
// Requests that can never succeed are logged and acked. Store failures are returned
// so the platform redelivers; the union write makes redelivery harmless.
func (h *Handler) Handle(ctx context.Context, e event.Event) error {
	var msg MessagePublishedData
	if err := e.DataAs(&msg); err != nil {
		h.logger.Warn("dropping undecodable event", zap.String("event_id", e.ID()), zap.Error(err))
		return nil
	}

	log := h.logger.With(
		zap.String("event_id", e.ID()),
		zap.String("message_id", msg.Message.ID),
	)

	var req prefuc.Request
	if err := json.Unmarshal(msg.Message.Data, &req); err != nil {
		log.Warn("dropping malformed message", zap.Error(err))
		return nil
	}

	caller := domain.Caller{UID: msg.Message.Attributes[CallerAttribute]}
	_, err := h.prefs.Update(ctx, caller, req)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInternal):
		log.Error("preference update failed", zap.Error(err))
		return fmt.Errorf("update preferences: %w", err)
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidArgument):
		log.Warn("dropping rejected message", zap.Error(err))
		return nil
	default:
		log.Error("preference update failed", zap.Error(err))
		return fmt.Errorf("update preferences: %w", err)
	}
}
