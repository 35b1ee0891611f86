package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

const EventServiceRequestCreated = "service_request.created"

// Publisher delivers a JSON payload to the back office.
type Publisher interface {
	Publish(ctx context.Context, body []byte) (string, error)
}

type serviceRequestEvent struct {
	Event      string                `json:"event"`
	OccurredAt time.Time             `json:"occurred_at"`
	Request    storex.ServiceRequest `json:"request"`
}

// PublishNotifier sends a service_request.created event through a Publisher.
type PublishNotifier struct {
	publisher Publisher
	now       func() time.Time
}

var _ Notifier = (*PublishNotifier)(nil)

func NewPublishNotifier(publisher Publisher) *PublishNotifier {
	return &PublishNotifier{publisher: publisher, now: time.Now}
}

func (n *PublishNotifier) ServiceRequestCreated(ctx context.Context, req storex.ServiceRequest) error {
	payload, err := json.Marshal(serviceRequestEvent{
		Event:      EventServiceRequestCreated,
		OccurredAt: n.now().UTC(),
		Request:    req,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", EventServiceRequestCreated, err)
	}

	messageID, err := n.publisher.Publish(ctx, payload)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().
		Int64("service_request_id", req.ID).
		Str("message_id", messageID).
		Msg("tool: service request published")
	return nil
}
