package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// SignatureHeader carries the Paddle webhook signature.
const SignatureHeader = "Paddle-Signature"

const maxPayloadBytes = 1 << 20

// EventParser verifies and decodes a webhook request.
type EventParser interface {
	ParseRequest(r *http.Request) (Event, error)
}

// PaddleWebhooks verifies Paddle webhook signatures and decodes subscription events.
type PaddleWebhooks struct {
	verifier *paddle.WebhookVerifier
}

var _ EventParser = (*PaddleWebhooks)(nil)

// NewPaddleWebhooks creates a parser for the endpoint secret.
func NewPaddleWebhooks(secret string) (*PaddleWebhooks, error) {
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}
	return &PaddleWebhooks{verifier: paddle.NewWebhookVerifier(secret)}, nil
}

// Parse verifies payload against signature and decodes it.
func (p *PaddleWebhooks) Parse(ctx context.Context, payload []byte, signature string) (Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return Event{}, errors.Join(ErrInvalidPayload, err)
	}
	req.Header.Set(SignatureHeader, signature)
	return p.ParseRequest(req)
}

// ParseRequest verifies the request signature and decodes its body.
func (p *PaddleWebhooks) ParseRequest(r *http.Request) (Event, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxPayloadBytes)

	valid, err := p.verifier.Verify(r)
	if err != nil {
		return Event{}, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return Event{}, ErrWebhookVerificationFailed
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Event{}, errors.Join(ErrInvalidPayload, err)
	}
	return decodeEvent(body)
}

type paddleNotification struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       struct {
		ID         string         `json:"id"`
		Status     string         `json:"status"`
		CustomData map[string]any `json:"custom_data"`
		Items      []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"items"`
	} `json:"data"`
}

func decodeEvent(body []byte) (Event, error) {
	var n paddleNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return Event{}, errors.Join(ErrInvalidPayload, err)
	}
	if n.EventType == "" {
		return Event{}, errors.Join(ErrInvalidPayload, errors.New("event_type is empty"))
	}

	ev := Event{
		ID:         n.EventID,
		Type:       EventType(n.EventType),
		OccurredAt: n.OccurredAt,
	}
	if !ev.Type.IsSubscription() {
		return ev, nil
	}

	ev.SubscriptionID = n.Data.ID
	ev.Status = Status(n.Data.Status)
	if org, ok := n.Data.CustomData[CustomDataOrganizationKey].(string); ok {
		ev.OrganizationID = org
	}
	if len(n.Data.Items) > 0 {
		ev.PriceID = n.Data.Items[0].Price.ID
	}
	return ev, nil
}
