package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
)

const triggerPath = "/v1/events/trigger"

// NovuEmitter triggers Novu workflow events over plain HTTP. Emission is
// fire-and-forget: delivery runs on its own goroutine with its own deadline
// and failures are logged, never returned, so the purchase and winner paths
// cannot be failed by the notification channel.
type NovuEmitter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNovuEmitter(apiKey, baseURL string) *NovuEmitter {
	if baseURL == "" {
		baseURL = "https://api.novu.co"
	}
	return &NovuEmitter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type triggerRequest struct {
	Name    string                 `json:"name"`
	To      triggerRecipient       `json:"to"`
	Payload map[string]interface{} `json:"payload"`
}

type triggerRecipient struct {
	SubscriberID string `json:"subscriberId"`
}

func (n *NovuEmitter) Emit(ctx context.Context, kind string, userID uuid.UUID, payload map[string]interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := n.trigger(ctx, kind, userID, payload); err != nil {
			logger.Warningf("event %s for user %s not delivered: %v", kind, userID, err)
		}
	}()
}

func (n *NovuEmitter) trigger(ctx context.Context, kind string, userID uuid.UUID, payload map[string]interface{}) error {
	body, err := json.Marshal(triggerRequest{
		Name:    kind,
		To:      triggerRecipient{SubscriberID: userID.String()},
		Payload: payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+triggerPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("novu responded with %s", resp.Status)
	}
	return nil
}
