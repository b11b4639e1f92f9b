package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Event is the webhook envelope. Amounts are kobo.
type Event struct {
	Event string    `json:"event"` // e.g. charge.success
	Data  EventData `json:"data"`
}

type EventData struct {
	ID        int64                  `json:"id"`
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	Channel   string                 `json:"channel"`
	Status    string                 `json:"status"`
	PaidAt    string                 `json:"paid_at"`
	Customer  Customer               `json:"customer"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type Customer struct {
	Email string `json:"email"`
}

// UserID pulls the user_id we attach to checkout metadata, if present.
func (d *EventData) UserID() (uint, bool) {
	v, ok := d.Metadata["user_id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return uint(n), n > 0
	case string:
		var id uint
		if _, err := fmt.Sscanf(n, "%d", &id); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// Client calls the Paystack REST API for transaction verification.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyResponse struct {
	Status  bool      `json:"status"`
	Message string    `json:"message"`
	Data    EventData `json:"data"`
}

// VerifyTransaction confirms a charge reference directly with Paystack.
// Used when a client claims a payment the webhook has not delivered yet.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*EventData, error) {
	u := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify: unexpected status %d", resp.StatusCode)
	}
	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, err
	}
	if !vr.Status {
		return nil, fmt.Errorf("paystack verify: %s", vr.Message)
	}
	return &vr.Data, nil
}
