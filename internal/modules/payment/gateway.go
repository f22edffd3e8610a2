package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/e-terminus/core/internal/config"
)

// InitiateResult is the gateway's answer to a charge request.
type InitiateResult struct {
	Success     bool            `json:"success"`
	ReferenceNo string          `json:"reference_no"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Gateway talks to the external mobile-money gateway. The final payment
// outcome arrives asynchronously on the callback endpoint.
type Gateway struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewGateway(cfg config.PaymentConfig) *Gateway {
	return &Gateway{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type initiatePayload struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method,omitempty"`
}

// InitiatePayment asks the gateway to start collecting the amount under the
// given reference.
func (g *Gateway) InitiatePayment(ctx context.Context, reference string, amount float64, method string) (*InitiateResult, error) {
	if g.endpoint == "" {
		return nil, fmt.Errorf("payment gateway endpoint not configured")
	}

	b, err := json.Marshal(initiatePayload{Reference: reference, Amount: amount, Method: method})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/payments", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	result := InitiateResult{ReferenceNo: reference, Raw: raw}
	var body struct {
		Success     bool   `json:"success"`
		ReferenceNo string `json:"reference_no"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		result.Success = body.Success
		if body.ReferenceNo != "" {
			result.ReferenceNo = body.ReferenceNo
		}
	}
	return &result, nil
}
