package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/LivrariumProject/back-end/util/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type httpGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP talks to an external charge gateway over REST.
func NewHTTP(baseURL, apiKey string) Gateway {
	return &httpGateway{baseURL: baseURL, apiKey: apiKey, client: httpx.Client()}
}

func (g *httpGateway) Charge(ctx context.Context, req ChargeReq) (*ChargeResp, error) {
	body, err := json.Marshal(map[string]any{
		"external_id":    req.ExternalID,
		"amount":         req.Amount,
		"payment_method": string(req.Method),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(g.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway charge failed: %s", resp.Status)
	}

	var out struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.TransactionID == "" {
		return nil, errors.New("gateway: empty transaction id")
	}
	return &ChargeResp{TransactionID: out.TransactionID}, nil
}
