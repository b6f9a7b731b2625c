// Package connector talks to the bank-specific execution backend over
// HTTP. One connector instance exists per payment variant; all of them
// share a single underlying client.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/config"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.ConnectorConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func sendRequest[Req any, Resp any](c *Client, ctx context.Context, path string, reqBody *Req) (*Resp, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &spi.Failure{Status: spi.TechnicalFailure, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var failureResp failureResponse
		if err := json.Unmarshal(body, &failureResp); err != nil || failureResp.FailureStatus == "" {
			return nil, &spi.Failure{
				Status:  spi.TechnicalFailure,
				Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
			}
		}
		return nil, &spi.Failure{
			Status:  spi.FailureStatus(failureResp.FailureStatus),
			Message: failureResp.Message,
		}
	}

	var backendResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&backendResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &backendResp, nil
}
