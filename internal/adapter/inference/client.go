// Package inference is the HTTP client for the hosted binding-affinity
// model. The service owns no prediction logic; requests are forwarded as-is
// and the upstream response is relayed without interpretation.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdoir/affinity-server/internal/domain"
)

// Client forwards prediction requests to the inference endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// New creates a Client against the given endpoint with a request timeout.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

type predictRequest struct {
	Smiles          string `json:"smiles"`
	ProteinSequence string `json:"protein_sequence"`
}

// Predict posts the molecule/protein pair upstream and returns the response
// status and body verbatim. Only transport-level failures are errors.
func (c *Client) Predict(ctx context.Context, smiles, proteinSequence string) (*domain.Prediction, error) {
	payload, err := json.Marshal(predictRequest{Smiles: smiles, ProteinSequence: proteinSequence})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}

	return &domain.Prediction{Status: resp.StatusCode, Body: body}, nil
}
