// Package generator implements the HTTP client side of the external
// template-generation RPC contract (§6, §4.7). It is deliberately thin:
// retry, batching, and concurrency limiting are the dispatcher's job
// (internal/pipeline); this package only knows how to make one request.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/moolen/templatematch/internal/logging"
	"github.com/moolen/templatematch/internal/pipeline"
)

// Client talks to the external template-generation service. Its
// transport is tuned the same way the store client's is (internal/store):
// a sized connection pool and long keep-alives, since both clients serve
// background workers issuing many sequential requests rather than a
// single one-shot call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient builds a generator Client against baseURL, bounding each
// request to requestTimeout.
func NewClient(baseURL string, requestTimeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		logger: logging.GetLogger("generator.client"),
	}
}

// Generate sends req to the generator and parses its reply. Any
// non-success status or malformed body is returned as an error; the
// dispatcher (internal/pipeline) decides whether that's retryable.
func (c *Client) Generate(ctx context.Context, req pipeline.GenerationRequest) (pipeline.GenerationResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return pipeline.GenerationResponse{}, fmt.Errorf("marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return pipeline.GenerationResponse{}, fmt.Errorf("create generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pipeline.GenerationResponse{}, fmt.Errorf("execute generation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pipeline.GenerationResponse{}, fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorWithFields("generation request failed",
			logging.Field("status", resp.StatusCode), logging.Field("body", string(body)))
		return pipeline.GenerationResponse{}, fmt.Errorf("generation request failed (status %d)", resp.StatusCode)
	}

	var out pipeline.GenerationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return pipeline.GenerationResponse{}, fmt.Errorf("parse generation response: %w", err)
	}
	return out, nil
}
