// Package store implements the HTTP client side of the columnar store
// write contract (§4.8, §6): batched bulk inserts with at-least-once
// semantics. The store itself — schema, retention, partitioning — is an
// external collaborator; this package only knows how to ship a batch.
package store

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
)

// Record is one row destined for the wide logs table keyed by
// (org, timestamp, template_id) (§4.8 Store schema). TemplateID is nil
// when the line had no match.
type Record struct {
	Timestamp  time.Time         `json:"timestamp"`
	Org        string            `json:"org"`
	Service    string            `json:"service,omitempty"`
	Host       string            `json:"host,omitempty"`
	Level      string            `json:"level"`
	Message    string            `json:"message"`
	TemplateID *uint64           `json:"template_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Client writes batches of Records to the external columnar store.
// Transport tuning mirrors internal/generator.Client: both are
// background-worker HTTP clients issuing many sequential bulk requests,
// so both want a sized keep-alive pool rather than per-request dials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient builds a store Client against baseURL, bounding each write
// to writeTimeout.
func NewClient(baseURL string, writeTimeout time.Duration) *Client {
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
			Timeout:   writeTimeout,
		},
		logger: logging.GetLogger("store.client"),
	}
}

// WriteBatch bulk-inserts records in a single request. Callers retry
// the whole batch on failure (§4.8's at-least-once semantics): a
// partial commit on the store side followed by a retry may duplicate
// rows, which the store schema's key is expected to tolerate or
// downstream dedup is expected to absorb.
func (c *Client) WriteBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal store batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/insert/jsonline", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create store write request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute store write: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read store write response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorWithFields("store write failed",
			logging.Field("status", resp.StatusCode), logging.Field("body", string(body)))
		return fmt.Errorf("store write failed (status %d)", resp.StatusCode)
	}

	c.logger.Debug("wrote %d records to store", len(records))
	return nil
}
