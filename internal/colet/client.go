package colet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"clt400tt-terminal/internal/metrics"
)

// APIError is returned for every non-2xx backend response. ServerMessage is
// only set when the response body carried an application-level message.
type APIError struct {
	Status        int
	ServerMessage string
}

func (e *APIError) Error() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// errorBody models the error payload the backend uses on rejections.
type errorBody struct {
	Erro     string `json:"erro"`
	Mensagem string `json:"mensagem"`
}

// Client is a thin JSON client for the Colet backend REST API. It performs no
// retries and no deduplication; callers decide how failures are surfaced.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "colet").Logger(),
	}
}

// Get issues a GET request and decodes the response into out (skipped when out
// is nil or the body is empty).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ColetRequests.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ColetRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			if eb.Erro != "" {
				apiErr.ServerMessage = eb.Erro
			} else if eb.Mensagem != "" {
				apiErr.ServerMessage = eb.Mensagem
			}
		}
		c.log.Warn().Str("method", method).Str("path", path).
			Int("status", resp.StatusCode).Msg("backend rejected request")
		return apiErr
	}

	// Empty successes (204, no body) resolve without attempting a decode.
	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal api response: %w", err)
	}
	return nil
}
