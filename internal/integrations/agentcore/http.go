package agentcore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultLocalAgentURL = "http://localhost:8080"

// HTTPStatusError captures non-2xx agent responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("agentcore: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// HTTPInvoker talks to an agent served over plain HTTP, typically a local
// container exposing the runtime contract on /invocations.
type HTTPInvoker struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*HTTPInvoker)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(h *HTTPInvoker) {
		h.httpClient = httpClient
	}
}

func NewHTTPInvoker(baseURL string, opts ...Option) (*HTTPInvoker, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultLocalAgentURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("agentcore: invalid agent URL %q", baseURL)
	}
	h := &HTTPInvoker{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient == nil {
		return nil, errors.New("agentcore: http client must not be nil")
	}
	return h, nil
}

func (h *HTTPInvoker) Invoke(ctx context.Context, sessionID string, payload []byte) ([]byte, error) {
	url := h.baseURL + "/invocations"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Amzn-Bedrock-AgentCore-Runtime-Session-Id", sessionID)

	res, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
