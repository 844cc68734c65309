package agentcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const requestTypeRecommendation = "recommendation"

// HistoryRecord is one drinking record as the agent expects it.
type HistoryRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Brand       string `json:"brand"`
	Impression  string `json:"impression"`
	Rating      string `json:"rating"`
	RatingLabel string `json:"rating_label,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Request is the recommendation payload sent to the agent runtime.
type Request struct {
	Type               string          `json:"type"`
	UserID             string          `json:"user_id"`
	DrinkingRecords    []HistoryRecord `json:"drinking_records"`
	MenuBrands         []string        `json:"menu_brands"`
	MaxRecommendations int             `json:"max_recommendations"`
}

// Recommendation mirrors the agent's recommendation item.
type Recommendation struct {
	Brand              string `json:"brand"`
	BrandDescription   string `json:"brand_description"`
	ExpectedExperience string `json:"expected_experience"`
	Category           string `json:"category,omitempty"`
	MatchScore         int    `json:"match_score"`
}

// Result is the agent's successful answer.
type Result struct {
	BestRecommend   *Recommendation  `json:"best_recommend"`
	Recommendations []Recommendation `json:"recommendations"`
	Metadata        json.RawMessage  `json:"metadata,omitempty"`
}

type envelope struct {
	Result *Result `json:"result"`
	Error  string  `json:"error"`
}

// AgentError is a failure reported by the agent inside a well-formed response.
type AgentError struct {
	Message string
}

func (e *AgentError) Error() string {
	return "agentcore: agent returned error: " + e.Message
}

// Invoker sends one payload to an agent runtime and returns the raw response.
type Invoker interface {
	Invoke(ctx context.Context, sessionID string, payload []byte) ([]byte, error)
}

// Client builds recommendation payloads and decodes agent responses.
type Client struct {
	invoker   Invoker
	sessionID func(userID string) string
}

// NewClient creates a Client over the given transport.
func NewClient(invoker Invoker) (*Client, error) {
	if invoker == nil {
		return nil, errors.New("agentcore: invoker must not be nil")
	}
	return &Client{invoker: invoker, sessionID: newSessionID}, nil
}

// newSessionID satisfies the runtime's minimum session id length of 33.
func newSessionID(userID string) string {
	return "session-" + userID + "-" + uuid.NewString()
}

// Recommend invokes the agent once. There are no retries.
func (c *Client) Recommend(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Result{}, errors.New("agentcore: user id must not be empty")
	}
	req.Type = requestTypeRecommendation
	if req.DrinkingRecords == nil {
		req.DrinkingRecords = []HistoryRecord{}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("agentcore: marshal request: %w", err)
	}

	raw, err := c.invoker.Invoke(ctx, c.sessionID(req.UserID), payload)
	if err != nil {
		return Result{}, fmt.Errorf("agentcore: invoke: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{}, fmt.Errorf("agentcore: decode response: %w", err)
	}
	if env.Error != "" {
		return Result{}, &AgentError{Message: env.Error}
	}
	if env.Result == nil {
		return Result{}, errors.New("agentcore: response has no result")
	}
	return *env.Result, nil
}
