package usecase

import (
	"context"
	"errors"

	"sake-recommendation/internal/domain"
	"sake-recommendation/internal/integrations/agentcore"
	"sake-recommendation/internal/transform"
	"sake-recommendation/internal/validation"
)

const (
	defaultHistoryLimit       = 100
	defaultMaxRecommendations = 10
)

type HistoryReader interface {
	GetRecentRecords(ctx context.Context, userID string, limit int) ([]domain.StoredRecord, error)
}

type Recommender interface {
	Recommend(ctx context.Context, req agentcore.Request) (agentcore.Result, error)
}

// RecommendService fetches the caller's history and asks the agent for
// recommendations from a menu. Each step runs once; failures are not retried.
type RecommendService struct {
	history      HistoryReader
	agent        Recommender
	historyLimit int
	maxResults   int
}

func NewRecommendService(h HistoryReader, agent Recommender, historyLimit, maxResults int) (*RecommendService, error) {
	if h == nil {
		return nil, errors.New("usecase: history reader must not be nil")
	}
	if agent == nil {
		return nil, errors.New("usecase: recommender must not be nil")
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	if maxResults <= 0 {
		maxResults = defaultMaxRecommendations
	}
	return &RecommendService{
		history:      h,
		agent:        agent,
		historyLimit: historyLimit,
		maxResults:   maxResults,
	}, nil
}

func (s *RecommendService) Recommend(ctx context.Context, userID string, body any) (domain.RecommendResponse, error) {
	if userID == "" {
		return domain.RecommendResponse{}, newError(ErrorUnauthorized, "missing_user", MsgUnauthorized, nil)
	}
	menu, err := validation.RecommendRequest(body)
	if err != nil {
		return domain.RecommendResponse{}, validationError(err)
	}

	records, err := s.history.GetRecentRecords(ctx, userID, s.historyLimit)
	if err != nil {
		return domain.RecommendResponse{}, newError(ErrorAgent, "history_fetch_error", msgHistoryFailed, err)
	}

	res, err := s.agent.Recommend(ctx, agentcore.Request{
		UserID:             userID,
		DrinkingRecords:    transform.ToAgentHistory(records),
		MenuBrands:         menu,
		MaxRecommendations: s.maxResults,
	})
	if err != nil {
		return domain.RecommendResponse{}, newError(ErrorAgent, "agent_invoke_error", MsgAgent, err)
	}

	out := transform.ToRecommendResponse(res)
	if len(out.Recommendations) > s.maxResults {
		out.Recommendations = out.Recommendations[:s.maxResults]
	}
	return out, nil
}
