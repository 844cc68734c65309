// Package transform converts between the API, storage and agent shapes
// of drinking records and recommendations.
package transform

import (
	"time"

	"sake-recommendation/internal/domain"
	"sake-recommendation/internal/integrations/agentcore"
	"sake-recommendation/internal/validation"
)

// ToAPI maps a table item to its API representation.
func ToAPI(r domain.StoredRecord) domain.DrinkingRecord {
	return domain.DrinkingRecord{
		ID:            r.RecordID,
		UserID:        r.UserID,
		Brand:         r.SakeName,
		Impression:    r.Impression,
		Rating:        r.Rating,
		LabelImageKey: r.LabelImageKey,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToAPIList never returns nil so empty lists encode as [].
func ToAPIList(records []domain.StoredRecord) []domain.DrinkingRecord {
	out := make([]domain.DrinkingRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ToAPI(r))
	}
	return out
}

// ToStored maps a partial API record to a partial table item. Only present
// fields are carried. updated_at is always stamped from now.
func ToStored(p domain.RecordPatch, userID, recordID string, now time.Time) domain.StoredPatch {
	return domain.StoredPatch{
		UserID:        userID,
		RecordID:      recordID,
		SakeName:      p.Brand,
		Impression:    p.Impression,
		Rating:        p.Rating,
		LabelImageKey: p.LabelImageKey,
		UpdatedAt:     domain.FormatTimestamp(now),
	}
}

// NewStored builds the full item for a newly created record.
func NewStored(in validation.NewRecord, userID, recordID string, now time.Time) domain.StoredRecord {
	ts := domain.FormatTimestamp(now)
	return domain.StoredRecord{
		UserID:     userID,
		RecordID:   recordID,
		SakeName:   in.Brand,
		Impression: in.Impression,
		Rating:     in.Rating,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

// ToAgentHistory maps stored records to the agent's history entries.
// The rating is sent as its code; the label is informational.
func ToAgentHistory(records []domain.StoredRecord) []agentcore.HistoryRecord {
	out := make([]agentcore.HistoryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, agentcore.HistoryRecord{
			ID:          r.RecordID,
			UserID:      r.UserID,
			Brand:       r.SakeName,
			Impression:  r.Impression,
			Rating:      string(r.Rating),
			RatingLabel: r.Rating.Label(),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

// ToRecommendResponse reshapes the agent result for API callers. A null
// best recommendation and an empty list pass through unchanged.
func ToRecommendResponse(res agentcore.Result) domain.RecommendResponse {
	out := domain.RecommendResponse{
		Recommendations: make([]domain.RecommendationResult, 0, len(res.Recommendations)),
	}
	if res.BestRecommend != nil {
		best := toResult(*res.BestRecommend)
		out.BestRecommend = &best
	}
	for _, r := range res.Recommendations {
		out.Recommendations = append(out.Recommendations, toResult(r))
	}
	return out
}

func toResult(r agentcore.Recommendation) domain.RecommendationResult {
	return domain.RecommendationResult{
		Brand:              r.Brand,
		BrandDescription:   r.BrandDescription,
		ExpectedExperience: r.ExpectedExperience,
		Category:           r.Category,
		MatchScore:         r.MatchScore,
	}
}
