package transform

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sake-recommendation/internal/domain"
	"sake-recommendation/internal/integrations/agentcore"
	"sake-recommendation/internal/validation"
)

func strPtr(s string) *string { return &s }

func ratingPtr(r domain.Rating) *domain.Rating { return &r }

// applyPatch materialises a stored patch the way an UpdateItem would.
func applyPatch(base domain.StoredRecord, p domain.StoredPatch) domain.StoredRecord {
	base.UserID = p.UserID
	if p.RecordID != "" {
		base.RecordID = p.RecordID
	}
	if p.SakeName != nil {
		base.SakeName = *p.SakeName
	}
	if p.Impression != nil {
		base.Impression = *p.Impression
	}
	if p.Rating != nil {
		base.Rating = *p.Rating
	}
	if p.LabelImageKey != nil {
		base.LabelImageKey = *p.LabelImageKey
	}
	base.UpdatedAt = p.UpdatedAt
	return base
}

func TestToAPI_MapsEveryField(t *testing.T) {
	got := ToAPI(domain.StoredRecord{
		UserID:        "u1",
		RecordID:      "r1",
		SakeName:      "獺祭",
		Impression:    "華やか",
		Rating:        domain.RatingGood,
		LabelImageKey: "labels/u1/r1.jpg",
		CreatedAt:     "2024-01-01T00:00:00.000Z",
		UpdatedAt:     "2024-01-02T00:00:00.000Z",
	})
	require.Equal(t, domain.DrinkingRecord{
		ID:            "r1",
		UserID:        "u1",
		Brand:         "獺祭",
		Impression:    "華やか",
		Rating:        domain.RatingGood,
		LabelImageKey: "labels/u1/r1.jpg",
		CreatedAt:     "2024-01-01T00:00:00.000Z",
		UpdatedAt:     "2024-01-02T00:00:00.000Z",
	}, got)
}

func TestToAPI_OmitsEmptyLabelKey(t *testing.T) {
	raw, err := json.Marshal(ToAPI(domain.StoredRecord{UserID: "u", RecordID: "r"}))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "labelImageKey")
}

func TestToAPIList_EmptyIsNotNil(t *testing.T) {
	out := ToAPIList(nil)
	require.NotNil(t, out)
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestToStored_OnlyPresentFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := ToStored(domain.RecordPatch{Rating: ratingPtr(domain.RatingBad)}, "u1", "r1", now)

	require.Equal(t, "u1", p.UserID)
	require.Equal(t, "r1", p.RecordID)
	require.Nil(t, p.SakeName)
	require.Nil(t, p.Impression)
	require.Nil(t, p.LabelImageKey)
	require.Equal(t, domain.RatingBad, *p.Rating)
	require.Equal(t, "2024-05-01T12:00:00.000Z", p.UpdatedAt)
}

func TestToStored_WithoutRecordID(t *testing.T) {
	p := ToStored(domain.RecordPatch{Brand: strPtr("新政")}, "u1", "", time.Now())
	require.Equal(t, "", p.RecordID)
	require.Equal(t, "新政", *p.SakeName)
	require.NotEmpty(t, p.UpdatedAt)
}

func TestRoundTrip_PreservesIdentityAndFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	patch := domain.RecordPatch{
		Brand:      strPtr("十四代"),
		Impression: strPtr("甘みと香り"),
		Rating:     ratingPtr(domain.RatingVeryGood),
	}

	got := ToAPI(applyPatch(domain.StoredRecord{}, ToStored(patch, "owner-1", "rec-1", now)))

	require.Equal(t, "rec-1", got.ID)
	require.Equal(t, "owner-1", got.UserID)
	require.Equal(t, "十四代", got.Brand)
	require.Equal(t, "甘みと香り", got.Impression)
	require.Equal(t, domain.RatingVeryGood, got.Rating)
}

func TestNewStored_StampsBothTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := NewStored(validation.NewRecord{Brand: "獺祭", Impression: "x", Rating: domain.RatingGood}, "u1", "r1", now)
	require.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	require.Equal(t, "2024-05-01T12:00:00.000Z", rec.CreatedAt)
	require.Equal(t, "獺祭", rec.SakeName)
}

func TestToAgentHistory(t *testing.T) {
	got := ToAgentHistory([]domain.StoredRecord{{
		UserID: "u1", RecordID: "r1", SakeName: "獺祭", Impression: "x", Rating: domain.RatingVeryBad,
		CreatedAt: "c", UpdatedAt: "u",
	}})
	require.Equal(t, []agentcore.HistoryRecord{{
		ID: "r1", UserID: "u1", Brand: "獺祭", Impression: "x", Rating: "VERY_BAD", RatingLabel: "非常に合わない",
		CreatedAt: "c", UpdatedAt: "u",
	}}, got)
	require.NotNil(t, ToAgentHistory(nil))
}

func TestToRecommendResponse_PassesThroughEmpty(t *testing.T) {
	out := ToRecommendResponse(agentcore.Result{})
	require.Nil(t, out.BestRecommend)
	require.NotNil(t, out.Recommendations)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, `{"best_recommend":null,"recommendations":[]}`, string(raw))
}

func TestToRecommendResponse_MapsResults(t *testing.T) {
	out := ToRecommendResponse(agentcore.Result{
		BestRecommend: &agentcore.Recommendation{Brand: "獺祭", BrandDescription: "d", ExpectedExperience: "e", Category: "吟醸", MatchScore: 95},
		Recommendations: []agentcore.Recommendation{
			{Brand: "久保田", BrandDescription: "d2", ExpectedExperience: "e2", MatchScore: 60},
		},
	})
	require.Equal(t, &domain.RecommendationResult{Brand: "獺祭", BrandDescription: "d", ExpectedExperience: "e", Category: "吟醸", MatchScore: 95}, out.BestRecommend)
	require.Equal(t, []domain.RecommendationResult{{Brand: "久保田", BrandDescription: "d2", ExpectedExperience: "e2", MatchScore: 60}}, out.Recommendations)
}
