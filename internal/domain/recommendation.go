package domain

// MaxMenuItemLen bounds a single menu brand.
const MaxMenuItemLen = 64

// RecommendationResult is one suggested brand.
type RecommendationResult struct {
	Brand              string `json:"brand"`
	BrandDescription   string `json:"brand_description"`
	ExpectedExperience string `json:"expected_experience"`
	Category           string `json:"category,omitempty"`
	MatchScore         int    `json:"match_score"`
}

// RecommendResponse is the body returned by the recommend endpoint.
type RecommendResponse struct {
	BestRecommend   *RecommendationResult  `json:"best_recommend"`
	Recommendations []RecommendationResult `json:"recommendations"`
}
