// Package validation checks decoded JSON request bodies before they reach
// storage or the recommendation agent. Messages are user-facing.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sake-recommendation/internal/domain"
)

const (
	msgInvalidBody       = "リクエストボディが不正です"
	msgMenuRequired      = "menuフィールドが必要です"
	msgMenuNotArray      = "menuは配列である必要があります"
	msgMenuEmpty         = "メニューを入力してください"
	msgMenuItemType      = "menu[%d]は文字列である必要があります"
	msgMenuItemLength    = "銘柄は1文字以上64文字以内である必要があります: %s"
	msgBrandRequired     = "銘柄は必須です"
	msgBrandLength       = "銘柄は1-64文字で入力してください"
	msgImpressionMissing = "感想は必須です"
	msgImpressionLength  = "感想は1-1000文字で入力してください"
	msgRatingInvalid     = "評価が不正です"
	msgLabelImageKey     = "画像キーが不正です"
	msgDateInvalid       = "日付の形式が不正です"
	msgRangeWithoutKey   = "期間指定には銘柄または評価が必要です"
)

var (
	validate = validator.New()

	menuItemRule   = fmt.Sprintf("min=%d,max=%d", domain.BrandMinLen, domain.MaxMenuItemLen)
	brandRule      = fmt.Sprintf("min=%d,max=%d", domain.BrandMinLen, domain.BrandMaxLen)
	impressionRule = fmt.Sprintf("min=%d,max=%d", domain.ImpressionMinLen, domain.ImpressionMaxLen)
	labelKeyRule   = fmt.Sprintf("max=%d", domain.LabelImageKeyMaxLen)
	ratingRule     = "oneof=" + joinRatings()
)

func joinRatings() string {
	codes := make([]string, 0, len(domain.Ratings))
	for _, r := range domain.Ratings {
		codes = append(codes, string(r))
	}
	return strings.Join(codes, " ")
}

// Error is a rejected request. Message is safe to show to the caller.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func fail(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// RecommendRequest returns the menu of a recommend request body.
// The first offending element is reported. An array body counts as an
// object without a menu field.
func RecommendRequest(body any) ([]string, error) {
	var obj map[string]any
	switch b := body.(type) {
	case map[string]any:
		obj = b
	case []any:
	default:
		return nil, fail("body", msgInvalidBody)
	}
	raw, ok := obj["menu"]
	if !ok {
		return nil, fail("menu", msgMenuRequired)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fail("menu", msgMenuNotArray)
	}
	if len(items) == 0 {
		return nil, fail("menu", msgMenuEmpty)
	}

	menu := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fail(fmt.Sprintf("menu[%d]", i), fmt.Sprintf(msgMenuItemType, i))
		}
		if err := validate.Var(s, menuItemRule); err != nil {
			return nil, fail(fmt.Sprintf("menu[%d]", i), fmt.Sprintf(msgMenuItemLength, s))
		}
		menu = append(menu, s)
	}
	return menu, nil
}

// NewRecord is a validated create request.
type NewRecord struct {
	Brand      string
	Impression string
	Rating     domain.Rating
}

// CreateRecord checks brand, impression and rating in that order.
func CreateRecord(body any) (NewRecord, error) {
	obj, _ := body.(map[string]any)

	brand, ok := obj["brand"].(string)
	if !ok || brand == "" {
		return NewRecord{}, fail("brand", msgBrandRequired)
	}
	if err := validate.Var(brand, brandRule); err != nil {
		return NewRecord{}, fail("brand", msgBrandLength)
	}

	impression, ok := obj["impression"].(string)
	if !ok || impression == "" {
		return NewRecord{}, fail("impression", msgImpressionMissing)
	}
	if err := validate.Var(impression, impressionRule); err != nil {
		return NewRecord{}, fail("impression", msgImpressionLength)
	}

	rating, _ := obj["rating"].(string)
	if err := validate.Var(rating, ratingRule); err != nil {
		return NewRecord{}, fail("rating", msgRatingInvalid)
	}

	return NewRecord{Brand: brand, Impression: impression, Rating: domain.Rating(rating)}, nil
}

// UpdateRecord validates only the fields present in body. A present null
// is rejected. Unknown keys are ignored.
func UpdateRecord(body any) (domain.RecordPatch, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return domain.RecordPatch{}, fail("body", msgInvalidBody)
	}

	var patch domain.RecordPatch
	if v, present := obj["brand"]; present {
		s, ok := v.(string)
		if !ok || validate.Var(s, brandRule) != nil {
			return domain.RecordPatch{}, fail("brand", msgBrandLength)
		}
		patch.Brand = &s
	}
	if v, present := obj["impression"]; present {
		s, ok := v.(string)
		if !ok || validate.Var(s, impressionRule) != nil {
			return domain.RecordPatch{}, fail("impression", msgImpressionLength)
		}
		patch.Impression = &s
	}
	if v, present := obj["rating"]; present {
		s, ok := v.(string)
		if !ok || validate.Var(s, ratingRule) != nil {
			return domain.RecordPatch{}, fail("rating", msgRatingInvalid)
		}
		r := domain.Rating(s)
		patch.Rating = &r
	}
	if v, present := obj["labelImageKey"]; present {
		s, ok := v.(string)
		if !ok || validate.Var(s, labelKeyRule) != nil {
			return domain.RecordPatch{}, fail("labelImageKey", msgLabelImageKey)
		}
		patch.LabelImageKey = &s
	}
	return patch, nil
}

// ListQuery holds the raw list-endpoint query parameters.
type ListQuery struct {
	Q      string
	Brand  string
	Rating string
	From   string
	To     string
}

// Filter is a validated ListQuery. Range bounds are normalised to the
// stored timestamp layout so they compare correctly against created_at.
type Filter struct {
	Query  string
	Brand  string
	Rating domain.Rating
	Range  *domain.DateRange
}

func ListFilter(q ListQuery) (Filter, error) {
	f := Filter{Query: q.Q, Brand: q.Brand}

	if q.Rating != "" {
		if err := validate.Var(q.Rating, ratingRule); err != nil {
			return Filter{}, fail("rating", msgRatingInvalid)
		}
		f.Rating = domain.Rating(q.Rating)
	}

	from, err := normaliseBound("from", q.From)
	if err != nil {
		return Filter{}, err
	}
	to, err := normaliseBound("to", q.To)
	if err != nil {
		return Filter{}, err
	}
	if from != "" || to != "" {
		if f.Brand == "" && f.Rating == "" {
			return Filter{}, fail("from", msgRangeWithoutKey)
		}
		f.Range = &domain.DateRange{From: from, To: to}
	}
	return f, nil
}

func normaliseBound(field, v string) (string, error) {
	if v == "" {
		return "", nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return "", fail(field, msgDateInvalid)
	}
	return domain.FormatTimestamp(t), nil
}
