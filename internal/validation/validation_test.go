package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sake-recommendation/internal/domain"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func expectMessage(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	var vErr *Error
	require.True(t, errors.As(err, &vErr), "expected *validation.Error, got %T", err)
	require.Equal(t, message, vErr.Message)
}

// ---- RecommendRequest ----

func TestRecommendRequest_ReturnsMenuUnchanged(t *testing.T) {
	menu, err := RecommendRequest(decode(t, `{"menu":["獺祭 純米大吟醸","久保田 萬寿"]}`))
	require.NoError(t, err)
	require.Equal(t, []string{"獺祭 純米大吟醸", "久保田 萬寿"}, menu)
}

func TestRecommendRequest_Rejections(t *testing.T) {
	long := strings.Repeat("酒", 65)
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{name: "string body", body: `"menu"`, message: "リクエストボディが不正です"},
		{name: "number body", body: `42`, message: "リクエストボディが不正です"},
		{name: "array body has no menu", body: `["a"]`, message: "menuフィールドが必要です"},
		{name: "empty array body", body: `[]`, message: "menuフィールドが必要です"},
		{name: "null body", body: `null`, message: "リクエストボディが不正です"},
		{name: "missing menu", body: `{}`, message: "menuフィールドが必要です"},
		{name: "menu is a string", body: `{"menu":"獺祭"}`, message: "menuは配列である必要があります"},
		{name: "menu is null", body: `{"menu":null}`, message: "menuは配列である必要があります"},
		{name: "empty menu", body: `{"menu":[]}`, message: "メニューを入力してください"},
		{name: "non-string element", body: `{"menu":["獺祭",123]}`, message: "menu[1]は文字列である必要があります"},
		{name: "empty element", body: `{"menu":[""]}`, message: "銘柄は1文字以上64文字以内である必要があります: "},
		{name: "too long element", body: `{"menu":["` + long + `"]}`, message: "銘柄は1文字以上64文字以内である必要があります: " + long},
		{name: "first bad element wins", body: `{"menu":["ok",1,""]}`, message: "menu[1]は文字列である必要があります"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RecommendRequest(decode(t, tc.body))
			expectMessage(t, err, tc.message)
		})
	}
}

func TestRecommendRequest_LengthCountsCharacters(t *testing.T) {
	exact := strings.Repeat("酒", 64)
	menu, err := RecommendRequest(map[string]any{"menu": []any{exact}})
	require.NoError(t, err)
	require.Equal(t, []string{exact}, menu)
}

// ---- CreateRecord ----

func TestCreateRecord_Valid(t *testing.T) {
	rec, err := CreateRecord(decode(t, `{"brand":"獺祭","impression":"フルーティー","rating":"VERY_GOOD"}`))
	require.NoError(t, err)
	require.Equal(t, NewRecord{Brand: "獺祭", Impression: "フルーティー", Rating: domain.RatingVeryGood}, rec)
}

func TestCreateRecord_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		body    any
		message string
	}{
		{name: "missing brand", body: map[string]any{"impression": "x", "rating": "GOOD"}, message: "銘柄は必須です"},
		{name: "empty brand", body: map[string]any{"brand": "", "impression": "x", "rating": "GOOD"}, message: "銘柄は必須です"},
		{name: "numeric brand", body: map[string]any{"brand": 1.0, "impression": "x", "rating": "GOOD"}, message: "銘柄は必須です"},
		{name: "long brand", body: map[string]any{"brand": strings.Repeat("a", 65), "impression": "x", "rating": "GOOD"}, message: "銘柄は1-64文字で入力してください"},
		{name: "missing impression", body: map[string]any{"brand": "a", "rating": "GOOD"}, message: "感想は必須です"},
		{name: "long impression", body: map[string]any{"brand": "a", "impression": strings.Repeat("あ", 1001), "rating": "GOOD"}, message: "感想は1-1000文字で入力してください"},
		{name: "label instead of code", body: map[string]any{"brand": "a", "impression": "x", "rating": "好き"}, message: "評価が不正です"},
		{name: "missing rating", body: map[string]any{"brand": "a", "impression": "x"}, message: "評価が不正です"},
		{name: "brand checked before impression", body: map[string]any{"rating": "BAD"}, message: "銘柄は必須です"},
		{name: "impression checked before rating", body: map[string]any{"brand": "a"}, message: "感想は必須です"},
		{name: "not an object", body: []any{"a"}, message: "銘柄は必須です"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateRecord(tc.body)
			expectMessage(t, err, tc.message)
		})
	}
}

func TestCreateRecord_BoundaryLengths(t *testing.T) {
	_, err := CreateRecord(map[string]any{
		"brand":      strings.Repeat("酒", 64),
		"impression": strings.Repeat("旨", 1000),
		"rating":     "VERY_BAD",
	})
	require.NoError(t, err)
}

// ---- UpdateRecord ----

func TestUpdateRecord_PartialFields(t *testing.T) {
	patch, err := UpdateRecord(decode(t, `{"rating":"BAD","unknown":true}`))
	require.NoError(t, err)
	require.Nil(t, patch.Brand)
	require.Nil(t, patch.Impression)
	require.NotNil(t, patch.Rating)
	require.Equal(t, domain.RatingBad, *patch.Rating)
}

func TestUpdateRecord_NoFieldsIsValid(t *testing.T) {
	patch, err := UpdateRecord(decode(t, `{}`))
	require.NoError(t, err)
	require.True(t, patch.Empty())
}

func TestUpdateRecord_AllFields(t *testing.T) {
	patch, err := UpdateRecord(decode(t, `{"brand":"新政","impression":"酸味","rating":"GOOD","labelImageKey":"labels/u1/a.jpg"}`))
	require.NoError(t, err)
	require.Equal(t, "新政", *patch.Brand)
	require.Equal(t, "酸味", *patch.Impression)
	require.Equal(t, domain.RatingGood, *patch.Rating)
	require.Equal(t, "labels/u1/a.jpg", *patch.LabelImageKey)
}

func TestUpdateRecord_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty brand", body: `{"brand":""}`, message: "銘柄は1-64文字で入力してください"},
		{name: "null brand", body: `{"brand":null}`, message: "銘柄は1-64文字で入力してください"},
		{name: "long brand", body: `{"brand":"` + strings.Repeat("a", 65) + `"}`, message: "銘柄は1-64文字で入力してください"},
		{name: "numeric impression", body: `{"impression":5}`, message: "感想は1-1000文字で入力してください"},
		{name: "bad rating", body: `{"rating":"EXCELLENT"}`, message: "評価が不正です"},
		{name: "label key type", body: `{"labelImageKey":1}`, message: "画像キーが不正です"},
		{name: "not an object", body: `"brand"`, message: "リクエストボディが不正です"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UpdateRecord(decode(t, tc.body))
			expectMessage(t, err, tc.message)
		})
	}
}

// ---- ListFilter ----

func TestListFilter_NormalisesRange(t *testing.T) {
	f, err := ListFilter(ListQuery{Brand: "獺祭", From: "2024-01-01T09:00:00+09:00", To: "2024-01-31T23:59:59Z"})
	require.NoError(t, err)
	require.Equal(t, "獺祭", f.Brand)
	require.Equal(t, &domain.DateRange{From: "2024-01-01T00:00:00.000Z", To: "2024-01-31T23:59:59.000Z"}, f.Range)
}

func TestListFilter_PlainQuery(t *testing.T) {
	f, err := ListFilter(ListQuery{Q: "辛口"})
	require.NoError(t, err)
	require.Equal(t, Filter{Query: "辛口"}, f)
	require.Nil(t, f.Range)
}

func TestListFilter_Rejections(t *testing.T) {
	_, err := ListFilter(ListQuery{Rating: "SO_SO"})
	expectMessage(t, err, "評価が不正です")

	_, err = ListFilter(ListQuery{Rating: "GOOD", From: "yesterday"})
	expectMessage(t, err, "日付の形式が不正です")

	_, err = ListFilter(ListQuery{To: "2024-01-31T23:59:59Z"})
	expectMessage(t, err, "期間指定には銘柄または評価が必要です")
}
