package agentcore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	response    []byte
	err         error
	calls       int
	lastSession string
	lastPayload []byte
}

func (f *fakeInvoker) Invoke(_ context.Context, sessionID string, payload []byte) ([]byte, error) {
	f.calls++
	f.lastSession = sessionID
	f.lastPayload = payload
	return f.response, f.err
}

type fakeRuntimeAPI struct {
	out    *bedrockagentcore.InvokeAgentRuntimeOutput
	err    error
	lastIn *bedrockagentcore.InvokeAgentRuntimeInput
}

func (f *fakeRuntimeAPI) InvokeAgentRuntime(_ context.Context, in *bedrockagentcore.InvokeAgentRuntimeInput, _ ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error) {
	f.lastIn = in
	return f.out, f.err
}

func mustNewClient(t *testing.T, inv Invoker) *Client {
	t.Helper()
	c, err := NewClient(inv)
	require.NoError(t, err)
	return c
}

// ---- Client ----

func TestNewClient_ValidatesInvoker(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
}

func TestRecommend_HappyPath(t *testing.T) {
	inv := &fakeInvoker{response: []byte(`{"result":{
		"best_recommend":{"brand":"獺祭","brand_description":"華やか","expected_experience":"フルーティー","category":"純米大吟醸","match_score":92},
		"recommendations":[{"brand":"久保田","brand_description":"端麗","expected_experience":"すっきり","match_score":75}],
		"metadata":{"model":"x"}}}`)}
	c := mustNewClient(t, inv)

	res, err := c.Recommend(context.Background(), Request{
		UserID:             "user-1",
		MenuBrands:         []string{"獺祭", "久保田"},
		MaxRecommendations: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, res.BestRecommend)
	require.Equal(t, "獺祭", res.BestRecommend.Brand)
	require.Equal(t, 92, res.BestRecommend.MatchScore)
	require.Len(t, res.Recommendations, 1)
	require.Equal(t, "", res.Recommendations[0].Category)
	require.Equal(t, 1, inv.calls)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(inv.lastPayload, &sent))
	require.Equal(t, "recommendation", sent["type"])
	require.Equal(t, "user-1", sent["user_id"])
	require.Equal(t, []any{"獺祭", "久保田"}, sent["menu_brands"])
	require.Equal(t, []any{}, sent["drinking_records"])
	require.EqualValues(t, 10, sent["max_recommendations"])

	require.True(t, strings.HasPrefix(inv.lastSession, "session-user-1-"))
	require.GreaterOrEqual(t, len(inv.lastSession), 33)
}

func TestRecommend_AgentErrorField(t *testing.T) {
	inv := &fakeInvoker{response: []byte(`{"error":"推薦にはuser_idが必要です"}`)}
	c := mustNewClient(t, inv)

	_, err := c.Recommend(context.Background(), Request{UserID: "u"})
	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	require.Equal(t, "推薦にはuser_idが必要です", agentErr.Message)
}

func TestRecommend_InvokeErrorNotRetried(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("throttled")}
	c := mustNewClient(t, inv)

	_, err := c.Recommend(context.Background(), Request{UserID: "u"})
	require.ErrorContains(t, err, "throttled")
	require.Equal(t, 1, inv.calls)
}

func TestRecommend_MalformedResponses(t *testing.T) {
	for _, body := range []string{`not-json`, `{}`, `{"result":null}`} {
		inv := &fakeInvoker{response: []byte(body)}
		c := mustNewClient(t, inv)
		_, err := c.Recommend(context.Background(), Request{UserID: "u"})
		require.Error(t, err, body)
	}
}

func TestRecommend_RequiresUserID(t *testing.T) {
	inv := &fakeInvoker{}
	c := mustNewClient(t, inv)
	_, err := c.Recommend(context.Background(), Request{UserID: " "})
	require.Error(t, err)
	require.Zero(t, inv.calls)
}

// ---- RuntimeInvoker ----

func TestNewRuntimeInvoker_ValidatesDeps(t *testing.T) {
	_, err := NewRuntimeInvoker(nil, "arn")
	require.Error(t, err)
	_, err = NewRuntimeInvoker(&fakeRuntimeAPI{}, "  ")
	require.Error(t, err)
}

func TestRuntimeInvoker_SendsPayload(t *testing.T) {
	api := &fakeRuntimeAPI{out: &bedrockagentcore.InvokeAgentRuntimeOutput{
		Response: io.NopCloser(bytes.NewReader([]byte(`{"result":{}}`))),
	}}
	inv, err := NewRuntimeInvoker(api, "arn:aws:bedrock-agentcore:ap-northeast-1:123:runtime/sake")
	require.NoError(t, err)

	raw, err := inv.Invoke(context.Background(), "session-abc", []byte(`{"type":"recommendation"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"result":{}}`, string(raw))
	require.Equal(t, "arn:aws:bedrock-agentcore:ap-northeast-1:123:runtime/sake", *api.lastIn.AgentRuntimeArn)
	require.Equal(t, "session-abc", *api.lastIn.RuntimeSessionId)
	require.Equal(t, []byte(`{"type":"recommendation"}`), api.lastIn.Payload)
}

func TestRuntimeInvoker_Errors(t *testing.T) {
	api := &fakeRuntimeAPI{err: errors.New("access denied")}
	inv, err := NewRuntimeInvoker(api, "arn")
	require.NoError(t, err)
	_, err = inv.Invoke(context.Background(), "s", nil)
	require.ErrorContains(t, err, "access denied")

	api = &fakeRuntimeAPI{out: &bedrockagentcore.InvokeAgentRuntimeOutput{}}
	inv, err = NewRuntimeInvoker(api, "arn")
	require.NoError(t, err)
	_, err = inv.Invoke(context.Background(), "s", nil)
	require.ErrorContains(t, err, "empty response")
}

// ---- HTTPInvoker ----

func TestHTTPInvoker_PostsToInvocations(t *testing.T) {
	var gotPath, gotSession string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSession = r.Header.Get("X-Amzn-Bedrock-AgentCore-Runtime-Session-Id")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"best_recommend":null,"recommendations":[]}}`))
	}))
	defer srv.Close()

	inv, err := NewHTTPInvoker(srv.URL+"/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	raw, err := inv.Invoke(context.Background(), "session-1", []byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, "/invocations", gotPath)
	require.Equal(t, "session-1", gotSession)
	require.JSONEq(t, `{"a":1}`, string(gotBody))
	require.Contains(t, string(raw), "recommendations")
}

func TestHTTPInvoker_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	inv, err := NewHTTPInvoker(srv.URL)
	require.NoError(t, err)

	_, err = inv.Invoke(context.Background(), "s", []byte(`{}`))
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.HTTPStatusCode())
	require.Equal(t, "upstream down", statusErr.Body)
}

func TestNewHTTPInvoker_Defaults(t *testing.T) {
	inv, err := NewHTTPInvoker("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", inv.baseURL)

	_, err = NewHTTPInvoker("localhost:8080")
	require.Error(t, err)

	_, err = NewHTTPInvoker("http://x", WithHTTPClient(nil))
	require.Error(t, err)
}

func TestRecommend_OverHTTPInvoker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"best_recommend":{"brand":"新政","brand_description":"d","expected_experience":"e","match_score":80},"recommendations":[]}}`))
	}))
	defer srv.Close()

	inv, err := NewHTTPInvoker(srv.URL)
	require.NoError(t, err)
	c := mustNewClient(t, inv)

	res, err := c.Recommend(context.Background(), Request{UserID: "u"})
	require.NoError(t, err)
	require.Equal(t, "新政", res.BestRecommend.Brand)
	require.Empty(t, res.Recommendations)
}
