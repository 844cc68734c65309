package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sake-recommendation/internal/usecase"
)

// LambdaAdapter serves API Gateway HTTP API (payload v2) events through the
// same router the local server uses.
type LambdaAdapter struct {
	proxy  *chiadapter.ChiLambdaV2
	logger *zap.Logger
}

func NewLambdaAdapter(router *chi.Mux, logger *zap.Logger) *LambdaAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LambdaAdapter{proxy: chiadapter.NewV2(router), logger: logger}
}

// Handle is passed to lambda.Start. Proxy failures become a 500 envelope so
// API Gateway never sees a bare invocation error.
func (a *LambdaAdapter) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := a.proxy.ProxyWithContextV2(ctx, req)
	if err != nil {
		a.logger.Error("proxy request failed",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("requestId", req.RequestContext.RequestID),
			zap.Error(err),
		)
		body, _ := json.Marshal(errorResponse{Error: errorDetail{
			Code:    string(usecase.ErrorInternal),
			Message: usecase.MsgInternal,
		}})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
			Body:       string(body),
		}, nil
	}
	return resp, nil
}
