package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sake-recommendation/handler"
	"sake-recommendation/internal/auth"
	"sake-recommendation/internal/config"
	"sake-recommendation/internal/integrations/agentcore"
	"sake-recommendation/internal/integrations/paramstore"
	"sake-recommendation/internal/observability"
	"sake-recommendation/internal/repository"
	"sake-recommendation/internal/usecase"
)

const metricsNamespace = "sake"

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// ---- AWS SDK config ----
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}

	// ---- Parameter Store overrides ----
	if cfg.NeedsParams() {
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
		if err != nil {
			logger.Fatal("failed to create SSM client", zap.Error(err))
		}
		if err := cfg.ApplyParams(ctx, params); err != nil {
			logger.Fatal("failed to load parameters", zap.Error(err))
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// ---- Clients ----
	dynamoClient := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	store, err := repository.New(dynamoClient, cfg.TableName)
	if err != nil {
		logger.Fatal("failed to create records store", zap.Error(err))
	}

	var invoker agentcore.Invoker
	if cfg.UseLocalAgent {
		logger.Info("using local agent", zap.String("url", cfg.LocalAgentURL))
		invoker, err = agentcore.NewHTTPInvoker(cfg.LocalAgentURL)
	} else {
		invoker, err = agentcore.NewRuntimeInvoker(bedrockagentcore.NewFromConfig(awsCfg), cfg.AgentRuntimeARN)
	}
	if err != nil {
		logger.Fatal("failed to create agent invoker", zap.Error(err))
	}
	agentClient, err := agentcore.NewClient(invoker)
	if err != nil {
		logger.Fatal("failed to create agent client", zap.Error(err))
	}

	var authn handler.Authenticator
	if cfg.SkipAuth {
		logger.Warn("token verification disabled", zap.String("devUserId", cfg.DevUserID))
		authn = auth.StaticVerifier{UserID: cfg.DevUserID}
	} else {
		verifier, err := auth.NewCognitoVerifier(cfg.Region, cfg.CognitoUserPoolID, cfg.CognitoClientID)
		if err != nil {
			logger.Fatal("failed to create token verifier", zap.Error(err))
		}
		authn = verifier
	}

	// ---- Use cases ----
	recordService, err := usecase.NewRecordService(store)
	if err != nil {
		logger.Fatal("failed to create record service", zap.Error(err))
	}
	recommendService, err := usecase.NewRecommendService(store, agentClient, cfg.HistoryLimit, cfg.MaxRecommendations)
	if err != nil {
		logger.Fatal("failed to create recommend service", zap.Error(err))
	}

	// ---- Handler ----
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	var metrics *observability.Collector
	if cfg.MetricsEnabled {
		metrics = observability.NewCollector(metricsNamespace)
	}
	h, err := handler.NewHandler(recordService, recommendService, authn, handler.Options{
		Logger:         logger,
		Metrics:        metrics,
		DevMode:        cfg.DevMode,
		Environment:    cfg.Environment,
		Version:        cfg.AppVersion,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ExposeMetrics:  metrics != nil && !inLambda,
	})
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}
	router := h.Routes()

	if inLambda {
		lambda.Start(handler.NewLambdaAdapter(router, logger).Handle)
		return
	}
	if err := serve(ctx, router, cfg.Port, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// serve runs the router as a plain HTTP server until SIGINT or SIGTERM.
func serve(ctx context.Context, router *chi.Mux, port int, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
