package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sake-recommendation/internal/domain"
	"sake-recommendation/internal/observability"
	"sake-recommendation/internal/validation"
)

const serviceName = "sake-recommendation-api"

// RecordUseCase is the records API the handler depends on.
type RecordUseCase interface {
	Create(ctx context.Context, userID string, body any) (domain.DrinkingRecord, error)
	List(ctx context.Context, userID string, q validation.ListQuery) ([]domain.DrinkingRecord, error)
	Update(ctx context.Context, userID, recordID string, body any) (domain.DrinkingRecord, error)
	Delete(ctx context.Context, userID, recordID string) error
}

type RecommendUseCase interface {
	Recommend(ctx context.Context, userID string, body any) (domain.RecommendResponse, error)
}

// Authenticator turns a bearer token into the caller's user id.
type Authenticator interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Options struct {
	Logger         *zap.Logger
	Metrics        *observability.Collector
	DevMode        bool
	Environment    string
	Version        string
	AllowedOrigins []string
	// ExposeMetrics mounts GET /metrics. Requires Metrics.
	ExposeMetrics bool
}

type Handler struct {
	records   RecordUseCase
	recommend RecommendUseCase
	authn     Authenticator

	logger      *zap.Logger
	metrics     *observability.Collector
	devMode     bool
	environment string
	version     string
	origins     []string
	exposeMet   bool
	started     time.Time
}

func NewHandler(records RecordUseCase, recommend RecommendUseCase, authn Authenticator, opts Options) (*Handler, error) {
	if records == nil {
		return nil, errors.New("handler: record use case must not be nil")
	}
	if recommend == nil {
		return nil, errors.New("handler: recommend use case must not be nil")
	}
	if authn == nil {
		return nil, errors.New("handler: authenticator must not be nil")
	}
	if opts.ExposeMetrics && opts.Metrics == nil {
		return nil, errors.New("handler: metrics collector required to expose /metrics")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		records:     records,
		recommend:   recommend,
		authn:       authn,
		logger:      logger,
		metrics:     opts.Metrics,
		devMode:     opts.DevMode,
		environment: opts.Environment,
		version:     opts.Version,
		origins:     origins,
		exposeMet:   opts.ExposeMetrics,
		started:     time.Now(),
	}, nil
}

// Routes builds the router shared by the Lambda adapter and the local server.
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(h.logger))
	r.Use(requestMetrics(h.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", headerCorrelationID},
		ExposedHeaders: []string{headerCorrelationID},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "NOT_FOUND", "リソースが見つかりません")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "許可されていないメソッドです")
	})

	r.Get("/api/health", h.health)
	if h.exposeMet {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/api/records", func(r chi.Router) {
			r.Get("/", h.listRecords)
			r.Post("/", h.createRecord)
			r.Put("/{recordId}", h.updateRecord)
			r.Delete("/{recordId}", h.deleteRecord)
		})
		r.Post("/agent/recommend", h.recommendSake)
	})

	return r
}
