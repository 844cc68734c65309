package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sake-recommendation/internal/integrations/paramstore"
)

// SSM parameter names, relative to PARAM_PREFIX.
const (
	ParamUserPoolID = "/cognito/user_pool_id"
	ParamClientID   = "/cognito/client_id"
	ParamRuntimeARN = "/agentcore/runtime_arn"
)

const EnvProduction = "production"

type Config struct {
	Environment string
	AppVersion  string
	Region      string
	Port        int
	LogLevel    string
	DevMode     bool

	TableName        string
	DynamoDBEndpoint string

	CognitoUserPoolID string
	CognitoClientID   string
	SkipAuth          bool
	DevUserID         string

	AgentRuntimeARN string
	UseLocalAgent   bool
	LocalAgentURL   string

	MaxRecommendations int
	HistoryLimit       int

	CORSAllowedOrigins []string
	MetricsEnabled     bool
	ParamPrefix        string
}

// Load reads .env when present, then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (Config, error) {
	return load(".env")
}

func load(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
	}

	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		AppVersion:  getEnv("APP_VERSION", "dev"),
		Region:      firstNonEmpty(os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		TableName:        getEnv("DYNAMODB_TABLE_NAME", ""),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),

		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:   getEnv("COGNITO_CLIENT_ID", ""),
		DevUserID:         getEnv("DEV_USER_ID", "dev-user"),

		AgentRuntimeARN: getEnv("AGENTCORE_RUNTIME_ARN", ""),
		LocalAgentURL:   getEnv("LOCAL_AGENT_URL", "http://localhost:8080"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ParamPrefix:        getEnv("PARAM_PREFIX", ""),
	}

	var err error
	if cfg.Port, err = envInt("PORT", 8080); err != nil {
		return Config{}, err
	}
	if cfg.MaxRecommendations, err = envInt("MAX_RECOMMENDATIONS", 10); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit, err = envInt("HISTORY_LIMIT", 100); err != nil {
		return Config{}, err
	}
	if cfg.DevMode, err = envBool("DEV_MODE", false); err != nil {
		return Config{}, err
	}
	if cfg.SkipAuth, err = envBool("SKIP_AUTH", false); err != nil {
		return Config{}, err
	}
	if cfg.UseLocalAgent, err = envBool("USE_LOCAL_AGENT", false); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = envBool("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyParams fills Cognito and agent runtime settings that the environment
// left empty from Parameter Store. Parameters that do not exist are skipped.
func (c *Config) ApplyParams(ctx context.Context, params paramstore.Getter) error {
	if params == nil {
		return errors.New("config: parameter getter must not be nil")
	}
	targets := []struct {
		name string
		dst  *string
		need bool
	}{
		{ParamUserPoolID, &c.CognitoUserPoolID, !c.SkipAuth},
		{ParamClientID, &c.CognitoClientID, !c.SkipAuth},
		{ParamRuntimeARN, &c.AgentRuntimeARN, !c.UseLocalAgent},
	}
	for _, t := range targets {
		if *t.dst != "" || !t.need {
			continue
		}
		v, ok, err := params.Lookup(ctx, t.name)
		if err != nil {
			return fmt.Errorf("config: load %s: %w", t.name, err)
		}
		if ok {
			*t.dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// NeedsParams reports whether any setting ApplyParams can supply is missing.
func (c Config) NeedsParams() bool {
	if !c.SkipAuth && (c.CognitoUserPoolID == "" || c.CognitoClientID == "") {
		return true
	}
	return !c.UseLocalAgent && c.AgentRuntimeARN == ""
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

func (c Config) Validate() error {
	var errs []error
	if c.TableName == "" {
		errs = append(errs, errors.New("DYNAMODB_TABLE_NAME is required"))
	}
	if c.SkipAuth {
		if c.IsProduction() {
			errs = append(errs, errors.New("SKIP_AUTH must not be enabled in production"))
		}
		if c.DevUserID == "" {
			errs = append(errs, errors.New("DEV_USER_ID is required when SKIP_AUTH is enabled"))
		}
	} else {
		if c.Region == "" {
			errs = append(errs, errors.New("AWS_REGION is required for token verification"))
		}
		if c.CognitoUserPoolID == "" {
			errs = append(errs, errors.New("COGNITO_USER_POOL_ID is required"))
		}
		if c.CognitoClientID == "" {
			errs = append(errs, errors.New("COGNITO_CLIENT_ID is required"))
		}
	}
	if c.UseLocalAgent {
		if c.LocalAgentURL == "" {
			errs = append(errs, errors.New("LOCAL_AGENT_URL is required when USE_LOCAL_AGENT is enabled"))
		}
	} else if c.AgentRuntimeARN == "" {
		errs = append(errs, errors.New("AGENTCORE_RUNTIME_ARN is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.MaxRecommendations <= 0 {
		errs = append(errs, errors.New("MAX_RECOMMENDATIONS must be positive"))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, errors.New("HISTORY_LIMIT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
