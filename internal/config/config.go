package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/league-stats/internal/platform/logging"
)

const (
	MatchSourceCSV      = "csv"
	MatchSourcePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	CORSAllowedOrigins      []string
	SwaggerEnabled          bool
	MatchSource             string
	MatchCSVPath            string
	MatchImportID           string
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	WarmupEnabled           bool
	WarmupWorkers           int
	ForestTrees             int
	ForestSeed              uint64
	ForestMaxDepth          int
	TeamAliasesPath         string
	AdminToken              string
	UptraceEnabled          bool
	UptraceDSN              string
	PyroscopeEnabled        bool
	PyroscopeServerAddress  string
	PyroscopeAppName        string
	PyroscopeAuthToken      string
	PyroscopeUploadRate     time.Duration
	LogLevel                logging.Level
}

// Load reads the environment. A .env file in the working directory is applied
// first; variables already set in the process win.
func Load() (Config, error) {
	_ = godotenv.Load()

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	matchSource := strings.ToLower(strings.TrimSpace(getEnv("MATCH_SOURCE", MatchSourceCSV)))
	matchCSVPath := strings.TrimSpace(getEnv("MATCH_CSV_PATH", "./data/khl_matches.csv"))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	switch matchSource {
	case MatchSourceCSV:
		if matchCSVPath == "" {
			return Config{}, fmt.Errorf("MATCH_CSV_PATH is required when MATCH_SOURCE=%s", MatchSourceCSV)
		}
	case MatchSourcePostgres:
		if dbURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when MATCH_SOURCE=%s", MatchSourcePostgres)
		}
	default:
		return Config{}, fmt.Errorf("invalid MATCH_SOURCE %q: valid values are %s, %s", matchSource, MatchSourceCSV, MatchSourcePostgres)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}

	warmupEnabled, err := strconv.ParseBool(getEnv("WARMUP_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMUP_ENABLED: %w", err)
	}
	warmupWorkers, err := getEnvAsInt("WARMUP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMUP_WORKERS: %w", err)
	}
	if warmupWorkers < 1 {
		return Config{}, fmt.Errorf("WARMUP_WORKERS must be >= 1")
	}

	forestTrees, err := getEnvAsInt("FOREST_TREES", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOREST_TREES: %w", err)
	}
	if forestTrees < 1 {
		return Config{}, fmt.Errorf("FOREST_TREES must be >= 1")
	}
	forestSeed, err := strconv.ParseUint(strings.TrimSpace(getEnv("FOREST_SEED", "21")), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOREST_SEED: %w", err)
	}
	forestMaxDepth, err := getEnvAsInt("FOREST_MAX_DEPTH", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOREST_MAX_DEPTH: %w", err)
	}
	if forestMaxDepth < 0 {
		return Config{}, fmt.Errorf("FOREST_MAX_DEPTH must be >= 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "league-stats-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:          swaggerEnabled,
		MatchSource:             matchSource,
		MatchCSVPath:            matchCSVPath,
		MatchImportID:           strings.TrimSpace(getEnv("MATCH_IMPORT_ID", "")),
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CacheEnabled:            cacheEnabled,
		WarmupEnabled:           warmupEnabled,
		WarmupWorkers:           warmupWorkers,
		ForestTrees:             forestTrees,
		ForestSeed:              forestSeed,
		ForestMaxDepth:          forestMaxDepth,
		TeamAliasesPath:         strings.TrimSpace(getEnv("TEAM_ALIASES_PATH", "")),
		AdminToken:              strings.TrimSpace(getEnv("ADMIN_TOKEN", "")),
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		PyroscopeEnabled:        pyroscopeEnabled,
		PyroscopeServerAddress:  pyroscopeServerAddress,
		PyroscopeAuthToken:      strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:     pyroscopeUploadRate,
		LogLevel:                logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AppEnv == EnvProd && cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("ADMIN_TOKEN is required when APP_ENV=%s", EnvProd)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
