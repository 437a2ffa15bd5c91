package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Workspace   WorkspaceConfig
	Extractor   ExtractorConfig
	Interpreter InterpreterConfig
	Batch       BatchConfig
	S3          S3Config
	DB          DBConfig
	Notify      NotifyConfig
	Auth        AuthConfig
	CORS        CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WorkspaceConfig describes the on-disk layout of documents, prompts and results.
type WorkspaceConfig struct {
	RootDir            string   `mapstructure:"root_dir"`
	DocumentMarker     string   `mapstructure:"document_marker"`
	DocumentExtensions []string `mapstructure:"document_extensions"`
	UserPromptFile     string   `mapstructure:"user_prompt_file"`
	SystemPromptDir    string   `mapstructure:"system_prompt_dir"`
	SystemPromptFile   string   `mapstructure:"system_prompt_file"`
	WindowSize         int      `mapstructure:"window_size"`
}

// ExtractorConfig holds document layout extraction service settings.
type ExtractorConfig struct {
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	APIVersion     string `mapstructure:"api_version"`
	MaxRetries     int    `mapstructure:"max_retries"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms"`
}

// InterpreterProviderConfig holds settings for a single language model provider.
type InterpreterProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	Endpoint     string  `mapstructure:"endpoint"`
	APIVersion   string  `mapstructure:"api_version"`
	MaxRetries   int     `mapstructure:"max_retries"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
}

// InterpreterConfig holds language model settings with multi-provider fallback.
type InterpreterConfig struct {
	// Legacy flat fields
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	Endpoint     string  `mapstructure:"endpoint"`
	APIVersion   string  `mapstructure:"api_version"`
	MaxRetries   int     `mapstructure:"max_retries"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`

	// Multi-provider fields
	Primary   InterpreterProviderConfig `mapstructure:"primary"`
	Secondary InterpreterProviderConfig `mapstructure:"secondary"`
	Tertiary  InterpreterProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *InterpreterConfig) PrimaryConfig() *InterpreterProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &InterpreterProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		Endpoint:     p.Endpoint,
		APIVersion:   p.APIVersion,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
		MaxTokens:    p.MaxTokens,
		Temperature:  p.Temperature,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *InterpreterConfig) SecondaryConfig() *InterpreterProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *InterpreterConfig) TertiaryConfig() *InterpreterProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// BatchConfig holds batch runner settings.
type BatchConfig struct {
	Concurrency       int `mapstructure:"concurrency"`
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	ItemTimeoutSecs   int `mapstructure:"item_timeout_secs"`
	TimeoutSecs       int `mapstructure:"timeout_secs"`
}

// ItemTimeout returns the per-item deadline.
func (b *BatchConfig) ItemTimeout() time.Duration {
	return time.Duration(b.ItemTimeoutSecs) * time.Second
}

// Timeout returns the whole-batch deadline, zero meaning none.
func (b *BatchConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// S3Config holds settings for mirroring consolidated results to S3.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// DBConfig holds PostgreSQL connection settings for the batch run ledger.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// NotifyConfig holds batch completion notification settings.
type NotifyConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
}

// AuthConfig holds optional bearer token settings for the HTTP API.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from a .env file, an optional config file named by
// BANKMETRICS_CONFIG_FILE, and environment variables with the BANKMETRICS_ prefix.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("BANKMETRICS_CONFIG_FILE"))
}

// LoadFile is Load with an explicit config file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BANKMETRICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	envBindings := map[string]string{
		"server.port":                         "BANKMETRICS_SERVER_PORT",
		"server.read_timeout":                 "BANKMETRICS_SERVER_READ_TIMEOUT",
		"server.write_timeout":                "BANKMETRICS_SERVER_WRITE_TIMEOUT",
		"server.environment":                  "BANKMETRICS_SERVER_ENVIRONMENT",
		"log.level":                           "BANKMETRICS_LOG_LEVEL",
		"log.format":                          "BANKMETRICS_LOG_FORMAT",
		"workspace.root_dir":                  "BANKMETRICS_WORKSPACE_ROOT_DIR",
		"workspace.document_marker":           "BANKMETRICS_WORKSPACE_DOCUMENT_MARKER",
		"workspace.document_extensions":       "BANKMETRICS_WORKSPACE_DOCUMENT_EXTENSIONS",
		"workspace.user_prompt_file":          "BANKMETRICS_WORKSPACE_USER_PROMPT_FILE",
		"workspace.system_prompt_dir":         "BANKMETRICS_WORKSPACE_SYSTEM_PROMPT_DIR",
		"workspace.system_prompt_file":        "BANKMETRICS_WORKSPACE_SYSTEM_PROMPT_FILE",
		"workspace.window_size":               "BANKMETRICS_WORKSPACE_WINDOW_SIZE",
		"extractor.provider":                  "BANKMETRICS_EXTRACTOR_PROVIDER",
		"extractor.endpoint":                  "BANKMETRICS_EXTRACTOR_ENDPOINT",
		"extractor.api_key":                   "BANKMETRICS_EXTRACTOR_API_KEY",
		"extractor.model":                     "BANKMETRICS_EXTRACTOR_MODEL",
		"extractor.api_version":               "BANKMETRICS_EXTRACTOR_API_VERSION",
		"extractor.max_retries":               "BANKMETRICS_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":              "BANKMETRICS_EXTRACTOR_TIMEOUT_SECS",
		"extractor.poll_interval_ms":          "BANKMETRICS_EXTRACTOR_POLL_INTERVAL_MS",
		"interpreter.provider":                "BANKMETRICS_INTERPRETER_PROVIDER",
		"interpreter.api_key":                 "BANKMETRICS_INTERPRETER_API_KEY",
		"interpreter.default_model":           "BANKMETRICS_INTERPRETER_DEFAULT_MODEL",
		"interpreter.endpoint":                "BANKMETRICS_INTERPRETER_ENDPOINT",
		"interpreter.api_version":             "BANKMETRICS_INTERPRETER_API_VERSION",
		"interpreter.max_retries":             "BANKMETRICS_INTERPRETER_MAX_RETRIES",
		"interpreter.timeout_secs":            "BANKMETRICS_INTERPRETER_TIMEOUT_SECS",
		"interpreter.max_tokens":              "BANKMETRICS_INTERPRETER_MAX_TOKENS",
		"interpreter.temperature":             "BANKMETRICS_INTERPRETER_TEMPERATURE",
		"batch.concurrency":                   "BANKMETRICS_BATCH_CONCURRENCY",
		"batch.requests_per_minute":           "BANKMETRICS_BATCH_REQUESTS_PER_MINUTE",
		"batch.item_timeout_secs":             "BANKMETRICS_BATCH_ITEM_TIMEOUT_SECS",
		"batch.timeout_secs":                  "BANKMETRICS_BATCH_TIMEOUT_SECS",
		"s3.enabled":                          "BANKMETRICS_S3_ENABLED",
		"s3.region":                           "BANKMETRICS_S3_REGION",
		"s3.bucket":                           "BANKMETRICS_S3_BUCKET",
		"s3.prefix":                           "BANKMETRICS_S3_PREFIX",
		"s3.endpoint":                         "BANKMETRICS_S3_ENDPOINT",
		"s3.access_key":                       "BANKMETRICS_S3_ACCESS_KEY",
		"s3.secret_key":                       "BANKMETRICS_S3_SECRET_KEY",
		"s3.presign_expiry":                   "BANKMETRICS_S3_PRESIGN_EXPIRY",
		"db.enabled":                          "BANKMETRICS_DB_ENABLED",
		"db.host":                             "BANKMETRICS_DB_HOST",
		"db.port":                             "BANKMETRICS_DB_PORT",
		"db.user":                             "BANKMETRICS_DB_USER",
		"db.password":                         "BANKMETRICS_DB_PASSWORD",
		"db.name":                             "BANKMETRICS_DB_NAME",
		"db.sslmode":                          "BANKMETRICS_DB_SSLMODE",
		"db.max_open":                         "BANKMETRICS_DB_MAX_OPEN",
		"db.max_idle":                         "BANKMETRICS_DB_MAX_IDLE",
		"notify.provider":                     "BANKMETRICS_NOTIFY_PROVIDER",
		"notify.region":                       "BANKMETRICS_NOTIFY_REGION",
		"notify.from_address":                 "BANKMETRICS_NOTIFY_FROM_ADDRESS",
		"notify.from_name":                    "BANKMETRICS_NOTIFY_FROM_NAME",
		"notify.recipients":                   "BANKMETRICS_NOTIFY_RECIPIENTS",
		"auth.jwt_secret":                     "BANKMETRICS_AUTH_JWT_SECRET",
		"auth.issuer":                         "BANKMETRICS_AUTH_ISSUER",
		"cors.allowed_origins":                "BANKMETRICS_CORS_ALLOWED_ORIGINS",
		"interpreter.primary.provider":        "BANKMETRICS_INTERPRETER_PRIMARY_PROVIDER",
		"interpreter.primary.api_key":         "BANKMETRICS_INTERPRETER_PRIMARY_API_KEY",
		"interpreter.primary.default_model":   "BANKMETRICS_INTERPRETER_PRIMARY_DEFAULT_MODEL",
		"interpreter.primary.endpoint":        "BANKMETRICS_INTERPRETER_PRIMARY_ENDPOINT",
		"interpreter.secondary.provider":      "BANKMETRICS_INTERPRETER_SECONDARY_PROVIDER",
		"interpreter.secondary.api_key":       "BANKMETRICS_INTERPRETER_SECONDARY_API_KEY",
		"interpreter.secondary.default_model": "BANKMETRICS_INTERPRETER_SECONDARY_DEFAULT_MODEL",
		"interpreter.secondary.endpoint":      "BANKMETRICS_INTERPRETER_SECONDARY_ENDPOINT",
		"interpreter.tertiary.provider":       "BANKMETRICS_INTERPRETER_TERTIARY_PROVIDER",
		"interpreter.tertiary.api_key":        "BANKMETRICS_INTERPRETER_TERTIARY_API_KEY",
		"interpreter.tertiary.default_model":  "BANKMETRICS_INTERPRETER_TERTIARY_DEFAULT_MODEL",
		"interpreter.tertiary.endpoint":       "BANKMETRICS_INTERPRETER_TERTIARY_ENDPOINT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BANKMETRICS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BANKMETRICS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Workspace = WorkspaceConfig{
		RootDir:            v.GetString("workspace.root_dir"),
		DocumentMarker:     v.GetString("workspace.document_marker"),
		DocumentExtensions: splitList(v.GetString("workspace.document_extensions")),
		UserPromptFile:     v.GetString("workspace.user_prompt_file"),
		SystemPromptDir:    v.GetString("workspace.system_prompt_dir"),
		SystemPromptFile:   v.GetString("workspace.system_prompt_file"),
		WindowSize:         v.GetInt("workspace.window_size"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:       v.GetString("extractor.provider"),
		Endpoint:       v.GetString("extractor.endpoint"),
		APIKey:         v.GetString("extractor.api_key"),
		Model:          v.GetString("extractor.model"),
		APIVersion:     v.GetString("extractor.api_version"),
		MaxRetries:     v.GetInt("extractor.max_retries"),
		TimeoutSecs:    v.GetInt("extractor.timeout_secs"),
		PollIntervalMs: v.GetInt("extractor.poll_interval_ms"),
	}
	cfg.Interpreter = InterpreterConfig{
		Provider:     v.GetString("interpreter.provider"),
		APIKey:       v.GetString("interpreter.api_key"),
		DefaultModel: v.GetString("interpreter.default_model"),
		Endpoint:     v.GetString("interpreter.endpoint"),
		APIVersion:   v.GetString("interpreter.api_version"),
		MaxRetries:   v.GetInt("interpreter.max_retries"),
		TimeoutSecs:  v.GetInt("interpreter.timeout_secs"),
		MaxTokens:    v.GetInt("interpreter.max_tokens"),
		Temperature:  v.GetFloat64("interpreter.temperature"),
		Primary:      providerConfig(v, "interpreter.primary"),
		Secondary:    providerConfig(v, "interpreter.secondary"),
		Tertiary:     providerConfig(v, "interpreter.tertiary"),
	}
	cfg.Batch = BatchConfig{
		Concurrency:       v.GetInt("batch.concurrency"),
		RequestsPerMinute: v.GetInt("batch.requests_per_minute"),
		ItemTimeoutSecs:   v.GetInt("batch.item_timeout_secs"),
		TimeoutSecs:       v.GetInt("batch.timeout_secs"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Prefix:        v.GetString("s3.prefix"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		Recipients:  splitList(v.GetString("notify.recipients")),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Workspace defaults
	v.SetDefault("workspace.root_dir", ".")
	v.SetDefault("workspace.document_marker", "supplement")
	v.SetDefault("workspace.document_extensions", ".pdf")
	v.SetDefault("workspace.user_prompt_file", "user_prompt.txt")
	v.SetDefault("workspace.system_prompt_dir", "System_prompt")
	v.SetDefault("workspace.system_prompt_file", "system_prompt.txt")
	v.SetDefault("workspace.window_size", 5)

	// Extractor defaults
	v.SetDefault("extractor.provider", "azure")
	v.SetDefault("extractor.endpoint", "")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.model", "prebuilt-layout")
	v.SetDefault("extractor.api_version", "2024-11-30")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 300)
	v.SetDefault("extractor.poll_interval_ms", 1000)

	// Interpreter defaults (legacy flat)
	v.SetDefault("interpreter.provider", "azure-openai")
	v.SetDefault("interpreter.api_key", "")
	v.SetDefault("interpreter.default_model", "")
	v.SetDefault("interpreter.endpoint", "")
	v.SetDefault("interpreter.api_version", "2024-10-21")
	v.SetDefault("interpreter.max_retries", 2)
	v.SetDefault("interpreter.timeout_secs", 180)
	v.SetDefault("interpreter.max_tokens", 4000)
	v.SetDefault("interpreter.temperature", 0.0)

	// Interpreter primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		prefix := "interpreter." + tier
		v.SetDefault(prefix+".provider", "")
		v.SetDefault(prefix+".api_key", "")
		v.SetDefault(prefix+".default_model", "")
		v.SetDefault(prefix+".endpoint", "")
		v.SetDefault(prefix+".api_version", "")
		v.SetDefault(prefix+".max_retries", 2)
		v.SetDefault(prefix+".timeout_secs", 180)
		v.SetDefault(prefix+".max_tokens", 4000)
		v.SetDefault(prefix+".temperature", 0.0)
	}

	// Batch defaults (sequential, like the reference behaviour)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.requests_per_minute", 30)
	v.SetDefault("batch.item_timeout_secs", 600)
	v.SetDefault("batch.timeout_secs", 0)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "bankmetrics-results")
	v.SetDefault("s3.prefix", "results")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "bankmetrics")
	v.SetDefault("db.password", "bankmetrics_secret")
	v.SetDefault("db.name", "bankmetrics")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@bankmetrics.local")
	v.SetDefault("notify.from_name", "Bank Metrics")
	v.SetDefault("notify.recipients", "")

	// Auth defaults (empty secret disables API auth)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "bankmetrics")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
}

func providerConfig(v *viper.Viper, prefix string) InterpreterProviderConfig {
	return InterpreterProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		APIVersion:   v.GetString(prefix + ".api_version"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
		Temperature:  v.GetFloat64(prefix + ".temperature"),
	}
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects settings the batch cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Workspace.RootDir) == "" {
		return fmt.Errorf("workspace.root_dir must be set")
	}
	if c.Workspace.DocumentMarker == "" {
		return fmt.Errorf("workspace.document_marker must be set")
	}
	if len(c.Workspace.DocumentExtensions) == 0 {
		return fmt.Errorf("workspace.document_extensions must list at least one extension")
	}
	if c.Workspace.WindowSize <= 0 {
		return fmt.Errorf("workspace.window_size must be positive, got %d", c.Workspace.WindowSize)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Batch.RequestsPerMinute < 0 {
		return fmt.Errorf("batch.requests_per_minute must not be negative, got %d", c.Batch.RequestsPerMinute)
	}
	return nil
}
