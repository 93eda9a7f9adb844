package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	AI      AIConfig
	Store   StoreConfig
	Session SessionConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Log:     LogConfig{Mode: getEnvOrDefault("LOG_MODE", "development")},
		AI:      ai,
		Store:   store,
		Session: session,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5178",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:5178",
	"https://qualityeducationassistant.vercel.app",
	"https://quality-education-assistant.onrender.com",
}

// loadServerConfig 解析服务器监听地址与跨域白名单。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = append([]string(nil), defaultAllowedOrigins...)
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// LogConfig 描述日志输出模式。
type LogConfig struct {
	Mode string
}

const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"

	PrecedenceCurated    = "curated"
	PrecedenceGenerative = "generative"

	DefaultOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultOpenAIModel   = "gemini-2.0-flash"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider         string
	Timeout          time.Duration
	RatePerMinute    int
	RateBurst        int
	RetryOnce        bool
	HistoryLimit     int
	IntentLLMEnabled bool
	Precedence       string
	OpenAI           OpenAIConfig
	Ark              ArkConfig
}

// Enabled 表示是否配置了可用的生成式模型。
func (c AIConfig) Enabled() bool {
	return c.Provider == ProviderOpenAI || c.Provider == ProviderArk
}

// OpenAIConfig 描述 OpenAI 兼容接口（默认指向 Gemini）。
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled 表示是否提供了 API Key。
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// ArkConfig 描述火山方舟模型配置。
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 20*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	ratePerMinute, err := parseIntEnv("AI_RATE_PER_MINUTE", 60)
	if err != nil {
		return AIConfig{}, err
	}

	rateBurst, err := parseIntEnv("AI_RATE_BURST", 10)
	if err != nil {
		return AIConfig{}, err
	}

	retryOnce, err := parseBoolEnv("AI_RETRY_ONCE", true)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit, err := parseIntEnv("AI_HISTORY_LIMIT", 10)
	if err != nil {
		return AIConfig{}, err
	}
	if historyLimit < 0 {
		historyLimit = 0
	}

	intentEnabled, err := parseBoolEnv("AI_INTENT_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	precedence := strings.ToLower(getEnvOrDefault("GUIDANCE_PRECEDENCE", PrecedenceCurated))
	if precedence != PrecedenceCurated && precedence != PrecedenceGenerative {
		return AIConfig{}, fmt.Errorf("invalid GUIDANCE_PRECEDENCE value %q", precedence)
	}

	openAIKey := secretEnv("GEMINI_API_KEY")
	if openAIKey == "" {
		openAIKey = secretEnv("OPENAI_API_KEY")
	}

	cfg := AIConfig{
		Timeout:          timeout,
		RatePerMinute:    ratePerMinute,
		RateBurst:        rateBurst,
		RetryOnce:        retryOnce,
		HistoryLimit:     historyLimit,
		IntentLLMEnabled: intentEnabled,
		Precedence:       precedence,
		OpenAI: OpenAIConfig{
			APIKey:  openAIKey,
			BaseURL: getEnvOrDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL),
			Model:   getEnvOrDefault("OPENAI_MODEL", DefaultOpenAIModel),
		},
		Ark: ArkConfig{
			APIKey:      secretEnv("ARK_API_KEY"),
			AccessKey:   secretEnv("ARK_ACCESS_KEY"),
			SecretKey:   secretEnv("ARK_SECRET_KEY"),
			Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		},
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	switch provider {
	case "":
		// 未显式指定时按凭证自动选择。
		switch {
		case cfg.OpenAI.Enabled():
			provider = ProviderOpenAI
		case cfg.Ark.Enabled():
			provider = ProviderArk
		default:
			provider = ProviderNone
		}
	case ProviderOpenAI:
		if !cfg.OpenAI.Enabled() {
			return AIConfig{}, fmt.Errorf("AI_PROVIDER=openai requires GEMINI_API_KEY or OPENAI_API_KEY")
		}
	case ProviderArk:
		if !cfg.Ark.Enabled() {
			return AIConfig{}, fmt.Errorf("AI_PROVIDER=ark requires ARK_MODEL and ARK credentials")
		}
	case ProviderNone:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}
	cfg.Provider = provider

	return cfg, nil
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// StoreConfig 描述会话存储后端。
type StoreConfig struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreMemory))
	switch driver {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value %q", driver)
	}

	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		Driver:        driver,
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "data/edu-guide.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: secretEnv("REDIS_PASSWORD"),
		RedisDB:       db,
		RedisPrefix:   getEnvOrDefault("REDIS_PREFIX", "edu-guide:"),
	}, nil
}

// SessionConfig 描述会话过期策略。
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return SessionConfig{}, err
	}
	sweep, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{TTL: ttl, SweepInterval: sweep}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// secretEnv 读取密钥，"your_" 开头的占位值视为未配置。
func secretEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if strings.HasPrefix(strings.ToLower(value), "your_") {
		return ""
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
