package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/llm"
	"venue-rank-go/internal/logging"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/resolver"
	"venue-rank-go/internal/service"
)

// Config 应用配置
type Config struct {
	Port       string           `yaml:"port" toml:"port"`
	Catalog    CatalogConfig    `yaml:"catalog" toml:"catalog"`
	Resolver   ResolverConfig   `yaml:"resolver" toml:"resolver"`
	OpenAlex   OpenAlexConfig   `yaml:"openalex" toml:"openalex"`
	LLM        LLMConfig        `yaml:"llm" toml:"llm"`
	LiveSearch LiveSearchConfig `yaml:"live_search" toml:"live_search"`
	Batch      BatchConfig      `yaml:"batch" toml:"batch"`
	Log        logging.Config   `yaml:"log" toml:"log"`
}

// CatalogConfig 期刊目录来源
type CatalogConfig struct {
	Source  string          `yaml:"source" toml:"source"` // 文件路径、postgres:// 或 sqlite:
	Options catalog.Options `yaml:"options" toml:"options"`
}

// ResolverConfig 解析策略
type ResolverConfig struct {
	Threshold           int      `yaml:"threshold" toml:"threshold"`
	Strategies          []string `yaml:"strategies" toml:"strategies"`
	ExpandAbbreviations bool     `yaml:"expand_abbreviations" toml:"expand_abbreviations"`
	RemoteField         string   `yaml:"remote_field" toml:"remote_field"`
	BlockMarkers        []string `yaml:"block_markers" toml:"block_markers"`
}

// OpenAlexConfig 远程指标服务
type OpenAlexConfig struct {
	Mailto string `yaml:"mailto" toml:"mailto"`
}

// LLMConfig 模型估计；按 provider 选用对应的 key
type LLMConfig struct {
	Provider      string `yaml:"provider" toml:"provider"`
	Model         string `yaml:"model" toml:"model"`
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	OpenRouterKey string `yaml:"openrouter_api_key" toml:"openrouter_api_key"`
	OpenAIKey     string `yaml:"openai_api_key" toml:"openai_api_key"`
	AnthropicKey  string `yaml:"anthropic_api_key" toml:"anthropic_api_key"`
	GeminiKey     string `yaml:"gemini_api_key" toml:"gemini_api_key"`
}

// LiveSearchConfig 网页搜索
type LiveSearchConfig struct {
	Provider     string `yaml:"provider" toml:"provider"` // duckduckgo | tavily | firecrawl
	SearchURL    string `yaml:"search_url" toml:"search_url"`
	TavilyKey    string `yaml:"tavily_api_key" toml:"tavily_api_key"`
	FirecrawlKey string `yaml:"firecrawl_api_key" toml:"firecrawl_api_key"`
}

// BatchConfig 批处理
type BatchConfig struct {
	RecordDelay string `yaml:"record_delay" toml:"record_delay"` // 需要联网的记录之间的间隔
	MaxRecords  int    `yaml:"max_records" toml:"max_records"`
	CacheTTL    string `yaml:"cache_ttl" toml:"cache_ttl"`
}

// Default 默认配置
func Default() *Config {
	rc := resolver.DefaultConfig()
	strategies := make([]string, len(rc.Strategies))
	for i, s := range rc.Strategies {
		strategies[i] = string(s)
	}

	return &Config{
		Port: "8080",
		Catalog: CatalogConfig{
			Source:  "data/impact_factors.csv",
			Options: catalog.DefaultOptions(),
		},
		Resolver: ResolverConfig{
			Threshold:           rc.Threshold,
			Strategies:          strategies,
			ExpandAbbreviations: rc.ExpandAbbreviations,
			RemoteField:         rc.RemoteField,
		},
		LLM: LLMConfig{
			Provider: "openrouter",
		},
		LiveSearch: LiveSearchConfig{
			Provider: "duckduckgo",
		},
		Batch: BatchConfig{
			RecordDelay: service.DefaultRecordDelay.String(),
			MaxRecords:  service.MaxLimit,
			CacheTTL:    "1h",
		},
		Log: logging.DefaultConfig(),
	}
}

// Load 默认值 -> 配置文件（可选）-> 环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
}

func (c *Config) loadFromEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Catalog.Source = getEnv("CATALOG_SOURCE", c.Catalog.Source)

	c.Resolver.Threshold = getEnvInt("MATCH_THRESHOLD", c.Resolver.Threshold)
	if v := os.Getenv("STRATEGIES"); v != "" {
		c.Resolver.Strategies = splitList(v)
	}
	c.Resolver.ExpandAbbreviations = getEnvBool("EXPAND_ABBREVIATIONS", c.Resolver.ExpandAbbreviations)

	c.OpenAlex.Mailto = getEnv("OPENALEX_MAILTO", c.OpenAlex.Mailto)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.OpenRouterKey = getEnv("OPENROUTER_API_KEY", c.LLM.OpenRouterKey)
	c.LLM.OpenAIKey = getEnv("OPENAI_API_KEY", c.LLM.OpenAIKey)
	c.LLM.AnthropicKey = getEnv("ANTHROPIC_API_KEY", c.LLM.AnthropicKey)
	c.LLM.GeminiKey = getEnv("GEMINI_API_KEY", c.LLM.GeminiKey)

	c.LiveSearch.Provider = getEnv("LIVE_SEARCH_PROVIDER", c.LiveSearch.Provider)
	c.LiveSearch.TavilyKey = getEnv("TAVILY_API_KEY", c.LiveSearch.TavilyKey)
	c.LiveSearch.FirecrawlKey = getEnv("FIRECRAWL_API_KEY", c.LiveSearch.FirecrawlKey)

	c.Batch.RecordDelay = getEnv("RECORD_DELAY", c.Batch.RecordDelay)
	c.Batch.MaxRecords = getEnvInt("MAX_RECORDS", c.Batch.MaxRecords)
	c.Batch.CacheTTL = getEnv("CACHE_TTL", c.Batch.CacheTTL)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.FilePath = getEnv("LOG_FILE", c.Log.FilePath)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if _, err := c.ResolverConfig(); err != nil {
		return err
	}
	if c.Catalog.Source == "" {
		return fmt.Errorf("catalog source is required")
	}
	if _, err := c.RecordDelay(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Batch.MaxRecords < service.MinLimit || c.Batch.MaxRecords > service.MaxLimit {
		return fmt.Errorf("max_records must be between %d and %d, got %d", service.MinLimit, service.MaxLimit, c.Batch.MaxRecords)
	}
	switch strings.ToLower(c.LiveSearch.Provider) {
	case "duckduckgo", "tavily", "firecrawl":
	default:
		return fmt.Errorf("unsupported live search provider: %s", c.LiveSearch.Provider)
	}
	return c.Log.Validate()
}

// ResolverConfig 转换为解析器配置（策略名解析 + 校验）
func (c *Config) ResolverConfig() (resolver.Config, error) {
	rc := resolver.Config{
		Threshold:           c.Resolver.Threshold,
		ExpandAbbreviations: c.Resolver.ExpandAbbreviations,
		RemoteField:         c.Resolver.RemoteField,
		BlockMarkers:        c.Resolver.BlockMarkers,
	}
	for _, name := range c.Resolver.Strategies {
		src, ok := model.ParseSource(name)
		if !ok {
			return rc, fmt.Errorf("unknown strategy %q", name)
		}
		rc.Strategies = append(rc.Strategies, src)
	}
	return rc, rc.Validate()
}

// LLMClientConfig 按 provider 取对应的 key
func (c *Config) LLMClientConfig() llm.Config {
	out := llm.Config{
		Provider: strings.ToLower(c.LLM.Provider),
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
	}
	switch out.Provider {
	case "openai":
		out.APIKey = c.LLM.OpenAIKey
	case "claude", "anthropic":
		out.APIKey = c.LLM.AnthropicKey
	case "gemini":
		out.APIKey = c.LLM.GeminiKey
	default:
		out.APIKey = c.LLM.OpenRouterKey
	}
	return out
}

// RecordDelay 记录间隔
func (c *Config) RecordDelay() (time.Duration, error) {
	return parseDuration("record_delay", c.Batch.RecordDelay)
}

// CacheTTL 缓存有效期
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration("cache_ttl", c.Batch.CacheTTL)
}

func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative", name, s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
