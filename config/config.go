package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Configuration struct {
	ApiPort string `json:"api_port" yaml:"api_port"`
	LogMode string `json:"log_mode" yaml:"log_mode"` // "dev" ou "prod"

	Database string `json:"database" yaml:"database"` // "sqlite3" ou "postgres"
	DbPath   string `json:"db_path" yaml:"db_path"`
	DbHost   string `json:"db_host" yaml:"db_host"`
	DbPort   string `json:"db_port" yaml:"db_port"`
	DbUser   string `json:"db_user" yaml:"db_user"`
	DbName   string `json:"db_name" yaml:"db_name"`
	DbPass   string `json:"db_pass" yaml:"db_pass"`
	DbDebug  bool   `json:"db_debug" yaml:"db_debug"`

	DictionaryPath string `json:"dictionary_path" yaml:"dictionary_path"`

	OpenAI  OpenAIConfig  `json:"openai" yaml:"openai"`
	Game    GameConfig    `json:"game" yaml:"game"`
	Redis   RedisConfig   `json:"redis" yaml:"redis"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	Cors struct {
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
	} `json:"cors" yaml:"cors"`
}

type OpenAIConfig struct {
	ApiKey             string  `json:"api_key" yaml:"api_key"`
	BaseURL            string  `json:"base_url" yaml:"base_url"`
	Model              string  `json:"model" yaml:"model"`
	JudgeModel         string  `json:"judge_model" yaml:"judge_model"`
	EmbeddingModel     string  `json:"embedding_model" yaml:"embedding_model"`
	EmbeddingDimension int     `json:"embedding_dimension" yaml:"embedding_dimension"`
	Temperature        float64 `json:"temperature" yaml:"temperature"`
	MaxOutputTokens    int     `json:"max_output_tokens" yaml:"max_output_tokens"`
	TimeoutSeconds     int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond  float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

type GameConfig struct {
	MaxAttempts        int   `json:"max_attempts" yaml:"max_attempts"`
	RoundLengthSeconds int   `json:"round_length_seconds" yaml:"round_length_seconds"`
	RecordBatchSize    int   `json:"record_batch_size" yaml:"record_batch_size"`
	ScanLimit          int   `json:"scan_limit" yaml:"scan_limit"`
	SessionTTLMinutes  int   `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	IndividualQueries  *bool `json:"individual_queries" yaml:"individual_queries"`
}

type RedisConfig struct {
	Addr       string `json:"addr" yaml:"addr"`
	Password   string `json:"password" yaml:"password"`
	DB         int    `json:"db" yaml:"db"`
	TTLMinutes int    `json:"ttl_minutes" yaml:"ttl_minutes"`
}

// TracingConfig liga o OpenTelemetry. Sem endpoint OTLP os spans vão para stdout.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	ServiceName string  `json:"service_name" yaml:"service_name"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`
	Insecure    bool    `json:"insecure" yaml:"insecure"`
	SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio"`
}

func (g GameConfig) RoundLength() time.Duration {
	return time.Duration(g.RoundLengthSeconds) * time.Second
}

func (g GameConfig) SessionTTL() time.Duration {
	return time.Duration(g.SessionTTLMinutes) * time.Minute
}

func (g GameConfig) UseIndividualQueries() bool {
	return g.IndividualQueries == nil || *g.IndividualQueries
}

// Load lê o arquivo de configuração (json ou yaml, pela extensão), aplica os
// defaults e depois as variáveis de ambiente. Arquivo ausente não é erro.
func Load(path string) (Configuration, error) {
	var c Configuration

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return c, fmt.Errorf("read config: %w", err)
		default:
			if err := decode(path, b, &c); err != nil {
				return c, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()
	return c, nil
}

func decode(path string, b []byte, c *Configuration) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, c)
	default:
		return json.Unmarshal(b, c)
	}
}

func (c *Configuration) applyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPath == "" {
		c.DbPath = "db/database.db"
	}
	if c.DictionaryPath == "" {
		c.DictionaryPath = "dictionary.txt"
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4.1-mini"
	}
	if c.OpenAI.JudgeModel == "" {
		c.OpenAI.JudgeModel = "gpt-4.1-nano"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.EmbeddingDimension <= 0 {
		c.OpenAI.EmbeddingDimension = 1536
	}
	if c.OpenAI.Temperature <= 0 {
		c.OpenAI.Temperature = 0.9
	}
	if c.OpenAI.MaxOutputTokens <= 0 {
		c.OpenAI.MaxOutputTokens = 16
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = 30
	}
	if c.OpenAI.RequestsPerSecond <= 0 {
		c.OpenAI.RequestsPerSecond = 10
	}

	if c.Game.MaxAttempts <= 0 {
		c.Game.MaxAttempts = 25
	}
	if c.Game.RoundLengthSeconds <= 0 {
		c.Game.RoundLengthSeconds = 25
	}
	if c.Game.RecordBatchSize <= 0 {
		c.Game.RecordBatchSize = 20
	}
	if c.Game.ScanLimit <= 0 {
		c.Game.ScanLimit = 10000
	}
	if c.Game.SessionTTLMinutes <= 0 {
		c.Game.SessionTTLMinutes = 30
	}

	if c.Redis.TTLMinutes <= 0 {
		c.Redis.TTLMinutes = 24 * 60
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "mindmeld"
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}

	if len(c.Cors.AllowOrigins) == 0 {
		c.Cors.AllowOrigins = []string{"http://localhost:3000"}
	}
}

func (c *Configuration) applyEnvOverrides() {
	setString(&c.ApiPort, "PORT")
	setString(&c.LogMode, "LOG_MODE")
	setString(&c.Database, "DATABASE")
	setString(&c.DbPath, "DB_PATH")
	setString(&c.DbHost, "DB_HOST")
	setString(&c.DbPort, "DB_PORT")
	setString(&c.DbUser, "DB_USER")
	setString(&c.DbName, "DB_NAME")
	setString(&c.DbPass, "DB_PASS")
	setString(&c.DictionaryPath, "DICTIONARY_PATH")

	setString(&c.OpenAI.ApiKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.OpenAI.JudgeModel, "OPENAI_JUDGE_MODEL")
	setString(&c.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")
	setInt(&c.OpenAI.EmbeddingDimension, "OPENAI_EMBEDDING_DIMENSION")

	setInt(&c.Game.MaxAttempts, "GAME_MAX_ATTEMPTS")
	setInt(&c.Game.RoundLengthSeconds, "GAME_ROUND_LENGTH_SECONDS")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setBool(&c.Tracing.Enabled, "OTEL_ENABLED")
	setString(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&c.Tracing.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
	if v := strings.TrimSpace(os.Getenv("OTEL_SAMPLER_RATIO")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tracing.SampleRatio = f
		}
	}

	if v := strings.TrimSpace(os.Getenv("FRONTEND_ORIGIN")); v != "" {
		c.Cors.AllowOrigins = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, key string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}
