package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every knob the backend reads from the environment. Defaults
// are tuned for a single-user local install; only the collaboration and
// history features need extra configuration.
type Config struct {
	ListenAddr       string `envconfig:"LISTEN_ADDR" default:":8743"`
	CollabListenAddr string `envconfig:"COLLAB_LISTEN_ADDR" default:":8744"`

	WorkspaceRoot string `envconfig:"WORKSPACE_ROOT" default:"."`

	OllamaURL string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	QueueSize  int `envconfig:"REQUEST_QUEUE_SIZE" default:"32"`
	MaxWorkers int `envconfig:"REQUEST_QUEUE_WORKERS" default:"16"`

	ExecMaxTimeoutMs int `envconfig:"EXEC_MAX_TIMEOUT_MS" default:"30000"`

	// Optional publish-only mirror of collaboration events.
	RedisURL  string `envconfig:"COLLAB_REDIS_URL" default:""`
	RedisPass string `envconfig:"COLLAB_REDIS_PASS" default:""`

	// When both are set, the collab websocket requires a token minted from
	// the shared password. Empty means open access (local use).
	CollabTokenSecret  string `envconfig:"COLLAB_TOKEN_SECRET" default:""`
	CollabPasswordHash string `envconfig:"COLLAB_PASSWORD_HASH" default:""`

	// AI conversation history store. Disabled unless a region is set.
	AWSRegion        string `envconfig:"AWS_REGION" default:""`
	AWSID            string `envconfig:"AWS_ID" default:""`
	AWSSecret        string `envconfig:"AWS_SECRET" default:""`
	AWSToken         string `envconfig:"AWS_TOKEN" default:""`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	root, err := filepath.Abs(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("config: resolve workspace root: %w", err)
	}
	cfg.WorkspaceRoot = root

	return &cfg, nil
}

// HistoryEnabled reports whether the conversation history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.AWSRegion != ""
}

// CollabAuthEnabled reports whether collab connections must present a token.
func (c *Config) CollabAuthEnabled() bool {
	return c.CollabTokenSecret != "" && c.CollabPasswordHash != ""
}

// MirrorEnabled reports whether collab events are mirrored to Redis.
func (c *Config) MirrorEnabled() bool {
	return c.RedisURL != ""
}
