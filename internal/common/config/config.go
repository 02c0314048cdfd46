package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds everything the API server reads from the environment.
type ServerConfig struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL     string        `envconfig:"DATABASE_URL" validate:"required"`
	LogDir          string        `envconfig:"LOG_DIR"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"INFO"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	EventBufferSize int           `envconfig:"EVENT_BUFFER_SIZE" default:"16" validate:"gt=0"`
}

// ClientConfig holds the terminal client settings. The poll intervals default
// to the cadence the chat room was designed around: messages every second,
// users every five seconds, a liveness touch every thirty.
type ClientConfig struct {
	ServerURL        string        `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080/graphql" validate:"required,url"`
	IdentityFile     string        `envconfig:"CHAT_IDENTITY_FILE"`
	SyncStrategy     string        `envconfig:"CHAT_SYNC_STRATEGY" default:"poll" validate:"oneof=poll push"`
	MessagesInterval time.Duration `envconfig:"CHAT_MESSAGES_INTERVAL" default:"1s" validate:"gt=0"`
	UsersInterval    time.Duration `envconfig:"CHAT_USERS_INTERVAL" default:"5s" validate:"gt=0"`
	LastSeenInterval time.Duration `envconfig:"CHAT_LAST_SEEN_INTERVAL" default:"30s" validate:"gt=0"`
	RequestTimeout   time.Duration `envconfig:"CHAT_REQUEST_TIMEOUT" default:"5s"`
	LogDir           string        `envconfig:"LOG_DIR"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"INFO"`
}

var validate = validator.New()

func LoadServerConfig() (ServerConfig, error) {
	loadDotEnv()

	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

func LoadClientConfig() (ClientConfig, error) {
	loadDotEnv()

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv is best-effort: a missing .env file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}
