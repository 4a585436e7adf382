package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Env - параметры процесса из окружения (и .env, если он есть).
type Env struct {
	Token    string `env:"DISCORD_TOKEN,required"`
	ClientID string `env:"DISCORD_CLIENT_ID,required"`
	ServerID string `env:"DISCORD_SERVER_ID,required"`

	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.yaml"`
	LogFile    string `env:"LOG_FILE" envDefault:"backend.log"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"10m"`
	PurgeDelay     time.Duration `env:"PURGE_DELAY" envDefault:"500ms"`
	ServerDelay    time.Duration `env:"SERVER_DELAY" envDefault:"1s"`
	QueryTimeout   time.Duration `env:"QUERY_TIMEOUT" envDefault:"5s"`
	QueryRetries   int           `env:"QUERY_RETRIES" envDefault:"3"`

	OpsAddr  string `env:"OPS_ADDR"`
	LockFile string `env:"LOCK_FILE" envDefault:"statusbot.lock"`
}

// LoadEnv подхватывает .env (отсутствие файла не ошибка) и разбирает окружение.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	_ = godotenv.Load(dotenvFiles...)

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (e *Env) Validate() error {
	if e.StatusInterval <= 0 {
		return fmt.Errorf("STATUS_INTERVAL must be positive, got %v", e.StatusInterval)
	}
	if e.PurgeDelay < 0 || e.ServerDelay < 0 {
		return fmt.Errorf("PURGE_DELAY and SERVER_DELAY must not be negative")
	}
	if e.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive, got %v", e.QueryTimeout)
	}
	if e.QueryRetries < 1 {
		return fmt.Errorf("QUERY_RETRIES must be at least 1, got %d", e.QueryRetries)
	}
	return nil
}
