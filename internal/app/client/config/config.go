package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendServer   = "server"
	BackendSupabase = "supabase"

	defaultServerAddress = "localhost:8080"
	defaultEnv           = "local"
	defaultConfigDir     = ".jobtag"
	defaultCloseDelayMS  = 1500
)

type Config struct {
	Env             string        `mapstructure:"app_env"`
	Backend         string        `mapstructure:"backend"`
	ServerAddress   string        `mapstructure:"server_address"`
	EnableTLS       bool          `mapstructure:"enable_tls"`
	SupabaseURL     string        `mapstructure:"supabase_url"`
	SupabaseKey     string        `mapstructure:"supabase_key"`
	ConfigDir       string        `mapstructure:"config_dir"`
	TokenPath       string        `mapstructure:"token_path"`
	CachePath       string        `mapstructure:"cache_path"`
	CloseDelay      time.Duration `mapstructure:"-"`
	RequestTimeout  time.Duration `mapstructure:"-"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
}

// Load читает .env, ~/.jobtag/config.yaml и переменные окружения
// (последние имеют приоритет).
func Load() (*Config, error) {
	for _, envPath := range []string{".env", "../.env"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("ошибка загрузки %s: %w", envPath, err)
			}
			break
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	v := viper.New()
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("BACKEND", BackendServer)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("CONFIG_DIR", filepath.Join(homeDir, defaultConfigDir))
	v.SetDefault("CREATION_CLOSE_DELAY_MS", defaultCloseDelayMS)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BREAKER_FAILURES", 5)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configDir := v.GetString("CONFIG_DIR")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения config.yaml: %w", err)
		}
	}

	cfg := &Config{
		Env:             v.GetString("APP_ENV"),
		Backend:         strings.ToLower(v.GetString("BACKEND")),
		ServerAddress:   v.GetString("SERVER_ADDRESS"),
		EnableTLS:       v.GetBool("ENABLE_TLS"),
		SupabaseURL:     v.GetString("SUPABASE_URL"),
		SupabaseKey:     v.GetString("SUPABASE_KEY"),
		ConfigDir:       configDir,
		TokenPath:       filepath.Join(configDir, "token"),
		CachePath:       filepath.Join(configDir, "snapshot.db"),
		CloseDelay:      time.Duration(v.GetInt("CREATION_CLOSE_DELAY_MS")) * time.Millisecond,
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		BreakerFailures: v.GetUint32("BREAKER_FAILURES"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendServer:
		if c.ServerAddress == "" {
			return fmt.Errorf("server_address не может быть пустым")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("для backend=supabase нужны supabase_url и supabase_key")
		}
	default:
		return fmt.Errorf("неизвестный backend %q", c.Backend)
	}
	if c.CloseDelay < 0 {
		return fmt.Errorf("creation_close_delay_ms не может быть отрицательным")
	}
	return nil
}

// BaseURL - адрес HTTP API сервера.
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

// RealtimeURL - адрес websocket с изменениями.
func (c *Config) RealtimeURL() string {
	if c.EnableTLS {
		return "wss://" + c.ServerAddress + "/api/v1/realtime"
	}
	return "ws://" + c.ServerAddress + "/api/v1/realtime"
}
