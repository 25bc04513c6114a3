package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress    = ":8080"
	defaultMigrations    = "migrations"
	defaultNotifyChannel = "applications_changes"
	defaultSessionTTL    = 24 * time.Hour
)

type Config struct {
	Env      string
	DB       db
	Server   server
	Realtime realtime
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string        `env:"RUN_ADDRESS"`
	SessionTTL time.Duration `env:"SESSION_TTL"`
}

type realtime struct {
	NotifyChannel string `env:"NOTIFY_CHANNEL"`
}

// MustLoad читает .env (если есть) и переменные окружения.
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("NOTIFY_CHANNEL", defaultNotifyChannel)
	viper.SetDefault("SESSION_TTL", defaultSessionTTL)

	cfg := Config{
		Env: viper.GetString("APP_ENV"),
		DB: db{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: server{
			RunAddress: viper.GetString("RUN_ADDRESS"),
			SessionTTL: viper.GetDuration("SESSION_TTL"),
		},
		Realtime: realtime{NotifyChannel: viper.GetString("NOTIFY_CHANNEL")},
	}

	if cfg.DB.DatabaseURI == "" {
		log.Fatalln("DATABASE_URI is required")
	}

	return &cfg
}
