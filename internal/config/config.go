package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	Token          string        `mapstructure:"token"`
	TargetURL      string        `mapstructure:"target_url"`
	AuthHeader     string        `mapstructure:"auth_header"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	DebounceWindow time.Duration `mapstructure:"debounce_window"`
	MoveDelay      time.Duration `mapstructure:"move_delay"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("debounce_window", "1200ms")
	v.SetDefault("move_delay", "200ms")
	v.SetDefault("call_timeout", "10s")

	// Secrets come from the environment, never the yaml file.
	_ = v.BindEnv("token", "DISCORD_TOKEN")
	_ = v.BindEnv("target_url", "TARGET_URL")
	_ = v.BindEnv("auth_header", "AUTH_HEADER")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Debounce: %s\n", cfg.Mode, cfg.Port, cfg.DebounceWindow)
	return &cfg, nil
}

// validate covers the credentials the process cannot run without.
// Missing ones are fatal at startup, not degraded at runtime.
func (c *Config) validate() error {
	if c.Token == "" {
		return errors.New("missing DISCORD_TOKEN")
	}
	if c.TargetURL == "" {
		return errors.New("missing TARGET_URL")
	}
	return nil
}
