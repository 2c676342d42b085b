package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	Secret         string        `mapstructure:"secret"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	Backpressure   string        `mapstructure:"backpressure"`
	ICEServers     []string      `mapstructure:"ice_servers"`
	TURNUsername   string        `mapstructure:"turn_username"`
	TURNCredential string        `mapstructure:"turn_credential"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// Default returns the configuration used when no file or env override is present.
func Default() *Config {
	return &Config{
		Mode:         "release",
		Port:         8080,
		LogLevel:     "info",
		ReadLimit:    32768,
		PingPeriod:   54 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    5 * time.Second,
		SendBuffer:   64,
		Backpressure: "drop",
		ICEServers:   []string{"stun:stun.l.google.com:19302"},
	}
}

// Load reads config/config.<CONFIG_ENV>.yaml (or CONFIG_FILE) and applies
// RELAY_* environment overrides on top.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	fileName := os.Getenv("CONFIG_FILE")
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("secret", "")
	v.SetDefault("read_limit", d.ReadLimit)
	v.SetDefault("ping_period", d.PingPeriod.String())
	v.SetDefault("pong_wait", d.PongWait.String())
	v.SetDefault("write_wait", d.WriteWait.String())
	v.SetDefault("send_buffer", d.SendBuffer)
	v.SetDefault("backpressure", d.Backpressure)
	v.SetDefault("ice_servers", d.ICEServers)
	v.SetDefault("turn_username", "")
	v.SetDefault("turn_credential", "")
	v.SetDefault("allowed_origins", []string{})

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no session secret configured, generated an ephemeral one")
	}

	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("backpressure", cfg.Backpressure).
		Strs("ice_servers", cfg.ICEServers).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.Backpressure {
	case "", "drop", "kick":
	default:
		return fmt.Errorf("%w: backpressure %q", ErrInvalidConfig, c.Backpressure)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("%w: read_limit must be positive", ErrInvalidConfig)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("%w: send_buffer must be positive", ErrInvalidConfig)
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		return fmt.Errorf("%w: ping_period %s must be positive and shorter than pong_wait %s", ErrInvalidConfig, c.PingPeriod, c.PongWait)
	}
	if c.WriteWait <= 0 {
		return fmt.Errorf("%w: write_wait must be positive", ErrInvalidConfig)
	}
	return nil
}
