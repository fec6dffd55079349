package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string        `mapstructure:"mode"`
	Port     int           `mapstructure:"port"`
	LogLevel string        `mapstructure:"log_level"`
	Secret   string        `mapstructure:"secret"`
	Gateway  GatewayConfig `mapstructure:"gateway"`
	Resend   ResendConfig  `mapstructure:"resend"`
	Cache    CacheConfig   `mapstructure:"cache"`
}

type GatewayConfig struct {
	URL          string        `mapstructure:"url"`
	Token        string        `mapstructure:"token"`
	UserID       string        `mapstructure:"user_id"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
	RedialMin    time.Duration `mapstructure:"redial_min"`
	RedialMax    time.Duration `mapstructure:"redial_max"`
}

type ResendConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	Jitter          float64       `mapstructure:"jitter"`
	MaxAttempts     uint64        `mapstructure:"max_attempts"`
	MaxElapsed      time.Duration `mapstructure:"max_elapsed"`
}

type CacheConfig struct {
	RetainOnDisconnect bool `mapstructure:"retain_on_disconnect"`
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults.
// VOICE_* variables override both, e.g. VOICE_GATEWAY_TOKEN.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("VOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Resend.PollInterval <= 0 {
		return nil, fmt.Errorf("resend.poll_interval must be positive, got %s", cfg.Resend.PollInterval)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("gateway", cfg.Gateway.URL).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "voicegate-dev-secret")

	v.SetDefault("gateway.url", "ws://127.0.0.1:9000/gateway")
	v.SetDefault("gateway.token", "")
	v.SetDefault("gateway.user_id", "")
	v.SetDefault("gateway.send_buffer", 64)
	v.SetDefault("gateway.write_timeout", "5s")
	v.SetDefault("gateway.rate_limit", 5)
	v.SetDefault("gateway.rate_interval", "5s")
	v.SetDefault("gateway.redial_min", "1s")
	v.SetDefault("gateway.redial_max", "30s")

	v.SetDefault("resend.poll_interval", "1s")
	v.SetDefault("resend.initial_interval", "2s")
	v.SetDefault("resend.max_interval", "30s")
	v.SetDefault("resend.multiplier", 2.0)
	v.SetDefault("resend.jitter", 0.1)
	v.SetDefault("resend.max_attempts", 10)
	v.SetDefault("resend.max_elapsed", "0s")

	v.SetDefault("cache.retain_on_disconnect", false)
}
