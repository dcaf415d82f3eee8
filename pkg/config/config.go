package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sintamutiara6922-star/kazzah-pay/pkg/logger"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  logger.Config `yaml:"logger"`
	Redis   RedisConfig   `yaml:"redis"`
	Gateway GatewayConfig `yaml:"gateway"`
	Payment PaymentConfig `yaml:"payment"`
	Webhook WebhookConfig `yaml:"webhook"`
	Admin   AdminConfig   `yaml:"admin"`
	JWT     JWTConfig     `yaml:"jwt"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// GatewayConfig selects the active provider at process start; both provider
// sections are kept so a stored transaction from either gateway can still be
// reconciled after a switch.
type GatewayConfig struct {
	Provider string         `yaml:"provider"` // "atlantic" or "pakasir"
	Atlantic AtlanticConfig `yaml:"atlantic"`
	Pakasir  PakasirConfig  `yaml:"pakasir"`
}

type AtlanticConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type PakasirConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	ProjectSlug string        `yaml:"project_slug"`
	Timeout     time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	MinAmount int64  `yaml:"min_amount"`
	MaxAmount int64  `yaml:"max_amount"`
	PublicURL string `yaml:"public_url"`
}

type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

type AdminConfig struct {
	Email      string        `yaml:"email"`
	Password   string        `yaml:"password"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

func Load() (*Config, error) {
	// .env is optional in deployed environments; secrets may come from the
	// process environment directly.
	_ = godotenv.Load()

	var config Config
	configData, err := os.ReadFile("./config.yaml")
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, err
	}

	config.applyEnvOverrides()
	config.applyDefaults()

	return &config, nil
}

// Secrets are never committed with the YAML file; the environment wins.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAYMENT_GATEWAY"); v != "" {
		c.Gateway.Provider = v
	}
	if v := os.Getenv("ATLANTIC_API_KEY"); v != "" {
		c.Gateway.Atlantic.APIKey = v
	}
	if v := os.Getenv("PAKASIR_API_KEY"); v != "" {
		c.Gateway.Pakasir.APIKey = v
	}
	if v := os.Getenv("PAKASIR_PROJECT_SLUG"); v != "" {
		c.Gateway.Pakasir.ProjectSlug = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("USER_ADMIN"); v != "" {
		c.Admin.Email = v
	}
	if v := os.Getenv("PASS_ADMIN"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Gateway.Provider == "" {
		c.Gateway.Provider = "atlantic"
	}
	if c.Gateway.Atlantic.BaseURL == "" {
		c.Gateway.Atlantic.BaseURL = "https://atlantich2h.com"
	}
	if c.Gateway.Atlantic.Timeout == 0 {
		c.Gateway.Atlantic.Timeout = 30 * time.Second
	}
	if c.Gateway.Pakasir.BaseURL == "" {
		c.Gateway.Pakasir.BaseURL = "https://app.pakasir.com/api"
	}
	if c.Gateway.Pakasir.Timeout == 0 {
		c.Gateway.Pakasir.Timeout = 30 * time.Second
	}
	if c.Payment.MinAmount == 0 {
		c.Payment.MinAmount = 1000
	}
	if c.Payment.MaxAmount == 0 {
		c.Payment.MaxAmount = 10000000
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "paymenthub:"
	}
	if c.Admin.SessionTTL == 0 {
		c.Admin.SessionTTL = 24 * time.Hour
	}
}
