package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DataDir      string `default:"data" usage:"Directory holding the catalog document" flag:"data-dir"`
	UploadDir    string `default:"public/uploads" usage:"Directory for uploaded product images" flag:"upload-dir"`
	ClientDist   string `default:"client/dist" usage:"SPA build directory served as the site" flag:"client-dist"`
	AdminPass    string `usage:"Shared secret for admin endpoints (SHOP_ADMIN_PASS or ADMIN_PASS)" flag:"admin-pass"`
	MaxBodyBytes int64  `default:"15728640" usage:"Request body size cap (accommodates base64 image uploads)" flag:"max-body-bytes"`
	Telegram     TelegramConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// TelegramConfig holds the notification bot credentials. Both may stay empty:
// the server boots and browsing works, order submission reports the
// misconfiguration.
type TelegramConfig struct {
	BotToken string `usage:"Telegram bot token (SHOP_TELEGRAM_BOT_TOKEN or BOT_TOKEN)" flag:"bot-token"`
	ChatID   string `usage:"Telegram chat receiving orders (SHOP_TELEGRAM_CHAT_ID or CHAT_ID)" flag:"chat-id"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps the bare environment names PaaS hosts inject
// (Render-style PORT plus BOT_TOKEN/CHAT_ID/ADMIN_PASS) onto the
// SHOP_-prefixed configuration, so those deployments need no extra setup.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.AdminPass == "" {
		c.AdminPass = os.Getenv("ADMIN_PASS")
	}
	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = os.Getenv("BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		c.Telegram.ChatID = os.Getenv("CHAT_ID")
	}
}
