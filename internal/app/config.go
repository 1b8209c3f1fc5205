package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/promotion"
)

// DefaultFiles are the config files probed by LoadConfig, first found wins.
var DefaultFiles = []string{"config.yaml", "/etc/pricing/config.yaml"}

// Config holds the complete application configuration, loadable from
// environment variables (PRICING_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string           `default:"0.0.0.0:8080" usage:"API server listen address" yaml:"addr"`
	Promotions PromotionsConfig `yaml:"promotions"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Graceful   GracefulConfig   `yaml:"graceful"`
}

// RateLimitConfig controls the per-client sliding window rate limiter on
// the API routes. Max 0 disables it.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window" yaml:"max"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration" yaml:"window"`
}

// PromotionsConfig parametrizes the built-in promotions. Rates are
// fractions written as decimal strings.
type PromotionsConfig struct {
	Fidelity   FidelityConfig   `yaml:"fidelity"`
	BulkItem   BulkItemConfig   `yaml:"bulk_item"`
	LargeOrder LargeOrderConfig `yaml:"large_order"`
}

// FidelityConfig configures the loyalty promotion.
type FidelityConfig struct {
	Disabled  bool   `default:"false" usage:"Disable the fidelity promotion" yaml:"disabled"`
	Threshold int    `default:"1000" usage:"Minimum fidelity points" yaml:"threshold"`
	Rate      string `default:"0.05" usage:"Fraction of the total discounted" yaml:"rate"`
}

// BulkItemConfig configures the per-line bulk promotion.
type BulkItemConfig struct {
	Disabled    bool   `default:"false" usage:"Disable the bulk item promotion" yaml:"disabled"`
	MinQuantity int    `default:"20" usage:"Minimum units on a line" yaml:"min_quantity"`
	Rate        string `default:"0.10" usage:"Fraction of each qualifying line discounted" yaml:"rate"`
}

// LargeOrderConfig configures the distinct-products promotion.
type LargeOrderConfig struct {
	Disabled    bool   `default:"false" usage:"Disable the large order promotion" yaml:"disabled"`
	MinDistinct int    `default:"10" usage:"Minimum distinct products" yaml:"min_distinct"`
	Rate        string `default:"0.07" usage:"Fraction of the total discounted" yaml:"rate"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay" yaml:"readiness_delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout" yaml:"shutdown_timeout"`
}

// LoadConfig loads configuration from flags, environment variables and the
// default YAML files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{Files: DefaultFiles})
}

// LoadConfigFiles is like LoadConfig but reads only the given files and
// skips command-line flags, for callers that own flag parsing.
func LoadConfigFiles(files ...string) (*Config, error) {
	return loadConfig(aconfig.Config{Files: files, SkipFlags: true})
}

func loadConfig(base aconfig.Config) (*Config, error) {
	base.EnvPrefix = "PRICING"
	base.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}

	var cfg Config
	if err := aconfig.LoaderFor(&cfg, base).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.Promotions.Settings(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults honours the PORT variable set by hosting platforms.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

// Settings converts the configuration into promotion settings.
func (c PromotionsConfig) Settings() (promotion.Settings, error) {
	fidelityRate, err := parseRate("fidelity", c.Fidelity.Rate)
	if err != nil {
		return promotion.Settings{}, err
	}
	bulkRate, err := parseRate("bulk_item", c.BulkItem.Rate)
	if err != nil {
		return promotion.Settings{}, err
	}
	largeRate, err := parseRate("large_order", c.LargeOrder.Rate)
	if err != nil {
		return promotion.Settings{}, err
	}

	return promotion.Settings{
		Fidelity: promotion.FidelitySettings{
			Disabled:  c.Fidelity.Disabled,
			Threshold: c.Fidelity.Threshold,
			Rate:      fidelityRate,
		},
		BulkItem: promotion.BulkItemSettings{
			Disabled:    c.BulkItem.Disabled,
			MinQuantity: c.BulkItem.MinQuantity,
			Rate:        bulkRate,
		},
		LargeOrder: promotion.LargeOrderSettings{
			Disabled:    c.LargeOrder.Disabled,
			MinDistinct: c.LargeOrder.MinDistinct,
			Rate:        largeRate,
		},
	}, nil
}

// Registry builds the promotion registry described by the configuration.
func (c PromotionsConfig) Registry() (*promotion.Registry, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	r, err := promotion.Build(s)
	if err != nil {
		return nil, errors.Wrap(err, "build promotions")
	}
	return r, nil
}

func parseRate(name, v string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse %s rate %q", name, v)
	}
	return rate, nil
}
