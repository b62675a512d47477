package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig holds the tunable pricing knobs that operators may
// change without redeploying: the free device allowance, the fallback
// reference period for proration, and quote endpoint rate limits.
type PricingConfig struct {
	IncludedDevices      int     `mapstructure:"includedDevices"`
	DefaultReferenceDays int     `mapstructure:"defaultReferenceDays"`
	QuoteRateLimit       float64 `mapstructure:"quoteRateLimit"`
	QuoteRateBurst       int     `mapstructure:"quoteRateBurst"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		IncludedDevices:      0,
		DefaultReferenceDays: 30,
		QuoteRateLimit:       50,
		QuoteRateBurst:       100,
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/subwave/config") // Volume-mounted config
	v.AddConfigPath("/etc/subwave")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("SUBWAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.includedDevices", defaults.IncludedDevices)
		v.SetDefault("pricing.defaultReferenceDays", defaults.DefaultReferenceDays)
		v.SetDefault("pricing.quoteRateLimit", defaults.QuoteRateLimit)
		v.SetDefault("pricing.quoteRateBurst", defaults.QuoteRateBurst)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPricingConfigHolder wraps a fixed config with no file
// watching. Intended for tests.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.IncludedDevices < 0 {
		return errors.New("pricing.includedDevices cannot be negative")
	}
	if cfg.DefaultReferenceDays <= 0 {
		return errors.New("pricing.defaultReferenceDays must be positive")
	}
	if cfg.QuoteRateLimit <= 0 {
		return errors.New("pricing.quoteRateLimit must be positive")
	}
	if cfg.QuoteRateBurst <= 0 {
		return errors.New("pricing.quoteRateBurst must be positive")
	}
	return nil
}
