package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TransferCaps are the withdrawal ceilings for one verification level,
// in centavos.
type TransferCaps struct {
	DailyCap   int64 `mapstructure:"dailyCap"`
	MonthlyCap int64 `mapstructure:"monthlyCap"`
}

// LimitsConfig maps verification levels to their transfer caps.
type LimitsConfig struct {
	None   TransferCaps `mapstructure:"none"`
	Level1 TransferCaps `mapstructure:"level_1"`
	Level2 TransferCaps `mapstructure:"level_2"`
}

// DefaultLimitsConfig returns the built-in cap table (COP centavos).
func DefaultLimitsConfig() LimitsConfig {
	return LimitsConfig{
		None:   TransferCaps{DailyCap: 50_000_000, MonthlyCap: 200_000_000},      // 500k / 2M COP
		Level1: TransferCaps{DailyCap: 200_000_000, MonthlyCap: 2_000_000_000},   // 2M / 20M COP
		Level2: TransferCaps{DailyCap: 1_000_000_000, MonthlyCap: 10_000_000_000}, // 10M / 100M COP
	}
}

// LimitsHolder exposes the current cap table with hot reload.
type LimitsHolder struct {
	current atomic.Value // holds LimitsConfig
}

// NewLimitsHolder loads limits.yml when present, falls back to defaults, and
// watches the file for changes. Invalid reloads are ignored so a bad edit
// can never drop caps to zero at runtime.
func NewLimitsHolder(logger *zap.Logger) (*LimitsHolder, error) {
	log := logger.Named("limits.config")
	v := viper.New()

	v.SetConfigName("limits")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/gshop/config") // Volume-mounted config
	v.AddConfigPath("/etc/gshop")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("GSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultLimitsConfig()
		v.SetDefault("limits.none", defaults.None)
		v.SetDefault("limits.level_1", defaults.Level1)
		v.SetDefault("limits.level_2", defaults.Level2)
	}

	var cfg LimitsConfig
	if err := v.UnmarshalKey("limits", &cfg); err != nil {
		return nil, err
	}
	if err := validateLimitsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &LimitsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated LimitsConfig
		if err := v.UnmarshalKey("limits", &updated); err != nil {
			log.Warn("cap table reload failed", zap.Error(err))
			return
		}
		if err := validateLimitsConfig(updated); err != nil {
			log.Warn("invalid cap table ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("cap table reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticLimitsHolder wraps a fixed cap table; used by tests.
func NewStaticLimitsHolder(cfg LimitsConfig) *LimitsHolder {
	holder := &LimitsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *LimitsHolder) Get() LimitsConfig {
	return h.current.Load().(LimitsConfig)
}

func validateLimitsConfig(cfg LimitsConfig) error {
	for _, caps := range []TransferCaps{cfg.None, cfg.Level1, cfg.Level2} {
		if caps.DailyCap <= 0 || caps.MonthlyCap <= 0 {
			return errors.New("limits: caps must be positive")
		}
		if caps.DailyCap > caps.MonthlyCap {
			return errors.New("limits: dailyCap cannot exceed monthlyCap")
		}
	}
	if cfg.None.DailyCap > cfg.Level1.DailyCap || cfg.Level1.DailyCap > cfg.Level2.DailyCap {
		return errors.New("limits: daily caps must not decrease with level")
	}
	return nil
}
