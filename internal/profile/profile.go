package profile

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/hrygo/datesense/plugin/timeout"
	"github.com/hrygo/datesense/server/timezone"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DATESENSE"

// Configuration keys. Flags use the same names; env variables are
// DATESENSE_ followed by the key upper-cased with '-' replaced by '_'.
const (
	KeyMode           = "mode"
	KeyAddr           = "addr"
	KeyPort           = "port"
	KeyLocale         = "locale"
	KeyTimezone       = "timezone"
	KeyForwardDate    = "forward-date"
	KeyStrict         = "strict"
	KeyConcurrency    = "concurrency"
	KeyMaxInputLength = "max-input-length"
	KeyMaxBatchSize   = "max-batch-size"
	KeyRateLimit      = "rate-limit"
	KeyRateBurst      = "rate-burst"
	KeyContextChars   = "context-chars"
	KeyCacheSize      = "cache-size"
	KeyCacheTTL       = "cache-ttl"
	KeyLogLevel       = "log-level"
)

// Profile is the configuration shared by the CLI and the server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string `mapstructure:"mode"`
	// Addr is the binding address for server
	Addr string `mapstructure:"addr"`
	// Port is the binding port for server
	Port int `mapstructure:"port"`
	// Locale is the BCP 47 tag used when a request names none.
	Locale string `mapstructure:"locale"`
	// Timezone is the IANA zone or UTC offset used when a request names none.
	Timezone string `mapstructure:"timezone"`
	// ForwardDate and Strict are the default parse options.
	ForwardDate bool `mapstructure:"forward-date"`
	Strict      bool `mapstructure:"strict"`
	// Concurrency bounds the documents parsed at once in a batch.
	Concurrency    int `mapstructure:"concurrency"`
	MaxInputLength int `mapstructure:"max-input-length"`
	MaxBatchSize   int `mapstructure:"max-batch-size"`
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64 `mapstructure:"rate-limit"`
	RateBurst int     `mapstructure:"rate-burst"`
	// ContextChars is the snippet width around each match; zero disables snippets.
	ContextChars int `mapstructure:"context-chars"`
	// CacheSize bounds the parse result cache; zero disables caching.
	CacheSize int           `mapstructure:"cache-size"`
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`
	LogLevel  string        `mapstructure:"log-level"`
	// Version is the current version of server
	Version string `mapstructure:"-"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMode, "demo")
	v.SetDefault(KeyAddr, "")
	v.SetDefault(KeyPort, 8081)
	v.SetDefault(KeyLocale, "en-US")
	v.SetDefault(KeyTimezone, timezone.TimezoneUTC)
	v.SetDefault(KeyForwardDate, false)
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyConcurrency, timeout.DefaultConcurrency)
	v.SetDefault(KeyMaxInputLength, timeout.MaxInputLength)
	v.SetDefault(KeyMaxBatchSize, timeout.MaxBatchSize)
	v.SetDefault(KeyRateLimit, 10.0)
	v.SetDefault(KeyRateBurst, 20)
	v.SetDefault(KeyContextChars, 40)
	v.SetDefault(KeyCacheSize, 1024)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty configFile is read as YAML.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

// Load builds a profile from v. Flags bound to v take precedence over env,
// env over the config file, and the config file over defaults.
func Load(v *viper.Viper) (*Profile, error) {
	p := &Profile{}
	if err := v.Unmarshal(p); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return p, nil
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Address returns the host:port the server listens on.
func (p *Profile) Address() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// Location returns the default timezone. Call after Validate.
func (p *Profile) Location() *time.Location {
	return timezone.MustParseTimezone(p.Timezone)
}

// SlogLevel returns the configured log level, or info when unrecognised.
func (p *Profile) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.Locale == "" {
		p.Locale = "en-US"
	}
	if _, err := language.Parse(p.Locale); err != nil {
		return errors.Wrapf(err, "invalid locale %q", p.Locale)
	}

	if p.Timezone == "" {
		p.Timezone = timezone.TimezoneUTC
	}
	if _, err := timezone.ParseTimezone(p.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}

	if p.Concurrency < 1 || p.Concurrency > 64 {
		return errors.Errorf("concurrency must be between 1 and 64, got %d", p.Concurrency)
	}
	if p.MaxInputLength < 1 {
		return errors.Errorf("max input length must be positive, got %d", p.MaxInputLength)
	}
	if p.MaxBatchSize < 1 {
		return errors.Errorf("max batch size must be positive, got %d", p.MaxBatchSize)
	}
	if p.RateLimit < 0 || p.RateBurst < 0 {
		return errors.Errorf("rate limit must not be negative, got %v/%d", p.RateLimit, p.RateBurst)
	}
	if p.ContextChars < 0 {
		return errors.Errorf("context chars must not be negative, got %d", p.ContextChars)
	}

	if p.CacheSize < 0 || p.CacheTTL < 0 {
		return errors.Errorf("cache size and ttl must not be negative, got %d/%s", p.CacheSize, p.CacheTTL)
	}
	if p.CacheSize > 0 && p.CacheTTL == 0 {
		p.CacheTTL = 5 * time.Minute
	}

	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", p.LogLevel)
	}
	return nil
}
