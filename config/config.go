package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const envPrefix = "STATUS_CHECKER"

const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

var errDurationOutOfRange = errors.New("out of range")

type RunConfig struct {
	Workers int    `mapstructure:"workers"`
	Timeout string `mapstructure:"timeout"`
	Retries int    `mapstructure:"retries"`
}

type RetryConfig struct {
	Backoff    string `mapstructure:"backoff"`
	MaxBackoff string `mapstructure:"max_backoff"`
}

// BreakerConfig controls per-host circuit breaking. A zero Threshold disables it.
type BreakerConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	ResetTimeout string `mapstructure:"reset_timeout"`
}

type InputConfig struct {
	File string   `mapstructure:"file"`
	URLs []string `mapstructure:"urls"`
}

type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
	AddSource   bool   `mapstructure:"add_source"`
}

// MetricsConfig enables the live metrics endpoint when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// KafkaConfig enables result publishing when Broker is set.
type KafkaConfig struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
}

// RedisConfig enables report storage when Address is set.
type RedisConfig struct {
	Address string `mapstructure:"address"`
	Prefix  string `mapstructure:"prefix"`
	TTL     string `mapstructure:"ttl"`
}

type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// Load parses args (without the program name) and merges them with the
// environment and the config file. It returns pflag.ErrHelp when help was
// requested.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}
	if urls := fs.Args(); len(urls) > 0 {
		v.Set("input.urls", urls)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Usage returns the flag help text.
func Usage() string {
	return "Usage: status-checker [flags] [URL ...]\n\n" + newFlagSet().FlagUsages()
}

var flagKeys = map[string]string{
	"input.file":        "file",
	"run.workers":       "workers",
	"run.timeout":       "timeout",
	"run.retries":       "retries",
	"retry.backoff":     "backoff",
	"output.path":       "output",
	"output.format":     "format",
	"logging.level":     "log-level",
	"metrics.address":   "metrics-addr",
	"breaker.threshold": "breaker-threshold",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("status-checker", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringP("file", "f", "", "file with one URL per line")
	fs.IntP("workers", "w", 4, "number of concurrent workers")
	fs.StringP("timeout", "t", "5s", "per-attempt timeout, in seconds or as a duration")
	fs.IntP("retries", "r", 0, "retries after a failed attempt")
	fs.String("backoff", "100ms", "delay before the first retry, doubled on each retry")
	fs.StringP("output", "o", "status.json", "report file path")
	fs.String("format", FormatJSON, "report format (json, yaml)")
	fs.StringP("config", "c", "", "config file path")
	fs.String("log-level", LogLevelInfo, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", "", "serve live metrics on this address during the run")
	fs.Int("breaker-threshold", 0, "consecutive failures that open a host's circuit, 0 disables")

	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.workers", 4)
	v.SetDefault("run.timeout", "5s")
	v.SetDefault("run.retries", 0)
	v.SetDefault("retry.backoff", "100ms")
	v.SetDefault("retry.max_backoff", "2s")
	v.SetDefault("breaker.threshold", 0)
	v.SetDefault("breaker.reset_timeout", "30s")
	v.SetDefault("input.file", "")
	v.SetDefault("input.urls", []string{})
	v.SetDefault("output.path", "status.json")
	v.SetDefault("output.format", FormatJSON)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.environment", EnvDev)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("metrics.address", "")
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.topic", "status-checks")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.prefix", "status-checker:report:")
	v.SetDefault("redis.ttl", "24h")
}

// readConfigFile reads an explicit file, which must exist, or looks for an
// optional status-checker.yaml.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("status-checker")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))

	return nil
}

// ParseDuration accepts a Go duration ("1500ms") or a bare number of seconds ("5", "0.5").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		if math.Abs(seconds) > maxSeconds {
			return 0, fmt.Errorf("duration %q: %w", value, errDurationOutOfRange)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	return time.ParseDuration(value)
}

// Durations returns the parsed duration settings. Call it only on a validated Config.
func (c *Config) Durations() (timeout, backoff, maxBackoff time.Duration) {
	timeout, _ = ParseDuration(c.Run.Timeout)
	backoff, _ = ParseDuration(c.Retry.Backoff)
	maxBackoff, _ = ParseDuration(c.Retry.MaxBackoff)
	return timeout, backoff, maxBackoff
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Run,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RunConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RunConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Workers,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&rc.Timeout,
						validation.Required,
						validation.By(validatePositiveDuration),
					),
					validation.Field(&rc.Retries,
						validation.Min(0),
					),
				)
			}),
		),
		validation.Field(&c.Retry,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RetryConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RetryConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Backoff, validation.By(validateDuration)),
					validation.Field(&rc.MaxBackoff, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.Breaker,
			validation.By(func(value interface{}) error {
				bc, ok := value.(BreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
				}
				return validation.ValidateStruct(&bc,
					validation.Field(&bc.Threshold, validation.Min(0)),
					validation.Field(&bc.ResetTimeout,
						validation.When(bc.Threshold > 0, validation.Required, validation.By(validatePositiveDuration)),
					),
				)
			}),
		),
		validation.Field(&c.Input,
			validation.By(func(value interface{}) error {
				ic, ok := value.(InputConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an InputConfig")
				}
				return validation.ValidateStruct(&ic,
					validation.Field(&ic.URLs, validation.Each(validation.Required)),
				)
			}),
		),
		validation.Field(&c.Output,
			validation.Required,
			validation.By(func(value interface{}) error {
				oc, ok := value.(OutputConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an OutputConfig")
				}
				return validation.ValidateStruct(&oc,
					validation.Field(&oc.Path, validation.Required),
					validation.Field(&oc.Format,
						validation.Required,
						validation.In(FormatJSON, FormatYAML),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
					validation.Field(&lc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Address, validation.By(validateHostPort)),
				)
			}),
		),
		validation.Field(&c.Kafka,
			validation.By(func(value interface{}) error {
				kc, ok := value.(KafkaConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a KafkaConfig")
				}
				return validation.ValidateStruct(&kc,
					validation.Field(&kc.Broker, validation.By(validateHostPort)),
					validation.Field(&kc.Topic, validation.When(kc.Broker != "", validation.Required)),
				)
			}),
		),
		validation.Field(&c.Redis,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RedisConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RedisConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Address, validation.By(validateHostPort)),
					validation.Field(&rc.TTL, validation.By(validateDuration)),
				)
			}),
		),
	)
}

// validateHostPort accepts an empty value; Required rules decide presence.
func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if durationStr == "" {
		return nil
	}

	d, err := ParseDuration(durationStr)
	if err != nil {
		if errors.Is(err, errDurationOutOfRange) {
			return validation.NewError("validation_duration_out_of_range", "is out of range")
		}
		return validation.NewError("validation_invalid_duration", "must be seconds or a valid duration (e.g., 5, 1500ms, 2s)")
	}
	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	if err := validateDuration(value); err != nil {
		return err
	}

	if d, _ := ParseDuration(value.(string)); d <= 0 {
		return validation.NewError("validation_nonpositive_duration", "must be greater than zero")
	}

	return nil
}
