package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Datasets DatasetsConfig `yaml:"datasets" mapstructure:"datasets"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatasetsConfig points at the two input CSVs.
type DatasetsConfig struct {
	StatsPath      string `yaml:"stats_path" mapstructure:"stats_path"`
	GeocodePath    string `yaml:"geocode_path" mapstructure:"geocode_path"`
	GeocodeCharset string `yaml:"geocode_charset" mapstructure:"geocode_charset"`
}

// EngineConfig bounds aggregation queries. The radius cap can be lowered
// below the built-in 1000-mile limit but never raised above it.
type EngineConfig struct {
	MaxRadiusMiles float64 `yaml:"max_radius_miles" mapstructure:"max_radius_miles"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	RateLimitPerSec    float64  `yaml:"rate_limit_per_sec" mapstructure:"rate_limit_per_sec"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEORADIUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("datasets.stats_path", "data/us-counties.csv")
	v.SetDefault("datasets.geocode_path", "data/uscities.csv")
	v.SetDefault("datasets.geocode_charset", "iso-8859-1")
	v.SetDefault("engine.max_radius_miles", 1000.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 30)
	v.SetDefault("server.rate_limit_per_sec", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration can support the given mode
// ("run", "serve", or "inspect"). All problems are reported in one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "inspect":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RequestTimeoutSecs < 1 || c.Server.RequestTimeoutSecs > 300 {
			problems = append(problems, "server.request_timeout_secs must be between 1 and 300")
		}
		if c.Server.RateLimitPerSec < 0 {
			problems = append(problems, "server.rate_limit_per_sec must be >= 0")
		}
		if c.Server.RateLimitBurst < 1 {
			problems = append(problems, "server.rate_limit_burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Datasets.StatsPath == "" {
		problems = append(problems, "datasets.stats_path is required")
	}
	if c.Datasets.GeocodePath == "" {
		problems = append(problems, "datasets.geocode_path is required")
	}
	if c.Datasets.GeocodeCharset == "" {
		problems = append(problems, "datasets.geocode_charset is required")
	}
	if c.Engine.MaxRadiusMiles <= 0 || c.Engine.MaxRadiusMiles > 1000 {
		problems = append(problems, "engine.max_radius_miles must be between 0 and 1000")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
