package cfg

import (
	"flag"
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/rs/zerolog/log"
)

// ClassifierConfiguration controls how sessions classify statements
type ClassifierConfiguration struct {
	Backend             string   `toml:"backend"`                // vitess or sqlite
	SQLMode             string   `toml:"sql_mode"`               // default or oracle
	ServerVersion       string   `toml:"server_version"`         // major.minor.patch of the backend servers
	LogUnrecognized     string   `toml:"log_unrecognized"`       // nothing, non_parsed, non_partially_parsed, non_tokenized
	LogBurst            uint32   `toml:"log_burst"`              // Degraded statement logs allowed per period
	LogPeriodSeconds    int      `toml:"log_period_seconds"`     // Throttle period for degraded statement logs
	LogOncePerStatement bool     `toml:"log_once_per_statement"` // Log each canonical form at most once
	Options             []string `toml:"options"`                // string_arg_as_field, string_as_field
	MaxDepth            int      `toml:"max_depth"`              // Nesting limit for tree walks
}

// CacheConfiguration controls the per-session canonical result cache
type CacheConfiguration struct {
	Size    int      `toml:"size"`    // Entries per session, 0 disables
	Exclude []string `toml:"exclude"` // Glob patterns over canonical forms never cached
}

// AdminConfiguration for the admin HTTP server
type AdminConfiguration struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
	Secret      string `toml:"secret"` // Optional shared secret for /admin routes
	PoolWarmup  int    `toml:"pool_warmup"`
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled                bool `toml:"enabled"`
	CollectIntervalSeconds int  `toml:"collect_interval_seconds"`
}

type Configuration struct {
	InstanceID uint64 `toml:"instance_id"`

	Classifier ClassifierConfiguration `toml:"classifier"`
	Cache      CacheConfiguration      `toml:"cache"`
	Admin      AdminConfiguration      `toml:"admin"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
}

var (
	ConfigPathFlag = flag.String("config", "config.toml", "Path to configuration file")
	InstanceIDFlag = flag.Uint64("instance-id", 0, "Instance ID (overrides config, 0=auto)")
	BackendFlag    = flag.String("backend", "", "Grammar backend (overrides config)")
	SQLModeFlag    = flag.String("sql-mode", "", "SQL mode (overrides config)")
	AdminPortFlag  = flag.Int("admin-port", 0, "Admin HTTP port (overrides config)")
	VerboseFlag    = flag.Bool("verbose", false, "Enable debug logging (overrides config)")
)

var Config = &Configuration{
	InstanceID: 0, // Auto-generate

	Classifier: ClassifierConfiguration{
		Backend:             "vitess",
		SQLMode:             "default",
		ServerVersion:       "10.11.0",
		LogUnrecognized:     "nothing",
		LogBurst:            10,
		LogPeriodSeconds:    1,
		LogOncePerStatement: true,
		Options:             []string{},
		MaxDepth:            256,
	},

	Cache: CacheConfiguration{
		Size:    10000,
		Exclude: []string{},
	},

	Admin: AdminConfiguration{
		Enabled:     true,
		BindAddress: "127.0.0.1",
		Port:        9081,
		PoolWarmup:  4,
	},

	Logging: LoggingConfiguration{
		Verbose: false,
		Format:  "console",
	},

	Prometheus: PrometheusConfiguration{
		Enabled:                true,
		CollectIntervalSeconds: 15,
	},
}

func Load(configPath string) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("Loading configuration")
			if _, err := toml.DecodeFile(configPath, Config); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Warn().Str("path", configPath).Msg("Config file not found, using defaults")
		}
	}

	if *InstanceIDFlag != 0 {
		Config.InstanceID = *InstanceIDFlag
	}
	if *BackendFlag != "" {
		Config.Classifier.Backend = *BackendFlag
	}
	if *SQLModeFlag != "" {
		Config.Classifier.SQLMode = *SQLModeFlag
	}
	if *AdminPortFlag != 0 {
		Config.Admin.Port = *AdminPortFlag
	}
	if *VerboseFlag {
		Config.Logging.Verbose = true
	}

	if Config.InstanceID == 0 {
		var err error
		Config.InstanceID, err = generateInstanceID()
		if err != nil {
			return fmt.Errorf("failed to generate instance ID: %w", err)
		}
		log.Info().Uint64("instance_id", Config.InstanceID).Msg("Auto-generated instance ID")
	}

	return nil
}

func generateInstanceID() (uint64, error) {
	id, err := machineid.ProtectedID("querygate")
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64(), nil
}

// ParseServerVersion encodes "major.minor.patch" as major*10000+minor*100+patch.
// A vendor suffix such as "-MariaDB" is ignored.
func ParseServerVersion(s string) (uint32, error) {
	if i := strings.IndexAny(s, "-+ "); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid server version: %q", s)
	}

	var version uint32
	weights := []uint32{10000, 100, 1}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid server version %q: %w", s, err)
		}
		if i > 0 && n > 99 {
			return 0, fmt.Errorf("invalid server version %q: component %d out of range", s, n)
		}
		version += uint32(n) * weights[i]
	}
	return version, nil
}

var validLogLevels = map[string]bool{
	"nothing":              true,
	"non_parsed":           true,
	"non_partially_parsed": true,
	"non_tokenized":        true,
}

var validOptions = map[string]bool{
	"string_arg_as_field": true,
	"string_as_field":     true,
}

func Validate() error {
	c := Config.Classifier
	if c.Backend == "" {
		return fmt.Errorf("classifier backend must be set")
	}

	if c.SQLMode != "default" && c.SQLMode != "oracle" {
		return fmt.Errorf("invalid sql mode: %s", c.SQLMode)
	}

	if _, err := ParseServerVersion(c.ServerVersion); err != nil {
		return err
	}

	if !validLogLevels[c.LogUnrecognized] {
		return fmt.Errorf("invalid log_unrecognized level: %s", c.LogUnrecognized)
	}

	if c.LogPeriodSeconds < 1 {
		return fmt.Errorf("log period must be >= 1 second")
	}

	for _, o := range c.Options {
		if !validOptions[o] {
			return fmt.Errorf("invalid classifier option: %s", o)
		}
	}

	if c.MaxDepth < 16 {
		return fmt.Errorf("max depth must be >= 16")
	}

	if Config.Cache.Size < 0 {
		return fmt.Errorf("cache size must be >= 0")
	}

	if Config.Admin.Enabled && (Config.Admin.Port < 1 || Config.Admin.Port > 65535) {
		return fmt.Errorf("invalid admin port: %d", Config.Admin.Port)
	}

	if Config.Admin.PoolWarmup < 0 {
		return fmt.Errorf("admin pool warmup must be >= 0")
	}

	if Config.Logging.Format != "console" && Config.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", Config.Logging.Format)
	}

	if Config.Prometheus.CollectIntervalSeconds < 1 {
		return fmt.Errorf("prometheus collect interval must be >= 1 second")
	}

	return nil
}
