package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config holds all runtime parameters for one summarization run
type Config struct {
	LogPath     string `json:"-"`
	GroupBy     string `json:"group_by"`
	TopN        int    `json:"top_n"`
	OutputPath  string `json:"output_path"`
	DBPath      string `json:"db_path"`
	MetricsPath string `json:"metrics_path"`
	LogLevel    string `json:"log_level"`
}

// FromArgs builds the configuration from command line arguments, layering
// explicit flags over an optional JSON config file. Exactly one positional
// argument is expected: the crawl log path.
func FromArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("logtally", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "path to a JSON config file")
	groupBy := fs.String("g", "", "group summaries by host, registered-domain or seed")
	topN := fs.Int("n", 0, "limit status code, mime type and domain breakdowns to the top N entries")
	outputPath := fs.String("o", "", "write the JSON summary to this file instead of stdout")
	dbPath := fs.String("db", "", "also export the summary to this sqlite database")
	metricsPath := fs.String("metrics", "", "write run metrics JSON to this file")
	logLevel := fs.String("log-level", "", "diagnostic verbosity (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if *configPath != "" {
		loaded, err := LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags set on the command line win over config file values
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "g":
			cfg.GroupBy = *groupBy
		case "n":
			cfg.TopN = *topN
		case "o":
			cfg.OutputPath = *outputPath
		case "db":
			cfg.DBPath = *dbPath
		case "metrics":
			cfg.MetricsPath = *metricsPath
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one crawl log path, got %d arguments", fs.NArg())
	}
	cfg.LogPath = fs.Arg(0)

	// Apply defaults for missing values
	applyDefaults(cfg)

	// Validate configuration
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile reads configuration defaults from a JSON file
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.GroupBy == "" {
		cfg.GroupBy = "none"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.LogPath == "" {
		return fmt.Errorf("crawl log path is required")
	}
	switch cfg.GroupBy {
	case "none", "host", "registered-domain", "seed":
	default:
		return fmt.Errorf("group_by must be none, host, registered-domain or seed")
	}
	if cfg.TopN < 0 {
		return fmt.Errorf("top_n must be >= 0")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}
