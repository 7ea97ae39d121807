// Package config loads skim's command-line, environment and sources-file settings.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// DefaultURL is polled when no source is configured.
const DefaultURL = "https://feeds.bbci.co.uk/news/rss.xml"

// DefaultLabel names the positional or default source.
const DefaultLabel = "RSS"

// ErrHelp is returned by Load when --help was requested and usage has been printed.
var ErrHelp = errors.New("help requested")

// Source is one feed endpoint with its display label.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Sources   []Source
	Interval  time.Duration
	Timeout   time.Duration
	Tick      time.Duration
	LogFile   string // empty means the logging default
	Debug     bool
	UserAgent string
	Version   string
}

type rawCfg struct {
	Sources   string        `short:"s" long:"sources" env:"SKIM_SOURCES" description:"YAML file listing feed sources"`
	Interval  time.Duration `short:"i" long:"interval" env:"SKIM_INTERVAL" default:"60s" description:"Poll interval"`
	Timeout   time.Duration `long:"timeout" env:"SKIM_TIMEOUT" default:"30s" description:"Per-fetch HTTP timeout"`
	Tick      time.Duration `long:"tick" env:"SKIM_TICK" default:"100ms" description:"UI refresh tick"`
	LogFile   string        `long:"log-file" env:"SKIM_LOG_FILE" description:"Log file path (default ~/.skim/logs/skim-YYYY-MM-DD.log)"`
	Debug     bool          `long:"debug" env:"SKIM_DEBUG" description:"Enable debug logging"`
	UserAgent string        `long:"user-agent" env:"SKIM_USER_AGENT" description:"User-Agent sent with feed requests"`

	Args struct {
		URL string `positional-arg-name:"URL" description:"Feed URL to poll"`
	} `positional-args:"yes"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// GetVersion returns the build version.
func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// Load parses args (without the program name) and the environment.
func Load(args []string) (*Config, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [URL]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	var sources []Source
	if raw.Sources != "" {
		sources, err = LoadSources(raw.Sources)
		if err != nil {
			return nil, err
		}
	}
	if raw.Args.URL != "" {
		sources = append(sources, Source{Name: DefaultLabel, URL: raw.Args.URL})
	}
	if len(sources) == 0 {
		sources = []Source{{Name: DefaultLabel, URL: DefaultURL}}
	}

	cfg := &Config{
		Sources:   sources,
		Interval:  raw.Interval,
		Timeout:   raw.Timeout,
		Tick:      raw.Tick,
		LogFile:   raw.LogFile,
		Debug:     raw.Debug,
		UserAgent: cmp.Or(raw.UserAgent, "skim/"+GetVersion()),
		Version:   GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSources reads a YAML sources file. Names default to the URL's host.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}

	return lo.Map(file.Sources, func(s Source, _ int) Source {
		s.URL = strings.TrimSpace(s.URL)
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			s.Name = hostOf(s.URL)
		}
		return s
	}), nil
}

// Validate checks intervals and sources.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}

	for i, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("source %d (%s): url is required", i+1, s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %s: invalid url: %w", s.Name, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source %s: url must be absolute http(s), got %q", s.Name, s.URL)
		}
	}

	dups := lo.Uniq(lo.Map(
		lo.FindDuplicatesBy(c.Sources, func(s Source) string { return s.Name }),
		func(s Source, _ int) string { return s.Name },
	))
	if len(dups) > 0 {
		return fmt.Errorf("duplicate source names: %s", strings.Join(dups, ", "))
	}
	return nil
}

// Names returns the source labels in configured order.
func (c *Config) Names() []string {
	return lo.Map(c.Sources, func(s Source, _ int) string { return s.Name })
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
