package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no path is given.
const DefaultPath = "rtscheck.yaml"

type Config struct {
	Samples struct {
		Root    string `yaml:"root" toml:"root"`
		Pattern string `yaml:"pattern" toml:"pattern"`
	} `yaml:"samples" toml:"samples"`
	Engine struct {
		Kind          string        `yaml:"kind" toml:"kind"` // command, fallback or auto
		Command       []string      `yaml:"command" toml:"command"`
		Timeout       time.Duration `yaml:"timeout" toml:"timeout"`
		AppendNewline bool          `yaml:"append_newline" toml:"append_newline"`
		Grammar       []string      `yaml:"grammar" toml:"grammar"` // files watched for changes
	} `yaml:"engine" toml:"engine"`
	Run struct {
		Workers   int `yaml:"workers" toml:"workers"`
		Lookahead int `yaml:"lookahead" toml:"lookahead"`
	} `yaml:"run" toml:"run"`
	Report struct {
		Path       string `yaml:"path" toml:"path"`
		StatusFile string `yaml:"status_file" toml:"status_file"`
	} `yaml:"report" toml:"report"`
	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce" toml:"debounce"`
	} `yaml:"watch" toml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Samples.Root = "samples"
	cfg.Samples.Pattern = "*.rts"
	cfg.Engine.Kind = "auto"
	cfg.Engine.Command = []string{"python3", "tools/lark_parse.py", "--grammar", "grammar/realtest.lark"}
	cfg.Engine.Timeout = 30 * time.Second
	cfg.Engine.AppendNewline = true
	cfg.Engine.Grammar = []string{"grammar"}
	cfg.Run.Workers = 4
	cfg.Run.Lookahead = 2
	cfg.Log.Level = "info"
	cfg.Watch.Debounce = 500 * time.Millisecond
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables, including those from a .env file, win last.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		if _, err := toml.Decode(string(file), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RTSCHECK_ENGINE"); v != "" {
		c.Engine.Kind = v
	}
	if v := os.Getenv("RTSCHECK_COMMAND"); v != "" {
		c.Engine.Command = strings.Fields(v)
	}
	if v := os.Getenv("RTSCHECK_SAMPLES"); v != "" {
		c.Samples.Root = v
	}
	if v := os.Getenv("RTSCHECK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RTSCHECK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RTSCHECK_WORKERS %q: %w", v, err)
		}
		c.Run.Workers = n
	}
	return nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Engine.Kind {
	case "auto", "command", "fallback":
	default:
		return fmt.Errorf("unsupported engine kind: %s", c.Engine.Kind)
	}
	if c.Engine.Kind == "command" && len(c.Engine.Command) == 0 {
		return errors.New("engine kind command needs engine.command")
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("run.workers must be positive, got %d", c.Run.Workers)
	}
	if c.Run.Lookahead < 0 {
		return fmt.Errorf("run.lookahead must not be negative, got %d", c.Run.Lookahead)
	}
	if _, err := filepath.Match(c.Samples.Pattern, "x.rts"); err != nil {
		return fmt.Errorf("invalid samples.pattern %q: %w", c.Samples.Pattern, err)
	}
	return nil
}
