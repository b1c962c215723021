package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcncl/confconv/internal/converter"
	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/formatter"
	"github.com/mcncl/confconv/internal/models"
	"github.com/mcncl/confconv/internal/parser"
	"github.com/mcncl/confconv/internal/transform"
	"github.com/mitchellh/mapstructure"
)

// configNames are searched in this order in every directory.
var configNames = []string{".confconv.yaml", ".confconv.yml", ".confconv.toml", ".confconv.json"}

// Config represents the complete configuration for confconv
type Config struct {
	InputFormat  string     `mapstructure:"input_format"`
	OutputFormat string     `mapstructure:"output_format"`
	KeyCase      string     `mapstructure:"key_case"`
	SortKeys     bool       `mapstructure:"sort_keys"`
	FailFast     bool       `mapstructure:"fail_fast"`
	JSON         JSONConfig `mapstructure:"json"`
	YAML         YAMLConfig `mapstructure:"yaml"`
}

// JSONConfig controls JSON output
type JSONConfig struct {
	// Indent is the number of spaces per level; 0 writes a single line.
	Indent int `mapstructure:"indent"`
}

// YAMLConfig controls YAML output
type YAMLConfig struct {
	Indent int `mapstructure:"indent"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	defaults := formatter.DefaultOptions()
	return &Config{
		KeyCase: string(transform.Preserve),
		JSON:    JSONConfig{Indent: defaults.JSONIndent},
		YAML:    YAMLConfig{Indent: defaults.YAMLIndent},
	}
}

// LoadConfig loads configuration from a JSON, TOML or YAML file. The file's
// extension picks the decoder.
func LoadConfig(path string) (*Config, error) {
	f, err := format.NewRegistry().ResolveByExtension(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported config file '%s'", path), err)
	}

	doc, err := parser.DecodeFile(f, path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()
	if doc.IsNull() {
		return cfg, nil
	}
	if doc.Kind() != models.KindMapping {
		return nil, errors.NewConfigError(
			fmt.Sprintf("config file '%s' must contain a mapping, found %s", path, doc.Kind()), nil)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, errors.NewConfigError("failed to prepare config decoder", err)
	}
	if err := decoder.Decode(models.ToNative(doc)); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindConfigFileFrom(currentDir)
}

// FindConfigFileFrom searches dir and its parents for a config file.
func FindConfigFileFrom(dir string) string {
	currentDir := dir
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that every named format and style exists and that indents
// are usable.
func (c *Config) Validate() error {
	if c.InputFormat != "" {
		if _, err := format.ParseFormat(c.InputFormat); err != nil {
			return errors.NewConfigError("invalid input_format", err)
		}
	}
	if c.OutputFormat != "" {
		if _, err := format.ParseFormat(c.OutputFormat); err != nil {
			return errors.NewConfigError("invalid output_format", err)
		}
	}
	if _, err := transform.ParseKeyCase(c.KeyCase); err != nil {
		return err
	}
	if c.JSON.Indent < 0 {
		return errors.NewConfigError(fmt.Sprintf("json.indent must not be negative, got %d", c.JSON.Indent), nil)
	}
	if c.YAML.Indent < 0 {
		return errors.NewConfigError(fmt.Sprintf("yaml.indent must not be negative, got %d", c.YAML.Indent), nil)
	}
	return nil
}

// ConverterOptions translates the configuration into converter options.
func (c *Config) ConverterOptions(dryRun bool) (converter.Options, error) {
	kc, err := transform.ParseKeyCase(c.KeyCase)
	if err != nil {
		return converter.Options{}, err
	}
	return converter.Options{
		Formatter: formatter.Options{
			JSONIndent: c.JSON.Indent,
			YAMLIndent: c.YAML.Indent,
			SortKeys:   c.SortKeys,
		},
		KeyCase: kc,
		DryRun:  dryRun,
	}, nil
}

// CLIOverrides holds values given on the command line. Empty strings and nil
// pointers mean "not given"; boolean flags can only switch a setting on.
type CLIOverrides struct {
	InputFormat  string
	OutputFormat string
	KeyCase      string
	JSONIndent   *int
	SortKeys     bool
	FailFast     bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.InputFormat != "" {
		cfg.InputFormat = cli.InputFormat
	}
	if cli.OutputFormat != "" {
		cfg.OutputFormat = cli.OutputFormat
	}
	if cli.KeyCase != "" {
		cfg.KeyCase = cli.KeyCase
	}
	if cli.JSONIndent != nil {
		cfg.JSON.Indent = *cli.JSONIndent
	}
	if cli.SortKeys {
		cfg.SortKeys = true
	}
	if cli.FailFast {
		cfg.FailFast = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
