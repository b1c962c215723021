package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-multierror"
	"github.com/mcncl/confconv/internal/cli"
	"github.com/mcncl/confconv/internal/config"
	"github.com/mcncl/confconv/internal/converter"
	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/formatter"
	"github.com/mcncl/confconv/internal/logging"
	"github.com/mcncl/confconv/internal/transform"
)

// Version information
const (
	Version = "0.1.0"
)

type cliArgs struct {
	Inputs       []string         `arg:"" name:"input" help:"Files to convert. Use - to read stdin."`
	InputFormat  string           `help:"Format of the inputs (${formats}). Inferred from each file's extension if omitted." placeholder:"FORMAT"`
	OutputFormat string           `help:"Format to convert to (${formats}). Inferred from --output if omitted." placeholder:"FORMAT"`
	Output       string           `help:"Output path for a single input. Use - for stdout. Defaults to the input path with the new extension." short:"o"`
	KeyCase      string           `help:"Rewrite mapping keys (${enum})." enum:"preserve,snake,kebab,camel,pascal,screaming-snake" default:"preserve"`
	Indent       int              `help:"Spaces per JSON indent level; 0 writes a single line." default:"4"`
	SortKeys     bool             `help:"Sort mapping keys in the output."`
	FailFast     bool             `help:"Stop at the first input that fails to convert."`
	DryRun       bool             `help:"Convert in memory and report what would be written."`
	Config       string           `help:"Path to a config file. Defaults to the nearest .confconv.{yaml,yml,toml,json}." short:"c" type:"path"`
	Debug        bool             `help:"Enable debug logging." short:"d"`
	Version      kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
var CLI cliArgs

// Validate checks flag combinations kong cannot express with tags.
func (c *cliArgs) Validate() error {
	for flag, name := range map[string]string{"--input-format": c.InputFormat, "--output-format": c.OutputFormat} {
		if name == "" {
			continue
		}
		if _, err := format.ParseFormat(name); err != nil {
			return fmt.Errorf("%s: unsupported format %q, expected one of %s", flag, name, strings.Join(format.Names(), ", "))
		}
	}
	if c.Output != "" && len(c.Inputs) > 1 {
		return fmt.Errorf("--output can only be used with a single input")
	}
	if c.Indent < 0 {
		return fmt.Errorf("--indent must not be negative")
	}
	return nil
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
}

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI, kongOptions()...)

	_, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	level := slog.LevelInfo
	if CLI.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level, logging.ColourEnabled(os.Stderr))

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error(errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = run(&Context{Debug: CLI.Debug, Config: cfg, Logger: logger})
	if err != nil {
		// Per-file failures were logged by the driver as they happened.
		var merr *multierror.Error
		if !stderrors.As(err, &merr) {
			logger.Error(errors.UserFriendlyError(err))
			fmt.Fprintf(os.Stderr, "\nFor help, run: confconv --help\n")
		}
		os.Exit(1)
	}
}

// kongOptions configures the parser; the help text lists the formats
// the registry knows.
func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("confconv"),
		kong.Description("Convert configuration files between JSON, TOML and YAML"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("confconv version %s", Version),
			"formats": strings.Join(format.Names(), ", "),
		},
	}
}

// loadConfig merges the config file, if any, with the command line.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if configPath != "" {
		logger.Debug("Using config file", "path", configPath)
	}

	overrides := config.CLIOverrides{
		InputFormat:  CLI.InputFormat,
		OutputFormat: CLI.OutputFormat,
		SortKeys:     CLI.SortKeys,
		FailFast:     CLI.FailFast,
	}
	// Flags with defaults only override the file when they differ from the
	// default, since kong cannot tell us whether they were given.
	if CLI.KeyCase != string(transform.Preserve) {
		overrides.KeyCase = CLI.KeyCase
	}
	if CLI.Indent != formatter.DefaultOptions().JSONIndent {
		indent := CLI.Indent
		overrides.JSONIndent = &indent
	}

	return config.LoadConfigWithCLI(configPath, overrides)
}

// run executes the main program logic
func run(ctx *Context) error {
	opts, err := ctx.Config.ConverterOptions(CLI.DryRun)
	if err != nil {
		return err
	}

	reg := format.NewRegistry()
	outputFormat := ctx.Config.OutputFormat
	if CLI.OutputFormat == "" && CLI.Output != "" {
		// An explicit output file's extension beats a configured default.
		if _, err := reg.ResolveByExtension(CLI.Output); err == nil {
			outputFormat = ""
		}
	}

	ctx.Logger.Debug("Starting conversion", "inputs", len(CLI.Inputs), "key_case", opts.KeyCase, "dry_run", opts.DryRun)

	driver := &cli.Driver{
		Registry:  reg,
		Converter: converter.New(reg, ctx.Logger, opts),
		Logger:    ctx.Logger,
		FailFast:  ctx.Config.FailFast,
	}
	return driver.Run(CLI.Inputs, ctx.Config.InputFormat, outputFormat, CLI.Output)
}
