// Package cli runs conversions for the inputs named on the command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/mcncl/confconv/internal/converter"
	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
)

// Driver converts each input in turn.
type Driver struct {
	Registry  *format.Registry
	Converter *converter.Converter
	Logger    *slog.Logger
	// FailFast stops at the first failed input instead of carrying on.
	FailFast bool
}

// Run converts every input. inputFormat may be empty to infer each source
// format from its extension. outputFormat may be empty when output names a
// file whose extension gives the target. Failures are logged as they happen
// and returned together as a *multierror.Error.
func (d *Driver) Run(inputs []string, inputFormat, outputFormat, output string) error {
	if len(inputs) == 0 {
		return errors.NewConfigError("no input files given", nil)
	}
	if output != "" && len(inputs) > 1 {
		return errors.NewConfigError(fmt.Sprintf("--output needs exactly one input, got %d", len(inputs)), nil)
	}

	target, err := d.target(outputFormat, output)
	if err != nil {
		return err
	}

	// A bad explicit format fails every input, so report it once.
	if inputFormat != "" {
		if _, err := format.ParseFormat(inputFormat); err != nil {
			return err
		}
	}

	var result *multierror.Error
	converted := 0
	for _, input := range inputs {
		if err := d.convertOne(input, inputFormat, target, output); err != nil {
			d.Logger.Error(errors.UserFriendlyError(err), "input", input)
			result = multierror.Append(result, fmt.Errorf("%s: %w", input, err))
			if d.FailFast {
				break
			}
			continue
		}
		converted++
	}

	if len(inputs) > 1 {
		d.Logger.Info(fmt.Sprintf("Converted %d of %d files", converted, len(inputs)))
	}
	return result.ErrorOrNil()
}

func (d *Driver) target(outputFormat, output string) (format.Format, error) {
	if outputFormat != "" {
		return format.ParseFormat(outputFormat)
	}
	if output != "" && output != converter.StdStream {
		f, err := d.Registry.ResolveByExtension(output)
		if err != nil {
			return 0, errors.NewConfigError("--output-format is required when --output has no known extension", err)
		}
		return f, nil
	}
	return 0, errors.NewConfigError("--output-format is required", nil)
}

func (d *Driver) convertOne(input, inputFormat string, target format.Format, output string) error {
	if inputFormat == "" && input == converter.StdStream {
		return errors.NewConfigError("--input-format is required when reading stdin", nil)
	}
	source, err := d.Registry.Resolve(inputFormat, input)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		if input == converter.StdStream {
			outputPath = converter.StdStream
		} else {
			outputPath = format.OutputPath(input, target)
		}
	}

	d.Logger.Debug("Resolved conversion", "input", input, "output", outputPath, "from", source, "to", target)
	return d.Converter.Convert(converter.ConversionRequest{
		InputPath:    input,
		OutputPath:   outputPath,
		InputFormat:  source,
		OutputFormat: target,
	})
}
