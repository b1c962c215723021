// Package converter runs a single decode, transform and encode pass.
package converter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/formatter"
	"github.com/mcncl/confconv/internal/models"
	"github.com/mcncl/confconv/internal/parser"
	"github.com/mcncl/confconv/internal/transform"
)

// StdStream is the path that stands for stdin on input and stdout on output.
const StdStream = "-"

// ConversionRequest names one input and where its converted form goes. A
// zero InputFormat is inferred from InputPath's extension.
type ConversionRequest struct {
	InputPath    string
	OutputPath   string
	InputFormat  format.Format
	OutputFormat format.Format
}

// Options control every conversion a Converter runs.
type Options struct {
	Formatter formatter.Options
	KeyCase   transform.KeyCase
	DryRun    bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Formatter: formatter.DefaultOptions(),
		KeyCase:   transform.Preserve,
	}
}

// Converter converts files between formats.
type Converter struct {
	registry *format.Registry
	logger   *slog.Logger
	opts     Options
	stdin    io.Reader
	stdout   io.Writer
}

// New creates a Converter reading stdin and writing stdout for "-" paths.
func New(reg *format.Registry, logger *slog.Logger, opts Options) *Converter {
	if reg == nil {
		reg = format.NewRegistry()
	}
	return &Converter{
		registry: reg,
		logger:   logger,
		opts:     opts,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}
}

// WithStdio replaces the streams used for "-" paths.
func (c *Converter) WithStdio(in io.Reader, out io.Writer) *Converter {
	c.stdin = in
	c.stdout = out
	return c
}

// Convert reads req.InputPath, converts it and writes req.OutputPath. The
// output file is replaced atomically and left untouched on failure.
func (c *Converter) Convert(req ConversionRequest) error {
	in := req.InputFormat
	if in == 0 {
		resolved, err := c.registry.ResolveByExtension(req.InputPath)
		if err != nil {
			return err
		}
		in = resolved
	}
	if !in.Valid() {
		return errors.NewUnsupportedFormatError(in.String())
	}
	if !req.OutputFormat.Valid() {
		return errors.NewUnsupportedFormatError(req.OutputFormat.String())
	}
	if req.OutputPath == "" {
		return errors.NewIOError("output path is empty", nil)
	}
	if sameFile(req.InputPath, req.OutputPath) {
		return errors.NewIOError(fmt.Sprintf("refusing to overwrite input '%s'", req.InputPath), errors.ErrSameFile)
	}

	c.logger.Debug("Converting", "input", req.InputPath, "from", in, "to", req.OutputFormat)

	doc, err := c.decode(in, req.InputPath)
	if err != nil {
		return err
	}

	doc, err = transform.Keys(doc, c.opts.KeyCase)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Encode(req.OutputFormat, doc, &buf, c.opts.Formatter); err != nil {
		return err
	}

	if c.opts.DryRun {
		c.logger.Info("Dry run: would write output", "output", req.OutputPath, "bytes", buf.Len())
		return nil
	}

	if err := c.write(req.OutputPath, buf.Bytes()); err != nil {
		return err
	}

	c.logger.Info(fmt.Sprintf("Conversion successful: %s -> %s", in, req.OutputFormat),
		"input", req.InputPath, "output", req.OutputPath)
	return nil
}

func (c *Converter) decode(f format.Format, path string) (models.Document, error) {
	if path == StdStream {
		return parser.Decode(f, c.stdin)
	}
	return parser.DecodeFile(f, path)
}

func (c *Converter) write(path string, data []byte) error {
	if path == StdStream {
		if _, err := c.stdout.Write(data); err != nil {
			return errors.NewIOError("failed to write to stdout", err)
		}
		return nil
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers see either the old file or the complete new one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create temporary file in '%s'", dir), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.NewIOError(fmt.Sprintf("failed to write '%s'", path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError(fmt.Sprintf("failed to write '%s'", path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError(fmt.Sprintf("failed to set permissions on '%s'", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError(fmt.Sprintf("failed to replace '%s'", path), err)
	}
	return nil
}

func sameFile(a, b string) bool {
	if a == StdStream || b == StdStream {
		return false
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
