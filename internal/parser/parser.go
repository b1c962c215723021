// Package parser decodes JSON, TOML and YAML input into models.Document.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/models"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Decode reads all of r and decodes it as f.
func Decode(f format.Format, r io.Reader) (models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, errors.NewIOError("failed to read input", err)
	}
	return DecodeBytes(f, data)
}

// DecodeBytes decodes data as f. Text formats have a leading UTF-8 byte
// order mark removed; TOML input is passed through untouched.
func DecodeBytes(f format.Format, data []byte) (models.Document, error) {
	if !f.Binary() {
		data = bytes.TrimPrefix(data, utf8BOM)
	}
	switch f {
	case format.JSON:
		return decodeJSON(data)
	case format.TOML:
		return decodeTOML(data)
	case format.YAML:
		return decodeYAML(data)
	}
	return models.Document{}, errors.NewUnsupportedFormatError(f.String())
}

// DecodeFile decodes the file at filePath as f.
func DecodeFile(f format.Format, filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewIOError("file path is empty", nil)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewIOError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewIOError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewIOError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.IsDir() {
		return models.Document{}, errors.NewIOError(
			fmt.Sprintf("'%s' is a directory", filePath),
			nil,
		)
	}

	return Decode(f, file)
}

// lineCol converts a byte offset into 1-based line and column numbers.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
