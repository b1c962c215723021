package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/mcncl/confconv/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "", cfg.InputFormat)
	assert.Equal(t, "", cfg.OutputFormat)
	assert.Equal(t, "preserve", cfg.KeyCase)
	assert.Equal(t, 4, cfg.JSON.Indent)
	assert.Equal(t, 2, cfg.YAML.Indent)
	assert.False(t, cfg.SortKeys)
	assert.False(t, cfg.FailFast)
	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromEachFormat(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		content string
	}{
		{
			name:    "yaml",
			pattern: "config_test_*.yml",
			content: `
output_format: toml
key_case: snake
sort_keys: true
json:
  indent: 2
yaml:
  indent: 4
`,
		},
		{
			name:    "toml",
			pattern: "config_test_*.toml",
			content: `
output_format = "toml"
key_case = "snake"
sort_keys = true

[json]
indent = 2

[yaml]
indent = 4
`,
		},
		{
			name:    "json",
			pattern: "config_test_*.json",
			content: `{"output_format": "toml", "key_case": "snake", "sort_keys": true, "json": {"indent": 2}, "yaml": {"indent": 4}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.pattern, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "toml", cfg.OutputFormat)
			assert.Equal(t, "snake", cfg.KeyCase)
			assert.True(t, cfg.SortKeys)
			assert.Equal(t, 2, cfg.JSON.Indent)
			assert.Equal(t, 4, cfg.YAML.Indent)
			// Unset values keep their defaults.
			assert.False(t, cfg.FailFast)
			assert.Equal(t, "", cfg.InputFormat)
		})
	}
}

func TestConfig_LoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "config_test_*.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestConfig_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		content string
	}{
		{"unknown key", "config_test_*.yaml", "indent_width: 3\n"},
		{"wrong type", "config_test_*.yaml", "sort_keys: [1]\n"},
		{"not a mapping", "config_test_*.json", "[1, 2]"},
		{"bad output format", "config_test_*.yaml", "output_format: xml\n"},
		{"bad key case", "config_test_*.yaml", "key_case: title\n"},
		{"negative indent", "config_test_*.toml", "[json]\nindent = -1\n"},
		{"malformed", "config_test_*.toml", "a = \n"},
		{"unsupported extension", "config_test_*.ini", "a=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.pattern, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "got %v", err)
		})
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), ".confconv.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestFindConfigFileFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, "", FindConfigFileFrom(nested))

	configPath := filepath.Join(root, ".confconv.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("sort_keys = true\n"), 0o644))
	assert.Equal(t, configPath, FindConfigFileFrom(nested))

	// A closer file wins, and YAML is preferred within one directory.
	closer := filepath.Join(root, "a", ".confconv.yml")
	require.NoError(t, os.WriteFile(closer, []byte("sort_keys: true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", ".confconv.json"), []byte("{}"), 0o644))
	assert.Equal(t, closer, FindConfigFileFrom(nested))
}

func TestFindConfigFile_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".confconv.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("fail_fast: true\n"), 0o644))
	chdir(t, dir)

	found := FindConfigFile()
	require.NotEmpty(t, found)
	cfg, err := LoadConfig(found)
	require.NoError(t, err)
	assert.True(t, cfg.FailFast)
}

func TestLoadConfigWithCLI_Precedence(t *testing.T) {
	path := writeConfig(t, "config_test_*.yaml", `
input_format: json
output_format: yaml
key_case: kebab
json:
  indent: 2
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfigWithCLI(path, CLIOverrides{})
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.InputFormat)
		assert.Equal(t, "yaml", cfg.OutputFormat)
		assert.Equal(t, "kebab", cfg.KeyCase)
		assert.Equal(t, 2, cfg.JSON.Indent)
		assert.Equal(t, 2, cfg.YAML.Indent)
	})

	t.Run("cli over file", func(t *testing.T) {
		indent := 0
		cfg, err := LoadConfigWithCLI(path, CLIOverrides{
			OutputFormat: "toml",
			KeyCase:      "camel",
			JSONIndent:   &indent,
			SortKeys:     true,
			FailFast:     true,
		})
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.InputFormat)
		assert.Equal(t, "toml", cfg.OutputFormat)
		assert.Equal(t, "camel", cfg.KeyCase)
		assert.Equal(t, 0, cfg.JSON.Indent)
		assert.True(t, cfg.SortKeys)
		assert.True(t, cfg.FailFast)
	})

	t.Run("no file", func(t *testing.T) {
		cfg, err := LoadConfigWithCLI("", CLIOverrides{KeyCase: "snake"})
		require.NoError(t, err)
		assert.Equal(t, "snake", cfg.KeyCase)
		assert.Equal(t, 4, cfg.JSON.Indent)
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := LoadConfigWithCLI(path, CLIOverrides{KeyCase: "shouty"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}

func TestConfig_ConverterOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.KeyCase = "pascal"
	cfg.JSON.Indent = 0
	cfg.SortKeys = true

	opts, err := cfg.ConverterOptions(true)
	require.NoError(t, err)
	assert.Equal(t, transform.Pascal, opts.KeyCase)
	assert.Equal(t, 0, opts.Formatter.JSONIndent)
	assert.Equal(t, 2, opts.Formatter.YAMLIndent)
	assert.True(t, opts.Formatter.SortKeys)
	assert.True(t, opts.DryRun)
}

// chdir changes the working directory to dir for the duration of the test,
// restoring the previous directory on cleanup (equivalent of Go 1.24's t.Chdir).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}
