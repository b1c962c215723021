package format

import (
	"testing"

	"github.com/mcncl/confconv/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"TOML", TOML, false},
		{" yaml ", YAML, false},
		{"yml", 0, true},
		{"ini", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveByExtension(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		path string
		want Format
	}{
		{"config.json", JSON},
		{"config.JSON", JSON},
		{"pyproject.toml", TOML},
		{"legacy.tml", TOML},
		{"deploy.yaml", YAML},
		{"/etc/app/deploy.YML", YAML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := reg.ResolveByExtension(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{"notes.txt", "Makefile", "archive.json.gz", ".json", "dir/.yaml"} {
		t.Run(path, func(t *testing.T) {
			_, err := reg.ResolveByExtension(path)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownFormat))
		})
	}
}

func TestResolve_ExplicitOverridesExtension(t *testing.T) {
	reg := NewRegistry()

	got, err := reg.Resolve("toml", "data.json")
	require.NoError(t, err)
	assert.Equal(t, TOML, got)

	got, err = reg.Resolve("yaml", "data.txt")
	require.NoError(t, err)
	assert.Equal(t, YAML, got)

	_, err = reg.Resolve("xml", "data.json")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedFormat))

	got, err = reg.Resolve("", "data.yml")
	require.NoError(t, err)
	assert.Equal(t, YAML, got)
}

func TestExtensionSetsAreDisjoint(t *testing.T) {
	seen := map[string]Format{}
	for _, f := range All {
		for _, ext := range f.Extensions() {
			prev, dup := seen[ext]
			assert.False(t, dup, "%s claimed by %s and %s", ext, prev, f)
			seen[ext] = f
		}
	}
	assert.NotPanics(t, func() { NewRegistry() })
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "config.json", OutputPath("config.yaml", JSON))
	assert.Equal(t, "dir/settings.yaml", OutputPath("dir/settings.tml", YAML))
	assert.Equal(t, "Makefile.toml", OutputPath("Makefile", TOML))
	assert.Equal(t, "a.b.toml", OutputPath("a.b.json", TOML))
}

func TestOutputPath_Dotfiles(t *testing.T) {
	assert.Equal(t, ".json.yaml", OutputPath(".json", YAML))
	assert.Equal(t, "dir/.settings.yaml", OutputPath("dir/.settings", YAML))
	assert.Equal(t, "dir/.app.toml", OutputPath("dir/.app.json", TOML))
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, []string{"json", "toml", "yaml"}, Names())
	assert.Equal(t, "JSON", JSON.String())
	assert.True(t, TOML.Binary())
	assert.False(t, YAML.Binary())
	assert.False(t, Format(0).Valid())
}
