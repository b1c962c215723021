package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcncl/confconv/internal/converter"
	"github.com/mcncl/confconv/internal/format"
	"github.com/mcncl/confconv/internal/logging"
	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(rng *rand.Rand, depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"timestamp":  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
			"count":      rng.Intn(100),
			"enabled":    rng.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(rng, depth-1, width)
	}
	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < fieldCount; i++ {
		// Mix different types of fields
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}

	return result
}

// generateItems creates a table-shaped document of itemCount records
func generateItems(rng *rand.Rand, itemCount int) map[string]interface{} {
	items := make([]map[string]interface{}, itemCount)
	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":      "test",
				"priority":    rng.Intn(5) + 1,
				"score":       rng.Float64(),
				"retry_count": rng.Intn(5),
			},
		}
	}
	return map[string]interface{}{"items": items}
}

func writeJSON(b *testing.B, path string, v interface{}) {
	b.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(b, err)
	require.NoError(b, os.WriteFile(path, data, 0o644))
}

// benchmarkTargets converts input to every format on each iteration
func benchmarkTargets(b *testing.B, input string) {
	b.Helper()
	c := converter.New(format.NewRegistry(), logging.NewNop(), converter.DefaultOptions())
	for _, target := range format.All {
		b.Run(target.Name(), func(b *testing.B) {
			output := filepath.Join(filepath.Dir(input), "out"+target.Extension())
			if target == format.JSON {
				output = filepath.Join(filepath.Dir(input), "out.copy.json")
			}
			req := converter.ConversionRequest{InputPath: input, OutputPath: output, OutputFormat: target}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := c.Convert(req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested structures
func BenchmarkDeepNesting(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},   // Moderate nesting
		{"Depth5Width2", 5, 2},   // Deep nesting
		{"Depth2Width10", 2, 10}, // Wide but shallow
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			input := filepath.Join(b.TempDir(), "nested.json")
			writeJSON(b, input, generateNestedJSON(rand.New(rand.NewSource(42)), depth.depth, depth.width))
			benchmarkTargets(b, input)
		})
	}
}

// BenchmarkWideStructures benchmarks performance with many fields at one level
func BenchmarkWideStructures(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	for _, fields := range []int{50, 500, 5000} {
		b.Run(fmt.Sprintf("%dFields", fields), func(b *testing.B) {
			input := filepath.Join(b.TempDir(), "wide.json")
			writeJSON(b, input, generateWideJSON(fields))
			benchmarkTargets(b, input)
		})
	}
}

// BenchmarkLargeDocuments benchmarks documents with many records
func BenchmarkLargeDocuments(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	for _, count := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("%dItems", count), func(b *testing.B) {
			input := filepath.Join(b.TempDir(), "items.json")
			writeJSON(b, input, generateItems(rand.New(rand.NewSource(42)), count))
			benchmarkTargets(b, input)
		})
	}
}
