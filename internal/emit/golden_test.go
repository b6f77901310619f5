package emit

import (
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruffinoni/errgen/internal/parser"
)

func TestGoldenFixtures(t *testing.T) {
	fixtures, err := filepath.Glob(filepath.Join("..", "..", "testdata", "fixtures", "*.input.go"))
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	generator := NewGenerator()
	for _, inputPath := range fixtures {
		base := strings.TrimSuffix(inputPath, ".input.go")
		expectedPath := base + ".expected.go"

		inputRaw, err := os.ReadFile(inputPath)
		require.NoError(t, err)
		expectedRaw, err := os.ReadFile(expectedPath)
		require.NoError(t, err)
		expected, err := format.Source(expectedRaw)
		require.NoError(t, err)

		parsed, err := parser.ParseFile(filepath.Base(inputPath), inputRaw)
		require.NoError(t, err)
		got, err := generator.Generate(parsed)
		require.NoError(t, err)

		require.Equal(t, string(expected), string(got), "fixture %s", inputPath)
	}
}
