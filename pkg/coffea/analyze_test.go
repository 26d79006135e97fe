package coffea

import (
	"bytes"
	"context"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeClassFile builds a minimal class file for name (slash form) with
// references to refs and writes it under dir.
func writeClassFile(t *testing.T, dir, name string, refs ...string) string {
	t.Helper()

	var pool bytes.Buffer

	entries := 0

	utf8 := func(s string) int {
		pool.WriteByte(1) // CONSTANT_Utf8
		_ = binary.Write(&pool, binary.BigEndian, uint16(len(s)))
		pool.WriteString(s)
		entries++

		return entries
	}

	class := func(nameIdx int) int {
		pool.WriteByte(7) // CONSTANT_Class
		_ = binary.Write(&pool, binary.BigEndian, uint16(nameIdx))
		entries++

		return entries
	}

	thisClass := class(utf8(name))
	for _, ref := range refs {
		class(utf8(ref))
	}

	var out bytes.Buffer

	_ = binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	_ = binary.Write(&out, binary.BigEndian, uint16(0))
	_ = binary.Write(&out, binary.BigEndian, uint16(52))
	_ = binary.Write(&out, binary.BigEndian, uint16(entries+1))
	out.Write(pool.Bytes())
	_ = binary.Write(&out, binary.BigEndian, uint16(0x0021))
	_ = binary.Write(&out, binary.BigEndian, uint16(thisClass))

	path := filepath.Join(dir, filepath.Base(name)+".class")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))

	return path
}

func TestAnalyze_NoInputs(t *testing.T) {
	_, err := Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one input")
}

func TestAnalyze_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeClassFile(t, dir, "com/app/Foo", "com/app/Bar")

	result, err := Analyze(context.Background(), []string{dir})
	require.NoError(t, err)

	// Bar becomes an external node under the default boundary policy.
	assert.Equal(t, 2, result.NodeCount)
	assert.Equal(t, 1, result.EdgeCount)
	assert.Equal(t, 1, result.UnitCount)
	assert.Equal(t, 1, result.BoundaryCount)
	assert.Contains(t, string(result.Output), `label "com.app.Foo"`)
	assert.Contains(t, string(result.Output), "external 1")
}

func TestAnalyze_RemoveExternalConnections(t *testing.T) {
	dir := t.TempDir()
	writeClassFile(t, dir, "com/app/Foo", "java/lang/Object")

	result, err := Analyze(context.Background(), []string{dir},
		WithRemoveExternalConnections(),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NodeCount)
	assert.Equal(t, 0, result.EdgeCount)
	assert.Equal(t, 1, result.BoundaryCount)
	assert.NotContains(t, string(result.Output), "java.lang.Object")
}

func TestAnalyze_PackageModeWithRules(t *testing.T) {
	dir := t.TempDir()
	writeClassFile(t, dir, "com/app/Foo", "com/lib/Helper", "java/lang/Object")

	result, err := Analyze(context.Background(), []string{dir},
		WithMode("package"),
		WithFormat("dot"),
		WithRemoveExternalConnections(),
		WithRules(ExcludePrefix("java.")),
	)
	require.NoError(t, err)

	text := string(result.Output)
	assert.Contains(t, text, `"com.app"`)
	assert.NotContains(t, text, "java.lang")
}

func TestAnalyze_RuleOrderMatters(t *testing.T) {
	dir := t.TempDir()
	writeClassFile(t, dir, "com/app/Foo")

	result, err := Analyze(context.Background(), []string{dir},
		WithRemoveExternalConnections(),
		WithRules(RemovePrefix("com."), IncludePrefix("com.")),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, result.NodeCount)

	result, err = Analyze(context.Background(), []string{dir},
		WithRemoveExternalConnections(),
		WithRules(IncludePrefix("com."), RemovePrefix("com.")),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NodeCount)
	assert.Contains(t, string(result.Output), "app.Foo")
}

func TestAnalyze_RuleCounts(t *testing.T) {
	dir := t.TempDir()
	writeClassFile(t, dir, "com/app/Foo", "java/lang/Object")

	result, err := Analyze(context.Background(), []string{dir},
		WithRemoveExternalConnections(),
		WithRules(ExcludePrefix("java."), RemovePrefix("com.")),
	)
	require.NoError(t, err)

	require.Len(t, result.RuleCounts, 2)
	assert.Equal(t, "exclude-prefix(java.)", result.RuleCounts[0].Rule)
	assert.Equal(t, 0, result.RuleCounts[0].Count)
	assert.Equal(t, "remove-prefix(com.)", result.RuleCounts[1].Rule)
	assert.Equal(t, 1, result.RuleCounts[1].Count)
}

func TestAnalyze_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"invalid mode", WithMode("method")},
		{"invalid format", WithFormat("xml")},
		{"invalid node size", WithNodeSize("loc")},
		{"invalid regexp rule", WithRules(IncludeRegexp("[unclosed"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeClassFile(t, dir, "com/app/Foo")

			_, err := Analyze(context.Background(), []string{dir}, tt.opt)
			require.Error(t, err)
		})
	}
}

func TestAnalyze_MissingInput(t *testing.T) {
	_, err := Analyze(context.Background(), []string{"/nonexistent/app.jar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `input "/nonexistent/app.jar"`)
}

func TestAnalyze_MissingInputFailsFast(t *testing.T) {
	dir := t.TempDir()
	valid := writeClassFile(t, dir, "com/app/Foo")
	missing := filepath.Join(dir, "absent.jar")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Analyze(context.Background(), []string{valid, missing}, WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)

	// Validation precedes all work: the valid first input was never scanned.
	assert.NotContains(t, logs.String(), "scanning")
}
