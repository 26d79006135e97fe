package cli

import (
	"bytes"
	"encoding/binary"
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
	_ = binary.Write(&out, binary.BigEndian, uint16(0))  // minor
	_ = binary.Write(&out, binary.BigEndian, uint16(52)) // major
	_ = binary.Write(&out, binary.BigEndian, uint16(entries+1))
	out.Write(pool.Bytes())
	_ = binary.Write(&out, binary.BigEndian, uint16(0x0021))
	_ = binary.Write(&out, binary.BigEndian, uint16(thisClass))

	path := filepath.Join(dir, filepath.Base(name)+".class")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))

	return path
}

func TestAnalyze_NoArgs(t *testing.T) {
	_, _, err := executeCommand("analyze")
	require.Error(t, err)
}

func TestAnalyze_MissingInput(t *testing.T) {
	_, _, err := executeCommand("analyze", "/nonexistent/app.jar", "-o", "-")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestAnalyze_PlotAndOutputExclusive(t *testing.T) {
	_, _, err := executeCommand("analyze", "app.jar", "--plot", "-o", "out.gml")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestAnalyze_SinkRequired(t *testing.T) {
	_, _, err := executeCommand("analyze", "app.jar")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "exactly one sink")
}

func TestAnalyze_TitleRequiresPlot(t *testing.T) {
	_, _, err := executeCommand("analyze", "app.jar", "-o", "out.gml", "--title", "deps")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "--title requires --plot")
}

func TestAnalyze_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo")

	_, _, err := executeCommand("analyze", path, "-o", "-", "-f", "xml")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestAnalyze_InvalidMode(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo")

	_, _, err := executeCommand("analyze", path, "-o", "-", "-m", "method")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestAnalyze_InvalidRegexpRule(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo")

	_, _, err := executeCommand("analyze", path, "-o", "-", "--include-regexp", "[unclosed")
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestAnalyze_DOTToStdout(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo", "com/app/Bar")

	stdout, _, err := executeCommand("--quiet", "analyze", path, "-o", "-", "-f", "dot")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"com.app.Foo"`)
	// Bar was never scanned, so the default boundary policy creates an
	// external node for it.
	assert.Contains(t, stdout, `"com.app.Bar" [style=dashed]`)
	assert.Contains(t, stdout, `"com.app.Foo" -> "com.app.Bar"`)
}

func TestAnalyze_RemoveExternalConnections(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo", "java/lang/Object")

	stdout, _, err := executeCommand("--quiet", "analyze", path, "-o", "-", "-f", "dot", "-r")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"com.app.Foo"`)
	assert.NotContains(t, stdout, "java.lang.Object")
}

func TestAnalyze_PackageMode(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo", "com/lib/Helper")

	stdout, _, err := executeCommand("--quiet", "analyze", path, "-o", "-", "-f", "dot", "-m", "package")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"com.app"`)
	assert.Contains(t, stdout, `"com.app" -> "com.lib"`)
	assert.NotContains(t, stdout, "com.app.Foo")
}

func TestAnalyze_RuleOrderMatters(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo")

	// Removing the prefix first means the include test no longer matches.
	stdout, _, err := executeCommand("--quiet", "analyze", path, "-o", "-", "-f", "dot", "-r",
		"--remove-prefix", "com.", "--include-prefix", "com.")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Foo")

	// Reversed order keeps the node under its rewritten name.
	stdout, _, err = executeCommand("--quiet", "analyze", path, "-o", "-", "-f", "dot", "-r",
		"--include-prefix", "com.", "--remove-prefix", "com.")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"app.Foo"`)
}

func TestAnalyze_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo")
	outPath := filepath.Join(dir, "deps.gml")

	_, _, err := executeCommand("--quiet", "analyze", path, "-o", outPath)
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `label "com.app.Foo"`)
}

func TestDiff_NoArgs(t *testing.T) {
	_, _, err := executeCommand("diff")
	require.Error(t, err)
}

func TestDiff_Identical(t *testing.T) {
	dir := t.TempDir()
	path := writeClassFile(t, dir, "com/app/Foo", "com/app/Bar")

	_, stderr, err := executeCommand("--quiet", "diff", path, path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "no differences")
}

func TestDiff_Different(t *testing.T) {
	oldDir := t.TempDir()
	newDir := t.TempDir()
	oldPath := writeClassFile(t, oldDir, "com/app/Foo")
	newPath := writeClassFile(t, newDir, "com/app/Foo", "com/app/Bar")

	stdout, _, err := executeCommand("--quiet", "diff", oldPath, newPath)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Code)
	assert.Contains(t, stdout, "+")
	assert.Contains(t, stdout, "com.app.Bar")
}

func TestWatch_RequiresOutput(t *testing.T) {
	_, _, err := executeCommand("watch", "app.jar")
	require.Error(t, err)
}

func TestFormats_ListsAll(t *testing.T) {
	stdout, _, err := executeCommand("formats")
	require.NoError(t, err)

	for _, format := range []string{"dot", "gml", "graphml", "json"} {
		assert.Contains(t, stdout, format)
	}
}

func TestCompletion_Bash(t *testing.T) {
	stdout, _, err := executeCommand("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bash completion")
}

func TestCompletion_Zsh(t *testing.T) {
	stdout, _, err := executeCommand("completion", "zsh")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "invalid")
	require.Error(t, err)
}

func TestCompletion_NoArgs(t *testing.T) {
	_, _, err := executeCommand("completion")
	require.Error(t, err)
}
