package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/dmscan/internal/scanner"
	"github.com/scanforge/dmscan/internal/symbol"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "dmscan")
	assert.Contains(t, out, "image")
	assert.Contains(t, out, "encode")
	assert.Contains(t, out, "serve")
}

func TestRootVersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dmscan version")
}

func TestEncodeAndScanRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbol.png")

	out, err := executeCommand(t, "encode", "CLI ROUND TRIP", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = executeCommand(t, "image", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "CLI ROUND TRIP")
}

func TestEncodeRequiresText(t *testing.T) {
	_, err := executeCommand(t, "encode")
	assert.Error(t, err)
}

func TestEncodeRequiresOutput(t *testing.T) {
	_, err := executeCommand(t, "encode", "NO OUTPUT", "--output", "")
	assert.Error(t, err)
}

func TestImageRequiresFiles(t *testing.T) {
	_, err := executeCommand(t, "image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestImageMissingFile(t *testing.T) {
	_, err := executeCommand(t, "image", "/nonexistent/input.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestPDFRequiresFiles(t *testing.T) {
	_, err := executeCommand(t, "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestConfigCommand(t *testing.T) {
	out, err := executeCommand(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level:")
	assert.Contains(t, out, "scanner:")
	assert.Contains(t, out, "server:")
}

func TestParseShape(t *testing.T) {
	shape, err := parseShape("auto")
	require.NoError(t, err)
	assert.Equal(t, symbol.ShapeAny, shape)

	shape, err = parseShape("Square")
	require.NoError(t, err)
	assert.Equal(t, symbol.ShapeSquare, shape)

	shape, err = parseShape("rectangle")
	require.NoError(t, err)
	assert.Equal(t, symbol.ShapeRectangle, shape)

	_, err = parseShape("round")
	assert.Error(t, err)
}

func TestFormatResults(t *testing.T) {
	results := []fileResult{
		{File: "a.png", Data: []string{"ONE"}},
		{File: "b.png", Data: []string{}, Reason: scanner.ReasonNoRegionFound.String()},
	}

	out, err := formatResults(results, outputFormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"file": "a.png"`)
	assert.Contains(t, out, `"ONE"`)
	assert.Contains(t, out, `"reason": "no_region_found"`)

	out, err = formatResults(results, outputFormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "a.png: ONE")
	assert.Contains(t, out, "b.png: no symbol found (no_region_found)")

	out, err = formatResults(results, outputFormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "file,data,reason", lines[0])
	assert.Equal(t, "a.png,ONE,", lines[1])
	assert.Equal(t, "b.png,,no_region_found", lines[2])
}

func TestCSVEscape(t *testing.T) {
	assert.Equal(t, "plain", csvEscape("plain"))
	assert.Equal(t, `"a,b"`, csvEscape("a,b"))
	assert.Equal(t, `"say ""hi"""`, csvEscape(`say "hi"`))
	assert.Equal(t, "\"a\nb\"", csvEscape("a\nb"))
}

func TestRenderModules(t *testing.T) {
	img := renderModules(10, 12, 3, 2, func(x, y int) bool { return x == 0 })
	assert.Equal(t, 10*3+2*2*3, img.Bounds().Dx())
	assert.Equal(t, 12*3+2*2*3, img.Bounds().Dy())

	// Quiet zone white, first module column black.
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
	r, _, _, _ = img.At(6, 6).RGBA()
	assert.Equal(t, uint32(0), r)
}
