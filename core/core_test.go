package core

import (
	"bytes"
	"go/parser"
	"go/token"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorContains(t, err, "verbose")
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown", "key", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown key=1")
	assert.Same(t, log, LoggerOrDefault(log))
	assert.Same(t, slog.Default(), LoggerOrDefault(nil))
}

func TestColorAdd(t *testing.T) {
	c := Color{R: 0.25, G: 0.5}.Add(Color{R: 0.25, B: 1, A: 1})
	assert.Equal(t, Color{R: 0.5, G: 0.5, B: 1, A: 1}, c)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 1}, c.Vec3())
	assert.Equal(t, mgl32.Vec4{0.5, 0.5, 1, 1}, c.Vec4())
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.GetMatrix().ApproxEqual(mgl32.Ident4()))

	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := tr.GetMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(t, p.ApproxEqual(mgl32.Vec4{3, 2, 3, 1}))
}

// Packages without a GL context import core, so it must stay free of cgo.
func TestCoreHasNoCgoImports(t *testing.T) {
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	fset := token.NewFileSet()
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		require.NoError(t, err, name)
		for _, imp := range f.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.NotEqual(t, "C", path, name)
			assert.False(t, strings.Contains(path, "go-gl/glfw"), "%s imports %s", name, path)
		}
	}
}
