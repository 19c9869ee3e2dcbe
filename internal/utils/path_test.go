package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mahirjain10/image-dimension-converter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		path, name, ext string
	}{
		{"/tmp/logo.png", "logo", ".png"},
		{"icon.bmp", "icon", ".bmp"},
		{"photo.final.JPG", "photo.final", ".JPG"},
		{"noext", "noext", ""},
		{"/a/.png", ".png", ""},
	}
	for _, tt := range tests {
		name, ext := SplitName(tt.path)
		assert.Equal(t, tt.name, name, tt.path)
		assert.Equal(t, tt.ext, ext, tt.path)
	}
}

func TestPathUtilCreatesParents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	p, err := PathUtil(dir, "out.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.png"), p)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPathUtilRejectsNestedNames(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")

	for _, name := range []string{"../escaped.png", "sub/dir/0.png", `a\b.png`, "..", ".", ""} {
		_, err := PathUtil(dir, name)
		assert.Error(t, err, name)
	}

	_, err := os.Stat(filepath.Join(root, "escaped.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "sub"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsureDirExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(filepath.Join(dir, "nested")))
}

func TestReadImageBufferMissing(t *testing.T) {
	_, err := ReadImageBuffer(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReport(t *testing.T) {
	r := InitReport("out")
	assert.Equal(t, types.PROCESSED, r.Status)
	r.Files = append(r.Files, "out/a.png")

	MarkFailed(r, errors.New("disk full"))
	assert.Equal(t, types.FAILED, r.Status)
	assert.Equal(t, "disk full", r.ErrorMsg)
	assert.Equal(t, []string{"out/a.png"}, r.Files)

	b, err := SerializeJSON(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status": "FAILED"`)
}
