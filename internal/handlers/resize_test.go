package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	ico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahirjain10/image-dimension-converter/internal/types"
)

// writeTestImage saves a w x h image with a transparent right half to dir/name
// and returns its path. The encoder follows the file extension.
func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 10, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{G: 90, B: 250, A: 0})
			}
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

// writeOpaqueImage saves a solid w x h image to dir/name and returns its path.
func writeOpaqueImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{R: 30, G: 160, B: 90, A: 255}), path))
	return path
}

func newTestHandler() (*ResizeHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewResizeHandler(log.New(&buf, "", 0)), &buf
}

func TestResizeDimensions(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "wide.png", 90, 30)
	out := filepath.Join(dir, "out")
	h, logs := newTestHandler()

	sizes := []int{16, 24, 100, 512}
	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: sizes})
	require.NoError(t, err)
	assert.Equal(t, types.PROCESSED, report.Status)
	require.Len(t, report.Files, len(sizes))

	for i, size := range sizes {
		assert.Equal(t, filepath.Join(out, fmt.Sprintf("wide_%dx%d.png", size, size)), report.Files[i])
		img, err := imaging.Open(report.Files[i])
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx(), "width for %d", size)
		assert.Equal(t, size, img.Bounds().Dy(), "height for %d", size)
	}
	assert.Contains(t, logs.String(), "Successfully created 4 resized images in "+out)
}

func TestResizeCreatesOutputDir(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 20, 20)
	out := filepath.Join(dir, "deep", "nested", "out")
	h, _ := newTestHandler()

	assert.True(t, h.ResizeImage(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: []int{16}}))
	_, err := os.Stat(filepath.Join(out, "logo_16x16.png"))
	assert.NoError(t, err)
}

func TestResizeNamingTemplate(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 40, 40)
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{
		InputPath:         src,
		OutputDir:         dir,
		Sizes:             []int{32, 64},
		NamingPattern:     "{name}_{num}",
		StartNumber:       5,
		IncludeDimensions: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "logo_5_32x32.png"),
		filepath.Join(dir, "logo_6_64x64.png"),
	}, report.Files)

	report, err = h.Resize(types.ResizeRequest{
		InputPath:     src,
		OutputDir:     dir,
		Sizes:         []int{32},
		NamingPattern: "app-{num}",
		StartNumber:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "app-1.png")}, report.Files)
}

func TestResizeDefaultNamingKeepsSourceExtension(t *testing.T) {
	dir := t.TempDir()
	src := writeOpaqueImage(t, dir, "icon.bmp", 80, 80)
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir, Sizes: []int{64}})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "icon_64x64.bmp")}, report.Files)

	img, err := imaging.Open(report.Files[0])
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestResizeICOFiltersSizes(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "app.png", 300, 300)
	h, logs := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{
		InputPath: src,
		OutputDir: dir,
		Sizes:     []int{16, 20, 256, 512},
		Format:    types.FormatICO,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{20, 512}, report.Skipped)
	require.Equal(t, []string{
		filepath.Join(dir, "app_16x16.ico"),
		filepath.Join(dir, "app_256x256.ico"),
	}, report.Files)
	assert.Contains(t, logs.String(), "Warning: Size 20x20 is not valid for ICO format. Skipping.")
	assert.Contains(t, logs.String(), "Warning: Size 512x512 is not valid for ICO format. Skipping.")

	for i, size := range []int{16, 256} {
		f, err := os.Open(report.Files[i])
		require.NoError(t, err)
		img, err := ico.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
		assert.Equal(t, size, img.Bounds().Dy())
	}
}

func TestResizeICONoValidSizes(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "app.png", 30, 30)
	out := filepath.Join(dir, "out")
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: []int{20, 512}, Format: types.FormatICO})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoValidSizes))
	assert.Equal(t, types.FAILED, report.Status)
	assert.Empty(t, report.Files)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResizeICOFromGrayscale(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	src := filepath.Join(dir, "gray.png")
	require.NoError(t, imaging.Save(gray, src))
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir, Sizes: []int{48}, Format: types.FormatICO})
	require.NoError(t, err)
	assert.Len(t, report.Files, 1)
}

func TestResizeJPEGFromAlphaSource(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 64, 64)
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir, Sizes: []int{32}, Format: types.FormatJPEG})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "logo_32x32.jpg")}, report.Files)

	f, err := os.Open(report.Files[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.True(t, img.(interface{ Opaque() bool }).Opaque())
	assert.Equal(t, 32, img.Bounds().Dx())
}

func TestResizeEachFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "pic.png", 40, 20)
	h, _ := newTestHandler()

	for _, format := range []types.Format{types.FormatPNG, types.FormatJPEG, types.FormatGIF, types.FormatICO, types.FormatWEBP} {
		t.Run(format.String(), func(t *testing.T) {
			out := filepath.Join(dir, format.String())
			report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: []int{32}, Format: format})
			require.NoError(t, err)
			require.Len(t, report.Files, 1)
			assert.Equal(t, format.Extension(), filepath.Ext(report.Files[0]))

			img, err := imaging.Open(report.Files[0])
			require.NoError(t, err)
			assert.Equal(t, 32, img.Bounds().Dx())
			assert.Equal(t, 32, img.Bounds().Dy())
		})
	}
}

func TestResizeRejectsBadRequests(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 20, 20)
	h, logs := newTestHandler()

	_, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir})
	assert.True(t, errors.Is(err, ErrNoSizes))

	_, err = h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir, Sizes: []int{16, 0}})
	assert.True(t, errors.Is(err, ErrInvalidSize))

	_, err = h.Resize(types.ResizeRequest{InputPath: src, OutputDir: dir, Sizes: []int{16}, NamingPattern: "{name}_{size}"})
	assert.Error(t, err)

	assert.False(t, h.ResizeImage(types.ResizeRequest{InputPath: src, OutputDir: dir}))
	assert.Contains(t, logs.String(), "Error: no sizes requested")
}

func TestResizeKeepsOutputsFlat(t *testing.T) {
	root := t.TempDir()
	src := writeTestImage(t, root, "logo.png", 20, 20)
	out := filepath.Join(root, "a", "out")
	h, _ := newTestHandler()

	for _, pattern := range []string{"../../escaped/{name}", "sub/dir/{num}"} {
		report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: []int{16}, NamingPattern: pattern})
		require.Error(t, err, pattern)
		assert.Empty(t, report.Files, pattern)
	}

	_, err := os.Stat(filepath.Join(root, "escaped"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(out, "sub"))
	assert.True(t, os.IsNotExist(err))
}

func TestResizeICOSource(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 64, 64)
	h, _ := newTestHandler()

	first, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: filepath.Join(dir, "ico"), Sizes: []int{32}, Format: types.FormatICO})
	require.NoError(t, err)
	require.Len(t, first.Files, 1)

	source, err := LoadSource(first.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "ico", source.Format)
	assert.Equal(t, 32, source.Width)

	// Original format keeps .ico and its size rules.
	second, err := h.Resize(types.ResizeRequest{InputPath: first.Files[0], OutputDir: filepath.Join(dir, "again"), Sizes: []int{16, 20}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "again", "logo_32x32_16x16.ico")}, second.Files)
	assert.Equal(t, []int{20}, second.Skipped)
}

func TestResizeDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	h, _ := newTestHandler()

	corrupt := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a png"), 0o644))

	report, err := h.Resize(types.ResizeRequest{InputPath: corrupt, OutputDir: dir, Sizes: []int{16}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Equal(t, types.FAILED, report.Status)
	assert.NotEmpty(t, report.ErrorMsg)

	_, err = h.Resize(types.ResizeRequest{InputPath: filepath.Join(dir, "missing.png"), OutputDir: dir, Sizes: []int{16}})
	assert.True(t, errors.Is(err, ErrDecode))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestResizeAbortsOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "logo.png", 20, 20)
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))
	// A directory squatting on the second output name makes that write fail.
	require.NoError(t, os.Mkdir(filepath.Join(out, "logo_32x32.png"), 0o755))
	h, _ := newTestHandler()

	report, err := h.Resize(types.ResizeRequest{InputPath: src, OutputDir: out, Sizes: []int{16, 32, 48}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncode))
	assert.Equal(t, []string{filepath.Join(out, "logo_16x16.png")}, report.Files, "files before the failure remain")

	_, err = os.Stat(filepath.Join(out, "logo_48x48.png"))
	assert.True(t, os.IsNotExist(err), "sizes after the failure are not attempted")
}

func TestResizeUnknownOriginalExtension(t *testing.T) {
	dir := t.TempDir()
	png := writeTestImage(t, dir, "logo.png", 20, 20)
	odd := filepath.Join(dir, "logo.img")
	require.NoError(t, os.Rename(png, odd))
	h, _ := newTestHandler()

	_, err := h.Resize(types.ResizeRequest{InputPath: odd, OutputDir: dir, Sizes: []int{16}})
	assert.True(t, errors.Is(err, ErrEncode))

	report, err := h.Resize(types.ResizeRequest{InputPath: odd, OutputDir: dir, Sizes: []int{16}, Format: types.FormatPNG})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "logo_16x16.png")}, report.Files)
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	src := writeTestImage(t, dir, "banner.final.png", 30, 12)

	s, err := LoadSource(src)
	require.NoError(t, err)
	assert.Equal(t, "banner.final", s.Name)
	assert.Equal(t, ".png", s.Ext)
	assert.Equal(t, 30, s.Width)
	assert.Equal(t, 12, s.Height)
	assert.Equal(t, "RGBA", s.Mode)
	assert.Equal(t, "png", s.Format)
}
