package transformation

import (
	"bytes"
	"image"
	"path/filepath"

	// Registering decoders with the standard 'image' package. imaging itself
	// pulls in bmp and tiff; ico and webp register from codec.go.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/mahirjain10/image-dimension-converter/internal/types"
	"github.com/mahirjain10/image-dimension-converter/internal/utils"
)

// Color modes reported for a decoded image.
const (
	ModeRGB  = "RGB"
	ModeRGBA = "RGBA"
	ModeL    = "L"
	ModeP    = "P"
	ModeCMYK = "CMYK"
)

// Decode decodes buffer with whichever registered decoder claims it and
// returns the decoder's format name alongside the image.
func Decode(buffer []byte) (image.Image, string, error) {
	img, formatStr, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decode image")
	}
	return img, formatStr, nil
}

// LoadSource reads the file at path and decodes it into a Source.
func LoadSource(path string) (*types.Source, error) {
	buffer, err := utils.ReadImageBuffer(path)
	if err != nil {
		return nil, err
	}
	img, formatStr, err := Decode(buffer)
	if err != nil {
		return nil, errors.Wrap(err, filepath.Base(path))
	}

	name, ext := utils.SplitName(path)
	b := img.Bounds()
	return &types.Source{
		Path:   path,
		Name:   name,
		Ext:    ext,
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
		Mode:   ColorMode(img),
		Format: formatStr,
	}, nil
}

// ColorMode classifies img by its pixel layout. Truecolor images without any
// transparent pixel report RGB.
func ColorMode(img image.Image) string {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeL
	case *image.Paletted:
		return ModeP
	case *image.CMYK:
		return ModeCMYK
	case *image.YCbCr:
		return ModeRGB
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	}
	return ModeRGBA
}

// HasAlpha reports whether the color mode carries an alpha channel.
func HasAlpha(mode string) bool {
	return mode == ModeRGBA
}

// ToNRGBA copies img into a non-premultiplied RGBA image.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// Square stretches img to exactly size x size pixels with a Lanczos filter.
// The aspect ratio of the source is not preserved.
func Square(img image.Image, size int) *image.NRGBA {
	return imaging.Resize(img, size, size, imaging.Lanczos)
}

// Opaque drops the alpha channel of img: every pixel keeps its color and
// becomes fully opaque.
func Opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
