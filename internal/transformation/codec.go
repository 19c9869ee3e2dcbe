package transformation

import (
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	ico "github.com/sergeymakinen/go-ico"

	"github.com/mahirjain10/image-dimension-converter/internal/types"
)

// Codec identifies the encoder used for an output file
type Codec int

const (
	CodecPNG Codec = iota
	CodecJPEG
	CodecGIF
	CodecBMP
	CodecTIFF
	CodecICO
	CodecWEBP
)

const (
	JPEGQuality = 95
	WEBPQuality = 80
)

// ICOSizes are the only square dimensions written for ICO output.
var ICOSizes = []int{16, 24, 32, 48, 64, 128, 256}

// IsICOSize reports whether size is one of ICOSizes.
func IsICOSize(size int) bool {
	for _, s := range ICOSizes {
		if s == size {
			return true
		}
	}
	return false
}

var codecNames = map[Codec]string{
	CodecPNG:  "PNG",
	CodecJPEG: "JPEG",
	CodecGIF:  "GIF",
	CodecBMP:  "BMP",
	CodecTIFF: "TIFF",
	CodecICO:  "ICO",
	CodecWEBP: "WEBP",
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return "unknown"
}

// Target is the resolved output codec and extension for a run. Explicit is
// false when the codec was inferred from the source extension, in which case
// encoders run with their default settings.
type Target struct {
	Codec    Codec
	Ext      string
	Explicit bool
}

// codecFromExtension maps a file extension to its codec
func codecFromExtension(ext string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "ico":
		return CodecICO, nil
	case "webp":
		return CodecWEBP, nil
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return 0, errors.Wrapf(err, "no encoder for extension %q", ext)
	}
	switch format {
	case imaging.JPEG:
		return CodecJPEG, nil
	case imaging.PNG:
		return CodecPNG, nil
	case imaging.GIF:
		return CodecGIF, nil
	case imaging.BMP:
		return CodecBMP, nil
	case imaging.TIFF:
		return CodecTIFF, nil
	default:
		return 0, errors.Errorf("no encoder for extension %q", ext)
	}
}

// ResolveTarget picks the codec and extension for format. FormatOriginal keeps
// sourceExt as written and infers the codec from it.
func ResolveTarget(format types.Format, sourceExt string) (Target, error) {
	switch format {
	case types.FormatOriginal:
		codec, err := codecFromExtension(sourceExt)
		if err != nil {
			return Target{}, err
		}
		return Target{Codec: codec, Ext: sourceExt}, nil
	case types.FormatPNG:
		return Target{Codec: CodecPNG, Ext: format.Extension(), Explicit: true}, nil
	case types.FormatJPEG:
		return Target{Codec: CodecJPEG, Ext: format.Extension(), Explicit: true}, nil
	case types.FormatGIF:
		return Target{Codec: CodecGIF, Ext: format.Extension(), Explicit: true}, nil
	case types.FormatICO:
		return Target{Codec: CodecICO, Ext: format.Extension(), Explicit: true}, nil
	case types.FormatWEBP:
		return Target{Codec: CodecWEBP, Ext: format.Extension(), Explicit: true}, nil
	default:
		return Target{}, errors.Errorf("unsupported output format %q", string(format))
	}
}

// Encode writes img to w using the target codec.
//
// JPEG output never carries transparency: the alpha channel is dropped before
// encoding. An ICO file holds the single image it is given, at that image's
// size.
func Encode(w io.Writer, img image.Image, target Target) error {
	var err error
	switch target.Codec {
	case CodecJPEG:
		err = imaging.Encode(w, Opaque(img), imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case CodecPNG:
		level := png.DefaultCompression
		if target.Explicit {
			level = png.BestCompression
		}
		err = imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
	case CodecGIF:
		err = imaging.Encode(w, img, imaging.GIF)
	case CodecBMP:
		err = imaging.Encode(w, img, imaging.BMP)
	case CodecTIFF:
		err = imaging.Encode(w, img, imaging.TIFF)
	case CodecICO:
		b := img.Bounds()
		if b.Dx() != b.Dy() || !IsICOSize(b.Dx()) {
			return errors.Errorf("cannot encode %dx%d image as ICO", b.Dx(), b.Dy())
		}
		err = ico.Encode(w, img)
	case CodecWEBP:
		err = webp.Encode(w, img, &webp.Options{Quality: WEBPQuality})
	default:
		return errors.Errorf("unsupported codec %d", target.Codec)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", target.Codec)
	}
	return nil
}

// Save encodes img into a new file at path, replacing any existing file.
func Save(path string, img image.Image, target Target) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	return Encode(out, img, target)
}
