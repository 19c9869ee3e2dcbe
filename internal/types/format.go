package types

import (
	"fmt"
	"strings"
)

// Format is the output encoding selected for saved files
type Format string

const (
	// FormatOriginal keeps the extension and codec of the source file.
	FormatOriginal Format = ""
	FormatPNG      Format = "PNG"
	FormatJPEG     Format = "JPEG"
	FormatGIF      Format = "GIF"
	FormatICO      Format = "ICO"
	FormatWEBP     Format = "WEBP"
)

// Formats lists every selectable output format in display order.
var Formats = []Format{FormatOriginal, FormatPNG, FormatJPEG, FormatGIF, FormatICO, FormatWEBP}

// ParseFormat maps user input to a Format. "original" and the empty string both
// select FormatOriginal; "jpg" is accepted as an alias for JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ORIGINAL":
		return FormatOriginal, nil
	case "PNG":
		return FormatPNG, nil
	case "JPEG", "JPG":
		return FormatJPEG, nil
	case "GIF":
		return FormatGIF, nil
	case "ICO":
		return FormatICO, nil
	case "WEBP":
		return FormatWEBP, nil
	default:
		return FormatOriginal, fmt.Errorf("unsupported output format %q", s)
	}
}

// Extension returns the file extension written for f, including the dot.
// FormatOriginal has no extension of its own.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatOriginal:
		return ""
	default:
		return "." + strings.ToLower(string(f))
	}
}

func (f Format) String() string {
	if f == FormatOriginal {
		return "original format"
	}
	return string(f)
}
