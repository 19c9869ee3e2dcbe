// Package preview produces small display copies of a source image and keeps
// the most recent ones in a bounded cache.
package preview

import (
	"fmt"
	"image"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/mahirjain10/image-dimension-converter/internal/transformation"
)

const (
	MaxWidth  = 400
	MaxHeight = 400
)

// Entry is one loaded preview.
type Entry struct {
	Path      string
	Width     int
	Height    int
	Thumbnail image.Image
}

// Dimensions renders the source size as "WxH".
func (e *Entry) Dimensions() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

type Previewer struct {
	cache *Cache
}

func NewPreviewer(cache *Cache) *Previewer {
	if cache == nil {
		cache = NewCache(DefaultCapacity)
	}
	return &Previewer{cache: cache}
}

// Load returns the preview for path and whether it came from the cache.
// Entries are keyed by path and modification time, so an edited file is
// decoded again.
func (p *Previewer) Load(path string) (*Entry, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, errors.Wrap(err, "error loading preview")
	}
	key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())

	if entry, ok := p.cache.Get(key); ok {
		return entry, true, nil
	}

	source, err := transformation.LoadSource(path)
	if err != nil {
		return nil, false, errors.Wrap(err, "error loading preview")
	}

	w, h := FitSize(source.Width, source.Height)
	entry := &Entry{
		Path:      path,
		Width:     source.Width,
		Height:    source.Height,
		Thumbnail: resize.Resize(uint(w), uint(h), source.Image, resize.Lanczos3),
	}
	p.cache.Put(key, entry)
	return entry, false, nil
}

// FitSize scales width x height into the preview box keeping the aspect
// ratio. Wide images are bounded by width, all others by height; images
// smaller than the box are not enlarged.
func FitSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	aspect := float64(width) / float64(height)

	var w, h int
	if aspect > 1 {
		w = min(width, MaxWidth)
		h = int(float64(w) / aspect)
	} else {
		h = min(height, MaxHeight)
		w = int(float64(h) * aspect)
	}
	return max(w, 1), max(h, 1)
}
