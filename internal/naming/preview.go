package naming

const (
	previewName = "sample"
	previewSize = 64
	previewExt  = ".png"
)

var (
	sampleNames = []string{"logo", "icon", "banner", "thumbnail", "profile"}
	sampleSizes = []int{16, 32, 64, 128, 256}
)

// Preview renders the filename a pattern produces for name at the start
// number, using a 64x64 PNG as the example output. An empty name falls back
// to "sample".
func Preview(pattern string, name string, start int, includeDimensions bool) (string, error) {
	t, err := Parse(pattern)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = previewName
	}
	s := Scheme{Template: t, StartNumber: start, IncludeDimensions: includeDimensions}
	return s.Filename(name, 0, previewSize, previewExt), nil
}

// Samples lists example filenames for a pattern across a fixed set of names,
// numbering them sequentially from start.
func Samples(pattern string, start int, includeDimensions bool) ([]string, error) {
	if err := Validate(pattern); err != nil {
		return nil, err
	}
	t, _ := Parse(pattern)
	s := Scheme{Template: t, StartNumber: start, IncludeDimensions: includeDimensions}

	out := make([]string, 0, len(sampleNames))
	for i, name := range sampleNames {
		out = append(out, s.Filename(name, i, sampleSizes[i%len(sampleSizes)], previewExt))
	}
	return out, nil
}
