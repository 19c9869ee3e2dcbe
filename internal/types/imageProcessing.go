package types

import "image"

// ResizeRequest carries one run of the resize routine. An empty NamingPattern
// selects the default "{name}_{size}x{size}{ext}" scheme.
type ResizeRequest struct {
	InputPath         string `json:"inputPath"`
	OutputDir         string `json:"outputDir"`
	Sizes             []int  `json:"sizes"`
	NamingPattern     string `json:"namingPattern,omitempty"`
	StartNumber       int    `json:"startNumber"`
	IncludeDimensions bool   `json:"includeDimensions"`
	Format            Format `json:"format"`
}

// Source is the decoded input image. It is read once and never mutated.
type Source struct {
	Path   string
	Name   string
	Ext    string
	Image  image.Image
	Width  int
	Height int
	Mode   string
	Format string
}
