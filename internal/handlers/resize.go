package handlers

import (
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mahirjain10/image-dimension-converter/internal/naming"
	"github.com/mahirjain10/image-dimension-converter/internal/transformation"
	"github.com/mahirjain10/image-dimension-converter/internal/types"
	"github.com/mahirjain10/image-dimension-converter/internal/utils"
)

var (
	ErrNoSizes      = errors.New("no sizes requested")
	ErrInvalidSize  = errors.New("sizes must be positive")
	ErrNoValidSizes = errors.New("no valid sizes for ICO format")
	ErrDecode       = errors.New("cannot read source image")
	ErrEncode       = errors.New("cannot write resized image")
)

type ResizeHandler struct {
	logger *log.Logger
}

// NewResizeHandler returns a handler writing its diagnostics to logger, or to
// the standard logger when logger is nil.
func NewResizeHandler(logger *log.Logger) *ResizeHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ResizeHandler{logger: logger}
}

// ResizeImage runs the resize routine and reports only success. The cause of
// a failure goes to the handler's logger.
func (h *ResizeHandler) ResizeImage(req types.ResizeRequest) bool {
	if _, err := h.Resize(req); err != nil {
		h.logger.Printf("Error: %v", err)
		return false
	}
	return true
}

// Resize writes one square copy of the source per requested size. The first
// failure aborts the run; files written before it stay on disk and are listed
// in the returned report.
func (h *ResizeHandler) Resize(req types.ResizeRequest) (*types.Report, error) {
	report := utils.InitReport(req.OutputDir)

	scheme, err := h.scheme(req)
	if err != nil {
		return utils.MarkFailed(report, err), err
	}

	source, err := LoadSource(req.InputPath)
	if err != nil {
		return utils.MarkFailed(report, err), err
	}

	if err := utils.EnsureDir(req.OutputDir); err != nil {
		err = wrapKind(ErrEncode, err)
		return utils.MarkFailed(report, err), err
	}

	target, err := transformation.ResolveTarget(req.Format, source.Ext)
	if err != nil {
		err = wrapKind(ErrEncode, err)
		return utils.MarkFailed(report, err), err
	}

	sizes := req.Sizes
	if target.Codec == transformation.CodecICO {
		sizes, report.Skipped = h.icoSizes(req.Sizes)
		if len(sizes) == 0 {
			err := errors.Wrapf(ErrNoValidSizes, "please select from: %v", transformation.ICOSizes)
			return utils.MarkFailed(report, err), err
		}
	}

	img := source.Image
	if target.Codec == transformation.CodecICO && source.Mode != transformation.ModeRGB && source.Mode != transformation.ModeRGBA {
		img = transformation.ToNRGBA(img)
	}

	for i, size := range sizes {
		resized := transformation.Square(img, size)

		outputPath, err := utils.PathUtil(req.OutputDir, scheme.Filename(source.Name, i, size, target.Ext))
		if err != nil {
			err = wrapKind(ErrEncode, err)
			return utils.MarkFailed(report, err), err
		}
		if err := transformation.Save(outputPath, resized, target); err != nil {
			err = wrapKind(ErrEncode, err)
			return utils.MarkFailed(report, err), err
		}

		h.logger.Printf("Created: %s", outputPath)
		report.Files = append(report.Files, outputPath)
	}

	h.logger.Printf("Successfully created %d resized images in %s", len(report.Files), req.OutputDir)
	return report, nil
}

func (h *ResizeHandler) scheme(req types.ResizeRequest) (naming.Scheme, error) {
	if len(req.Sizes) == 0 {
		return naming.Scheme{}, ErrNoSizes
	}
	for _, size := range req.Sizes {
		if size <= 0 {
			return naming.Scheme{}, errors.Wrapf(ErrInvalidSize, "got %d", size)
		}
	}

	scheme := naming.Scheme{StartNumber: req.StartNumber, IncludeDimensions: req.IncludeDimensions}
	if req.NamingPattern != "" {
		tpl, err := naming.Parse(req.NamingPattern)
		if err != nil {
			return naming.Scheme{}, err
		}
		scheme.Template = tpl
	}
	return scheme, nil
}

// icoSizes splits sizes into those ICO can hold and those it cannot, keeping
// request order.
func (h *ResizeHandler) icoSizes(sizes []int) ([]int, []int) {
	var valid, skipped []int
	for _, size := range sizes {
		if transformation.IsICOSize(size) {
			valid = append(valid, size)
			continue
		}
		h.logger.Printf("Warning: Size %dx%d is not valid for ICO format. Skipping.", size, size)
		skipped = append(skipped, size)
	}
	return valid, skipped
}

// wrapKind tags err with one of the package sentinels so both stay visible to
// errors.Is.
func wrapKind(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// LoadSource reads and decodes the image at path. Failures match ErrDecode.
func LoadSource(path string) (*types.Source, error) {
	source, err := transformation.LoadSource(path)
	if err != nil {
		return nil, wrapKind(ErrDecode, err)
	}
	return source, nil
}
