package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// ErrResourceUnavailable marks an optional resource that is not present.
var ErrResourceUnavailable = errors.New("resource unavailable")

// ResourceProvider supplies the optional font and logo of a report. It is
// queried once per render; either resource may be missing.
type ResourceProvider interface {
	// Font returns the bytes of a TrueType font with Unicode coverage.
	Font() ([]byte, error)
	// Logo returns the image drawn at the top of the first page.
	Logo() (*Image, error)
}

// Image is an encoded raster image with its pixel size.
type Image struct {
	Name   string
	Data   []byte
	Format string
	Width  int
	Height int
}

// DecodeImage reads the format and pixel size of PNG or JPEG data.
func DecodeImage(name string, data []byte) (*Image, error) {
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image %s has no area", name)
	}
	return &Image{
		Name:   name,
		Data:   data,
		Format: kind,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// AspectRatio returns height over width.
func (img *Image) AspectRatio() float64 {
	if img == nil || img.Width == 0 {
		return 0
	}
	return float64(img.Height) / float64(img.Width)
}

// pdfType is the fpdf image type name.
func (img *Image) pdfType() string {
	if strings.EqualFold(img.Format, "jpeg") {
		return "JPG"
	}
	return strings.ToUpper(img.Format)
}

// FileResources reads the font and logo from disk. Empty paths and missing
// files report ErrResourceUnavailable.
type FileResources struct {
	FontPath string
	LogoPath string
}

// Font implements ResourceProvider.
func (r FileResources) Font() ([]byte, error) {
	return readOptional(r.FontPath)
}

// Logo implements ResourceProvider.
func (r FileResources) Logo() (*Image, error) {
	data, err := readOptional(r.LogoPath)
	if err != nil {
		return nil, err
	}
	return DecodeImage(r.LogoPath, data)
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrResourceUnavailable
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrResourceUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// StaticResources serves in-memory resources. Nil fields are unavailable.
type StaticResources struct {
	FontData []byte
	LogoImg  *Image
}

// Font implements ResourceProvider.
func (r StaticResources) Font() ([]byte, error) {
	if len(r.FontData) == 0 {
		return nil, ErrResourceUnavailable
	}
	return r.FontData, nil
}

// Logo implements ResourceProvider.
func (r StaticResources) Logo() (*Image, error) {
	if r.LogoImg == nil {
		return nil, ErrResourceUnavailable
	}
	return r.LogoImg, nil
}

// NoResources provides neither font nor logo.
var NoResources ResourceProvider = StaticResources{}
