// Package thumbnail shrinks uploaded images into small JPEG data URLs that
// fit inside a single storage cell.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"strings"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth is the widest thumbnail produced.
	DefaultMaxWidth = 320
	// DefaultQuality is the JPEG quality used for thumbnails.
	DefaultQuality = 40
	// BudgetBytes is the target size of the encoded data URL text.
	BudgetBytes = 37 * 1024
	// DefaultMaxPixels bounds width*height before anything is decoded.
	DefaultMaxPixels = 40_000_000

	jpegDataURLPrefix = "data:image/jpeg;base64,"
)

// ErrNotImage is returned for input that does not look like an image.
var ErrNotImage = errors.New("input is not an image")

// ErrTooLarge is returned for images whose declared dimensions exceed the pixel budget.
var ErrTooLarge = errors.New("image dimensions too large")

// Options tune the compressor. Zero values fall back to the defaults.
type Options struct {
	MaxWidth  int
	Quality   int
	MaxPixels int
}

// Result is a compressed thumbnail.
type Result struct {
	DataURL     string `json:"dataUrl"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Bytes       int    `json:"bytes"`
	OverBudget  bool   `json:"overBudget"`
	Passthrough bool   `json:"passthrough"`
}

// Compressor turns images into JPEG data URLs.
type Compressor struct {
	maxWidth  int
	quality   int
	maxPixels int
}

// New returns a compressor.
func New(opts Options) *Compressor {
	c := &Compressor{maxWidth: opts.MaxWidth, quality: opts.Quality, maxPixels: opts.MaxPixels}
	if c.maxPixels <= 0 {
		c.maxPixels = DefaultMaxPixels
	}
	if c.maxWidth <= 0 {
		c.maxWidth = DefaultMaxWidth
	}
	if c.quality <= 0 || c.quality > 100 {
		c.quality = DefaultQuality
	}
	return c
}

// Compress decodes raw image bytes, scales them down to the maximum width
// and re-encodes them as JPEG. Images already narrow enough are re-encoded at
// their own size. Declared dimensions are checked against the pixel budget
// before the pixels are decoded.
func (c *Compressor) Compress(raw []byte) (Result, error) {
	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return Result{}, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return passthrough(raw, mime), nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(c.maxPixels) {
		return Result{}, fmt.Errorf("%dx%d exceeds %d pixels: %w", cfg.Width, cfg.Height, c.maxPixels, ErrTooLarge)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return passthrough(raw, mime), nil
	}

	dst := c.scale(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return Result{}, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	dataURL := jpegDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
	b := dst.Bounds()
	return Result{
		DataURL:    dataURL,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Bytes:      len(dataURL),
		OverBudget: len(dataURL) > BudgetBytes,
	}, nil
}

// CompressDataURL accepts a base64 data URL instead of raw bytes.
func (c *Compressor) CompressDataURL(dataURL string) (Result, error) {
	raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return Result{}, err
	}
	return c.Compress(raw)
}

// TargetSize returns the output dimensions for a w x h source.
func (c *Compressor) TargetSize(w, h int) (int, int) {
	if w <= c.maxWidth || w == 0 {
		return w, h
	}
	// round(h * maxWidth / w)
	nh := (2*h*c.maxWidth + w) / (2 * w)
	if nh < 1 {
		nh = 1
	}
	return c.maxWidth, nh
}

func (c *Compressor) scale(src image.Image) *image.RGBA {
	sb := src.Bounds()
	w, h := c.TargetSize(sb.Dx(), sb.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha: flatten transparent pixels onto white.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

func passthrough(raw []byte, mime string) Result {
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
	return Result{
		DataURL:     dataURL,
		Bytes:       len(dataURL),
		OverBudget:  len(dataURL) > BudgetBytes,
		Passthrough: true,
	}
}

// DecodeDataURL extracts the payload of a base64 data URL.
func DecodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, ErrNotImage
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data url: %w", ErrNotImage)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %w", err)
	}
	return raw, nil
}
