package debug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Screenshot file formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// ScreenshotFormats lists the supported formats.
var ScreenshotFormats = []string{FormatPNG, FormatWebP, FormatTGA}

// ScreenshotCapture writes viewport captures to image files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	format    string
	maxSize   int
	now       func() time.Time
}

// ScreenshotOption configures a ScreenshotCapture.
type ScreenshotOption func(*ScreenshotCapture)

// WithFormat selects the file format. Unknown formats fall back to PNG.
func WithFormat(format string) ScreenshotOption {
	return func(sc *ScreenshotCapture) {
		switch format {
		case FormatWebP, FormatTGA:
			sc.format = format
		default:
			sc.format = FormatPNG
		}
	}
}

// WithMaxSize downscales captures whose longer side exceeds px. Zero keeps
// the framebuffer size.
func WithMaxSize(px int) ScreenshotOption {
	return func(sc *ScreenshotCapture) {
		sc.maxSize = px
	}
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string, opts ...ScreenshotOption) *ScreenshotCapture {
	sc := &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    FormatPNG,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// OutputDir returns the directory screenshots are written to.
func (sc *ScreenshotCapture) OutputDir() string {
	return sc.outputDir
}

// Format returns the file format captures are written in.
func (sc *ScreenshotCapture) Format() string {
	return sc.format
}

// CaptureFromPixels saves raw pixel data read back from the framebuffer.
// pixels should be in RGBA format with width*height*4 bytes.
// The image is flipped vertically since OpenGL has origin at bottom-left.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}

	return sc.save(sc.fit(img))
}

// fit downscales img to maxSize on its longer side.
func (sc *ScreenshotCapture) fit(img *image.RGBA) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if sc.maxSize <= 0 || longest <= sc.maxSize {
		return img
	}
	w := max(1, b.Dx()*sc.maxSize/longest)
	h := max(1, b.Dy()*sc.maxSize/longest)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (sc *ScreenshotCapture) save(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := sc.GenerateFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := sc.encode(file, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", sc.format, err)
	}
	return filename, nil
}

func (sc *ScreenshotCapture) encode(w io.Writer, img image.Image) error {
	switch sc.format {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.%s", sc.prefix, timestamp, sc.format)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}
