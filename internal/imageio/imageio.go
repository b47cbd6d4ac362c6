// Package imageio reads and writes the image files the paint program
// works with. Decoding and encoding are delegated to the standard codecs
// and golang.org/x/image; this package only picks the codec.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 90

// sniffLen is how many leading bytes are inspected to detect a format.
const sniffLen = 261

// ErrUnsupportedFormat indicates a file that is not PNG, JPEG or BMP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is a supported image encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatBMP
)

// String returns the conventional extension of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// FormatFromPath returns the format implied by a file name's extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "":
		return FormatUnknown, fmt.Errorf("%s has no extension: %w", path, ErrUnsupportedFormat)
	default:
		return FormatUnknown, fmt.Errorf("extension %q: %w", ext, ErrUnsupportedFormat)
	}
}

// Detect identifies the format from the leading bytes of a file.
func Detect(head []byte) (Format, error) {
	kind, err := filetype.Match(head)
	if err != nil {
		return FormatUnknown, fmt.Errorf("detect format: %w", err)
	}
	switch kind.Extension {
	case "png":
		return FormatPNG, nil
	case "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case filetype.Unknown.Extension:
		return FormatUnknown, ErrUnsupportedFormat
	default:
		return FormatUnknown, fmt.Errorf("%s: %w", kind.MIME.Value, ErrUnsupportedFormat)
	}
}

// Decode reads an image, detecting its format from the content.
func Decode(r io.Reader) (image.Image, Format, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, FormatUnknown, fmt.Errorf("read header: %w", err)
	}

	f, err := Detect(head)
	if err != nil {
		return nil, FormatUnknown, err
	}

	var img image.Image
	switch f {
	case FormatPNG:
		img, err = png.Decode(br)
	case FormatJPEG:
		img, err = jpeg.Decode(br)
	case FormatBMP:
		img, err = bmp.Decode(br)
	}
	if err != nil {
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}
	return img, f, nil
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("encode %s: %w", f, ErrUnsupportedFormat)
	}
}

// Open reads the image file at path.
func Open(path string) (image.Image, Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, FormatUnknown, err
	}
	defer file.Close()

	img, f, err := Decode(file)
	if err != nil {
		return nil, f, fmt.Errorf("%s: %w", path, err)
	}
	return img, f, nil
}

// DefaultFileMode is the permission of newly saved images.
const DefaultFileMode os.FileMode = 0o644

// Save writes img to path in the format named by its extension.
// The file is written to a temporary name and renamed into place so a
// failed save never leaves a truncated image behind. An existing file
// keeps its permissions; a new one gets DefaultFileMode.
func Save(img image.Image, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	perm := DefaultFileMode
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pixelstorm-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	name := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(name)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp: %w", err)
	}
	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, img, f); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	success = true
	return nil
}
