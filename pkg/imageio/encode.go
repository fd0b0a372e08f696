package imageio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Format names an output encoding
type Format string

// Supported output formats
const (
	FormatPNG   Format = "png"
	FormatPPM   Format = "ppm"
	FormatRawGz Format = "raw.gz"
)

// ErrUnknownFormat is returned for output formats with no encoder
var ErrUnknownFormat = errors.New("unknown image format")

// rawMagic opens the 16 byte header of raw dumps: magic, width, height, channels
var rawMagic = [4]byte{'R', 'G', 'B', '8'}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatPNG, FormatPPM, FormatRawGz:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".raw.gz") {
		return FormatRawGz, nil
	}
	return ParseFormat(strings.TrimPrefix(filepath.Ext(lower), "."))
}

// ContentType returns the MIME type of a format
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatPPM:
		return "image/x-portable-pixmap"
	default:
		return "application/gzip"
	}
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		return nil
	case FormatPPM:
		return encodePPM(w, img)
	case FormatRawGz:
		return encodeRawGz(w, img)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Save encodes img into a new file, choosing the format from the extension
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, img, format); err != nil {
		return err
	}
	return file.Close()
}

// encodePPM writes a binary P6 pixmap
func encodePPM(w io.Writer, img image.Image) error {
	pixels, width, height := toRGB(img)

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}
	if _, err := bw.Write(pixels); err != nil {
		return fmt.Errorf("failed to write PPM pixels: %w", err)
	}
	return bw.Flush()
}

// encodeRawGz writes the header and RGB buffer through a gzip stream
func encodeRawGz(w io.Writer, img image.Image) error {
	pixels, width, height := toRGB(img)

	zw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}

	var header [16]byte
	copy(header[:4], rawMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(width))
	binary.LittleEndian.PutUint32(header[8:12], uint32(height))
	binary.LittleEndian.PutUint32(header[12:16], 3)

	if _, err := zw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write raw header: %w", err)
	}
	if _, err := zw.Write(pixels); err != nil {
		return fmt.Errorf("failed to write raw pixels: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// DecodeRawGz reads a raw.gz dump back into its RGB buffer and dimensions
func DecodeRawGz(r io.Reader) ([]byte, int, int, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	var header [16]byte
	if _, err := io.ReadFull(zr, header[:]); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read raw header: %w", err)
	}
	if [4]byte(header[:4]) != rawMagic {
		return nil, 0, 0, fmt.Errorf("%w: bad raw magic %q", ErrUnknownFormat, header[:4])
	}

	width := int(binary.LittleEndian.Uint32(header[4:8]))
	height := int(binary.LittleEndian.Uint32(header[8:12]))
	channels := int(binary.LittleEndian.Uint32(header[12:16]))
	if channels != 3 {
		return nil, 0, 0, fmt.Errorf("%w: %d channels", ErrUnknownFormat, channels)
	}

	pixels := make([]byte, width*height*channels)
	if _, err := io.ReadFull(zr, pixels); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read raw pixels: %w", err)
	}
	return pixels, width, height, nil
}
