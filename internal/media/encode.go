package media

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
)

// Format is an output encoding for rendered thumbnails.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"

	// FormatDIB is a BITMAPINFOHEADER followed by 32bpp BGRA rows stored
	// bottom-up, the layout a Windows shell host expects from a bitmap
	// handle.
	FormatDIB Format = "dib"
)

// DefaultJPEGQuality is used for FormatJPEG output.
const DefaultJPEGQuality = 90

// ParseFormat accepts a format name case-insensitively. An empty name is
// PNG and "jpg" is an alias for JPEG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "dib":
		return FormatDIB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatDIB:
		return "application/octet-stream"
	default:
		return "image/png"
	}
}

// Extension is the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatBMP:
		return ".bmp"
	case FormatDIB:
		return ".dib"
	default:
		return ".png"
	}
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG, "":
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		// JPEG has no alpha; flatten onto white so transparent areas do not
		// turn black.
		b := img.Bounds()
		flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Point{}, 1.0)
		err = imaging.Encode(w, flat, imaging.JPEG, imaging.JPEGQuality(DefaultJPEGQuality))
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatDIB:
		err = encodeDIB(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// bitmapInfoHeader is the 40-byte Windows BITMAPINFOHEADER.
type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

const bitmapInfoHeaderSize = 40

func encodeDIB(w io.Writer, img image.Image) error {
	src := imaging.Clone(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()

	bw := bufio.NewWriter(w)
	hdr := bitmapInfoHeader{
		Size:      bitmapInfoHeaderSize,
		Width:     int32(width),
		Height:    int32(height), // positive height means bottom-up rows
		Planes:    1,
		BitCount:  32,
		SizeImage: uint32(width * height * 4),
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}

	row := make([]byte, width*4)
	for y := height - 1; y >= 0; y-- {
		line := src.Pix[y*src.Stride : y*src.Stride+width*4]
		for x := 0; x < width; x++ {
			i := x * 4
			row[i+0] = line[i+2]
			row[i+1] = line[i+1]
			row[i+2] = line[i+0]
			row[i+3] = line[i+3]
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
