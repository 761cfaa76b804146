package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/Alex1A1ndrA/KompGraf/pkg/material"
)

// ErrUnsupportedFormat is returned when no registered decoder recognizes a file
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DecodeImage reads an image file, auto-detecting the format from its header
func DecodeImage(filename string) (image.Image, string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if errors.Is(err, image.ErrFormat) {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// LoadTexture loads a PNG, JPEG, GIF, BMP, TIFF or WebP file as an 8-bit RGB texture
func LoadTexture(filename string) (*material.ImageTexture, error) {
	img, _, err := DecodeImage(filename)
	if err != nil {
		return nil, err
	}

	texture := material.NewImageTextureFromImage(img)
	if texture.Width == 0 || texture.Height == 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", material.ErrTextureSize, filename, texture.Width, texture.Height)
	}
	return texture, nil
}
