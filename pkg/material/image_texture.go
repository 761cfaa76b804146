package material

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
)

// ErrTextureSize is returned when pixel data does not match the declared dimensions
var ErrTextureSize = errors.New("texture size mismatch")

// ImageTexture is a 2D grid of 8-bit RGB samples
type ImageTexture struct {
	Width  int
	Height int
	Pix    []uint8 // Row-major RGB triples: Pix[3*(y*Width+x)+c]
}

// NewImageTexture creates a texture from raw RGB triples
func NewImageTexture(width, height int, pix []uint8) (*ImageTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrTextureSize, width, height)
	}
	if len(pix) != 3*width*height {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrTextureSize, width, height, 3*width*height, len(pix))
	}
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pix:    pix,
	}, nil
}

// NewImageTextureFromImage copies any decoded image into an RGB texture.
// Alpha is dropped; the caller must supply a non-empty image.
func NewImageTextureFromImage(img image.Image) *ImageTexture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pix := make([]uint8, 3*width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.RGBA)
			i := 3 * (y*width + x)
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
		}
	}

	return &ImageTexture{
		Width:  width,
		Height: height,
		Pix:    pix,
	}
}

// Texel returns the sample at integer coordinates normalized to [0,1]
func (t *ImageTexture) Texel(x, y int) core.Vec3 {
	i := 3 * (y*t.Width + x)
	return core.NewVec3(
		float64(t.Pix[i])/255.0,
		float64(t.Pix[i+1])/255.0,
		float64(t.Pix[i+2])/255.0,
	)
}

// TexelIndex maps UV coordinates to integer texel coordinates.
// Coordinates are wrapped into [0,1) first, so the texture tiles periodically.
func (t *ImageTexture) TexelIndex(u, v float64) (int, int) {
	u = Wrap(u)
	v = Wrap(v)

	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))

	// Wrap can round up to exactly 1.0 for tiny negative inputs
	x = max(0, min(t.Width-1, x))
	y = max(0, min(t.Height-1, y))

	return x, y
}

// Evaluate samples the texture at UV coordinates using nearest-neighbor filtering
func (t *ImageTexture) Evaluate(u, v float64) core.Vec3 {
	x, y := t.TexelIndex(u, v)
	return t.Texel(x, y)
}

// Wrap folds a texture coordinate into [0,1)
func Wrap(u float64) float64 {
	return u - math.Floor(u)
}
