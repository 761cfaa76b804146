package renderer

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
)

// ChannelOrder is the byte order of each pixel in a framebuffer
type ChannelOrder int

const (
	RGB ChannelOrder = iota // Go image encoders
	BGR                     // BGR-native sinks
)

func (o ChannelOrder) String() string {
	switch o {
	case RGB:
		return "rgb"
	case BGR:
		return "bgr"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// ParseChannelOrder parses "rgb" or "bgr" (case-insensitive)
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(s) {
	case "rgb":
		return RGB, nil
	case "bgr":
		return BGR, nil
	default:
		return RGB, fmt.Errorf("unknown channel order %q (want rgb or bgr)", s)
	}
}

// Framebuffer is a width x height grid of 8-bit color triples
type Framebuffer struct {
	Width  int
	Height int
	Order  ChannelOrder
	Pix    []uint8 // Row-major triples in Order: Pix[3*(y*Width+x)+c]
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int, order ChannelOrder) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Order:  order,
		Pix:    make([]uint8, 3*width*height),
	}
}

// ToByte converts a color channel to a byte, clamping to [0,255] without wraparound
func ToByte(c float64) uint8 {
	v := c * 255.0
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Set stores a color at (x, y)
func (f *Framebuffer) Set(x, y int, c core.Vec3) {
	i := 3 * (y*f.Width + x)
	r, g, b := ToByte(c.X), ToByte(c.Y), ToByte(c.Z)
	if f.Order == BGR {
		r, b = b, r
	}
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// RGBAt returns the stored pixel at (x, y) as r, g, b regardless of channel order
func (f *Framebuffer) RGBAt(x, y int) (r, g, b uint8) {
	i := 3 * (y*f.Width + x)
	r, g, b = f.Pix[i], f.Pix[i+1], f.Pix[i+2]
	if f.Order == BGR {
		r, b = b, r
	}
	return r, g, b
}

// Image converts the framebuffer to an opaque RGBA image for the image encoders
func (f *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.RGBAt(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
