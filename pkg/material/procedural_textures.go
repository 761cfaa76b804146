package material

import (
	"image/color"
)

// NewCheckerTexture creates a procedural checkerboard pattern texture
func NewCheckerTexture(width, height, checkSize int, color1, color2 color.Color) *ImageTexture {
	c1 := color.RGBAModel.Convert(color1).(color.RGBA)
	c2 := color.RGBAModel.Convert(color2).(color.RGBA)
	checkSize = max(1, checkSize)

	pix := make([]uint8, 3*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := c1
			if (x/checkSize+y/checkSize)%2 != 0 {
				c = c2
			}

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

// NewSolidTexture creates a single-texel texture of one color
func NewSolidTexture(c color.Color) *ImageTexture {
	return NewCheckerTexture(1, 1, 1, c, c)
}
