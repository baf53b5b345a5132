package vip

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/nf/c8/chip8"
)

var (
	offColor = color.RGBA{0x10, 0x10, 0x10, 0xff}
	onColor  = color.RGBA{0xe8, 0xe8, 0xd8, 0xff}
)

// drawFrame paints f into the top-left Width x Height pixels of m.
func drawFrame(m *image.RGBA, f *chip8.Frame) {
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := offColor
			if f.At(x, y) {
				c = onColor
			}
			m.SetRGBA(x, y, c)
		}
	}
}

// Image returns f rendered at scale device pixels per CHIP-8 pixel.
func Image(f *chip8.Frame, scale int) *image.RGBA {
	src := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	drawFrame(src, f)
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, chip8.Width*scale, chip8.Height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SaveImage writes f as a PNG file, scaled by scale.
func SaveImage(name string, f *chip8.Frame, scale int) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(fp, Image(f, scale)); err != nil {
		fp.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return fp.Close()
}
