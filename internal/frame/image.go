package frame

import (
	"image"
	"image/color"
)

// PackedImage is a read-only image.Image over a packed-pixel buffer. It
// shares the buffer's memory, so it reflects every later Load.
type PackedImage struct {
	b *Buffer[uint32]
}

// ImageOf wraps b for hand-off to image consumers without copying.
func ImageOf(b *Buffer[uint32]) *PackedImage {
	return &PackedImage{b: b}
}

func (p *PackedImage) ColorModel() color.Model {
	if p.b.format == Gray {
		return color.GrayModel
	}
	return color.NRGBAModel
}

func (p *PackedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.b.width, p.b.height)
}

func (p *PackedImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= p.b.width || y >= p.b.height {
		return color.NRGBA{}
	}
	v := p.b.pix[y*p.b.width+x]
	switch p.b.format {
	case Gray:
		return color.Gray{Y: uint8(v)}
	case RGB:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
	default:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
	}
}

// Seq is the sequence number of the frame currently visible through p.
func (p *PackedImage) Seq() uint64 { return p.b.seq }
