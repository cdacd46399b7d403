package encoding

import (
	"image/color"
)

// Pixel is one decoded pixel of a level map.
//
// Packed into an RGBA64 as
//
//	R [16 bits] -> category index (0 is nothing)
//	G [16 bits]
//	B [16 bits]
//	  32-1 [32 bits] -> registry entry id, G holds the significant bits
//	A [16 bits]
//	  16-9 [8 bits] -> unused
//	   8-1 [8 bits] -> flags bitmap
type Pixel struct {
	Category uint16
	ID       uint32
	Flags    uint8
}

// Encode packs a pixel into a colour
func Encode(p Pixel) color.RGBA64 {
	g, b := Split32(p.ID)
	return color.RGBA64{
		R: p.Category,
		G: g,
		B: b,
		A: Merge8(0, p.Flags),
	}
}

// Decode unpacks a colour written by Encode
func Decode(c color.RGBA64) Pixel {
	_, flags := Split16(c.A)
	return Pixel{
		Category: c.R,
		ID:       Merge16(c.G, c.B),
		Flags:    flags,
	}
}

// Split32 uint32 to two uint16
func Split32(in uint32) (uint16, uint16) {
	return uint16(in >> 16), uint16(in)
}

// Merge16 two uint16 to uint32
func Merge16(a, b uint16) uint32 {
	return (uint32(a) << 16) + uint32(b)
}

// Split16 uint16 to two uint8
func Split16(in uint16) (uint8, uint8) {
	return uint8(in >> 8), uint8(in)
}

// Merge8 two uint8 to uint16
func Merge8(a, b uint8) uint16 {
	return (uint16(a) << 8) + uint16(b)
}
