package video

// QL screen geometry. The screen RAM covers 32 KB at 0x20000 with
// 128 bytes per line.
const (
	QLScreenBase = 0x20000
	QLScreenSize = 0x8000
	QLLineLength = 128
	QLWidth      = 512
	QLHeight     = 256
)

// NEXTP8 geometry: 128x128 pixels at 4 bits per pixel through the
// 16-entry palette.
const (
	P8Width  = 128
	P8Height = 128
)

// Mode 4 colours indexed by (green<<1)|red.
var mode4Colors = [4][3]uint8{
	{0x00, 0x00, 0x00},
	{0xFF, 0x00, 0x00},
	{0x00, 0xFF, 0x00},
	{0xFF, 0xFF, 0xFF},
}

// Mode 8 colours indexed by (green<<2)|(red<<1)|blue.
var mode8Colors = [8][3]uint8{
	{0x00, 0x00, 0x00},
	{0x00, 0x00, 0xFF},
	{0xFF, 0x00, 0x00},
	{0xFF, 0x00, 0xFF},
	{0x00, 0xFF, 0x00},
	{0x00, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x00},
	{0xFF, 0xFF, 0xFF},
}

// IRGB palette used for the NEXTP8 indexed modes.
var p8Colors = [16][3]uint8{
	{0x00, 0x00, 0x00},
	{0x00, 0x00, 0xAA},
	{0xAA, 0x00, 0x00},
	{0xAA, 0x00, 0xAA},
	{0x00, 0xAA, 0x00},
	{0x00, 0xAA, 0xAA},
	{0xAA, 0x55, 0x00},
	{0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55},
	{0x55, 0x55, 0xFF},
	{0xFF, 0x55, 0x55},
	{0xFF, 0x55, 0xFF},
	{0x55, 0xFF, 0x55},
	{0x55, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x55},
	{0xFF, 0xFF, 0xFF},
}

// DecodeQL renders 32 KB of QL screen RAM into dst as RGBA. mode8
// selects the 256x8-colour mode; otherwise the 512x4-colour mode is
// used. dst must hold QLWidth*QLHeight*4 bytes. The mode 8 flash
// attribute is not rendered.
func DecodeQL(dst []byte, screen []byte, mode8 bool) {
	for y := 0; y < QLHeight; y++ {
		line := screen[y*QLLineLength : (y+1)*QLLineLength]
		out := dst[y*QLWidth*4 : (y+1)*QLWidth*4]
		x := 0
		for b := 0; b < QLLineLength; b += 2 {
			even, odd := line[b], line[b+1]
			if mode8 {
				// Even byte carries green/flash pairs, odd byte
				// red/blue pairs. Each pixel spans two dots.
				for bit := 6; bit >= 0; bit -= 2 {
					g := even >> uint(bit+1) & 1
					r := odd >> uint(bit+1) & 1
					bl := odd >> uint(bit) & 1
					c := mode8Colors[g<<2|r<<1|bl]
					putPixel(out, x, c)
					putPixel(out, x+1, c)
					x += 2
				}
			} else {
				for bit := 7; bit >= 0; bit-- {
					g := even >> uint(bit) & 1
					r := odd >> uint(bit) & 1
					putPixel(out, x, mode4Colors[g<<1|r])
					x++
				}
			}
		}
	}
}

// DecodeP8 renders a NEXTP8 framebuffer into dst as RGBA. Each byte
// packs two 4-bit pixels, high nibble first, looked up through the
// palette. When the overlay is enabled, overlay pixels other than the
// transparent index replace the base pixel.
func DecodeP8(dst []byte, frame, overlay []byte, palette []uint8, overlayCtrl uint8) {
	overlayOn := overlayCtrl&0x40 != 0
	transparent := overlayCtrl & 0x0F
	for i := 0; i < P8Width*P8Height; i++ {
		idx := nibble(frame, i)
		if overlayOn && overlay != nil {
			if ov := nibble(overlay, i); ov != transparent {
				idx = ov
			}
		}
		putPixel(dst, i, p8Colors[palette[idx]&0x0F])
	}
}

func nibble(buf []byte, i int) uint8 {
	b := buf[i>>1]
	if i&1 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

func putPixel(dst []byte, x int, c [3]uint8) {
	o := x * 4
	dst[o] = c[0]
	dst[o+1] = c[1]
	dst[o+2] = c[2]
	dst[o+3] = 0xFF
}
