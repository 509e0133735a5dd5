package hw

// BDI commands.
const (
	bdiCmdSeek = 0
	bdiCmdRead = 1
)

// BDI status bits.
const (
	BDIReady = 0x01
	BDIError = 0x02
)

// BDI is the block-device interface: a byte-streaming port over a
// disk image, addressed through a pair of address words and read out
// through the data register with auto-increment.
type BDI struct {
	image  []byte
	drive  uint8
	offset uint32
	addrHi uint16
	addrLo uint16
}

// NewBDI creates the interface over a disk image. A nil image leaves
// the drive reporting an error status.
func NewBDI(image []byte) *BDI {
	return &BDI{image: image}
}

// Select picks the active drive. Only drive 0 is populated.
func (b *BDI) Select(d uint8) { b.drive = d }

// Command executes a control command.
func (b *BDI) Command(cmd uint8) {
	switch cmd {
	case bdiCmdSeek:
		b.offset = uint32(b.addrHi)<<16 | uint32(b.addrLo)
	case bdiCmdRead:
		// Reads stream from the current offset; nothing to start.
	}
}

// Status reports drive readiness.
func (b *BDI) Status() uint8 {
	if b.drive != 0 || b.image == nil {
		return BDIError
	}
	return BDIReady
}

// SetAddressHigh and SetAddressLow stage the 32-bit image offset used
// by the next seek.
func (b *BDI) SetAddressHigh(v uint16) { b.addrHi = v }
func (b *BDI) SetAddressLow(v uint16)  { b.addrLo = v }

// SizeHigh and SizeLow expose the image size.
func (b *BDI) SizeHigh() uint16 { return uint16(uint32(len(b.image)) >> 16) }
func (b *BDI) SizeLow() uint16  { return uint16(uint32(len(b.image))) }

// DataRead returns the byte at the current offset and advances it.
func (b *BDI) DataRead() uint8 {
	if b.image == nil || b.offset >= uint32(len(b.image)) {
		return 0
	}
	v := b.image[b.offset]
	b.offset++
	return v
}

// DataWrite stores a byte at the current offset and advances it.
func (b *BDI) DataWrite(v uint8) {
	if b.image == nil || b.offset >= uint32(len(b.image)) {
		return
	}
	b.image[b.offset] = v
	b.offset++
}
