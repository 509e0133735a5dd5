package cpu

// Bus is the byte-addressed, big-endian memory interface the core drives.
// Word and long accesses take even or odd addresses as given; alignment
// faults on instruction addresses are the core's job, not the bus's.
type Bus interface {
	ReadByte(addr uint32) uint8
	ReadWord(addr uint32) uint16
	ReadLong(addr uint32) uint32
	WriteByte(addr uint32, v uint8)
	WriteWord(addr uint32, v uint16)
	WriteLong(addr uint32, v uint32)

	// FetchWord reads an instruction or extension word. Implementations
	// may skip data-access side effects such as access tracing.
	FetchWord(addr uint32) uint16
}

// AddressMask limits every bus address to the 24-bit space of the 68008.
const AddressMask = 0x00FFFFFF
