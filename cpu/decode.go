package cpu

// opFunc is the handler signature for a single instruction. The
// opcode word is already in c.code when called.
type opFunc func(*CPU)

// opTable is the 64K-entry dispatch table indexed by the full opcode
// word. nil entries raise an illegal-instruction exception.
var opTable [65536]opFunc

// register fills one table slot, panicking on double registration so
// overlapping encodings are caught at init time.
func register(opcode uint16, h opFunc) {
	if opTable[opcode] != nil {
		panic("duplicate opcode registration")
	}
	opTable[opcode] = h
}

// validEA reports whether a mode/reg pair is one the resolver accepts
// as a general operand. Registration loops use it to avoid claiming
// slots that belong to other encodings.
func validEA(mode, reg uint16) bool {
	if mode == 7 {
		return reg <= 1
	}
	return mode <= 6
}

// dataAlterable excludes address-register direct from the valid set.
func dataAlterable(mode, reg uint16) bool {
	return validEA(mode, reg) && mode != 1
}

// controlEA reports mode/reg pairs that carry a plain address.
func controlEA(mode, reg uint16) bool {
	switch mode {
	case 2, 5, 6:
		return true
	case 7:
		return reg <= 1
	}
	return false
}
