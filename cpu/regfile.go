package cpu

// RegFile models the MC68000 architectural register state.
// Status-register bits are stored unpacked; SR() reassembles the
// packed word and the core's SetSR() splits one apart, since almost
// every instruction touches single flags rather than the whole word.
type RegFile struct {
	// D holds the eight 32-bit data registers D0-D7.
	D [8]uint32

	// A holds the eight 32-bit address registers A0-A7.
	// A[7] is always the active stack pointer for the current
	// privilege mode.
	A [8]uint32

	// USP and SSP shadow the inactive stack pointer. Only the
	// mode switch inside the core's SetSR touches these; handlers
	// read and write A[7] directly.
	USP uint32
	SSP uint32

	// PC is the program counter. Every assignment through the core
	// applies AddressMask.
	PC uint32

	// Trace is SR bit 15. When set, a trace exception is taken
	// after every instruction.
	Trace bool

	// Supervisor is SR bit 13.
	Supervisor bool

	// IMask is the 3-bit interrupt priority mask, SR bits 10-8.
	IMask uint8

	// Condition codes, SR bits 4-0.
	X bool // extend
	N bool // negative
	Z bool // zero
	V bool // overflow
	C bool // carry
}

// Status register bit positions.
const (
	srTrace      = 0x8000
	srSupervisor = 0x2000
	srX          = 0x0010
	srN          = 0x0008
	srZ          = 0x0004
	srV          = 0x0002
	srC          = 0x0001
)

// SR packs the unpacked status state into the architectural word.
func (r *RegFile) SR() uint16 {
	sr := uint16(r.IMask&7) << 8
	if r.Trace {
		sr |= srTrace
	}
	if r.Supervisor {
		sr |= srSupervisor
	}
	sr |= r.CCR()
	return sr
}

// CCR packs the five condition codes into the low byte layout.
func (r *RegFile) CCR() uint16 {
	var ccr uint16
	if r.X {
		ccr |= srX
	}
	if r.N {
		ccr |= srN
	}
	if r.Z {
		ccr |= srZ
	}
	if r.V {
		ccr |= srV
	}
	if r.C {
		ccr |= srC
	}
	return ccr
}

// SetCCR unpacks the low byte of sr into the condition codes without
// touching the system byte.
func (r *RegFile) SetCCR(sr uint16) {
	r.X = sr&srX != 0
	r.N = sr&srN != 0
	r.Z = sr&srZ != 0
	r.V = sr&srV != 0
	r.C = sr&srC != 0
}

// Index reads register i of the combined D0-D7,A0-A7 bank used by
// brief extension words.
func (r *RegFile) Index(i int) uint32 {
	if i < 8 {
		return r.D[i]
	}
	return r.A[i-8]
}

// SetIndex writes register i of the combined bank.
func (r *RegFile) SetIndex(i int, v uint32) {
	if i < 8 {
		r.D[i] = v
	} else {
		r.A[i-8] = v
	}
}
