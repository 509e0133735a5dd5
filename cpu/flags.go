package cpu

// setNZ sets N and Z from a result and clears V and C.
func (c *CPU) setNZ(v uint32, size Size) {
	c.Regs.N = v&size.MSB() != 0
	c.Regs.Z = v&size.Mask() == 0
	c.Regs.V = false
	c.Regs.C = false
}

// addFlags computes d+s+x for the size, setting all five flags.
func (c *CPU) addFlags(d, s uint32, x bool, size Size) uint32 {
	var carryIn uint64
	if x {
		carryIn = 1
	}
	mask := size.Mask()
	wide := uint64(d&mask) + uint64(s&mask) + carryIn
	r := uint32(wide) & mask
	msb := size.MSB()

	c.Regs.C = wide>>size.Bits() != 0
	c.Regs.X = c.Regs.C
	c.Regs.V = ^(d^s)&(d^r)&msb != 0
	c.Regs.N = r&msb != 0
	c.Regs.Z = r == 0
	return r
}

// subFlags computes d-s-x for the size, setting all five flags.
func (c *CPU) subFlags(d, s uint32, x bool, size Size) uint32 {
	var borrowIn uint64
	if x {
		borrowIn = 1
	}
	mask := size.Mask()
	r := (d - s - uint32(borrowIn)) & mask
	msb := size.MSB()

	c.Regs.C = uint64(s&mask)+borrowIn > uint64(d&mask)
	c.Regs.X = c.Regs.C
	c.Regs.V = (d^s)&(d^r)&msb != 0
	c.Regs.N = r&msb != 0
	c.Regs.Z = r == 0
	return r
}

// cmpFlags is subFlags without touching X and without a result store.
func (c *CPU) cmpFlags(d, s uint32, size Size) {
	mask := size.Mask()
	r := (d - s) & mask
	msb := size.MSB()

	c.Regs.C = s&mask > d&mask
	c.Regs.V = (d^s)&(d^r)&msb != 0
	c.Regs.N = r&msb != 0
	c.Regs.Z = r == 0
}

// Condition-code field values for Bcc, Scc, and DBcc.
const (
	condTrue = iota
	condFalse
	condHI
	condLS
	condCC
	condCS
	condNE
	condEQ
	condVC
	condVS
	condPL
	condMI
	condGE
	condLT
	condGT
	condLE
)

// testCondition evaluates condition field cc against the flags.
func (c *CPU) testCondition(cc int) bool {
	r := &c.Regs
	switch cc {
	case condTrue:
		return true
	case condFalse:
		return false
	case condHI:
		return !r.C && !r.Z
	case condLS:
		return r.C || r.Z
	case condCC:
		return !r.C
	case condCS:
		return r.C
	case condNE:
		return !r.Z
	case condEQ:
		return r.Z
	case condVC:
		return !r.V
	case condVS:
		return r.V
	case condPL:
		return !r.N
	case condMI:
		return r.N
	case condGE:
		return r.N == r.V
	case condLT:
		return r.N != r.V
	case condGT:
		return !r.Z && r.N == r.V
	default: // condLE
		return r.Z || r.N != r.V
	}
}
