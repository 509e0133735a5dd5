// Package cpu implements an MC68000 interpreter core.
//
// The core executes in chunks: the host asks for up to n instructions,
// and pending interrupts, synchronous exceptions, and trace delivery
// are folded into the chunk loop through an instruction budget pair.
// A fault mid-chunk zeroes the live budget so control falls out of the
// dispatch loop into exception processing, and the stashed budget is
// restored afterwards so execution resumes inside the same call.
package cpu

import (
	"fmt"
	"io"
)

// Exception vector numbers raised by the core.
const (
	VecAddressError = 3
	VecIllegal      = 4
	VecDivZero      = 5
	VecCHK          = 6
	VecTRAPV        = 7
	VecPrivilege    = 8
	VecTrace        = 9
	VecAutovector   = 24 // plus interrupt level
	VecTrap         = 32 // plus trap number
)

// osVectorTable is the system variable holding the OS exception
// redirection table. Unexpected exceptions are only reported when it
// has not been set up yet.
const osVectorTable = 0x28050

// CPU is a 68000 core bound to a Bus.
type CPU struct {
	// Regs is the architectural register state.
	Regs RegFile

	bus Bus

	// Pending synchronous exception vector, or 0.
	exception int

	// Pending interrupt level 0-7.
	pendingInterrupt int

	// doTrace latches the trace flag across the instruction that
	// set it, so the trace exception fires after the following
	// instruction as the architecture requires.
	doTrace bool

	// stopped is set by STOP and cleared by interrupt delivery.
	stopped bool

	// Budget pair. nInst counts instructions remaining in the
	// current chunk; when a pending condition must preempt the
	// loop, nInst moves to nInst2 and nInst is zeroed.
	nInst     int
	nInst2    int
	extraFlag bool

	// Address-error bookkeeping for the extra stack frame.
	badAddress     uint32
	badCodeAddress bool
	readOrWrite    int

	// code is the opcode word of the instruction being executed.
	code uint16

	traceW   io.Writer
	execHook func(addr uint32)
	diagW    io.Writer
}

// Option configures a CPU at construction time.
type Option func(*CPU)

// WithTrace enables the per-instruction register-diff trace on w.
func WithTrace(w io.Writer) Option {
	return func(c *CPU) { c.traceW = w }
}

// WithExecHook installs a callback invoked with the address of every
// instruction executed. Used by the profiler.
func WithExecHook(fn func(addr uint32)) Option {
	return func(c *CPU) { c.execHook = fn }
}

// WithDiagnostics directs unexpected-exception reports to w instead
// of discarding them.
func WithDiagnostics(w io.Writer) Option {
	return func(c *CPU) { c.diagW = w }
}

// New creates a core on the given bus. The core is not reset; call
// Reset once the bus holds a ROM image.
func New(bus Bus, opts ...Option) *CPU {
	c := &CPU{bus: bus}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset loads the power-on state: SSP from vector 0, PC from vector 1,
// supervisor mode with all interrupts masked.
func (c *CPU) Reset() {
	c.Regs.SSP = c.bus.ReadLong(0)
	c.Regs.A[7] = c.Regs.SSP
	c.setPC(c.bus.ReadLong(4))

	c.Regs.IMask = 7
	c.Regs.Supervisor = true
	c.Regs.Trace = false
	c.doTrace = false
	c.exception = 0
	c.extraFlag = false
	c.pendingInterrupt = 0
	c.stopped = false
	c.badCodeAddress = false
}

// Stopped reports whether the core is waiting in the STOP state.
func (c *CPU) Stopped() bool { return c.stopped }

// RaiseInterrupt latches an external interrupt at the given level and
// truncates the running budget so delivery happens at the next
// dispatch boundary.
func (c *CPU) RaiseInterrupt(level int) {
	if level < 1 || level > 7 {
		return
	}
	c.pendingInterrupt = level
	c.truncateBudget()
}

// SR returns the packed status register.
func (c *CPU) SR() uint16 { return c.Regs.SR() }

// SetSR unpacks sr into the status state. A supervisor-bit change swaps
// the active stack pointer with its shadow; this is the only place the
// swap happens. Pending interrupts are re-evaluated against the new
// mask before returning.
func (c *CPU) SetSR(sr uint16) {
	oldSuper := c.Regs.Supervisor

	c.Regs.Trace = sr&srTrace != 0
	if c.doTrace || c.Regs.Trace || c.exception != 0 {
		c.truncateBudget()
	}
	c.Regs.Supervisor = sr&srSupervisor != 0
	c.Regs.SetCCR(sr)
	c.Regs.IMask = uint8(sr>>8) & 7

	if oldSuper != c.Regs.Supervisor {
		if c.Regs.Supervisor {
			c.Regs.USP = c.Regs.A[7]
			c.Regs.A[7] = c.Regs.SSP
		} else {
			c.Regs.SSP = c.Regs.A[7]
			c.Regs.A[7] = c.Regs.USP
		}
	}
	c.processInterrupts()
}

// raise records a synchronous exception and ends the current budget.
func (c *CPU) raise(vector int) {
	c.exception = vector
	c.truncateBudget()
}

func (c *CPU) truncateBudget() {
	c.extraFlag = true
	c.nInst2 = c.nInst
	c.nInst = 0
}

// setPC assigns the program counter. An odd address raises an address
// error instead; the PC keeps its old value until the exception is
// delivered.
func (c *CPU) setPC(addr uint32) {
	if addr&1 != 0 {
		c.exception = VecAddressError
		c.truncateBudget()
		c.readOrWrite = accessRead
		c.badAddress = addr
		c.badCodeAddress = true
		return
	}
	c.Regs.PC = addr & AddressMask
}

// setPCX loads the program counter from an exception vector.
func (c *CPU) setPCX(vector int) {
	addr := c.bus.ReadLong(uint32(vector)*4) & AddressMask
	c.Regs.PC = addr
	if addr&1 != 0 {
		c.exception = VecAddressError
		c.truncateBudget()
		c.readOrWrite = accessRead
		c.badAddress = addr
		c.badCodeAddress = true
	}
}

// Access-direction codes for the address-error frame.
const (
	accessWrite = 0
	accessRead  = 16
)

// busErrorCode builds the composite access code pushed in the extra
// address-error frame.
func (c *CPU) busErrorCode(dataOrCode int) uint16 {
	if c.Regs.Supervisor {
		dataOrCode += 4
	}
	return uint16(dataOrCode + c.readOrWrite + 8)
}

// processInterrupts delivers a pending interrupt if its level beats the
// mask (level 7 always does), no exception is in flight, and no trace
// is being delivered. Delivery pushes PC and SR, vectors through
// autovector 24+level, raises the mask to the taken level, and clears
// any STOP state.
func (c *CPU) processInterrupts() {
	if c.exception != 0 || c.doTrace {
		return
	}
	if c.pendingInterrupt != 7 && c.pendingInterrupt <= int(c.Regs.IMask) {
		return
	}

	if !c.Regs.Supervisor {
		c.Regs.USP = c.Regs.A[7]
		c.Regs.A[7] = c.Regs.SSP
	}
	c.bus.WriteLong(c.Regs.A[7]-4, c.Regs.PC)
	c.Regs.A[7] -= 6
	c.bus.WriteWord(c.Regs.A[7], c.Regs.SR())
	c.setPCX(VecAutovector + c.pendingInterrupt)
	c.Regs.IMask = uint8(c.pendingInterrupt)
	c.pendingInterrupt = 0
	c.Regs.Supervisor = true
	c.Regs.Trace = false
	c.stopped = false
	c.extraFlag = false
}

// exceptionProcessing delivers whatever is pending, in priority order:
// interrupt, then the synchronous exception, then trace. Each delivery
// switches to supervisor mode, pushes PC and SR as a 6-byte frame, and
// vectors. Address errors push an extra 8-byte frame underneath.
func (c *CPU) exceptionProcessing() {
	if c.pendingInterrupt != 0 && !c.doTrace {
		c.processInterrupts()
	}

	if c.exception != 0 {
		if c.exception < VecTrap || c.exception > VecTrap+4 {
			// OS-handled traps are routine; everything else is
			// reported when outside the handled set or when the OS
			// vector table is not in place yet.
			show := c.exception < 3 ||
				(c.exception > 9 && c.exception < 32) ||
				c.exception > 47
			if !show {
				show = c.bus.ReadLong(osVectorTable) == 0
			}
			if show {
				c.showException()
				c.nInst = 0
				c.nInst2 = 0
			}
		}
		if !c.Regs.Supervisor {
			c.Regs.USP = c.Regs.A[7]
			c.Regs.A[7] = c.Regs.SSP
		}
		c.Regs.A[7] -= 6
		c.bus.WriteLong(c.Regs.A[7]+2, c.Regs.PC)
		c.bus.WriteWord(c.Regs.A[7], c.Regs.SR())
		c.setPCX(c.exception)
		if c.exception == VecAddressError {
			c.Regs.A[7] -= 8
			c.bus.WriteWord(c.Regs.A[7]+6, c.code)
			c.bus.WriteLong(c.Regs.A[7]+2, c.badAddress)
			dataOrCode := 1
			if c.badCodeAddress {
				dataOrCode = 2
			}
			c.bus.WriteWord(c.Regs.A[7], c.busErrorCode(dataOrCode))
			c.badCodeAddress = false
			if c.nInst != 0 {
				c.exception = 0
			}
		} else {
			c.exception = 0 // allow interrupts
		}
		c.extraFlag = false
		c.Regs.Supervisor = true
		c.Regs.Trace = false
	}

	if c.doTrace {
		if !c.Regs.Supervisor {
			c.Regs.USP = c.Regs.A[7]
			c.Regs.A[7] = c.Regs.SSP
		}
		c.Regs.A[7] -= 6
		c.bus.WriteLong(c.Regs.A[7]+2, c.Regs.PC)
		c.bus.WriteWord(c.Regs.A[7], c.Regs.SR())
		c.setPCX(VecTrace)
		if c.nInst == 0 {
			c.exception = VecTrace // no interrupt allowed here
		}
		c.Regs.Supervisor = true
		c.Regs.Trace = false
		c.extraFlag = false
		c.stopped = false
	}

	c.doTrace = c.Regs.Trace
	if c.doTrace {
		// Trace fires per instruction: run exactly one.
		c.nInst2 = c.nInst
		c.nInst = 1
	}
	if c.pendingInterrupt != 0 && !c.doTrace {
		c.truncateBudget()
	}
}

func (c *CPU) showException() {
	if c.diagW == nil {
		return
	}
	name := map[int]string{
		VecAddressError: "address error",
		VecIllegal:      "illegal instruction",
		VecDivZero:      "divide by zero",
		VecCHK:          "CHK instruction",
		VecTRAPV:        "TRAPV instruction",
		VecPrivilege:    "privilege violation",
		VecTrace:        "trace",
	}[c.exception]
	if name == "" && c.exception >= VecTrap && c.exception < VecTrap+16 {
		name = fmt.Sprintf("TRAP #%d", c.exception-VecTrap)
	}
	fmt.Fprintf(c.diagW, "Exception %s (vector %d) at PC=%x code=%04x\n",
		name, c.exception, c.Regs.PC, c.code)
}

// ExecuteChunk runs up to n instructions, delivering interrupts,
// exceptions, and trace at dispatch boundaries. It returns early when
// the core is stopped or the program counter is odd.
func (c *CPU) ExecuteChunk(n int) {
	if c.Regs.PC&1 != 0 {
		return
	}

	c.extraFlag = false
	c.processInterrupts()
	if c.stopped {
		return
	}
	c.exception = 0

	c.extraFlag = c.Regs.Trace || c.doTrace || c.pendingInterrupt == 7 ||
		c.pendingInterrupt > int(c.Regs.IMask)
	c.nInst = n + 1
	if c.extraFlag {
		c.nInst2 = c.nInst
		c.nInst = 0
	}

	c.executeLoop()
}

// executeLoop is the fetch and dispatch loop. Where the original design
// recursed to resume after exception delivery, this loop restores the
// stashed budget and iterates.
func (c *CPU) executeLoop() {
	for {
		for {
			c.nInst--
			if c.nInst < 0 {
				break
			}
			c.step()
		}

		if !c.extraFlag {
			return
		}
		c.nInst = c.nInst2
		c.exceptionProcessing()
		if c.stopped || c.nInst <= 0 {
			return
		}
	}
}

func (c *CPU) step() {
	var old RegFile
	if c.traceW != nil {
		old = c.Regs
	}
	if c.execHook != nil {
		c.execHook(c.Regs.PC)
	}

	c.code = c.bus.FetchWord(c.Regs.PC)
	c.Regs.PC += 2
	h := opTable[c.code]
	if h == nil {
		c.raise(VecIllegal)
	} else {
		h(c)
	}

	if c.traceW != nil {
		c.traceStep(&old)
	}
}

// fetchWord reads the next instruction-stream word and advances PC.
func (c *CPU) fetchWord() uint16 {
	w := c.bus.FetchWord(c.Regs.PC)
	c.Regs.PC += 2
	return w
}

// fetchLong reads the next two instruction-stream words as a long.
func (c *CPU) fetchLong() uint32 {
	hi := uint32(c.fetchWord())
	return hi<<16 | uint32(c.fetchWord())
}

func changeToStr(old, val uint32) string {
	if old == val {
		return fmt.Sprintf("0x%x", val)
	}
	return fmt.Sprintf("0x%x->0x%x", old, val)
}

// traceStep prints one register-diff line: unchanged registers print
// their value, changed ones print old->new.
func (c *CPU) traceStep(old *RegFile) {
	fmt.Fprintf(c.traceW,
		"PC=%s D0=%s D1=%s D2=%s D3=%s D4=%s D5=%s D6=%s D7=%s"+
			" A0=%s A1=%s A2=%s A3=%s A4=%s A5=%s A6=%s A7=%s\n",
		changeToStr(old.PC, c.Regs.PC),
		changeToStr(old.D[0], c.Regs.D[0]),
		changeToStr(old.D[1], c.Regs.D[1]),
		changeToStr(old.D[2], c.Regs.D[2]),
		changeToStr(old.D[3], c.Regs.D[3]),
		changeToStr(old.D[4], c.Regs.D[4]),
		changeToStr(old.D[5], c.Regs.D[5]),
		changeToStr(old.D[6], c.Regs.D[6]),
		changeToStr(old.D[7], c.Regs.D[7]),
		changeToStr(old.A[0], c.Regs.A[0]),
		changeToStr(old.A[1], c.Regs.A[1]),
		changeToStr(old.A[2], c.Regs.A[2]),
		changeToStr(old.A[3], c.Regs.A[3]),
		changeToStr(old.A[4], c.Regs.A[4]),
		changeToStr(old.A[5], c.Regs.A[5]),
		changeToStr(old.A[6], c.Regs.A[6]),
		changeToStr(old.A[7], c.Regs.A[7]))
}
