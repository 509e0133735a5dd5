// Package profiler records execution and data-access events into
// fixed buffers that a background consumer aggregates, so the hot
// dispatch loop only ever appends a word.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Event types, packed into the top byte of an event word above the
// 24-bit address.
const (
	EventExec = iota
	EventJump
	EventCall
	EventReturn
	EventDataRead
	EventDataWrite
)

const (
	addrMask   = 0x00FFFFFF
	bufferSize = 64 * 1024
)

// Recorder collects events. Record methods are meant for a single
// goroutine (the emulation loop); the consumer runs in the
// background and owns the aggregation.
type Recorder struct {
	buf  []uint32
	full chan []uint32
	done chan struct{}

	mu      sync.Mutex
	flushed bool
	counts  [6]map[uint32]uint64
}

// New starts a recorder and its consumer.
func New() *Recorder {
	r := &Recorder{
		buf:  make([]uint32, 0, bufferSize),
		full: make(chan []uint32, 4),
		done: make(chan struct{}),
	}
	for i := range r.counts {
		r.counts[i] = make(map[uint32]uint64)
	}
	go r.consume()
	return r
}

func (r *Recorder) record(typ int, addr uint32) {
	r.buf = append(r.buf, uint32(typ)<<24|addr&addrMask)
	if len(r.buf) == bufferSize {
		r.full <- r.buf
		r.buf = make([]uint32, 0, bufferSize)
	}
}

// RecordExec notes an instruction executed at addr.
func (r *Recorder) RecordExec(addr uint32) { r.record(EventExec, addr) }

// RecordDataRead notes a data read at addr.
func (r *Recorder) RecordDataRead(addr uint32) { r.record(EventDataRead, addr) }

// RecordDataWrite notes a data write at addr.
func (r *Recorder) RecordDataWrite(addr uint32) { r.record(EventDataWrite, addr) }

func (r *Recorder) consume() {
	for buf := range r.full {
		r.mu.Lock()
		for _, ev := range buf {
			r.counts[ev>>24][ev&addrMask]++
		}
		r.mu.Unlock()
	}
	close(r.done)
}

// Flush drains the current buffer, stops the consumer, and waits for
// aggregation to finish. The recorder cannot record afterwards;
// further Flush calls are no-ops.
func (r *Recorder) Flush() {
	r.mu.Lock()
	if r.flushed {
		r.mu.Unlock()
		return
	}
	r.flushed = true
	r.mu.Unlock()

	if len(r.buf) > 0 {
		r.full <- r.buf
		r.buf = nil
	}
	close(r.full)
	<-r.done
}

// Counts returns the aggregated per-address counters for an event
// type.
func (r *Recorder) Counts(typ int) map[uint32]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint32]uint64, len(r.counts[typ]))
	for k, v := range r.counts[typ] {
		out[k] = v
	}
	return out
}

// Report writes the top execution and data sites.
func (r *Recorder) Report(w io.Writer, top int) {
	type site struct {
		addr  uint32
		count uint64
	}
	names := [6]string{"exec", "jump", "call", "return", "read", "write"}

	r.mu.Lock()
	defer r.mu.Unlock()
	for typ, counts := range r.counts {
		if len(counts) == 0 {
			continue
		}
		sites := make([]site, 0, len(counts))
		for a, n := range counts {
			sites = append(sites, site{a, n})
		}
		sort.Slice(sites, func(i, j int) bool { return sites[i].count > sites[j].count })
		if len(sites) > top {
			sites = sites[:top]
		}
		fmt.Fprintf(w, "%s:\n", names[typ])
		for _, s := range sites {
			fmt.Fprintf(w, "  %06x %d\n", s.addr, s.count)
		}
	}
}
