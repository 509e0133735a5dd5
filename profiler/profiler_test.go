package profiler_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/qlsim/profiler"
)

func TestProfiler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Profiler Suite")
}

var _ = Describe("Recorder", func() {
	It("aggregates per-address counts after a flush", func() {
		r := profiler.New()

		r.RecordExec(0x1000)
		r.RecordExec(0x1000)
		r.RecordExec(0x1002)
		r.RecordDataRead(0x28000)
		r.RecordDataWrite(0x28000)
		r.Flush()

		Expect(r.Counts(profiler.EventExec)).To(Equal(map[uint32]uint64{
			0x1000: 2,
			0x1002: 1,
		}))
		Expect(r.Counts(profiler.EventDataRead)).To(Equal(map[uint32]uint64{0x28000: 1}))
		Expect(r.Counts(profiler.EventDataWrite)).To(Equal(map[uint32]uint64{0x28000: 1}))
	})

	It("masks addresses to the 24-bit space", func() {
		r := profiler.New()

		r.RecordExec(0xFF001000)
		r.Flush()

		Expect(r.Counts(profiler.EventExec)).To(HaveKey(uint32(0x1000)))
	})

	It("reports the hottest sites first", func() {
		r := profiler.New()

		for i := 0; i < 5; i++ {
			r.RecordExec(0x2000)
		}
		r.RecordExec(0x3000)
		r.Flush()

		var buf bytes.Buffer
		r.Report(&buf, 1)

		Expect(buf.String()).To(ContainSubstring("exec:\n  002000 5\n"))
		Expect(buf.String()).NotTo(ContainSubstring("003000"))
	})

	It("tolerates repeated flushes", func() {
		r := profiler.New()

		r.RecordExec(0x1000)
		r.Flush()
		Expect(r.Flush).NotTo(Panic())

		Expect(r.Counts(profiler.EventExec)).To(Equal(map[uint32]uint64{0x1000: 1}))
	})

	It("drains all buffered events across buffer boundaries", func() {
		r := profiler.New()

		for i := 0; i < 70000; i++ {
			r.RecordExec(0x4000)
		}
		r.Flush()

		Expect(r.Counts(profiler.EventExec)[0x4000]).To(Equal(uint64(70000)))
	})
})
