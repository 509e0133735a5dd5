// Package main provides the qlsim CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/qlsim/machine"
)

var (
	machineName = flag.String("machine", "ql", "Machine profile: ql or p8")
	romPath     = flag.String("rom", "", "System ROM image")
	expROMPath  = flag.String("exprom", "", "Expansion slot ROM image")
	diskPath    = flag.String("disk", "", "BDI disk image (ql profile)")
	ramTop      = flag.Uint("ram", 0, "RAM top address, 0 for the default")
	frames      = flag.Int("frames", 0, "Frames to run, 0 for until the window closes")
	trace       = flag.Bool("trace", false, "Per-instruction register trace on stderr")
	busTrace    = flag.Bool("bustrace", false, "Data access trace on stderr")
	events      = flag.Bool("events", false, "Record an access profile and report it on exit")
	noDisplay   = flag.Bool("nodisplay", false, "Run without opening a window")
)

func main() {
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: qlsim -rom <image> [options]\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := machine.Config{
		ROM:          *romPath,
		ExpansionROM: *expROMPath,
		RAMTop:       uint32(*ramTop),
		Events:       *events,
		NoDisplay:    *noDisplay,
	}

	switch *machineName {
	case "ql":
		cfg.Profile = machine.ProfileQL
	case "p8":
		cfg.Profile = machine.ProfileNEXTP8
	default:
		fmt.Fprintf(os.Stderr, "Unknown machine %q, want ql or p8\n", *machineName)
		os.Exit(1)
	}

	if *diskPath != "" {
		disk, err := os.ReadFile(*diskPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading disk image: %v\n", err)
			os.Exit(1)
		}
		cfg.Disk = disk
	}
	if *trace {
		cfg.Trace = os.Stderr
	}
	if *busTrace {
		cfg.BusTrace = os.Stderr
	}

	m, err := machine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building machine: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	m.Run(*frames)

	if m.Events != nil {
		m.Events.Flush()
		m.Events.Report(os.Stdout, 10)
	}
}
