// Command riscvsim runs a flat RV32I/RV64I binary image to completion
// or fatal fault, following the teacher's flag-based CLI shape.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rvsim/riscv-sim/core"
	"github.com/rvsim/riscv-sim/loader"
	"github.com/rvsim/riscv-sim/memory"
	"github.com/rvsim/riscv-sim/regfile"
	"github.com/rvsim/riscv-sim/simconfig"
	"github.com/rvsim/riscv-sim/trace"
)

func main() {
	var (
		imagePath   = flag.String("image", "", "Path to a flat binary image (required)")
		xlenFlag    = flag.Int("xlen", 0, "Register width: 32 or 64 (default: from -config, else 64)")
		startFlag   = flag.String("start", "", "Entry PC, hex or decimal (default: from -config, else RAM base)")
		haltFlag    = flag.String("halt", "", "Halt sentinel instruction word, hex or decimal (default: 0x0000006B)")
		ramSize     = flag.Uint64("ram-size", 0, "RAM capacity in bytes (default: from -config, else 64MiB)")
		diagLevel   = flag.String("diag", "none", "Diagnostic level: none, warn, err, trace")
		traceKind   = flag.String("trace-kind", "itrace", "Trace kind when -diag=trace: itrace, rtrace, ftrace")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: stderr)")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config path)")
		interactive = flag.Bool("interactive", false, "Interactive debugger mode")
		devFrontend = flag.String("device-frontend", "", "External device frontend")
	)
	flag.Parse()

	if *interactive {
		fmt.Fprintln(os.Stderr, "riscvsim: -interactive is not part of this build")
		os.Exit(2)
	}
	if *devFrontend != "" {
		fmt.Fprintln(os.Stderr, "riscvsim: -device-frontend is not part of this build")
		os.Exit(2)
	}
	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "riscvsim: -image is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riscvsim: %v\n", err)
		os.Exit(1)
	}

	xlen, start, halt, size, err := resolveMachineParams(cfg, *xlenFlag, *startFlag, *haltFlag, *ramSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riscvsim: %v\n", err)
		os.Exit(1)
	}

	bus := memory.NewBus(memory.Options{RAMBase: memory.DefaultRAMBase, RAMSize: size, SerialOut: os.Stdout})
	m := core.NewMachine(core.Config{XLEN: xlen, Start: start, HaltSentinel: halt}, bus)

	if err := attachDiagnostics(m, *diagLevel, *traceKind, *traceFile); err != nil {
		fmt.Fprintf(os.Stderr, "riscvsim: %v\n", err)
		os.Exit(1)
	}

	if err := loader.LoadFlatImage(m, *imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "riscvsim: %v\n", err)
		os.Exit(1)
	}

	code, runErr := m.Run()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "riscvsim: %v\n", runErr)
		os.Exit(1)
	}
	os.Exit(code)
}

// loadConfig reads the TOML config from configPath, or the platform
// default path when configPath is empty, returning built-in defaults
// when no file is present.
func loadConfig(configPath string) (*simconfig.Config, error) {
	if configPath != "" {
		return simconfig.LoadFrom(configPath)
	}
	return simconfig.Load()
}

// resolveMachineParams layers CLI flags over config-file values over
// built-in defaults, in that priority order.
func resolveMachineParams(cfg *simconfig.Config, xlenFlag int, startFlag, haltFlag string, ramSizeFlag uint64) (regfile.Width, uint64, uint32, uint64, error) {
	xlen := regfile.Width(cfg.Execution.XLEN)
	if xlenFlag != 0 {
		xlen = regfile.Width(xlenFlag)
	}
	if xlen != regfile.Width32 && xlen != regfile.Width64 {
		return 0, 0, 0, 0, fmt.Errorf("invalid -xlen %d: must be 32 or 64", xlen)
	}

	startStr := cfg.Execution.Start
	if startFlag != "" {
		startStr = startFlag
	}
	start, err := simconfig.ParseAddress(startStr)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	haltStr := cfg.Execution.HaltSentinel
	if haltFlag != "" {
		haltStr = haltFlag
	}
	haltVal, err := simconfig.ParseAddress(haltStr)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	size := cfg.Execution.RAMSize
	if ramSizeFlag != 0 {
		size = ramSizeFlag
	}

	return xlen, start, uint32(haltVal), size, nil
}

// attachDiagnostics wires the requested trace sink into the machine.
// diag=none leaves every trace nil, which costs nothing per spec.md §7.
func attachDiagnostics(m *core.Machine, diagLevel, kind, traceFile string) error {
	if diagLevel != "trace" {
		return nil
	}

	w := os.Stderr
	if traceFile != "" {
		f, err := os.Create(traceFile) // #nosec G304 -- user-specified trace output path
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		w = f
	}

	switch kind {
	case "itrace":
		m.ITrace = trace.NewInstructionTrace(w)
		m.ITrace.Enabled = true
	case "rtrace":
		m.RTrace = trace.NewRegisterTrace(w)
		m.RTrace.Enabled = true
	case "ftrace":
		m.FTrace = trace.NewFaultTrace(w)
		m.FTrace.Enabled = true
	default:
		return fmt.Errorf("invalid -trace-kind %q: must be itrace, rtrace, or ftrace", kind)
	}
	return nil
}
