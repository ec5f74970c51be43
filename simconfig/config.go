// Package simconfig implements the simulator's TOML-backed
// configuration file, adapted from the teacher's debugger/display
// settings to the simulator's own execution, memory-map, and
// diagnostic concerns.
package simconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/rvsim/riscv-sim/memory"
)

// Config mirrors cmd/riscvsim's flag surface plus settings that have
// no command-line equivalent (memory map base addresses).
type Config struct {
	Execution struct {
		XLEN         int    `toml:"xlen"`          // 32 or 64
		Start        string `toml:"start"`         // hex, e.g. "0x80000000"
		HaltSentinel string `toml:"halt_sentinel"` // hex, e.g. "0x0000006B"
		RAMSize      uint64 `toml:"ram_size"`
	} `toml:"execution"`

	Memory struct {
		RAMBase         string `toml:"ram_base"`
		PeriphBase      string `toml:"periph_base"`
		FramebufferBase string `toml:"framebuffer_base"`
	} `toml:"memory"`

	Diagnostics struct {
		Level       string `toml:"level"`      // none, warn, err, trace
		TraceKind   string `toml:"trace_kind"` // itrace, rtrace, ftrace
		OutputFile  string `toml:"output_file"`
		FilterRegs  string `toml:"filter_registers"` // comma-separated ABI names
		MaxEntries  int    `toml:"max_entries"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a configuration matching the simulator's own
// built-in defaults (core.DefaultHaltSentinel, regfile.Width64, and
// the memory package's default physical map).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.XLEN = 64
	cfg.Execution.Start = fmt.Sprintf("0x%X", memory.DefaultRAMBase)
	cfg.Execution.HaltSentinel = "0x0000006B"
	cfg.Execution.RAMSize = 64 * 1024 * 1024

	cfg.Memory.RAMBase = fmt.Sprintf("0x%X", memory.DefaultRAMBase)
	cfg.Memory.PeriphBase = fmt.Sprintf("0x%X", memory.PeriphBase)
	cfg.Memory.FramebufferBase = fmt.Sprintf("0x%X", memory.FramebufferBase)

	cfg.Diagnostics.Level = "none"
	cfg.Diagnostics.TraceKind = "itrace"
	cfg.Diagnostics.OutputFile = "trace.log"
	cfg.Diagnostics.FilterRegs = ""
	cfg.Diagnostics.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific config file path:
// %APPDATA%\riscvsim\config.toml on Windows, ~/.config/riscvsim/
// config.toml on macOS/Linux, falling back to a relative path when the
// platform or home directory can't be resolved.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "riscvsim")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "riscvsim")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file
// is not an error: the defaults are returned as-is, matching the
// teacher's config package.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("simconfig: failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file, creating any
// missing parent directories.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("simconfig: failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified config file path
	if err != nil {
		return fmt.Errorf("simconfig: failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("simconfig: failed to encode config: %w", err)
	}
	return nil
}

// ParseAddress parses a hex or decimal address/sentinel string as
// stored in Config's string fields (toml lacks a native unsigned
// 64-bit type, so base addresses round-trip as "0x..." text).
func ParseAddress(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("simconfig: invalid address %q: %w", s, err)
	}
	return v, nil
}
