// Package cli parses command-line configuration for the funge
// workbench.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings parsed from arguments and environment.
type Config struct {
	ProgramPath string        // Befunge source file to load (optional)
	Speed       int           // Initial speed level (1-20)
	Timeout     time.Duration // Headless run limit (0 is unlimited)
	LogLevel    string        // Log level (debug, info, warn, error)
	Headless    bool          // Run without a window
	SkipSpaces  bool          // Slide the pointer over blank runs
	InvalidOp   string        // Invalid opcode policy (reflect, halt, ignore)
	ShowHelp    bool          // Help flag
}

// ParseArgs parses arguments into a Config. Environment variables
// HEADLESS, TIMEOUT and LOG_LEVEL apply when the matching flag is not
// given; flags win.
func ParseArgs(args []string) (*Config, error) {
	// Reorder so flags precede the positional program path.
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("funge", flag.ContinueOnError)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&config.Speed, "speed", 1, "initial speed level (1-20)")
	fs.IntVar(&config.Speed, "s", 1, "initial speed level (shorthand)")
	fs.IntVar(&timeoutSec, "timeout", 0, "headless run limit in seconds")
	fs.IntVar(&timeoutSec, "t", 0, "headless run limit in seconds (shorthand)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (shorthand)")
	fs.StringVar(&config.InvalidOp, "invalid-op", "halt", "invalid opcode policy (reflect, halt, ignore)")
	fs.BoolVar(&config.SkipSpaces, "skip-spaces", false, "slide the pointer over runs of blank cells")
	fs.BoolVar(&config.Headless, "headless", false, "run without a window")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// Environment fallbacks; flags take precedence.
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}
	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if config.Speed < 1 || config.Speed > 20 {
		return nil, fmt.Errorf("speed must be between 1 and 20, got %d", config.Speed)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	switch config.InvalidOp {
	case "reflect", "halt", "ignore":
	default:
		return nil, fmt.Errorf("invalid opcode policy: %s (must be reflect, halt, or ignore)", config.InvalidOp)
	}

	if fs.NArg() > 0 {
		config.ProgramPath = fs.Arg(0)
	}

	return config, nil
}

// boolFlags are flags that never take a separate value argument.
var boolFlags = map[string]bool{
	"-h": true, "--help": true,
	"--headless":    true,
	"--skip-spaces": true,
}

// reorderArgs moves flags before positional arguments so a trailing
// program path parses the same as a leading one.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// A non-boolean flag consumes the following value
			// (e.g. "-t 5").
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if !boolFlags[arg] {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp writes the usage message to stdout.
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `funge - Befunge workbench

Usage:
  funge [options] [program.bf]

Arguments:
  program.bf    Befunge source file to load (optional; starts with an
                empty grid when omitted)

Options:
  -s, --speed <level>         initial speed level 1-20 (default: 1)
  -t, --timeout <seconds>     stop a headless run after this long
  -l, --log-level <level>     log level: debug, info, warn, error (default: info)
  --invalid-op <policy>       invalid opcode policy: reflect, halt, ignore (default: halt)
  --skip-spaces               slide the pointer over runs of blank cells
  --headless                  run without a window, print program output
  -h, --help                  show this help

Environment Variables:
  HEADLESS=1                  enable headless mode
  TIMEOUT=<seconds>           headless run limit
  LOG_LEVEL=<level>           log level

Examples:
  funge hello.bf              open a program in the editor
  funge --headless hello.bf   run to completion, print output
  funge -t 10 --headless loop.bf
`)
}
