// Command funge is a Befunge workbench: an editor, debugger, and
// variable-rate interpreter for a Befunge dialect with an optional
// raster canvas. Without --headless it opens the editor window; with
// it, the program runs to completion and its output goes to stdout.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/zurustar/funge/pkg/cli"
	"github.com/zurustar/funge/pkg/display"
	"github.com/zurustar/funge/pkg/logger"
	"github.com/zurustar/funge/pkg/scheduler"
	"github.com/zurustar/funge/pkg/session"
	"github.com/zurustar/funge/pkg/source"
	"github.com/zurustar/funge/pkg/vm"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	if config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	if err := logger.InitLogger(config.LogLevel); err != nil {
		return err
	}
	log := logger.GetLogger()

	sess := session.New()
	sess.DefaultSpeed = config.Speed
	sess.Settings = vm.Settings{
		SkipSpaces:            config.SkipSpaces,
		InvalidOp:             invalidOpPolicy(config.InvalidOp),
		RecordPositionHistory: !config.Headless,
		RecordGetHistory:      !config.Headless,
		RecordPutHistory:      !config.Headless,
	}

	if config.ProgramPath != "" {
		data, err := os.ReadFile(config.ProgramPath)
		if err != nil {
			return fmt.Errorf("reading program: %w", err)
		}
		text, err := source.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", config.ProgramPath, err)
		}
		sess.LoadSource(text)
		log.Info("program loaded", "path", config.ProgramPath, "bytes", len(data))
	}

	if config.Headless {
		return runHeadless(sess, config.Timeout)
	}
	return display.Run(sess)
}

func invalidOpPolicy(name string) vm.InvalidOpPolicy {
	switch name {
	case "reflect":
		return vm.PolicyReflect
	case "ignore":
		return vm.PolicyIgnore
	default:
		return vm.PolicyHalt
	}
}

// runHeadless executes the program without a window, driving the
// scheduler from a plain loop until the run stops or the timeout
// expires, then prints the accumulated output.
func runHeadless(sess *session.Session, timeout time.Duration) error {
	log := logger.GetLogger()

	sess.SwapMode()
	// Pacing is meaningless without a window; run at full speed.
	sess.SetSpeed(scheduler.MaxSpeed)
	sess.SetRunning(true)

	start := time.Now()
	for sess.Running() {
		sess.Tick()
		if timeout > 0 && time.Since(start) > timeout {
			log.Warn("run timed out", "after", timeout)
			break
		}
		// The scheduler gates on wall-clock time; a short sleep keeps
		// this loop from spinning between ticks.
		time.Sleep(time.Millisecond)
	}

	m := sess.Machine()
	if m.Output != "" {
		fmt.Println(m.Output)
	}
	if err := sess.Err(); err != nil {
		return err
	}
	if !m.Halted() {
		log.Warn("run stopped before halting",
			"x", m.Position.X, "y", m.Position.Y, "steps", m.StepCount)
	}
	return nil
}
