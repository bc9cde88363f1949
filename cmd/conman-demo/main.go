// Command conman-demo assembles a small scheme out of in-memory blocks
// and drives it for a fixed number of ticks, exercising the scheme
// package's public API end to end.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/concord-systems/conman/conmantest"
	"github.com/concord-systems/conman/scheme"
)

// args are the command-line flags, parsed with go-arg.
type args struct {
	Ticks    int           `arg:"--ticks" default:"5" help:"number of Update ticks to run"`
	Interval time.Duration `arg:"--interval" default:"100ms" help:"wall-clock delay between ticks"`
	Verbose  bool          `arg:"-v" help:"enable debug logging"`
}

func main() {
	var a args
	arg.MustParse(&a)

	logger := buildLogger(a.Verbose)
	defer logger.Sync()

	s := scheme.NewScheme(scheme.WithLogger(logger))

	sensor := conmantest.NewBlock("sensor").
		WithOutputPort("reading").
		Connect("reading", "controller", "input")
	controller := conmantest.NewBlock("controller").
		WithInputPort("input", scheme.Exclusive).
		WithOutputPort("command").
		Connect("command", "actuator", "setpoint")
	actuator := conmantest.NewBlock("actuator").
		WithInputPort("setpoint", scheme.Exclusive)

	for _, b := range []*conmantest.Block{sensor, controller, actuator} {
		if err := s.AddBlock(b); err != nil {
			fail(err)
		}
	}

	if err := s.AddGroup("loop"); err != nil {
		fail(err)
	}
	for _, name := range []string{"sensor", "controller", "actuator"} {
		if err := s.AddToGroup("loop", name); err != nil {
			fail(err)
		}
	}

	if err := s.EnableBlocks([]string{"loop"}, false, true); err != nil {
		fail(err)
	}

	fmt.Printf("blocks: %v\n", s.GetBlocks())

	for i := 0; i < a.Ticks; i++ {
		tick := time.Now()
		if err := s.Update(tick); err != nil {
			logger.Warn("tick had failing blocks", zap.Error(err))
		}
		time.Sleep(a.Interval)
	}

	if err := s.DisableBlocks([]string{"loop"}, false); err != nil {
		fail(err)
	}
	fmt.Printf("ran %d ticks, last update %s\n", a.Ticks, s.LastUpdate().Format(time.RFC3339))
}

func buildLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	return logger
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "conman-demo:", err)
	os.Exit(1)
}
