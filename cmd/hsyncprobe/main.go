// Command hsyncprobe measures successive sync intervals on a simulated
// circuit.
//
// The circuit drives an 8 bit output bus uo_out: bit 7 is a periodic sync
// pulse, bits 0 to 6 a free running counter. The sync pulse stays high for
// -high cycles and low for -low cycles, or the opposite with -invert.
//
//	hsyncprobe -high 860 -low 164 -lines 4
//
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/db47h/syncsim"
	"github.com/db47h/syncsim/hwlib"
	"github.com/db47h/syncsim/probe"
	"github.com/db47h/syncsim/sched"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

type config struct {
	high, low, phase uint
	lines            int
	spc              uint
	workers          int
	maxTicks         uint
	maxCycles        uint64
	invert           bool
	verbose          bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("hsyncprobe: ")

	var cfg config
	flag.UintVar(&cfg.high, "high", 20, "sync pulse high `cycles`")
	flag.UintVar(&cfg.low, "low", 5, "sync pulse low `cycles`")
	flag.UintVar(&cfg.phase, "phase", 0, "sync pulse phase at cycle 0")
	flag.IntVar(&cfg.lines, "lines", 8, "number of intervals to measure")
	flag.UintVar(&cfg.spc, "spc", 2, "simulation steps per clock cycle")
	flag.IntVar(&cfg.workers, "workers", 1, "simulation worker goroutines (0 for GOMAXPROCS)")
	flag.UintVar(&cfg.maxTicks, "max-ticks", 0, "maximum length of a sync phase (0 for no limit)")
	flag.Uint64Var(&cfg.maxCycles, "max-cycles", 1<<24, "maximum number of simulated clock cycles (0 for no limit)")
	flag.BoolVar(&cfg.invert, "invert", false, "invert the sync pulse through a NOT gate")
	flag.BoolVar(&cfg.verbose, "v", false, "log scheduler and sampler events to stderr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(ctx, &cfg, newReport(os.Stdout, styled)); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func (cfg *config) parts() []syncsim.Part {
	parts := []syncsim.Part{hwlib.CounterN(7)(syncsim.W{"out": "uo_out[0..6]"})}
	if cfg.invert {
		return append(parts,
			hwlib.Pulse(cfg.high, cfg.low, cfg.phase)(syncsim.W{"out": "sync"}),
			hwlib.Not(syncsim.W{"in": "sync", "out": "uo_out[7]"}),
		)
	}
	return append(parts, hwlib.Pulse(cfg.high, cfg.low, cfg.phase)(syncsim.W{"out": "uo_out[7]"}))
}

func run(ctx context.Context, cfg *config, r *report) error {
	if cfg.high+cfg.low == 0 {
		return errors.New("sync period is 0")
	}
	if cfg.lines <= 0 {
		return errors.Errorf("invalid line count %d", cfg.lines)
	}
	c, err := syncsim.NewCircuit(cfg.workers, cfg.spc, cfg.parts()...)
	if err != nil {
		return errors.Wrap(err, "build circuit")
	}
	defer c.Dispose()
	bus, err := c.Probe("uo_out")
	if err != nil {
		return err
	}

	var logger *log.Logger
	if cfg.verbose {
		logger = log.New(os.Stderr, "hsyncprobe: ", log.Lmicroseconds)
	}
	s := sched.New(c, sched.MaxCycles(cfg.maxCycles), sched.Logger(logger))
	s.Go("measure", func(t *sched.Task) error {
		// let clocked parts latch their first output.
		if err := t.ClockCycles(1); err != nil {
			return err
		}
		smp := probe.New(bus, t, probe.SyncMask)
		smp.MaxTicks = cfg.maxTicks
		smp.Logger = logger
		for i := 0; i < cfg.lines; i++ {
			iv, err := smp.Measure(ctx)
			if err != nil {
				return errors.Wrapf(err, "line %d", i)
			}
			r.line(i, t.Now(), iv)
		}
		return nil
	})
	err = s.Run(ctx)
	r.summary(s.Now())
	return err
}
