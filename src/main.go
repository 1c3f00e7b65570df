package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"
	"golang.org/x/sync/errgroup"

	"idlelife/src/config"
	"idlelife/src/universe"
	"idlelife/src/view"
)

//EnvOptions are the command line values which are not part of the configuration file
type EnvOptions struct {
	configFile  string
	list        bool
	clearResets bool
	pushResets  bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	eo, cfg, err := initOptions()
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	if eo.list {
		listTemplates(os.Stdout, append(universe.BuiltinTemplates(), cfg.Templates...))
		return
	}

	var stateCh chan universe.Status
	if !cfg.Interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the runner status
	}

	r, err := newRunner(cfg, stateCh)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Interactive {
		v, err := view.NewViewTerminal()
		if err != nil {
			r.Close()
			log.Fatal(err)
		}
		r.RegisterViewer(v)
		v.Start()
		r.Close()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runBatch(ctx, r, os.Stdout, cfg.Print); err != nil {
		log.Fatal(err)
	}
}

//newRunner builds the universe and the runner described by cfg and settles the initial data
func newRunner(cfg *config.Config, stateCh chan universe.Status) (*universe.Runner, error) {
	u, err := cfg.NewUniverse()
	if err != nil {
		return nil, err
	}
	r := universe.NewRunner(u, cfg.Options(), stateCh)
	for _, tmpl := range cfg.Templates {
		r.AddTemplate(tmpl)
	}

	switch {
	case cfg.Demo:
		//the demo universe is seeded on construction
	case cfg.Random:
		r.SettleWithRandomData()
		if stateCh != nil {
			<-stateCh //the clear before settling reports the manual mode
		}
	case cfg.Template != "":
		if err := r.SettleTemplate(cfg.Template); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

//runBatch runs the simulation until it is finished or ctx is canceled
func runBatch(ctx context.Context, r *universe.Runner, w io.Writer, printField bool) error {
	out := view.NewConsoleOut(w, printField)
	r.RegisterViewer(out)
	defer r.Close()

	fmt.Fprintf(w, "\"The Life\" game simulation started...\n")
	out.Start()

	stateCh := r.StateCh()
	finished := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	//waits for the end of the simulation
	g.Go(func() error {
		defer close(finished)
		r.Run()
		for {
			select {
			case st := <-stateCh:
				if st.RunningMode == universe.RunningStateFinished {
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	//stops the simulation on interrupt
	g.Go(func() error {
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			r.Stop()
			return ctx.Err()
		}
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(w, "Interrupted at iteration %v\n", r.Status().IterationNum)
			return nil
		}
		return err
	}
	return nil
}

//listTemplates prints every template with its picture
func listTemplates(w io.Writer, tmpls []universe.Template) {
	for _, t := range tmpls {
		fmt.Fprintf(w, "%s - %s\n", t.Name, t.Descr)
		width, height := t.Size()
		for _, row := range t.Rows(width, height) {
			fmt.Fprintf(w, "  %s\n", row)
		}
	}
}

func initOptions() (*EnvOptions, *config.Config, error) {
	eo := &EnvOptions{}
	flags := config.DefaultConfig()

	flaggy.SetName("idlelife")
	flaggy.SetDescription("\"The Life\" game with idle cells")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configFile, "c", "config", "Configuration file (yaml), flags override its values")
	flaggy.Bool(&eo.list, "l", "list", "List the templates and exit")
	flaggy.Int(&flags.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&flags.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&flags.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&flags.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.Int64(&flags.Seed, "", "seed", "Seed for the random data")
	flaggy.Bool(&flags.Interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&flags.Random, "r", "random", "Settle with random data")
	flaggy.Bool(&flags.Demo, "d", "demo", "Start with the 64x64 demo pattern")
	flaggy.Bool(&flags.Print, "p", "print", "Print the final field")
	flaggy.String(&flags.Template, "t", "template", "Template to settle")
	flaggy.String(&flags.Engine, "e", "engine", "Engine to use ["+strings.Join(universe.Strategies(), "|")+"]")
	flaggy.Bool(&eo.clearResets, "", "clearResets", "Clear resets the dead-time counters")
	flaggy.Bool(&eo.pushResets, "", "pushResets", "Pushing a cell resets its dead-time counter")

	flaggy.Parse()

	cfg := flags
	if eo.configFile != "" {
		loaded, err := config.Load(eo.configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = mergeFlags(loaded, flags, config.DefaultConfig())
	}
	cfg.Policy.ClearResetsDeadTimes = cfg.Policy.ClearResetsDeadTimes || eo.clearResets
	cfg.Policy.PushResetsDeadTimes = cfg.Policy.PushResetsDeadTimes || eo.pushResets

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return eo, cfg, nil
}

//mergeFlags copies the flag values which differ from the defaults over the loaded configuration
func mergeFlags(loaded *config.Config, flags *config.Config, def *config.Config) *config.Config {
	if flags.Width != def.Width {
		loaded.Width = flags.Width
	}
	if flags.Height != def.Height {
		loaded.Height = flags.Height
	}
	if flags.Interval != def.Interval {
		loaded.Interval = flags.Interval
	}
	if flags.MaxSteps != def.MaxSteps {
		loaded.MaxSteps = flags.MaxSteps
	}
	if flags.Seed != def.Seed {
		loaded.Seed = flags.Seed
	}
	if flags.Engine != def.Engine {
		loaded.Engine = flags.Engine
	}
	if flags.Template != def.Template {
		loaded.Template = flags.Template
	}
	loaded.Interactive = loaded.Interactive || flags.Interactive
	loaded.Random = loaded.Random || flags.Random
	loaded.Demo = loaded.Demo || flags.Demo
	loaded.Print = loaded.Print || flags.Print
	return loaded
}
