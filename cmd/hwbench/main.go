// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command hwbench runs the verification scenarios of the hwlib circuits.
//
// Usage:
//
//	hwbench [options]
//
// With -script and -circuit, it runs a single Lua script against the named
// circuit instead of the built-in scenarios. The exit status is 1 if any
// scenario fails and 2 on usage or configuration errors.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/db47h/hwbench/scenario"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var (
	configPath = flag.String("config", "", "path to a YAML configuration file")
	seed       = flag.Int64("seed", 0, "random seed (overrides the configuration)")
	run        = flag.String("run", "", "run only the scenarios matching this regular expression")
	list       = flag.Bool("list", false, "list scenarios and circuits, then exit")
	parallel   = flag.Int("parallel", 0, "maximum number of scenarios run in parallel (overrides the configuration)")
	verbosity  = flag.Int("v", 0, "log verbosity")
	scriptPath = flag.String("script", "", "run the Lua script in this file")
	circuit    = flag.String("circuit", "", "circuit driven by -script")
	timeout    = flag.Duration("timeout", 0, "wall clock timeout of the whole run")
)

func newLogger(v int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: v, LogTimestamp: true})
}

func fatal(code int, err error) {
	fmt.Fprintf(os.Stderr, "hwbench: %v\n", err)
	os.Exit(code)
}

func loadConfig() (scenario.Config, error) {
	cfg := scenario.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = scenario.LoadConfig(*configPath); err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "parallel":
			cfg.Parallel = *parallel
		}
	})
	return cfg, cfg.Validate()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hwbench [options]\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fatal(2, err)
	}
	log := newLogger(*verbosity)

	var s *scenario.Suite
	var filter *regexp.Regexp
	if *scriptPath != "" {
		if *circuit == "" {
			fatal(2, errors.New("-script requires -circuit"))
		}
		cfg.Scripts = nil
		if s, err = scenario.NewSuite(cfg, scenario.WithLogger(log)); err != nil {
			fatal(2, err)
		}
		sc, err := scenario.ScriptScenario(*scriptPath, *circuit, *scriptPath)
		if err == nil {
			err = s.Add(sc)
		}
		if err != nil {
			fatal(2, err)
		}
	} else if s, err = scenario.NewDefaultSuite(cfg, scenario.WithLogger(log)); err != nil {
		fatal(2, err)
	}
	if *run != "" {
		if filter, err = regexp.Compile(*run); err != nil {
			fatal(2, err)
		}
	}

	if *list {
		fmt.Println("circuits:")
		for _, n := range s.Circuits() {
			fmt.Println("  " + n + params(s, n))
		}
		fmt.Println("scenarios:")
		for _, n := range s.Scenarios(filter) {
			fmt.Println("  " + n)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *timeout > 0 {
		var tc context.CancelFunc
		ctx, tc = context.WithTimeout(ctx, *timeout)
		defer tc()
	}

	start := time.Now()
	rep := s.RunAll(ctx, filter)
	if err = rep.Write(os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		fatal(2, err)
	}
	log.V(1).Info("elapsed", "duration", time.Since(start).String())
	if rep.Failed() > 0 {
		os.Exit(1)
	}
}

// params returns the parameters of the named circuit as built from the current
// configuration.
//
func params(s *scenario.Suite, name string) string {
	c, err := s.NewCircuit(name)
	if err != nil {
		return " (" + err.Error() + ")"
	}
	defer c.Dispose()
	ps := c.Params()
	ks := make([]string, 0, len(ps))
	for k := range ps {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	var b strings.Builder
	for _, k := range ks {
		b.WriteString(" " + k + "=" + strconv.Itoa(ps[k]))
	}
	return b.String()
}
