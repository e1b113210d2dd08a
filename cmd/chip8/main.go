/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main implements the command line entry point of the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/senojj/emul8"
	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/disasm"
	"github.com/senojj/emul8/internal/cli"
	"github.com/senojj/emul8/internal/config"
	"github.com/senojj/emul8/runner"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet, opts.Trace)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			if msg := usageErr.Error(); msg != "" {
				logger.Error(msg)
			}
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet, opts.Trace)
	if err := run(ctx, logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func run(ctx context.Context, logger *log.Logger, opts cli.Options) error {
	rom, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("reading ROM file '%s': %w", opts.Input, err)
	}

	if opts.Disasm {
		if err := disasm.Listing(os.Stdout, rom, chip8.ProgramStartAddress, opts.Quirks); err != nil {
			return fmt.Errorf("listing ROM: %w", err)
		}
		return nil
	}

	cpu := chip8.New(processorOptions(logger, opts)...)
	if err := cpu.Boot(rom); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	logger.Info("Loaded ROM",
		log.String("file", opts.Input),
		log.Int("size", len(rom)),
		log.String("quirks", opts.Quirks.String()))

	if opts.Headless {
		return runHeadless(ctx, logger, cpu, opts, os.Stdout)
	}

	e := emul8.New(cpu, logger, runnerOptions(opts)...)
	if opts.Paused {
		e.Runner().Pause()
	}
	return e.Run(ctx)
}

func processorOptions(logger *log.Logger, opts cli.Options) []chip8.Option {
	options := []chip8.Option{
		chip8.WithQuirks(opts.Quirks),
		chip8.WithLogger(logger),
	}
	if opts.SeedSet {
		options = append(options, chip8.WithSeed(opts.Seed))
	}
	return options
}

func runnerOptions(opts cli.Options) []runner.Option {
	options := []runner.Option{
		runner.WithClockRate(opts.ClockRate),
		runner.WithBreakpoints(opts.Breakpoints...),
	}
	if opts.Trace {
		options = append(options, runner.WithTrace())
	}
	if opts.HaltOnUnknown {
		options = append(options, runner.WithHaltOnUnknown())
	}
	return options
}
