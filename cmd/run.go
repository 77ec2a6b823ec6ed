// samwrap: a parallel batch driver for samtools pipelines.
// Copyright (c) 2019-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/samwrap/blob/master/LICENSE.txt>.

package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/exascience/samwrap/batch"
	"github.com/exascience/samwrap/regions"
	"github.com/exascience/samwrap/samtools"
)

// RunHelp is the help string for this command.
const RunHelp = "\nrun parameters:\n" +
	"samwrap run\n" +
	"[--input-dir dir | --input-files file]\n" +
	"[--output-dir dir]\n" +
	"[--bulk-index]\n" +
	"[--bulk-sort]\n" +
	"[--sort-threads nr]\n" +
	"[--filter-positions bed-file]\n" +
	"[--merge-regions]\n" +
	"[--output-descriptor name]\n" +
	"[--nr-of-workers nr]\n" +
	"[--keep-going]\n" +
	"[--skip-existing]\n" +
	"[--verbose]\n" +
	"[--config toml-file]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Run implements the samwrap run command.
func Run() error {
	var (
		opts    pipelineOptions
		timed   bool
		profile string
		logPath string
	)

	var flags flag.FlagSet
	opts.register(&flags)
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 2, RunHelp)

	setLogOutput(logPath)

	// sanity checks

	cfg, sanityChecksFailed := opts.resolve(&flags)

	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, RunHelp)
		os.Exit(1)
	}

	inputs, err := inputFileList(opts.inputDir, opts.inputFiles)
	if err != nil {
		return err
	}

	// regions pre-processing

	regionsFile := opts.filterPositions
	if cfg.MergeRegions && regionsFile != "" {
		set, err := regions.ParseBed(regionsFile)
		if err != nil {
			return err
		}
		before := set.NofRegions()
		set.Normalize()
		merged := filepath.Join(os.TempDir(), fmt.Sprintf("samwrap-regions-%v.bed", uuid.New()))
		if err := set.WriteBed(merged); err != nil {
			return err
		}
		defer func() {
			_ = os.Remove(merged)
		}()
		log.Printf("Merged %v regions from %v into %v regions.\n", before, regionsFile, set.NofRegions())
		regionsFile = merged
	}

	ops, indexFirst, err := cfg.BuildOperations(opts.bulkIndex, opts.bulkSort, regionsFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outputDir, 0700); err != nil {
		return err
	}

	spec := &batch.Spec{
		Ops:        ops,
		Index:      indexFirst,
		OutputDir:  opts.outputDir,
		Descriptor: cfg.OutputDescriptor,
	}
	jobs, err := spec.Jobs(inputs)
	if err != nil {
		return err
	}

	dispatcher, err := batch.NewDispatcher(spec, cfg.NofWorkers)
	if err != nil {
		return err
	}
	dispatcher.KeepGoing = cfg.KeepGoing
	dispatcher.SkipExisting = cfg.SkipExisting
	dispatcher.Verbose = cfg.Verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	var report *batch.Report
	var runErr error
	timedRun(timed, profile, fmt.Sprint("Processing ", len(jobs), " files with ", cfg.NofWorkers, " workers."), 1, func() {
		report, runErr = dispatcher.Run(ctx, jobs)
	})

	printSummary(report)

	if runErr != nil {
		return runErr
	}
	if _, failed, _ := report.Counts(); failed > 0 {
		return fmt.Errorf("%v of %v files failed", failed, len(jobs))
	}
	return nil
}

// planCommands returns the command chains the run command would
// execute for the given spec and jobs, one line per invocation chain,
// index pre-steps included.
func planCommands(spec *batch.Spec, jobs []batch.Job) ([]string, error) {
	var lines []string
	for _, job := range jobs {
		if spec.Index {
			lines = append(lines, samtools.CommandString(samtools.IndexCommand(job.Input)))
		}
		if len(spec.Ops) > 0 {
			tokens, err := samtools.BuildPipeline(spec.Ops, job.Input, job.Output)
			if err != nil {
				return nil, err
			}
			lines = append(lines, samtools.CommandString(tokens))
		}
	}
	return lines, nil
}
