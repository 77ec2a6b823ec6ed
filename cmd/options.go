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
	"flag"
	"log"

	"github.com/exascience/samwrap/config"
)

// pipelineOptions are the command line options shared by the run and
// plan commands.
type pipelineOptions struct {
	inputDir, inputFiles, outputDir string
	bulkIndex, bulkSort             bool
	sortThreads                     int
	filterPositions                 string
	mergeRegions                    bool
	outputDescriptor                string
	nofWorkers                      int
	keepGoing, skipExisting         bool
	verbose                         bool
	configFile                      string
}

func (opts *pipelineOptions) register(flags *flag.FlagSet) {
	defaults := config.Default()
	flags.StringVar(&opts.inputDir, "input-dir", "", "directory containing input bams")
	flags.StringVar(&opts.inputFiles, "input-files", "", "file containing input bams, one absolute path per line")
	flags.StringVar(&opts.outputDir, "output-dir", "", "directory output files are to be put in")
	flags.BoolVar(&opts.bulkIndex, "bulk-index", false, "index the input bams")
	flags.BoolVar(&opts.bulkSort, "bulk-sort", false, "sort the output bams")
	flags.IntVar(&opts.sortThreads, "sort-threads", defaults.SortThreads, "number of threads for samtools to use during sorting")
	flags.StringVar(&opts.filterPositions, "filter-positions", "", "bed file containing positions to filter bams with")
	flags.BoolVar(&opts.mergeRegions, "merge-regions", defaults.MergeRegions, "sort and merge overlapping positions before filtering")
	flags.StringVar(&opts.outputDescriptor, "output-descriptor", defaults.OutputDescriptor, "identifier to put in output files")
	flags.IntVar(&opts.nofWorkers, "nr-of-workers", defaults.NofWorkers, "number of parallel worker processes")
	flags.BoolVar(&opts.keepGoing, "keep-going", defaults.KeepGoing, "process remaining files when a file fails")
	flags.BoolVar(&opts.skipExisting, "skip-existing", defaults.SkipExisting, "skip files whose output file already exists")
	flags.BoolVar(&opts.verbose, "verbose", defaults.Verbose, "print names of files to stderr as they are processed")
	flags.StringVar(&opts.configFile, "config", "", "toml file with defaults for the options above")
}

// resolve overlays the config file, if any, under the flags that were
// explicitly set on the command line, and runs the sanity checks
// shared by the run and plan commands. All configuration errors are
// logged before reporting failure.
func (opts *pipelineOptions) resolve(flags *flag.FlagSet) (cfg config.Config, sanityChecksFailed bool) {
	cfg = config.Default()
	if opts.configFile != "" {
		if !checkExist("--config", opts.configFile) {
			sanityChecksFailed = true
		} else if loaded, err := config.Load(opts.configFile); err != nil {
			log.Println("Error:", err)
			sanityChecksFailed = true
		} else {
			cfg = loaded
		}
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sort-threads":
			cfg.SortThreads = opts.sortThreads
		case "merge-regions":
			cfg.MergeRegions = opts.mergeRegions
		case "output-descriptor":
			cfg.OutputDescriptor = opts.outputDescriptor
		case "nr-of-workers":
			cfg.NofWorkers = opts.nofWorkers
		case "keep-going":
			cfg.KeepGoing = opts.keepGoing
		case "skip-existing":
			cfg.SkipExisting = opts.skipExisting
		case "verbose":
			cfg.Verbose = opts.verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}
	if opts.outputDir == "" {
		log.Println("Error: Must specify --output-dir.")
		sanityChecksFailed = true
	}
	if opts.inputDir == "" && opts.inputFiles == "" {
		log.Println("Error: Must specify an --input-files file list or --input-dir directory.")
		sanityChecksFailed = true
	}
	if opts.inputDir != "" && opts.inputFiles != "" {
		log.Println("Error: Cannot use --input-dir and --input-files in the same command.")
		sanityChecksFailed = true
	}
	if opts.inputFiles != "" && !checkExist("--input-files", opts.inputFiles) {
		sanityChecksFailed = true
	}
	if opts.filterPositions != "" && !checkExist("--filter-positions", opts.filterPositions) {
		sanityChecksFailed = true
	}
	if !opts.bulkIndex && !opts.bulkSort && opts.filterPositions == "" {
		log.Println("Error: No operations requested; use --bulk-index, --bulk-sort, or --filter-positions.")
		sanityChecksFailed = true
	}
	return cfg, sanityChecksFailed
}
