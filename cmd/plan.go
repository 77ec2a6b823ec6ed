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
	"fmt"
	"os"

	"github.com/exascience/samwrap/batch"
)

// PlanHelp is the help string for this command.
const PlanHelp = "\nplan parameters:\n" +
	"samwrap plan\n" +
	"[--input-dir dir | --input-files file]\n" +
	"[--output-dir dir]\n" +
	"[--bulk-index]\n" +
	"[--bulk-sort]\n" +
	"[--sort-threads nr]\n" +
	"[--filter-positions bed-file]\n" +
	"[--output-descriptor name]\n" +
	"[--config toml-file]\n"

// Plan implements the samwrap plan command. It prints the command
// chains that run would execute, one line per chain, without
// executing anything.
func Plan() error {
	var opts pipelineOptions

	var flags flag.FlagSet
	opts.register(&flags)

	parseFlags(&flags, 2, PlanHelp)

	cfg, sanityChecksFailed := opts.resolve(&flags)
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, PlanHelp)
		os.Exit(1)
	}

	inputs, err := inputFileList(opts.inputDir, opts.inputFiles)
	if err != nil {
		return err
	}

	ops, indexFirst, err := cfg.BuildOperations(opts.bulkIndex, opts.bulkSort, opts.filterPositions)
	if err != nil {
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

	lines, err := planCommands(spec, jobs)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
