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

// Package batch applies one samtools pipeline to many alignment
// files, one subprocess chain per input file, with a bounded number
// of chains in flight.
package batch

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/exascience/samwrap/samtools"
)

// BamExt is the file extension of the alignment files samwrap
// processes.
const BamExt = ".bam"

// A Spec describes the work to be done for every input file. It is
// constructed once from the configuration and shared read-only across
// all workers.
type Spec struct {
	// Ops are the streaming operations, in execution order. Indexing
	// is not a streaming operation and is requested separately.
	Ops []samtools.Operation
	// Index requests a samtools index pre-step for every input file,
	// writing the companion index file beside the input.
	Index bool
	// OutputDir is the directory all output files are placed in.
	OutputDir string
	// Descriptor is inserted into output file names before the file
	// extension.
	Descriptor string
}

// A Job is one input file to be run through the pipeline, with its
// computed output file path.
type Job struct {
	Input, Output string
}

// OutputPath computes the output file path for the given input file:
// the input base name with the descriptor inserted before the
// extension, joined with the output directory.
func (spec *Spec) OutputPath(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(spec.OutputDir, base[:len(base)-len(ext)]+spec.Descriptor+BamExt)
}

// Jobs creates one Job per input file. The input list must be
// non-empty, and the computed output paths must be distinct; two
// inputs mapping onto the same output file is a configuration error.
func (spec *Spec) Jobs(inputs []string) ([]Job, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no input files")
	}
	jobs := make([]Job, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		output := spec.OutputPath(input)
		if previous, ok := seen[output]; ok {
			return nil, fmt.Errorf("output file collision: %v and %v both map onto %v", previous, input, output)
		}
		seen[output] = input
		jobs[i] = Job{Input: input, Output: output}
	}
	return jobs, nil
}
