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

// Package samtools turns sequences of alignment-file operations into
// the command lines of the external samtools tool, and executes them
// as chains of subprocesses connected via their standard streams.
package samtools

import (
	"errors"
	"strconv"
)

// Tool is the name of the external samtools executable.
const Tool = "samtools"

// Pipe is the token that separates consecutive invocations in a
// flattened pipeline command sequence.
const Pipe = "|"

// An Operation describes one samtools invocation in a streaming
// pipeline. Command returns the argument vector for that invocation.
// input and output are empty strings when the corresponding side of
// the invocation streams through a pipe instead of a real file.
type Operation interface {
	Command(input, output string) []string
}

// Sort sorts alignments by coordinate with samtools sort.
type Sort struct {
	// Threads is the number of sorting threads samtools may use.
	// Values below 1 are treated as 1.
	Threads int
}

// Command returns a samtools sort invocation. When output is empty,
// no -o flag is emitted and samtools sort writes the sorted
// alignments to standard output.
func (s Sort) Command(input, output string) []string {
	cmd := []string{Tool, "sort"}
	if output != "" {
		cmd = append(cmd, "-o", output)
	}
	threads := s.Threads
	if threads < 1 {
		threads = 1
	}
	cmd = append(cmd, "-@", strconv.Itoa(threads))
	if input != "" {
		cmd = append(cmd, input)
	}
	return cmd
}

// PositionFilter restricts alignments to the regions listed in a BED
// file with samtools view -L. Region coordinates are inclusive.
type PositionFilter struct {
	// Regions is the path of the BED regions file.
	Regions string
}

// Command returns a samtools view invocation. When output is empty,
// the filtered alignments are written to standard output.
func (f PositionFilter) Command(input, output string) []string {
	cmd := []string{Tool, "view", "-L", f.Regions}
	if output != "" {
		cmd = append(cmd, "-o", output)
	}
	if input != "" {
		cmd = append(cmd, input)
	}
	return cmd
}

// IndexCommand returns the samtools index invocation for the given
// alignment file. Indexing writes a companion index file beside the
// input and is never part of a streaming pipeline.
func IndexCommand(input string) []string {
	return []string{Tool, "index", input}
}

// BuildPipeline flattens the given operations into a single command
// token sequence in which consecutive invocations are separated by
// the Pipe token. The first invocation reads the real input file, the
// last invocation writes the real output file, and every invocation
// strictly in between streams through pipes on both sides. A sequence
// of exactly one operation yields a single invocation with both real
// paths set directly, and no Pipe token.
func BuildPipeline(ops []Operation, input, output string) ([]string, error) {
	if len(ops) == 0 {
		return nil, errors.New("no streaming operations in pipeline")
	}
	if len(ops) == 1 {
		return ops[0].Command(input, output), nil
	}
	tokens := append(ops[0].Command(input, ""), Pipe)
	for _, op := range ops[1 : len(ops)-1] {
		tokens = append(tokens, op.Command("", "")...)
		tokens = append(tokens, Pipe)
	}
	return append(tokens, ops[len(ops)-1].Command("", output)...), nil
}
