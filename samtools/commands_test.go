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

package samtools

import (
	"testing"
)

func tokensEqual(tokens1, tokens2 []string) bool {
	if len(tokens1) != len(tokens2) {
		return false
	}
	for i, token := range tokens1 {
		if token != tokens2[i] {
			return false
		}
	}
	return true
}

func TestSortCommand(t *testing.T) {
	if !tokensEqual(Sort{Threads: 4}.Command("a.bam", "a.out.bam"),
		[]string{"samtools", "sort", "-o", "a.out.bam", "-@", "4", "a.bam"}) {
		t.Error("sort command with real paths failed")
	}
	if !tokensEqual(Sort{Threads: 2}.Command("", ""),
		[]string{"samtools", "sort", "-@", "2"}) {
		t.Error("sort command with streamed paths failed")
	}
	if !tokensEqual(Sort{}.Command("a.bam", ""),
		[]string{"samtools", "sort", "-@", "1", "a.bam"}) {
		t.Error("sort command thread default failed")
	}
}

func TestPositionFilterCommand(t *testing.T) {
	if !tokensEqual(PositionFilter{Regions: "regions.bed"}.Command("a.bam", "a.out.bam"),
		[]string{"samtools", "view", "-L", "regions.bed", "-o", "a.out.bam", "a.bam"}) {
		t.Error("position filter command with real paths failed")
	}
	if !tokensEqual(PositionFilter{Regions: "regions.bed"}.Command("a.bam", ""),
		[]string{"samtools", "view", "-L", "regions.bed", "a.bam"}) {
		t.Error("position filter command with streamed output failed")
	}
}

func TestIndexCommand(t *testing.T) {
	if !tokensEqual(IndexCommand("a.bam"), []string{"samtools", "index", "a.bam"}) {
		t.Error("index command failed")
	}
}

func TestBuildPipelineSingleOperation(t *testing.T) {
	tokens, err := BuildPipeline([]Operation{Sort{Threads: 4}}, "a.bam", "a.out.bam")
	if err != nil {
		t.Fatal(err)
	}
	if !tokensEqual(tokens, []string{"samtools", "sort", "-o", "a.out.bam", "-@", "4", "a.bam"}) {
		t.Error("single operation pipeline failed")
	}
	for _, token := range tokens {
		if token == Pipe {
			t.Error("single operation pipeline emitted a pipe token")
		}
	}
}

func TestBuildPipelineTwoOperations(t *testing.T) {
	tokens, err := BuildPipeline(
		[]Operation{PositionFilter{Regions: "regions.bed"}, Sort{Threads: 2}},
		"a.bam", "a.out.bam")
	if err != nil {
		t.Fatal(err)
	}
	if !tokensEqual(tokens, []string{
		"samtools", "view", "-L", "regions.bed", "a.bam",
		Pipe,
		"samtools", "sort", "-o", "a.out.bam", "-@", "2",
	}) {
		t.Error("two operation pipeline failed")
	}
}

func TestBuildPipelineInteriorOperations(t *testing.T) {
	ops := []Operation{
		PositionFilter{Regions: "r1.bed"},
		PositionFilter{Regions: "r2.bed"},
		Sort{Threads: 8},
	}
	tokens, err := BuildPipeline(ops, "in.bam", "out.bam")
	if err != nil {
		t.Fatal(err)
	}
	commands := Commands(tokens)
	if len(commands) != len(ops) {
		t.Fatal("wrong number of invocations")
	}
	pipes := 0
	for _, token := range tokens {
		if token == Pipe {
			pipes++
		}
	}
	if pipes != len(ops)-1 {
		t.Error("wrong number of pipe tokens")
	}
	if commands[0][len(commands[0])-1] != "in.bam" {
		t.Error("first invocation misses the real input path")
	}
	for _, command := range commands[1:] {
		for _, token := range command {
			if token == "in.bam" {
				t.Error("input path leaked into a downstream invocation")
			}
		}
	}
	if !tokensEqual(commands[1], []string{"samtools", "view", "-L", "r2.bed"}) {
		t.Error("interior invocation carries a path argument")
	}
	if !tokensEqual(commands[2], []string{"samtools", "sort", "-o", "out.bam", "-@", "8"}) {
		t.Error("last invocation misses the real output path")
	}
}

func TestBuildPipelineEmpty(t *testing.T) {
	if _, err := BuildPipeline(nil, "a.bam", "a.out.bam"); err == nil {
		t.Error("empty pipeline did not fail")
	}
}

func TestCommandString(t *testing.T) {
	tokens, err := BuildPipeline(
		[]Operation{PositionFilter{Regions: "regions.bed"}, Sort{Threads: 2}},
		"a.bam", "a.out.bam")
	if err != nil {
		t.Fatal(err)
	}
	if CommandString(tokens) != "samtools view -L regions.bed a.bam | samtools sort -o a.out.bam -@ 2" {
		t.Error("CommandString failed")
	}
}
