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

package batch

import (
	"testing"
)

func TestOutputPath(t *testing.T) {
	spec := &Spec{OutputDir: "/out", Descriptor: ".filtered"}
	if spec.OutputPath("/in/sample.bam") != "/out/sample.filtered.bam" {
		t.Error("OutputPath failed")
	}
	spec = &Spec{OutputDir: "/out", Descriptor: ".filtered.sorted"}
	if spec.OutputPath("/in/deep/nested/sample.bam") != "/out/sample.filtered.sorted.bam" {
		t.Error("OutputPath with nested input failed")
	}
}

func TestJobs(t *testing.T) {
	spec := &Spec{OutputDir: "/out", Descriptor: ".output"}
	jobs, err := spec.Jobs([]string{"/in/a.bam", "/in/b.bam"})
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatal("wrong number of jobs")
	}
	if jobs[0].Input != "/in/a.bam" || jobs[0].Output != "/out/a.output.bam" {
		t.Error("first job failed")
	}
	if jobs[1].Input != "/in/b.bam" || jobs[1].Output != "/out/b.output.bam" {
		t.Error("second job failed")
	}
}

func TestJobsEmpty(t *testing.T) {
	spec := &Spec{OutputDir: "/out", Descriptor: ".output"}
	if _, err := spec.Jobs(nil); err == nil {
		t.Error("empty input list did not fail")
	}
}

func TestJobsCollision(t *testing.T) {
	spec := &Spec{OutputDir: "/out", Descriptor: ".output"}
	if _, err := spec.Jobs([]string{"/in1/sample.bam", "/in2/sample.bam"}); err == nil {
		t.Error("output file collision not detected")
	}
}
