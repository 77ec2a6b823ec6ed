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
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/exascience/pargo/pipeline"
	"github.com/gofrs/flock"

	"github.com/exascience/samwrap/samtools"
)

// LockFilename is the name of the advisory lock file placed in the
// output directory for the duration of a batch run.
const LockFilename = ".samwrap.lock"

// A Dispatcher runs the pipeline described by a Spec against a list
// of jobs, using a fixed-size pool of workers.
type Dispatcher struct {
	Spec *Spec
	// Workers is the maximum number of subprocess chains in flight at
	// the same time. Must be at least 1.
	Workers int
	// KeepGoing isolates per-job failures: failed jobs are recorded
	// in the report and the remaining jobs still run. When unset, the
	// first failure cancels the whole batch.
	KeepGoing bool
	// SkipExisting skips jobs whose output file already exists.
	SkipExisting bool
	// Verbose emits a per-file completion notice to standard error,
	// and forwards subprocess stderr as it is produced.
	Verbose bool

	// run executes one job. Defaults to runJob; tests substitute it.
	run func(ctx context.Context, job Job) Result
}

// NewDispatcher returns a Dispatcher for the given Spec.
func NewDispatcher(spec *Spec, workers int) (*Dispatcher, error) {
	if workers < 1 {
		return nil, fmt.Errorf("invalid number of workers: %v", workers)
	}
	d := &Dispatcher{Spec: spec, Workers: workers}
	d.run = d.runJob
	return d, nil
}

// Run executes every job and returns the aggregate report, with
// results in job order. While the batch is running, an advisory lock
// file in the output directory rejects concurrent samwrap runs
// writing into the same directory.
//
// Cancelling the context stops dispatching new jobs and kills
// in-flight subprocess chains.
func (d *Dispatcher) Run(ctx context.Context, jobs []Job) (*Report, error) {
	lock := flock.New(filepath.Join(d.Spec.OutputDir, LockFilename))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output directory lock: %v", err)
	}
	if !ok {
		return nil, fmt.Errorf("another %v run is writing to %v", filepath.Base(os.Args[0]), d.Spec.OutputDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	report := NewReport(len(jobs))
	var p pipeline.Pipeline
	p.Source(jobs)
	p.NofBatches(len(jobs))
	p.Add(
		pipeline.LimitedPar(d.Workers, pipeline.Receive(func(_ int, data interface{}) interface{} {
			part := data.([]Job)
			results := make([]Result, len(part))
			for i, job := range part {
				result := d.run(ctx, job)
				if result.Err != nil && !d.KeepGoing {
					p.SetErr(fmt.Errorf("%v: %v", job.Input, result.Err))
				}
				results[i] = result
			}
			return results
		})),
		pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
			report.add(data.([]Result)...)
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// runJob executes the pipeline for a single input file: the optional
// index pre-step, then the streaming chain into the computed output
// file. Index-only specs skip the chain.
func (d *Dispatcher) runJob(ctx context.Context, job Job) Result {
	result := Result{Job: job}
	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	if d.SkipExisting {
		if _, err := os.Stat(job.Output); err == nil {
			result.Skipped = true
			return result
		}
	}

	if d.Spec.Index {
		stderr, err := samtools.Index(ctx, job.Input, d.Verbose)
		if err != nil {
			result.Stderr, result.Err = stderr, err
			return result
		}
	}

	if len(d.Spec.Ops) > 0 {
		tokens, err := samtools.BuildPipeline(d.Spec.Ops, job.Input, job.Output)
		if err != nil {
			result.Err = err
			return result
		}
		stderr, err := samtools.RunPipeline(ctx, tokens, d.Verbose)
		if err != nil {
			result.Stderr, result.Err = stderr, err
			return result
		}
	}

	if d.Verbose {
		log.Printf("%v completed\n", job.Input)
	}
	return result
}
