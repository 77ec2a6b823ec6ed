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
	"time"

	"github.com/willf/bitset"
)

// A Result records the outcome of one job.
type Result struct {
	Job
	// Skipped is set when the output file already existed and
	// skip-existing was requested.
	Skipped bool
	// Stderr is the captured standard error of the subprocess chain,
	// set when the chain failed.
	Stderr string
	// Err is the job failure, nil on success.
	Err error
	// Elapsed is the wall-clock duration of the job.
	Elapsed time.Duration
}

// A Report aggregates the results of a batch run. Results appear in
// job order.
type Report struct {
	Results []Result
	failed  *bitset.BitSet
}

// NewReport returns an empty report for a batch of the given size.
func NewReport(nofJobs int) *Report {
	return &Report{
		Results: make([]Result, 0, nofJobs),
		failed:  bitset.New(uint(nofJobs)),
	}
}

func (report *Report) add(results ...Result) {
	for _, result := range results {
		if result.Err != nil {
			report.failed.Set(uint(len(report.Results)))
		}
		report.Results = append(report.Results, result)
	}
}

// Failed returns the results of all failed jobs, in job order.
func (report *Report) Failed() (failed []Result) {
	for i, ok := report.failed.NextSet(0); ok; i, ok = report.failed.NextSet(i + 1) {
		failed = append(failed, report.Results[i])
	}
	return failed
}

// Counts returns the number of succeeded, failed, and skipped jobs.
func (report *Report) Counts() (succeeded, failed, skipped int) {
	for _, result := range report.Results {
		switch {
		case result.Err != nil:
			failed++
		case result.Skipped:
			skipped++
		default:
			succeeded++
		}
	}
	return succeeded, failed, skipped
}
