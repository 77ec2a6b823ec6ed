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
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/exascience/samwrap/batch"
)

// printSummary logs the aggregate outcome of a batch run. Failures
// are rendered as a table when stderr is a terminal, and as plain log
// lines otherwise.
func printSummary(report *batch.Report) {
	if report == nil {
		return
	}
	succeeded, failed, skipped := report.Counts()
	log.Printf("%v files succeeded, %v failed, %v skipped.\n", succeeded, failed, skipped)

	failures := report.Failed()
	if len(failures) == 0 {
		return
	}
	if stderrIsTerminal() {
		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stderr)
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"input file", "error"})
		for _, result := range failures {
			tw.AppendRow(table.Row{result.Input, result.Err})
		}
		tw.Render()
	} else {
		for _, result := range failures {
			log.Printf("failed: %v: %v\n", result.Input, result.Err)
		}
	}
	for _, result := range failures {
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			log.Printf("stderr of %v:\n%v\n", result.Input, stderr)
		}
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
