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
	"log"
	"os"

	"github.com/exascience/samwrap/regions"
)

// MergeRegionsHelp is the help string for this command.
const MergeRegionsHelp = "\nmerge-regions parameters:\n" +
	"samwrap merge-regions bed-file output-bed-file\n"

// MergeRegions implements the samwrap merge-regions command. It
// parses a BED regions file, sorts the regions of every chromosome by
// start position, merges overlapping regions, and writes the result
// as a three-column BED file.
func MergeRegions() error {
	var flags flag.FlagSet

	parseFlags(&flags, 4, MergeRegionsHelp)

	input := getFilename(os.Args[2], MergeRegionsHelp)
	output := getFilename(os.Args[3], MergeRegionsHelp)

	var sanityChecksFailed bool
	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, MergeRegionsHelp)
		os.Exit(1)
	}

	set, err := regions.ParseBed(input)
	if err != nil {
		return err
	}
	before := set.NofRegions()
	set.Normalize()
	if err := set.WriteBed(output); err != nil {
		return err
	}
	log.Printf("Merged %v regions into %v regions.\n", before, set.NofRegions())
	return nil
}
