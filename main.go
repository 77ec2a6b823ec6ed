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

// samwrap runs samtools pipelines (indexing, position filtering,
// sorting) across many alignment files in parallel.
//
// Please see https://github.com/exascience/samwrap for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/samwrap/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run, plan, merge-regions")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.PlanHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.MergeRegionsHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "plan":
		err = cmd.Plan()
	case "merge-regions":
		err = cmd.MergeRegions()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command: ", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
