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

// Package config holds the immutable run configuration. Values come
// from repository defaults, optionally overlaid by a TOML config
// file, optionally overridden by command line flags.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/exascience/samwrap/samtools"
)

// Operation identifiers accepted in the operations list.
const (
	OpIndex          = "index"
	OpPositionFilter = "position-filter"
	OpSort           = "sort"
)

const (
	defaultOutputDescriptor = ".output"
	defaultSortThreads      = 1
	defaultNofWorkers       = 1
	defaultVerbose          = true
)

// Config is the run configuration shared read-only by all workers.
type Config struct {
	// Operations fixes the order in which requested operations run.
	// Identifiers for operations that were not requested are ignored.
	Operations       []string `toml:"operations"`
	SortThreads      int      `toml:"sort_threads"`
	OutputDescriptor string   `toml:"output_descriptor"`
	NofWorkers       int      `toml:"nr_of_workers"`
	KeepGoing        bool     `toml:"keep_going"`
	SkipExisting     bool     `toml:"skip_existing"`
	MergeRegions     bool     `toml:"merge_regions"`
	Verbose          bool     `toml:"verbose"`
}

// Default returns a Config populated with repository defaults. The
// default operation order is indexing, then filtering, then sorting.
func Default() Config {
	return Config{
		Operations:       []string{OpIndex, OpPositionFilter, OpSort},
		SortThreads:      defaultSortThreads,
		OutputDescriptor: defaultOutputDescriptor,
		NofWorkers:       defaultNofWorkers,
		Verbose:          defaultVerbose,
	}
}

// Load overlays the TOML config file at the given path on top of the
// repository defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%v: %v", path, err)
	}
	return cfg, nil
}

// Validate reports the first configuration error, if any. Unknown
// operation identifiers and out-of-range counts are configuration
// errors.
func (cfg *Config) Validate() error {
	seen := make(map[string]bool, len(cfg.Operations))
	for _, identifier := range cfg.Operations {
		switch identifier {
		case OpIndex, OpPositionFilter, OpSort:
		default:
			return fmt.Errorf("unknown operation identifier: %v", identifier)
		}
		if seen[identifier] {
			return fmt.Errorf("duplicate operation identifier: %v", identifier)
		}
		seen[identifier] = true
	}
	if cfg.SortThreads < 1 {
		return fmt.Errorf("invalid sort-threads: %v", cfg.SortThreads)
	}
	if cfg.NofWorkers < 1 {
		return fmt.Errorf("invalid nr-of-workers: %v", cfg.NofWorkers)
	}
	return nil
}

// BuildOperations selects from the configured operation order those
// operations that were actually requested, and returns the streaming
// operations plus whether an index pre-step is requested. regionsFile
// is the BED file for position filtering, empty when filtering was
// not requested.
func (cfg *Config) BuildOperations(index, sortBams bool, regionsFile string) (ops []samtools.Operation, indexFirst bool, err error) {
	for _, identifier := range cfg.Operations {
		switch identifier {
		case OpIndex:
			if index {
				indexFirst = true
			}
		case OpPositionFilter:
			if regionsFile != "" {
				ops = append(ops, samtools.PositionFilter{Regions: regionsFile})
			}
		case OpSort:
			if sortBams {
				ops = append(ops, samtools.Sort{Threads: cfg.SortThreads})
			}
		default:
			return nil, false, fmt.Errorf("unknown operation identifier: %v", identifier)
		}
	}
	return ops, indexFirst, nil
}
