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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/samwrap/batch"
	"github.com/exascience/samwrap/internal"
)

// inputFileList resolves the input source: either all .bam files in a
// directory, or the paths listed in a manifest file.
func inputFileList(inputDir, inputFiles string) ([]string, error) {
	if inputDir != "" {
		return internal.BamFilesInDirectory(inputDir, batch.BamExt)
	}
	return readManifest(inputFiles)
}

// readManifest reads a newline-delimited list of alignment file
// paths. Blank lines are skipped; every path must be absolute.
func readManifest(filename string) (files []string, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(bufio.NewReader(file)))
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			lines := data.([]string)
			paths := make([]string, 0, len(lines))
			for _, line := range lines {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !filepath.IsAbs(line) {
					p.SetErr(fmt.Errorf("%v: input path is not absolute: %v", filename, line))
					return paths
				}
				paths = append(paths, line)
			}
			return paths
		})),
		pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
			files = append(files, data.([]string)...)
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
