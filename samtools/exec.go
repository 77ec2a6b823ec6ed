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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Commands splits a flattened pipeline token sequence on the Pipe
// token into the argument vectors of its individual invocations.
func Commands(tokens []string) (commands [][]string) {
	start := 0
	for i, token := range tokens {
		if token == Pipe {
			commands = append(commands, tokens[start:i])
			start = i + 1
		}
	}
	return append(commands, tokens[start:])
}

// CommandString renders a flattened pipeline token sequence the way a
// shell user would write it.
func CommandString(tokens []string) string {
	return strings.Join(tokens, " ")
}

// RunPipeline executes a flattened pipeline token sequence as a chain
// of subprocesses, the standard output of each stage connected to the
// standard input of the next. No shell is involved. The standard
// error of every stage is captured and returned; when verbose is set
// it is also forwarded to the process standard error as it is
// produced.
//
// Cancelling the context kills all in-flight stages. All stages are
// always waited for; the error of the earliest failing stage wins.
func RunPipeline(ctx context.Context, tokens []string, verbose bool) (stderr string, err error) {
	argvs := Commands(tokens)
	cmds := make([]*exec.Cmd, len(argvs))
	buffers := make([]*bytes.Buffer, len(argvs))
	for i, argv := range argvs {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		buffers[i] = new(bytes.Buffer)
		if verbose {
			cmd.Stderr = io.MultiWriter(buffers[i], os.Stderr)
		} else {
			cmd.Stderr = buffers[i]
		}
		if i > 0 {
			pipe, perr := cmds[i-1].StdoutPipe()
			if perr != nil {
				return "", perr
			}
			cmd.Stdin = pipe
		}
		cmds[i] = cmd
	}
	started := 0
	for _, cmd := range cmds {
		if serr := cmd.Start(); serr != nil {
			err = serr
			// Earlier stages have lost their pipe reader and would
			// block once the pipe buffer fills.
			for i := 0; i < started; i++ {
				_ = cmds[i].Process.Kill()
			}
			break
		}
		started++
	}
	for i := 0; i < started; i++ {
		if werr := cmds[i].Wait(); werr != nil && err == nil {
			err = fmt.Errorf("%v: %v", strings.Join(argvs[i], " "), werr)
		}
	}
	return collectStderr(buffers), err
}

// Index runs samtools index on the given alignment file, writing the
// companion index file beside it.
func Index(ctx context.Context, input string, verbose bool) (string, error) {
	return RunPipeline(ctx, IndexCommand(input), verbose)
}

func collectStderr(buffers []*bytes.Buffer) string {
	var all strings.Builder
	for _, buf := range buffers {
		all.Write(buf.Bytes())
	}
	return all.String()
}
