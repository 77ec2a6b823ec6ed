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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCommands(t *testing.T) {
	commands := Commands([]string{"samtools", "view", "-L", "r.bed", "a.bam", Pipe, "samtools", "sort", "-o", "out.bam", "-@", "2"})
	if len(commands) != 2 {
		t.Fatal("wrong number of commands")
	}
	if !tokensEqual(commands[0], []string{"samtools", "view", "-L", "r.bed", "a.bam"}) {
		t.Error("first command failed")
	}
	if !tokensEqual(commands[1], []string{"samtools", "sort", "-o", "out.bam", "-@", "2"}) {
		t.Error("second command failed")
	}
	commands = Commands([]string{"samtools", "index", "a.bam"})
	if len(commands) != 1 {
		t.Error("single command failed")
	}
}

func TestRunPipelineSuccess(t *testing.T) {
	if _, err := RunPipeline(context.Background(), []string{"true"}, false); err != nil {
		t.Error("successful pipeline reported an error: ", err)
	}
}

func TestRunPipelineChain(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	tokens := []string{"sh", "-c", "echo hello", Pipe, "sh", "-c", "cat > " + out}
	if _, err := RunPipeline(context.Background(), tokens, false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "hello" {
		t.Error("data did not stream through the chain")
	}
}

func TestRunPipelineFailure(t *testing.T) {
	if _, err := RunPipeline(context.Background(), []string{"false"}, false); err == nil {
		t.Error("failing pipeline did not report an error")
	}
	tokens := []string{"sh", "-c", "exit 3", Pipe, "cat"}
	if _, err := RunPipeline(context.Background(), tokens, false); err == nil {
		t.Error("failing upstream stage did not report an error")
	}
}

func TestRunPipelineStderrCapture(t *testing.T) {
	stderr, err := RunPipeline(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 1"}, false)
	if err == nil {
		t.Error("failing pipeline did not report an error")
	}
	if !strings.Contains(stderr, "oops") {
		t.Error("stderr of failing stage was not captured")
	}
}

func TestRunPipelineStageStartFailure(t *testing.T) {
	// The first stage produces output forever; the second stage cannot
	// start at all. The chain must still terminate with an error.
	tokens := []string{"sh", "-c", "while :; do echo data; done", Pipe, filepath.Join(t.TempDir(), "no-such-tool")}
	done := make(chan error, 1)
	go func() {
		_, err := RunPipeline(context.Background(), tokens, false)
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Error("failing stage start did not report an error")
		}
	case <-time.After(30 * time.Second):
		t.Fatal("pipeline with failing stage start did not terminate")
	}
}

func TestRunPipelineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunPipeline(ctx, []string{"sleep", "60"}, false); err == nil {
		t.Error("cancelled pipeline did not report an error")
	}
}
