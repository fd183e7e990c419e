// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Frame extraction jobs: per planned frame one ffmpeg invocation that decodes
// a single frame to a JPEG file.

package extraction

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/google/shlex"

	"camsync/internal/align"
	"camsync/internal/logging"
)

// DefaultFfmpegExtractTemplate is the ffmpeg argument template for decoding
// one frame by index. Overridable via configuration for exotic containers.
var DefaultFfmpegExtractTemplate = "-y -hide_banner -loglevel error " +
	"-i {{.SourceFile}} -vf select=eq(n\\,{{.FrameIndex}}) " +
	"-frames:v 1 -q:v 2 {{.OutputFile}}"

// Stderr capture is capped so a runaway ffmpeg cannot flood memory.
const outputBufferSize = 1 * 1024 * 1024

// Job describes the extraction of a single frame from one camera's video.
type Job struct {
	Camera      align.Camera
	SourceFile  string
	FrameIndex  int
	SampleIndex int
	OutputFile  string
}

// RunResult contains the status of a single extraction job. Errors are
// collected, not propagated: one failed frame must not abort the batch.
type RunResult struct {
	Job
	Errors  []error
	Elapsed time.Duration
	stderr  []byte
}

func (r *RunResult) AddError(e error) {
	r.Errors = append(r.Errors, e)
}

// Output returns captured ffmpeg diagnostics output.
func (r *RunResult) Output() string {
	return string(r.stderr)
}

// Runner executes extraction jobs against a configured ffmpeg binary.
type Runner struct {
	// FfmpegPath is path to the ffmpeg executable.
	FfmpegPath string
	// Template is the ffmpeg argument template, DefaultFfmpegExtractTemplate
	// when empty.
	Template string
	// OutputSize is the square output side in pixels; 0 disables resizing.
	OutputSize int
}

// buildArgs renders the argument template for one job and splits it
// shell-style.
func (e *Runner) buildArgs(job Job) ([]string, error) {
	tplText := e.Template
	if tplText == "" {
		tplText = DefaultFfmpegExtractTemplate
	}

	var cmd strings.Builder
	tpl, err := template.New("ffmpeg").Parse(tplText)
	if err != nil {
		return nil, fmt.Errorf("buildArgs() parse template: %w", err)
	}
	if err := tpl.Execute(&cmd, job); err != nil {
		return nil, fmt.Errorf("buildArgs() execute template: %w", err)
	}
	args, err := shlex.Split(cmd.String())
	if err != nil {
		return nil, fmt.Errorf("buildArgs() prepare command: %w", err)
	}
	return args, nil
}

// Run will decode one frame to the job's output file.
func (e *Runner) Run(job Job) RunResult {
	r := RunResult{Job: job}

	if err := os.MkdirAll(path.Dir(job.OutputFile), os.FileMode(0o755)); err != nil {
		r.AddError(fmt.Errorf("creating output directory: %w", err))
		return r
	}

	args, err := e.buildArgs(job)
	if err != nil {
		r.AddError(err)
		return r
	}

	var buf bytes.Buffer
	cmd := exec.Command(e.FfmpegPath, args...) //#nosec G204
	cmd.Stderr = capWriter(&buf, outputBufferSize)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		logging.Infof("Extraction error for %s frame %d: %s", job.Camera, job.FrameIndex, err)
		logging.Debugf("Command: %s", cmd)
		logging.Debugf("Stderr: %s", buf.Bytes())
		r.AddError(fmt.Errorf("decoding frame %d: %w", job.FrameIndex, err))
	}
	r.Elapsed = time.Since(start)
	r.stderr = buf.Bytes()
	if len(r.Errors) > 0 {
		return r
	}

	if e.OutputSize > 0 {
		if err := ResizeSquare(job.OutputFile, e.OutputSize); err != nil {
			r.AddError(err)
		}
	}

	return r
}

// cappedWriter discards everything past a fixed budget, keeping the head of
// the output which is where ffmpeg puts the relevant diagnostics.
type cappedWriter struct {
	w io.Writer
	n int
}

func capWriter(w io.Writer, n int) io.Writer {
	return &cappedWriter{w: w, n: n}
}

// Write implements io.Writer for *cappedWriter. Never errors on overflow, so
// the wrapped command keeps running while excess output is dropped.
func (c *cappedWriter) Write(b []byte) (int, error) {
	if c.n <= 0 {
		return len(b), nil
	}
	keep := b
	if len(keep) > c.n {
		keep = keep[:c.n]
	}
	n, err := c.w.Write(keep)
	c.n -= n
	if err != nil {
		return n, err
	}
	return len(b), nil
}
