// Package harness runs the renderer scene tests and warp tests and collects
// their results.
package harness

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/achilleasa/nori-export/log"
)

var (
	ErrNoRenderer = errors.New("harness: no renderer executable specified")
	ErrNoWarpTest = errors.New("harness: no warp test executable specified")
)

// Runner executes a test suite. Tests are run sequentially; a test passes if
// its process exits with status 0.
type Runner struct {
	logger log.Logger

	// Folder containing the renderer and warp test executables.
	BuildDir string

	// Folder that scene paths are relative to.
	ScenesDir string

	// Executable names.
	Renderer string
	WarpTest string

	// Process output sinks. Output is discarded if nil.
	Stdout io.Writer
	Stderr io.Writer
}

// Create a runner using the default executable names. If buildDir is empty
// it is detected using FindBuildDir.
func NewRunner(buildDir, scenesDir string) *Runner {
	r := &Runner{
		logger:    log.New("test harness"),
		BuildDir:  buildDir,
		ScenesDir: scenesDir,
		Renderer:  "nori",
		WarpTest:  "warptest",
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
	if r.BuildDir == "" {
		r.BuildDir = FindBuildDir(".", r.Renderer)
	}
	return r
}

// Locate the folder with the renderer executable. The current folder is
// checked first followed by its parent; if neither contains the renderer
// the build folder under root is assumed.
func FindBuildDir(root, renderer string) string {
	for _, dir := range []string{root, filepath.Join(root, "..")} {
		if info, err := os.Stat(filepath.Join(dir, renderer)); err == nil && !info.IsDir() {
			return dir
		}
	}
	return filepath.Join(root, "build")
}

// Join dir and name making sure the result is never looked up in PATH.
func executablePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if !strings.ContainsRune(path, filepath.Separator) {
		path = "." + string(filepath.Separator) + path
	}
	return path
}

// A single test invocation.
type invocation struct {
	// Reported if the test fails.
	name string

	cmd  string
	args []string
}

// Expand a suite into the list of process invocations.
func (r *Runner) invocations(suite Suite) []invocation {
	out := make([]invocation, 0, suite.Len())
	renderer := executablePath(r.BuildDir, r.Renderer)
	for _, scene := range suite.Scenes {
		out = append(out, invocation{
			name: scene,
			cmd:  renderer,
			args: []string{filepath.Join(r.ScenesDir, scene)},
		})
	}

	warpTest := executablePath(r.BuildDir, r.WarpTest)
	for _, warp := range suite.Warps {
		out = append(out, invocation{
			name: strings.Join(append([]string{warpTest}, warp...), " "),
			cmd:  warpTest,
			args: warp,
		})
	}
	return out
}

// Run all suite tests. If ctx is cancelled the tests that did not complete
// are reported as failed and the context error is returned together with the
// report.
func (r *Runner) Run(ctx context.Context, suite Suite) (*Report, error) {
	if r.Renderer == "" {
		return nil, ErrNoRenderer
	}
	if r.WarpTest == "" {
		return nil, ErrNoWarpTest
	}

	report := &Report{Total: suite.Len(), Failed: make([]string, 0)}
	for _, inv := range r.invocations(suite) {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, inv.name)
			continue
		}

		r.logger.Infof("running %s %s", inv.cmd, strings.Join(inv.args, " "))
		if r.exec(ctx, inv) {
			report.Passed++
		} else {
			report.Failed = append(report.Failed, inv.name)
		}
	}

	return report, ctx.Err()
}

// Run a single invocation and report whether it exited with status 0.
func (r *Runner) exec(ctx context.Context, inv invocation) bool {
	c := exec.CommandContext(ctx, inv.cmd, inv.args...)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	err := c.Run()
	switch {
	case err == nil:
		return true
	case !cmdRan(err):
		r.logger.Errorf("could not run %q: %v", inv.name, err)
	default:
		r.logger.Warningf("%q exited with status %d", inv.name, exitStatus(err))
	}
	return false
}

// Report whether err was produced by a process that actually ran, even if
// it exited with a non-zero status.
func cmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.Exited()
	}
	return false
}

// Get the exit status of a process error; 0 for nil and 1 for errors that
// do not carry an exit status.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}
