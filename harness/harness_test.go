package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSuite(t *testing.T) {
	suite := DefaultSuite()
	assert.Equal(t, []string{"pa4/tests/test-mesh.xml", "pa4/tests/test-mesh-furnace.xml"}, suite.Scenes)
	require.Len(t, suite.Warps, 9)
	assert.Equal(t, []string{"square"}, suite.Warps[0])
	assert.Equal(t, []string{"beckmann", "0.30"}, suite.Warps[8])
	assert.Equal(t, 11, suite.Len())
}

func TestParseWarps(t *testing.T) {
	warps, err := ParseWarps([]string{"tent", "beckmann 0.05", `microfacet_brdf "0.01" 0.2`})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"tent"}, {"beckmann", "0.05"}, {"microfacet_brdf", "0.01", "0.2"}}, warps)

	_, err = ParseWarps([]string{"beckmann '0.05"})
	assert.Error(t, err)

	_, err = ParseWarps([]string{"   "})
	assert.Error(t, err)
}

func TestSuiteFromConfig(t *testing.T) {
	suite, err := SuiteFromConfig(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSuite(), suite)

	suite, err = SuiteFromConfig([]string{"pa5/tests/test-direct.xml", " "}, []string{"disk"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pa5/tests/test-direct.xml"}, suite.Scenes)
	assert.Equal(t, [][]string{{"disk"}}, suite.Warps)
}

func TestFindBuildDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(filepath.Join(work, "nori"), 0755))

	// A folder with the renderer name does not count
	assert.Equal(t, filepath.Join(work, "build"), FindBuildDir(work, "nori"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "nori"), nil, 0755))
	assert.Equal(t, filepath.Join(work, ".."), FindBuildDir(work, "nori"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "warptest"), nil, 0755))
	assert.Equal(t, root, FindBuildDir(root, "nori"))
}

func TestExecutablePath(t *testing.T) {
	assert.Equal(t, "."+string(filepath.Separator)+"nori", executablePath(".", "nori"))
	assert.Equal(t, filepath.Join("build", "nori"), executablePath("build", "nori"))
}

func TestRunSuite(t *testing.T) {
	buildDir := fakeBuildDir(t)
	runner := NewRunner(buildDir, "scenes")
	runner.Stdout = nil
	runner.Stderr = nil

	suite := Suite{
		Scenes: []string{"pa4/tests/test-mesh.xml", "pa4/tests/fail-mesh.xml"},
		Warps:  [][]string{{"square"}, {"beckmann", "0.05"}, {"beckmann", "0.30"}},
	}
	report, err := runner.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Passed)
	assert.Equal(t, []string{
		"pa4/tests/fail-mesh.xml",
		filepath.Join(buildDir, "warptest") + " beckmann 0.30",
	}, report.Failed)
	assert.False(t, report.OK())

	report, err = runner.Run(context.Background(), Suite{Scenes: suite.Scenes[:1], Warps: suite.Warps[:2]})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 3, report.Passed)
}

func TestRunMissingExecutables(t *testing.T) {
	runner := NewRunner(t.TempDir(), "scenes")
	report, err := runner.Run(context.Background(), DefaultSuite())
	require.NoError(t, err)
	assert.Equal(t, 11, report.Total)
	assert.Equal(t, 0, report.Passed)
	assert.Len(t, report.Failed, 11)
}

func TestRunCancelled(t *testing.T) {
	runner := NewRunner(fakeBuildDir(t), "scenes")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, DefaultSuite())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Passed)
	assert.Len(t, report.Failed, 11)
}

func TestRunValidation(t *testing.T) {
	runner := NewRunner(t.TempDir(), "scenes")
	runner.Renderer = ""
	_, err := runner.Run(context.Background(), DefaultSuite())
	assert.Equal(t, ErrNoRenderer, err)

	runner.Renderer = "nori"
	runner.WarpTest = ""
	_, err = runner.Run(context.Background(), DefaultSuite())
	assert.Equal(t, ErrNoWarpTest, err)
}

func TestReportPrint(t *testing.T) {
	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))

	(&Report{Total: 3, Passed: 3}).Print(out)
	assert.Equal(t, "\nPassed 3 / 3 tests.\n\tGood job!\n", buf.String())

	buf.Reset()
	(&Report{Total: 3, Passed: 1, Failed: []string{"a.xml", "build/warptest disk"}}).Print(out)
	assert.Equal(t, "\nPassed 1 / 3 tests.\nFailed tests:\n\ta.xml\n\tbuild/warptest disk\n", buf.String())

	// Colors are applied when the profile supports them
	buf.Reset()
	out = termenv.NewOutput(&buf, termenv.WithProfile(termenv.ANSI))
	(&Report{Total: 1, Passed: 0, Failed: []string{"x"}}).Print(out)
	assert.Contains(t, buf.String(), "\x1b[91mPassed 0 / 1 tests.")
}

// Create a build folder with shell scripts standing in for the renderer and
// the warp test executables.
func fakeBuildDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake executables require a POSIX shell")
	}

	dir := t.TempDir()
	scripts := map[string]string{
		"nori": strings.Join([]string{
			"#!/bin/sh",
			`case "$1" in *fail*) exit 3;; esac`,
			"exit 0",
		}, "\n"),
		"warptest": strings.Join([]string{
			"#!/bin/sh",
			`if [ "$1" = "beckmann" ] && [ "$2" = "0.30" ]; then exit 1; fi`,
			"exit 0",
		}, "\n"),
	}
	for name, script := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script+"\n"), 0755))
	}
	return dir
}
