package harness

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Suite lists the renderer scenes and warp tests to run.
type Suite struct {
	// Scene files, relative to the scenes directory.
	Scenes []string

	// Warp test invocations: a distribution name optionally followed by
	// numeric parameters.
	Warps [][]string
}

// Get the default test suite.
func DefaultSuite() Suite {
	return Suite{
		Scenes: []string{
			"pa4/tests/test-mesh.xml",
			"pa4/tests/test-mesh-furnace.xml",
		},
		Warps: [][]string{
			{"square"},
			{"tent"},
			{"disk"},
			{"uniform_sphere"},
			{"uniform_hemisphere"},
			{"cosine_hemisphere"},
			{"beckmann", "0.05"},
			{"beckmann", "0.10"},
			{"beckmann", "0.30"},
		},
	}
}

// Get the number of tests in the suite.
func (s Suite) Len() int {
	return len(s.Scenes) + len(s.Warps)
}

// Parse warp test invocations written as shell-style strings such as
// "beckmann 0.05".
func ParseWarps(lines []string) ([][]string, error) {
	warps := make([][]string, 0, len(lines))
	for _, line := range lines {
		args, err := shellwords.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("harness: could not parse warp test %q: %w", line, err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("harness: warp test %q does not specify a distribution", line)
		}
		warps = append(warps, args)
	}
	return warps, nil
}

// Create a suite from config values. Empty lists select the defaults.
func SuiteFromConfig(scenes, warps []string) (Suite, error) {
	suite := DefaultSuite()
	if len(scenes) != 0 {
		suite.Scenes = make([]string, 0, len(scenes))
		for _, scene := range scenes {
			if scene = strings.TrimSpace(scene); scene != "" {
				suite.Scenes = append(suite.Scenes, scene)
			}
		}
	}
	if len(warps) != 0 {
		parsed, err := ParseWarps(warps)
		if err != nil {
			return Suite{}, err
		}
		suite.Warps = parsed
	}
	return suite, nil
}
