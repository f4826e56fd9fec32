package harness

import (
	"fmt"

	"github.com/muesli/termenv"
)

// Report summarizes a harness run.
type Report struct {
	Total  int
	Passed int

	// Failed scene files and warp test command lines.
	Failed []string
}

// Returns true if every test passed.
func (r *Report) OK() bool {
	return r.Passed == r.Total && len(r.Failed) == 0
}

// Print the report summary. The pass count is printed in bright green if all
// tests passed or bright red otherwise, followed by the list of failures.
func (r *Report) Print(out *termenv.Output) {
	summary := fmt.Sprintf("Passed %d / %d tests.", r.Passed, r.Total)

	fmt.Fprintln(out)
	if !r.OK() {
		fmt.Fprintln(out, out.String(summary).Foreground(termenv.ANSIBrightRed))
		fmt.Fprintln(out, "Failed tests:")
		for _, name := range r.Failed {
			fmt.Fprintf(out, "\t%s\n", name)
		}
		return
	}

	fmt.Fprintln(out, out.String(summary).Foreground(termenv.ANSIBrightGreen))
	fmt.Fprintln(out, "\tGood job!")
}
