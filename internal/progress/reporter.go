package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter shows interview progress as the conversation advances.
type Reporter interface {
	Update(percent float64, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws a 0-100 bar on stderr.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Update(percent float64, message string) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Interview"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}
	r.bar.Describe(message)
	_ = r.bar.Set(int(percent))
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

// CIReporter prints one line per update.
type CIReporter struct{}

func (r *CIReporter) Update(percent float64, message string) {
	fmt.Fprintf(os.Stderr, "[%6.2f%%] %s\n", percent, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Interview complete")
}
