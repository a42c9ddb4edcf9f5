package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var (
	Engine  *log.Logger
	Scanner *log.Logger
	Enabled bool
)

func init() {
	// Only enable logging if NANOVIS_DEBUG environment variable is set
	if os.Getenv("NANOVIS_DEBUG") == "" {
		Engine = log.NewWithOptions(io.Discard, log.Options{})
		Scanner = log.NewWithOptions(io.Discard, log.Options{})
		Enabled = false
		return
	}

	Enabled = true

	// Open debug.log once for all loggers
	var out io.Writer = os.Stderr
	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		out = debugFile
	}

	Engine = New(out, log.DebugLevel).WithPrefix("engine")
	Scanner = New(out, log.DebugLevel).WithPrefix("scanner")
}

// New returns a timestamped logger writing to w at level
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
