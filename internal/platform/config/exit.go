package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Exitf prints a fatal command error to stderr and exits with status 1.
func Exitf(format string, args ...any) {
	exitf(os.Stderr, os.Exit, format, args...)
}

func exitf(w io.Writer, exit func(int), format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = io.WriteString(w, msg)
	exit(1)
}
