// Package logger provides the colored console output used across the app.
package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func colorize(color, s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return s
	}
	return color + s + colorReset
}

func line(color, symbol, tag, msg string) {
	fmt.Printf("%s %s %s\n", colorize(color, symbol), colorize(colorBold, "["+tag+"]"), msg)
}

// Info prints an informational message with a tag prefix.
func Info(tag, msg string) {
	line(colorBlue, "·", tag, msg)
}

// Success prints a success message with a tag prefix.
func Success(tag, msg string) {
	line(colorGreen, "✓", tag, msg)
}

// Warn prints a warning message with a tag prefix.
func Warn(tag, msg string) {
	line(colorYellow, "!", tag, msg)
}

// Error prints an error message with a tag prefix.
func Error(tag, msg string) {
	line(colorRed, "✗", tag, msg)
}

// Section prints a section divider.
func Section(title string) {
	fmt.Printf("\n%s\n", colorize(colorCyan, "── "+title+" "+"──────────────────────────────"))
}

// Stats prints a key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s %v\n", colorize(colorGray, key+":"), value)
}

// Server prints the listening address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("\n%s %s\n\n", colorize(colorGreen, "▶ Dashboard:"), colorize(colorBold, "http://"+addr))
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(colorize(colorCyan, `
  ┌─────────────────────────────┐
  │  price-scout               `+"│"+`
  └─────────────────────────────┘`))
	fmt.Printf("  %s\n\n", colorize(colorGray, "version "+version))
}
