package format

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/faceauth/cli/internal/config"
)

// Out receives formatted data; Err receives status and diagnostic lines
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

// Formatter interface for different output formats
type Formatter interface {
	Format(w io.Writer, data interface{}) error
}

// GetFormatter returns a formatter based on the specified format
func GetFormatter(format string) (Formatter, error) {
	cfg := config.Get()
	useColors := cfg.Format.Colors

	switch format {
	case "table":
		return NewTableFormatter(useColors), nil
	case "json":
		return NewJSONFormatter(true), nil
	case "json-compact":
		return NewJSONFormatter(false), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	case "text":
		return NewTextFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Print formats and prints data using the configured output format
func Print(data interface{}) error {
	formatter, err := GetFormatter(config.GetOutputFormat())
	if err != nil {
		return err
	}
	return formatter.Format(Out, data)
}

// Structured reports whether the configured output is meant for machines
func Structured() bool {
	switch config.GetOutputFormat() {
	case "json", "json-compact", "yaml":
		return true
	}
	return false
}

func printColored(w io.Writer, attr color.Attribute, prefix, message string, args ...interface{}) {
	if config.Get().Format.Colors {
		color.New(attr).Fprintf(w, message+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+message+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(message string, args ...interface{}) {
	printColored(Err, color.FgGreen, "", message, args...)
}

// PrintError prints an error message
func PrintError(message string, args ...interface{}) {
	printColored(Err, color.FgRed, "Error: ", message, args...)
}

// PrintWarning prints a warning message
func PrintWarning(message string, args ...interface{}) {
	printColored(Err, color.FgYellow, "Warning: ", message, args...)
}

// PrintInfo prints an info message
func PrintInfo(message string, args ...interface{}) {
	printColored(Err, color.FgBlue, "Info: ", message, args...)
}

// PrintDebug prints a debug message if debug mode is enabled
func PrintDebug(message string, args ...interface{}) {
	if config.IsDebug() {
		printColored(Err, color.FgCyan, "", "[DEBUG] "+message, args...)
	}
}
