package format

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// TextFormatter handles simple text output formatting
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format formats data as simple text
func (f *TextFormatter) Format(w io.Writer, data interface{}) error {
	if data == nil {
		fmt.Fprintln(w, "No data")
		return nil
	}

	if s, ok := data.(string); ok {
		fmt.Fprintln(w, s)
		return nil
	}

	if props, ok := properties(data); ok {
		for _, p := range props {
			f.writeProperty(w, p)
		}
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			fmt.Fprintln(w, "No data")
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, plainValue(v.Index(i).Interface()))
		}
		return nil
	}

	fmt.Fprintf(w, "%v\n", data)
	return nil
}

func (f *TextFormatter) writeProperty(w io.Writer, p property) {
	if list, ok := p.Value.([]string); ok {
		fmt.Fprintf(w, "%s:\n", formatHeader(p.Key))
		for _, item := range list {
			fmt.Fprintf(w, "  %s\n", item)
		}
		return
	}

	value := plainValue(p.Value)
	if value == "" {
		value = "N/A"
	}
	fmt.Fprintf(w, "%s: %s\n", formatHeader(p.Key), strings.TrimSpace(value))
}
