package format

import (
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter handles table output formatting
type TableFormatter struct {
	useColors bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(useColors bool) *TableFormatter {
	return &TableFormatter{
		useColors: useColors,
	}
}

// Format formats data as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	if data == nil {
		fmt.Fprintln(w, "No data to display")
		return nil
	}

	if props, ok := properties(data); ok {
		return f.formatProperties(w, props)
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return f.formatList(w, v)
	}

	fmt.Fprintf(w, "%v\n", data)
	return nil
}

// formatProperties renders key/value pairs as a vertical table
func (f *TableFormatter) formatProperties(w io.Writer, props []property) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Property", "Value"})
	f.configureTable(table)

	for _, p := range props {
		table.Append([]string{formatHeader(p.Key), f.formatValue(p.Value)})
	}

	table.Render()
	return nil
}

// formatList renders a slice as a single column
func (f *TableFormatter) formatList(w io.Writer, v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Fprintln(w, "No data to display")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Value"})
	f.configureTable(table)

	for i := 0; i < v.Len(); i++ {
		table.Append([]string{strconv.Itoa(i + 1), f.formatValue(v.Index(i).Interface())})
	}

	table.Render()
	return nil
}

// configureTable sets up table appearance
func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	if f.useColors {
		table.SetHeaderColor(
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor},
			tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor},
		)
	}
}

// formatValue formats a value for display
func (f *TableFormatter) formatValue(value interface{}) string {
	if b, ok := value.(bool); ok {
		if f.useColors {
			if b {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(b)
	}
	return plainValue(value)
}
