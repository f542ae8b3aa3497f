package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/tendant/simple-sorter/pkg/simplesorter"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	successColor = color.New(color.FgGreen)
	dimColor     = color.New(color.FgHiBlack)
	headerColor  = color.New(color.Bold)
)

func printItems(w io.Writer, format string, items []*simplesorter.Item) error {
	if format != outputTable {
		return encode(w, format, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No items."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor.Sprint("ORDER\tID\tTITLE\tCREATED"))
	for _, item := range items {
		order := dimColor.Sprint("-")
		if item.HasOrder() {
			order = fmt.Sprintf("%d", *item.SortOrder)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", order, item.ID, item.Title, item.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func printReposition(w io.Writer, format string, result *simplesorter.RepositionResult) error {
	if format != outputTable {
		return encode(w, format, result)
	}

	verb := "Moved"
	if result.IsInsert() {
		verb = "Inserted"
	}
	printSuccess(w, "%s %s at order %d", verb, result.ItemID, result.NewOrder)
	for _, shift := range result.Shifts {
		fmt.Fprintf(w, "  %s %d -> %d\n", shift.ItemID, shift.From, shift.To)
	}
	return nil
}

func printSearchResults(w io.Writer, format string, results []*simplesorter.SearchResult) error {
	if format != outputTable {
		return encode(w, format, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No matches."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor.Sprint("ID\tTITLE\tDATE"))
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Label, r.Date)
	}
	return tw.Flush()
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successColor.Sprintf("✓ "+format, args...))
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
	}
}
