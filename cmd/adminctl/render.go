package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"admissions/internal/shell"
	"admissions/internal/table"
)

const minCellWidth = 8

func (t terminal) tabs() *tabwriter.Writer {
	return tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
}

// cellBudget spreads the terminal width over the columns; 0 means unlimited.
func (t terminal) cellBudget(columns int) int {
	if t.width <= 0 || columns == 0 {
		return 0
	}
	budget := t.width/columns - 2
	if budget < minCellWidth {
		budget = minCellWidth
	}
	return budget
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// renderView prints a rendered table with the full row id first, since
// edit and delete take it as an argument.
func (t terminal) renderView(view table.View) error {
	if view.Loading {
		_, err := fmt.Fprintln(t.out, "Loading...")
		return err
	}
	if view.Empty {
		msg := view.EmptyMessage
		if view.Query != "" {
			msg += fmt.Sprintf(" matching %q", view.Query)
		}
		_, err := fmt.Fprintln(t.out, msg)
		return err
	}

	budget := t.cellBudget(len(view.Columns) + 1)
	w := t.tabs()
	header := make([]string, 0, len(view.Columns)+1)
	header = append(header, "ID")
	for _, col := range view.Columns {
		label := strings.ToUpper(col.Label)
		if view.Sort.Key == col.Key {
			if view.Sort.Direction == table.Descending {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		header = append(header, label)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range view.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, row.Key)
		for _, c := range row.Cells {
			cells = append(cells, truncate(c.String(), budget))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d of %d rows", len(view.Rows), view.Total)
	_, err := fmt.Fprintln(t.out, t.paint(ansiDim, footer))
	return err
}

func (t terminal) renderSections(sections []shell.Section, active string) error {
	w := t.tabs()
	fmt.Fprintln(w, "\tID\tTITLE\tCATEGORY\tPATH")
	for _, s := range sections {
		marker := ""
		if s.ID == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, s.ID, s.Title, s.Category, s.Path)
	}
	return w.Flush()
}
