package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table formats columnar output using tabwriter.
type Table struct {
	w             *tabwriter.Writer
	headers       []string
	maxWidth      map[int]int // column index -> max width (0 = unlimited)
	headerWritten bool
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings.
func (t *Table) AddRow(values ...string) {
	if !t.headerWritten {
		t.headerWritten = true
		t.writeHeaderAndSeparator()
	}

	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, values[i])
		}
	}

	//nolint:errcheck // tabwriter output to stdout
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

// Render flushes the underlying tabwriter. Must be called after all AddRow calls.
func (t *Table) Render() error {
	return t.w.Flush()
}

func (t *Table) writeHeaderAndSeparator() {
	//nolint:errcheck // tabwriter output to stdout
	fmt.Fprintln(t.w, strings.Join(t.headers, "\t"))

	dashes := make([]string, len(t.headers))
	for i, h := range t.headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	//nolint:errcheck // tabwriter output to stdout
	fmt.Fprintln(t.w, strings.Join(dashes, "\t"))
}

func (t *Table) truncate(col int, s string) string {
	max, ok := t.maxWidth[col]
	if !ok || max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// WriteTable renders the report's cases as a console table followed by a
// one-line summary.
func WriteTable(w io.Writer, r *Report) error {
	table := NewTable(w, "CASE", "VERDICT", "CONFIDENCE", "DURATION", "EXIT")
	table.SetMaxWidth(0, 40)
	for _, v := range r.Cases {
		table.AddRow(
			v.Case,
			v.Verdict,
			fmt.Sprintf("%.2f", v.Confidence),
			v.Evidence.Duration.String(),
			fmt.Sprintf("%d", v.Evidence.ExitCode),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nScore: %.1f/100 (%s)  Health: %s\n", r.Score, r.Grade, r.Health)
	return err
}
