package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Mode selects how extraction rows are rendered.
type Mode string

const (
	ModeTSV   Mode = "tsv"
	ModeTable Mode = "table"
	ModeCSV   Mode = "csv"
	ModeJSON  Mode = "json"
)

// Modes lists the valid rendering modes, for help and error text.
func Modes() []string {
	return []string{string(ModeTSV), string(ModeTable), string(ModeCSV), string(ModeJSON)}
}

// ParseMode validates a rendering mode from config or the /format
// command.
func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(s)); mode {
	case ModeTSV, ModeTable, ModeCSV, ModeJSON:
		return mode, nil
	}
	return "", fmt.Errorf("invalid format %q (valid: %s)", s, strings.Join(Modes(), ", "))
}

// RenderSPF writes one highlighted SPF line per filter result.
func RenderSPF(w io.Writer, h *Highlighter, lines []string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, h.Line(line))
	}
}

// RenderRows writes extraction results. Headers are the value query
// texts; rows hold one stringified cell per query, missing values
// already lowered to empty strings.
func RenderRows(w io.Writer, mode Mode, headers []string, rows [][]string) error {
	switch mode {
	case ModeJSON:
		return renderJSON(w, headers, rows)
	case ModeCSV:
		return renderCSV(w, headers, rows)
	case ModeTable:
		return renderTable(w, headers, rows)
	default:
		return renderTSV(w, rows)
	}
}

// renderTSV is the default: no header, one tab-joined line per row.
func renderTSV(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, hdr := range headers {
		headerRow[i] = hdr
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		t.AppendRow(cells)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderCSV(w io.Writer, headers []string, rows [][]string) error {
	// Value query texts may themselves contain commas, so the header
	// line is escaped like any data row.
	if err := writeCSVLine(w, headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeCSVLine(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVLine(w io.Writer, cells []string) error {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = escapeCSV(cell)
	}
	_, err := fmt.Fprintln(w, strings.Join(escaped, ","))
	return err
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func renderJSON(w io.Writer, headers []string, rows [][]string) error {
	objs := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, hdr := range headers {
			if i < len(row) {
				obj[hdr] = row[i]
			} else {
				obj[hdr] = ""
			}
		}
		objs = append(objs, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objs)
}
