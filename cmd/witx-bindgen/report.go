package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/layout"
	"github.com/wippyai/witx-bindgen/verify"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = cellStyle.Foreground(lipgloss.Color("#90EE90"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("#FF6B6B"))
	skipStyle   = cellStyle.Foreground(lipgloss.Color("#666666"))
)

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

func newTable(headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers(headers...)
	if w := terminalWidth(); w > 0 {
		t = t.Width(w)
	}
	return t
}

// layoutRows lists name, kind, size, alignment, member offsets and tag width
// of every named type. Types without a layout show the reason instead.
func layoutRows(doc *idl.Document) [][]string {
	calc := layout.NewCalculator()
	rows := make([][]string, 0, len(doc.Types))
	for _, nt := range doc.Types {
		kind := nt.Type.String()
		if nt.Type.IsNamed() {
			kind = "alias of " + nt.Type.Named.Name
		} else if t := nt.Resolve(); t != nil {
			kind = t.Kind().String()
		}
		info, err := calc.Calculate(idl.Ref(nt))
		if err != nil {
			rows = append(rows, []string{nt.Name, kind, "-", "-", err.Error(), "-"})
			continue
		}
		rows = append(rows, []string{
			nt.Name,
			kind,
			strconv.FormatUint(uint64(info.Size), 10),
			strconv.FormatUint(uint64(info.Align), 10),
			formatOffsets(info),
			formatTag(info),
		})
	}
	return rows
}

func formatOffsets(info layout.Info) string {
	if len(info.Offsets) == 0 {
		if info.PayloadOffset != 0 {
			return "payload@" + strconv.FormatUint(uint64(info.PayloadOffset), 10)
		}
		return "-"
	}
	parts := make([]string, len(info.Offsets))
	for i, off := range info.Offsets {
		parts[i] = strconv.FormatUint(uint64(off), 10)
	}
	return strings.Join(parts, ",")
}

func formatTag(info layout.Info) string {
	if info.Tag == 0 {
		return "-"
	}
	return info.Tag.String()
}

func printLayout(w io.Writer, doc *idl.Document) error {
	t := newTable("type", "kind", "size", "align", "offsets", "tag").
		Rows(layoutRows(doc)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// verifyRows lists one row per round-tripped type with its status.
func verifyRows(results []verify.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = r.Err.Error()
		case r.Skipped != "":
			status = "skipped: " + r.Skipped
		}
		rows = append(rows, []string{
			r.Type,
			strconv.FormatUint(uint64(r.Info.Size), 10),
			strconv.Itoa(r.Samples),
			status,
		})
	}
	return rows
}

func printVerify(w io.Writer, results []verify.Result) error {
	t := newTable("type", "size", "samples", "status").
		Rows(verifyRows(results)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != 3 || row < 0 || row >= len(results) {
				return cellStyle
			}
			switch r := results[row]; {
			case r.Err != nil:
				return failStyle
			case r.Skipped != "":
				return skipStyle
			}
			return okStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
