package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// missingTokens are cell values treated as absent
var missingTokens = map[string]struct{}{
	"":        {},
	"NA":      {},
	"N/A":     {},
	"n/a":     {},
	"NaN":     {},
	"nan":     {},
	"-NaN":    {},
	"-nan":    {},
	"null":    {},
	"NULL":    {},
	"None":    {},
	"#N/A":    {},
	"<NA>":    {},
	"#NA":     {},
	"N/A N/A": {},
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"02-Jan-06",
	"2-Jan-2006",
	"Jan 2, 2006",
	"Jan-06",
}

func isMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v, err == nil
}

// parseFloat accepts plain decimal and scientific notation only. Infinities,
// hex floats and digit separators are rejected so every numeric cell is finite.
func parseFloat(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" || strings.ContainsAny(raw, "xX_iInN") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// normalizeHeader names blank header cells "Unnamed: <i>" and suffixes
// repeated names with ".1", ".2" in first-seen order.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[name]; dup {
			base := name
			n := seen[base]
			for {
				n++
				candidate := fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[candidate]; !taken {
					name = candidate
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

// inferColumn types a column from its raw cell strings. formatted, when not
// nil, holds display values used to recognise spreadsheet dates and booleans
// stored as numbers.
func inferColumn(name string, raw, formatted []string) Column {
	present := 0
	missing := 0
	for _, s := range raw {
		if isMissing(s) {
			missing++
		} else {
			present++
		}
	}

	col := Column{Name: name, Cells: make([]Cell, len(raw))}
	if present == 0 {
		col.Kind = KindFloat
		return col
	}

	if formatted != nil && isFormatted(raw, formatted, func(s string) bool { _, ok := parseTimeMaybe(s); return ok }) {
		col.Kind = KindDatetime
		for i, s := range formatted {
			if isMissing(raw[i]) {
				continue
			}
			t, _ := parseTimeMaybe(s)
			col.Cells[i] = Cell{Kind: CellTime, Time: t}
		}
		return col
	}

	if formatted != nil && missing == 0 && isFormatted(raw, formatted, func(s string) bool { _, ok := parseBool(s); return ok }) {
		col.Kind = KindBool
		fill(col.Cells, formatted, func(s string) Cell {
			v, _ := parseBool(s)
			return Cell{Kind: CellBool, Bool: v}
		})
		return col
	}

	switch {
	case allMatch(raw, func(s string) bool { _, ok := parseInt(s); return ok }):
		if missing > 0 {
			col.Kind = KindFloat
			fill(col.Cells, raw, func(s string) Cell {
				v, _ := parseInt(s)
				return Cell{Kind: CellFloat, Float: float64(v)}
			})
		} else {
			col.Kind = KindInt
			fill(col.Cells, raw, func(s string) Cell {
				v, _ := parseInt(s)
				return Cell{Kind: CellInt, Int: v}
			})
		}
	case allMatch(raw, func(s string) bool { _, ok := parseFloat(s); return ok }):
		col.Kind = KindFloat
		fill(col.Cells, raw, func(s string) Cell {
			v, _ := parseFloat(s)
			return Cell{Kind: CellFloat, Float: v}
		})
	case missing == 0 && allMatch(raw, func(s string) bool { _, ok := parseBool(s); return ok }):
		col.Kind = KindBool
		fill(col.Cells, raw, func(s string) Cell {
			v, _ := parseBool(s)
			return Cell{Kind: CellBool, Bool: v}
		})
	case allMatch(raw, func(s string) bool { _, ok := parseTimeMaybe(s); return ok }):
		col.Kind = KindDatetime
		fill(col.Cells, raw, func(s string) Cell {
			t, _ := parseTimeMaybe(s)
			return Cell{Kind: CellTime, Time: t}
		})
	default:
		col.Kind = KindObject
		fill(col.Cells, raw, func(s string) Cell {
			return Cell{Kind: CellText, Text: s}
		})
	}
	return col
}

// isFormatted reports whether every present cell has a display value that
// satisfies ok, with at least one display value differing from the stored one.
func isFormatted(raw, formatted []string, ok func(string) bool) bool {
	changed := false
	for i, s := range raw {
		if isMissing(s) {
			continue
		}
		if i >= len(formatted) || !ok(formatted[i]) {
			return false
		}
		if formatted[i] != s {
			changed = true
		}
	}
	return changed
}

func allMatch(values []string, ok func(string) bool) bool {
	for _, s := range values {
		if isMissing(s) {
			continue
		}
		if !ok(s) {
			return false
		}
	}
	return true
}

func fill(cells []Cell, raw []string, conv func(string) Cell) {
	for i, s := range raw {
		if isMissing(s) {
			continue
		}
		cells[i] = conv(s)
	}
}

// buildTable types every column of a header plus rows grid. Rows are padded
// with missing cells up to the header width.
func buildTable(header []string, rows [][]string, formatted [][]string) *Table {
	names := normalizeHeader(header)
	columns := make([]Column, len(names))
	for c, name := range names {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				raw[r] = row[c]
			}
		}
		var disp []string
		if formatted != nil {
			disp = make([]string, len(rows))
			for r := range rows {
				if r < len(formatted) && c < len(formatted[r]) {
					disp[r] = formatted[r][c]
				}
			}
		}
		columns[c] = inferColumn(name, raw, disp)
	}
	return NewTable(columns)
}
