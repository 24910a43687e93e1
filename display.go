package caravel

import (
	"fmt"
	"strings"
)

// DisplayConfig controls how frames and series render as text.
type DisplayConfig struct {
	// MaxRows caps the rows shown; larger frames render head and tail
	// rows around an ellipsis. Default 10.
	MaxRows int

	// MaxColWidth truncates cell content beyond this width. Default 25.
	MaxColWidth int

	// MinColWidth pads columns to at least this width. Default 8.
	MinColWidth int

	// FloatPrecision is the number of decimal places for floats. Default 4.
	FloatPrecision int

	// ShowDTypes renders each column's dtype under its name. Default true.
	ShowDTypes bool

	// ShowShape renders the "(rows, cols)" header line. Default true.
	ShowShape bool

	// TableStyle selects the border set: "rounded" or "ascii".
	TableStyle string
}

type tableChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topT, bottomT, leftT, rightT, cross        string
}

var tableStyles = map[string]tableChars{
	"rounded": {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topT: "┬", bottomT: "┴", leftT: "├", rightT: "┤", cross: "┼",
	},
	"ascii": {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topT: "+", bottomT: "+", leftT: "+", rightT: "+", cross: "+",
	},
}

// DefaultDisplayConfig returns the rendering defaults.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		MaxRows:        10,
		MaxColWidth:    25,
		MinColWidth:    8,
		FloatPrecision: 4,
		ShowDTypes:     true,
		ShowShape:      true,
		TableStyle:     "rounded",
	}
}

func formatDisplayValue(val any, cfg DisplayConfig) string {
	var s string
	switch v := val.(type) {
	case nil:
		s = "null"
	case float64:
		s = fmt.Sprintf(fmt.Sprintf("%%.%df", cfg.FloatPrecision), v)
	case string:
		s = v
	case bool:
		if v {
			s = "true"
		} else {
			s = "false"
		}
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > cfg.MaxColWidth {
		s = s[:cfg.MaxColWidth-3] + "..."
	}
	return s
}

// displayRows picks the row positions to render, inserting -1 as the
// ellipsis marker when the frame is taller than the cap.
func displayRows(height, maxRows int) []int {
	if height <= maxRows {
		rows := make([]int, height)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	head := maxRows / 2
	tail := maxRows - head
	rows := make([]int, 0, maxRows+1)
	for i := 0; i < head; i++ {
		rows = append(rows, i)
	}
	rows = append(rows, -1)
	for i := height - tail; i < height; i++ {
		rows = append(rows, i)
	}
	return rows
}

// String renders the frame as a bordered table with the default
// configuration.
func (df *DataFrame) String() string {
	return df.StringWithConfig(DefaultDisplayConfig())
}

// StringWithConfig renders the frame as a bordered table.
func (df *DataFrame) StringWithConfig(cfg DisplayConfig) string {
	if df.Height() == 0 || df.Width() == 0 {
		return "DataFrame(empty)"
	}
	chars, ok := tableStyles[cfg.TableStyle]
	if !ok {
		chars = tableStyles["rounded"]
	}

	var sb strings.Builder
	if cfg.ShowShape {
		fmt.Fprintf(&sb, "shape: (%d, %d)\n", df.Height(), df.Width())
	}

	rows := displayRows(df.Height(), cfg.MaxRows)

	// First column is the row index, then data columns in frame order.
	headers := append([]string{""}, df.colOrder...)
	widths := make([]int, len(headers))
	for ci, name := range headers {
		widths[ci] = len(name)
		if ci > 0 && cfg.ShowDTypes {
			if w := len(df.columns[name].dtype.String()); w > widths[ci] {
				widths[ci] = w
			}
		}
		for _, r := range rows {
			if r < 0 {
				continue
			}
			var cell string
			if ci == 0 {
				cell = df.index[r]
			} else {
				cell = formatDisplayValue(df.columns[name].At(r), cfg)
			}
			if len(cell) > widths[ci] {
				widths[ci] = len(cell)
			}
		}
		if widths[ci] < cfg.MinColWidth {
			widths[ci] = cfg.MinColWidth
		}
		if widths[ci] > cfg.MaxColWidth {
			widths[ci] = cfg.MaxColWidth
		}
	}

	border := func(left, mid, right string) {
		sb.WriteString(left)
		for i, w := range widths {
			if i > 0 {
				sb.WriteString(mid)
			}
			sb.WriteString(strings.Repeat(chars.horizontal, w+2))
		}
		sb.WriteString(right)
		sb.WriteString("\n")
	}

	writeRow := func(cells []string, rightAlign bool) {
		sb.WriteString(chars.vertical)
		for i, cell := range cells {
			if len(cell) > widths[i] {
				cell = cell[:widths[i]-3] + "..."
			}
			if rightAlign {
				fmt.Fprintf(&sb, " %*s ", widths[i], cell)
			} else {
				fmt.Fprintf(&sb, " %-*s ", widths[i], cell)
			}
			sb.WriteString(chars.vertical)
		}
		sb.WriteString("\n")
	}

	border(chars.topLeft, chars.topT, chars.topRight)
	writeRow(headers, false)
	if cfg.ShowDTypes {
		dtypes := make([]string, len(headers))
		for i, name := range headers {
			if i > 0 {
				dtypes[i] = df.columns[name].dtype.String()
			}
		}
		writeRow(dtypes, false)
	}
	border(chars.leftT, chars.cross, chars.rightT)

	for _, r := range rows {
		cells := make([]string, len(headers))
		if r < 0 {
			for i := range cells {
				cells[i] = "…"
			}
		} else {
			cells[0] = df.index[r]
			for i, name := range df.colOrder {
				cells[i+1] = formatDisplayValue(df.columns[name].At(r), cfg)
			}
		}
		writeRow(cells, true)
	}
	border(chars.bottomLeft, chars.bottomT, chars.bottomRight)

	return strings.TrimSuffix(sb.String(), "\n")
}

// String renders the series as a two-column table of index labels and
// values.
func (s *Series) String() string {
	return s.StringWithConfig(DefaultDisplayConfig())
}

// StringWithConfig renders the series with the given configuration.
func (s *Series) StringWithConfig(cfg DisplayConfig) string {
	if s.Len() == 0 {
		return fmt.Sprintf("Series: '%s' (%s)\nlength: 0\n[]", s.name, s.dtype)
	}
	chars, ok := tableStyles[cfg.TableStyle]
	if !ok {
		chars = tableStyles["rounded"]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Series: '%s' (%s)\n", s.name, s.dtype)
	fmt.Fprintf(&sb, "length: %d\n", s.Len())

	rows := displayRows(s.Len(), cfg.MaxRows)

	indexWidth := 3
	valueWidth := cfg.MinColWidth
	for _, r := range rows {
		if r < 0 {
			continue
		}
		if len(s.index[r]) > indexWidth {
			indexWidth = len(s.index[r])
		}
		if w := len(formatDisplayValue(s.At(r), cfg)); w > valueWidth {
			valueWidth = w
		}
	}
	if valueWidth > cfg.MaxColWidth {
		valueWidth = cfg.MaxColWidth
	}

	hline := func(left, mid, right string) {
		sb.WriteString(left)
		sb.WriteString(strings.Repeat(chars.horizontal, indexWidth+2))
		sb.WriteString(mid)
		sb.WriteString(strings.Repeat(chars.horizontal, valueWidth+2))
		sb.WriteString(right)
		sb.WriteString("\n")
	}

	hline(chars.topLeft, chars.topT, chars.topRight)
	for _, r := range rows {
		label, cell := "…", "…"
		if r >= 0 {
			label = s.index[r]
			cell = formatDisplayValue(s.At(r), cfg)
			if len(cell) > valueWidth {
				cell = cell[:valueWidth-3] + "..."
			}
		}
		fmt.Fprintf(&sb, "%s %*s %s %*s %s\n", chars.vertical, indexWidth, label, chars.vertical, valueWidth, cell, chars.vertical)
	}
	hline(chars.bottomLeft, chars.bottomT, chars.bottomRight)

	return strings.TrimSuffix(sb.String(), "\n")
}
