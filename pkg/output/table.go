package output

import (
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	ansiReset         = "\033[0m"
	ansiDimUnder      = "\033[2;4m"
	colSeparator      = "    "
	ellipsisWidth     = 3
	defaultTableWidth = 120
)

// ansiPattern strips ANSI/OSC escape sequences
var ansiPattern = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[ -/]*[@-~]|\][^\a]*(?:\a|\x1b\\)|[P_\]^][^\x1b]*\x1b\\)`)

// Table renders rows under uppercased, underlined headers, sized to fit the
// terminal. Cell values may carry ANSI styling; widths are computed on the
// visible characters only.
func Table(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	useColor := ColorEnabled()
	maxWidth := detectedTableWidth()

	upperHeaders := make([]string, len(headers))
	for i, header := range headers {
		upperHeaders[i] = strings.ToUpper(header)
	}

	colWidths := make([]int, len(headers))
	for i, header := range upperHeaders {
		colWidths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if width := displayWidth(row[i]); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	colWidths = clampColumnWidths(colWidths, len(colSeparator), maxWidth)

	var builder strings.Builder

	for i, upperHeader := range upperHeaders {
		if useColor {
			builder.WriteString(ansiDimUnder)
		}
		writePadded(&builder, truncateToWidth(upperHeader, colWidths[i]), colWidths[i])
		if useColor {
			builder.WriteString(ansiReset)
		}
		if i < len(headers)-1 && colWidths[i] > 0 {
			builder.WriteString(colSeparator)
		}
	}
	builder.WriteString("\n")

	for _, row := range rows {
		for i := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}

			writePadded(&builder, truncateToWidth(value, colWidths[i]), colWidths[i])

			if i < len(headers)-1 && colWidths[i] > 0 {
				builder.WriteString(colSeparator)
			}
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func displayWidth(s string) int {
	stripped := ansiPattern.ReplaceAllString(s, "")
	return runewidth.StringWidth(stripped)
}

func writePadded(builder *strings.Builder, s string, width int) {
	visible := displayWidth(s)
	builder.WriteString(s)
	for i := visible; i < width; i++ {
		builder.WriteByte(' ')
	}
}

func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	if displayWidth(s) <= width {
		return s
	}

	if width <= ellipsisWidth {
		return trimToWidth(s, width)
	}

	trimmed := trimToWidth(s, width-ellipsisWidth)
	return trimmed + "..."
}

// trimToWidth cuts a string to the given visible width, passing ANSI escape
// sequences and zero-width runes through uncounted.
func trimToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	stripped := ansiPattern.ReplaceAllString(s, "")
	if runewidth.StringWidth(stripped) <= width {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	currentWidth := 0
	i := 0

	for i < len(s) {
		if s[i] == '\x1b' {
			if loc := ansiPattern.FindStringIndex(s[i:]); loc != nil && loc[0] == 0 {
				b.WriteString(s[i : i+loc[1]])
				i += loc[1]
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError {
			break
		}

		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			b.WriteString(s[i : i+size])
			i += size
			continue
		}

		if currentWidth+rw > width {
			break
		}

		b.WriteString(s[i : i+size])
		currentWidth += rw
		i += size
	}

	return b.String()
}

// clampColumnWidths shrinks the widest columns first until the table fits the
// given width. Separator space comes off the top; if separators alone exceed
// the width every column collapses to zero.
func clampColumnWidths(colWidths []int, separatorWidth, maxWidth int) []int {
	if maxWidth <= 0 || len(colWidths) == 0 {
		return colWidths
	}

	sepTotal := (len(colWidths) - 1) * separatorWidth
	if sepTotal >= maxWidth {
		return make([]int, len(colWidths))
	}

	available := maxWidth - sepTotal
	clamped := slices.Clone(colWidths)
	total := 0
	for _, width := range clamped {
		total += width
	}

	for total > available {
		widest := 0
		for i, width := range clamped {
			if width > clamped[widest] {
				widest = i
			}
		}
		if clamped[widest] == 0 {
			break
		}
		clamped[widest]--
		total--
	}

	return clamped
}

func detectedTableWidth() int {
	if override := os.Getenv("BBINFO_TABLE_MAX_WIDTH"); override != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(override)); err == nil && parsed > 0 {
			return parsed
		}
	}

	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return defaultTableWidth
	}

	width, _, err := term.GetSize(int(fd))
	if err != nil || width <= 0 {
		return defaultTableWidth
	}

	return width
}
