// Package report renders tokenization statistics as terminal tables.
package report

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// Comparison holds the encodings of one text by our tokenizer and, optionally, by a baseline.
type Comparison struct {
	Name string
	Text string

	// Ours is the encoding by the word-bounded BPE tokenizer.
	Ours []int

	// Baseline is the encoding by the baseline tokenizer, nil if there is none.
	Baseline []int
}

// Chars returns the number of characters (runes) of the text.
func (c Comparison) Chars() int {
	return utf8.RuneCountInString(c.Text)
}

// CharsPerToken returns the average number of characters per token, or 0 for an empty encoding.
func CharsPerToken(chars, tokens int) float64 {
	if tokens == 0 {
		return 0
	}
	return float64(chars) / float64(tokens)
}

// Headers of the comparison table.
var Headers = []string{"text", "chars", "tokens", "chars/token", "baseline tokens", "baseline chars/token"}

// Rows returns the cells of the comparison table, one row per comparison.
func Rows(comparisons []Comparison) [][]string {
	rows := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		chars := c.Chars()
		row := []string{
			c.Name,
			strconv.Itoa(chars),
			strconv.Itoa(len(c.Ours)),
			fmt.Sprintf("%.2f", CharsPerToken(chars, len(c.Ours))),
			"-",
			"-",
		}
		if c.Baseline != nil {
			row[4] = strconv.Itoa(len(c.Baseline))
			row[5] = fmt.Sprintf("%.2f", CharsPerToken(chars, len(c.Baseline)))
		}
		rows = append(rows, row)
	}
	return rows
}

// Render returns the comparison table.
func Render(comparisons []Comparison) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		Rows(Rows(comparisons)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
	return t.String()
}

// Summary returns a key/value table, used to report on a single run.
func Summary(pairs ...[2]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		})
	for _, pair := range pairs {
		t.Row(pair[0], pair[1])
	}
	return t.String()
}
