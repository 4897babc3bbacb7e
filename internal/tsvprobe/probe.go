// Package tsvprobe samples a delimited text file and reports per-column
// shape: inferred value kind, fill rate, and a few example values. It is a
// quick way to eyeball a new TSV dump before wiring it into the loader.
package tsvprobe

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"moviecorpus/internal/dates"
	"moviecorpus/internal/parser/tsv"
)

// Options control sampling.
type Options struct {
	// MaxRows caps how many data rows are sampled. Zero means 1000.
	MaxRows int

	// HasHeader treats the first line as column labels. Without it columns
	// are labeled col_1..col_N.
	HasHeader bool

	// MaxSamples caps the example values kept per column. Zero means 3.
	MaxSamples int
}

// Column is the report for one column.
type Column struct {
	Index    int
	Label    string
	Kind     string
	FillRate float64
	Samples  []string
}

// Value kinds, from most to least specific. A column's kind is the most
// specific kind every non-empty sampled value satisfies; mixed columns
// degrade to text.
const (
	KindEmpty   = "empty"
	KindInteger = "integer"
	KindFloat   = "float"
	KindDate    = "date"
	KindText    = "text"
)

// Probe samples r and reports one Column per column of the first line.
// Rows with a different width are dropped, mirroring the loader.
func Probe(r io.Reader, opt Options) ([]Column, error) {
	if opt.MaxRows <= 0 {
		opt.MaxRows = 1000
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = 3
	}

	br := bufio.NewReader(r)
	first, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("tsvprobe: read first line: %w", err)
	}
	width := len(strings.Split(first, "\t"))

	labels := make([]string, width)
	var prefix io.Reader = strings.NewReader("")
	if opt.HasHeader {
		for i, h := range strings.Split(first, "\t") {
			labels[i] = FoldLabel(h)
		}
	} else {
		for i := range labels {
			labels[i] = "col_" + strconv.Itoa(i+1)
		}
		// No header: the first line is data and goes back into the sample.
		prefix = strings.NewReader(first + "\n")
	}

	p := tsv.NewParser(tsv.Options{ExpectedFields: width, UTF8: tsv.UTF8Replace})
	rows, _, err := p.Parse(io.MultiReader(prefix, br))
	if err != nil {
		return nil, fmt.Errorf("tsvprobe: %w", err)
	}
	if len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}

	out := make([]Column, width)
	for i := 0; i < width; i++ {
		col := Column{Index: i + 1, Label: labels[i], Kind: KindEmpty}
		filled := 0
		for _, row := range rows {
			v := row[i]
			if v == "" {
				continue
			}
			filled++
			col.Kind = mergeKind(col.Kind, classify(v))
			if len(col.Samples) < opt.MaxSamples && !contains(col.Samples, v) {
				col.Samples = append(col.Samples, v)
			}
		}
		if len(rows) > 0 {
			col.FillRate = float64(filled) / float64(len(rows))
		}
		out[i] = col
	}
	return out, nil
}

// Render formats the report as aligned text, one line per column.
func Render(cols []Column) string {
	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%.2f\t%s\n",
			c.Index, c.Label, c.Kind, c.FillRate, strings.Join(c.Samples, " | "))
	}
	return b.String()
}

var labelCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// foldTransformer strips diacritics so labels like "Année" fold to "annee".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldLabel turns a header cell into a lowercase ASCII identifier.
func FoldLabel(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = labelCleaner.ReplaceAllString(folded, "_")
	folded = strings.Trim(folded, "_")
	if folded == "" {
		return "col"
	}
	return folded
}

func classify(v string) string {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return KindInteger
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return KindFloat
	}
	if dates.Parse(v).Known() {
		return KindDate
	}
	return KindText
}

// mergeKind combines the kind seen so far with a new value's kind. Integer
// widens to float; anything else that disagrees becomes text.
func mergeKind(have, next string) string {
	switch {
	case have == KindEmpty:
		return next
	case have == next:
		return have
	case (have == KindInteger && next == KindFloat) || (have == KindFloat && next == KindInteger):
		return KindFloat
	default:
		return KindText
	}
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// readLine reads one line without the trailing newline or carriage return.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return string(bytes.TrimRight([]byte(line), "\r\n")), nil
}
