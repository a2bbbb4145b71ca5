// Package pairs reads verification pair lists: labelled image lists
// (CALFW/CPLFW style) and LFW pairs.txt files.
package pairs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/faceverify/faceverify/internal/domain"
)

// Format names a pair file layout
type Format string

const (
	// FormatAuto picks the layout from the file contents
	FormatAuto Format = ""
	// FormatLabelled is one "image label" row per image; rows are paired by label
	FormatLabelled Format = "labelled"
	// FormatLFW is the LFW pairs.txt layout with a header line
	FormatLFW Format = "lfw"
)

var (
	ErrEmptyFile     = errors.New("pair file has no data rows")
	ErrUnknownFormat = errors.New("unknown pair file format")
)

// ParseError reports a malformed row
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatLabelled, FormatLFW:
		return f, nil
	case "auto":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

type line struct {
	number int
	text   string
	fields []string
}

func readLines(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, line{number: n, text: text, fields: strings.Fields(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	return lines, nil
}

// ParseFile opens and parses a pair file
func ParseFile(path string, format Format) ([]domain.Pair, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open pairs file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Parse(f, format)
}

// Parse reads pairs in the given format, detecting it when format is FormatAuto.
// The detected format is returned.
func Parse(r io.Reader, format Format) ([]domain.Pair, Format, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, "", err
	}
	if len(lines) == 0 {
		return nil, "", ErrEmptyFile
	}

	if format == FormatAuto {
		format = detectFormat(lines)
	}

	var pairs []domain.Pair
	switch format {
	case FormatLabelled:
		pairs, err = parseLabelled(lines)
	case FormatLFW:
		pairs, err = parseLFW(lines)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, "", err
	}

	return pairs, format, nil
}

// detectFormat treats an all-numeric first row followed by 3 or 4 column rows
// as an LFW header; anything else is a labelled list.
func detectFormat(lines []line) Format {
	if len(lines) < 2 {
		return FormatLabelled
	}
	for _, f := range lines[0].fields {
		if _, err := strconv.Atoi(f); err != nil {
			return FormatLabelled
		}
	}
	if n := len(lines[1].fields); n == 3 || n == 4 {
		return FormatLFW
	}
	return FormatLabelled
}

// parseLabelled splits rows by label and pairs consecutive rows within each
// group. Odd leftovers are dropped.
func parseLabelled(lines []line) ([]domain.Pair, error) {
	var same, different []string

	for _, l := range lines {
		if len(l.fields) < 2 {
			return nil, &ParseError{Line: l.number, Text: l.text, Reason: "expected image and label"}
		}
		label, err := strconv.Atoi(l.fields[1])
		if err != nil {
			return nil, &ParseError{Line: l.number, Text: l.text, Reason: "label is not an integer"}
		}

		if label == domain.LabelSame {
			same = append(same, l.fields[0])
		} else {
			different = append(different, l.fields[0])
		}
	}

	pairs := make([]domain.Pair, 0, len(same)/2+len(different)/2)
	pairs = appendConsecutive(pairs, same, domain.LabelSame)
	pairs = appendConsecutive(pairs, different, domain.LabelDifferent)

	if len(pairs) == 0 {
		return nil, ErrEmptyFile
	}
	return pairs, nil
}

func appendConsecutive(pairs []domain.Pair, images []string, label int) []domain.Pair {
	for i := 0; i+1 < len(images); i += 2 {
		pairs = append(pairs, domain.Pair{Image1: images[i], Image2: images[i+1], Label: label})
	}
	return pairs
}

// parseLFW skips the header row and reads "name idx1 idx2" (same person) and
// "name1 idx1 name2 idx2" (different people) rows.
func parseLFW(lines []line) ([]domain.Pair, error) {
	pairs := make([]domain.Pair, 0, len(lines)-1)

	for _, l := range lines[1:] {
		switch len(l.fields) {
		case 3:
			idx1, err1 := strconv.Atoi(l.fields[1])
			idx2, err2 := strconv.Atoi(l.fields[2])
			if err1 != nil || err2 != nil {
				return nil, &ParseError{Line: l.number, Text: l.text, Reason: "image index is not an integer"}
			}
			pairs = append(pairs, domain.Pair{
				Image1: LFWImagePath(l.fields[0], idx1),
				Image2: LFWImagePath(l.fields[0], idx2),
				Label:  domain.LabelSame,
			})
		case 4:
			idx1, err1 := strconv.Atoi(l.fields[1])
			idx2, err2 := strconv.Atoi(l.fields[3])
			if err1 != nil || err2 != nil {
				return nil, &ParseError{Line: l.number, Text: l.text, Reason: "image index is not an integer"}
			}
			pairs = append(pairs, domain.Pair{
				Image1: LFWImagePath(l.fields[0], idx1),
				Image2: LFWImagePath(l.fields[2], idx2),
				Label:  domain.LabelDifferent,
			})
		default:
			return nil, &ParseError{Line: l.number, Text: l.text, Reason: "expected 3 or 4 columns"}
		}
	}

	if len(pairs) == 0 {
		return nil, ErrEmptyFile
	}
	return pairs, nil
}

// LFWImagePath returns the relative path of an LFW image, e.g. Aaron_Peirsol/Aaron_Peirsol_0001.jpg
func LFWImagePath(name string, index int) string {
	return fmt.Sprintf("%s/%s_%04d.jpg", name, name, index)
}

// Limit caps pairs at maxPairs, taking up to maxPairs/2 same-person pairs followed by
// up to maxPairs/2 different-person pairs. maxPairs <= 0 returns pairs unchanged.
func Limit(pairs []domain.Pair, maxPairs int) []domain.Pair {
	if maxPairs <= 0 {
		return pairs
	}

	half := maxPairs / 2
	var same, different []domain.Pair
	for _, p := range pairs {
		if p.Label == domain.LabelSame {
			if len(same) < half {
				same = append(same, p)
			}
		} else if len(different) < half {
			different = append(different, p)
		}
	}

	return append(same, different...)
}

// Count returns the number of same-person and different-person pairs
func Count(pairs []domain.Pair) (same, different int) {
	for _, p := range pairs {
		if p.Label == domain.LabelSame {
			same++
		} else {
			different++
		}
	}
	return same, different
}
