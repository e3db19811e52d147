package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

// sourceIndex is a line-indexed view of the raw document text used by the
// per-item repair rules.
type sourceIndex struct {
	lines []string
}

func indexSource(text string) sourceIndex {
	if text == "" {
		return sourceIndex{}
	}
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return sourceIndex{lines: lines}
}

// findLine returns the index of the first line containing needle, or -1.
func (s sourceIndex) findLine(needle string) int {
	if needle == "" {
		return -1
	}
	for i, line := range s.lines {
		if strings.Contains(line, needle) {
			return i
		}
	}
	return -1
}

// window returns up to n lines following idx (exclusive), skipping none.
func (s sourceIndex) window(idx, n int) []string {
	if idx < 0 || idx+1 >= len(s.lines) {
		return nil
	}
	end := idx + 1 + n
	if end > len(s.lines) {
		end = len(s.lines)
	}
	return s.lines[idx+1 : end]
}

// quantityPriceRe captures "<qty> <UOM> <price>" runs on an item line,
// e.g. "1.00 PCS 20,500.00".
var quantityPriceRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s+([A-Z]{2,5})\s+(\d[\d,]*(?:\.\d+)?)`)

// parseQuantityPrice extracts the quantity (the number before a UOM token)
// and the unit price (the number after it) from a source item line.
func parseQuantityPrice(line string) (qty, price float64, ok bool) {
	for _, m := range quantityPriceRe.FindAllStringSubmatch(strings.ToUpper(line), -1) {
		if !isUOMToken(m[2]) {
			continue
		}
		q, err1 := parseNumber(m[1])
		p, err2 := parseNumber(m[3])
		if err1 != nil || err2 != nil {
			continue
		}
		return q, p, true
	}
	return 0, 0, false
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// isNumeric reports whether the line is purely a number run (amounts,
// quantities), used to skip non-name lines.
func isNumeric(line string) bool {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(line, ",", ""), " ", "")
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}
