package reconcile

import (
	"regexp"
	"strings"

	"docpilot/internal/domain"
)

// Project/reference code patterns, checked in order; first match wins.
var projectCodePatterns = []*regexp.Regexp{
	// Labeled forms: "Project Code: ABC-123", "Job No: J4567", "Ref: X-99".
	regexp.MustCompile(`(?i)(?:project\s*code|job\s*no\.?|ref\.?)\s*[:#]\s*([A-Z0-9][A-Z0-9/-]{2,})`),
	// Survey-prefixed codes like "NAV-S1234".
	regexp.MustCompile(`\b([A-Z]{2,5}-S\d{2,})\b`),
	// Generic two/three-letter prefix, letter, digits: "AB-C123", "XYZ-D45".
	regexp.MustCompile(`\b([A-Z]{2,3}-[A-Z]\d{2,})\b`),
}

func matchProjectCode(text string) string {
	upper := strings.ToUpper(text)
	for _, re := range projectCodePatterns {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}

// recoverProjectCode fills an empty projectCode by scanning (a) the item's
// own text fields, then (b) a window of the two source lines following the
// item's line.
func recoverProjectCode(item *domain.LineItem, src sourceIndex, fieldPrefix string) []domain.CorrectionNote {
	if item.ProjectCode != "" {
		return nil
	}

	code := matchProjectCode(item.ProductName)
	if code == "" {
		code = matchProjectCode(item.ProductCode)
	}
	if code == "" {
		lineIdx := src.findLine(item.ProductCode)
		for _, line := range src.window(lineIdx, 2) {
			if code = matchProjectCode(line); code != "" {
				break
			}
		}
	}
	if code == "" {
		return nil
	}

	item.ProjectCode = code
	return []domain.CorrectionNote{{
		FieldPath: fieldPrefix + ".project_code",
		Rule:      "ref.recover",
		After:     code,
		Message:   "project_code recovered from surrounding source text",
	}}
}
