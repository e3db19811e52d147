package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"docpilot/internal/domain"
)

// providerPayload is the raw shape providers return: the record fields plus
// an overall confidence score.
type providerPayload struct {
	domain.ExtractedRecord
	Confidence float64 `json:"confidence"`
}

// DecodeRecord parses a provider's raw text response into an ExtractedRecord.
// It strips markdown code fences first; if the remainder is not valid JSON it
// falls back to the first balanced {...} substring. Both failing is a
// ParseError — extraction for the request terminates, no guessing at partial
// structure.
func DecodeRecord(raw string) (*domain.ExtractedRecord, float64, error) {
	text := StripCodeFences(raw)

	var payload providerPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		obj, ok := firstJSONObject(text)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %v (raw: %s)", domain.ErrParseFailure, err, truncate(raw, 500))
		}
		if err := json.Unmarshal([]byte(obj), &payload); err != nil {
			return nil, 0, fmt.Errorf("%w: %v (raw: %s)", domain.ErrParseFailure, err, truncate(raw, 500))
		}
	}

	record := payload.ExtractedRecord
	return &record, payload.Confidence, nil
}

// StripCodeFences removes leading/trailing markdown code fence markers.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject locates the first balanced top-level {...} substring,
// tracking string literals and escapes so braces inside values don't
// unbalance the scan.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
