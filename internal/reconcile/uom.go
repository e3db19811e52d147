package reconcile

import (
	"strings"

	"docpilot/internal/domain"
)

// uomTokens are unit-of-measure strings that models sometimes misread as
// product names when the name sits on the line below the code.
var uomTokens = map[string]bool{
	"PCS": true, "PC": true, "PCE": true,
	"SET": true, "SETS": true,
	"EA": true, "EACH": true,
	"UNI": true, "UNIT": true, "UNITS": true,
	"NOS": true, "LOT": true, "PAIR": true,
	"KG": true, "MTR": true, "LTR": true,
}

func isUOMToken(s string) bool {
	return uomTokens[strings.ToUpper(strings.TrimSpace(s))]
}

// guardUnitOfMeasure repairs a productName that is actually a UOM token. It
// locates the source line holding the item's product code and takes the next
// non-empty, non-numeric, non-UOM line as the real product name.
func guardUnitOfMeasure(item *domain.LineItem, src sourceIndex, fieldPrefix string) []domain.CorrectionNote {
	if !isUOMToken(item.ProductName) {
		return nil
	}

	lineIdx := src.findLine(item.ProductCode)
	if lineIdx < 0 {
		return nil
	}

	for _, line := range src.window(lineIdx, 5) {
		if line == "" || isNumeric(line) || isUOMToken(line) {
			continue
		}
		before := item.ProductName
		item.ProductName = line
		return []domain.CorrectionNote{{
			FieldPath: fieldPrefix + ".product_name",
			Rule:      "uom.guard",
			Before:    before,
			After:     line,
			Message:   "product_name was a unit-of-measure token; recovered from the line after the product code",
		}}
	}
	return nil
}
