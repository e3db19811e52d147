package reconcile

import (
	"strings"

	"docpilot/internal/domain"
)

// supplierAliases maps lowercase variants seen in the wild to the canonical
// registered name. Keys cover OCR truncations, missing suffixes and common
// misspellings.
var supplierAliases = map[string]string{
	"ocean marine supplies":          "Ocean Marine Supplies Pte. Ltd.",
	"ocean marine supplies pte ltd":  "Ocean Marine Supplies Pte. Ltd.",
	"ocean marine supplies pte. ltd": "Ocean Marine Supplies Pte. Ltd.",
	"oceanmarine supplies":           "Ocean Marine Supplies Pte. Ltd.",
	"kongsberg maritime":             "Kongsberg Maritime AS",
	"kongsberg maritime as":          "Kongsberg Maritime AS",
	"kongsberg":                      "Kongsberg Maritime AS",
	"wartsila":                       "Wärtsilä Corporation",
	"wartsila corporation":           "Wärtsilä Corporation",
	"wärtsilä":                       "Wärtsilä Corporation",
	"mtu friedrichshafen":            "MTU Friedrichshafen GmbH",
	"mtu friedrichshafen gmbh":       "MTU Friedrichshafen GmbH",
}

func normalizeSupplierKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimSuffix(s, ".")
	return strings.Join(strings.Fields(s), " ")
}

func canonicalSupplierName(name string) string {
	return supplierAliases[normalizeSupplierKey(name)]
}

// canonicalizeSupplier replaces the extracted supplier name with the canonical
// form when either the extracted name or the caller-provided hint resolves to
// a known alias. The hint wins when the two disagree.
func canonicalizeSupplier(record *domain.ExtractedRecord, supplierHint string) []domain.CorrectionNote {
	canonical := canonicalSupplierName(supplierHint)
	if canonical == "" {
		canonical = canonicalSupplierName(record.Supplier.Name)
	}
	if canonical == "" || record.Supplier.Name == canonical {
		return nil
	}

	before := record.Supplier.Name
	record.Supplier.Name = canonical
	return []domain.CorrectionNote{{
		FieldPath: "supplier.name",
		Rule:      "supplier.canonicalize",
		Before:    before,
		After:     canonical,
		Message:   "supplier name replaced with canonical registered name",
	}}
}
