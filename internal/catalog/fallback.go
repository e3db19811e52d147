package catalog

import (
	"github.com/google/uuid"

	"docpilot/internal/domain"
)

// fallbackVersion tags the built-in set so selections are traceable to it.
const fallbackVersion = "0.9.0"

// Fixed IDs keep fallback selections stable across restarts.
var fallbackIDs = map[domain.DocumentType]uuid.UUID{
	domain.DocTypePurchaseOrder:   uuid.MustParse("00000000-0000-4000-8000-000000000001"),
	domain.DocTypeProformaInvoice: uuid.MustParse("00000000-0000-4000-8000-000000000002"),
	domain.DocTypeBankPayment:     uuid.MustParse("00000000-0000-4000-8000-000000000003"),
	domain.DocTypeClientInvoice:   uuid.MustParse("00000000-0000-4000-8000-000000000004"),
}

var fallbackBodies = map[domain.DocumentType]string{
	domain.DocTypePurchaseOrder: `Extract every line item and all header fields from this purchase order.
Read line items left to right: line number, product code, quantity, unit, unit price, total price.
Product names may appear on the line below the product code.`,
	domain.DocTypeProformaInvoice: `Extract all header fields and every line item from this proforma invoice,
including shipper, consignee, freight terms, currency and totals.`,
	domain.DocTypeBankPayment: `Extract the payment details from this bank payment advice: value date,
ordering customer, beneficiary, banks, accounts, amount, currency and transaction reference.`,
	domain.DocTypeClientInvoice: `Extract all header fields and every line item from this client invoice,
including invoice number, date, counterparties, currency and totals.`,
}

// FallbackTemplates returns the built-in template set used when the remote
// catalog is unreachable. Every document type gets at least one active,
// wildcard-supplier template, so the selector's candidate pool is never
// empty by construction.
func FallbackTemplates() []domain.Template {
	out := make([]domain.Template, 0, len(domain.AllDocumentTypes))
	for _, dt := range domain.AllDocumentTypes {
		out = append(out, domain.Template{
			ID:                 fallbackIDs[dt],
			Name:               "Fallback " + string(dt),
			Category:           dt,
			Version:            fallbackVersion,
			Namespace:          domain.PromptSystemManaged,
			Suppliers:          domain.StringList{domain.SupplierWildcard},
			ProviderPreference: "openai",
			Temperature:        0,
			MaxOutputTokens:    8192,
			BodyText:           fallbackBodies[dt],
			IsActive:           true,
		})
	}
	return out
}

// IsFallbackID reports whether id belongs to the built-in set. Callers use
// it to tell a degraded-catalog selection apart from a real one.
func IsFallbackID(id uuid.UUID) bool {
	for _, fid := range fallbackIDs {
		if fid == id {
			return true
		}
	}
	return false
}

// fallbackFor filters the built-in set by category. Namespace is ignored on
// purpose: a degraded catalog serves both cohorts from the same pool.
func fallbackFor(filter domain.TemplateFilter) []domain.Template {
	all := FallbackTemplates()
	if !filter.Category.Known() {
		return all
	}
	out := make([]domain.Template, 0, 1)
	for _, t := range all {
		if t.Category == filter.Category {
			out = append(out, t)
		}
	}
	return out
}
