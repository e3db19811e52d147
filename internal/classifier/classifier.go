package classifier

import (
	"strings"

	"docpilot/internal/domain"
)

// Keyword indicator sets. Matching is case-insensitive substring counting;
// each indicator contributes at most one hit.
var purchaseOrderIndicators = []string{
	"PURCHASE ORDER",
	"P.O. NUMBER",
	"PO NUMBER",
	"PO NO",
	"BILL TO",
	"SHIP TO",
	"DELIVERY DATE",
	"ORDER DATE",
	"VENDOR",
}

var proformaIndicators = []string{
	"PROFORMA INVOICE",
	"PRO FORMA",
	"PROFORMA",
	"SHIPPER",
	"CONSIGNEE",
	"FREIGHT",
	"PORT OF LOADING",
	"PORT OF DISCHARGE",
	"COUNTRY OF ORIGIN",
}

var bankPaymentIndicators = []string{
	"PAYMENT ADVICE",
	"DEBIT ADVICE",
	"REMITTANCE",
	"VALUE DATE",
	"BENEFICIARY",
	"ORDERING CUSTOMER",
	"SWIFT",
	"IBAN",
}

func countHits(upper string, indicators []string) int {
	hits := 0
	for _, kw := range indicators {
		if strings.Contains(upper, kw) {
			hits++
		}
	}
	return hits
}

// Classify assigns a document type from keyword indicator hits. Proforma
// indicators win on a strictly higher score; otherwise any purchase-order
// hit yields purchase_order. Empty or unrecognizable text is unknown.
// Bank payments and client invoices are routed by endpoint, not inferred
// here: bank slips vary too much in vocabulary for keyword scoring.
func Classify(text string) domain.DocumentType {
	if text == "" {
		return domain.DocTypeUnknown
	}
	upper := strings.ToUpper(text)

	poScore := countHits(upper, purchaseOrderIndicators)
	proformaScore := countHits(upper, proformaIndicators)

	switch {
	case proformaScore > poScore:
		return domain.DocTypeProformaInvoice
	case poScore > 0:
		return domain.DocTypePurchaseOrder
	default:
		return domain.DocTypeUnknown
	}
}

// ScoreBankPayment counts bank-payment indicator hits. Consulted only by the
// bank-payment endpoint to sanity-check that the text looks like a payment
// slip; it never influences Classify.
func ScoreBankPayment(text string) int {
	if text == "" {
		return 0
	}
	return countHits(strings.ToUpper(text), bankPaymentIndicators)
}
