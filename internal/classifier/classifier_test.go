package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docpilot/internal/classifier"
	"docpilot/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.DocumentType
	}{
		{
			name: "purchase_order",
			text: "PURCHASE ORDER\nPO NUMBER: 4500012345\nBILL TO: Acme Marine Pte Ltd\nSHIP TO: Warehouse 7",
			want: domain.DocTypePurchaseOrder,
		},
		{
			name: "proforma_invoice",
			text: "PROFORMA INVOICE\nSHIPPER: Ocean Supplies Co\nCONSIGNEE: Acme Marine\nFREIGHT: PREPAID\nPORT OF LOADING: BUSAN",
			want: domain.DocTypeProformaInvoice,
		},
		{
			name: "mixed_proforma_wins_on_higher_score",
			text: "PROFORMA INVOICE\nBILL TO: Acme\nSHIPPER: X\nFREIGHT COLLECT\nCONSIGNEE: Y",
			want: domain.DocTypeProformaInvoice,
		},
		{
			name: "mixed_po_wins_on_tie",
			text: "PURCHASE ORDER\nBILL TO: Acme\nFREIGHT: PREPAID\nSHIPPER: X",
			want: domain.DocTypePurchaseOrder,
		},
		{
			name: "lowercase_input",
			text: "purchase order\npo number 99",
			want: domain.DocTypePurchaseOrder,
		},
		{
			name: "empty",
			text: "",
			want: domain.DocTypeUnknown,
		},
		{
			name: "no_indicators",
			text: "Dear Sir,\nPlease find attached our latest catalogue.",
			want: domain.DocTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.text))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "PURCHASE ORDER\nVENDOR: Ocean Supplies\nDELIVERY DATE: 01-09-2026"
	first := classifier.Classify(text)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, classifier.Classify(text))
	}
}

func TestScoreBankPayment(t *testing.T) {
	t.Run("payment_slip", func(t *testing.T) {
		text := "PAYMENT ADVICE\nVALUE DATE: 12-08-2026\nBENEFICIARY: Ocean Supplies Co\nSWIFT: DBSSSGSG"
		assert.Greater(t, classifier.ScoreBankPayment(text), 0)
	})

	t.Run("unrelated_text", func(t *testing.T) {
		assert.Zero(t, classifier.ScoreBankPayment("PURCHASE ORDER\nBILL TO: Acme"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Zero(t, classifier.ScoreBankPayment(""))
	})
}

func TestScoreBankPayment_DoesNotAffectClassify(t *testing.T) {
	text := "PAYMENT ADVICE\nBENEFICIARY: Ocean Supplies\nIBAN: SG12345"
	assert.Equal(t, domain.DocTypeUnknown, classifier.Classify(text))
}
