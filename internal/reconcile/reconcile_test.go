package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docpilot/internal/domain"
	"docpilot/internal/reconcile"
)

const poSource = `PURCHASE ORDER PO-4500012345
1  400QCR1068  1.00 PCS 20,500.00
THRUSTER
Project Code: NAV-S1234
TOTAL 20,500.00`

func poRecord() *domain.ExtractedRecord {
	return &domain.ExtractedRecord{
		DocumentType:   domain.DocTypePurchaseOrder,
		DocumentNumber: "PO-4500012345",
		Supplier:       domain.Party{Name: "Ocean Marine Supplies"},
		Currency:       "USD",
		TotalAmount:    20500,
		Items: []domain.LineItem{{
			LineNumber:  1,
			ProductCode: "400QCR1068",
			ProductName: "THRUSTER",
			Quantity:    1,
			Unit:        "PCS",
			UnitPrice:   20500,
			TotalPrice:  20500,
			ProjectCode: "NAV-S1234",
		}},
	}
}

func TestReconcile_ConsistentRecordUntouched(t *testing.T) {
	rec := poRecord()
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."
	notes := reconcile.Reconcile(rec, poSource, "")
	assert.Empty(t, notes)
}

func TestReconcile_DerivesMissingLineTotal(t *testing.T) {
	rec := poRecord()
	rec.Items[0].TotalPrice = 0
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."

	notes := reconcile.Reconcile(rec, poSource, "")
	require.Len(t, notes, 1)
	assert.Equal(t, "arith.derive_total", notes[0].Rule)
	assert.Equal(t, 20500.0, rec.Items[0].TotalPrice)
}

func TestReconcile_SwapPriceTotal(t *testing.T) {
	rec := &domain.ExtractedRecord{
		TotalAmount: 600,
		Items: []domain.LineItem{{
			ProductCode: "X-1",
			ProductName: "VALVE",
			Quantity:    3,
			UnitPrice:   600, // total landed in unit_price
			TotalPrice:  200,
		}},
	}

	notes := reconcile.Reconcile(rec, "", "")
	require.Len(t, notes, 1)
	assert.Equal(t, "arith.swap_price_total", notes[0].Rule)
	assert.Equal(t, 200.0, rec.Items[0].UnitPrice)
	assert.Equal(t, 600.0, rec.Items[0].TotalPrice)
}

func TestReconcile_SwapQtyTotal(t *testing.T) {
	rec := &domain.ExtractedRecord{
		TotalAmount: 40,
		Items: []domain.LineItem{{
			ProductCode: "X-2",
			ProductName: "GASKET",
			Quantity:    40, // total landed in quantity
			UnitPrice:   10,
			TotalPrice:  4,
		}},
	}

	notes := reconcile.Reconcile(rec, "", "")
	require.Len(t, notes, 1)
	assert.Equal(t, "arith.swap_qty_total", notes[0].Rule)
	assert.Equal(t, 4.0, rec.Items[0].Quantity)
	assert.Equal(t, 40.0, rec.Items[0].TotalPrice)
}

func TestReconcile_SwapQtyPriceAgainstSourceLine(t *testing.T) {
	// 20500 × 1.00 == 1.00 × 20500, so only the source line reveals the swap.
	rec := poRecord()
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."
	rec.Items[0].Quantity = 20500
	rec.Items[0].UnitPrice = 1

	notes := reconcile.Reconcile(rec, poSource, "")
	require.Len(t, notes, 1)
	assert.Equal(t, "arith.swap_qty_price", notes[0].Rule)
	assert.Equal(t, 1.0, rec.Items[0].Quantity)
	assert.Equal(t, 20500.0, rec.Items[0].UnitPrice)
}

func TestReconcile_MismatchNoteWhenNoSwapFits(t *testing.T) {
	rec := &domain.ExtractedRecord{
		TotalAmount: 100,
		Items: []domain.LineItem{{
			ProductCode: "X-3",
			ProductName: "HOSE",
			Quantity:    2,
			UnitPrice:   3,
			TotalPrice:  100,
		}},
	}

	notes := reconcile.Reconcile(rec, "", "")
	require.Len(t, notes, 1)
	assert.Equal(t, "arith.mismatch", notes[0].Rule)
	// Values untouched when nothing restores consistency.
	assert.Equal(t, 2.0, rec.Items[0].Quantity)
	assert.Equal(t, 3.0, rec.Items[0].UnitPrice)
	assert.Equal(t, 100.0, rec.Items[0].TotalPrice)
}

func TestReconcile_UOMGuardRecoversProductName(t *testing.T) {
	rec := poRecord()
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."
	rec.Items[0].ProductName = "PCS"

	notes := reconcile.Reconcile(rec, poSource, "")
	require.Len(t, notes, 1)
	assert.Equal(t, "uom.guard", notes[0].Rule)
	assert.Equal(t, "THRUSTER", rec.Items[0].ProductName)
}

func TestReconcile_ProjectCodeRecovery(t *testing.T) {
	rec := poRecord()
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."
	rec.Items[0].ProjectCode = ""

	notes := reconcile.Reconcile(rec, poSource, "")
	require.Len(t, notes, 1)
	assert.Equal(t, "ref.recover", notes[0].Rule)
	assert.Equal(t, "NAV-S1234", rec.Items[0].ProjectCode)
}

func TestReconcile_SupplierCanonicalization(t *testing.T) {
	rec := poRecord()
	notes := reconcile.Reconcile(rec, poSource, "Ocean Marine Supplies")
	require.Len(t, notes, 1)
	assert.Equal(t, "supplier.canonicalize", notes[0].Rule)
	assert.Equal(t, "Ocean Marine Supplies Pte. Ltd.", rec.Supplier.Name)
}

func TestReconcile_SupplierHintWins(t *testing.T) {
	rec := poRecord()
	rec.Supplier.Name = "some garbled name"
	reconcile.Reconcile(rec, "", "wartsila")
	assert.Equal(t, "Wärtsilä Corporation", rec.Supplier.Name)
}

func TestReconcile_HeaderTotalDerived(t *testing.T) {
	rec := poRecord()
	rec.Supplier.Name = "Ocean Marine Supplies Pte. Ltd."
	rec.TotalAmount = 0
	rec.Items = append(rec.Items, domain.LineItem{
		ProductCode: "X-9", ProductName: "SEAL KIT",
		Quantity: 2, UnitPrice: 50, TotalPrice: 100,
	})

	notes := reconcile.Reconcile(rec, poSource, "")
	require.Len(t, notes, 1)
	assert.Equal(t, "header.derive_total", notes[0].Rule)
	assert.Equal(t, 20600.0, rec.TotalAmount)
}

func TestReconcile_Idempotent(t *testing.T) {
	rec := poRecord()
	rec.Items[0].Quantity = 20500
	rec.Items[0].UnitPrice = 1
	rec.Items[0].ProjectCode = ""
	rec.TotalAmount = 0

	first := reconcile.Reconcile(rec, poSource, "ocean marine supplies pte ltd")
	assert.NotEmpty(t, first)

	second := reconcile.Reconcile(rec, poSource, "ocean marine supplies pte ltd")
	assert.Empty(t, second, "a reconciled record must not change again")
}

func TestReconcile_NilRecord(t *testing.T) {
	assert.Nil(t, reconcile.Reconcile(nil, "", ""))
}
