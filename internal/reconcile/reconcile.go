package reconcile

import (
	"fmt"
	"math"

	"docpilot/internal/domain"
)

// relTolerance is the maximum relative deviation between quantity×unitPrice
// and totalPrice before a line item counts as inconsistent.
const relTolerance = 0.10

// Reconcile post-processes an extracted record against its source text and
// supplier hint: numeric cross-checks with swap repair, unit-of-measure
// guard, project-code recovery and supplier canonicalization. It is a total
// function — it never fails, it only downgrades precision — and returns the
// list of corrections it applied. Applying it twice to an already-consistent
// record yields no further change.
func Reconcile(record *domain.ExtractedRecord, sourceText, supplierHint string) []domain.CorrectionNote {
	if record == nil {
		return nil
	}

	var notes []domain.CorrectionNote
	src := indexSource(sourceText)

	for i := range record.Items {
		item := &record.Items[i]
		fieldPrefix := fmt.Sprintf("items[%d]", i)

		notes = append(notes, reconcileArithmetic(item, src, fieldPrefix)...)
		notes = append(notes, guardUnitOfMeasure(item, src, fieldPrefix)...)
		notes = append(notes, recoverProjectCode(item, src, fieldPrefix)...)
	}

	notes = append(notes, canonicalizeSupplier(record, supplierHint)...)
	notes = append(notes, reconcileHeaderTotal(record)...)

	return notes
}

func relDeviation(expected, actual float64) float64 {
	if actual == 0 {
		if expected == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(expected-actual) / math.Abs(actual)
}

// reconcileArithmetic cross-checks quantity × unitPrice against totalPrice.
// On mismatch it tries the field swaps that actually change the product
// (unitPrice↔totalPrice, quantity↔totalPrice) and keeps the assignment that
// minimizes deviation. A quantity↔unitPrice mislabel leaves the product
// unchanged, so that swap is detected against the source line instead.
func reconcileArithmetic(item *domain.LineItem, src sourceIndex, fieldPrefix string) []domain.CorrectionNote {
	var notes []domain.CorrectionNote

	q, u, t := item.Quantity, item.UnitPrice, item.TotalPrice

	switch {
	case t == 0 && q != 0 && u != 0:
		item.TotalPrice = round2(q * u)
		notes = append(notes, domain.CorrectionNote{
			FieldPath: fieldPrefix + ".total_price",
			Rule:      "arith.derive_total",
			Before:    fmtf(0),
			After:     fmtf(item.TotalPrice),
			Message:   "total_price derived from quantity × unit_price",
		})
	case t != 0 && relDeviation(q*u, t) > relTolerance:
		type candidate struct {
			q, u, t float64
			rule    string
		}
		candidates := []candidate{
			{q: q, u: t, t: u, rule: "arith.swap_price_total"},
			{q: t, u: u, t: q, rule: "arith.swap_qty_total"},
		}

		best := candidate{q: q, u: u, t: t, rule: ""}
		bestDev := relDeviation(q*u, t)
		for _, c := range candidates {
			if dev := relDeviation(c.q*c.u, c.t); dev < bestDev {
				best, bestDev = c, dev
			}
		}

		if best.rule != "" && bestDev <= relTolerance {
			item.Quantity, item.UnitPrice, item.TotalPrice = best.q, best.u, best.t
			notes = append(notes, domain.CorrectionNote{
				FieldPath: fieldPrefix,
				Rule:      best.rule,
				Before:    fmt.Sprintf("qty=%s unit_price=%s total=%s", fmtf(q), fmtf(u), fmtf(t)),
				After:     fmt.Sprintf("qty=%s unit_price=%s total=%s", fmtf(best.q), fmtf(best.u), fmtf(best.t)),
				Message:   "quantity × unit_price reconciled against total_price by field swap",
			})
		} else {
			notes = append(notes, domain.CorrectionNote{
				FieldPath: fieldPrefix,
				Rule:      "arith.mismatch",
				Before:    fmt.Sprintf("qty=%s unit_price=%s", fmtf(q), fmtf(u)),
				After:     fmt.Sprintf("total=%s", fmtf(t)),
				Message:   fmt.Sprintf("quantity × unit_price deviates %.0f%% from total_price; no swap restores consistency", relDeviation(q*u, t)*100),
			})
		}
	}

	notes = append(notes, swapAgainstSourceLine(item, src, fieldPrefix)...)
	return notes
}

// swapAgainstSourceLine repairs a quantity↔unitPrice mislabel, which is
// invisible to the arithmetic check because the product is commutative. The
// source line for the item's product code carries the truth: the number
// before the UOM token is the quantity, the trailing number the price.
func swapAgainstSourceLine(item *domain.LineItem, src sourceIndex, fieldPrefix string) []domain.CorrectionNote {
	if item.ProductCode == "" || item.Quantity == item.UnitPrice {
		return nil
	}
	lineIdx := src.findLine(item.ProductCode)
	if lineIdx < 0 {
		return nil
	}
	qty, price, ok := parseQuantityPrice(src.lines[lineIdx])
	if !ok {
		return nil
	}

	if approxEqual(item.Quantity, price) && approxEqual(item.UnitPrice, qty) {
		before := fmt.Sprintf("qty=%s unit_price=%s", fmtf(item.Quantity), fmtf(item.UnitPrice))
		item.Quantity, item.UnitPrice = item.UnitPrice, item.Quantity
		return []domain.CorrectionNote{{
			FieldPath: fieldPrefix,
			Rule:      "arith.swap_qty_price",
			Before:    before,
			After:     fmt.Sprintf("qty=%s unit_price=%s", fmtf(item.Quantity), fmtf(item.UnitPrice)),
			Message:   "quantity and unit_price swapped to match the source line",
		}}
	}
	return nil
}

// reconcileHeaderTotal derives a missing header total from corrected line
// item totals.
func reconcileHeaderTotal(record *domain.ExtractedRecord) []domain.CorrectionNote {
	if record.TotalAmount != 0 || len(record.Items) == 0 {
		return nil
	}
	var sum float64
	for i := range record.Items {
		sum += record.Items[i].TotalPrice
	}
	if sum == 0 {
		return nil
	}
	record.TotalAmount = round2(sum)
	return []domain.CorrectionNote{{
		FieldPath: "total_amount",
		Rule:      "header.derive_total",
		Before:    fmtf(0),
		After:     fmtf(record.TotalAmount),
		Message:   "total_amount derived as sum of line item totals",
	}}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 0.01
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
