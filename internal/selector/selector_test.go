package selector_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docpilot/internal/domain"
	"docpilot/internal/selector"
)

func tpl(name string, category domain.DocumentType, mutate ...func(*domain.Template)) domain.Template {
	t := domain.Template{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		Version:   "1.0.0",
		Suppliers: domain.StringList{domain.SupplierWildcard},
		IsActive:  true,
	}
	for _, m := range mutate {
		m(&t)
	}
	return t
}

func poContext() domain.ExtractionContext {
	return domain.ExtractionContext{
		DocumentType: domain.DocTypePurchaseOrder,
		SupplierName: "OCEAN SUPPLIES CO",
		User:         domain.User{Email: "ops@acme.example", Role: domain.RoleMember},
	}
}

func TestSelect_CategoryGate(t *testing.T) {
	ctx := poContext()

	t.Run("mismatched_category_never_selected", func(t *testing.T) {
		candidates := []domain.Template{
			tpl("Proforma Invoice Extraction", domain.DocTypeProformaInvoice, func(tpl *domain.Template) {
				// High on every other axis; the gate must still reject it.
				tpl.Performance.AccuracyPercent = 99
				tpl.Suppliers = domain.StringList{"OCEAN SUPPLIES CO"}
				tpl.TargetUsers = domain.StringList{"ops@acme.example"}
				tpl.Name = "A - Proforma Invoice Extraction"
			}),
			tpl("Purchase Order Extraction", domain.DocTypePurchaseOrder),
		}
		res := selector.Select(candidates, ctx)
		require.NotNil(t, res.Template)
		assert.Equal(t, domain.DocTypePurchaseOrder, res.Template.Category)
	})

	t.Run("property_random_mismatched_pools", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		others := []domain.DocumentType{
			domain.DocTypeProformaInvoice, domain.DocTypeBankPayment, domain.DocTypeClientInvoice,
		}
		for trial := 0; trial < 200; trial++ {
			n := 1 + rng.Intn(8)
			candidates := make([]domain.Template, 0, n)
			for i := 0; i < n; i++ {
				cat := others[rng.Intn(len(others))]
				candidates = append(candidates, tpl(fmt.Sprintf("Template %d", i), cat, func(tpl *domain.Template) {
					tpl.Performance.AccuracyPercent = float64(rng.Intn(100))
					tpl.Version = fmt.Sprintf("%d.%d.%d", rng.Intn(9), rng.Intn(9), rng.Intn(9))
				}))
			}
			res := selector.Select(candidates, ctx)
			assert.Nil(t, res.Template, "trial %d: selected a wrong-category template", trial)
		}
	})
}

func TestSelect_PositiveScoreContract(t *testing.T) {
	// Unknown document type and no other scoring axes: everything scores at
	// most the version addend of 0.0.0 plus wildcard supplier... set neither.
	ctx := domain.ExtractionContext{DocumentType: domain.DocTypeUnknown}
	candidates := []domain.Template{
		tpl("Misc", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Suppliers = nil
			tpl.Version = "0.0.0"
		}),
	}
	res := selector.Select(candidates, ctx)
	assert.Nil(t, res.Template)
	assert.Zero(t, res.Score)
}

func TestSelect_EmptyPool(t *testing.T) {
	res := selector.Select(nil, poContext())
	assert.Nil(t, res.Template)
}

func TestSelect_InactiveNeverSelected(t *testing.T) {
	candidates := []domain.Template{
		tpl("Purchase Order Extraction", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.IsActive = false
		}),
	}
	res := selector.Select(candidates, poContext())
	assert.Nil(t, res.Template)
	assert.Contains(t, res.RejectionReasons[0], "inactive")
}

func TestSelect_SupplierAndUserBonuses(t *testing.T) {
	ctx := poContext()
	candidates := []domain.Template{
		tpl("PO generic", domain.DocTypePurchaseOrder),
		tpl("PO supplier-specific", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Suppliers = domain.StringList{"OCEAN SUPPLIES CO"}
		}),
	}
	res := selector.Select(candidates, ctx)
	require.NotNil(t, res.Template)
	assert.Equal(t, "PO supplier-specific", res.Template.Name)

	// Explicit user targeting outranks the exact-supplier bonus.
	candidates = append(candidates, tpl("PO user-pinned", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
		tpl.Suppliers = domain.StringList{"OCEAN SUPPLIES CO"}
		tpl.TargetUsers = domain.StringList{"ops@acme.example"}
	}))
	res = selector.Select(candidates, ctx)
	require.NotNil(t, res.Template)
	assert.Equal(t, "PO user-pinned", res.Template.Name)
}

func TestSelect_PriorityPrefixPinsTemplate(t *testing.T) {
	ctx := poContext()
	candidates := []domain.Template{
		tpl("Purchase Order v2", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Performance.AccuracyPercent = 95
		}),
		tpl("A - Purchase Order pinned", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Performance.AccuracyPercent = 50
		}),
	}
	res := selector.Select(candidates, ctx)
	require.NotNil(t, res.Template)
	assert.Equal(t, "A - Purchase Order pinned", res.Template.Name)
}

func TestSelect_VersionBreaksTies(t *testing.T) {
	ctx := poContext()
	candidates := []domain.Template{
		tpl("Purchase Order old", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Version = "1.2.0"
		}),
		tpl("Purchase Order new", domain.DocTypePurchaseOrder, func(tpl *domain.Template) {
			tpl.Version = "1.3.1"
		}),
	}
	res := selector.Select(candidates, ctx)
	require.NotNil(t, res.Template)
	assert.Equal(t, "Purchase Order new", res.Template.Name)
}

func TestSelect_NameCorroborationWithoutTaggedCategory(t *testing.T) {
	// A template whose category tag is missing but whose name carries the
	// category phrase still outranks an untagged, unnamed one.
	ctx := domain.ExtractionContext{DocumentType: domain.DocTypePurchaseOrder}
	candidates := []domain.Template{
		tpl("Generic extraction", domain.DocTypeUnknown),
		tpl("Purchase Order fallback", domain.DocTypeUnknown),
	}
	res := selector.Select(candidates, ctx)
	require.NotNil(t, res.Template)
	assert.Equal(t, "Purchase Order fallback", res.Template.Name)
}

func TestCohortOf(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := selector.CohortOf("ops@acme.example")
		for i := 0; i < 10; i++ {
			assert.Equal(t, a, selector.CohortOf("ops@acme.example"))
		}
	})

	t.Run("range", func(t *testing.T) {
		for _, email := range []string{"a@x.io", "b@x.io", "c@x.io", ""} {
			c := selector.CohortOf(email)
			assert.GreaterOrEqual(t, c, 0)
			assert.Less(t, c, 100)
		}
	})

	t.Run("case_insensitive", func(t *testing.T) {
		assert.Equal(t, selector.CohortOf("Ops@Acme.Example"), selector.CohortOf("ops@acme.example"))
	})
}

func TestNamespaceFor(t *testing.T) {
	ctx := poContext()

	t.Run("override_wins", func(t *testing.T) {
		ctx.ExplicitPromptOverride = domain.PromptSystemLegacy
		assert.Equal(t, domain.PromptSystemLegacy, selector.NamespaceFor(ctx, 100))
	})

	t.Run("full_rollout", func(t *testing.T) {
		ctx.ExplicitPromptOverride = ""
		assert.Equal(t, domain.PromptSystemManaged, selector.NamespaceFor(ctx, 100))
	})

	t.Run("zero_rollout", func(t *testing.T) {
		ctx.ExplicitPromptOverride = ""
		assert.Equal(t, domain.PromptSystemLegacy, selector.NamespaceFor(ctx, 0))
	})
}
