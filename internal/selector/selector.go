package selector

import (
	"sort"

	"docpilot/internal/domain"
)

// Select scores every candidate against the extraction context and returns
// the best one. The returned SelectionResult carries a nil Template when no
// candidate scored strictly positive; callers then fall back. Inactive
// templates are never selectable.
func Select(candidates []domain.Template, ctx domain.ExtractionContext) domain.SelectionResult {
	type scored struct {
		tpl   *domain.Template
		score int
	}

	var pool []scored
	var rejections []string

	for i := range candidates {
		tpl := &candidates[i]
		if !tpl.IsActive {
			rejections = append(rejections, tpl.Name+": inactive")
			continue
		}
		score, reasons := scoreTemplate(tpl, ctx)
		rejections = append(rejections, reasons...)
		pool = append(pool, scored{tpl: tpl, score: score})
	}

	// Descending by score; the version addend folded into the score already
	// breaks ties, stable sort keeps catalog order for exact ties.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	if len(pool) == 0 || pool[0].score <= 0 {
		return domain.SelectionResult{RejectionReasons: rejections}
	}

	return domain.SelectionResult{
		Template:         pool[0].tpl,
		Score:            pool[0].score,
		RejectionReasons: rejections,
	}
}
