package selector

import (
	"strconv"
	"strings"

	"docpilot/internal/domain"
)

// Scoring weights. The ordering of priorities is load-bearing
// (category gate > name corroboration > priority prefix > supplier > user >
// role > performance > version); the magnitudes are tunable.
const (
	scoreCategoryMatch    = 1000
	scoreCategoryMismatch = -1000
	scoreNamePhrase       = 800
	scoreNameToken        = 700
	scorePriorityPrefix   = 500
	scoreSupplierExact    = 300
	scoreSupplierWildcard = 150
	scoreUserMatch        = 200
	scoreRoleMatch        = 100
	accuracyMultiplier    = 2
)

// priorityPrefix lets administrators pin a template by naming convention
// without touching scores.
const priorityPrefix = "A -"

// categoryNamePhrases maps each document type to the name keywords used to
// corroborate a template's tagged category against its own name. The full
// phrase scores higher than the short token.
var categoryNamePhrases = map[domain.DocumentType]struct {
	phrase string
	token  string
}{
	domain.DocTypePurchaseOrder:   {"purchase order", "po"},
	domain.DocTypeProformaInvoice: {"proforma invoice", "proforma"},
	domain.DocTypeBankPayment:     {"bank payment", "payment"},
	domain.DocTypeClientInvoice:   {"client invoice", "invoice"},
}

// scoreTemplate computes the additive score for one candidate. A hard
// category mismatch forces the score negative regardless of other factors.
func scoreTemplate(tpl *domain.Template, ctx domain.ExtractionContext) (int, []string) {
	var reasons []string

	if ctx.DocumentType.Known() && tpl.Category.Known() && tpl.Category != ctx.DocumentType {
		reasons = append(reasons, "category mismatch: "+string(tpl.Category)+" != "+string(ctx.DocumentType))
		return scoreCategoryMismatch, reasons
	}

	score := 0
	if ctx.DocumentType.Known() && tpl.Category == ctx.DocumentType {
		score += scoreCategoryMatch
	}

	score += nameCorroboration(tpl.Name, ctx.DocumentType)

	if strings.HasPrefix(tpl.Name, priorityPrefix) {
		score += scorePriorityPrefix
	}

	switch {
	case ctx.SupplierName != "" && ctx.SupplierName != domain.SupplierWildcard && tpl.Suppliers.Contains(ctx.SupplierName):
		score += scoreSupplierExact
	case tpl.Suppliers.Contains(domain.SupplierWildcard):
		score += scoreSupplierWildcard
	}

	if ctx.User.Email != "" && tpl.TargetUsers.Contains(ctx.User.Email) {
		score += scoreUserMatch
	}
	if ctx.User.Role != "" && tpl.TargetRoles.Contains(string(ctx.User.Role)) {
		score += scoreRoleMatch
	}

	score += accuracyMultiplier * int(tpl.Performance.AccuracyPercent)
	score += versionAddend(tpl.Version)

	return score, reasons
}

func nameCorroboration(name string, docType domain.DocumentType) int {
	kw, ok := categoryNamePhrases[docType]
	if !ok {
		return 0
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, kw.phrase) {
		return scoreNamePhrase
	}
	// Token match requires word boundaries so "po" does not fire on "export".
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	}) {
		if word == kw.token {
			return scoreNameToken
		}
	}
	return 0
}

// versionAddend encodes a semantic version as major*100 + minor*10 + patch,
// used purely as a tie-breaking addend between otherwise equal candidates.
func versionAddend(version string) int {
	version = strings.TrimPrefix(version, "v")
	parts := strings.SplitN(version, ".", 3)
	weights := [3]int{100, 10, 1}
	addend := 0
	for i, p := range parts {
		if i >= len(weights) {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		addend += n * weights[i]
	}
	return addend
}
