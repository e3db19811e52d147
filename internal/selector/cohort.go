package selector

import (
	"hash/fnv"
	"strings"

	"docpilot/internal/domain"
)

// CohortOf deterministically assigns a user to a cohort in [0, 100) from a
// hash of their email. Cohort membership decides which template namespace is
// fetched from the catalog, never the scoring formula.
func CohortOf(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return int(h.Sum32() % 100)
}

// NamespaceFor resolves the template namespace for a request. An explicit
// operator override bypasses cohort assignment entirely.
func NamespaceFor(ctx domain.ExtractionContext, managedPercent int) domain.PromptSystem {
	if ctx.ExplicitPromptOverride != "" {
		return ctx.ExplicitPromptOverride
	}
	if CohortOf(ctx.User.Email) < managedPercent {
		return domain.PromptSystemManaged
	}
	return domain.PromptSystemLegacy
}
