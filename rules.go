package tzdb

import (
	"fmt"

	"github.com/tzkit/tzdb/internal/calendar"
	"github.com/tzkit/tzdb/internal/lex"
	"github.com/tzkit/tzdb/tzsrc"
)

// parsedRule is the unrolled-per-year form of a single Rule line.
// ActiveSinceLocal is a calendar instant: the broken-down (year, month,
// day, time) fields treated as if they were already UTC, not yet
// resolved via ResolveToUTC (that happens against a specific epoch's
// standard offset and the previously active savings, and so cannot be
// done once and cached).
type parsedRule struct {
	activeSinceLocal int64
	kind             DateKind
	savingsSeconds   int32
	abbrevSub        string
}

// ruleBundle is the set of parsedRules sharing a name, plus the
// epoch-relative lazy-sort bookkeeping described in spec §4.6/§9: the
// first zone epoch to use a bundle sorts it and marks it sorted; later
// epochs only verify the existing order is still monotonic under their
// own standard offset.
type ruleBundle struct {
	rules           []parsedRule
	sortedByInstant []int64 // parallel to rules, cached sort keys from the sorting epoch
	sortedPreviously bool
}

// expandRuleLines expands every Rule line's FROM..TO range into one
// parsedRule per year, grouped by rule name.
func expandRuleLines(lines []tzsrc.RuleLine, maxYear int) (map[string]*ruleBundle, error) {
	bundles := make(map[string]*ruleBundle)

	for _, rl := range lines {
		from, to := rl.From, rl.To
		if from == lex.MinYear {
			from = 1
		}
		if to == lex.MaxYear {
			to = maxYear
		}
		if from > to {
			continue
		}

		b := bundles[rl.Name]
		if b == nil {
			b = &ruleBundle{}
			bundles[rl.Name] = b
		}

		for year := from; year <= to; year++ {
			y, m, d, err := resolveDayRule(year, rl.In, rl.On)
			if err != nil {
				return nil, wrapError(MalformedDeclaration, fmt.Errorf("rule %q year %d: %w", rl.Name, year, err))
			}
			midnight, err := calendar.InstantFromDate(y, int(m), d, 0, 0, 0)
			if err != nil {
				return nil, wrapError(MalformedDeclaration, fmt.Errorf("rule %q year %d: %w", rl.Name, year, err))
			}
			b.rules = append(b.rules, parsedRule{
				activeSinceLocal: midnight + int64(rl.AtSecs),
				kind:             rl.AtKind,
				savingsSeconds:   int32(rl.SaveSecs),
				abbrevSub:        rl.Letter,
			})
		}
	}

	return bundles, nil
}

// sortOrValidate implements spec §4.6.b: the first epoch to use a bundle
// sorts it (stable, by UTC instant under that epoch's standard offset)
// and marks it sorted; subsequent epochs re-derive the sort keys under
// their own standard offset and only verify the existing order still
// holds, reporting SuspectOrdering if not.
func sortOrValidate(b *ruleBundle, standardOffsetSeconds int32, ruleName string) error {
	keys := make([]int64, len(b.rules))
	for i, r := range b.rules {
		keys[i] = ResolveToUTC(r.kind, r.activeSinceLocal, standardOffsetSeconds, 0)
	}

	if !b.sortedPreviously {
		idx := make([]int, len(b.rules))
		for i := range idx {
			idx[i] = i
		}
		sortIndicesStable(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
		newRules := make([]parsedRule, len(b.rules))
		newKeys := make([]int64, len(b.rules))
		for i, srcIdx := range idx {
			newRules[i] = b.rules[srcIdx]
			newKeys[i] = keys[srcIdx]
		}
		b.rules = newRules
		b.sortedByInstant = newKeys
		b.sortedPreviously = true
		return nil
	}

	for i := 1; i < len(b.rules); i++ {
		a := ResolveToUTC(b.rules[i-1].kind, b.rules[i-1].activeSinceLocal, standardOffsetSeconds, 0)
		c := ResolveToUTC(b.rules[i].kind, b.rules[i].activeSinceLocal, standardOffsetSeconds, 0)
		if c < a {
			return wrapError(SuspectOrdering, fmt.Errorf(
				"savings rules for %q were sorted differently when applying standard offset %d; rule index %d", ruleName, standardOffsetSeconds, i))
		}
	}
	return nil
}

// sortIndicesStable sorts idx in place using insertion sort, which is
// stable and fine for the small (typically well under a few hundred
// entries) rule bundles this compiler handles.
func sortIndicesStable(idx []int, less func(i, j int) bool) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}
