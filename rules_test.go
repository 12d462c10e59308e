package tzdb

import (
	"testing"
	"time"

	"github.com/tzkit/tzdb/internal/calendar"
	"github.com/tzkit/tzdb/tzsrc"
)

func TestExpandRuleLinesOnly(t *testing.T) {
	lines := []tzsrc.RuleLine{
		{Name: "Test", From: 2020, To: 2020, In: time.March, On: tzsrc.DayRule{Kind: tzsrc.EqualToDate, Day: 1}, AtKind: UTC, SaveSecs: 3600, Letter: "S"},
	}
	bundles, err := expandRuleLines(lines, 2500)
	if err != nil {
		t.Fatalf("expandRuleLines() error: %v", err)
	}
	b := bundles["Test"]
	if b == nil || len(b.rules) != 1 {
		t.Fatalf("got bundle %+v, want exactly 1 rule", b)
	}
	want, _ := calendar.InstantFromDate(2020, 3, 1, 0, 0, 0)
	if b.rules[0].activeSinceLocal != want {
		t.Errorf("activeSinceLocal = %d, want %d", b.rules[0].activeSinceLocal, want)
	}
	if b.rules[0].savingsSeconds != 3600 || b.rules[0].abbrevSub != "S" {
		t.Errorf("unexpected rule %+v", b.rules[0])
	}
}

func TestExpandRuleLinesSpansYears(t *testing.T) {
	lines := []tzsrc.RuleLine{
		{Name: "US", From: 2000, To: 2003, In: time.April, On: tzsrc.DayRule{Kind: tzsrc.EqualToDate, Day: 1}, AtKind: UTC},
	}
	bundles, err := expandRuleLines(lines, 2500)
	if err != nil {
		t.Fatalf("expandRuleLines() error: %v", err)
	}
	if got := len(bundles["US"].rules); got != 4 {
		t.Fatalf("got %d rules, want 4", got)
	}
}

func TestExpandRuleLinesMaxYear(t *testing.T) {
	lines := []tzsrc.RuleLine{
		{Name: "Open", From: 2498, To: 1 << 30, In: time.January, On: tzsrc.DayRule{Kind: tzsrc.EqualToDate, Day: 1}, AtKind: UTC},
	}
	bundles, err := expandRuleLines(lines, 2500)
	if err != nil {
		t.Fatalf("expandRuleLines() error: %v", err)
	}
	if got := len(bundles["Open"].rules); got != 3 {
		t.Fatalf("got %d rules, want 3 (2498-2500)", got)
	}
}

func TestSortOrValidateSortsOnFirstUse(t *testing.T) {
	b := &ruleBundle{rules: []parsedRule{
		{activeSinceLocal: mustInstant(t, 2020, 6, 1), kind: UTC},
		{activeSinceLocal: mustInstant(t, 2020, 1, 1), kind: UTC},
	}}
	if err := sortOrValidate(b, 0, "X"); err != nil {
		t.Fatalf("sortOrValidate() error: %v", err)
	}
	if b.rules[0].activeSinceLocal >= b.rules[1].activeSinceLocal {
		t.Errorf("bundle not sorted: %+v", b.rules)
	}
}

func TestSortOrValidateDetectsSuspectOrdering(t *testing.T) {
	// A is UTC (offset-invariant, fixed at June 1). B is Standard (varies
	// with the epoch's standard offset). Under offset 0 the bundle sorts
	// as [B, A]; reusing it under a large negative offset pushes B's
	// resolved instant past A's, which must be reported.
	b := &ruleBundle{rules: []parsedRule{
		{activeSinceLocal: mustInstant(t, 2020, 6, 1), kind: UTC},
		{activeSinceLocal: mustInstant(t, 2020, 1, 1), kind: Standard},
	}}
	if err := sortOrValidate(b, 0, "X"); err != nil {
		t.Fatalf("initial sort failed: %v", err)
	}
	if b.rules[0].kind != Standard {
		t.Fatalf("expected Standard rule sorted first, got %+v", b.rules)
	}

	const bigOffset = int32(200 * 24 * 3600)
	if err := sortOrValidate(b, -bigOffset, "X"); err == nil {
		t.Error("expected SuspectOrdering, got nil")
	} else if tzErr, ok := err.(*Error); !ok || tzErr.Kind != SuspectOrdering {
		t.Errorf("got %v, want SuspectOrdering", err)
	}
}

func mustInstant(t *testing.T, y, m, d int) int64 {
	t.Helper()
	v, err := calendar.InstantFromDate(y, m, d, 0, 0, 0)
	if err != nil {
		t.Fatalf("InstantFromDate(%d,%d,%d): %v", y, m, d, err)
	}
	return v
}
