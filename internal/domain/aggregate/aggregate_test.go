package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nmep/dashboard/internal/domain/synthetic"
)

type row struct {
	key string
	val float64
}

func rows() []row {
	return []row{{"a", 3}, {"b", 9}, {"c", 1}, {"d", 9}, {"e", 5}}
}

func TestTopN_SortedAndStable(t *testing.T) {
	in := rows()
	top := TopN(in, 3, func(r row) float64 { return r.val })
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].key != "b" || top[1].key != "d" || top[2].key != "e" {
		t.Errorf("unexpected order: %+v", top)
	}
	if in[0].key != "a" || in[1].key != "b" {
		t.Error("input was mutated")
	}
}

func TestTopN_MoreThanAvailable(t *testing.T) {
	top := TopN(rows(), 50, func(r row) float64 { return r.val })
	if len(top) != 5 {
		t.Errorf("expected all 5 rows, got %d", len(top))
	}
}

func TestPaginate(t *testing.T) {
	byKeyDesc := func(a, b row) bool { return a.key > b.key }
	page := Paginate(rows(), byKeyDesc, 1, 2)
	if len(page) != 2 || page[0].key != "d" || page[1].key != "c" {
		t.Errorf("unexpected page: %+v", page)
	}
	if got := Paginate(rows(), nil, 4, 10); len(got) != 1 || got[0].key != "e" {
		t.Errorf("expected last row only, got %+v", got)
	}
	if got := Paginate(rows(), nil, 10, 10); len(got) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(got))
	}
	if got := Paginate(rows(), nil, -5, 1); len(got) != 1 || got[0].key != "a" {
		t.Errorf("negative offset should clamp to zero, got %+v", got)
	}
}

func TestGroupCountAndShares(t *testing.T) {
	items := []string{"RDT", "RDT", "Microscopy", "RDT"}
	counts := GroupCount(items, func(s string) string { return s })
	if len(counts) != 2 || counts[0].Key != "RDT" || counts[0].Count != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	shares := Shares(counts)
	if shares[0].Percent != 75 || shares[1].Percent != 25 {
		t.Errorf("unexpected shares: %+v", shares)
	}
}

func TestShares_ZeroTotal(t *testing.T) {
	shares := Shares([]Count{{Key: "x"}})
	if shares[0].Percent != 0 {
		t.Errorf("expected 0%%, got %v", shares[0].Percent)
	}
}

func TestGroupSum(t *testing.T) {
	sums := GroupSum(rows(), func(r row) string {
		if r.val > 4 {
			return "big"
		}
		return "small"
	}, func(r row) float64 { return r.val })
	if sums[0].Key != "big" || sums[0].Total != 23 || sums[1].Total != 4 {
		t.Errorf("unexpected sums: %+v", sums)
	}
}

func TestClassifyBurden(t *testing.T) {
	cases := map[float64]string{400: "very_high", 300: "high", 200: "moderate", 60: "low", 10: "very_low"}
	for inc, want := range cases {
		if got := ClassifyBurden(inc).Label; got != want {
			t.Errorf("ClassifyBurden(%v) = %s, want %s", inc, got, want)
		}
	}
}

func TestReportingCompleteness(t *testing.T) {
	reports := []synthetic.FacilityReport{
		{StateCode: "KN", Reported: true, OnTime: true},
		{StateCode: "KN", Reported: true},
		{StateCode: "KN"},
		{StateCode: "KN", Reported: true, OnTime: true},
		{StateCode: "LA", Reported: true, OnTime: true},
	}
	got := ReportingCompleteness(reports)
	if len(got) != 2 {
		t.Fatalf("expected 2 states, got %d", len(got))
	}
	if got[0].StateCode != "KN" || got[0].Completeness != 75 || got[0].Timeliness != 66.7 {
		t.Errorf("unexpected KN row: %+v", got[0])
	}
	if got[1].Completeness != 100 {
		t.Errorf("unexpected LA row: %+v", got[1])
	}
}

func TestBudgetSummary(t *testing.T) {
	d := decimal.RequireFromString
	lines := []synthetic.BudgetLine{
		{Source: "GF", Allocated: d("100"), Disbursed: d("80"), Expended: d("40")},
		{Source: "GF", Allocated: d("50"), Disbursed: d("20"), Expended: d("20")},
		{Source: "WB", Allocated: d("10"), Disbursed: d("0"), Expended: d("0")},
	}
	got := BudgetSummary(lines)
	if len(got) != 3 {
		t.Fatalf("expected 2 sources + total, got %d", len(got))
	}
	if !got[0].Allocated.Equal(d("150")) || !got[0].Absorption.Equal(d("60")) {
		t.Errorf("unexpected GF summary: %+v", got[0])
	}
	if !got[1].Absorption.IsZero() {
		t.Errorf("expected zero absorption with nothing disbursed, got %s", got[1].Absorption)
	}
	if got[2].Source != "Total" || !got[2].Allocated.Equal(d("160")) {
		t.Errorf("unexpected total: %+v", got[2])
	}
}

func TestPercentAndRound(t *testing.T) {
	if Percent(1, 3) != 33.3 {
		t.Errorf("expected 33.3, got %v", Percent(1, 3))
	}
	if Percent(5, 0) != 0 {
		t.Error("expected 0 for zero whole")
	}
}
