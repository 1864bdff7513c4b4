package reference

import (
	"testing"
)

func TestStates_Count(t *testing.T) {
	if got := States().Len(); got != 37 {
		t.Fatalf("expected 37 states (36 + FCT), got %d", got)
	}
}

func TestStates_ValidRows(t *testing.T) {
	for _, s := range States().All() {
		if s.Population <= 0 {
			t.Errorf("state %s has non-positive population", s.Code)
		}
		if s.BurdenMultiplier <= 0 {
			t.Errorf("state %s has non-positive burden multiplier", s.Code)
		}
		if _, ok := ZoneMultiplier(s.Zone); !ok {
			t.Errorf("state %s has unknown zone %q", s.Code, s.Zone)
		}
		if len(s.LGAs) == 0 {
			t.Errorf("state %s has no LGAs", s.Code)
		}
	}
}

func TestCountries_ValidRows(t *testing.T) {
	for _, c := range Countries().All() {
		if c.Population <= 0 {
			t.Errorf("country %s has non-positive population", c.Code)
		}
		if c.ITNCoverage < 0 || c.ITNCoverage > 100 {
			t.Errorf("country %s ITN coverage out of range: %v", c.Code, c.ITNCoverage)
		}
	}
}

func TestTable_Lookup(t *testing.T) {
	kn, ok := States().Lookup("KN")
	if !ok {
		t.Fatal("expected KN to exist")
	}
	if kn.Name != "Kano" {
		t.Errorf("expected Kano, got %q", kn.Name)
	}
}

func TestTable_LookupMissing(t *testing.T) {
	s, ok := States().Lookup("XX")
	if ok {
		t.Fatal("expected XX to be absent")
	}
	if s.Code != "" {
		t.Errorf("expected zero value, got %+v", s)
	}
	if States().Has("XX") {
		t.Error("Has(XX) should be false")
	}
}

func TestTable_ByGroup(t *testing.T) {
	nw := States().ByGroup(ZoneNorthWest)
	if len(nw) != 7 {
		t.Fatalf("expected 7 North West states, got %d", len(nw))
	}
	for _, s := range nw {
		if s.Zone != ZoneNorthWest {
			t.Errorf("state %s is in zone %s", s.Code, s.Zone)
		}
	}
	if got := States().ByGroup("ZZ"); len(got) != 0 {
		t.Errorf("expected no rows for unknown zone, got %d", len(got))
	}
}

func TestTable_Groups(t *testing.T) {
	groups := States().Groups()
	if len(groups) != len(Zones()) {
		t.Fatalf("expected %d zones, got %v", len(Zones()), groups)
	}
}

func TestTable_AllReturnsCopy(t *testing.T) {
	rows := States().All()
	rows[0].Name = "mutated"
	first, _ := States().Lookup(rows[0].Code)
	if first.Name == "mutated" {
		t.Fatal("All() must not expose internal storage")
	}
}

func TestTable_TopSortedDescending(t *testing.T) {
	metric, _ := CountryMetric(MetricIncidence)
	top := Countries().Top(3, metric)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].Code != "BF" {
		t.Errorf("expected Burkina Faso first, got %s", top[0].Code)
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Incidence < top[i].Incidence {
			t.Errorf("not sorted at %d: %v < %v", i, top[i-1].Incidence, top[i].Incidence)
		}
	}
}

func TestTable_TopMoreThanLen(t *testing.T) {
	metric, _ := CountryMetric(MetricPopulation)
	top := Countries().Top(100, metric)
	if len(top) != Countries().Len() {
		t.Fatalf("expected all %d countries, got %d", Countries().Len(), len(top))
	}
}

func TestTable_TopZero(t *testing.T) {
	metric, _ := CountryMetric(MetricMortality)
	if got := Countries().Top(0, metric); len(got) != 0 {
		t.Errorf("expected empty, got %d", len(got))
	}
}

func TestNewTable_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate code")
		}
	}()
	NewTable([]State{{Code: "AA"}, {Code: "AA"}})
}

func TestCountryMetric_Unknown(t *testing.T) {
	if _, ok := CountryMetric("gdp"); ok {
		t.Error("expected unknown metric to be rejected")
	}
}
