package snapshot

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		Seed:       42,
		AsOf:       time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		Cases:      40,
		Facilities: 30,
		PPMVs:      20,
	}
}

func TestBuild_Sizes(t *testing.T) {
	s := Build(testOptions())
	if s.Seed != 42 {
		t.Errorf("expected seed 42, got %d", s.Seed)
	}
	if len(s.Cases) != 40 || len(s.Facilities) != 30 || len(s.PPMVs) != 20 {
		t.Errorf("unexpected sizes: %d cases, %d facilities, %d vendors", len(s.Cases), len(s.Facilities), len(s.PPMVs))
	}
	if len(s.Monthly) == 0 || len(s.Weekly) == 0 || len(s.Burden) == 0 || len(s.Budget) == 0 {
		t.Error("expected every dataset to be populated")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(testOptions())
	b := Build(testOptions())
	if !reflect.DeepEqual(a, b) {
		t.Error("same options should produce identical snapshots")
	}
}

func TestBuild_ResizingOneDatasetKeepsOthers(t *testing.T) {
	opts := testOptions()
	a := Build(opts)
	opts.Cases = 10
	b := Build(opts)
	if !reflect.DeepEqual(a.Facilities, b.Facilities) {
		t.Error("facility reports changed when only case count changed")
	}
}

func TestBuild_ZeroSeedRecordsEffectiveSeed(t *testing.T) {
	opts := testOptions()
	opts.Seed = 0
	s := Build(opts)
	if s.Seed == 0 {
		t.Fatal("expected effective seed to be recorded")
	}
	opts.Seed = s.Seed
	if !reflect.DeepEqual(s.Cases, Build(opts).Cases) {
		t.Error("replaying the effective seed should reproduce the snapshot")
	}
}

func TestSummary_Nigeria(t *testing.T) {
	text, err := Build(testOptions()).Summary("ng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Nigeria", "Highest-burden states", "Outbreak alerts", "reporting completeness", "Budget absorption"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestSummary_OtherCountry(t *testing.T) {
	text, err := Build(testOptions()).Summary("GH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Ghana") {
		t.Errorf("expected Ghana in summary, got %q", text)
	}
	if strings.Contains(text, "Highest-burden states") {
		t.Error("sub-national detail should be Nigeria only")
	}
}

func TestSummary_UnknownCountry(t *testing.T) {
	_, err := Build(testOptions()).Summary("ZZ")
	if !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("expected ErrUnknownCountry, got %v", err)
	}
}
