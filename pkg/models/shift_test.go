package models

import "testing"

func TestParseShiftKey(t *testing.T) {
	shift, err := ParseShiftKey("2026-03-14-setup-day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shift.Date != "2026-03-14" || shift.Stage != StageSetup || shift.Period != PeriodDay {
		t.Errorf("unexpected shift parsed: %+v", shift)
	}
	if shift.Key() != "2026-03-14-setup-day" {
		t.Errorf("Key() did not round-trip, got %q", shift.Key())
	}
}

func TestParseShiftKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"2026-03-14",
		"2026-03-14-setup",
		"2026-03-14-build-day",
		"2026-03-14-setup-morning",
		"not-a-date-setup-day",
	}
	for _, key := range cases {
		if _, err := ParseShiftKey(key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestShiftOrdering(t *testing.T) {
	shifts := []Shift{
		{Date: "2026-03-15", Stage: StageSetup, Period: PeriodDay},
		{Date: "2026-03-14", Stage: StageTeardown, Period: PeriodNight},
		{Date: "2026-03-14", Stage: StageSetup, Period: PeriodNight},
		{Date: "2026-03-14", Stage: StageSetup, Period: PeriodDay},
		{Date: "2026-03-14", Stage: StageEvent, Period: PeriodDay},
	}

	SortShifts(shifts)

	want := []string{
		"2026-03-14-setup-day",
		"2026-03-14-setup-night",
		"2026-03-14-event-day",
		"2026-03-14-teardown-night",
		"2026-03-15-setup-day",
	}
	for i, key := range want {
		if shifts[i].Key() != key {
			t.Errorf("position %d: got %q, want %q", i, shifts[i].Key(), key)
		}
	}
}

func TestReferenceResultThreshold(t *testing.T) {
	full := ReferenceResult{Successes: 3, Failures: 0}
	partial := ReferenceResult{Successes: 1, Failures: 2}
	failed := ReferenceResult{Successes: 0, Failures: 3}

	if !full.Resolved() || full.Partial() {
		t.Errorf("all-shift success should be resolved and not partial")
	}
	if !partial.Resolved() {
		t.Errorf("a single shift success must count as resolved")
	}
	if !partial.Partial() {
		t.Errorf("mixed outcome must be flagged partial")
	}
	if failed.Resolved() || failed.Partial() {
		t.Errorf("zero successes must be neither resolved nor partial")
	}
}
