package pipeline

import "testing"

func TestDetectPeriodFromText_Reiwa(t *testing.T) {
	got := DetectPeriodFromText("令和7年7月分の申告")
	if got != "2507" {
		t.Errorf("got %q, want 2507", got)
	}
}

func TestDetectPeriodFromText_GregorianKanjiMonth(t *testing.T) {
	got := DetectPeriodFromText("2024年1月決算")
	if got != "2401" {
		t.Errorf("got %q, want 2401", got)
	}
}

func TestDetectPeriodFromText_DashMonth(t *testing.T) {
	got := DetectPeriodFromText("対象期間 2025-8")
	if got != "2508" {
		t.Errorf("got %q, want 2508", got)
	}
}

func TestDetectPeriodFromText_NoMatch(t *testing.T) {
	if got := DetectPeriodFromText("期間の記載がない書類"); got != "" {
		t.Errorf("expected no match, got %q", got)
	}
}

func TestNormalizeUIYYMM(t *testing.T) {
	cases := map[string]string{
		"2507":     "2507",
		"25/07":    "2507",
		"25-07":    "2507",
		"２５０７":  "2507",
		"202507":   "2507",
		"2025/07":  "2507",
	}
	for input, want := range cases {
		if got := NormalizeUIYYMM(input); got != want {
			t.Errorf("NormalizeUIYYMM(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolvePeriod_UIForcedRequiresConfirmed(t *testing.T) {
	jc := NewJobContext("job-period-forced")
	if _, err := ResolvePeriod(jc, "6003", "2401"); err == nil {
		t.Fatal("expected error for UI-forced code without confirmed period")
	}
}

func TestResolvePeriod_UIForcedUsesConfirmed(t *testing.T) {
	jc := NewJobContext("job-period-forced-ok")
	if err := jc.SetConfirmedYYMM("2401", YYMMSourceUI, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ResolvePeriod(jc, "6003", "9999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.YYMM != "2401" || result.Source != PeriodSourceUIForced {
		t.Errorf("got %+v", result)
	}
}

func TestResolvePeriod_UIConfirmedBeatsDetected(t *testing.T) {
	jc := NewJobContext("job-period-ui-over-detected")
	if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ResolvePeriod(jc, "0001", "2401")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.YYMM != "2507" || result.Source != PeriodSourceUI {
		t.Errorf("got %+v, want UI-confirmed 2507 to win over detected 2401", result)
	}
}

func TestResolvePeriod_FallsBackToDetected(t *testing.T) {
	jc := NewJobContext("job-period-detected")
	result, err := ResolvePeriod(jc, "0001", "2401")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.YYMM != "2401" || result.Source != PeriodSourceDetected {
		t.Errorf("got %+v", result)
	}
}

func TestResolvePeriod_NoneWhenNothingResolves(t *testing.T) {
	jc := NewJobContext("job-period-none")
	result, err := ResolvePeriod(jc, "0001", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != PeriodSourceNone || result.YYMM != "" {
		t.Errorf("got %+v", result)
	}
}
