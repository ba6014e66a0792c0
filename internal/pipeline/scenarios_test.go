package pipeline

import "testing"

// resolveAndName runs the classify -> overlay -> period -> naming chain
// exactly as the orchestrator wires it for one page of normalized text.
func resolveAndName(t *testing.T, jc *JobContext, normText string, set SetContext, inferredYYMM string) (string, error) {
	t.Helper()
	result := Classify(normText, "")
	overlay := ApplyOverlay(result.DisplayCode(), set)
	period, err := ResolvePeriod(jc, result.DisplayCode(), inferredYYMM)
	if err != nil {
		return "", err
	}
	return BuildFilename(overlay.Code, result.DisplayCode(), period.YYMM, NamingContext{
		Prefecture: set.Prefecture,
		City:       set.City,
	})
}

func TestScenario1_NationalTaxReturn(t *testing.T) {
	jc := NewJobContext("s1")
	if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "scenario"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := resolveAndName(t, jc, NormalizeText("法人税及び地方法人税申告書 差引確定法人税額"), SetContext{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0001_法人税及び地方法人税申告書_2507.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenario2_PrefectureTaxReturn(t *testing.T) {
	jc := NewJobContext("s2")
	if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "scenario"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := SetContext{Prefecture: "愛知県"}
	got, err := resolveAndName(t, jc, NormalizeText("法人都道府県民税・事業税・特別法人事業税申告書 愛知県東三河県税事務所"), set, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1011_愛知県_都道府県申告書_2507.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenario3_MunicipalTaxReturn(t *testing.T) {
	jc := NewJobContext("s3")
	if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "scenario"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := SetContext{Prefecture: "愛知県", City: "蒲郡市"}
	got, err := resolveAndName(t, jc, NormalizeText("法人市民税申告書 蒲郡市役所"), set, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "2001_愛知県蒲郡市_市町村申告書_2507.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenario4_AssetLedgerRequiresUIForcedPeriod(t *testing.T) {
	jc := NewJobContext("s4")
	if err := jc.SetConfirmedYYMM("2401", YYMMSourceUI, "scenario"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := resolveAndName(t, jc, NormalizeText("少額減価償却資産明細表"), SetContext{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "6003_少額減価償却資産明細表_2401.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenario5_NeedsUIWhenNoPeriodResolvable(t *testing.T) {
	jc := NewJobContext("s5")
	_, err := resolveAndName(t, jc, NormalizeText("消費税及び地方消費税申告書 課税標準額"), SetContext{}, "")
	if err == nil {
		t.Fatal("expected NEEDS_UI outcome (no confirmed period, no detectable period)")
	}
	if _, ok := err.(*NeedsUserInputError); !ok {
		t.Fatalf("expected *NeedsUserInputError, got %T: %v", err, err)
	}
}

func TestScenario6_BundleSplitSequencedReceiptNotices(t *testing.T) {
	jc := NewJobContext("s6")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "東京都"},
		{SetIndex: 2, Prefecture: "愛知県", City: "蒲郡市"},
		{SetIndex: 3, Prefecture: "福岡県", City: "福岡市"},
	})
	if err := jc.SetConfirmedYYMM("2508", YYMMSourceUI, "scenario"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq := NewSequencer(jc)

	aichiPrefCode, err := seq.AssignPrefSeq("愛知県")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fukuokaPrefCode, err := seq.AssignPrefSeq("福岡県")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aichiCityCode, err := seq.AssignCitySeq("愛知県", "蒲郡市")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fukuokaCityCode, err := seq.AssignCitySeq("福岡県", "福岡市")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	period, err := ResolvePeriod(jc, aichiPrefCode, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		code string
		set  NamingContext
		want string
	}{
		{aichiPrefCode, NamingContext{Prefecture: "愛知県"}, "1013_愛知県_都道府県申告書_2508.pdf"},
		{fukuokaPrefCode, NamingContext{Prefecture: "福岡県"}, "1023_福岡県_都道府県申告書_2508.pdf"},
		{aichiCityCode, NamingContext{Prefecture: "愛知県", City: "蒲郡市"}, "2003_愛知県蒲郡市_市町村申告書_2508.pdf"},
		{fukuokaCityCode, NamingContext{Prefecture: "福岡県", City: "福岡市"}, "2013_福岡県福岡市_市町村申告書_2508.pdf"},
	}
	for _, c := range cases {
		got, err := BuildFilename(c.code, c.code, period.YYMM, c.set)
		if err != nil {
			t.Fatalf("unexpected error for code %s: %v", c.code, err)
		}
		if got != c.want {
			t.Errorf("code %s: got %q, want %q", c.code, got, c.want)
		}
	}
}

// TestInvariant_FilenameDeterminism reproduces the same classify/overlay/
// period/naming chain twice over identical inputs and requires byte-for-
// byte identical output.
func TestInvariant_FilenameDeterminism(t *testing.T) {
	run := func() string {
		jc := NewJobContext("determinism")
		if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "scenario"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := resolveAndName(t, jc, NormalizeText("法人市民税申告書 蒲郡市役所"), SetContext{Prefecture: "愛知県", City: "蒲郡市"}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}
	first := run()
	second := run()
	if first != second {
		t.Errorf("expected deterministic output, got %q then %q", first, second)
	}
}

// TestInvariant_NoiseSuppressionOutsideLocalTax confirms the overlay
// engine is a pure no-op for non-LOCAL_TAX codes, leaving the classifier's
// display code untouched regardless of jurisdiction context supplied.
func TestInvariant_NoiseSuppressionOutsideLocalTax(t *testing.T) {
	set := SetContext{Prefecture: "愛知県", City: "蒲郡市"}
	overlay := ApplyOverlay("0001", set)
	if !overlay.Skipped || overlay.Code != "" {
		t.Errorf("expected overlay to skip NATIONAL_TAX code untouched, got %+v", overlay)
	}
}
