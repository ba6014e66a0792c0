package pipeline

import "testing"

func TestBuildFilename_NationalTax(t *testing.T) {
	name, err := BuildFilename("0001", "0001", "2507", NamingContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0001_法人税及び地方法人税申告書_2507.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestBuildFilename_PrefectureTax(t *testing.T) {
	name, err := BuildFilename("1011", "1001", "2507", NamingContext{Prefecture: "愛知県"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1011_愛知県_都道府県申告書_2507.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestBuildFilename_MunicipalTax(t *testing.T) {
	name, err := BuildFilename("2001", "2001", "2507", NamingContext{Prefecture: "愛知県", City: "蒲郡市"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "2001_愛知県蒲郡市_市町村申告書_2507.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestBuildFilename_AssetLedger(t *testing.T) {
	name, err := BuildFilename("6003", "6003", "2401", NamingContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "6003_少額減価償却資産明細表_2401.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestBuildFilename_MissingYYMM_NeedsUserInput(t *testing.T) {
	_, err := BuildFilename("0001", "0001", "", NamingContext{})
	if err == nil {
		t.Fatal("expected NeedsUserInputError, got nil")
	}
	var needsUI *NeedsUserInputError
	if !asNeedsUserInputError(err, &needsUI) {
		t.Fatalf("expected *NeedsUserInputError, got %T: %v", err, err)
	}
	if needsUI.Field != "YYMM" {
		t.Errorf("expected missing field YYMM, got %q", needsUI.Field)
	}
}

func asNeedsUserInputError(err error, target **NeedsUserInputError) bool {
	if e, ok := err.(*NeedsUserInputError); ok {
		*target = e
		return true
	}
	return false
}

func TestBareOneThousandOneUpgrade_InsurancePolicy(t *testing.T) {
	name, err := BuildFilename("", "1001", "2507", NamingContext{Prefecture: "福岡県"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1021_福岡県_都道府県申告書_2507.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestBareOneThousandOneKeptWhenNoPrefectureContext(t *testing.T) {
	name, err := BuildFilename("", "1001", "2507", NamingContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1001_法人都道府県民税・事業税・特別法人事業税申告書_2507.pdf"
	if name != want {
		t.Errorf("got %q, want %q", name, want)
	}
}

func TestRemoveForbiddenSuffixes_Idempotent(t *testing.T) {
	once := removeForbiddenSuffixes("2001_愛知県蒲郡市_市町村")
	twice := removeForbiddenSuffixes(once)
	if once != twice {
		t.Errorf("forbidden-suffix scrub not idempotent: %q then %q", once, twice)
	}
	if once != "2001_愛知県蒲郡市" {
		t.Errorf("expected trailing _市町村 stripped, got %q", once)
	}
}

func TestRemoveForbiddenSuffixes_PreservesTrailingYYMM(t *testing.T) {
	got := removeForbiddenSuffixes("1001_東京都_都道府県_2507")
	want := "1001_東京都_2507"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidateFilename_RoundTrip(t *testing.T) {
	name, err := BuildFilename("0001", "0001", "2507", NamingContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, reason := ValidateFilename(name)
	if !ok {
		t.Fatalf("expected %q to validate, got reason: %s", name, reason)
	}
}

func TestValidateFilename_RejectsBadMonth(t *testing.T) {
	ok, _ := ValidateFilename("0001_法人税及び地方法人税申告書_2513.pdf")
	if ok {
		t.Error("expected month 13 to be rejected")
	}
}

func TestValidateFilename_RejectsForbiddenChars(t *testing.T) {
	ok, _ := ValidateFilename("0001_法人税/地方法人税申告書_2507.pdf")
	if ok {
		t.Error("expected filename containing '/' to be rejected")
	}
}

func TestResolveCollision_FirstWriterKeepsBareName(t *testing.T) {
	names := map[string]bool{}
	got := ResolveCollision("0001_法人税及び地方法人税申告書_2507.pdf", names)
	if got != "0001_法人税及び地方法人税申告書_2507.pdf" {
		t.Errorf("first writer should keep bare name, got %q", got)
	}
}

func TestResolveCollision_SecondWriterGetsSuffix(t *testing.T) {
	base := "0001_法人税及び地方法人税申告書_2507.pdf"
	names := map[string]bool{base: true}
	got := ResolveCollision(base, names)
	want := "0001_法人税及び地方法人税申告書_2507_002.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveCollision_SkipsOccupiedSuffixes(t *testing.T) {
	base := "0001_法人税及び地方法人税申告書_2507.pdf"
	names := map[string]bool{
		base: true,
		"0001_法人税及び地方法人税申告書_2507_002.pdf": true,
	}
	got := ResolveCollision(base, names)
	want := "0001_法人税及び地方法人税申告書_2507_003.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
