package pipeline

import "testing"

func TestValidateTokyoConstraint_FatalWhenNotSetOne(t *testing.T) {
	jc := NewJobContext("job-tokyo-fatal")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "愛知県", City: "蒲郡市"},
		{SetIndex: 2, Prefecture: "東京都"},
	})
	if err := jc.ValidateTokyoConstraint(); err == nil {
		t.Fatal("expected fatal error when Tokyo is not Set #1")
	}
}

func TestValidateTokyoConstraint_OKWhenSetOne(t *testing.T) {
	jc := NewJobContext("job-tokyo-ok")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "東京都"},
		{SetIndex: 2, Prefecture: "愛知県", City: "蒲郡市"},
	})
	if err := jc.ValidateTokyoConstraint(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssignPrefSeq_SequenceFormula(t *testing.T) {
	jc := NewJobContext("job-pref-seq")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "愛知県", City: "蒲郡市"},
		{SetIndex: 2, Prefecture: "福岡県", City: "福岡市"},
	})
	seq := NewSequencer(jc)

	got, err := seq.AssignPrefSeq("愛知県")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1003" {
		t.Errorf("set #1 prefecture: got %s, want 1003", got)
	}

	got2, err := seq.AssignPrefSeq("福岡県")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2 != "1013" {
		t.Errorf("set #2 prefecture: got %s, want 1013", got2)
	}
}

func TestAssignPrefSeq_Idempotent(t *testing.T) {
	jc := NewJobContext("job-pref-idem")
	jc.SetJurisdictionSets([]JurisdictionSet{{SetIndex: 1, Prefecture: "愛知県"}})
	seq := NewSequencer(jc)

	first, _ := seq.AssignPrefSeq("愛知県")
	second, _ := seq.AssignPrefSeq("愛知県")
	if first != second {
		t.Errorf("expected idempotent assignment, got %s then %s", first, second)
	}
}

func TestAssignPrefSeq_FatalTokyoPropagates(t *testing.T) {
	jc := NewJobContext("job-pref-tokyo-fatal")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "愛知県"},
		{SetIndex: 2, Prefecture: "東京都"},
	})
	seq := NewSequencer(jc)
	if _, err := seq.AssignPrefSeq("愛知県"); err == nil {
		t.Fatal("expected Tokyo-position fatal error to block any assignment")
	}
}

// TestTokyoSkipAdjustment reproduces the literal three-set scenario: Tokyo
// at set #1 with no city, Aichi/Gamagori at set #2, Fukuoka/Fukuoka at set
// #3. Tokyo never claims a municipal slot, so city numbering shifts down
// by one relative to the raw set index.
func TestTokyoSkipAdjustment(t *testing.T) {
	jc := NewJobContext("job-tokyo-skip")
	jc.SetJurisdictionSets([]JurisdictionSet{
		{SetIndex: 1, Prefecture: "東京都"},
		{SetIndex: 2, Prefecture: "愛知県", City: "蒲郡市"},
		{SetIndex: 3, Prefecture: "福岡県", City: "福岡市"},
	})
	seq := NewSequencer(jc)

	gamagori, err := seq.AssignCitySeq("愛知県", "蒲郡市")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gamagori != "2003" {
		t.Errorf("Gamagori (raw set #2, adjusted #1): got %s, want 2003", gamagori)
	}

	fukuoka, err := seq.AssignCitySeq("福岡県", "福岡市")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fukuoka != "2013" {
		t.Errorf("Fukuoka (raw set #3, adjusted #2): got %s, want 2013", fukuoka)
	}

	pref, err := seq.AssignPrefSeq("福岡県")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref != "1013" {
		t.Errorf("Fukuoka prefecture receipt notice uses raw set index, unaffected by city-skip: got %s, want 1013", pref)
	}
}

func TestIsReceiptNotice(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"1003", true},
		{"1013", true},
		{"2003", true},
		{"2023", true},
		{"1001", false},
		{"2001", false},
		{"9999", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsReceiptNotice(c.code); got != c.want {
			t.Errorf("IsReceiptNotice(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}
