package pipeline

import (
	"taxdocpipeline/internal/models"
	"testing"
)

func fp(md5 string, idx int) models.PageFingerprint {
	return models.PageFingerprint{SourceDocMD5: md5, PageIndex: idx, PageMD5: md5 + "_p" + string(rune('0'+idx))}
}

func TestIsBundle_ReceiptPlusPaymentNoticesBundle(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("法人税及び地方法人税申告書 受信通知")},
		{Fingerprint: fp("abc", 1), NormText: NormalizeText("法人税 納付情報")},
	}
	if !IsBundle(pages) {
		t.Error("receipt notice + payment notice across pages should be detected as a bundle")
	}
}

func TestIsBundle_SingleCategoryNotBundle(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("法人税及び地方法人税申告書 差引確定法人税額")},
		{Fingerprint: fp("abc", 1), NormText: NormalizeText("事業年度分 申告書 続き")},
	}
	if IsBundle(pages) {
		t.Error("single declaration-category pages should not be treated as a bundle")
	}
}

func TestIsBundle_NoSplitTitleWins(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("固定資産台帳 受信通知")},
		{Fingerprint: fp("abc", 1), NormText: NormalizeText("納付情報")},
	}
	if IsBundle(pages) {
		t.Error("a page carrying a no-split ledger title must veto the whole bundle")
	}
}

func TestIsBundle_CodeLevelExcludeWins(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("少額減価償却資産明細表")},
		{Fingerprint: fp("abc", 1), NormText: NormalizeText("受信通知 納付情報")},
	}
	if IsBundle(pages) {
		t.Error("code-level excluded pages (6003) must veto the whole bundle")
	}
}

func TestSplitBundle_GroupsContiguousSameCodeRuns(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("法人都道府県民税・事業税・特別法人事業税申告書 愛知県東三河県税事務所")},
		{Fingerprint: fp("abc", 1), NormText: NormalizeText("申告受付完了通知 蒲郡市役所")},
		{Fingerprint: fp("abc", 2), NormText: NormalizeText("申告受付完了通知 蒲郡市役所")},
	}
	items := SplitBundle("abc", pages)
	if len(items) != 2 {
		t.Fatalf("expected 2 doc items, got %d", len(items))
	}
	if items[0].PageStart != 0 || items[0].PageEnd != 0 {
		t.Errorf("first item should span page 0 only, got [%d,%d]", items[0].PageStart, items[0].PageEnd)
	}
	if items[1].PageStart != 1 || items[1].PageEnd != 2 {
		t.Errorf("second item should span pages 1-2, got [%d,%d]", items[1].PageStart, items[1].PageEnd)
	}
}

func TestSplitBundle_IdentityDeterministic(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: NormalizeText("法人税及び地方法人税申告書")},
	}
	first := SplitBundle("abc", pages)
	second := SplitBundle("abc", pages)
	if first[0].ID != second[0].ID {
		t.Errorf("splitting identical pages twice must produce identical doc item IDs: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestSingleDocItem_SpansAllPages(t *testing.T) {
	pages := []PageInput{
		{Fingerprint: fp("abc", 0), NormText: "一ページ目"},
		{Fingerprint: fp("abc", 1), NormText: "二ページ目"},
	}
	item := SingleDocItem("abc", pages)
	if item.PageStart != 0 || item.PageEnd != 1 {
		t.Errorf("expected span [0,1], got [%d,%d]", item.PageStart, item.PageEnd)
	}
	if len(item.Pages) != 2 {
		t.Errorf("expected 2 fingerprints, got %d", len(item.Pages))
	}
}

// TestInvariant_ClassificationIndependentOfSplitPath reproduces
// split-independence: a single-page document classifies to the same code
// whether it arrives as the sole item of a non-bundle source or as one
// item the splitter carved out of a larger bundle.
func TestInvariant_ClassificationIndependentOfSplitPath(t *testing.T) {
	page := PageInput{
		Fingerprint: fp("abc", 0),
		NormText:    NormalizeText("少額減価償却資産明細表"),
	}

	single := SingleDocItem("abc", []PageInput{page})
	bundled := SplitBundle("abc", []PageInput{page})

	singleCode := Classify(single.RawText, "").Code
	bundledCode := Classify(bundled[0].RawText, "").Code

	if singleCode != bundledCode {
		t.Errorf("split-path dependent classification: single=%s bundled=%s", singleCode, bundledCode)
	}
	if singleCode != "6003" {
		t.Errorf("expected code 6003, got %s", singleCode)
	}
}
