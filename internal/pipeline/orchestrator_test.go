package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"taxdocpipeline/internal/models"
)

// TestComposeFilename_ResolvesJurisdictionFromJobSets drives the real
// Orchestrator.ComposeFilename (not the hand-spliced scenario helper)
// against a Job Context carrying operator-entered jurisdiction sets, the
// same way Run wires it for every Doc Item. It reproduces scenarios
// S2, S3 and S6 and requires the composed filename to carry the actual
// prefecture/city, never the "不詳" placeholders.
func TestComposeFilename_ResolvesJurisdictionFromJobSets(t *testing.T) {
	cases := []struct {
		name string
		sets []JurisdictionSet
		hint string
		text string
		want string
	}{
		{
			// Scenario 2: prefecture tax return, single jurisdiction set.
			name: "scenario2_prefecture_tax",
			sets: []JurisdictionSet{{SetIndex: 1, Prefecture: "愛知県"}},
			hint: "愛知県",
			text: "法人都道府県民税・事業税・特別法人事業税申告書 愛知県東三河県税事務所",
			want: "1011_愛知県_都道府県申告書_2507.pdf",
		},
		{
			// Scenario 3: municipal tax return, where the document's own
			// text only yields a city name, not the owning prefecture.
			// SetForName must resolve it by matching City, not Prefecture.
			name: "scenario3_municipal_tax_matched_by_city",
			sets: []JurisdictionSet{{SetIndex: 1, Prefecture: "愛知県", City: "蒲郡市"}},
			hint: "蒲郡市",
			text: "法人市民税申告書 蒲郡市役所",
			want: "2001_愛知県蒲郡市_市町村申告書_2507.pdf",
		},
		{
			// Scenario 6: three jurisdiction sets on one job; the hint
			// must resolve to the matching set, not whichever is first
			// (which would wrongly resolve to Tokyo's 1001).
			name: "scenario6_third_set_among_several",
			sets: []JurisdictionSet{
				{SetIndex: 1, Prefecture: "東京都"},
				{SetIndex: 2, Prefecture: "愛知県", City: "蒲郡市"},
				{SetIndex: 3, Prefecture: "福岡県", City: "福岡市"},
			},
			hint: "福岡県",
			text: "法人都道府県民税・事業税・特別法人事業税申告書 福岡県福岡県税事務所",
			want: "1021_福岡県_都道府県申告書_2507.pdf",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jc := NewJobContext(tc.name)
			jc.SetJurisdictionSets(tc.sets)
			if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "test"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			orch := NewOrchestrator(jc, t.TempDir(), t.TempDir(), 1)

			snap := &models.Snapshot{
				NormText: NormalizeText(tc.text),
				Inferred: models.RenameFields{MunicipalCode: tc.hint},
			}

			got, _, err := orch.ComposeFilename(snap, models.DocItem{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// TestComposeFilename_UnmatchedHintFallsBackToPlaceholder confirms the
// placeholder labels are still reachable when the document's own text
// doesn't match any of the job's configured sets, distinguishing a
// genuine miss from the jurisdiction-resolution bug itself.
func TestComposeFilename_UnmatchedHintFallsBackToPlaceholder(t *testing.T) {
	jc := NewJobContext("unmatched-hint")
	jc.SetJurisdictionSets([]JurisdictionSet{{SetIndex: 1, Prefecture: "愛知県"}})
	if err := jc.SetConfirmedYYMM("2507", YYMMSourceUI, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orch := NewOrchestrator(jc, t.TempDir(), t.TempDir(), 1)
	snap := &models.Snapshot{
		NormText: NormalizeText("法人都道府県民税・事業税・特別法人事業税申告書"),
		Inferred: models.RenameFields{MunicipalCode: "北海道"},
	}

	got, _, err := orch.ComposeFilename(snap, models.DocItem{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1001_都道府県不詳_都道府県申告書_2507.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestWriteOutput_PersistsActualBytes confirms the file written to the
// output directory carries the real content handed to WriteOutput,
// never an empty stub, and that it survives the atomic temp+rename.
func TestWriteOutput_PersistsActualBytes(t *testing.T) {
	jc := NewJobContext("write-output")
	outputDir := t.TempDir()
	orch := NewOrchestrator(jc, outputDir, t.TempDir(), 1)

	want := []byte("%PDF-1.4 fake content for this test\n")
	outputNames := map[string]bool{}
	final, err := orch.WriteOutput("0001_法人税及び地方法人税申告書_2507.pdf", want, outputNames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outputDir, final))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestExtractItemBytes_FallsBackToSourceBlobOnFailure confirms a failed
// page-range trim (here, a source path that doesn't exist) still leaves
// the Doc Item with real, non-empty bytes to write out rather than
// silently producing an empty file.
func TestExtractItemBytes_FallsBackToSourceBlobOnFailure(t *testing.T) {
	jc := NewJobContext("extract-fallback")
	orch := NewOrchestrator(jc, t.TempDir(), t.TempDir(), 1)

	fallback := []byte("%PDF-1.4 whole source bundle\n")
	item := models.DocItem{
		Pages: []models.PageFingerprint{
			{SourceDocMD5: "abc", PageIndex: 0, PageMD5: "p0"},
		},
	}

	got := orch.extractItemBytes("/no/such/file.pdf", item, fallback)
	if string(got) != string(fallback) {
		t.Errorf("got %q, want fallback %q", got, fallback)
	}
}
