package pipeline

import (
	"strings"

	"taxdocpipeline/internal/models"
)

// codeLevelSplitExclude inhibits splitting for these base codes even
// when multiple split-indicator categories appear, because these
// document types are themselves intrinsically multi-page single
// documents (asset schedules, payment-tax summaries).
//
// Grounded on spec.md's bundle-splitter policy. The unified classifier
// this is derived from additionally excludes 5003; spec.md's six-code
// set is authoritative here and 5003 is omitted deliberately (see
// DESIGN.md).
var codeLevelSplitExclude = map[string]bool{
	"6001": true, "6002": true, "6003": true,
	"5001": true, "5002": true, "5004": true,
}

// PageInput is one rendered page handed to the bundle splitter: its
// fingerprint, its normalized text, and the code the classifier would
// assign to it standing alone (used only to decide split-or-not, never
// to pick the final code - the real Classifier pass runs per Doc Item
// afterward).
type PageInput struct {
	Fingerprint models.PageFingerprint
	NormText    string
}

// IsBundle decides whether a source PDF's pages form a bundle of
// independent sub-documents, applying, in order: the global no-split
// title exclude, the code-level exclude, then a category count over
// split-indicating keywords across all pages.
func IsBundle(pages []PageInput) bool {
	for _, p := range pages {
		for _, title := range noSplitTitles {
			if strings.Contains(p.NormText, title) {
				return false
			}
		}
	}

	if baseCode := dominantCodeLevelExclude(pages); baseCode != "" {
		return false
	}

	categories := map[string]bool{}
	for _, p := range pages {
		for category, keywords := range splitIndicatorCategories {
			for _, kw := range keywords {
				if strings.Contains(p.NormText, kw) {
					categories[category] = true
					break
				}
			}
		}
	}
	return len(categories) >= 2
}

// dominantCodeLevelExclude returns a non-empty base code when any
// page's standalone classification falls in the code-level exclude set,
// which inhibits the whole bundle regardless of category count.
func dominantCodeLevelExclude(pages []PageInput) string {
	for _, p := range pages {
		result := Classify(p.NormText, "")
		if codeLevelSplitExclude[result.Code] {
			return result.Code
		}
	}
	return ""
}

// SplitBundle groups a bundle's pages into Doc Items. Each contiguous
// run of pages sharing the same standalone classification becomes one
// Doc Item; identity carries the stable (source_doc_md5, page_index,
// fingerprint) tuple of its pages so downstream naming is invariant
// under split vs. non-split.
func SplitBundle(sourceDocMD5 string, pages []PageInput) []models.DocItem {
	if len(pages) == 0 {
		return nil
	}

	var items []models.DocItem
	start := 0
	currentCode := Classify(pages[0].NormText, "").Code

	flush := func(end int) {
		item := models.DocItem{
			PageStart: start,
			PageEnd:   end,
		}
		for i := start; i <= end; i++ {
			item.Pages = append(item.Pages, pages[i].Fingerprint)
		}
		item.RawText = joinPageText(pages[start : end+1])
		item.ID = deriveDocItemID(sourceDocMD5, item.Pages)
		items = append(items, item)
	}

	for i := 1; i < len(pages); i++ {
		code := Classify(pages[i].NormText, "").Code
		if code != currentCode {
			flush(i - 1)
			start = i
			currentCode = code
		}
	}
	flush(len(pages) - 1)

	return items
}

// SingleDocItem synthesizes the pseudo Doc Item for a non-bundle input:
// one item spanning all pages at page_index 0, identified by the file
// MD5 and a text-derived SHA1, so the same naming code path downstream
// is used whether or not the splitter actually ran.
func SingleDocItem(sourceFileMD5 string, pages []PageInput) models.DocItem {
	var fingerprints []models.PageFingerprint
	for _, p := range pages {
		fingerprints = append(fingerprints, p.Fingerprint)
	}
	item := models.DocItem{
		Pages:     fingerprints,
		PageStart: 0,
		PageEnd:   len(pages) - 1,
		RawText:   joinPageText(pages),
	}
	textSHA1 := ComputeTextSHA1(item.RawText)
	item.ID = models.DocItemID(sourceFileMD5 + "_" + textSHA1)
	return item
}

func joinPageText(pages []PageInput) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.NormText)
	}
	return b.String()
}

func deriveDocItemID(sourceDocMD5 string, pages []models.PageFingerprint) models.DocItemID {
	var b strings.Builder
	b.WriteString(sourceDocMD5)
	for _, p := range pages {
		b.WriteByte('_')
		b.WriteString(p.PageMD5)
	}
	return models.DocItemID(ComputeTextSHA1(b.String()))
}
