package pipeline

import (
	"sort"
	"strings"

	"taxdocpipeline/internal/models"
)

const (
	unclassifiedCode       = "9999"
	confidenceDivisor       = 15.0
	confidenceAcceptMinimum = 0.3
	blankPageTextMinimum    = 30
)

// meaningfulVocabulary is the fixed set of terms that keep an otherwise
// short page out of the blank-page guard - any one hit is enough to
// prove the page carries real content worth classifying.
var meaningfulVocabulary = []string{
	"申告書", "受信通知", "納付情報", "法人税", "消費税", "都道府県民税", "市民税", "事業税",
}

var splitTempMarkers = []string{"_split_", "_tmp_", "_temp_", "__page"}

// IsBlankPage applies the orchestrator's blank-page guard: a page is
// dropped before classification when its text is short, contains none
// of the meaningful vocabulary, and its filename carries a split/temp
// marker left over from page extraction.
func IsBlankPage(normText, filename string) bool {
	if len([]rune(normText)) >= blankPageTextMinimum {
		return false
	}
	for _, term := range meaningfulVocabulary {
		if strings.Contains(normText, term) {
			return false
		}
	}
	for _, marker := range splitTempMarkers {
		if strings.Contains(filename, marker) {
			return true
		}
	}
	return false
}

// Classify runs the two-pass classifier against already-normalized page
// text and filename, returning the pre-overlay Classification Result.
// Matched-keyword ordering is deterministic: rules are evaluated in
// their fixed declaration order, and keywords within a rule in their
// declared order.
func Classify(normText, normFilename string) models.ClassifyResult {
	combined := normText + " " + normFilename

	if code, ok := highestPriorityPass(combined); ok {
		return models.ClassifyResult{Code: code, Score: 1.0}
	}

	return standardPass(normText, normFilename)
}

// highestPriorityPass evaluates rules by descending priority, ties
// broken by declaration order, and returns the first rule whose any
// AND-condition matches. Confidence for this path is always 1.0 by
// construction (the caller encodes that as the max score).
func highestPriorityPass(combined string) (string, bool) {
	order := sortedRuleIndexesByPriorityDesc()
	for _, idx := range order {
		rule := classificationRules[idx]
		for _, cond := range rule.HighestPriorityConditions {
			if matched, _ := cond.CheckMatch(combined); matched {
				return rule.Code, true
			}
		}
	}
	return "", false
}

func sortedRuleIndexesByPriorityDesc() []int {
	idxs := make([]int, len(classificationRules))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return classificationRules[idxs[i]].Priority > classificationRules[idxs[j]].Priority
	})
	return idxs
}

// standardPass scores every rule against the text and filename
// independently, combines them with the filename-score weighting,
// applies excludes (bypassed only when a rule's own AND-condition
// already matched), and returns the highest-scoring surviving rule, or
// the synthetic unclassified fallback when nothing clears the
// confidence floor.
func standardPass(text, filename string) models.ClassifyResult {
	combined := text + " " + filename

	var bestCode string
	var bestScore float64
	var runnerUpCode string
	var runnerUpScore float64

	for _, rule := range classificationRules {
		hasHighestPriority := false
		for _, cond := range rule.HighestPriorityConditions {
			if matched, _ := cond.CheckMatch(combined); matched {
				hasHighestPriority = true
				break
			}
		}

		if !hasHighestPriority && ruleExcluded(rule, text, filename) {
			continue
		}

		textScore := scoreText(rule, text)
		filenameScore := scoreFilename(rule, filename)
		total := textScore + 1.5*filenameScore

		if total > bestScore {
			runnerUpCode, runnerUpScore = bestCode, bestScore
			bestCode, bestScore = rule.Code, total
		} else if total > runnerUpScore {
			runnerUpCode, runnerUpScore = rule.Code, total
		}
	}

	confidence := bestScore / confidenceDivisor
	if confidence > 1.0 {
		confidence = 1.0
	}

	if bestCode == "" || confidence < confidenceAcceptMinimum {
		return models.ClassifyResult{Code: unclassifiedCode, Score: 0}
	}

	return models.ClassifyResult{
		Code:          bestCode,
		Score:         confidence,
		RunnerUpCode:  runnerUpCode,
		RunnerUpScore: runnerUpScore / confidenceDivisor,
	}
}

func ruleExcluded(rule Rule, text, filename string) bool {
	for _, kw := range rule.ExcludeKeywords {
		if strings.Contains(text, kw) || strings.Contains(filename, kw) {
			return true
		}
	}
	return false
}

func scoreText(rule Rule, text string) float64 {
	var score float64
	for _, kw := range rule.ExactKeywords {
		if strings.Contains(text, kw) {
			score += float64(rule.Priority) * 2
		}
	}
	for _, kw := range rule.PartialKeywords {
		if strings.Contains(text, kw) {
			score += float64(rule.Priority) * 1
		}
	}
	return score
}

func scoreFilename(rule Rule, filename string) float64 {
	var score float64
	for _, kw := range rule.FilenameKeywords {
		if strings.Contains(filename, kw) {
			score += float64(rule.Priority) * 3
		}
	}
	for _, kw := range rule.ExactKeywords {
		if strings.Contains(filename, kw) {
			score += float64(rule.Priority) * 2
		}
	}
	return score
}
