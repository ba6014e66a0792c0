package pipeline

import (
	"log"
	"strings"

	"taxdocpipeline/internal/models"
)

// SetContext carries the jurisdiction an operator assigned to one
// "set" (a prefecture/city pairing) in the job's UI, together with its
// 1-based position among the sets the operator entered.
type SetContext struct {
	Prefecture string
	City       string
	SetIndex   int
}

// OverlayResult is the outcome of applying the jurisdiction overlay to
// one classification code.
type OverlayResult struct {
	Code    string
	Reason  string
	Skipped bool
}

// ApplyOverlay upgrades a LOCAL_TAX base code to a jurisdiction-specific
// code. Every other domain is a deliberate no-op: the overlay engine
// only ever touches prefecture/municipal tax codes, and callers outside
// LOCAL_TAX should not even log the decision beyond a single
// suppressed-by-domain line (noise suppression).
func ApplyOverlay(baseCode string, set SetContext) OverlayResult {
	domain := ResolveDomain(baseCode)
	if domain != models.DomainLocalTax {
		log.Printf("overlay=SKIPPED(domain=%s)", domain)
		return OverlayResult{Code: "", Reason: string(domain), Skipped: true}
	}

	if isPrefectureTax(baseCode) {
		return applyPrefectureOverlay(baseCode, set)
	}
	if isMunicipalTax(baseCode) {
		return applyMunicipalOverlay(baseCode, set)
	}
	return OverlayResult{Code: baseCode, Reason: "OTHER_LOCAL_TAX"}
}

func applyPrefectureOverlay(baseCode string, set SetContext) OverlayResult {
	if set.Prefecture == "" {
		return OverlayResult{Code: baseCode, Reason: "NO_PREFECTURE"}
	}
	if upgraded, ok := PrefectureCodeMap[set.Prefecture]; ok {
		log.Printf("prefecture code upgrade: %s -> %s (%s)", baseCode, upgraded, set.Prefecture)
		return OverlayResult{Code: upgraded, Reason: "PREF=" + set.Prefecture}
	}
	return OverlayResult{Code: baseCode, Reason: "UNMAPPED_PREF=" + set.Prefecture}
}

func applyMunicipalOverlay(baseCode string, set SetContext) OverlayResult {
	if set.City != "" {
		return OverlayResult{Code: baseCode, Reason: "MUNICIPAL=" + set.City}
	}
	return OverlayResult{Code: baseCode, Reason: "MUNICIPAL_NO_CITY"}
}

func isPrefectureTax(code string) bool {
	return strings.HasPrefix(code, "10")
}

func isMunicipalTax(code string) bool {
	return strings.HasPrefix(code, "20")
}
