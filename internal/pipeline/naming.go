package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
)

// NamingContext supplies the jurisdiction and collision-avoidance
// inputs the composer needs beyond the classification result itself.
type NamingContext struct {
	Prefecture string
	City       string
	SetIndex   int
}

var forbiddenSuffixPattern = regexp.MustCompile(`_(?:市町村|都道府県)(?:_(\d{4}))?$`)
var forbiddenFilenameChars = regexp.MustCompile(`[<>:"|?*\\/]`)
var filenamePattern = regexp.MustCompile(`^\d{4}_[^<>:"|?*\\/]+_\d{2}(0[1-9]|1[0-2])\.pdf$`)

// NeedsUserInputError signals that the naming composer cannot produce
// a filename until an operator supplies the named field for this code.
type NeedsUserInputError struct {
	Code  string
	Field string
}

func (e *NeedsUserInputError) Error() string {
	return fmt.Sprintf("UI input required: %s for code %s", e.Field, e.Code)
}

// BuildFilename composes the final output filename for one
// classification result, applying the 1001 insurance upgrade, the
// municipal/prefectural naming templates, and the forbidden-suffix
// scrub, in that order.
func BuildFilename(overlayCode, displayCode, yymm string, ctx NamingContext) (string, error) {
	if yymm == "" {
		return "", &NeedsUserInputError{Code: displayCode, Field: "YYMM"}
	}

	finalCode := determineFinalCode(overlayCode, displayCode, ctx)
	core := buildCoreName(finalCode, ctx)
	core = removeForbiddenSuffixes(core)

	return fmt.Sprintf("%s_%s.pdf", core, yymm), nil
}

// determineFinalCode applies the overlay result, then as a last-resort
// insurance policy upgrades a bare 1001 using the jurisdiction context
// even when the overlay stage itself never ran (e.g. a 1001 survived
// because set context was missing at overlay time but appears later).
func determineFinalCode(overlayCode, displayCode string, ctx NamingContext) string {
	finalCode := displayCode
	if overlayCode != "" {
		finalCode = overlayCode
	}
	if finalCode == "1001" && ctx.Prefecture != "" {
		if upgraded, ok := PrefectureCodeMap[ctx.Prefecture]; ok && upgraded != "1001" {
			return upgraded
		}
	}
	return finalCode
}

func buildCoreName(finalCode string, ctx NamingContext) string {
	if isMunicipalTax(finalCode) {
		return buildMunicipalName(finalCode, ctx)
	}
	if isPrefectureTax(finalCode) {
		return buildPrefectureName(finalCode, ctx)
	}
	return fmt.Sprintf("%s_%s", finalCode, TitleOf(finalCode))
}

func buildMunicipalName(finalCode string, ctx NamingContext) string {
	label, ok := MunicipalityCodeMap[finalCode]
	if !ok {
		label = "市町村不詳"
	}
	if ctx.Prefecture != "" && ctx.City != "" && label == "市町村不詳" {
		label = ctx.Prefecture + ctx.City
	}
	return fmt.Sprintf("%s_%s_市町村申告書", finalCode, label)
}

func buildPrefectureName(finalCode string, ctx NamingContext) string {
	prefecture := ctx.Prefecture
	if prefecture == "" {
		prefecture = "都道府県不詳"
	}
	return fmt.Sprintf("%s_%s_都道府県申告書", finalCode, prefecture)
}

func removeForbiddenSuffixes(core string) string {
	m := forbiddenSuffixPattern.FindStringSubmatch(core)
	if m == nil {
		return core
	}
	if m[1] != "" {
		return forbiddenSuffixPattern.ReplaceAllString(core, "_"+m[1])
	}
	return forbiddenSuffixPattern.ReplaceAllString(core, "")
}

// ValidateFilename checks the output-naming contract: the
// CODE_..._YYMM.pdf shape, a plausible YYMM, and no characters the
// destination filesystem would reject.
func ValidateFilename(filename string) (bool, string) {
	if filename == "" {
		return false, "filename is empty"
	}
	if !filenamePattern.MatchString(filename) {
		return false, "does not match CODE_..._YYMM.pdf"
	}
	yymm := filename[len(filename)-8 : len(filename)-4]
	if !isValidYYMMSuffix(yymm) {
		return false, "invalid YYMM: " + yymm
	}
	if forbiddenFilenameChars.MatchString(filename) {
		return false, "contains forbidden characters"
	}
	return true, ""
}

func isValidYYMMSuffix(yymm string) bool {
	if len(yymm) != 4 {
		return false
	}
	year, err1 := strconv.Atoi(yymm[:2])
	month, err2 := strconv.Atoi(yymm[2:])
	if err1 != nil || err2 != nil {
		return false
	}
	return year >= 1 && year <= 99 && month >= 1 && month <= 12
}

// ResolveCollision appends a "_NNN" disambiguator before the .pdf
// extension when a candidate filename already exists in outputNames,
// trying NNN = 002, 003, ... until a free name is found. The first
// occurrence of a name keeps no suffix at all (collisions only bite
// the second and later writers of the same name).
func ResolveCollision(filename string, outputNames map[string]bool) string {
	if !outputNames[filename] {
		return filename
	}
	base := filename[:len(filename)-4]
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%03d.pdf", base, n)
		if !outputNames[candidate] {
			return candidate
		}
	}
}
