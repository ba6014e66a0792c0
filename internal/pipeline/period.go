package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"taxdocpipeline/internal/utils"
)

// PeriodSource records which precedence tier actually supplied a
// resolved period value, for the audit log and for UI-forced-code
// enforcement.
type PeriodSource string

const (
	PeriodSourceUIForced PeriodSource = "UI_FORCED"
	PeriodSourceUI       PeriodSource = "UI"
	PeriodSourceDetected PeriodSource = "DETECTED"
	PeriodSourceNone     PeriodSource = "NONE"
)

// PeriodResult is the resolved YYMM period for one document together
// with the precedence tier that produced it.
type PeriodResult struct {
	YYMM   string
	Source PeriodSource
}

var (
	reiwaPattern   = regexp.MustCompile(`令和(\d{1,2})年(\d{1,2})月`)
	yyyyKanjiMonth = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	yyyyDashMonth  = regexp.MustCompile(`(\d{4})-(\d{1,2})`)

	fullwidthDigitFold = strings.NewReplacer(
		"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
		"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	)
)

// DetectPeriodFromText applies the document heuristic's limited pattern
// set to already-normalized page text, in precedence order: Reiwa era
// dates first, then Gregorian `YYYY年MM月`, then `YYYY-MM`, then any
// full calendar date embedded in the text. The Reiwa year converts to
// the Gregorian two-digit year via N+18 (Reiwa 1 = 2019). Returns "" when
// nothing matches.
func DetectPeriodFromText(normText string) string {
	if m := reiwaPattern.FindStringSubmatch(normText); m != nil {
		reiwaYear, err1 := strconv.Atoi(m[1])
		month, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && month >= 1 && month <= 12 {
			yy := reiwaYear + 18
			if yy >= 1 && yy <= 99 {
				return fmt.Sprintf("%02d%02d", yy, month)
			}
		}
	}
	if m := yyyyKanjiMonth.FindStringSubmatch(normText); m != nil {
		if yymm := yymmFromFullYear(m[1], m[2]); yymm != "" {
			return yymm
		}
	}
	if m := yyyyDashMonth.FindStringSubmatch(normText); m != nil {
		if yymm := yymmFromFullYear(m[1], m[2]); yymm != "" {
			return yymm
		}
	}
	if ymd := utils.NormalizeDateYMD(normText); ymd != "" {
		if yymm := yymmFromFullYear(ymd[0:4], ymd[5:7]); yymm != "" {
			return yymm
		}
	}
	return ""
}

func yymmFromFullYear(yearStr, monthStr string) string {
	year, err1 := strconv.Atoi(yearStr)
	month, err2 := strconv.Atoi(monthStr)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return ""
	}
	yy := year % 100
	return fmt.Sprintf("%02d%02d", yy, month)
}

// NormalizeUIYYMM applies the operator-input normalization that must
// run before validity checking: fold fullwidth digits, strip `/`, `-`,
// and spaces, then accept either a 4-digit YYMM or a 6-digit YYYYMM
// form (the latter collapsed by dropping the century).
func NormalizeUIYYMM(raw string) string {
	s := fullwidthDigitFold.Replace(raw)
	s = strings.NewReplacer("/", "", "-", "", " ", "", "　", "").Replace(s)
	switch len(s) {
	case 4:
		return s
	case 6:
		return s[2:]
	default:
		return s
	}
}

// ResolvePeriod applies the period resolver's strict precedence:
//  1. a UI-forced code (6001/6002/6003/0000) must already have a
//     confirmed job period, or resolution fails outright;
//  2. otherwise an operator-confirmed job period, if one was set;
//  3. otherwise whatever YYMM the pre-extract snapshot inferred from
//     the document's own text;
//  4. otherwise no period at all, which defers filename generation
//     until an operator supplies one.
func ResolvePeriod(jc *JobContext, code string, inferredYYMM string) (PeriodResult, error) {
	confirmed, err := jc.GetYYMMForClassification(code)
	if err != nil {
		return PeriodResult{}, err
	}

	code4 := code
	if len(code4) > 4 {
		code4 = code4[:4]
	}
	if uiForcedCodes[code4] {
		if confirmed == "" {
			return PeriodResult{}, fmt.Errorf("UI period required for code %s", code4)
		}
		return PeriodResult{YYMM: confirmed, Source: PeriodSourceUIForced}, nil
	}

	if confirmed != "" {
		return PeriodResult{YYMM: confirmed, Source: PeriodSourceUI}, nil
	}

	if inferredYYMM != "" && validYYMM(inferredYYMM) {
		return PeriodResult{YYMM: inferredYYMM, Source: PeriodSourceDetected}, nil
	}

	return PeriodResult{YYMM: "", Source: PeriodSourceNone}, nil
}
