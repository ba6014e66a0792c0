package pipeline

// TitleMap is the reference table from classification code to the
// human-readable document title shown in the UI, the audit log, and
// the "other" branch of the naming composer. Codes absent from this
// table are not a classifier error: they fall through to the
// "unrecognized document" label built from the raw code.
var TitleMap = map[string]string{
	"0000": "納付税額一覧表",
	"0001": "法人税及び地方法人税申告書",
	"0002": "添付資料_法人税",
	"0003": "受信通知",
	"0004": "納付情報",

	"1001": "法人都道府県民税・事業税・特別法人事業税申告書",
	"1011": "法人都道府県民税・事業税・特別法人事業税申告書",
	"1021": "法人都道府県民税・事業税・特別法人事業税申告書",
	"1031": "法人都道府県民税・事業税・特別法人事業税申告書",
	"1041": "法人都道府県民税・事業税・特別法人事業税申告書",
	"1003": "受信通知",
	"1013": "受信通知",
	"1023": "受信通知",
	"1004": "納付情報",

	"2001": "法人市民税申告書",
	"2011": "法人市民税申告書",
	"2021": "法人市民税申告書",
	"2031": "法人市民税申告書",
	"2041": "法人市民税申告書",
	"2003": "受信通知",
	"2013": "受信通知",
	"2023": "受信通知",
	"2004": "納付情報",

	"3001": "消費税及び地方消費税申告書",
	"3002": "添付資料_消費税",
	"3003": "受信通知",
	"3004": "納付情報",

	"5001": "決算書",
	"5002": "総勘定元帳",
	"5003": "補助簿等",
	"5004": "残高試算表",
	"5005": "仕訳帳",

	"6001": "固定資産台帳",
	"6002": "一括償却資産明細表",
	"6003": "少額減価償却資産明細表",

	"7001": "勘定科目別税区分集計表",
	"7002": "法人事業概況説明書",

	"9999": "その他書類",
}

// TitleOf returns the document title for a code, or a synthesized
// "unrecognized" label when the code is not in TitleMap.
func TitleOf(code string) string {
	if t, ok := TitleMap[code]; ok {
		return t
	}
	return "不明書類_" + code
}

// PrefectureCodeMap upgrades the generic prefecture-tax code 1001 to a
// jurisdiction-specific code once OCR or operator input identifies
// which prefecture a document belongs to. Tokyo maps to itself: it is
// the baseline and never upgrades.
var PrefectureCodeMap = map[string]string{
	"東京都":  "1001",
	"愛知県":  "1011",
	"福岡県":  "1021",
	"大阪府":  "1031",
	"神奈川県": "1041",
}

// MunicipalityCodeMap resolves a municipal-tax code straight to its
// jurisdiction label; unlike prefecture codes, municipal codes are
// already jurisdiction-specific by the time the classifier assigns
// them, so this is a lookup rather than an upgrade.
var MunicipalityCodeMap = map[string]string{
	"2001": "愛知県蒲郡市",
	"2011": "福岡県福岡市",
	"2021": "大阪市",
	"2031": "横浜市",
	"2041": "名古屋市",
}
