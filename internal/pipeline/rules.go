package pipeline

import "strings"

// AndCondition is a keyword-set a rule's highest-priority pass checks
// against the combined (text + filename) string: "all" requires every
// keyword present, "any" requires at least one.
type AndCondition struct {
	Keywords  []string
	MatchType string // "all" or "any"
}

// CheckMatch reports whether this condition matches combined, and the
// subset of its keywords that were actually found, in declaration order.
func (c AndCondition) CheckMatch(combined string) (bool, []string) {
	var matched []string
	for _, kw := range c.Keywords {
		if strings.Contains(combined, kw) {
			matched = append(matched, kw)
		}
	}
	switch c.MatchType {
	case "any":
		return len(matched) > 0, matched
	default:
		return len(matched) == len(c.Keywords), matched
	}
}

// Rule is one classification rule: a scoring profile plus an optional
// fast path of AND-conditions that short-circuit straight to a match.
type Rule struct {
	Code                      string
	Priority                  int
	HighestPriorityConditions []AndCondition
	ExactKeywords             []string
	PartialKeywords           []string
	ExcludeKeywords           []string
	FilenameKeywords          []string
}

// classificationRules is the full rule table, grounded on the
// AND-condition classification engine: priorities, keyword sets, and
// declaration order all carry over unchanged. Declaration order here is
// the tie-break order for both the highest-priority pass and the
// deterministic matched-keyword ordering of the standard pass.
var classificationRules = []Rule{
	{
		Code:     "0000",
		Priority: 140,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"納付税額一覧表", "既納付額"}, MatchType: "all"},
			{Keywords: []string{"納付税額一覧", "確定税額"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"納付税額一覧表"},
		PartialKeywords:  []string{"納付税額", "税額一覧"},
		ExcludeKeywords:  []string{"受信通知", "納付区分番号通知", "メール詳細"},
	},
	{
		Code:     "0001",
		Priority: 135,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"事業年度分の法人税申告書", "差引確定法人税額"}, MatchType: "all"},
			{Keywords: []string{"内国法人の確定申告(青色)", "法人税額"}, MatchType: "all"},
			{Keywords: []string{"控除しきれなかった金額", "課税留保金額"}, MatchType: "all"},
			{Keywords: []string{"中間申告分の法人税額", "中間申告分の地方法人税額"}, MatchType: "all"},
		},
		ExactKeywords: []string{
			"法人税及び地方法人税申告書", "内国法人の確定申告", "内国法人の確定申告(青色)",
			"法人税申告書別表一", "申告書第一表",
		},
		PartialKeywords:  []string{"法人税申告", "内国法人", "確定申告", "青色申告", "事業年度分", "税額控除"},
		ExcludeKeywords:  []string{"メール詳細", "受信通知", "納付区分番号通知", "添付資料", "イメージ添付"},
		FilenameKeywords: []string{"内国法人", "確定申告", "青色"},
	},
	{
		Code:     "0002",
		Priority: 125,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"添付資料", "法人税申告", "イメージ添付"}, MatchType: "all"},
			{Keywords: []string{"添付書類", "法人税", "申告書"}, MatchType: "all"},
		},
		ExactKeywords: []string{
			"法人税 添付資料", "添付資料 法人税", "イメージ添付書類(法人税申告)",
			"イメージ添付書類 法人税", "添付書類 法人税",
		},
		PartialKeywords:  []string{"添付資料", "法人税 資料", "イメージ添付", "添付書類"},
		ExcludeKeywords:  []string{"消費税申告", "法人消費税", "消費税", "受信通知", "納付区分番号通知"},
		FilenameKeywords: []string{"法人税申告", "法人税", "内国法人"},
	},
	{
		Code:     "0003",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"メール詳細", "種目 法人税及び地方法人税申告書"}, MatchType: "all"},
			{Keywords: []string{"受付番号", "税目 法人税", "受付日時"}, MatchType: "all"},
			{Keywords: []string{"提出先", "税務署", "法人税及び地方法人税申告書"}, MatchType: "all"},
			{Keywords: []string{"送信されたデータを受け付けました", "法人税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"法人税 受信通知", "受信通知 法人税"},
		PartialKeywords:  []string{"受信通知", "国税電子申告", "メール詳細"},
		ExcludeKeywords:  []string{"消費税申告書", "納付区分番号通知"},
		FilenameKeywords: []string{"受信通知", "法人税"},
	},
	{
		Code:     "0004",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"メール詳細（納付区分番号通知）", "法人税及地方法人税"}, MatchType: "all"},
			{Keywords: []string{"納付区分番号通知", "税目 法人税及地方法人税"}, MatchType: "all"},
			{Keywords: []string{"納付先", "税務署", "法人税及地方法人税"}, MatchType: "all"},
			{Keywords: []string{"納付内容を確認し", "法人税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"法人税 納付情報", "納付情報 法人税", "納付区分番号通知"},
		PartialKeywords:  []string{"納付情報", "納付書", "国税 納付"},
		ExcludeKeywords:  []string{"消費税及地方消費税", "受信通知"},
		FilenameKeywords: []string{"納付情報", "法人税"},
	},
	{
		Code:     "1001",
		Priority: 135,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"法人都道府県民税・事業税・特別法人事業税申告書", "年400万円以下"}, MatchType: "all"},
			{Keywords: []string{"県税事務所", "法人事業税", "特別法人事業税"}, MatchType: "all"},
			{Keywords: []string{"都税事務所", "道府県民税", "事業税"}, MatchType: "all"},
			{Keywords: []string{"法人事業税申告書", "都道府県民税"}, MatchType: "all"},
		},
		ExactKeywords: []string{
			"法人都道府県民税・事業税・特別法人事業税申告書", "法人事業税申告書", "都道府県民税申告書",
		},
		PartialKeywords: []string{
			"都道府県民税", "法人事業税", "特別法人事業税", "道府県民税", "事業税",
			"県税事務所", "都税事務所", "年400万円以下", "年月日から年月日までの",
		},
		ExcludeKeywords:  []string{"市町村", "市民税", "市役所", "町役場", "村役場", "受信通知", "納付情報"},
		FilenameKeywords: []string{"県税事務所", "都税事務所"},
	},
	{
		Code:     "1003",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"申告受付完了通知", "都道府県民税", "事業税"}, MatchType: "all"},
			{Keywords: []string{"県税事務所", "受信通知", "法人事業税"}, MatchType: "all"},
			{Keywords: []string{"都税事務所", "受付完了通知", "特別法人事業税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"都道府県 受信通知"},
		PartialKeywords:  []string{"受信通知", "地方税電子申告"},
		ExcludeKeywords:  []string{"市町村", "市民税", "国税電子申告"},
		FilenameKeywords: []string{"受信通知", "都道府県"},
	},
	{
		Code:     "1004",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"納付情報発行結果", "法人二税・特別税"}, MatchType: "all"},
			{Keywords: []string{"地方税共同機構", "法人都道府県民税・事業税"}, MatchType: "all"},
			{Keywords: []string{"税目:法人二税・特別税", "納付情報が発行され"}, MatchType: "all"},
			{Keywords: []string{"ペイジー納付情報", "都道府県民税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"都道府県 納付情報", "納付情報発行結果", "地方税共同機構"},
		PartialKeywords:  []string{"納付情報", "地方税 納付", "法人二税", "特別税"},
		ExcludeKeywords:  []string{"市役所", "町役場", "村役場", "法人市民税", "国税"},
		FilenameKeywords: []string{"納付情報", "都道府県"},
	},
	{
		Code:     "2001",
		Priority: 135,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"法人市民税申告書", "市役所", "均等割"}, MatchType: "all"},
			{Keywords: []string{"市町村民税", "法人税割", "申告納付税額"}, MatchType: "all"},
			{Keywords: []string{"法人市民税", "課税標準総額", "市長"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"法人市民税申告書", "市民税申告書"},
		PartialKeywords:  []string{"法人市民税", "市町村民税", "市役所", "町役場", "村役場"},
		ExcludeKeywords:  []string{"都道府県", "事業税", "県税事務所", "都税事務所", "受信通知", "納付情報"},
		FilenameKeywords: []string{"市役所", "市民税"},
	},
	{
		Code:     "2003",
		Priority: 140,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"申告受付完了通知", "法人市町村民税"}, MatchType: "all"},
			{Keywords: []string{"申告受付完了通知", "法人市民税"}, MatchType: "all"},
			{Keywords: []string{"法人市民税", "市役所", "申告受付完了通知"}, MatchType: "all"},
			{Keywords: []string{"市長", "法人市民税", "受付完了通知"}, MatchType: "all"},
			{Keywords: []string{"蒲郡市役所", "申告受付完了通知"}, MatchType: "all"},
			{Keywords: []string{"福岡市", "法人市民税", "受付番号"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"市町村 受信通知", "申告受付完了通知"},
		PartialKeywords:  []string{"受信通知", "地方税電子申告", "市役所"},
		ExcludeKeywords:  []string{"県税事務所", "都税事務所", "法人事業税", "国税電子申告"},
		FilenameKeywords: []string{"受信通知", "市町村"},
	},
	{
		Code:     "2004",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"納付情報発行結果", "法人住民税"}, MatchType: "all"},
			{Keywords: []string{"市役所", "納付情報", "法人市民税"}, MatchType: "all"},
			{Keywords: []string{"地方税共同機構", "法人市町村民税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"市町村 納付情報", "法人住民税 納付情報"},
		PartialKeywords:  []string{"納付情報", "地方税 納付", "法人住民税"},
		ExcludeKeywords:  []string{"県税事務所", "都税事務所", "法人二税・特別税", "国税"},
		FilenameKeywords: []string{"納付情報", "市町村"},
	},
	{
		Code:     "3001",
		Priority: 135,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"課税期間分の消費税及び", "基準期間の"}, MatchType: "all"},
			{Keywords: []string{"消費税及び地方消費税申告(一般・法人)", "課税標準額"}, MatchType: "all"},
			{Keywords: []string{"現金主義会計の適用", "消費税申告"}, MatchType: "all"},
			{Keywords: []string{"課税標準額", "消費税及び地方消費税の合計税額"}, MatchType: "all"},
		},
		ExactKeywords: []string{
			"消費税申告書", "消費税及び地方消費税申告書",
			"消費税及び地方消費税申告(一般・法人)", "消費税申告(一般・法人)",
			"課税期間分の消費税及び", "基準期間の", "現金主義会計の適用",
		},
		PartialKeywords:  []string{"消費税申告", "地方消費税申告", "消費税申告書", "課税期間分", "基準期間"},
		ExcludeKeywords:  []string{"添付資料", "イメージ添付", "資料", "受信通知", "納付区分番号通知"},
		FilenameKeywords: []string{"消費税及び地方消費税申告", "消費税申告", "地方消費税申告"},
	},
	{
		Code:     "3002",
		Priority: 125,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"添付資料", "消費税申告", "イメージ添付"}, MatchType: "all"},
			{Keywords: []string{"添付書類", "法人消費税申告"}, MatchType: "all"},
			{Keywords: []string{"イメージ添付書類(法人消費税申告)", "添付資料"}, MatchType: "all"},
		},
		ExactKeywords: []string{
			"消費税 添付資料", "添付資料 消費税", "イメージ添付書類(法人消費税申告)",
			"イメージ添付書類 消費税", "添付書類 消費税",
		},
		PartialKeywords: []string{"添付資料", "消費税 資料", "イメージ添付", "添付書類"},
		ExcludeKeywords: []string{
			"消費税及び地方消費税申告", "消費税申告書", "申告(一般・法人)",
			"法人税申告", "内国法人", "確定申告", "受信通知", "納付区分番号通知",
		},
		FilenameKeywords: []string{"イメージ添付書類", "添付書類", "法人消費税"},
	},
	{
		Code:     "3003",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"メール詳細", "種目 消費税申告書"}, MatchType: "all"},
			{Keywords: []string{"受付番号", "消費税及び地方消費税", "受付日時"}, MatchType: "all"},
			{Keywords: []string{"提出先", "税務署", "消費税申告書"}, MatchType: "all"},
			{Keywords: []string{"送信されたデータを受け付けました", "消費税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"消費税 受信通知", "受信通知 消費税"},
		PartialKeywords:  []string{"受信通知", "国税電子申告", "メール詳細"},
		ExcludeKeywords:  []string{"法人税及び地方法人税申告書", "納付区分番号通知"},
		FilenameKeywords: []string{"受信通知", "消費税"},
	},
	{
		Code:     "3004",
		Priority: 130,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"メール詳細（納付区分番号通知）", "消費税及地方消費税"}, MatchType: "all"},
			{Keywords: []string{"納付区分番号通知", "税目 消費税及地方消費税"}, MatchType: "all"},
			{Keywords: []string{"納付先", "税務署", "消費税及地方消費税"}, MatchType: "all"},
			{Keywords: []string{"納付内容を確認し", "消費税"}, MatchType: "all"},
		},
		ExactKeywords:    []string{"消費税 納付情報", "納付情報 消費税", "消費税 納付区分番号通知"},
		PartialKeywords:  []string{"納付情報", "納付書", "納付区分番号通知"},
		ExcludeKeywords:  []string{"法人税及地方法人税", "受信通知"},
		FilenameKeywords: []string{"納付情報", "消費税"},
	},
	// ===== 5000/6000番台 - 資産台帳・会計帳票 (no code-level split) =====
	{
		Code:     "5001",
		Priority: 120,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"総勘定元帳"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"総勘定元帳"},
		PartialKeywords:  []string{"総勘定", "元帳"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"総勘定元帳", "元帳"},
	},
	{
		Code:     "5002",
		Priority: 120,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"貸借対照表"}, MatchType: "any"},
			{Keywords: []string{"損益計算書"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"貸借対照表", "損益計算書", "財務諸表"},
		PartialKeywords:  []string{"貸借対照", "損益計算"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"貸借対照表", "損益計算書", "財務諸表"},
	},
	{
		Code:     "5004",
		Priority: 115,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"月次試算表"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"月次試算表", "合計残高試算表"},
		PartialKeywords:  []string{"試算表"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"試算表"},
	},
	{
		Code:     "6001",
		Priority: 120,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"固定資産台帳"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"固定資産台帳"},
		PartialKeywords:  []string{"固定資産", "台帳"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"固定資産台帳"},
	},
	{
		Code:     "6002",
		Priority: 120,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"一括償却資産明細表"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"一括償却資産明細表", "一括償却資産"},
		PartialKeywords:  []string{"一括償却"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"一括償却資産明細表"},
	},
	{
		Code:     "6003",
		Priority: 120,
		HighestPriorityConditions: []AndCondition{
			{Keywords: []string{"少額減価償却資産明細表"}, MatchType: "any"},
		},
		ExactKeywords:    []string{"少額減価償却資産明細表", "少額減価償却資産"},
		PartialKeywords:  []string{"少額減価償却"},
		ExcludeKeywords:  []string{"受信通知", "納付情報"},
		FilenameKeywords: []string{"少額減価償却資産明細表"},
	},
}

// noSplitTitles marks a whole source bundle non-bundle regardless of
// content when any page matches one of these fixed ledger/statement
// titles, grounded on the splitter's global exclude policy.
var noSplitTitles = []string{
	"固定資産台帳", "一括償却資産明細表", "少額減価償却資産明細表",
	"総勘定元帳", "貸借対照表", "損益計算書", "月次試算表", "合計残高試算表",
}

// splitIndicatorCategories groups the keywords the bundle splitter
// counts distinct categories of when deciding whether pages form a
// bundle: receipt notices, payment-info notices, and declaration forms.
var splitIndicatorCategories = map[string][]string{
	"receipt_notice":  {"受信通知", "申告受付完了通知", "受付完了通知"},
	"payment_notice":  {"納付情報", "納付区分番号通知", "納付情報発行結果"},
	"declaration":     {"申告書", "確定申告"},
}
