package service

import "strings"

// Canonical categories. Raw labels come from the middle-category column of
// Japanese business-directory exports.
const (
	CategoryTelecomServices     = "通信サービス業"
	CategoryTelecomConstruction = "通信設備工事業"
	CategoryITServices          = "IT・情報サービス業"
	CategoryInternetServices    = "インターネット関連サービス"
	CategoryBroadcastingMedia   = "放送・メディア業"
	CategoryEquipmentMfg        = "通信機器製造業"
	CategoryProfessionalTech    = "専門・技術サービス業"
	CategoryAdvertising         = "広告・マーケティング業"
	CategoryStaffing            = "人材・派遣サービス業"
	CategoryOther               = "その他"
)

type categoryRule struct {
	canonical string
	raw       []string
}

// Evaluated in order; the first rule listing the raw label wins.
var categoryRules = []categoryRule{
	{CategoryTelecomServices, []string{"通信業"}},
	{CategoryTelecomConstruction, []string{"設備工事業", "総合工事業"}},
	{CategoryITServices, []string{"情報サービス業"}},
	{CategoryInternetServices, []string{"インターネット附随サービス業"}},
	{CategoryBroadcastingMedia, []string{"放送業", "映像・音声・文字情報制作業"}},
	{CategoryEquipmentMfg, []string{
		"情報通信機械器具製造業",
		"電子部品・デバイス・電子回路製造業",
		"電気機械器具製造業",
		"業務用機械器具製造業",
		"非鉄金属製造業",
	}},
	{CategoryProfessionalTech, []string{
		"専門サービス業（他に分類されないもの）",
		"技術サービス業（他に分類されないもの）",
		"学術・開発研究機関",
	}},
	{CategoryAdvertising, []string{"広告業"}},
	{CategoryStaffing, []string{"職業紹介・労働者派遣業"}},
}

// MapCategory collapses a raw classification label into one of the canonical
// categories. Unknown labels map to CategoryOther.
func MapCategory(raw string) string {
	label := strings.TrimSpace(raw)
	for _, rule := range categoryRules {
		for _, r := range rule.raw {
			if label == r {
				return rule.canonical
			}
		}
	}
	return CategoryOther
}
