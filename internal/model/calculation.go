package model

// SelectionItem 菜单中的一项：食物名 + 份数
type SelectionItem struct {
	FoodName string  `json:"food_name"`
	Quantity float64 `json:"quantity"`
}

// SelectionDetail 选择回显，仅用于展示，不参与计算
type SelectionDetail struct {
	FoodName    string  `json:"food_name"`
	Quantity    float64 `json:"quantity"`
	ServingSize string  `json:"serving_size"`
}

// CalculationRequest 营养计算请求
type CalculationRequest struct {
	SelectedFoods  []SelectionItem `json:"selected_foods"`
	RdaProfileName string          `json:"rda_profile_name"`
}

// CalculationResponse 营养计算结果，同时作为叙述生成的结构化输入
type CalculationResponse struct {
	SelectedMenu       []SelectionDetail `json:"selected_menu"`
	TotalNutrients     NutrientTotals    `json:"total_nutrients"`
	RdaProfileName     string            `json:"rda_profile_name"`
	RdaTargets         NutrientValues    `json:"rda_targets"`
	NutrientComparison NutrientValues    `json:"nutrient_comparison"` // 缺省表示无 RDA 目标
	FinalSummary       string            `json:"final_summary"`
}

// ComparisonStatus 差值分类
type ComparisonStatus string

const (
	StatusExcess   ComparisonStatus = "excess"
	StatusDeficit  ComparisonStatus = "deficit"
	StatusMet      ComparisonStatus = "meets target"
	StatusNoTarget ComparisonStatus = "no RDA target"
)

// Classify 按差值符号分类；仅在差值严格为 0 时视为达标
func Classify(diff NullFloat) ComparisonStatus {
	if !diff.Valid {
		return StatusNoTarget
	}
	switch {
	case diff.Float64 > 0:
		return StatusExcess
	case diff.Float64 < 0:
		return StatusDeficit
	default:
		return StatusMet
	}
}
