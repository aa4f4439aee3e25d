package report

import (
	"math"
	"strconv"
	"strings"

	"nutriplan/internal/model"
)

// 区块标题与占位符，与现有报告格式保持一致
const (
	headerTotals   = "Selected menu provides: "
	headerDeficit  = "\nDeficit/Excess: "
	notAvailable   = "N/A"
	itemSeparator  = "; "
	noTargetSuffix = "N/A (" + string(model.StatusNoTarget) + ")"
)

// Render 将合计、目标值与差值渲染为文本报告
// 三个区块依次为：合计、目标值、差额；每个区块内按营养素固定顺序输出
func Render(totals model.NutrientTotals, targets, comparison model.NutrientValues, profileName string) string {
	parts := make([]string, 0, 3*(model.NutrientCount+1))

	parts = append(parts, headerTotals)
	for _, n := range model.AllNutrients() {
		parts = append(parts, n.Label()+": "+formatOne(totals.Get(n)))
	}

	parts = append(parts, "\nCompared to "+profileName+" RDA: ")
	for _, n := range model.AllNutrients() {
		target := targets.Get(n)
		value := notAvailable
		if target.Valid {
			value = formatOne(target.Float64)
		}
		parts = append(parts, n.Label()+": "+value)
	}

	parts = append(parts, headerDeficit)
	for _, n := range model.AllNutrients() {
		diff := comparison.Get(n)
		if !diff.Valid {
			parts = append(parts, n.Label()+": "+noTargetSuffix)
			continue
		}
		parts = append(parts, n.Label()+": "+formatOne(math.Abs(diff.Float64))+" ("+string(model.Classify(diff))+")")
	}

	return strings.Join(parts, itemSeparator)
}

// formatOne 保留一位小数；舍入后为 0 的负数输出为 0.0
func formatOne(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if s == "-0.0" {
		return "0.0"
	}
	return s
}
