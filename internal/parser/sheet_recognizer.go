package parser

import (
	"strings"

	"nutriplan/internal/model"
)

// SheetRecognizer Sheet 类型识别器（食物表 / RDA 表）
type SheetRecognizer struct {
	mapper *FieldMapper
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{mapper: NewFieldMapper()}
}

// Recognize 根据表头识别 Sheet 类型
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) SheetRecognitionResult {
	mappings := r.mapper.MapColumns(columnNames)

	hasFoodName, hasProfileName, hasServing := false, false, false
	nutrients := 0
	for _, m := range mappings {
		switch m.Target {
		case TargetFoodName:
			hasFoodName = true
		case TargetProfileName:
			hasProfileName = true
		case TargetServingSize:
			hasServing = true
		case TargetNutrient:
			nutrients++
		}
	}

	name := strings.ToLower(sheetName)

	// 标识列决定类型；两者都有时无法判定
	if hasFoodName && !hasProfileName {
		confidence := 0.5
		if hasServing {
			confidence += 0.2
		}
		confidence += 0.3 * float64(nutrients) / float64(model.NutrientCount)
		if ContainsAny(name, []string{"food", "menu"}) && confidence < 1 {
			confidence = min(confidence+0.1, 1)
		}
		return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeFoods, Confidence: confidence}
	}

	if hasProfileName && !hasFoodName {
		confidence := 0.7
		if nutrients > 0 {
			confidence += 0.3 * float64(nutrients) / float64(model.NutrientCount)
		}
		if hasServing {
			confidence -= 0.1
		}
		if ContainsAny(name, []string{"rda", "profile", "target"}) {
			confidence = min(confidence+0.1, 1)
		}
		return SheetRecognitionResult{SheetName: sheetName, SheetType: SheetTypeRda, Confidence: confidence}
	}

	// 无法识别
	return SheetRecognitionResult{
		SheetName:  sheetName,
		SheetType:  SheetTypeUnknown,
		Confidence: 0,
	}
}
