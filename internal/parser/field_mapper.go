package parser

import (
	"nutriplan/internal/model"
)

// 标识列与份量列的外部列名
const (
	ColumnFoodName    = "FoodName"
	ColumnProfileName = "ProfileName"
	ColumnServingSize = "ServingSize"
)

// FieldMapper 字段映射器：外部列名 -> 规范字段
// 营养素列名通过 model 中固定的标签对照表匹配，不做字符串拼接推断
type FieldMapper struct{}

// NewFieldMapper 创建字段映射器
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

// MapColumns 映射表头；同一目标出现多次时以第一列为准
func (m *FieldMapper) MapColumns(columnNames []string) map[int]FieldMapping {
	mappings := make(map[int]FieldMapping)
	seen := make(map[string]bool)

	for idx, raw := range columnNames {
		col := NormalizeColumnName(raw)
		if col == "" {
			continue
		}

		mapping := m.mapColumn(col, idx)
		if mapping.Target == TargetNone {
			continue
		}
		key := mappingKey(mapping)
		if seen[key] {
			continue
		}
		seen[key] = true
		mappings[idx] = mapping
	}

	return mappings
}

// mapColumn 映射单个列
func (m *FieldMapper) mapColumn(col string, idx int) FieldMapping {
	mapping := FieldMapping{
		ColumnIndex: idx,
		ColumnName:  col,
	}

	switch col {
	case ColumnFoodName:
		mapping.Target = TargetFoodName
		return mapping
	case ColumnProfileName:
		mapping.Target = TargetProfileName
		return mapping
	case ColumnServingSize:
		mapping.Target = TargetServingSize
		return mapping
	}

	// 带单位标签，如 "Sodium (mg)"
	if n, ok := model.NutrientByLabel(col); ok {
		mapping.Target = TargetNutrient
		mapping.Nutrient = n
		return mapping
	}
	// 兼容已规范化的字段名，如 "Sodium_mg"
	if n, ok := model.NutrientByKey(col); ok {
		mapping.Target = TargetNutrient
		mapping.Nutrient = n
		return mapping
	}

	return mapping
}

func mappingKey(m FieldMapping) string {
	if m.Target == TargetNutrient {
		return m.Nutrient.Key()
	}
	switch m.Target {
	case TargetFoodName:
		return ColumnFoodName
	case TargetProfileName:
		return ColumnProfileName
	case TargetServingSize:
		return ColumnServingSize
	}
	return ""
}

// RequiredColumns 各类型必需的列
func RequiredColumns(kind model.RecordKind) []string {
	switch kind {
	case model.KindFood:
		return append([]string{ColumnFoodName, ColumnServingSize}, model.NutrientLabels()...)
	case model.KindRda:
		return []string{ColumnProfileName}
	}
	return nil
}

// ValidateHeaders 整批校验表头，缺少必需列时返回 *model.SchemaError
// 仅在处理任何数据行之前调用一次
func ValidateHeaders(kind model.RecordKind, headers []string) error {
	mappings := NewFieldMapper().MapColumns(headers)
	present := make(map[string]bool, len(mappings))
	for _, mp := range mappings {
		present[mappingKey(mp)] = true
	}

	var missing []string
	for _, col := range RequiredColumns(kind) {
		key := col
		if n, ok := model.NutrientByLabel(col); ok {
			key = n.Key()
		}
		if !present[key] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &model.SchemaError{Kind: kind, Missing: missing}
	}
	return nil
}
