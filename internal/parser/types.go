package parser

import (
	"time"

	"nutriplan/internal/model"
)

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypeFoods   SheetType = "foods"
	SheetTypeRda     SheetType = "rda"
	SheetTypeUnknown SheetType = "unknown"
)

// RecordKind 转换为参考数据类型
func (t SheetType) RecordKind() (model.RecordKind, bool) {
	switch t {
	case SheetTypeFoods:
		return model.KindFood, true
	case SheetTypeRda:
		return model.KindRda, true
	}
	return "", false
}

// FieldTarget 列映射目标
type FieldTarget int

const (
	TargetNone        FieldTarget = iota
	TargetFoodName                // FoodName
	TargetProfileName             // ProfileName
	TargetServingSize             // ServingSize
	TargetNutrient                // 营养素列，见 FieldMapping.Nutrient
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	SheetType  SheetType `json:"sheetType"`
	Confidence float64   `json:"confidence"` // 置信度 0-1
}

// FieldMapping 字段映射结果
type FieldMapping struct {
	ColumnIndex int            `json:"columnIndex"` // 列索引
	ColumnName  string         `json:"columnName"`  // 原始列名
	Target      FieldTarget    `json:"target"`
	Nutrient    model.Nutrient `json:"nutrient"` // Target 为 TargetNutrient 时有效
}

// RawRecord 以外部列名为键的原始行
type RawRecord map[string]any

// Table 表头 + 数据行
type Table struct {
	SheetName string
	Headers   []string
	Rows      [][]string
}

// ImportReport 导入报告
type ImportReport struct {
	ID           string           `json:"id"`
	Filename     string           `json:"filename"`
	SheetName    string           `json:"sheetName"`
	Kind         model.RecordKind `json:"kind"`
	Status       string           `json:"status"` // imported/error
	TotalRows    int              `json:"totalRows"`
	ImportedRows int              `json:"importedRows"`
	SkippedRows  int              `json:"skippedRows"` // 空行
	ArchiveURL   string           `json:"archiveUrl,omitempty"`
	Errors       []string         `json:"errors,omitempty"`
	Duration     time.Duration    `json:"duration"`
}
