package model

import (
	"fmt"
	"strings"
)

// RecordKind 参考数据类型
type RecordKind string

const (
	KindFood RecordKind = "foods"
	KindRda  RecordKind = "rda"
)

// SchemaError 表头缺少必需列，整批失败
type SchemaError struct {
	Kind    RecordKind
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in %s table: %s", e.Kind, strings.Join(e.Missing, ", "))
}

// RecordError 单行数据无法归一化（例如标识列为空），整批失败
type RecordError struct {
	Row    int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// UnknownFoodError 计算时引用了不存在的食物
type UnknownFoodError struct {
	FoodName string
}

func (e *UnknownFoodError) Error() string {
	return fmt.Sprintf("food item '%s' not found in foods data", e.FoodName)
}

// UnknownProfileError 计算时引用了不存在的 RDA 配置
type UnknownProfileError struct {
	ProfileName string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("RDA profile '%s' not found", e.ProfileName)
}

// InvalidQuantityError 份数为负数（或非数值）
type InvalidQuantityError struct {
	FoodName string
	Quantity float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v for food '%s': must be >= 0", e.Quantity, e.FoodName)
}
