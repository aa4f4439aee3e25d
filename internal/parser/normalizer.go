package parser

import (
	"errors"
	"fmt"
	"sort"

	"nutriplan/internal/model"
)

// Normalizer 将外部表格记录归一化为规范记录
// 纯转换，无副作用
type Normalizer struct {
	mapper *FieldMapper
}

// NewNormalizer 创建归一化器
func NewNormalizer() *Normalizer {
	return &Normalizer{mapper: NewFieldMapper()}
}

// canonicalRecord 归一化中间结果
type canonicalRecord struct {
	name        string
	hasName     bool
	servingSize string
	nutrients   model.NutrientValues
}

// canonicalize 按 columns 的顺序映射；多列映射到同一字段时以靠前的列为准
func (n *Normalizer) canonicalize(raw RawRecord, columns []string, identity FieldTarget) canonicalRecord {
	var rec canonicalRecord
	assigned := make(map[string]bool)
	for _, k := range columns {
		if _, ok := raw[k]; !ok {
			continue
		}
		mapping := n.mapper.mapColumn(NormalizeColumnName(k), 0)
		if mapping.Target == TargetNone {
			continue
		}
		key := mappingKey(mapping)
		if assigned[key] {
			continue
		}
		assigned[key] = true

		value := raw[k]
		switch mapping.Target {
		case identity:
			rec.name = CellText(value)
			rec.hasName = true
		case TargetServingSize:
			rec.servingSize = CellText(value)
		case TargetNutrient:
			rec.nutrients.Set(mapping.Nutrient, ParseNumber(value))
		}
	}
	return rec
}

// sortedColumns map 无列顺序时按列名排序，保证结果确定
func sortedColumns(raw RawRecord) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeFood 归一化一条食物记录；重复映射的列按列名排序取第一个
func (n *Normalizer) NormalizeFood(raw RawRecord) (*model.FoodItem, error) {
	return n.normalizeFood(raw, sortedColumns(raw))
}

func (n *Normalizer) normalizeFood(raw RawRecord, columns []string) (*model.FoodItem, error) {
	rec := n.canonicalize(raw, columns, TargetFoodName)
	if !rec.hasName {
		return nil, &model.SchemaError{Kind: model.KindFood, Missing: []string{ColumnFoodName}}
	}
	if rec.name == "" {
		return nil, &model.RecordError{Reason: "empty FoodName"}
	}
	return &model.FoodItem{
		Name:        rec.name,
		ServingSize: rec.servingSize,
		Nutrients:   rec.nutrients,
	}, nil
}

// NormalizeProfile 归一化一条 RDA 记录
func (n *Normalizer) NormalizeProfile(raw RawRecord) (*model.RdaProfile, error) {
	return n.normalizeProfile(raw, sortedColumns(raw))
}

func (n *Normalizer) normalizeProfile(raw RawRecord, columns []string) (*model.RdaProfile, error) {
	rec := n.canonicalize(raw, columns, TargetProfileName)
	if !rec.hasName {
		return nil, &model.SchemaError{Kind: model.KindRda, Missing: []string{ColumnProfileName}}
	}
	if rec.name == "" {
		return nil, &model.RecordError{Reason: "empty ProfileName"}
	}
	return &model.RdaProfile{
		ProfileName: rec.name,
		Nutrients:   rec.nutrients,
	}, nil
}

// Batch 一次导入归一化后的记录
type Batch struct {
	Kind        model.RecordKind
	Foods       []*model.FoodItem
	Profiles    []*model.RdaProfile
	TotalRows   int
	SkippedRows int
}

// Len 记录条数
func (b *Batch) Len() int {
	if b.Kind == model.KindFood {
		return len(b.Foods)
	}
	return len(b.Profiles)
}

// NormalizeTable 校验表头后逐行归一化；任一行失败则整批失败
func (n *Normalizer) NormalizeTable(kind model.RecordKind, table *Table) (*Batch, error) {
	if kind != model.KindFood && kind != model.KindRda {
		return nil, fmt.Errorf("unsupported record kind %q", kind)
	}
	if err := ValidateHeaders(kind, table.Headers); err != nil {
		return nil, err
	}

	batch := &Batch{Kind: kind, TotalRows: len(table.Rows)}
	for i, row := range table.Rows {
		rowNum := i + 2 // 第一行为表头
		raw, blank := rowToRecord(table.Headers, row)
		if blank {
			batch.SkippedRows++
			continue
		}

		var err error
		switch kind {
		case model.KindFood:
			var food *model.FoodItem
			if food, err = n.normalizeFood(raw, table.Headers); err == nil {
				batch.Foods = append(batch.Foods, food)
			}
		case model.KindRda:
			var profile *model.RdaProfile
			if profile, err = n.normalizeProfile(raw, table.Headers); err == nil {
				batch.Profiles = append(batch.Profiles, profile)
			}
		}
		if err != nil {
			var recErr *model.RecordError
			if errors.As(err, &recErr) {
				recErr.Row = rowNum
			}
			return nil, err
		}
	}

	return batch, nil
}

// rowToRecord 将数据行按表头转换为原始记录；重复列名以第一列为准
func rowToRecord(headers, row []string) (RawRecord, bool) {
	raw := make(RawRecord, len(headers))
	blank := true
	for idx, h := range headers {
		if h == "" {
			continue
		}
		if _, dup := raw[h]; dup {
			continue
		}
		var cell string
		if idx < len(row) {
			cell = row[idx]
		}
		if NormalizeColumnName(cell) != "" {
			blank = false
		}
		raw[h] = cell
	}
	return raw, blank
}
