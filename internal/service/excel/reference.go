package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"nutriplan/internal/model"
	"nutriplan/internal/parser"
)

// ExportFoods 导出食物表；列与导入表头一致，可直接重新导入
// foods 为空时即为空白模板
func (e *Exporter) ExportFoods(foods []*model.FoodItem) (*excelize.File, error) {
	header := []interface{}{parser.ColumnFoodName, parser.ColumnServingSize}
	for _, label := range model.NutrientLabels() {
		header = append(header, label)
	}

	rows := [][]interface{}{header}
	for _, food := range foods {
		row := []interface{}{food.Name, food.ServingSize}
		row = appendNutrients(row, food.Nutrients)
		rows = append(rows, row)
	}

	return e.referenceWorkbook("foods", rows)
}

// ExportProfiles 导出 RDA 表
func (e *Exporter) ExportProfiles(profiles []*model.RdaProfile) (*excelize.File, error) {
	header := []interface{}{parser.ColumnProfileName}
	for _, label := range model.NutrientLabels() {
		header = append(header, label)
	}

	rows := [][]interface{}{header}
	for _, p := range profiles {
		row := []interface{}{p.ProfileName}
		row = appendNutrients(row, p.Nutrients)
		rows = append(rows, row)
	}

	return e.referenceWorkbook("rda", rows)
}

func (e *Exporter) referenceWorkbook(sheet string, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return nil, err
	}
	f.SetColWidth(sheet, "A", "A", 28)
	return f, nil
}

// appendNutrients 缺省值留空单元格
func appendNutrients(row []interface{}, values model.NutrientValues) []interface{} {
	for _, v := range values {
		if v.Valid {
			row = append(row, v.Float64)
		} else {
			row = append(row, nil)
		}
	}
	return row
}
