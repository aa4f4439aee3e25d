package excel

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"nutriplan/internal/model"
)

// 工作表名称
const (
	SheetSummary = "Summary"
	SheetMenu    = "Menu"
	SheetReport  = "Report"
)

// Exporter Excel导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportCalculation 导出一次营养计算结果
// Summary：每个营养素一行；Menu：菜单回显；Report：文本报告
func (e *Exporter) ExportCalculation(resp *model.CalculationResponse) (*excelize.File, error) {
	if resp == nil {
		return nil, fmt.Errorf("calculation result is nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 汇总表
	summary := [][]interface{}{
		{"Nutrient", "Total", fmt.Sprintf("%s RDA", resp.RdaProfileName), "Difference", "Status"},
	}
	for _, n := range model.AllNutrients() {
		row := []interface{}{n.Label(), round1(resp.TotalNutrients.Get(n))}

		if target := resp.RdaTargets.Get(n); target.Valid {
			row = append(row, round1(target.Float64))
		} else {
			row = append(row, "N/A")
		}

		diff := resp.NutrientComparison.Get(n)
		if diff.Valid {
			row = append(row, round1(diff.Float64))
		} else {
			row = append(row, "N/A")
		}
		row = append(row, string(model.Classify(diff)))

		summary = append(summary, row)
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	f.SetRowStyle(SheetSummary, 1, 1, headerStyle)
	f.SetColWidth(SheetSummary, "A", "A", 22)
	f.SetColWidth(SheetSummary, "B", "E", 16)

	// 菜单表
	if _, err := f.NewSheet(SheetMenu); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	menu := [][]interface{}{{"Food", "Quantity", "Serving Size"}}
	for _, d := range resp.SelectedMenu {
		menu = append(menu, []interface{}{d.FoodName, d.Quantity, d.ServingSize})
	}
	if err := writeRows(f, SheetMenu, menu); err != nil {
		return nil, err
	}
	f.SetRowStyle(SheetMenu, 1, 1, headerStyle)
	f.SetColWidth(SheetMenu, "A", "A", 30)
	f.SetColWidth(SheetMenu, "B", "C", 16)

	// 文本报告
	if _, err := f.NewSheet(SheetReport); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.SetCellValue(SheetReport, "A1", resp.FinalSummary); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	f.SetColWidth(SheetReport, "A", "A", 120)

	return f, nil
}

// writeRows 从 A1 开始逐行写入
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// round1 保留一位小数，与文本报告一致
func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
