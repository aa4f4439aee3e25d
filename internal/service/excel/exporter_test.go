package excel

import (
	"bytes"
	"testing"

	"nutriplan/internal/model"
	"nutriplan/internal/parser"
)

func sampleResponse() *model.CalculationResponse {
	resp := &model.CalculationResponse{
		SelectedMenu:   []model.SelectionDetail{{FoodName: "Egg", Quantity: 2, ServingSize: "1 large"}},
		TotalNutrients: model.NutrientTotals{140, 12, 1, 10, 140, 0},
		RdaProfileName: "Diabetic",
		FinalSummary:   "Selected menu provides: ; ...",
	}
	resp.RdaTargets.Set(model.Calories, model.Float(1800))
	resp.NutrientComparison.Set(model.Calories, model.Float(-1660))
	return resp
}

func TestExportCalculation(t *testing.T) {
	f, err := NewExporter().ExportCalculation(sampleResponse())
	if err != nil {
		t.Fatalf("ExportCalculation failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetSummary || sheets[1] != SheetMenu || sheets[2] != SheetReport {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1+model.NutrientCount {
		t.Fatalf("summary rows = %d", len(rows))
	}
	if rows[0][2] != "Diabetic RDA" {
		t.Errorf("target header = %q", rows[0][2])
	}
	want := []string{"Calories (kcal)", "140", "1800", "-1660", "deficit"}
	for i, w := range want {
		if rows[1][i] != w {
			t.Errorf("calories row[%d] = %q, want %q", i, rows[1][i], w)
		}
	}
	if rows[2][2] != "N/A" || rows[2][4] != "no RDA target" {
		t.Errorf("protein row = %v", rows[2])
	}

	menu, _ := f.GetRows(SheetMenu)
	if len(menu) != 2 || menu[1][0] != "Egg" || menu[1][2] != "1 large" {
		t.Errorf("menu rows = %v", menu)
	}

	report, _ := f.GetCellValue(SheetReport, "A1")
	if report != "Selected menu provides: ; ..." {
		t.Errorf("report = %q", report)
	}
}

func TestExportFoodsRoundTrip(t *testing.T) {
	egg := &model.FoodItem{Name: "Egg", ServingSize: "1 large"}
	egg.Nutrients.Set(model.Calories, model.Float(70))
	egg.Nutrients.Set(model.Carbohydrates, model.Float(0.5))

	f, err := NewExporter().ExportFoods([]*model.FoodItem{egg})
	if err != nil {
		t.Fatalf("ExportFoods failed: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	table, err := parser.ReadTable(&buf, parser.FormatXLSX, "")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	batch, err := parser.NewNormalizer().NormalizeTable(model.KindFood, table)
	if err != nil {
		t.Fatalf("NormalizeTable failed: %v", err)
	}
	if len(batch.Foods) != 1 || *batch.Foods[0] != *egg {
		t.Fatalf("round trip mismatch: %+v", batch.Foods)
	}
}

func TestExportProfilesTemplate(t *testing.T) {
	f, err := NewExporter().ExportProfiles(nil)
	if err != nil {
		t.Fatalf("ExportProfiles failed: %v", err)
	}
	rows, _ := f.GetRows("rda")
	if len(rows) != 1 || rows[0][0] != parser.ColumnProfileName || len(rows[0]) != 1+model.NutrientCount {
		t.Fatalf("template rows = %v", rows)
	}
}
