package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"nutriplan/internal/importer"
	"nutriplan/internal/model"
	"nutriplan/internal/narrative"
	refstore "nutriplan/internal/service/store"
	"nutriplan/internal/store"
)

const foodsCSV = "FoodName,ServingSize,Calories (kcal),Protein (g),Carbohydrates (g),Fat (g),Sodium (mg),Fiber (g)\n" +
	"Egg,1 large,70,6,0.5,5,70,0\n"

const rdaCSV = "ProfileName,Calories (kcal),Protein (g),Sodium (mg)\nDiabetic,1800,60,2000\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte(content))
	w.Close()
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, r http.Handler, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, path string, payload any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func seededRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	h := NewHandler(refstore.NewMemoryStore(), nil)
	r := newTestRouter(h)
	if w := upload(t, r, "/api/upload-foods", "foods.csv", foodsCSV); w.Code != http.StatusOK {
		t.Fatalf("upload foods: %d %s", w.Code, w.Body.String())
	}
	if w := upload(t, r, "/api/upload-rda", "rda.csv", rdaCSV); w.Code != http.StatusOK {
		t.Fatalf("upload rda: %d %s", w.Code, w.Body.String())
	}
	return r, h
}

// TestEmptyReferenceData 测试未导入数据时列表返回 404
func TestEmptyReferenceData(t *testing.T) {
	r := newTestRouter(NewHandler(refstore.NewMemoryStore(), nil))

	for _, path := range []string{"/api/foods", "/api/rda-profiles"} {
		if w := get(r, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}

	w := get(r, "/api/status")
	var status StatusResponse
	json.Unmarshal(w.Body.Bytes(), &status)
	if w.Code != http.StatusOK || status.Initialized {
		t.Errorf("status = %d %+v", w.Code, status)
	}
}

// TestUploadAndList 测试导入后按外部列名列出
func TestUploadAndList(t *testing.T) {
	r, _ := seededRouter(t)

	w := get(r, "/api/foods")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/foods = %d", w.Code)
	}
	var foods []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &foods); err != nil {
		t.Fatalf("decode foods: %v", err)
	}
	if len(foods) != 1 || foods[0]["FoodName"] != "Egg" || foods[0]["Calories (kcal)"] != 70.0 {
		t.Errorf("foods = %v", foods)
	}

	w = get(r, "/api/rda-profiles")
	var names []string
	json.Unmarshal(w.Body.Bytes(), &names)
	if w.Code != http.StatusOK || len(names) != 1 || names[0] != "Diabetic" {
		t.Errorf("rda-profiles = %d %v", w.Code, names)
	}

	w = get(r, "/api/status")
	var status StatusResponse
	json.Unmarshal(w.Body.Bytes(), &status)
	if !status.Initialized || status.FoodCount != 1 || status.ProfileCount != 1 {
		t.Errorf("status = %+v", status)
	}
}

// TestUploadErrors 测试导入错误映射为 400
func TestUploadErrors(t *testing.T) {
	r := newTestRouter(NewHandler(refstore.NewMemoryStore(), nil))

	cases := []struct {
		name, path, filename, content string
	}{
		{"missing profile column", "/api/upload-rda", "rda.csv", foodsCSV},
		{"missing nutrient columns", "/api/upload-foods", "foods.csv", "FoodName,ServingSize\nEgg,1\n"},
		{"unsupported format", "/api/upload-foods", "foods.xls", foodsCSV},
		{"blank identity", "/api/upload-rda", "rda.csv", "ProfileName,Sodium (mg)\n,2000\n"},
	}
	for _, tc := range cases {
		w := upload(t, r, tc.path, tc.filename, tc.content)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: code = %d, want 400 (%s)", tc.name, w.Code, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload-foods", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no file: code = %d, want 400", w.Code)
	}

	st := refstore.NewMemoryStore()
	limited := newTestRouter(NewHandler(st, importer.NewCoordinator(st).WithMaxBytes(16)))
	if w := upload(t, limited, "/api/upload-foods", "foods.csv", foodsCSV); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized upload: code = %d, want 413", w.Code)
	}
}

// TestUploadStream 测试 SSE 进度推送
func TestUploadStream(t *testing.T) {
	r := newTestRouter(NewHandler(refstore.NewMemoryStore(), nil))

	body, contentType := multipartBody(t, "foods.csv", foodsCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-foods", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := w.Body.String()
	if !strings.HasPrefix(out, "data: ") || !strings.Contains(out, `"type":"done"`) {
		t.Errorf("unexpected stream: %s", out)
	}
}

// TestCalculateNutrition 测试计算接口
func TestCalculateNutrition(t *testing.T) {
	r, _ := seededRouter(t)

	w := postJSON(r, "/api/calculate-nutrition", model.CalculationRequest{
		SelectedFoods:  []model.SelectionItem{{FoodName: "Egg", Quantity: 2}},
		RdaProfileName: "Diabetic",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("calculate = %d %s", w.Code, w.Body.String())
	}

	var resp model.CalculationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalNutrients.Get(model.Calories) != 140 {
		t.Errorf("calories = %v, want 140", resp.TotalNutrients.Get(model.Calories))
	}
	if d := resp.NutrientComparison.Get(model.Fat); d.Valid {
		t.Errorf("fat comparison should be null, got %v", d.Float64)
	}
	if !strings.HasPrefix(resp.FinalSummary, "Selected menu provides: ") {
		t.Errorf("FinalSummary = %q", resp.FinalSummary)
	}
}

// TestCalculateErrors 测试计算错误映射
func TestCalculateErrors(t *testing.T) {
	r, _ := seededRouter(t)

	cases := []struct {
		name string
		req  model.CalculationRequest
		code int
	}{
		{"unknown food", model.CalculationRequest{SelectedFoods: []model.SelectionItem{{FoodName: "Caviar", Quantity: 1}}, RdaProfileName: "Diabetic"}, http.StatusNotFound},
		{"unknown profile", model.CalculationRequest{SelectedFoods: []model.SelectionItem{{FoodName: "Egg", Quantity: 1}}, RdaProfileName: "Renal"}, http.StatusNotFound},
		{"negative quantity", model.CalculationRequest{SelectedFoods: []model.SelectionItem{{FoodName: "Egg", Quantity: -1}}, RdaProfileName: "Diabetic"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := postJSON(r, "/api/calculate-nutrition", tc.req)
		if w.Code != tc.code {
			t.Errorf("%s: code = %d, want %d", tc.name, w.Code, tc.code)
		}
		if !strings.Contains(w.Body.String(), `"error"`) {
			t.Errorf("%s: body = %s", tc.name, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/calculate-nutrition", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: code = %d, want 400", w.Code)
	}
}

// TestExport 测试导出 Excel
func TestExport(t *testing.T) {
	r, _ := seededRouter(t)

	w := postJSON(r, "/api/export", model.CalculationRequest{
		SelectedFoods:  []model.SelectionItem{{FoodName: "Egg", Quantity: 2}},
		RdaProfileName: "Diabetic",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "nutrition-Diabetic.xlsx") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Summary"); idx < 0 {
		t.Errorf("Summary sheet missing: %v", f.GetSheetList())
	}
}

// TestTemplateRoundTrip 测试导出的参考数据可重新导入
func TestTemplateRoundTrip(t *testing.T) {
	r, _ := seededRouter(t)

	w := get(r, "/api/templates/foods")
	if w.Code != http.StatusOK {
		t.Fatalf("template = %d %s", w.Code, w.Body.String())
	}

	fresh := newTestRouter(NewHandler(refstore.NewMemoryStore(), nil))
	if w := upload(t, fresh, "/api/upload-foods", "foods.xlsx", w.Body.String()); w.Code != http.StatusOK {
		t.Fatalf("re-import = %d %s", w.Code, w.Body.String())
	}
	w = get(fresh, "/api/foods")
	if !strings.Contains(w.Body.String(), `"FoodName":"Egg"`) {
		t.Errorf("foods after re-import = %s", w.Body.String())
	}

	if w := get(r, "/api/templates/patients"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown template kind = %d, want 400", w.Code)
	}
}

type fakeGenerator struct {
	got narrative.Input
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, in narrative.Input) (string, error) {
	f.got = in
	if f.err != nil {
		return "", f.err
	}
	return "**Nutritional Analysis**\n1. Calories are low.\n**Personalized Recommendations**\n1. Add oats.", nil
}

// TestAIFeedback 测试点评接口
func TestAIFeedback(t *testing.T) {
	r, h := seededRouter(t)

	payload := map[string]any{
		"nutritional_summary": map[string]any{"rda_profile_name": "Diabetic", "final_summary": "x"},
		"co_morbidities":      "Type 2 diabetes",
		"diet_preference":     "Vegetarian",
	}

	w := postJSON(r, "/api/ai-feedback", payload)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), narrative.ErrNotConfigured.Error()) {
		t.Errorf("without generator: %d %s", w.Code, w.Body.String())
	}

	gen := &fakeGenerator{}
	h.WithNarrative(gen, nil)

	w = postJSON(r, "/api/ai-feedback", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("ai-feedback = %d %s", w.Code, w.Body.String())
	}
	var body struct {
		AIFeedback narrative.Feedback `json:"ai_feedback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.AIFeedback.Sections) != 2 || body.AIFeedback.Sections[1].Title != "Personalized Recommendations" {
		t.Errorf("sections = %+v", body.AIFeedback.Sections)
	}
	if gen.got.Summary == nil || gen.got.Summary.RdaProfileName != "Diabetic" || gen.got.CoMorbidities != "Type 2 diabetes" {
		t.Errorf("generator input = %+v", gen.got)
	}

	if w := postJSON(r, "/api/ai-feedback", map[string]any{"co_morbidities": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing summary: code = %d, want 400", w.Code)
	}

	gen.err = errors.New("quota exceeded")
	if w := postJSON(r, "/api/ai-feedback", payload); w.Code != http.StatusInternalServerError {
		t.Errorf("generator failure: code = %d, want 500", w.Code)
	}
}

// TestStatusWithImportLog 测试状态接口读取导入日志
func TestStatusWithImportLog(t *testing.T) {
	db, err := store.New(filepath.Join(t.TempDir(), "nutriplan.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	h := NewHandler(db, importer.NewCoordinator(db).WithImportLog(db)).WithStatusSource(db)
	r := newTestRouter(h)
	upload(t, r, "/api/upload-foods", "foods.csv", foodsCSV)

	w := get(r, "/api/status")
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.FoodCount != 1 || status.LastFoodImport == "" || len(status.RecentImports) != 1 {
		t.Errorf("status = %+v", status)
	}
	if status.RecentImports[0].Status != "imported" {
		t.Errorf("import log = %+v", status.RecentImports[0])
	}
}

// TestStatusForError 测试错误映射
func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&model.SchemaError{Kind: model.KindFood, Missing: []string{"FoodName"}}, http.StatusBadRequest},
		{&model.RecordError{Row: 2, Reason: "blank"}, http.StatusBadRequest},
		{&model.InvalidQuantityError{FoodName: "Egg", Quantity: -1}, http.StatusBadRequest},
		{importer.ErrUnknownSheet, http.StatusBadRequest},
		{fmt.Errorf("%w (16 bytes)", importer.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{&model.UnknownFoodError{FoodName: "Caviar"}, http.StatusNotFound},
		{&model.UnknownProfileError{ProfileName: "Renal"}, http.StatusNotFound},
		{narrative.ErrNotConfigured, http.StatusServiceUnavailable},
		{fmt.Errorf("generate: %w", narrative.ErrNotConfigured), http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
