package calculator

import (
	"fmt"

	"nutriplan/internal/model"
	"nutriplan/internal/service/report"
	"nutriplan/internal/service/store"
)

// Engine 营养计算引擎
type Engine struct {
	store store.ReferenceStore
}

// NewEngine 创建计算引擎
func NewEngine(store store.ReferenceStore) *Engine {
	return &Engine{store: store}
}

// Calculate 基于同一快照完成合计、比较与报告渲染
func (e *Engine) Calculate(req model.CalculationRequest) (*model.CalculationResponse, error) {
	data, err := e.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	return CalculateWith(data, req)
}

// CalculateWith 在给定快照上计算
func CalculateWith(data *model.ReferenceData, req model.CalculationRequest) (*model.CalculationResponse, error) {
	totals, details, err := Aggregate(req.SelectedFoods, data)
	if err != nil {
		return nil, err
	}

	comparison, targets, err := Compare(totals, req.RdaProfileName, data)
	if err != nil {
		return nil, err
	}

	return &model.CalculationResponse{
		SelectedMenu:       details,
		TotalNutrients:     totals,
		RdaProfileName:     req.RdaProfileName,
		RdaTargets:         targets,
		NutrientComparison: comparison,
		FinalSummary:       report.Render(totals, targets, comparison, req.RdaProfileName),
	}, nil
}
