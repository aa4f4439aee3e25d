package narrative

import (
	"context"
	"errors"

	"nutriplan/internal/model"
)

// ErrNotConfigured 未配置叙述生成服务
var ErrNotConfigured = errors.New("narrative generator is not configured")

// Input 叙述生成输入：结构化计算结果 + 临床背景
type Input struct {
	Summary        *model.CalculationResponse `json:"nutritional_summary"`
	CoMorbidities  string                     `json:"co_morbidities"`
	DietPreference string                     `json:"diet_preference"`
}

// Generator 根据计算结果生成临床点评文本
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// Structurer 将点评文本整理为分节结构
type Structurer interface {
	Structure(text string) (*Feedback, error)
}

// Section 点评中的一节
type Section struct {
	Title string   `json:"title"`
	Intro string   `json:"intro,omitempty"`
	Items []string `json:"items"`
}

// Feedback 分节后的点评
type Feedback struct {
	Sections []Section `json:"sections"`
	Raw      string    `json:"raw"`
}
