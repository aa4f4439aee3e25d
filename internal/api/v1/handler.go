package v1

import (
	"github.com/gin-gonic/gin"

	"nutriplan/internal/importer"
	"nutriplan/internal/narrative"
	"nutriplan/internal/service/calculator"
	"nutriplan/internal/service/excel"
	refstore "nutriplan/internal/service/store"
	"nutriplan/internal/store"
)

// StatusSource 导入日志与键值项读取（SQLite 存储提供）
type StatusSource interface {
	RecentImportLogs(limit int) ([]*store.ImportLog, error)
	GetMeta(key string) (string, error)
}

// Handler V1 API 处理器
type Handler struct {
	store      refstore.ReferenceStore
	engine     *calculator.Engine
	importer   *importer.Coordinator
	exporter   *excel.Exporter
	generator  narrative.Generator
	structurer narrative.Structurer
	status     StatusSource
}

// NewHandler 创建 V1 API 处理器
func NewHandler(st refstore.ReferenceStore, coordinator *importer.Coordinator) *Handler {
	if coordinator == nil {
		coordinator = importer.NewCoordinator(st)
	}
	return &Handler{
		store:      st,
		engine:     calculator.NewEngine(st),
		importer:   coordinator,
		exporter:   excel.NewExporter(),
		structurer: narrative.NewHeadingStructurer(),
	}
}

// WithNarrative 设置点评生成；g 为 nil 时 /ai-feedback 返回 503
func (h *Handler) WithNarrative(g narrative.Generator, s narrative.Structurer) *Handler {
	h.generator = g
	if s != nil {
		h.structurer = s
	}
	return h
}

// WithStatusSource 设置导入日志来源
func (h *Handler) WithStatusSource(src StatusSource) *Handler {
	h.status = src
	return h
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 参考数据导入
	router.POST("/upload-foods", h.UploadFoods)
	router.POST("/upload-rda", h.UploadRda)

	// 参考数据查询
	router.GET("/foods", h.ListFoods)
	router.GET("/rda-profiles", h.ListRdaProfiles)
	router.GET("/templates/:kind", h.DownloadTemplate)

	// 营养计算
	router.POST("/calculate-nutrition", h.CalculateNutrition)
	router.POST("/ai-feedback", h.AIFeedback)

	// 数据导出
	router.POST("/export", h.Export)
}
