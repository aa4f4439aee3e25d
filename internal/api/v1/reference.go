package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"nutriplan/internal/importer"
	"nutriplan/internal/model"
	"nutriplan/internal/parser"
)

// UploadFoods 导入食物表
// POST /api/upload-foods
func (h *Handler) UploadFoods(c *gin.Context) {
	h.upload(c, model.KindFood)
}

// UploadRda 导入 RDA 配置表
// POST /api/upload-rda
func (h *Handler) UploadRda(c *gin.Context) {
	h.upload(c, model.KindRda)
}

// upload 读取 multipart 的 file 字段并交给导入协调器
// Accept: text/event-stream 时以 SSE 推送进度
func (h *Handler) upload(c *gin.Context, kind model.RecordKind) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	opts := importer.ImportOptions{
		Kind:     kind,
		Filename: fileHeader.Filename,
		Reader:   file,
		Sheet:    c.PostForm("sheet"),
	}

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		h.uploadStream(c, opts)
		return
	}

	report, err := h.importer.Import(c.Request.Context(), opts)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("%s data uploaded and processed successfully.", kind),
		"filename": fileHeader.Filename,
		"report":   report,
	})
}

func (h *Handler) uploadStream(c *gin.Context, opts importer.ImportOptions) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progress := make(chan importer.ProgressEvent, 16)
	opts.Progress = progress

	go func() {
		defer close(progress)
		_, _ = h.importer.Import(c.Request.Context(), opts)
	}()

	for event := range progress {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListFoods 列出全部食物，键为外部列名
// GET /api/foods
func (h *Handler) ListFoods(c *gin.Context) {
	data, err := h.store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取参考数据失败"})
		return
	}
	if data.FoodCount() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "暂无食物数据，请先上传 foods 表"})
		return
	}

	foods := data.AllFoods()
	rows := make([]gin.H, 0, len(foods))
	for _, f := range foods {
		row := gin.H{
			parser.ColumnFoodName:    f.Name,
			parser.ColumnServingSize: f.ServingSize,
		}
		for _, n := range model.AllNutrients() {
			row[n.Label()] = f.Nutrients.Get(n)
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, rows)
}

// ListRdaProfiles 列出全部 RDA 配置名
// GET /api/rda-profiles
func (h *Handler) ListRdaProfiles(c *gin.Context) {
	data, err := h.store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取参考数据失败"})
		return
	}
	if data.ProfileCount() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "暂无 RDA 数据，请先上传 rda 表"})
		return
	}
	c.JSON(http.StatusOK, data.AllProfileNames())
}

// DownloadTemplate 下载当前参考数据（可直接回传导入）
// GET /api/templates/:kind
func (h *Handler) DownloadTemplate(c *gin.Context) {
	data, err := h.store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取参考数据失败"})
		return
	}

	kind := model.RecordKind(c.Param("kind"))
	var file *excelize.File
	switch kind {
	case model.KindFood:
		file, err = h.exporter.ExportFoods(data.AllFoods())
	case model.KindRda:
		file, err = h.exporter.ExportProfiles(data.AllProfiles())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的模板类型"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	writeWorkbook(c, string(kind)+".xlsx", file)
}
