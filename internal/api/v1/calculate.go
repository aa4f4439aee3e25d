package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"nutriplan/internal/model"
)

// CalculateNutrition 计算菜单营养合计并与 RDA 对比
// POST /api/calculate-nutrition
func (h *Handler) CalculateNutrition(c *gin.Context) {
	var req model.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	resp, err := h.engine.Calculate(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export 导出一次计算结果为 Excel
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req model.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	resp, err := h.engine.Calculate(req)
	if err != nil {
		writeError(c, err)
		return
	}

	file, err := h.exporter.ExportCalculation(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	writeWorkbook(c, fmt.Sprintf("nutrition-%s.xlsx", resp.RdaProfileName), file)
}

// writeWorkbook 以附件形式写出工作簿
func writeWorkbook(c *gin.Context, filename string, file *excelize.File) {
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
}
