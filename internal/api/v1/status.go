package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/model"
	"nutriplan/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool               `json:"initialized"`          // 食物与 RDA 均已导入
	FoodCount      int                `json:"foodCount"`            // 食物数
	ProfileCount   int                `json:"profileCount"`         // RDA 配置数
	LastFoodImport string             `json:"lastFoodImport"`       // 最后一次食物导入时间
	LastRdaImport  string             `json:"lastRdaImport"`        // 最后一次 RDA 导入时间
	RecentImports  []*store.ImportLog `json:"recentImports,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	data, err := h.store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取参考数据失败"})
		return
	}

	resp := StatusResponse{
		FoodCount:    data.FoodCount(),
		ProfileCount: data.ProfileCount(),
	}
	resp.Initialized = resp.FoodCount > 0 && resp.ProfileCount > 0

	if h.status != nil {
		resp.LastFoodImport, _ = h.status.GetMeta("last_import_" + string(model.KindFood))
		resp.LastRdaImport, _ = h.status.GetMeta("last_import_" + string(model.KindRda))
		if logs, err := h.status.RecentImportLogs(10); err == nil {
			resp.RecentImports = logs
		}
	}

	c.JSON(http.StatusOK, resp)
}
