package v1

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/narrative"
)

// AIFeedback 根据计算结果与临床背景生成点评
// POST /api/ai-feedback
func (h *Handler) AIFeedback(c *gin.Context) {
	if h.generator == nil {
		writeError(c, narrative.ErrNotConfigured)
		return
	}

	var in narrative.Input
	if err := c.ShouldBindJSON(&in); err != nil || in.Summary == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	text, err := h.generator.Generate(c.Request.Context(), in)
	if err != nil {
		log.Printf("生成点评失败: %v", err)
		c.JSON(statusForError(err), gin.H{"error": "生成点评失败: " + err.Error()})
		return
	}

	feedback, err := h.structurer.Structure(text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "整理点评失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ai_feedback": feedback})
}
