package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"nutriplan/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名：去除首尾空白，内部连续空白压缩为一个空格
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "\ufeff")
	return whitespaceRe.ReplaceAllString(name, " ")
}

// ParseNumber 将单元格原始值转换为营养素数值
// 非数值、空值、NaN、Inf 均视为缺省
func ParseNumber(raw any) model.NullFloat {
	switch v := raw.(type) {
	case nil:
		return model.Null()
	case float64:
		return model.Float(v)
	case float32:
		return model.Float(float64(v))
	case int:
		return model.Float(float64(v))
	case int64:
		return model.Float(float64(v))
	case int32:
		return model.Float(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return model.Null()
		}
		return model.Float(f)
	case string:
		return parseNumberString(v)
	}
	return model.Null()
}

func parseNumberString(s string) model.NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Null()
	}
	// 移除千分位分隔符
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.Null()
	}
	return model.Float(f)
}

// CellText 将原始值转换为文本，用于标识列与份量标签
func CellText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
