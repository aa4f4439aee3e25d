package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// NullFloat 带显式存在标记的数值；Valid 为 false 表示缺省，与 0 区分
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float 构造有效值；NaN/Inf 归一为缺省
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Null 缺省值
func Null() NullFloat {
	return NullFloat{}
}

// OrZero 缺省时返回 0
func (f NullFloat) OrZero() float64 {
	if !f.Valid {
		return 0
	}
	return f.Float64
}

// MarshalJSON 缺省输出 null
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON null 解析为缺省
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Scan 实现 sql.Scanner
func (f *NullFloat) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = NullFloat{}
	case float64:
		*f = Float(v)
	case float32:
		*f = Float(float64(v))
	case int64:
		*f = Float(float64(v))
	case int32:
		*f = Float(float64(v))
	default:
		return fmt.Errorf("cannot scan %T into NullFloat", src)
	}
	return nil
}

// Value 实现 driver.Valuer
func (f NullFloat) Value() (driver.Value, error) {
	if !f.Valid {
		return nil, nil
	}
	return f.Float64, nil
}
