package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Nutrient 营养素（规范字段）
type Nutrient int

const (
	Calories      Nutrient = iota // 能量
	Protein                       // 蛋白质
	Carbohydrates                 // 碳水化合物
	Fat                           // 脂肪
	Sodium                        // 钠
	Fiber                         // 膳食纤维
)

// NutrientCount 规范字段数量
const NutrientCount = 6

// nutrientField 规范字段名与展示标签的固定对照
type nutrientField struct {
	Key   string // 内部规范字段名
	Label string // 参考数据源使用的带单位标签
}

var nutrientFields = [NutrientCount]nutrientField{
	Calories:      {Key: "Calories_kcal", Label: "Calories (kcal)"},
	Protein:       {Key: "Protein_g", Label: "Protein (g)"},
	Carbohydrates: {Key: "Carbohydrates_g", Label: "Carbohydrates (g)"},
	Fat:           {Key: "Fat_g", Label: "Fat (g)"},
	Sodium:        {Key: "Sodium_mg", Label: "Sodium (mg)"},
	Fiber:         {Key: "Fiber_g", Label: "Fiber (g)"},
}

var (
	nutrientByKey   = make(map[string]Nutrient, NutrientCount)
	nutrientByLabel = make(map[string]Nutrient, NutrientCount)
)

func init() {
	for i, f := range nutrientFields {
		nutrientByKey[f.Key] = Nutrient(i)
		nutrientByLabel[f.Label] = Nutrient(i)
	}
}

// AllNutrients 按规范顺序返回全部营养素
func AllNutrients() []Nutrient {
	return []Nutrient{Calories, Protein, Carbohydrates, Fat, Sodium, Fiber}
}

// Key 规范字段名
func (n Nutrient) Key() string {
	if !n.valid() {
		return ""
	}
	return nutrientFields[n].Key
}

// Label 展示标签，如 "Calories (kcal)"
func (n Nutrient) Label() string {
	if !n.valid() {
		return ""
	}
	return nutrientFields[n].Label
}

func (n Nutrient) String() string {
	return n.Key()
}

func (n Nutrient) valid() bool {
	return n >= 0 && int(n) < NutrientCount
}

// NutrientByLabel 根据外部标签查找营养素
func NutrientByLabel(label string) (Nutrient, bool) {
	n, ok := nutrientByLabel[label]
	return n, ok
}

// NutrientByKey 根据规范字段名查找营养素
func NutrientByKey(key string) (Nutrient, bool) {
	n, ok := nutrientByKey[key]
	return n, ok
}

// NutrientLabels 按规范顺序返回全部展示标签
func NutrientLabels() []string {
	labels := make([]string, 0, NutrientCount)
	for _, f := range nutrientFields {
		labels = append(labels, f.Label)
	}
	return labels
}

// NutrientValues 可缺省的营养素取值，六个字段始终存在
type NutrientValues [NutrientCount]NullFloat

// Get 读取单个营养素
func (v NutrientValues) Get(n Nutrient) NullFloat {
	return v[n]
}

// Set 写入单个营养素
func (v *NutrientValues) Set(n Nutrient, f NullFloat) {
	v[n] = f
}

// MarshalJSON 以规范字段名为键输出，缺省值输出为 null
func (v NutrientValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range nutrientFields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.Key))
		buf.WriteByte(':')
		b, err := v[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 接受规范字段名或展示标签作为键
func (v *NutrientValues) UnmarshalJSON(data []byte) error {
	var raw map[string]NullFloat
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out NutrientValues
	for k, f := range raw {
		n, ok := NutrientByKey(k)
		if !ok {
			n, ok = NutrientByLabel(k)
		}
		if !ok {
			return fmt.Errorf("unknown nutrient %q", k)
		}
		out[n] = f
	}
	*v = out
	return nil
}

// NutrientTotals 营养素合计，缺省来源按 0 计入，因此不存在缺省值
type NutrientTotals [NutrientCount]float64

// Get 读取单个合计值
func (t NutrientTotals) Get(n Nutrient) float64 {
	return t[n]
}

// MarshalJSON 以规范字段名为键输出
func (t NutrientTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range nutrientFields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.Key))
		buf.WriteByte(':')
		b, err := json.Marshal(t[i])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 接受规范字段名或展示标签作为键
func (t *NutrientTotals) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out NutrientTotals
	for k, f := range raw {
		n, ok := NutrientByKey(k)
		if !ok {
			n, ok = NutrientByLabel(k)
		}
		if !ok {
			return fmt.Errorf("unknown nutrient %q", k)
		}
		out[n] = f
	}
	*t = out
	return nil
}
