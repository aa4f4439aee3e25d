package model

import "sort"

// FoodItem 食物成分数据，以 Name 为唯一标识（区分大小写）
type FoodItem struct {
	Name        string         `json:"FoodName"`
	ServingSize string         `json:"ServingSize"`
	Nutrients   NutrientValues `json:"nutrients"`
}

// RdaProfile RDA 目标值配置
type RdaProfile struct {
	ProfileName string         `json:"ProfileName"`
	Nutrients   NutrientValues `json:"nutrients"`
}

// Clone 深拷贝
func (f *FoodItem) Clone() *FoodItem {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Clone 深拷贝
func (p *RdaProfile) Clone() *RdaProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ReferenceData 参考数据的只读快照，构建完成后不再修改
type ReferenceData struct {
	foods    map[string]*FoodItem
	profiles map[string]*RdaProfile
}

// NewReferenceData 由列表构建快照，同名记录后者覆盖前者
func NewReferenceData(foods []*FoodItem, profiles []*RdaProfile) *ReferenceData {
	d := &ReferenceData{
		foods:    make(map[string]*FoodItem, len(foods)),
		profiles: make(map[string]*RdaProfile, len(profiles)),
	}
	for _, f := range foods {
		d.foods[f.Name] = f.Clone()
	}
	for _, p := range profiles {
		d.profiles[p.ProfileName] = p.Clone()
	}
	return d
}

// WithFoods 返回合入一批食物后的新快照，原快照不变
func (d *ReferenceData) WithFoods(items []*FoodItem) *ReferenceData {
	next := &ReferenceData{
		foods:    make(map[string]*FoodItem, len(d.foods)+len(items)),
		profiles: d.profiles,
	}
	for k, v := range d.foods {
		next.foods[k] = v
	}
	for _, f := range items {
		next.foods[f.Name] = f.Clone()
	}
	return next
}

// WithProfiles 返回合入一批 RDA 配置后的新快照，原快照不变
func (d *ReferenceData) WithProfiles(items []*RdaProfile) *ReferenceData {
	next := &ReferenceData{
		foods:    d.foods,
		profiles: make(map[string]*RdaProfile, len(d.profiles)+len(items)),
	}
	for k, v := range d.profiles {
		next.profiles[k] = v
	}
	for _, p := range items {
		next.profiles[p.ProfileName] = p.Clone()
	}
	return next
}

// GetFood 查询食物；不存在时返回 false，不视为错误
func (d *ReferenceData) GetFood(name string) (*FoodItem, bool) {
	f, ok := d.foods[name]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// GetRdaProfile 查询 RDA 配置；不存在时返回 false
func (d *ReferenceData) GetRdaProfile(name string) (*RdaProfile, bool) {
	p, ok := d.profiles[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// AllFoods 按名称排序返回全部食物
func (d *ReferenceData) AllFoods() []*FoodItem {
	result := make([]*FoodItem, 0, len(d.foods))
	for _, f := range d.foods {
		result = append(result, f.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// AllProfiles 按名称排序返回全部 RDA 配置
func (d *ReferenceData) AllProfiles() []*RdaProfile {
	result := make([]*RdaProfile, 0, len(d.profiles))
	for _, p := range d.profiles {
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProfileName < result[j].ProfileName })
	return result
}

// AllProfileNames 按名称排序返回全部 RDA 配置名
func (d *ReferenceData) AllProfileNames() []string {
	names := make([]string, 0, len(d.profiles))
	for name := range d.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FoodCount 食物数量
func (d *ReferenceData) FoodCount() int {
	return len(d.foods)
}

// ProfileCount RDA 配置数量
func (d *ReferenceData) ProfileCount() int {
	return len(d.profiles)
}
