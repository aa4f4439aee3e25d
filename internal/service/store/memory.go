package store

import (
	"sync"

	"nutriplan/internal/model"
)

// ReferenceStore 参考数据存储
// 每个批次整体可见或整体不可见；读取方通过 Snapshot 获得一致视图
type ReferenceStore interface {
	UpsertFoods(items []*model.FoodItem) error
	UpsertRdaProfiles(items []*model.RdaProfile) error
	Snapshot() (*model.ReferenceData, error)
}

// MemoryStore 内存数据存储
type MemoryStore struct {
	data *model.ReferenceData
	mu   sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: model.NewReferenceData(nil, nil),
	}
}

// UpsertFoods 批量写入食物；同名记录整体替换
func (s *MemoryStore) UpsertFoods(items []*model.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 写时复制，旧快照对正在进行的读取保持不变
	s.data = s.data.WithFoods(items)
	return nil
}

// UpsertRdaProfiles 批量写入 RDA 配置
func (s *MemoryStore) UpsertRdaProfiles(items []*model.RdaProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = s.data.WithProfiles(items)
	return nil
}

// UpsertFood 写入单个食物
func (s *MemoryStore) UpsertFood(item *model.FoodItem) error {
	return s.UpsertFoods([]*model.FoodItem{item})
}

// UpsertRdaProfile 写入单个 RDA 配置
func (s *MemoryStore) UpsertRdaProfile(item *model.RdaProfile) error {
	return s.UpsertRdaProfiles([]*model.RdaProfile{item})
}

// Snapshot 获取当前快照
func (s *MemoryStore) Snapshot() (*model.ReferenceData, error) {
	return s.current(), nil
}

func (s *MemoryStore) current() *model.ReferenceData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// GetFood 获取单个食物
func (s *MemoryStore) GetFood(name string) (*model.FoodItem, bool) {
	return s.current().GetFood(name)
}

// GetRdaProfile 获取单个 RDA 配置
func (s *MemoryStore) GetRdaProfile(name string) (*model.RdaProfile, bool) {
	return s.current().GetRdaProfile(name)
}

// AllFoods 获取所有食物
func (s *MemoryStore) AllFoods() []*model.FoodItem {
	return s.current().AllFoods()
}

// AllProfileNames 获取所有 RDA 配置名
func (s *MemoryStore) AllProfileNames() []string {
	return s.current().AllProfileNames()
}

// Count 获取食物与 RDA 配置数量
func (s *MemoryStore) Count() (foods, profiles int) {
	d := s.current()
	return d.FoodCount(), d.ProfileCount()
}

// Clear 清空所有数据
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = model.NewReferenceData(nil, nil)
}
