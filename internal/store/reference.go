package store

import (
	"database/sql"
	"fmt"
	"strings"

	"nutriplan/internal/model"
)

// UpsertFoods 批量写入食物，单事务内完成；任一记录失败则整批回滚
func (s *Store) UpsertFoods(items []*model.FoodItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertSQL("food_items", "name", "serving_size"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range items {
		args := make([]any, 0, 2+model.NutrientCount)
		args = append(args, f.Name, f.ServingSize)
		for _, v := range f.Nutrients {
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to upsert food %q: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertRdaProfiles 批量写入 RDA 配置
func (s *Store) UpsertRdaProfiles(items []*model.RdaProfile) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertSQL("rda_profiles", "profile_name"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range items {
		args := make([]any, 0, 1+model.NutrientCount)
		args = append(args, p.ProfileName)
		for _, v := range p.Nutrients {
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to upsert rda profile %q: %w", p.ProfileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpsertFood 写入单个食物
func (s *Store) UpsertFood(item *model.FoodItem) error {
	return s.UpsertFoods([]*model.FoodItem{item})
}

// UpsertRdaProfile 写入单个 RDA 配置
func (s *Store) UpsertRdaProfile(item *model.RdaProfile) error {
	return s.UpsertRdaProfiles([]*model.RdaProfile{item})
}

// Snapshot 在一个读事务内读取两张表，返回一致快照
func (s *Store) Snapshot() (*model.ReferenceData, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	foods, err := queryFoods(tx)
	if err != nil {
		return nil, err
	}
	profiles, err := queryProfiles(tx)
	if err != nil {
		return nil, err
	}

	return model.NewReferenceData(foods, profiles), nil
}

// upsertSQL 生成 INSERT ... ON CONFLICT DO UPDATE 语句，冲突时覆盖所有非键列
func upsertSQL(table, key string, extra ...string) string {
	cols := append([]string{key}, extra...)
	cols = append(cols, nutrientColumns()...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	sets := make([]string, 0, len(cols))
	for _, c := range cols[1:] {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), placeholders, key, strings.Join(sets, ", "),
	)
}

func queryFoods(tx *sql.Tx) ([]*model.FoodItem, error) {
	rows, err := tx.Query("SELECT name, serving_size, " + strings.Join(nutrientColumns(), ", ") + " FROM food_items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var foods []*model.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

func queryProfiles(tx *sql.Tx) ([]*model.RdaProfile, error) {
	rows, err := tx.Query("SELECT profile_name, " + strings.Join(nutrientColumns(), ", ") + " FROM rda_profiles ORDER BY profile_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query rda profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.RdaProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rda profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func scanFood(sc scanner) (*model.FoodItem, error) {
	f := &model.FoodItem{}
	dest := []any{&f.Name, &f.ServingSize}
	for i := range f.Nutrients {
		dest = append(dest, &f.Nutrients[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	return f, nil
}

func scanProfile(sc scanner) (*model.RdaProfile, error) {
	p := &model.RdaProfile{}
	dest := []any{&p.ProfileName}
	for i := range p.Nutrients {
		dest = append(dest, &p.Nutrients[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}
