package pg

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutriplan/internal/model"
)

// defaultTimeout 单次操作超时
const defaultTimeout = 30 * time.Second

// Store PostgreSQL 参考数据存储
type Store struct {
	pool *pgxpool.Pool
}

// Connect 连接数据库并初始化表结构
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Println("已连接 PostgreSQL 参考数据库")
	return s, nil
}

// Close 关闭连接池
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	nutrientDDL := make([]string, 0, model.NutrientCount)
	for _, c := range nutrientColumns() {
		nutrientDDL = append(nutrientDDL, c+" DOUBLE PRECISION")
	}
	cols := strings.Join(nutrientDDL, ",\n\t\t\t")

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS food_items (
			name TEXT PRIMARY KEY,
			serving_size TEXT NOT NULL DEFAULT '',
			` + cols + `,
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS rda_profiles (
			profile_name TEXT PRIMARY KEY,
			` + cols + `,
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertFoods 批量写入食物
func (s *Store) UpsertFoods(items []*model.FoodItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.UpsertFoodsContext(ctx, items)
}

// UpsertFoodsContext 批量写入食物，单事务内完成
func (s *Store) UpsertFoodsContext(ctx context.Context, items []*model.FoodItem) error {
	if len(items) == 0 {
		return nil
	}

	query := upsertSQL("food_items", "name", "serving_size")
	batch := &pgx.Batch{}
	for _, f := range items {
		args := make([]any, 0, 2+model.NutrientCount)
		args = append(args, f.Name, f.ServingSize)
		for _, v := range f.Nutrients {
			args = append(args, v)
		}
		batch.Queue(query, args...)
	}

	return s.runBatch(ctx, batch)
}

// UpsertRdaProfiles 批量写入 RDA 配置
func (s *Store) UpsertRdaProfiles(items []*model.RdaProfile) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.UpsertRdaProfilesContext(ctx, items)
}

// UpsertRdaProfilesContext 批量写入 RDA 配置，单事务内完成
func (s *Store) UpsertRdaProfilesContext(ctx context.Context, items []*model.RdaProfile) error {
	if len(items) == 0 {
		return nil
	}

	query := upsertSQL("rda_profiles", "profile_name")
	batch := &pgx.Batch{}
	for _, p := range items {
		args := make([]any, 0, 1+model.NutrientCount)
		args = append(args, p.ProfileName)
		for _, v := range p.Nutrients {
			args = append(args, v)
		}
		batch.Queue(query, args...)
	}

	return s.runBatch(ctx, batch)
}

func (s *Store) runBatch(ctx context.Context, batch *pgx.Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Snapshot 读取一致快照
func (s *Store) Snapshot() (*model.ReferenceData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.SnapshotContext(ctx)
}

// SnapshotContext 在 REPEATABLE READ 只读事务中读取两张表
func (s *Store) SnapshotContext(ctx context.Context) (*model.ReferenceData, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	nutrients := strings.Join(nutrientColumns(), ", ")

	rows, err := tx.Query(ctx, "SELECT name, serving_size, "+nutrients+" FROM food_items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	foods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.FoodItem, error) {
		f := &model.FoodItem{}
		dest := []any{&f.Name, &f.ServingSize}
		for i := range f.Nutrients {
			dest = append(dest, &f.Nutrients[i])
		}
		return f, row.Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan foods: %w", err)
	}

	rows, err = tx.Query(ctx, "SELECT profile_name, "+nutrients+" FROM rda_profiles ORDER BY profile_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query rda profiles: %w", err)
	}
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.RdaProfile, error) {
		p := &model.RdaProfile{}
		dest := []any{&p.ProfileName}
		for i := range p.Nutrients {
			dest = append(dest, &p.Nutrients[i])
		}
		return p, row.Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rda profiles: %w", err)
	}

	return model.NewReferenceData(foods, profiles), nil
}

func nutrientColumns() []string {
	cols := make([]string, 0, model.NutrientCount)
	for _, n := range model.AllNutrients() {
		cols = append(cols, strings.ToLower(n.Key()))
	}
	return cols
}

// upsertSQL 冲突时覆盖所有非键列
func upsertSQL(table, key string, extra ...string) string {
	cols := append([]string{key}, extra...)
	cols = append(cols, nutrientColumns()...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sets := make([]string, 0, len(cols))
	for _, c := range cols[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	sets = append(sets, "updated_at = now()")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), key, strings.Join(sets, ", "),
	)
}
