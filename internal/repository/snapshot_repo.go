package repository

import (
	"context"
	"fmt"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository 玩家数据历史，只插入
func NewSnapshotRepository(db *gorm.DB) interfaces.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *model.PlayerSnapshot) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error; err != nil {
		return fmt.Errorf("保存玩家数据失败: %w", err)
	}
	return nil
}
