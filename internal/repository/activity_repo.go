package repository

import (
	"context"
	"fmt"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository 新闻事件仓储
type ActivityRepository interface {
	interfaces.ActivityRepository
	List(ctx context.Context, filter ActivityFilter, page, pageSize int) ([]*model.ActivityEvent, int64, error)
	ListAll(ctx context.Context) ([]*model.ActivityEvent, error)
}

// ActivityFilter 事件列表筛选
type ActivityFilter struct {
	Type     model.ActivityType
	Category model.ActivityCategory
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) FindByKey(ctx context.Context, key model.ActivityKey) (*model.ActivityEvent, error) {
	var e model.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("posted_at = ? AND type = ? AND category = ? AND text = ?", key.PostedAt, key.Type, key.Category, key.Text).
		First(&e).Error
	return found(&e, err)
}

func (r *activityRepository) Create(ctx context.Context, e *model.ActivityEvent) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("保存事件失败: %w, text: %s", err, e.Text)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter, page, pageSize int) ([]*model.ActivityEvent, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	db := r.db.WithContext(ctx).Model(&model.ActivityEvent{})
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.ActivityEvent
	if err := db.Order("posted_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *activityRepository) ListAll(ctx context.Context) ([]*model.ActivityEvent, error) {
	var list []*model.ActivityEvent
	if err := r.db.WithContext(ctx).Order("posted_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
