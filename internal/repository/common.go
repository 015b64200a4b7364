package repository

import (
	"errors"

	"gorm.io/gorm"
)

// found 将 gorm 的记录不存在转换为 nil, nil
func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// normalizePage 分页参数兜底：page 从 1 开始，page_size 默认 20、最大 100
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// listPage 通用分页查询，preloads 只作用于数据查询，不参与计数
func listPage[T any](db *gorm.DB, page, pageSize int, preloads ...string) ([]*T, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	db = db.Model(new(T))
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	var list []*T
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
