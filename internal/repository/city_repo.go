package repository

import (
	"context"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
)

// CityRepository 城市仓储（name 唯一）
type CityRepository interface {
	interfaces.Repository[model.City]
	List(ctx context.Context, page, pageSize int) ([]*model.City, int64, error)
	ListAll(ctx context.Context) ([]*model.City, error)
}

type cityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) FindByKey(ctx context.Context, c *model.City) (*model.City, error) {
	if c.Name == "" {
		return nil, nil
	}
	var city model.City
	err := r.db.WithContext(ctx).Where("name = ?", c.Name).First(&city).Error
	return found(&city, err)
}

func (r *cityRepository) Save(ctx context.Context, c *model.City) (*model.City, error) {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *cityRepository) List(ctx context.Context, page, pageSize int) ([]*model.City, int64, error) {
	return listPage[model.City](r.db.WithContext(ctx), page, pageSize)
}

func (r *cityRepository) ListAll(ctx context.Context) ([]*model.City, error) {
	var list []*model.City
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
