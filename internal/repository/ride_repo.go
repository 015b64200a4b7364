package repository

import (
	"context"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
)

// RideRepository 设施仓储
type RideRepository interface {
	interfaces.Repository[model.Ride]
	ListAll(ctx context.Context) ([]*model.Ride, error)
}

type rideRepository struct {
	db *gorm.DB
}

func NewRideRepository(db *gorm.DB) RideRepository {
	return &rideRepository{db: db}
}

// FindByKey 先按 image_url 查；未命中再按 (name, brand) 查尚未记录图片的设施，
// 这样从新闻里先建出的设施能在商店抓取时补上图片，而不会与另一款同名设施合并
func (r *rideRepository) FindByKey(ctx context.Context, c *model.Ride) (*model.Ride, error) {
	db := r.db.WithContext(ctx)
	hasImage := c.ImageURL != nil && *c.ImageURL != ""
	if hasImage {
		var ride model.Ride
		res, err := found(&ride, db.Where("image_url = ?", *c.ImageURL).First(&ride).Error)
		if err != nil || res != nil {
			return res, err
		}
	}
	if c.Name == "" {
		return nil, nil
	}
	q := db.Where("name = ? AND brand = ?", c.Name, c.Brand)
	if hasImage {
		q = q.Where("image_url IS NULL")
	}
	var ride model.Ride
	return found(&ride, q.First(&ride).Error)
}

func (r *rideRepository) Save(ctx context.Context, ride *model.Ride) (*model.Ride, error) {
	if err := r.db.WithContext(ctx).Save(ride).Error; err != nil {
		return nil, err
	}
	return ride, nil
}

func (r *rideRepository) ListAll(ctx context.Context) ([]*model.Ride, error) {
	var list []*model.Ride
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
