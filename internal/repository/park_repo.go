package repository

import (
	"context"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParkRepository 公园仓储
type ParkRepository interface {
	interfaces.ParkRepository
	List(ctx context.Context, filter ParkFilter, page, pageSize int) ([]*model.Park, int64, error)
	ListAll(ctx context.Context) ([]*model.Park, error)
	ListParkRides(ctx context.Context) ([]*model.ParkRide, error)
}

// ParkFilter 公园列表筛选
type ParkFilter struct {
	CityID  *uint64
	OwnerID *uint64
	Name    string // 模糊匹配
}

type parkRepository struct {
	db *gorm.DB
}

func NewParkRepository(db *gorm.DB) ParkRepository {
	return &parkRepository{db: db}
}

// FindByKey external_id 优先；未命中时按名称回退到尚无 external_id 的历史记录。
// 名称不唯一，同名时取 id 最小的一条
func (r *parkRepository) FindByKey(ctx context.Context, c *model.Park) (*model.Park, error) {
	db := r.db.WithContext(ctx)
	if c.ExternalID != nil {
		var p model.Park
		res, err := found(&p, db.Where("external_id = ?", *c.ExternalID).First(&p).Error)
		if err != nil || res != nil {
			return res, err
		}
	}
	if c.Name == "" {
		return nil, nil
	}
	q := db.Where("name = ?", c.Name)
	if c.ExternalID != nil {
		q = q.Where("external_id IS NULL")
	}
	var p model.Park
	return found(&p, q.First(&p).Error)
}

// Save 只写公园本身的列，owner / city 通过外键维护，rides 通过 AttachRide 维护
func (r *parkRepository) Save(ctx context.Context, p *model.Park) (*model.Park, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// AttachRide 幂等地写入关联行
func (r *parkRepository) AttachRide(ctx context.Context, parkID, rideID uint64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ParkRide{ParkID: parkID, RideID: rideID}).Error
}

func (r *parkRepository) List(ctx context.Context, filter ParkFilter, page, pageSize int) ([]*model.Park, int64, error) {
	db := r.db.WithContext(ctx)
	if filter.CityID != nil {
		db = db.Where("city_id = ?", *filter.CityID)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Name != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	return listPage[model.Park](db, page, pageSize, "Owner", "City", "Rides")
}

func (r *parkRepository) ListAll(ctx context.Context) ([]*model.Park, error) {
	var list []*model.Park
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *parkRepository) ListParkRides(ctx context.Context) ([]*model.ParkRide, error) {
	var list []*model.ParkRide
	if err := r.db.WithContext(ctx).Order("park_id ASC, ride_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
