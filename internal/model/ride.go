package model

import "time"

// Ride 游乐设施：优先以 image_url 识别，其次 (name, brand)
type Ride struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ImageURL          *string   `gorm:"column:image_url;type:varchar(255);uniqueIndex" json:"imageUrl,omitempty"`
	Name              string    `gorm:"column:name;type:varchar(128);not null;index:idx_ride_name_brand" json:"name"`
	Brand             string    `gorm:"column:brand;type:varchar(128);not null;default:'';index:idx_ride_name_brand" json:"brand"`
	Type              *RideType `gorm:"column:type;type:varchar(16)" json:"type,omitempty"`
	Hype              *int64    `gorm:"column:hype;type:bigint" json:"hype,omitempty"`
	Price             *int64    `gorm:"column:price;type:bigint" json:"price,omitempty"`
	Surface           *int64    `gorm:"column:surface;type:bigint" json:"surface,omitempty"`
	MaxCapacityByHour *int64    `gorm:"column:max_capacity_by_hour;type:bigint" json:"maxCapacityByHour,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Ride) TableName() string { return "rides" }

func (r *Ride) HasKey() bool {
	return (r.ImageURL != nil && *r.ImageURL != "") || r.Name != ""
}

func (r *Ride) MergeFrom(src *Ride) {
	if src.Name != "" {
		r.Name = src.Name
	}
	if src.Brand != "" {
		r.Brand = src.Brand
	}
	mergeField(&r.ImageURL, src.ImageURL)
	mergeField(&r.Type, src.Type)
	mergeField(&r.Hype, src.Hype)
	mergeField(&r.Price, src.Price)
	mergeField(&r.Surface, src.Surface)
	mergeField(&r.MaxCapacityByHour, src.MaxCapacityByHour)
}
