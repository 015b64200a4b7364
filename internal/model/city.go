package model

import "time"

// City 城市（name 为全局自然键）
type City struct {
	ID               uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name             string      `gorm:"column:name;type:varchar(128);uniqueIndex;not null" json:"name"`
	Country          *string     `gorm:"column:country;type:varchar(128)" json:"country,omitempty"`
	Difficulty       *Difficulty `gorm:"column:difficulty;type:varchar(16)" json:"difficulty,omitempty"`
	Population       *int64      `gorm:"column:population;type:bigint" json:"population,omitempty"`
	AvailableSurface *int64      `gorm:"column:available_surface;type:bigint" json:"availableSurface,omitempty"`
	TotalSurface     *int64      `gorm:"column:total_surface;type:bigint" json:"totalSurface,omitempty"`
	MaxHeight        *int64      `gorm:"column:max_height;type:bigint" json:"maxHeight,omitempty"`
	ParkPopulation   *int64      `gorm:"column:park_population;type:bigint" json:"parkPopulation,omitempty"` // 已建公园数
	ParkCapacity     *int64      `gorm:"column:park_capacity;type:bigint" json:"parkCapacity,omitempty"`     // 公园容量上限
	PriceByMeter     *int64      `gorm:"column:price_by_meter;type:bigint" json:"priceByMeter,omitempty"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (City) TableName() string { return "cities" }

// HasKey 是否具备可用于查找的键
func (c *City) HasKey() bool { return c.Name != "" }

// MergeFrom 将一次新的观测合并进当前记录
func (c *City) MergeFrom(src *City) {
	if src.Name != "" {
		c.Name = src.Name
	}
	mergeField(&c.Country, src.Country)
	mergeField(&c.Difficulty, src.Difficulty)
	mergeField(&c.Population, src.Population)
	mergeField(&c.AvailableSurface, src.AvailableSurface)
	mergeField(&c.TotalSurface, src.TotalSurface)
	mergeField(&c.MaxHeight, src.MaxHeight)
	mergeField(&c.ParkPopulation, src.ParkPopulation)
	mergeField(&c.ParkCapacity, src.ParkCapacity)
	mergeField(&c.PriceByMeter, src.PriceByMeter)
}
