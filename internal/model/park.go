package model

import "time"

// Park 公园：external_id 为游戏内页面 id（稳定键），name 仅作为历史数据的兜底键，不保证唯一
type Park struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExternalID        *int64    `gorm:"column:external_id;type:bigint;uniqueIndex" json:"externalId,omitempty"`
	Name              string    `gorm:"column:name;type:varchar(128);index;not null" json:"name"`
	OwnerID           *uint64   `gorm:"column:owner_id;type:bigint;index" json:"ownerId,omitempty"`
	Owner             *Player   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CityID            *uint64   `gorm:"column:city_id;type:bigint;index" json:"cityId,omitempty"`
	City              *City     `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Capital           *int64    `gorm:"column:capital;type:bigint" json:"capital,omitempty"`
	SocialCapital     *int64    `gorm:"column:social_capital;type:bigint" json:"socialCapital,omitempty"`
	YesterdayVisitors *int64    `gorm:"column:yesterday_visitors;type:bigint" json:"yesterdayVisitors,omitempty"`
	UsedSurface       *int64    `gorm:"column:used_surface;type:bigint" json:"usedSurface,omitempty"`
	Note              *int64    `gorm:"column:note;type:bigint" json:"note,omitempty"`
	Rides             []Ride    `gorm:"many2many:parks_rides" json:"rides,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Park) TableName() string { return "parks" }

func (p *Park) HasKey() bool { return p.ExternalID != nil || p.Name != "" }

// MergeFrom external_id 只在缺失时补齐，其余字段非空覆盖。rides 不在此合并，由 AttachRide 维护
func (p *Park) MergeFrom(src *Park) {
	if p.ExternalID == nil {
		mergeField(&p.ExternalID, src.ExternalID)
	}
	if src.Name != "" {
		p.Name = src.Name
	}
	if src.OwnerID != nil {
		mergeField(&p.OwnerID, src.OwnerID)
		p.Owner = src.Owner
	}
	if src.CityID != nil {
		mergeField(&p.CityID, src.CityID)
		p.City = src.City
	}
	mergeField(&p.Capital, src.Capital)
	mergeField(&p.SocialCapital, src.SocialCapital)
	mergeField(&p.YesterdayVisitors, src.YesterdayVisitors)
	mergeField(&p.UsedSurface, src.UsedSurface)
	mergeField(&p.Note, src.Note)
}

// ParkRide 公园与设施的关联行（parks_rides 连接表）
type ParkRide struct {
	ParkID uint64 `gorm:"column:park_id;primaryKey"`
	RideID uint64 `gorm:"column:ride_id;primaryKey"`
}

func (ParkRide) TableName() string { return "parks_rides" }
