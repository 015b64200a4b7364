package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityEvent 由新闻日志解析出的动态事件，(posted_at, type, category, text) 唯一
type ActivityEvent struct {
	ID           uint64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostedAt     time.Time        `gorm:"column:posted_at;type:timestamp;not null;uniqueIndex:uq_activity_dedup,priority:1" json:"postedAt"`
	Type         ActivityType     `gorm:"column:type;type:varchar(32);not null;uniqueIndex:uq_activity_dedup,priority:2" json:"type"`
	Category     ActivityCategory `gorm:"column:category;type:varchar(16);not null;uniqueIndex:uq_activity_dedup,priority:3" json:"category"`
	Text         string           `gorm:"column:text;type:text;not null;uniqueIndex:uq_activity_dedup,priority:4" json:"text"`
	PlayerID     *uint64          `gorm:"column:player_id;type:bigint;index" json:"playerId,omitempty"`
	CityID       *uint64          `gorm:"column:city_id;type:bigint;index" json:"cityId,omitempty"`
	ActorParkID  *uint64          `gorm:"column:actor_park_id;type:bigint;index" json:"actorParkId,omitempty"`
	VictimParkID *uint64          `gorm:"column:victim_park_id;type:bigint" json:"victimParkId,omitempty"`
	RideID       *uint64          `gorm:"column:ride_id;type:bigint" json:"rideId,omitempty"`
	Amount       *int64           `gorm:"column:amount;type:bigint" json:"amount,omitempty"`
	Extracted    datatypes.JSON   `gorm:"column:extracted;type:jsonb" json:"extracted,omitempty"` // 分类器提取的原始字段
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (ActivityEvent) TableName() string { return "activity_events" }

// Key 去重键
func (a *ActivityEvent) Key() ActivityKey {
	return ActivityKey{PostedAt: a.PostedAt, Type: a.Type, Category: a.Category, Text: a.Text}
}

// ActivityKey 新闻事件去重键
type ActivityKey struct {
	PostedAt time.Time
	Type     ActivityType
	Category ActivityCategory
	Text     string
}
