package model

import "time"

// Player 玩家（name 为全局自然键）
type Player struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(128);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Player) TableName() string { return "players" }

func (p *Player) HasKey() bool { return p.Name != "" }

// MergeFrom 玩家只有名字这一个字段，名字即键
func (p *Player) MergeFrom(src *Player) {
	if src.Name != "" {
		p.Name = src.Name
	}
}

// PlayerSnapshot 当前登录玩家在某一时刻的个人数据，只追加不修改
type PlayerSnapshot struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PlayerID   *uint64   `gorm:"column:player_id;type:bigint;index" json:"playerId,omitempty"`
	Money      *int64    `gorm:"column:money;type:bigint" json:"money,omitempty"`
	Level      *int64    `gorm:"column:level;type:bigint" json:"level,omitempty"`
	Experience *int64    `gorm:"column:experience;type:bigint" json:"experience,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
}

func (PlayerSnapshot) TableName() string { return "player_snapshots" }
