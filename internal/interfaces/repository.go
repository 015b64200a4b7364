package interfaces

import (
	"context"

	"TPISync/internal/model"
)

// Repository 调和器依赖的最小持久化能力。
// FindByKey 依据候选实体携带的键（稳定 id 优先，其次自然键）查找规范记录，不存在时返回 nil, nil
type Repository[T any] interface {
	FindByKey(ctx context.Context, candidate *T) (*T, error)
	Save(ctx context.Context, entity *T) (*T, error)
}

// ParkRepository 公园仓储：在通用能力之上维护公园与设施的关联
type ParkRepository interface {
	Repository[model.Park]
	AttachRide(ctx context.Context, parkID, rideID uint64) error
}

// ActivityRepository 新闻事件仓储
type ActivityRepository interface {
	FindByKey(ctx context.Context, key model.ActivityKey) (*model.ActivityEvent, error)
	Create(ctx context.Context, event *model.ActivityEvent) error
}

// SnapshotRepository 玩家数据历史
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.PlayerSnapshot) error
}
