package service

import (
	"context"
	"strings"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"
)

// PlayerService 玩家按名字查找或创建
type PlayerService struct {
	reconciler *Reconciler[model.Player, *model.Player]
}

func NewPlayerService(repo interfaces.Repository[model.Player]) *PlayerService {
	return &PlayerService{reconciler: NewReconciler[model.Player](repo)}
}

// FindOrCreate 名字为空时返回 nil, nil（引用缺失不是错误）
func (s *PlayerService) FindOrCreate(ctx context.Context, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.reconciler.FindOrCreate(ctx, &model.Player{Name: name})
}
