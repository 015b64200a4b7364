package service

import (
	"context"
	"strings"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"
	"TPISync/internal/utils/scrapeparse"
)

// RideService 设施调和
type RideService struct {
	reconciler *Reconciler[model.Ride, *model.Ride]
}

func NewRideService(repo interfaces.Repository[model.Ride]) *RideService {
	return &RideService{reconciler: NewReconciler[model.Ride](repo)}
}

func (s *RideService) Reconcile(ctx context.Context, r *model.Ride) (*model.Ride, error) {
	return s.reconciler.Reconcile(ctx, r)
}

// FindOrCreateByLabel "Boomerang de Vekoma" 拆成 (name, brand) 后查找或创建；
// 拆不开的标签整体作为名称，品牌为空
func (s *RideService) FindOrCreateByLabel(ctx context.Context, label string) (*model.Ride, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}
	name, brand, _ := scrapeparse.SplitRideLabel(label)
	return s.reconciler.FindOrCreate(ctx, &model.Ride{Name: name, Brand: brand})
}
