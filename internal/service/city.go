package service

import (
	"context"
	"fmt"
	"strings"

	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"github.com/sirupsen/logrus"
)

// CityService 城市调和，以及世界地图面板（城市 + 城市内公园）的入库
type CityService struct {
	reconciler *Reconciler[model.City, *model.City]
	parks      *ParkService
	players    *PlayerService
	logger     *logrus.Logger
}

func NewCityService(repo interfaces.Repository[model.City], parks *ParkService, players *PlayerService, logger *logrus.Logger) *CityService {
	return &CityService{
		reconciler: NewReconciler[model.City](repo),
		parks:      parks,
		players:    players,
		logger:     logger,
	}
}

func (s *CityService) Reconcile(ctx context.Context, c *model.City) (*model.City, error) {
	return s.reconciler.Reconcile(ctx, c)
}

// FindOrCreate 名字为空时返回 nil, nil
func (s *CityService) FindOrCreate(ctx context.Context, name string) (*model.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.reconciler.FindOrCreate(ctx, &model.City{Name: name})
}

// ReconcilePanel 调和城市本身，再把面板中列出的公园挂到该城市、创建者挂为所有者。
// 单个公园失败只记录日志
func (s *CityService) ReconcilePanel(ctx context.Context, city *model.City, parks []model.PanelPark) (*model.City, error) {
	saved, err := s.Reconcile(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("调和城市%s失败: %w", city.Name, err)
	}
	for _, pp := range parks {
		if err := s.attachPanelPark(ctx, saved, pp); err != nil {
			s.logger.WithFields(logrus.Fields{
				"city": saved.Name,
				"park": pp.Name,
			}).WithError(err).Warn("城市面板公园入库失败，跳过")
		}
	}
	return saved, nil
}

func (s *CityService) attachPanelPark(ctx context.Context, city *model.City, pp model.PanelPark) error {
	name := strings.TrimSpace(pp.Name)
	if name == "" {
		return nil
	}
	candidate := &model.Park{Name: name, CityID: &city.ID, City: city}
	owner, err := s.players.FindOrCreate(ctx, pp.Creator)
	if err != nil {
		return err
	}
	if owner != nil {
		candidate.OwnerID = &owner.ID
		candidate.Owner = owner
	}
	_, err = s.parks.Reconcile(ctx, candidate)
	return err
}
