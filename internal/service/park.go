package service

import (
	"context"
	"fmt"
	"strings"

	"TPISync/internal/adapter/tpi"
	"TPISync/internal/interfaces"
	"TPISync/internal/model"
	"TPISync/internal/utils/scrapeparse"

	"github.com/sirupsen/logrus"
)

// ParkService 公园调和、公园与设施的关联、公园详情页入库
type ParkService struct {
	repo       interfaces.ParkRepository
	reconciler *Reconciler[model.Park, *model.Park]
	cities     *Reconciler[model.City, *model.City]
	players    *PlayerService
	rides      *RideService
	logger     *logrus.Logger
}

func NewParkService(
	repo interfaces.ParkRepository,
	cityRepo interfaces.Repository[model.City],
	players *PlayerService,
	rides *RideService,
	logger *logrus.Logger,
) *ParkService {
	return &ParkService{
		repo:       repo,
		reconciler: NewReconciler[model.Park](repo),
		cities:     NewReconciler[model.City](cityRepo),
		players:    players,
		rides:      rides,
		logger:     logger,
	}
}

func (s *ParkService) Reconcile(ctx context.Context, p *model.Park) (*model.Park, error) {
	return s.reconciler.Reconcile(ctx, p)
}

// FindOrCreateByName 按名称（历史兜底键）查找或创建，名字为空时返回 nil, nil
func (s *ParkService) FindOrCreateByName(ctx context.Context, name string) (*model.Park, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.reconciler.FindOrCreate(ctx, &model.Park{Name: name})
}

// AttachRide 集合语义，重复关联无副作用
func (s *ParkService) AttachRide(ctx context.Context, park *model.Park, ride *model.Ride) error {
	if park == nil || ride == nil {
		return nil
	}
	if err := s.repo.AttachRide(ctx, park.ID, ride.ID); err != nil {
		return fmt.Errorf("关联公园%s与设施%s失败: %w", park.Name, ride.Name, err)
	}
	return nil
}

// ReconcilePage 公园详情页入库：所有者、所在城市查找或创建，公园按 external_id 调和，
// 页面上的设施卡片按图片（其次名称+品牌）调和后关联到公园
func (s *ParkService) ReconcilePage(ctx context.Context, page *model.ParkPage) (*model.Park, error) {
	candidate := tpi.ToPark(page)

	owner, err := s.players.FindOrCreate(ctx, page.Owner)
	if err != nil {
		return nil, fmt.Errorf("公园%d所有者入库失败: %w", page.ExternalID, err)
	}
	if owner != nil {
		candidate.OwnerID = &owner.ID
		candidate.Owner = owner
	}
	if cityName := scrapeparse.CleanLocation(page.Location); cityName != "" {
		city, err := s.cities.FindOrCreate(ctx, &model.City{Name: cityName})
		if err != nil {
			return nil, fmt.Errorf("公园%d所在城市入库失败: %w", page.ExternalID, err)
		}
		candidate.CityID = &city.ID
		candidate.City = city
	}

	park, err := s.Reconcile(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("调和公园%d失败: %w", page.ExternalID, err)
	}

	for _, card := range page.Attractions {
		rideCandidate := tpi.ToAttractionRide(card)
		if rideCandidate == nil {
			s.logger.WithField("park", park.Name).Debug("设施卡片无图片也无名称，跳过")
			continue
		}
		ride, err := s.rides.Reconcile(ctx, rideCandidate)
		if err != nil {
			return nil, fmt.Errorf("公园%d设施入库失败: %w", page.ExternalID, err)
		}
		if err := s.AttachRide(ctx, park, ride); err != nil {
			return nil, err
		}
	}
	return park, nil
}
