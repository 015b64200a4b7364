package service

import (
	"context"
	"errors"
	"fmt"

	"TPISync/internal/adapter/tpi"
	"TPISync/internal/config"
	"TPISync/internal/crawler"
	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"github.com/sirupsen/logrus"
)

// Exporter 把规范数据导出为文件，返回生成的路径
type Exporter interface {
	ExportAll(ctx context.Context) ([]string, error)
}

// CrawlService 所有爬取入口（API、定时任务、命令行）都经过这里，共享同一个浏览器会话
type CrawlService struct {
	source     *tpi.Adapter
	guard      *SessionGuard
	parks      *ParkService
	cities     *CityService
	rides      *RideService
	activities *ActivityService
	snapshots  interfaces.SnapshotRepository
	exporter   Exporter
	cfg        *config.CrawlConfig
	logger     *logrus.Logger

	parkCrawler *crawler.Sequential[model.ParkPage]
}

func NewCrawlService(
	source *tpi.Adapter,
	parks *ParkService,
	cities *CityService,
	rides *RideService,
	activities *ActivityService,
	snapshots interfaces.SnapshotRepository,
	exporter Exporter,
	cfg *config.CrawlConfig,
	logger *logrus.Logger,
) *CrawlService {
	s := &CrawlService{
		source:     source,
		guard:      NewSessionGuard(),
		parks:      parks,
		cities:     cities,
		rides:      rides,
		activities: activities,
		snapshots:  snapshots,
		exporter:   exporter,
		cfg:        cfg,
		logger:     logger,
	}

	s.parkCrawler = crawler.NewSequential[model.ParkPage]("parks",
		source.ReadPark,
		func(ctx context.Context, page *model.ParkPage) error {
			_, err := parks.ReconcilePage(ctx, page)
			return err
		},
		crawler.SequentialConfig{
			RequestDelay:         cfg.RequestDelay,
			MaxConsecutiveErrors: cfg.MaxConsecutiveErrors,
			MaxItems:             cfg.MaxItems,
		},
		logger,
	)
	s.parkCrawler.SetPrepare(source.Ensure)
	s.parkCrawler.OnFinish(func(crawler.Status) { s.guard.Release() })
	return s
}

// StartParks 启动后台公园爬取并立即返回。fromID <= 0 时使用配置的起始 id。
// 会话在整轮爬取期间一直被占用
func (s *CrawlService) StartParks(ctx context.Context, fromID int64) error {
	if s.parkCrawler.IsRunning() {
		return crawler.ErrAlreadyRunning
	}
	if fromID <= 0 {
		fromID = s.cfg.ParkStartID
	}
	if !s.guard.TryAcquire("parks") {
		return fmt.Errorf("%w: %s 正在运行", ErrSessionBusy, s.guard.Holder())
	}
	if err := s.parkCrawler.Start(ctx, fromID); err != nil {
		s.guard.Release()
		return err
	}
	return nil
}

// StopParks 在下一次迭代时生效
func (s *CrawlService) StopParks() {
	s.parkCrawler.Stop()
}

func (s *CrawlService) ParkStatus() crawler.Status {
	return s.parkCrawler.Status()
}

// SessionHolder 当前占用浏览器的任务
func (s *CrawlService) SessionHolder() string {
	return s.guard.Holder()
}

// CrawlCities 遍历世界地图的国家 / 城市下拉框，逐个城市面板入库
func (s *CrawlService) CrawlCities(ctx context.Context) (crawler.DropdownResult, error) {
	var res crawler.DropdownResult
	err := s.guard.Run(ctx, "cities", func(ctx context.Context) error {
		if err := s.source.Ensure(ctx); err != nil {
			return fmt.Errorf("%w: %w", crawler.ErrSessionFailure, err)
		}
		if err := s.source.OpenWorldMap(ctx); err != nil {
			return fmt.Errorf("%w: %w", crawler.ErrSessionFailure, err)
		}
		dropdown := crawler.NewDropdown(s.source.Session(), tpi.CountrySelect, tpi.CitySelect,
			s.cfg.OuterSettleDelay, s.cfg.InnerSettleDelay, s.logger)

		var err error
		res, err = dropdown.CrawlAll(ctx, s.visitCity)
		return err
	})
	return res, err
}

func (s *CrawlService) visitCity(ctx context.Context, _ crawler.Position) error {
	panel, err := s.source.ReadCityPanel(ctx)
	if err != nil {
		return err
	}
	if panel == nil {
		return interfaces.ErrElementNotFound
	}
	_, err = s.cities.ReconcilePanel(ctx, tpi.ToCity(panel), panel.Parks)
	return err
}

// CrawlRides 读取设施商店全部卡片并调和，返回入库数量
func (s *CrawlService) CrawlRides(ctx context.Context) (int, error) {
	saved := 0
	err := s.guard.Run(ctx, "rides", func(ctx context.Context) error {
		if err := s.source.Ensure(ctx); err != nil {
			return fmt.Errorf("%w: %w", crawler.ErrSessionFailure, err)
		}
		cards, err := s.source.ReadRideStore(ctx)
		if err != nil {
			return err
		}
		for _, card := range cards {
			if _, err := s.rides.Reconcile(ctx, tpi.ToRide(card)); err != nil {
				if errors.Is(err, ErrMissingKey) {
					s.logger.WithField("card", card.Name).Warn("设施卡片没有图片也没有名称，跳过")
					continue
				}
				return fmt.Errorf("设施%s入库失败: %w", card.Name, err)
			}
			saved++
		}
		s.logger.WithField("rides", saved).Info("设施商店入库完成")
		return nil
	})
	return saved, err
}

// CrawlNews 读取办公室页面的新闻并入库，顺带记录当前玩家数据
func (s *CrawlService) CrawlNews(ctx context.Context) (IngestResult, error) {
	var res IngestResult
	err := s.guard.Run(ctx, "news", func(ctx context.Context) error {
		if err := s.source.Ensure(ctx); err != nil {
			return fmt.Errorf("%w: %w", crawler.ErrSessionFailure, err)
		}
		entries, data, err := s.source.ReadOffice(ctx)
		if err != nil {
			return err
		}
		if data != nil {
			s.recordPlayerData(ctx, data)
		}
		res, err = s.activities.IngestAll(ctx, entries)
		return err
	})
	return res, err
}

// recordPlayerData 追加一条玩家数据历史；失败只记日志，不影响新闻入库
func (s *CrawlService) recordPlayerData(ctx context.Context, data *model.PlayerData) {
	log := s.logger.WithFields(logrus.Fields{
		"money":      deref(data.Money),
		"level":      deref(data.Level),
		"experience": deref(data.Experience),
	})
	log.Info("当前玩家数据")
	if s.snapshots == nil || (data.Money == nil && data.Level == nil && data.Experience == nil) {
		return
	}

	snap := &model.PlayerSnapshot{Money: data.Money, Level: data.Level, Experience: data.Experience}
	player, err := s.activities.players.FindOrCreate(ctx, s.cfg.MainPlayer)
	if err != nil {
		log.WithError(err).Warn("解析当前玩家失败，数据不挂玩家")
	} else if player != nil {
		snap.PlayerID = &player.ID
	}
	if err := s.snapshots.Create(ctx, snap); err != nil {
		log.WithError(err).Warn("保存玩家数据失败")
	}
}

// CrawlStatic 城市、设施、导出依次执行；某一步失败不影响后续步骤
func (s *CrawlService) CrawlStatic(ctx context.Context) error {
	var errs []error
	if _, err := s.CrawlCities(ctx); err != nil {
		s.logger.WithError(err).Warn("城市爬取失败")
		errs = append(errs, err)
	}
	if _, err := s.CrawlRides(ctx); err != nil {
		s.logger.WithError(err).Warn("设施爬取失败")
		errs = append(errs, err)
	}
	if s.exporter != nil {
		if _, err := s.exporter.ExportAll(ctx); err != nil {
			s.logger.WithError(err).Warn("导出失败")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
