// Package app 把配置、数据库、浏览器会话和各服务组装成一个可运行的实例
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"TPISync/internal/adapter/tpi"
	"TPISync/internal/browser"
	"TPISync/internal/classifier"
	"TPISync/internal/config"
	"TPISync/internal/export"
	"TPISync/internal/repository"
	"TPISync/internal/scheduler"
	"TPISync/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewLogger 按配置构建日志器
func NewLogger(cfg *config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("日志级别%q无效: %w", cfg.Level, err)
	}
	l.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// App 进程内唯一的一组服务
type App struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	DB     *gorm.DB

	Parks      repository.ParkRepository
	Cities     repository.CityRepository
	Activities repository.ActivityRepository

	Session  *browser.Session
	Crawls   *service.CrawlService
	Exporter *export.CSVExporter
}

// New 组装全部依赖；浏览器在第一次爬取时才启动
func New(cfg *config.Config, logger *logrus.Logger, db *gorm.DB) (*App, error) {
	loc, err := time.LoadLocation(cfg.News.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载新闻时区%s失败: %w", cfg.News.Timezone, err)
	}

	playerRepo := repository.NewPlayerRepository(db)
	cityRepo := repository.NewCityRepository(db)
	rideRepo := repository.NewRideRepository(db)
	parkRepo := repository.NewParkRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	players := service.NewPlayerService(playerRepo)
	rides := service.NewRideService(rideRepo)
	parks := service.NewParkService(parkRepo, cityRepo, players, rides, logger)
	cities := service.NewCityService(cityRepo, parks, players, logger)
	activities := service.NewActivityService(activityRepo, classifier.New(), players, cities, parks, rides, loc, logger)

	exporter := export.NewCSVExporter(export.Sources{
		Cities:     cityRepo,
		Players:    playerRepo,
		Parks:      parkRepo,
		Rides:      rideRepo,
		ParkRides:  parkRepo,
		Activities: activityRepo,
	}, cfg.Export.Dir, logger)

	session := browser.NewSession(&cfg.Browser, logger)
	source := tpi.NewAdapter(session, &cfg.Crawl, logger)
	crawls := service.NewCrawlService(source, parks, cities, rides, activities, snapshotRepo, exporter, &cfg.Crawl, logger)

	return &App{
		Cfg:        cfg,
		Logger:     logger,
		DB:         db,
		Parks:      parkRepo,
		Cities:     cityRepo,
		Activities: activityRepo,
		Session:    session,
		Crawls:     crawls,
		Exporter:   exporter,
	}, nil
}

// Scheduler 注册定时任务（未启动）；配置关闭时返回 nil
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	if !a.Cfg.Schedule.Enabled {
		return nil, nil
	}
	s, err := scheduler.New(&a.Cfg.Schedule, a.Logger)
	if err != nil {
		return nil, err
	}
	if err := s.Add("static_data", a.Cfg.Schedule.StaticData, a.Crawls.CrawlStatic); err != nil {
		return nil, err
	}
	if err := s.Add("news", a.Cfg.Schedule.News, func(ctx context.Context) error {
		_, err := a.Crawls.CrawlNews(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Close 关闭浏览器与连接池
func (a *App) Close() {
	a.Session.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
