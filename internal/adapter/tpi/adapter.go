package tpi

import (
	"context"
	"fmt"

	"TPISync/internal/config"
	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"github.com/sirupsen/logrus"
)

// Adapter 驱动浏览器会话打开游戏页面，取回 HTML 后解析为原始页面结构
type Adapter struct {
	session interfaces.BrowserSession
	cfg     *config.CrawlConfig
	logger  *logrus.Logger
}

func NewAdapter(session interfaces.BrowserSession, cfg *config.CrawlConfig, logger *logrus.Logger) *Adapter {
	return &Adapter{
		session: session,
		cfg:     cfg,
		logger:  logger,
	}
}

// Ensure 确保会话可用（启动浏览器并登录）
func (a *Adapter) Ensure(ctx context.Context) error {
	return a.session.Ensure(ctx)
}

// Session 供下拉框爬虫直接驱动
func (a *Adapter) Session() interfaces.BrowserSession {
	return a.session
}

func (a *Adapter) open(ctx context.Context, path string) error {
	if err := a.session.Navigate(ctx, path); err != nil {
		return fmt.Errorf("打开页面%s失败: %w", path, err)
	}
	return a.session.Sleep(ctx, a.cfg.PageSettleDelay)
}

// ReadPark 读取指定 id 的公园页，页面不存在时返回 nil, nil
func (a *Adapter) ReadPark(ctx context.Context, id int64) (*model.ParkPage, error) {
	if err := a.open(ctx, fmt.Sprintf(PathParkPage, id)); err != nil {
		return nil, err
	}
	html, err := a.session.HTML(ctx, "body")
	if err != nil {
		return nil, fmt.Errorf("读取公园%d页面失败: %w", id, err)
	}
	return ParseParkPage(html, id)
}

// OpenWorldMap 打开世界地图并等待国家下拉框出现
func (a *Adapter) OpenWorldMap(ctx context.Context) error {
	if err := a.open(ctx, PathWorldMap); err != nil {
		return err
	}
	return a.session.WaitVisible(ctx, CountrySelect)
}

// ReadCityPanel 读取当前选中城市的面板，面板缺失时返回 nil, nil
func (a *Adapter) ReadCityPanel(ctx context.Context) (*model.CityPanel, error) {
	html, err := a.session.HTML(ctx, selCityInfo)
	if err != nil {
		return nil, fmt.Errorf("读取城市面板失败: %w", err)
	}
	if html == "" {
		return nil, nil
	}
	return ParseCityPanel(html)
}

// ReadRideStore 打开设施商店弹窗并读取全部卡片
func (a *Adapter) ReadRideStore(ctx context.Context) ([]model.RideCard, error) {
	if err := a.open(ctx, PathAttractions); err != nil {
		return nil, err
	}
	if err := a.session.Click(ctx, selStoreButton); err != nil {
		return nil, fmt.Errorf("打开设施商店失败: %w", err)
	}
	if err := a.session.WaitVisible(ctx, selStoreModal); err != nil {
		return nil, fmt.Errorf("等待设施商店弹窗失败: %w", err)
	}
	if err := a.session.Sleep(ctx, a.cfg.ModalSettleDelay); err != nil {
		return nil, err
	}
	html, err := a.session.HTML(ctx, "body")
	if err != nil {
		return nil, fmt.Errorf("读取设施商店失败: %w", err)
	}
	return ParseRideStore(html)
}

// ReadOffice 打开办公室页面，返回新闻列表与个人数据
func (a *Adapter) ReadOffice(ctx context.Context) ([]model.NewsEntry, *model.PlayerData, error) {
	if err := a.open(ctx, PathOffice); err != nil {
		return nil, nil, err
	}
	html, err := a.session.HTML(ctx, "body")
	if err != nil {
		return nil, nil, fmt.Errorf("读取办公室页面失败: %w", err)
	}
	entries, err := ParseNews(html)
	if err != nil {
		return nil, nil, err
	}
	data, err := ParsePlayerData(html)
	if err != nil {
		a.logger.WithError(err).Warn("个人数据解析失败")
	}
	return entries, data, nil
}
