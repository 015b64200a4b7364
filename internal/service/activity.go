package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"TPISync/internal/classifier"
	"TPISync/internal/interfaces"
	"TPISync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// NewsTimeLayout 新闻时间格式：14/03/2025 à 09:30
const NewsTimeLayout = "02/01/2006 à 15:04"

// ErrInvalidTimestamp 新闻时间无法解析
var ErrInvalidTimestamp = errors.New("invalid news timestamp")

// IngestResult 一批新闻的入库计数
type IngestResult struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// ActivityService 新闻 -> 事件：分类、去重、解析引用实体并执行附带的调和
type ActivityService struct {
	repo       interfaces.ActivityRepository
	classifier *classifier.Classifier
	players    *PlayerService
	cities     *CityService
	parks      *ParkService
	rides      *RideService
	location   *time.Location
	logger     *logrus.Logger
}

func NewActivityService(
	repo interfaces.ActivityRepository,
	c *classifier.Classifier,
	players *PlayerService,
	cities *CityService,
	parks *ParkService,
	rides *RideService,
	location *time.Location,
	logger *logrus.Logger,
) *ActivityService {
	if location == nil {
		location = time.UTC
	}
	return &ActivityService{
		repo:       repo,
		classifier: c,
		players:    players,
		cities:     cities,
		parks:      parks,
		rides:      rides,
		location:   location,
		logger:     logger,
	}
}

// ParseNewsTime 按新闻所在时区解析时间
func (s *ActivityService) ParseNewsTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(NewsTimeLayout, strings.TrimSpace(raw), s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return t, nil
}

// Ingest 同一条新闻第二次入库时原样返回已有记录（created=false），不会重复触发副作用。
// 事件记录最后写入，去重键在副作用完成后才落库
func (s *ActivityService) Ingest(ctx context.Context, entry model.NewsEntry) (*model.ActivityEvent, bool, error) {
	postedAt, err := s.ParseNewsTime(entry.Date)
	if err != nil {
		return nil, false, err
	}
	text := strings.TrimSpace(entry.Text)
	result := s.classifier.Classify(text)
	event := &model.ActivityEvent{
		PostedAt: postedAt,
		Type:     result.Type,
		Category: classifier.Category(entry.Category),
		Text:     text,
		Amount:   result.Amount,
	}

	existing, err := s.repo.FindByKey(ctx, event.Key())
	if err != nil {
		return nil, false, fmt.Errorf("查询新闻去重键失败: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := s.resolve(ctx, event, result); err != nil {
		return nil, false, err
	}

	if extracted, err := json.Marshal(result); err == nil {
		event.Extracted = datatypes.JSON(extracted)
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, false, fmt.Errorf("保存新闻事件失败: %w", err)
	}
	return event, true, nil
}

// resolve 按名字查找或创建引用实体，并执行事件类型隐含的调和
func (s *ActivityService) resolve(ctx context.Context, event *model.ActivityEvent, r classifier.Result) error {
	player, err := s.players.FindOrCreate(ctx, r.ActorName)
	if err != nil {
		return fmt.Errorf("解析玩家%s失败: %w", r.ActorName, err)
	}
	city, err := s.cities.FindOrCreate(ctx, r.CityName)
	if err != nil {
		return fmt.Errorf("解析城市%s失败: %w", r.CityName, err)
	}

	var actorPark *model.Park
	if r.Type == model.ActivityBuyingPark && strings.TrimSpace(r.ActorParkName) != "" {
		// 新建公园：所有者和城市都来自新闻本身
		candidate := &model.Park{Name: strings.TrimSpace(r.ActorParkName)}
		if player != nil {
			candidate.OwnerID, candidate.Owner = &player.ID, player
		}
		if city != nil {
			candidate.CityID, candidate.City = &city.ID, city
		}
		actorPark, err = s.parks.Reconcile(ctx, candidate)
	} else {
		actorPark, err = s.parks.FindOrCreateByName(ctx, r.ActorParkName)
	}
	if err != nil {
		return fmt.Errorf("解析公园%s失败: %w", r.ActorParkName, err)
	}
	victimPark, err := s.parks.FindOrCreateByName(ctx, r.VictimParkName)
	if err != nil {
		return fmt.Errorf("解析公园%s失败: %w", r.VictimParkName, err)
	}
	ride, err := s.rides.FindOrCreateByLabel(ctx, r.RideName)
	if err != nil {
		return fmt.Errorf("解析设施%s失败: %w", r.RideName, err)
	}

	switch r.Type {
	case model.ActivityBuyingRide, model.ActivityBuyingRideFromOther:
		if err := s.parks.AttachRide(ctx, actorPark, ride); err != nil {
			return err
		}
	}

	if player != nil {
		event.PlayerID = &player.ID
	}
	if city != nil {
		event.CityID = &city.ID
	}
	if actorPark != nil {
		event.ActorParkID = &actorPark.ID
	}
	if victimPark != nil {
		event.VictimParkID = &victimPark.ID
	}
	if ride != nil {
		event.RideID = &ride.ID
	}
	return nil
}

// IngestAll 时间格式错误的条目记录后跳过；存储错误直接返回，由调用方决定是否重试
func (s *ActivityService) IngestAll(ctx context.Context, entries []model.NewsEntry) (IngestResult, error) {
	var res IngestResult
	for _, entry := range entries {
		event, created, err := s.Ingest(ctx, entry)
		if err != nil {
			if errors.Is(err, ErrInvalidTimestamp) {
				s.logger.WithError(err).WithField("text", entry.Text).Warn("新闻时间无法解析，跳过")
				res.Skipped++
				continue
			}
			return res, err
		}
		if !created {
			res.Duplicates++
			continue
		}
		res.Created++
		s.logger.WithFields(logrus.Fields{
			"type":      event.Type,
			"posted_at": event.PostedAt,
		}).Debug("新闻事件已入库")
	}
	s.logger.WithFields(logrus.Fields{
		"created":    res.Created,
		"duplicates": res.Duplicates,
		"skipped":    res.Skipped,
	}).Info("新闻入库完成")
	return res, nil
}
