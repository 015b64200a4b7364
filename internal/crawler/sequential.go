// Package crawler 两种爬取策略：按 id 顺序遍历、两级下拉框遍历。
// 爬虫本身不关心实体类型，读取与入库由调用方以函数注入
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrAlreadyRunning 已有一轮顺序爬取在进行，新的启动请求被拒绝（不排队）
	ErrAlreadyRunning = errors.New("crawler already running")
	// ErrSessionFailure 浏览器会话不可用，本轮爬取无法开始
	ErrSessionFailure = errors.New("browser session unavailable")
)

// ReadFunc 读取指定 id 的条目，nil, nil 表示该 id 不存在
type ReadFunc[T any] func(ctx context.Context, id int64) (*T, error)

// SinkFunc 条目入库
type SinkFunc[T any] func(ctx context.Context, item *T) error

// StopReason 一轮爬取结束的原因
type StopReason string

const (
	StopNone      StopReason = ""
	StopRequested StopReason = "stopped"     // 调用了 Stop
	StopExhausted StopReason = "exhausted"   // 连续失败达到上限，视为 id 空间末尾
	StopCapped    StopReason = "cap_reached" // 成功数达到上限
)

// DefaultMaxConsecutiveErrors 未配置（<= 0）时使用，保证一轮爬取总会结束
const DefaultMaxConsecutiveErrors = 10

// progressInterval 运行中进度日志的最小间隔
const progressInterval = 30 * time.Second

// SequentialConfig 节奏与终止条件
type SequentialConfig struct {
	RequestDelay         time.Duration // 每个条目处理完后的固定等待
	MaxConsecutiveErrors int
	MaxItems             int // 0 不限
}

// Status 某一时刻的爬取状态快照
type Status struct {
	Name              string     `json:"name"`
	RunID             string     `json:"runId,omitempty"`
	Running           bool       `json:"running"`
	StartID           int64      `json:"startId"`
	CurrentID         int64      `json:"currentId"`
	Successes         int64      `json:"successes"`
	Errors            int64      `json:"errors"`
	ConsecutiveErrors int64      `json:"consecutiveErrors"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	FinishedAt        *time.Time `json:"finishedAt,omitempty"`
	Reason            StopReason `json:"reason,omitempty"`
}

// Sequential 在后台按 id 递增读取条目，直到被停止、连续失败过多或达到成功上限。
// 同一时刻最多一轮在跑
type Sequential[T any] struct {
	name   string
	read   ReadFunc[T]
	sink   SinkFunc[T]
	cfg    SequentialConfig
	logger *logrus.Logger

	prepare  func(ctx context.Context) error
	onFinish func(Status)

	running   atomic.Bool
	nextID    atomic.Int64
	streak    atomic.Int64
	successes atomic.Int64
	errCount  atomic.Int64

	mu         sync.Mutex
	runID      string
	startID    int64
	startedAt  *time.Time
	finishedAt *time.Time
	reason     StopReason
	stop       context.CancelFunc
}

func NewSequential[T any](name string, read ReadFunc[T], sink SinkFunc[T], cfg SequentialConfig, logger *logrus.Logger) *Sequential[T] {
	if cfg.MaxConsecutiveErrors <= 0 {
		logger.WithFields(logrus.Fields{
			"crawler":    name,
			"configured": cfg.MaxConsecutiveErrors,
			"using":      DefaultMaxConsecutiveErrors,
		}).Warn("连续失败上限无效，使用默认值")
		cfg.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	return &Sequential[T]{
		name:   name,
		read:   read,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
	}
}

// SetPrepare 启动前同步执行（如确保浏览器已登录），失败则本轮不启动
func (s *Sequential[T]) SetPrepare(fn func(ctx context.Context) error) {
	s.prepare = fn
}

// OnFinish 每轮结束后回调，worker 退出前调用
func (s *Sequential[T]) OnFinish(fn func(Status)) {
	s.onFinish = fn
}

// Start 立即返回；worker 与调用方的 ctx 取消解耦，只能通过 Stop 结束
func (s *Sequential[T]) Start(ctx context.Context, fromID int64) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if s.prepare != nil {
		if err := s.prepare(ctx); err != nil {
			s.running.Store(false)
			return fmt.Errorf("%w: %w", ErrSessionFailure, err)
		}
	}

	workCtx := context.WithoutCancel(ctx)
	stopCtx, stop := context.WithCancel(workCtx)

	now := time.Now()
	s.mu.Lock()
	s.runID = uuid.NewString()
	s.startID = fromID
	s.startedAt = &now
	s.finishedAt = nil
	s.reason = StopNone
	s.stop = stop
	runID := s.runID
	s.mu.Unlock()

	s.nextID.Store(fromID)
	s.streak.Store(0)
	s.successes.Store(0)
	s.errCount.Store(0)

	s.logger.WithFields(logrus.Fields{
		"crawler": s.name,
		"run_id":  runID,
		"from_id": fromID,
	}).Info("顺序爬取已启动")

	go s.loop(workCtx, stopCtx)
	return nil
}

// Stop 在下一次迭代开始时生效，正在处理的条目会完成
func (s *Sequential[T]) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (s *Sequential[T]) IsRunning() bool {
	return s.running.Load()
}

// CurrentID 下一个要读取的 id
func (s *Sequential[T]) CurrentID() int64 {
	return s.nextID.Load()
}

func (s *Sequential[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Sequential[T]) statusLocked() Status {
	return Status{
		Name:              s.name,
		RunID:             s.runID,
		Running:           s.running.Load(),
		StartID:           s.startID,
		CurrentID:         s.nextID.Load(),
		Successes:         s.successes.Load(),
		Errors:            s.errCount.Load(),
		ConsecutiveErrors: s.streak.Load(),
		StartedAt:         s.startedAt,
		FinishedAt:        s.finishedAt,
		Reason:            s.reason,
	}
}

// loop 读取使用 workCtx（Stop 不会打断正在进行的读取）；条目之间的等待使用 stopCtx，Stop 立即生效
func (s *Sequential[T]) loop(workCtx, stopCtx context.Context) {
	progress := rate.Sometimes{Interval: progressInterval}
	reason := StopRequested
	for stopCtx.Err() == nil {
		id := s.nextID.Add(1) - 1
		if s.step(workCtx, id) {
			s.streak.Store(0)
			s.successes.Add(1)
		} else {
			s.streak.Add(1)
			s.errCount.Add(1)
		}

		if s.streak.Load() >= int64(s.cfg.MaxConsecutiveErrors) {
			reason = StopExhausted
			break
		}
		if limit := s.cfg.MaxItems; limit > 0 && s.successes.Load() >= int64(limit) {
			reason = StopCapped
			break
		}
		progress.Do(func() {
			s.logger.WithFields(logrus.Fields{
				"crawler":   s.name,
				"next_id":   s.nextID.Load(),
				"successes": s.successes.Load(),
				"errors":    s.errCount.Load(),
			}).Info("顺序爬取进行中")
		})

		// 上一个条目结束后才开始计时，读取再慢也保证两次请求之间有间隔
		if err := sleep(stopCtx, s.cfg.RequestDelay); err != nil {
			break
		}
	}
	s.finish(reason)
}

// step 单个 id 的读取与入库；任何失败（含 panic）都只计一次错误
func (s *Sequential[T]) step(ctx context.Context, id int64) (ok bool) {
	log := s.logger.WithFields(logrus.Fields{"crawler": s.name, "id": id})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("读取条目时发生panic，计为失败")
			ok = false
		}
	}()

	item, err := s.read(ctx, id)
	if err != nil {
		log.WithError(err).Warn("读取条目失败")
		return false
	}
	if item == nil {
		log.Debug("条目不存在")
		return false
	}
	if err := s.sink(ctx, item); err != nil {
		log.WithError(err).Warn("条目入库失败")
		return false
	}
	return true
}

func (s *Sequential[T]) finish(reason StopReason) {
	now := time.Now()
	s.mu.Lock()
	s.finishedAt = &now
	s.reason = reason
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	status := s.statusLocked()
	s.mu.Unlock()

	status.Running = false
	s.logger.WithFields(logrus.Fields{
		"crawler":    s.name,
		"run_id":     status.RunID,
		"reason":     reason,
		"successes":  status.Successes,
		"errors":     status.Errors,
		"next_id":    status.CurrentID,
		"elapsed_ms": now.Sub(*status.StartedAt).Milliseconds(),
	}).Info("顺序爬取结束")

	s.running.Store(false)
	if s.onFinish != nil {
		s.onFinish(status)
	}
}
