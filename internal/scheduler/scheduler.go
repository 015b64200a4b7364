// Package scheduler 定时触发爬取任务（6 位 cron，含秒）
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TPISync/internal/config"
	"TPISync/internal/service"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobFunc 一次任务执行
type JobFunc func(ctx context.Context) error

// Scheduler 包装 robfig/cron：同一任务上一次未结束时跳过本次，panic 被恢复并记录
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger
}

func New(cfg *config.ScheduleConfig, logger *logrus.Logger) (*Scheduler, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("加载时区%s失败: %w", cfg.Timezone, err)
		}
		loc = l
	}
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{cron: c, ctx: ctx, cancel: cancel, logger: logger}, nil
}

// Add 注册任务；会话被占用（ErrSessionBusy）只记 Info，其它错误记 Warn
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		log := s.logger.WithFields(logrus.Fields{"job": name, "run_id": uuid.NewString()})
		start := time.Now()
		err := fn(s.ctx)
		switch {
		case err == nil:
			log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Info("定时任务完成")
		case errors.Is(err, service.ErrSessionBusy):
			log.WithError(err).Info("会话被占用，跳过本次定时任务")
		default:
			log.WithError(err).Warn("定时任务失败")
		}
	})
	if err != nil {
		return fmt.Errorf("注册定时任务%s(%s)失败: %w", name, spec, err)
	}
	s.logger.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("定时任务已注册")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 取消正在运行的任务并等待其退出
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// cronLogger 把 cron 的日志接到 logrus
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
