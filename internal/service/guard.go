package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionBusy 浏览器会话正被另一个爬取任务占用
var ErrSessionBusy = errors.New("browser session busy")

// SessionGuard 共享浏览器会话的互斥：同一时刻只允许一个爬取任务导航页面。
// 拿不到就立即失败，不排队
type SessionGuard struct {
	mu     sync.Mutex
	holder string
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{}
}

// TryAcquire 成功返回 true；job 仅用于状态展示
func (g *SessionGuard) TryAcquire(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != "" {
		return false
	}
	g.holder = job
	return true
}

func (g *SessionGuard) Release() {
	g.mu.Lock()
	g.holder = ""
	g.mu.Unlock()
}

// Holder 当前占用会话的任务，空串表示空闲
func (g *SessionGuard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}

// Run 占用会话执行 fn，结束后释放
func (g *SessionGuard) Run(ctx context.Context, job string, fn func(ctx context.Context) error) error {
	if !g.TryAcquire(job) {
		return fmt.Errorf("%w: %s 正在运行", ErrSessionBusy, g.Holder())
	}
	defer g.Release()
	return fn(ctx)
}
