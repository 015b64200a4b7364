// Package browser 基于 chromedp 的已登录浏览器会话
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"TPISync/internal/adapter/tpi"
	"TPISync/internal/config"
	"TPISync/internal/interfaces"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// ErrLoginFailed 登录失败，会话不可用
var ErrLoginFailed = errors.New("login failed")

const (
	selLoginEmail    = "#login-email"
	selLoginPassword = "#login-password"
	selLoginSubmit   = "form.auth-form button.form-submit"
	loginLandingPart = "dashboard"
	loginPollPeriod  = 250 * time.Millisecond
)

// Session 单个 Chrome 实例 + 单个标签页，所有页面读取复用同一个登录态
type Session struct {
	cfg    *config.BrowserConfig
	logger *logrus.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

var _ interfaces.BrowserSession = (*Session)(nil)

func NewSession(cfg *config.BrowserConfig, logger *logrus.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Ensure 浏览器未启动（或已退出）时启动并登录
func (s *Session) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		return nil
	}
	s.shutdownLocked()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	if s.cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(s.cfg.Proxy))
	}

	// 浏览器生命周期独立于触发它的请求
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(s.logger.Debugf))
	s.allocCancel, s.browserCtx, s.browserCancel = allocCancel, browserCtx, browserCancel

	// 首次 Run 必须直接用 browserCtx 启动进程，否则派生 ctx 超时会连带杀掉浏览器
	if err := chromedp.Run(browserCtx); err != nil {
		s.shutdownLocked()
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	if err := s.login(ctx, browserCtx); err != nil {
		s.shutdownLocked()
		return err
	}
	s.logger.WithField("base_url", s.cfg.BaseURL).Info("浏览器会话已登录")
	return nil
}

func (s *Session) login(ctx, browserCtx context.Context) error {
	timeout := s.cfg.LoginTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	err := runIn(ctx, browserCtx, timeout,
		chromedp.Navigate(resolveURL(s.cfg.BaseURL, tpi.PathLogin)),
		chromedp.WaitVisible(selLoginEmail, chromedp.ByQuery),
		chromedp.SendKeys(selLoginEmail, s.cfg.Email, chromedp.ByQuery),
		chromedp.SendKeys(selLoginPassword, s.cfg.Password, chromedp.ByQuery),
		chromedp.Click(selLoginSubmit, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for {
				var location string
				if err := chromedp.Location(&location).Do(ctx); err != nil {
					return err
				}
				if strings.Contains(location, loginLandingPart) {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(loginPollPeriod):
				}
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	return nil
}

// run 在浏览器上下文中执行动作；调用方 ctx 取消或超时都会中断动作，但不会关闭标签页
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	s.mu.Lock()
	browserCtx := s.browserCtx
	s.mu.Unlock()
	if browserCtx == nil {
		return errors.New("浏览器会话未启动")
	}
	return runIn(ctx, browserCtx, timeout, actions...)
}

func runIn(ctx, browserCtx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(browserCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(browserCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, path string) error {
	return s.run(ctx, 0, chromedp.Navigate(resolveURL(s.cfg.BaseURL, path)))
}

// Sleep 可被取消的等待
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitVisible 超过 wait_timeout 仍不可见时返回 ErrElementNotFound
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	err := s.run(ctx, s.cfg.WaitTimeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return s.notFound(ctx, selector, err)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Click(selector, chromedp.ByQuery))
	return s.notFound(ctx, selector, err)
}

func (s *Session) HTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Evaluate(outerHTMLScript(selector), &html)); err != nil {
		return "", fmt.Errorf("读取%s失败: %w", selector, err)
	}
	return html, nil
}

// OptionCount 每次都重新查询下拉框，不缓存旧节点
func (s *Session) OptionCount(ctx context.Context, control string) (int, error) {
	var n int
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Evaluate(optionCountScript(control), &n)); err != nil {
		return 0, fmt.Errorf("读取%s选项数失败: %w", control, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s", interfaces.ErrElementNotFound, control)
	}
	return n, nil
}

// SelectOption 按下标选中并派发 change 事件，下标越界视为元素缺失
func (s *Session) SelectOption(ctx context.Context, control string, index int) error {
	var ok bool
	if err := s.run(ctx, s.cfg.WaitTimeout, chromedp.Evaluate(selectOptionScript(control, index), &ok)); err != nil {
		return fmt.Errorf("选择%s第%d项失败: %w", control, index, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s[%d]", interfaces.ErrElementNotFound, control, index)
	}
	return nil
}

// Close 关闭标签页和浏览器进程
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownLocked()
}

func (s *Session) shutdownLocked() {
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.allocCancel, s.browserCtx, s.browserCancel = nil, nil, nil
}

// notFound 把等待超时翻译成 ErrElementNotFound；调用方自己取消时保留原错误
func (s *Session) notFound(ctx context.Context, selector string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", interfaces.ErrElementNotFound, selector)
	}
	return fmt.Errorf("等待%s失败: %w", selector, err)
}

func resolveURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func outerHTMLScript(selector string) string {
	return fmt.Sprintf(`(function(){const el=document.querySelector(%s);return el?el.outerHTML:"";})()`, jsString(selector))
}

func optionCountScript(control string) string {
	return fmt.Sprintf(`(function(){const el=document.querySelector(%s);return el&&el.options?el.options.length:-1;})()`, jsString(control))
}

func selectOptionScript(control string, index int) string {
	return fmt.Sprintf(`(function(){const el=document.querySelector(%s);`+
		`if(!el||!el.options||%d<0||%d>=el.options.length)return false;`+
		`el.selectedIndex=%d;el.dispatchEvent(new Event("change",{bubbles:true}));return true;})()`,
		jsString(control), index, index, index)
}
