package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrElementNotFound 页面上缺少期望的元素（计入错误次数，不致命）
var ErrElementNotFound = errors.New("element not found")

// DropdownDriver 下拉框驱动：每次调用都按选择器重新定位元素，不持有旧句柄
type DropdownDriver interface {
	OptionCount(ctx context.Context, control string) (int, error)
	SelectOption(ctx context.Context, control string, index int) error
}

// BrowserSession 已登录的浏览器会话。所有爬虫共享同一个会话，调用方负责串行使用
type BrowserSession interface {
	DropdownDriver
	// Ensure 启动浏览器并完成登录（幂等），失败即会话不可用
	Ensure(ctx context.Context) error
	Navigate(ctx context.Context, path string) error
	Sleep(ctx context.Context, d time.Duration) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	// HTML 返回第一个匹配元素的 outerHTML，不存在时返回空串
	HTML(ctx context.Context, selector string) (string, error)
	Close()
}
