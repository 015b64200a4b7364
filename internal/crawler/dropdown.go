package crawler

import (
	"context"
	"fmt"
	"time"

	"TPISync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Position 当前选中的外层 / 内层下标
type Position struct {
	Outer int `json:"outer"`
	Inner int `json:"inner"`
}

// LeafFunc 内层选项选中并等待稳定后调用，读取并入库当前面板
type LeafFunc func(ctx context.Context, pos Position) error

// DropdownResult 一次遍历的计数
type DropdownResult struct {
	Outers   int `json:"outers"`
	Leaves   int `json:"leaves"`
	Failures int `json:"failures"`
}

// Dropdown 两级下拉框遍历（国家 -> 城市）。每次操作都按选择器重新定位控件，
// 上一次选择导致 DOM 重建也不会拿到失效句柄
type Dropdown struct {
	driver      interfaces.DropdownDriver
	outer       string
	inner       string
	outerSettle time.Duration
	innerSettle time.Duration
	logger      *logrus.Logger
}

func NewDropdown(driver interfaces.DropdownDriver, outer, inner string, outerSettle, innerSettle time.Duration, logger *logrus.Logger) *Dropdown {
	return &Dropdown{
		driver:      driver,
		outer:       outer,
		inner:       inner,
		outerSettle: outerSettle,
		innerSettle: innerSettle,
		logger:      logger,
	}
}

// CrawlAll 在调用方 goroutine 上同步跑完。按页面给出的下标顺序遍历；
// 单个叶子失败只记录，不重试，下一轮完整爬取会通过幂等调和补上
func (d *Dropdown) CrawlAll(ctx context.Context, visit LeafFunc) (DropdownResult, error) {
	var res DropdownResult
	outerCount, err := d.driver.OptionCount(ctx, d.outer)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrSessionFailure, err)
	}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i > 0 {
			n, err := d.driver.OptionCount(ctx, d.outer)
			if err != nil {
				d.logger.WithError(err).WithField("outer", i).Warn("重新读取外层选项失败，沿用上次数量")
				res.Failures++
			} else {
				outerCount = n
			}
		}
		if i >= outerCount {
			break
		}

		log := d.logger.WithField("outer", i)
		if err := d.driver.SelectOption(ctx, d.outer, i); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.WithError(err).Warn("选择外层选项失败，跳过")
			res.Failures++
			continue
		}
		res.Outers++
		if err := sleep(ctx, d.outerSettle); err != nil {
			return res, err
		}

		if err := d.crawlInner(ctx, i, visit, &res); err != nil {
			return res, err
		}
	}

	d.logger.WithFields(logrus.Fields{
		"outers":   res.Outers,
		"leaves":   res.Leaves,
		"failures": res.Failures,
	}).Info("下拉框遍历完成")
	return res, nil
}

// crawlInner 只在 ctx 取消时返回错误
func (d *Dropdown) crawlInner(ctx context.Context, outer int, visit LeafFunc, res *DropdownResult) error {
	for j := 0; ; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := d.logger.WithFields(logrus.Fields{"outer": outer, "inner": j})

		// 两个控件都重新解析：外层选项消失说明当前选择已失效
		outerCount, err := d.driver.OptionCount(ctx, d.outer)
		if err != nil || outer >= outerCount {
			log.WithError(err).Warn("外层选项已失效，结束本组")
			res.Failures++
			return nil
		}
		innerCount, err := d.driver.OptionCount(ctx, d.inner)
		if err != nil {
			log.WithError(err).Warn("读取内层选项失败，结束本组")
			res.Failures++
			return nil
		}
		if j >= innerCount {
			return nil
		}

		if err := d.driver.SelectOption(ctx, d.inner, j); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("选择内层选项失败，跳过")
			res.Failures++
			continue
		}
		if err := sleep(ctx, d.innerSettle); err != nil {
			return err
		}

		if err := visit(ctx, Position{Outer: outer, Inner: j}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("读取叶子失败，继续下一项")
			res.Failures++
			continue
		}
		res.Leaves++
	}
}

func sleep(ctx context.Context, d time.Duration) error {
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
