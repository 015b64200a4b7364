package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"TPISync/internal/crawler"
	"TPISync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Crawls 爬取入口，由 service.CrawlService 实现
type Crawls interface {
	StartParks(ctx context.Context, fromID int64) error
	StopParks()
	ParkStatus() crawler.Status
	SessionHolder() string
	CrawlCities(ctx context.Context) (crawler.DropdownResult, error)
	CrawlRides(ctx context.Context) (int, error)
	CrawlNews(ctx context.Context) (service.IngestResult, error)
}

// CrawlHandler 手动触发爬取与导出
type CrawlHandler struct {
	crawls   Crawls
	exporter service.Exporter
	logger   *logrus.Logger
}

func NewCrawlHandler(crawls Crawls, exporter service.Exporter, logger *logrus.Logger) *CrawlHandler {
	return &CrawlHandler{crawls: crawls, exporter: exporter, logger: logger}
}

// statusFor 会话冲突返回 409，登录失败返回 502
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionBusy), errors.Is(err, crawler.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, crawler.ErrSessionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *CrawlHandler) fail(c *gin.Context, op string, err error) {
	code := statusFor(err)
	entry := h.logger.WithError(err).WithField("op", op)
	if code == http.StatusConflict {
		entry.Info("请求被拒绝")
	} else {
		entry.Error("爬取失败")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// StartParks 启动公园顺序爬取
// POST /api/crawl/parks?from=1
func (h *CrawlHandler) StartParks(c *gin.Context) {
	var from int64
	if raw := c.Query("from"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a non-negative integer"})
			return
		}
		from = v
	}
	// 爬取在后台继续，不随请求结束而取消
	if err := h.crawls.StartParks(context.WithoutCancel(c.Request.Context()), from); err != nil {
		h.fail(c, "start_parks", err)
		return
	}
	c.JSON(http.StatusAccepted, h.crawls.ParkStatus())
}

// StopParks DELETE /api/crawl/parks
func (h *CrawlHandler) StopParks(c *gin.Context) {
	h.crawls.StopParks()
	c.JSON(http.StatusOK, h.crawls.ParkStatus())
}

// ParkStatus GET /api/crawl/parks
func (h *CrawlHandler) ParkStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"parks":          h.crawls.ParkStatus(),
		"session_holder": h.crawls.SessionHolder(),
	})
}

// CrawlCities POST /api/crawl/cities
func (h *CrawlHandler) CrawlCities(c *gin.Context) {
	res, err := h.crawls.CrawlCities(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.fail(c, "cities", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CrawlRides POST /api/crawl/rides
func (h *CrawlHandler) CrawlRides(c *gin.Context) {
	n, err := h.crawls.CrawlRides(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.fail(c, "rides", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": n})
}

// CrawlNews POST /api/crawl/news
func (h *CrawlHandler) CrawlNews(c *gin.Context) {
	res, err := h.crawls.CrawlNews(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.fail(c, "news", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export POST /api/export
func (h *CrawlHandler) Export(c *gin.Context) {
	paths, err := h.exporter.ExportAll(c.Request.Context())
	if err != nil {
		h.fail(c, "export", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": paths})
}
