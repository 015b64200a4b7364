package api

import (
	"context"
	"net/http"
	"strconv"

	"TPISync/internal/model"
	"TPISync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ParkLister interface {
	List(ctx context.Context, filter repository.ParkFilter, page, pageSize int) ([]*model.Park, int64, error)
}

type CityLister interface {
	List(ctx context.Context, page, pageSize int) ([]*model.City, int64, error)
}

type ActivityLister interface {
	List(ctx context.Context, filter repository.ActivityFilter, page, pageSize int) ([]*model.ActivityEvent, int64, error)
}

// QueryHandler 规范数据的只读查询
type QueryHandler struct {
	parks      ParkLister
	cities     CityLister
	activities ActivityLister
	logger     *logrus.Logger
}

func NewQueryHandler(parks ParkLister, cities CityLister, activities ActivityLister, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{parks: parks, cities: cities, activities: activities, logger: logger}
}

type pageResult[T any] struct {
	List     []*T  `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// optionalID 参数缺失返回 nil；格式错误返回 ok=false
func optionalID(c *gin.Context, key string) (*uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// ListParks 公园列表
// GET /api/parks?city_id=1&owner_id=2&name=land&page=1&page_size=20
func (h *QueryHandler) ListParks(c *gin.Context) {
	cityID, ok1 := optionalID(c, "city_id")
	ownerID, ok2 := optionalID(c, "owner_id")
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city_id and owner_id must be integers"})
		return
	}
	page, pageSize := pagination(c)
	filter := repository.ParkFilter{CityID: cityID, OwnerID: ownerID, Name: c.Query("name")}

	list, total, err := h.parks.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListParks failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pageResult[model.Park]{List: list, Total: total, Page: page, PageSize: pageSize})
}

// ListCities GET /api/cities?page=1&page_size=20
func (h *QueryHandler) ListCities(c *gin.Context) {
	page, pageSize := pagination(c)
	list, total, err := h.cities.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListCities failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pageResult[model.City]{List: list, Total: total, Page: page, PageSize: pageSize})
}

// ListActivities 事件流，新的在前
// GET /api/activities?type=BUYING_RIDE&category=PARK&page=1&page_size=20
func (h *QueryHandler) ListActivities(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := repository.ActivityFilter{
		Type:     model.ActivityType(c.Query("type")),
		Category: model.ActivityCategory(c.Query("category")),
	}
	list, total, err := h.activities.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListActivities failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pageResult[model.ActivityEvent]{List: list, Total: total, Page: page, PageSize: pageSize})
}
