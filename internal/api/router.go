package api

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// NewRouter 注册全部路由；pprof 挂在 /debug/pprof 方便排查浏览器会话占用
func NewRouter(mode string, crawl *CrawlHandler, query *QueryHandler) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	pprof.Register(r)

	g := r.Group("/api")
	g.POST("/crawl/parks", crawl.StartParks)
	g.DELETE("/crawl/parks", crawl.StopParks)
	g.GET("/crawl/parks", crawl.ParkStatus)
	g.POST("/crawl/cities", crawl.CrawlCities)
	g.POST("/crawl/rides", crawl.CrawlRides)
	g.POST("/crawl/news", crawl.CrawlNews)
	g.POST("/export", crawl.Export)

	g.GET("/parks", query.ListParks)
	g.GET("/cities", query.ListCities)
	g.GET("/activities", query.ListActivities)
	return r
}
