package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"TPISync/internal/crawler"
	"TPISync/internal/model"
	"TPISync/internal/repository"
	"TPISync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCrawls struct {
	startErr error
	from     int64
	ctxDone  bool
	stopped  bool
	newsErr  error
}

func (f *fakeCrawls) StartParks(ctx context.Context, fromID int64) error {
	f.from = fromID
	f.ctxDone = ctx.Done() != nil
	return f.startErr
}
func (f *fakeCrawls) StopParks() { f.stopped = true }
func (f *fakeCrawls) ParkStatus() crawler.Status { return crawler.Status{Name: "parks", CurrentID: f.from} }
func (f *fakeCrawls) SessionHolder() string { return "parks" }
func (f *fakeCrawls) CrawlCities(context.Context) (crawler.DropdownResult, error) {
	return crawler.DropdownResult{Outers: 2, Leaves: 5}, nil
}
func (f *fakeCrawls) CrawlRides(context.Context) (int, error) { return 12, nil }
func (f *fakeCrawls) CrawlNews(context.Context) (service.IngestResult, error) {
	return service.IngestResult{Created: 3}, f.newsErr
}

type fakeExporter struct{ err error }

func (f fakeExporter) ExportAll(context.Context) ([]string, error) {
	return []string{"exports/cities.csv"}, f.err
}

type fakeParks struct{ filter repository.ParkFilter }

func (f *fakeParks) List(_ context.Context, filter repository.ParkFilter, _, _ int) ([]*model.Park, int64, error) {
	f.filter = filter
	return []*model.Park{{ID: 1, Name: "Wonderland"}}, 1, nil
}

type fakeCities struct{}

func (fakeCities) List(context.Context, int, int) ([]*model.City, int64, error) {
	return nil, 0, errors.New("db down")
}

type fakeActivities struct {
	filter         repository.ActivityFilter
	page, pageSize int
}

func (f *fakeActivities) List(_ context.Context, filter repository.ActivityFilter, page, pageSize int) ([]*model.ActivityEvent, int64, error) {
	f.filter, f.page, f.pageSize = filter, page, pageSize
	return []*model.ActivityEvent{}, 0, nil
}

type fixture struct {
	router     *gin.Engine
	crawls     *fakeCrawls
	parks      *fakeParks
	activities *fakeActivities
}

func newFixture(exporter service.Exporter) *fixture {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	f := &fixture{crawls: &fakeCrawls{}, parks: &fakeParks{}, activities: &fakeActivities{}}
	f.router = NewRouter(gin.TestMode,
		NewCrawlHandler(f.crawls, exporter, logger),
		NewQueryHandler(f.parks, fakeCities{}, f.activities, logger))
	return f
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStartParks(t *testing.T) {
	f := newFixture(fakeExporter{})
	w := f.do(http.MethodPost, "/api/crawl/parks?from=42")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int64(42), f.crawls.from)
	assert.False(t, f.crawls.ctxDone, "后台爬取不继承请求的取消")

	w = f.do(http.MethodPost, "/api/crawl/parks?from=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrawlConflictsMapTo409(t *testing.T) {
	for _, err := range []error{
		crawler.ErrAlreadyRunning,
		fmt.Errorf("%w: cities 正在运行", service.ErrSessionBusy),
	} {
		f := newFixture(fakeExporter{})
		f.crawls.startErr = err
		w := f.do(http.MethodPost, "/api/crawl/parks")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode(t, w)["error"], err.Error())
	}
}

func TestCrawlSessionFailureMapsTo502(t *testing.T) {
	f := newFixture(fakeExporter{})
	f.crawls.newsErr = fmt.Errorf("%w: login refused", crawler.ErrSessionFailure)
	w := f.do(http.MethodPost, "/api/crawl/news")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStopAndStatus(t *testing.T) {
	f := newFixture(fakeExporter{})
	w := f.do(http.MethodDelete, "/api/crawl/parks")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.crawls.stopped)

	w = f.do(http.MethodGet, "/api/crawl/parks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "parks", decode(t, w)["session_holder"])
}

func TestOneShotCrawls(t *testing.T) {
	f := newFixture(fakeExporter{})

	w := f.do(http.MethodPost, "/api/crawl/cities")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), decode(t, w)["leaves"])

	w = f.do(http.MethodPost, "/api/crawl/rides")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), decode(t, w)["rides"])

	w = f.do(http.MethodPost, "/api/crawl/news")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["created"])
}

func TestExport(t *testing.T) {
	w := newFixture(fakeExporter{}).do(http.MethodPost, "/api/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"exports/cities.csv"}, decode(t, w)["files"])

	w = newFixture(fakeExporter{err: errors.New("disk full")}).do(http.MethodPost, "/api/export")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListParksFilter(t *testing.T) {
	f := newFixture(fakeExporter{})
	w := f.do(http.MethodGet, "/api/parks?city_id=3&name=land")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.parks.filter.CityID)
	assert.Equal(t, uint64(3), *f.parks.filter.CityID)
	assert.Nil(t, f.parks.filter.OwnerID)
	assert.Equal(t, "land", f.parks.filter.Name)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = f.do(http.MethodGet, "/api/parks?owner_id=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListActivitiesPaging(t *testing.T) {
	f := newFixture(fakeExporter{})
	w := f.do(http.MethodGet, "/api/activities?type=BUYING_RIDE&page=0&page_size=500")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.ActivityBuyingRide, f.activities.filter.Type)
	assert.Equal(t, 1, f.activities.page)
	assert.Equal(t, 20, f.activities.pageSize)
}

func TestListCitiesError(t *testing.T) {
	w := newFixture(fakeExporter{}).do(http.MethodGet, "/api/cities")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "db down", decode(t, w)["error"])
}
