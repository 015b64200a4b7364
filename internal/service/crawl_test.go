package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"TPISync/internal/adapter/tpi"
	"TPISync/internal/config"
	"TPISync/internal/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gameSession 模拟游戏站点：按路径返回页面，世界地图只有一个国家
type gameSession struct {
	mu        sync.Mutex
	pages     map[string]string
	panels    []string
	current   string
	city      int
	ensureErr error
}

func (g *gameSession) Ensure(context.Context) error { return g.ensureErr }
func (g *gameSession) Sleep(context.Context, time.Duration) error { return nil }
func (g *gameSession) WaitVisible(context.Context, string) error { return nil }
func (g *gameSession) Click(context.Context, string) error { return nil }
func (g *gameSession) Close() {}

func (g *gameSession) Navigate(_ context.Context, path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = path
	return nil
}

func (g *gameSession) HTML(_ context.Context, selector string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if selector == "body" {
		return g.pages[g.current], nil
	}
	if g.city < len(g.panels) {
		return g.panels[g.city], nil
	}
	return "", nil
}

func (g *gameSession) OptionCount(_ context.Context, control string) (int, error) {
	if control == tpi.CountrySelect {
		return 1, nil
	}
	return len(g.panels), nil
}

func (g *gameSession) SelectOption(_ context.Context, control string, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if control == tpi.CitySelect {
		g.city = index
	}
	return nil
}

func parkPage(name, owner, city string) string {
	return fmt.Sprintf(`<body><section class="park-hero">
<h1 class="park-hero__title">%s</h1>
<p class="park-hero__location">📍 %s, France</p>
<p class="park-hero__owner">par <strong>%s</strong></p></section>
<div class="park-attraction-card"><div class="park-attraction-card__image"><img src="/img/attractions/loop.png"></div>
<h3 class="park-attraction-card__title">Loop de Intamin</h3></div></body>`, name, city, owner)
}

func cityPanel(name string, parks ...string) string {
	html := `<div class="world-map-city-info"><h2 class="world-map-city-title">` + name +
		` <span class="world-map-badge">France</span></h2><div class="world-map-city-stats"><div>Population : 1 000</div></div>` +
		`<div class="world-map-parcs-items">`
	for _, p := range parks {
		html += `<div class="world-map-parc-item"><span class="world-map-parc-name">` + p + `</span></div>`
	}
	return html + `</div></div>`
}

type fakeExporter struct{ calls int }

func (f *fakeExporter) ExportAll(context.Context) ([]string, error) {
	f.calls++
	return []string{"cities.csv"}, nil
}

func newCrawlService(t *testing.T, session *gameSession, exporter Exporter) (*CrawlService, *world) {
	t.Helper()
	svc, w, _ := newCrawlServiceWithSnapshots(t, session, exporter, &memSnapshotStore{})
	return svc, w
}

func newCrawlServiceWithSnapshots(t *testing.T, session *gameSession, exporter Exporter, snapshots *memSnapshotStore) (*CrawlService, *world, *config.CrawlConfig) {
	t.Helper()
	w := newWorld()
	cfg := &config.CrawlConfig{ParkStartID: 1, MaxConsecutiveErrors: 3, MaxItems: 100}
	adapter := tpi.NewAdapter(session, cfg, quietLogger())
	return NewCrawlService(adapter, w.parkSvc, w.citySvc, w.rideSvc, w.activitySvc, snapshots, exporter, cfg, quietLogger()), w, cfg
}

func TestCrawlParksRunsToExhaustion(t *testing.T) {
	session := &gameSession{pages: map[string]string{
		fmt.Sprintf(tpi.PathParkPage, 1): parkPage("Wonderland", "Bob", "Lyon"),
		fmt.Sprintf(tpi.PathParkPage, 2): parkPage("Funland", "Alice", "Paris"),
		fmt.Sprintf(tpi.PathParkPage, 4): parkPage("Gardenia", "Bob", "Lyon"),
	}}
	svc, w := newCrawlService(t, session, nil)

	require.NoError(t, svc.StartParks(context.Background(), 0))
	assert.Equal(t, "parks", svc.SessionHolder())
	require.Eventually(t, func() bool { return !svc.ParkStatus().Running }, 5*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return svc.SessionHolder() == "" }, time.Second, time.Millisecond)

	st := svc.ParkStatus()
	assert.Equal(t, crawler.StopExhausted, st.Reason)
	assert.Equal(t, int64(3), st.Successes)
	assert.Len(t, w.parks.all(), 3)
	assert.Len(t, w.players.all(), 2)
	assert.Len(t, w.rides.all(), 1, "同一图片的设施只有一条记录")
}

func TestCrawlParksSessionFailure(t *testing.T) {
	session := &gameSession{ensureErr: errors.New("login refused")}
	svc, _ := newCrawlService(t, session, nil)

	err := svc.StartParks(context.Background(), 1)
	assert.ErrorIs(t, err, crawler.ErrSessionFailure)
	assert.False(t, svc.ParkStatus().Running)
	assert.Empty(t, svc.SessionHolder(), "启动失败要释放会话")
}

func TestCrawlRejectsWhileSessionBusy(t *testing.T) {
	svc, _ := newCrawlService(t, &gameSession{}, nil)
	require.True(t, svc.guard.TryAcquire("cities"))

	_, err := svc.CrawlNews(context.Background())
	assert.ErrorIs(t, err, ErrSessionBusy)
	err = svc.StartParks(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSessionBusy)
}

func TestCrawlCities(t *testing.T) {
	session := &gameSession{
		pages:  map[string]string{},
		panels: []string{cityPanel("Paris", "Wonderland", "Funland"), "", cityPanel("Lyon")},
	}
	svc, w := newCrawlService(t, session, nil)

	res, err := svc.CrawlCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, crawler.DropdownResult{Outers: 1, Leaves: 2, Failures: 1}, res)
	assert.Len(t, w.cities.all(), 2)
	assert.Len(t, w.parks.all(), 2)
	assert.Equal(t, "France", *w.cities.all()[0].Country)
}

func TestCrawlNewsAndStatic(t *testing.T) {
	session := &gameSession{pages: map[string]string{
		tpi.PathOffice: `<body><div class="news-journal__item"><span class="news-journal__badge">Parcs</span>` +
			`<span class="news-journal__date">14/03/2025 à 09:30</span>` +
			`<p class="news-journal__text">Alice viens d'acheter 2 300m² de terrain à Paris pour un agrandissement.</p></div></body>`,
		tpi.PathAttractions: `<body><div class="attraction-card" data-constructor="Vekoma" data-type="coaster">` +
			`<img class="attraction-card__image" src="/attractions/boomerang.png"><h4 class="attraction-card__title">Boomerang</h4></div></body>`,
	}}
	exporter := &fakeExporter{}
	svc, w := newCrawlService(t, session, exporter)

	res, err := svc.CrawlNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	res, err = svc.CrawlNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Duplicates)

	require.NoError(t, svc.CrawlStatic(context.Background()))
	assert.Len(t, w.rides.all(), 1)
	assert.Equal(t, 1, exporter.calls)
}

const officeWithPlayer = `<body><section class="character-card">
<span class="character-card__money-value">1 234 567 €</span>
<span class="character-card__level-value">12</span>
<span class="character-card__exp">1 250 / 2 000 XP</span></section>
<div class="news-journal__item"><span class="news-journal__badge">Finances</span>` +
	`<span class="news-journal__date">14/03/2025 à 10:00</span><p class="news-journal__text">La bourse est calme.</p></div></body>`

func TestCrawlNewsRecordsPlayerData(t *testing.T) {
	session := &gameSession{pages: map[string]string{tpi.PathOffice: officeWithPlayer}}
	snapshots := &memSnapshotStore{}
	svc, w, cfg := newCrawlServiceWithSnapshots(t, session, nil, snapshots)
	cfg.MainPlayer = "Alice"

	_, err := svc.CrawlNews(context.Background())
	require.NoError(t, err)
	_, err = svc.CrawlNews(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshots.rows, 2, "每次读取都追加一条历史")
	snap := snapshots.rows[0]
	assert.Equal(t, int64(1234567), *snap.Money)
	assert.Equal(t, int64(12), *snap.Level)
	assert.Equal(t, int64(1250), *snap.Experience)
	require.NotNil(t, snap.PlayerID)
	players := w.players.all()
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, players[0].ID, *snap.PlayerID)
}

func TestCrawlNewsSurvivesSnapshotFailure(t *testing.T) {
	session := &gameSession{pages: map[string]string{tpi.PathOffice: officeWithPlayer}}
	snapshots := &memSnapshotStore{err: errors.New("db down")}
	svc, w, _ := newCrawlServiceWithSnapshots(t, session, nil, snapshots)

	res, err := svc.CrawlNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, w.players.all(), "未配置玩家名时不创建玩家")
}
