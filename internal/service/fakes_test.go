package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	_ "time/tzdata"

	"TPISync/internal/classifier"
	"TPISync/internal/model"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// memStore 内存仓储：按 id 保存副本，查找返回副本，避免测试里共享指针掩盖合并问题
type memStore[T any] struct {
	mu      sync.Mutex
	rows    map[uint64]T
	nextID  uint64
	saves   int
	saveErr func(*T) error
	idOf    func(*T) *uint64
	match   func(candidate, row *T) bool
	primary func(candidate, row *T) bool // 稳定键；命中即返回
}

func (m *memStore[T]) FindByKey(_ context.Context, candidate *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.sortedIDs()
	if m.primary != nil {
		for _, id := range ids {
			row := m.rows[id]
			if m.primary(candidate, &row) {
				return &row, nil
			}
		}
	}
	for _, id := range ids {
		row := m.rows[id]
		if m.match(candidate, &row) {
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memStore[T]) Save(_ context.Context, entity *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		if err := m.saveErr(entity); err != nil {
			return nil, err
		}
	}
	if m.rows == nil {
		m.rows = map[uint64]T{}
	}
	id := m.idOf(entity)
	if *id == 0 {
		m.nextID++
		*id = m.nextID
	}
	m.rows[*id] = *entity
	m.saves++
	return entity, nil
}

func (m *memStore[T]) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore[T]) all() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, id := range m.sortedIDs() {
		out = append(out, m.rows[id])
	}
	return out
}

func (m *memStore[T]) get(id uint64) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func newPlayerStore() *memStore[model.Player] {
	return &memStore[model.Player]{
		idOf:  func(p *model.Player) *uint64 { return &p.ID },
		match: func(c, r *model.Player) bool { return c.Name == r.Name },
	}
}

func newCityStore() *memStore[model.City] {
	return &memStore[model.City]{
		idOf:  func(c *model.City) *uint64 { return &c.ID },
		match: func(c, r *model.City) bool { return c.Name == r.Name },
	}
}

func newRideStore() *memStore[model.Ride] {
	return &memStore[model.Ride]{
		idOf: func(r *model.Ride) *uint64 { return &r.ID },
		primary: func(c, r *model.Ride) bool {
			return c.ImageURL != nil && r.ImageURL != nil && *c.ImageURL == *r.ImageURL
		},
		match: func(c, r *model.Ride) bool {
			if c.Name == "" || c.Name != r.Name || c.Brand != r.Brand {
				return false
			}
			return c.ImageURL == nil || r.ImageURL == nil
		},
	}
}

// memParkStore 公园仓储 + 关联表
type memParkStore struct {
	*memStore[model.Park]
	linkMu sync.Mutex
	links  map[[2]uint64]struct{}
}

func newParkStore() *memParkStore {
	return &memParkStore{
		memStore: &memStore[model.Park]{
			idOf: func(p *model.Park) *uint64 { return &p.ID },
			primary: func(c, r *model.Park) bool {
				return c.ExternalID != nil && r.ExternalID != nil && *c.ExternalID == *r.ExternalID
			},
			match: func(c, r *model.Park) bool {
				if c.Name == "" || c.Name != r.Name {
					return false
				}
				return c.ExternalID == nil || r.ExternalID == nil
			},
		},
		links: map[[2]uint64]struct{}{},
	}
}

func (m *memParkStore) AttachRide(_ context.Context, parkID, rideID uint64) error {
	m.linkMu.Lock()
	defer m.linkMu.Unlock()
	m.links[[2]uint64{parkID, rideID}] = struct{}{}
	return nil
}

func (m *memParkStore) rideIDs(parkID uint64) []uint64 {
	m.linkMu.Lock()
	defer m.linkMu.Unlock()
	var ids []uint64
	for k := range m.links {
		if k[0] == parkID {
			ids = append(ids, k[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memParkStore) byName(name string) *model.Park {
	for _, p := range m.all() {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

type memSnapshotStore struct {
	mu   sync.Mutex
	rows []model.PlayerSnapshot
	err  error
}

func (m *memSnapshotStore) Create(_ context.Context, snap *model.PlayerSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	snap.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *snap)
	return nil
}

type memActivityStore struct {
	mu     sync.Mutex
	events []model.ActivityEvent
}

func (m *memActivityStore) FindByKey(_ context.Context, key model.ActivityKey) (*model.ActivityEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.PostedAt.Equal(key.PostedAt) && e.Type == key.Type && e.Category == key.Category && e.Text == key.Text {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memActivityStore) Create(_ context.Context, e *model.ActivityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uint64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

// world 一套接好内存仓储的服务
type world struct {
	players    *memStore[model.Player]
	cities     *memStore[model.City]
	rides      *memStore[model.Ride]
	parks      *memParkStore
	activities *memActivityStore

	playerSvc   *PlayerService
	citySvc     *CityService
	rideSvc     *RideService
	parkSvc     *ParkService
	activitySvc *ActivityService
}

func newWorld() *world {
	w := &world{
		players:    newPlayerStore(),
		cities:     newCityStore(),
		rides:      newRideStore(),
		parks:      newParkStore(),
		activities: &memActivityStore{},
	}
	logger := quietLogger()
	w.playerSvc = NewPlayerService(w.players)
	w.rideSvc = NewRideService(w.rides)
	w.parkSvc = NewParkService(w.parks, w.cities, w.playerSvc, w.rideSvc, logger)
	w.citySvc = NewCityService(w.cities, w.parkSvc, w.playerSvc, logger)
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(fmt.Sprintf("load location: %v", err))
	}
	w.activitySvc = NewActivityService(w.activities, classifier.New(), w.playerSvc, w.citySvc, w.parkSvc, w.rideSvc, paris, logger)
	return w
}
