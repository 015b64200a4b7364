// Package export 把规范数据导出为 CSV 文件（每张表一个文件）
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"TPISync/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

// Lister 全量读取某类实体
type Lister[T any] interface {
	ListAll(ctx context.Context) ([]*T, error)
}

// ParkRideLister 公园与设施的关联行
type ParkRideLister interface {
	ListParkRides(ctx context.Context) ([]*model.ParkRide, error)
}

// Sources 导出所需的全部读取能力，通常直接传入各仓储
type Sources struct {
	Cities     Lister[model.City]
	Players    Lister[model.Player]
	Parks      Lister[model.Park]
	Rides      Lister[model.Ride]
	ParkRides  ParkRideLister
	Activities Lister[model.ActivityEvent]
}

type CSVExporter struct {
	src    Sources
	dir    string
	logger *logrus.Logger
}

func NewCSVExporter(src Sources, dir string, logger *logrus.Logger) *CSVExporter {
	return &CSVExporter{src: src, dir: dir, logger: logger}
}

// File 一个导出文件及其数据行数
type File struct {
	Path string
	Rows int
}

// ExportAll 依次导出所有表，任一失败即返回已写出的文件
func (e *CSVExporter) ExportAll(ctx context.Context) ([]string, error) {
	files, err := e.Export(ctx)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, err
}

func (e *CSVExporter) Export(ctx context.Context) ([]File, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建导出目录失败: %w", err)
	}
	steps := []struct {
		file  string
		build func(ctx context.Context) ([]string, [][]string, error)
	}{
		{"cities.csv", e.cities},
		{"players.csv", e.players},
		{"parks.csv", e.parks},
		{"rides.csv", e.rides},
		{"parks_rides.csv", e.parkRides},
		{"activities.csv", e.activities},
	}
	files := make([]File, 0, len(steps))
	for _, step := range steps {
		header, rows, err := step.build(ctx)
		if err != nil {
			return files, fmt.Errorf("导出%s失败: %w", step.file, err)
		}
		path := filepath.Join(e.dir, step.file)
		if err := writeCSV(path, header, rows); err != nil {
			return files, err
		}
		e.logger.WithFields(logrus.Fields{"file": path, "rows": len(rows)}).Debug("CSV已导出")
		files = append(files, File{Path: path, Rows: len(rows)})
	}
	e.logger.WithField("dir", e.dir).Info("CSV导出完成")
	return files, nil
}

// writeCSV 按 RFC 4180 写出：含逗号、引号或换行的字段加引号，引号加倍
func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件%s失败: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("关闭文件%s失败: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("写入%s失败: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("写入%s失败: %w", path, err)
	}
	return nil
}

// RenderSummary 在终端打印导出结果
func RenderSummary(out io.Writer, files []File) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"File", "Rows"})
	total := 0
	for _, f := range files {
		t.AppendRow(table.Row{f.Path, f.Rows})
		total += f.Rows
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

// cell 空指针导出为空串
func cell[T any](v *T) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

func record(values ...interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func (e *CSVExporter) cities(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.Cities.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "name", "country", "difficulty", "population", "available_surface",
		"total_surface", "max_height", "park_population", "park_capacity", "price_by_meter"}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, record(c.ID, c.Name, cell(c.Country), cell(c.Difficulty), cell(c.Population),
			cell(c.AvailableSurface), cell(c.TotalSurface), cell(c.MaxHeight), cell(c.ParkPopulation),
			cell(c.ParkCapacity), cell(c.PriceByMeter)))
	}
	return header, rows, nil
}

func (e *CSVExporter) players(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.Players.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, record(p.ID, p.Name))
	}
	return []string{"id", "name"}, rows, nil
}

func (e *CSVExporter) parks(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.Parks.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "external_id", "name", "owner_id", "city_id", "capital", "social_capital",
		"yesterday_visitors", "used_surface", "note"}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, record(p.ID, cell(p.ExternalID), p.Name, cell(p.OwnerID), cell(p.CityID),
			cell(p.Capital), cell(p.SocialCapital), cell(p.YesterdayVisitors), cell(p.UsedSurface), cell(p.Note)))
	}
	return header, rows, nil
}

func (e *CSVExporter) rides(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.Rides.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "image_url", "name", "brand", "type", "hype", "price", "surface", "max_capacity_by_hour"}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, record(r.ID, cell(r.ImageURL), r.Name, r.Brand, cell(r.Type), cell(r.Hype),
			cell(r.Price), cell(r.Surface), cell(r.MaxCapacityByHour)))
	}
	return header, rows, nil
}

func (e *CSVExporter) parkRides(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.ParkRides.ListParkRides(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, 0, len(list))
	for _, l := range list {
		rows = append(rows, record(l.ParkID, l.RideID))
	}
	return []string{"park_id", "ride_id"}, rows, nil
}

func (e *CSVExporter) activities(ctx context.Context) ([]string, [][]string, error) {
	list, err := e.src.Activities.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	header := []string{"id", "posted_at", "category", "type", "text", "player_id", "city_id",
		"actor_park_id", "victim_park_id", "ride_id", "amount"}
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, record(a.ID, a.PostedAt.Format(time.RFC3339), a.Category, a.Type, a.Text,
			cell(a.PlayerID), cell(a.CityID), cell(a.ActorParkID), cell(a.VictimParkID), cell(a.RideID), cell(a.Amount)))
	}
	return header, rows, nil
}
