package tpi

import (
	"math"
	"strings"

	"TPISync/internal/model"
	"TPISync/internal/utils/scrapeparse"
)

var (
	parseMoney   = scrapeparse.ParseMoney
	parseInteger = scrapeparse.ParseInteger
)

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ToPark 公园页 -> 候选公园。owner / city 由调用方解析后挂上
func ToPark(page *model.ParkPage) *model.Park {
	return &model.Park{
		ExternalID:        model.Ptr(page.ExternalID),
		Name:              strings.TrimSpace(page.Name),
		Capital:           parseMoney(page.Stats[statCapital]),
		SocialCapital:     parseMoney(page.Stats[statSocialCapital]),
		YesterdayVisitors: parseInteger(page.Stats[statYesterdayVisitors]),
		UsedSurface:       scrapeparse.ParseSurface(page.Stats[statUsedSurface]),
		Note:              parseInteger(leadingNumber(page.Stats[statNote])),
	}
}

// ToAttractionRide 公园页上的设施卡片 -> 候选设施；既无图片也无名称时返回 nil
func ToAttractionRide(card model.AttractionCard) *model.Ride {
	r := &model.Ride{}
	if card.ImageURL != "" {
		r.ImageURL = optional(scrapeparse.NormalizeImageURL(card.ImageURL))
	}
	r.Name, r.Brand, _ = scrapeparse.SplitRideLabel(card.Label)
	if r.ImageURL == nil && r.Name == "" {
		return nil
	}
	return r
}

// ToCity 城市面板 -> 候选城市。总面积 = 可用面积 / (1 - 填充率)
func ToCity(panel *model.CityPanel) *model.City {
	c := &model.City{
		Name:             strings.TrimSpace(panel.Name),
		Country:          optional(panel.Country),
		Difficulty:       scrapeparse.ParseDifficulty(panel.Difficulty),
		AvailableSurface: scrapeparse.ParseSurface(panel.Surface),
		Population:       parseInteger(panel.Population),
		PriceByMeter:     parseMoney(leadingNumber(panel.PricePerM2)),
		MaxHeight:        parseInteger(panel.MaxHeight),
	}
	if fill := scrapeparse.ParseFraction(panel.FillRate); fill != nil && c.AvailableSurface != nil && *fill >= 0 && *fill < 1 {
		total := int64(math.Round(float64(*c.AvailableSurface) / (1 - *fill)))
		c.TotalSurface = &total
	}
	if current, total, ok := scrapeparse.ParseCapacity(panel.Capacity); ok {
		c.ParkPopulation = &current
		c.ParkCapacity = &total
	}
	return c
}

// ToRide 商店卡片 -> 候选设施
func ToRide(card model.RideCard) *model.Ride {
	r := &model.Ride{
		Name:              strings.TrimSpace(card.Name),
		Brand:             strings.TrimSpace(card.Constructor),
		Price:             parseMoney(card.Price),
		Hype:              parseInteger(card.Hype),
		Surface:           scrapeparse.ParseSurface(card.Surface),
		MaxCapacityByHour: scrapeparse.ParseHourlyCapacity(card.Capacity),
	}
	if card.ImageURL != "" {
		r.ImageURL = optional(scrapeparse.NormalizeImageURL(card.ImageURL))
	}
	switch strings.ToLower(strings.TrimSpace(card.Type)) {
	case "":
	case "flatride":
		r.Type = model.Ptr(model.RideTypeFlatRide)
	default:
		r.Type = model.Ptr(model.RideTypeCoaster)
	}
	return r
}
