package tpi

import (
	"fmt"
	"regexp"
	"strings"

	"TPISync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	// 国家徽章里带旗帜 emoji，只保留字母、空格和连字符
	nonLetters = regexp.MustCompile(`[^\p{L}\s'-]`)
)

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	return doc, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s.First().Text(), " "))
}

// afterColon "Population : 250 000" -> "250 000"
func afterColon(s string) string {
	_, v, found := strings.Cut(s, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(v)
}

// ParseParkPage 公园详情页；没有 .park-hero 或没有标题视为该 id 不存在，返回 nil
func ParseParkPage(html string, externalID int64) (*model.ParkPage, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	hero := doc.Find(selParkHero).First()
	if hero.Length() == 0 {
		return nil, nil
	}
	name := text(hero.Find(selParkTitle))
	if name == "" {
		return nil, nil
	}
	page := &model.ParkPage{
		ExternalID: externalID,
		Name:       name,
		Location:   text(hero.Find(selParkLocation)),
		Owner:      text(hero.Find(selParkOwner)),
		Stats:      map[string]string{},
	}
	doc.Find(selParkStatsCard).Each(func(_ int, card *goquery.Selection) {
		title := text(card.Find(selParkStatsTitle))
		if title != "" {
			page.Stats[title] = text(card.Find(selParkStatsValue))
		}
	})
	doc.Find(selParkAttraction).Each(func(_ int, card *goquery.Selection) {
		src, _ := card.Find(selParkAttrImage).First().Attr("src")
		page.Attractions = append(page.Attractions, model.AttractionCard{
			Label:    text(card.Find(selParkAttrTitle)),
			ImageURL: strings.TrimSpace(src),
		})
	})
	return page, nil
}

// ParseCityPanel 世界地图上当前选中城市的面板；面板不存在返回 nil
func ParseCityPanel(html string) (*model.CityPanel, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	info := doc.Find(selCityInfo).First()
	if info.Length() == 0 {
		return nil, nil
	}
	title := info.Find(selCityTitle).First()
	panel := &model.CityPanel{
		// 标题的第一个文本节点才是城市名，后面跟着徽章
		Name:       strings.TrimSpace(title.Contents().First().Text()),
		Country:    strings.TrimSpace(whitespace.ReplaceAllString(nonLetters.ReplaceAllString(text(title.Find(selCityCountry)), ""), " ")),
		Difficulty: text(title.Find(selCityDifficulty)),
	}
	info.Find("div").Each(func(_ int, div *goquery.Selection) {
		content := div.Text()
		switch {
		case strings.Contains(content, "Surface disponible"):
			panel.Surface = text(div.Find("strong"))
		case strings.Contains(content, "Taux de remplissage"):
			panel.FillRate = text(div.Find("strong"))
		}
	})
	stats := info.Find(selCityStats)
	statAt := func(i int) string {
		return afterColon(text(stats.Eq(i)))
	}
	panel.Population = statAt(0)
	panel.PricePerM2 = statAt(2)
	panel.MaxHeight = statAt(3)
	panel.Capacity = statAt(5)

	info.Find(selCityParkItem).Each(func(_ int, item *goquery.Selection) {
		panel.Parks = append(panel.Parks, model.PanelPark{
			Name:    text(item.Find(selCityParkName)),
			Creator: text(item.Find(selCityParkCreator)),
		})
	})
	return panel, nil
}

// ParseRideStore 设施商店中的全部卡片
func ParseRideStore(html string) ([]model.RideCard, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	var cards []model.RideCard
	doc.Find(selRideCard).Each(func(_ int, card *goquery.Selection) {
		attr := func(name string) string {
			v, _ := card.Attr(name)
			return strings.TrimSpace(v)
		}
		src, _ := card.Find(selRideImage).First().Attr("src")
		cards = append(cards, model.RideCard{
			Name:        text(card.Find(selRideTitle)),
			Constructor: attr("data-constructor"),
			Type:        attr("data-type"),
			Price:       attr("data-price"),
			Hype:        attr("data-hype"),
			Surface:     text(card.Find(selRideSurface)),
			Capacity:    text(card.Find(selRideCapacity)),
			ImageURL:    strings.TrimSpace(src),
		})
	})
	return cards, nil
}

// ParseNews 办公室页面的新闻列表，按页面顺序返回
func ParseNews(html string) ([]model.NewsEntry, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	var entries []model.NewsEntry
	doc.Find(selNewsItem).Each(func(_ int, item *goquery.Selection) {
		entries = append(entries, model.NewsEntry{
			Category: text(item.Find(selNewsBadge)),
			Date:     text(item.Find(selNewsDate)),
			Text:     text(item.Find(selNewsText)),
		})
	})
	return entries, nil
}

// ParsePlayerData 个人卡片（金钱、等级、经验）
func ParsePlayerData(html string) (*model.PlayerData, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	return &model.PlayerData{
		Money:      parseMoney(text(doc.Find(selCharacterMoney))),
		Level:      parseInteger(text(doc.Find(selCharacterLevel))),
		Experience: parseInteger(leadingNumber(text(doc.Find(selCharacterExp)))),
	}, nil
}

// leadingNumber "1 250 / 2 000 XP" -> "1 250"
func leadingNumber(s string) string {
	left, _, _ := strings.Cut(s, "/")
	return strings.TrimSuffix(strings.TrimSpace(left), "XP")
}
