package model

// ========== 页面抓取的原始结构（未解析的文本），由 adapter 转换为实体 ==========

// ParkPage 公园详情页 game/park/fake/monpark.php?id=N
type ParkPage struct {
	ExternalID  int64             `json:"externalId"`
	Name        string            `json:"name"`
	Location    string            `json:"location"` // "📍 Paris, France"
	Owner       string            `json:"owner"`
	Stats       map[string]string `json:"stats"` // 统计卡片：标题 -> 文本值
	Attractions []AttractionCard  `json:"attractions"`
}

// AttractionCard 公园页上的设施卡片
type AttractionCard struct {
	Label    string `json:"label"` // "Name de Brand"
	ImageURL string `json:"imageUrl"`
}

// CityPanel 世界地图上选中城市后的信息面板
type CityPanel struct {
	Name       string      `json:"cityName"`
	Country    string      `json:"country"`
	Difficulty string      `json:"difficulty"`
	Surface    string      `json:"surface"`  // 可用面积
	FillRate   string      `json:"fillRate"` // "29.1%"
	Population string      `json:"population"`
	PricePerM2 string      `json:"pricePerM2"`
	MaxHeight  string      `json:"maxHeight"`
	Capacity   string      `json:"capacity"` // "34 / 104 parc(s)"
	Parks      []PanelPark `json:"parks"`
}

// PanelPark 城市面板中列出的公园
type PanelPark struct {
	Name    string `json:"parkName"`
	Creator string `json:"creator"`
}

// RideCard 设施商店中的卡片
type RideCard struct {
	Name        string `json:"name"`
	Constructor string `json:"constructor"`
	Type        string `json:"type"` // data-type：flatride / coaster
	Price       string `json:"price"`
	Hype        string `json:"hype"`
	Surface     string `json:"surface"`
	Capacity    string `json:"capacity"` // "1 200 / h"
	ImageURL    string `json:"imageUrl"`
}

// NewsEntry 办公室页面的新闻条目
type NewsEntry struct {
	Category string `json:"category"`
	Date     string `json:"date"` // "dd/MM/yyyy à HH:mm"
	Text     string `json:"text"`
}

// PlayerData 当前登录玩家的个人数据
type PlayerData struct {
	Money      *int64 `json:"money,omitempty"`
	Level      *int64 `json:"level,omitempty"`
	Experience *int64 `json:"experience,omitempty"`
}
