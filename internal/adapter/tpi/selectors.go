package tpi

// 页面路径（相对 base_url）
const (
	PathLogin       = "play.php"
	PathWorldMap    = "game/carte_du_monde.php"
	PathParkPage    = "game/park/fake/monpark.php?id=%d"
	PathAttractions = "game/park/attractions.php"
	PathOffice      = "game/monbureau.php"
)

// 世界地图下拉框
const (
	CountrySelect = "#countrySelect"
	CitySelect    = "#citySelect"
)

const (
	selParkHero        = ".park-hero"
	selParkTitle       = ".park-hero__title"
	selParkLocation    = ".park-hero__location"
	selParkOwner       = ".park-hero__owner strong"
	selParkStatsCard   = ".park-stats-section__card"
	selParkStatsTitle  = ".park-stats-section__card-title"
	selParkStatsValue  = ".park-stats-section__card-value"
	selParkAttraction  = ".park-attraction-card"
	selParkAttrTitle   = ".park-attraction-card__title"
	selParkAttrImage   = ".park-attraction-card__image img"
	selCityInfo        = ".world-map-city-info"
	selCityTitle       = ".world-map-city-title"
	selCityCountry     = ".world-map-badge"
	selCityDifficulty  = ".world-map-difficulty-badge"
	selCityStats       = ".world-map-city-stats > div"
	selCityParkItem    = ".world-map-parcs-items .world-map-parc-item"
	selCityParkName    = ".world-map-parc-name"
	selCityParkCreator = ".world-map-parc-creator strong"
	selStoreButton     = "button#open-attraction-store-btn"
	selStoreModal      = "#attraction-store-modal"
	selRideCard        = ".attraction-card"
	selRideTitle       = ".attraction-card__title"
	selRideSurface     = ".attraction-card__description strong:last-child"
	selRideCapacity    = ".attraction-card__capacity"
	selRideImage       = ".attraction-card__image"
	selNewsItem        = ".news-journal__item"
	selNewsBadge       = ".news-journal__badge"
	selNewsDate        = ".news-journal__date"
	selNewsText        = ".news-journal__text"
	selCharacterMoney  = ".character-card__money-value"
	selCharacterLevel  = ".character-card__level-value"
	selCharacterExp    = ".character-card__exp"
)

// 公园统计卡片标题
const (
	statCapital           = "Trésorerie"
	statSocialCapital     = "Capital social"
	statYesterdayVisitors = "Visiteurs hier"
	statUsedSurface       = "Surface utilisée"
	statNote              = "Note"
)
