package model

// Difficulty 城市难度枚举
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// RideType 游乐设施类型
type RideType string

const (
	RideTypeCoaster  RideType = "COASTER"
	RideTypeFlatRide RideType = "FLAT_RIDE"
)

// ActivityType 新闻事件类型（分类器输出的有限集合）
type ActivityType string

const (
	ActivityBuyingLand          ActivityType = "BUYING_LAND"
	ActivityBuyingRide          ActivityType = "BUYING_RIDE"
	ActivityBuyingPark          ActivityType = "BUYING_PARK"
	ActivityBuyingRideFromOther ActivityType = "BUYING_RIDE_FROM_OTHER"
	ActivitySellingRide         ActivityType = "SELLING_RIDE"
	ActivityDestructRide        ActivityType = "DESTRUCT_RIDE"
	ActivityNone                ActivityType = "NONE" // 未识别的文本
)

// ActivityCategory 新闻栏目
type ActivityCategory string

const (
	CategoryPark  ActivityCategory = "PARK"
	CategoryOther ActivityCategory = "OTHER"
)

// mergeField 单调合并：仅当新值非空时覆盖旧值，拷贝一份避免与候选对象共享指针
func mergeField[T any](dst **T, src *T) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}

// Ptr 取值的指针，构造候选实体时使用
func Ptr[T any](v T) *T {
	return &v
}
