// Package scrapeparse 将页面上的本地化文本（金额、整数、面积、比例）转换为数值。
// 所有函数均为纯函数，无法解析时返回 nil / false，不 panic。
package scrapeparse

import (
	"math"
	"strconv"
	"strings"

	"TPISync/internal/model"
)

// 页面上出现的各种空格：普通空格、不间断空格、窄不间断空格、细空格
var spaceReplacer = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\u2009", "")

const imageMarker = "attractions/"

// RemoveSpaces 去除所有空格变体（千位分隔符）
func RemoveSpaces(s string) string {
	return spaceReplacer.Replace(s)
}

// ParseMoney "6 487 883 €" -> 6487883
func ParseMoney(s string) *int64 {
	return parseInt(strings.ReplaceAll(RemoveSpaces(s), "€", ""))
}

// ParseInteger "2 956" -> 2956，同时去掉 m / ² 单位
func ParseInteger(s string) *int64 {
	s = RemoveSpaces(s)
	s = strings.ReplaceAll(s, "m", "")
	s = strings.ReplaceAll(s, "²", "")
	return parseInt(s)
}

// ParseSurface "12 500 m²" -> 12500
func ParseSurface(s string) *int64 {
	return parseInt(strings.ReplaceAll(RemoveSpaces(s), "m²", ""))
}

// ParseIntegerOrDefault 解析失败时返回 def
func ParseIntegerOrDefault(s string, def int64) int64 {
	if v := ParseInteger(s); v != nil {
		return *v
	}
	return def
}

// ParseFraction "29.1%" -> 0.291；不带 % 的值按原样返回
func ParseFraction(s string) *float64 {
	s = strings.ReplaceAll(RemoveSpaces(s), ",", ".")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if percent {
		f /= 100
	}
	return &f
}

// ParseCapacity "34 / 104 parc(s)" -> (34, 104)。分母去掉单位后缀，只保留数字
func ParseCapacity(s string) (current, total int64, ok bool) {
	left, right, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	a := parseInt(RemoveSpaces(left))
	b := parseInt(leadingDigits(RemoveSpaces(right)))
	if a == nil || b == nil {
		return 0, 0, false
	}
	return *a, *b, true
}

// ParseHourlyCapacity 设施每小时载客量 "1 200 / h" -> 1200
func ParseHourlyCapacity(s string) *int64 {
	left, _, _ := strings.Cut(s, "/")
	return ParseInteger(left)
}

// NormalizeImageURL 取 attractions/ 之后的部分作为设施图片的身份键，去掉 query 和 fragment
func NormalizeImageURL(s string) string {
	idx := strings.Index(s, imageMarker)
	if idx < 0 {
		return s
	}
	key := s[idx+len(imageMarker):]
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key
}

// SplitRideLabel "Boomerang de Vekoma" -> ("Boomerang", "Vekoma")。
// 名称本身可能包含 " de "，因此按最后一个连接词切分
func SplitRideLabel(s string) (name, brand string, ok bool) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, " de ")
	if idx <= 0 {
		return s, "", false
	}
	name = strings.TrimSpace(s[:idx])
	brand = strings.TrimSpace(s[idx+len(" de "):])
	if name == "" || brand == "" {
		return s, "", false
	}
	return name, brand, true
}

// CleanLocation "📍 Paris, France" -> "Paris"
func CleanLocation(s string) string {
	s = strings.ReplaceAll(s, "📍", "")
	city, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(city)
}

// ParseDifficulty Facile / Modéré / Difficile
func ParseDifficulty(s string) *model.Difficulty {
	var d model.Difficulty
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "facile":
		d = model.DifficultyEasy
	case "modéré", "modere":
		d = model.DifficultyMedium
	case "difficile":
		d = model.DifficultyHard
	default:
		return nil
	}
	return &d
}

func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
