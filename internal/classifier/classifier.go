// Package classifier 将新闻日志的自由文本按有序的语法列表归类为事件类型。
package classifier

import (
	"regexp"
	"strings"

	"TPISync/internal/model"
	"TPISync/internal/utils/scrapeparse"
)

// Result 分类结果，未命中时 Type 为 NONE 且其余字段为空
type Result struct {
	Type           model.ActivityType `json:"type"`
	ActorName      string             `json:"actorName,omitempty"`
	CityName       string             `json:"cityName,omitempty"`
	ActorParkName  string             `json:"actorParkName,omitempty"`
	VictimParkName string             `json:"victimParkName,omitempty"`
	RideName       string             `json:"rideName,omitempty"`
	Amount         *int64             `json:"amount,omitempty"`
}

// Matched 是否命中某个语法
func (r Result) Matched() bool { return r.Type != model.ActivityNone }

// slot 捕获组在结果中的位置
type slot int

const (
	skip slot = iota
	actor
	city
	actorPark
	victimPark
	ride
	amount
)

// Grammar 一条事件语法：匹配模式 + 捕获组到结果字段的映射
type Grammar struct {
	Type    model.ActivityType
	pattern *regexp.Regexp
	slots   []slot
}

// newGrammar 编译为整串匹配、大小写不敏感的正则。expr 中的 ' 同时匹配排版撇号 ’
func newGrammar(t model.ActivityType, expr string, slots ...slot) Grammar {
	expr = strings.ReplaceAll(expr, "'", "['’]")
	re := regexp.MustCompile(`(?i)^` + expr + `$`)
	if re.NumSubexp() != len(slots) {
		panic("classifier: grammar " + string(t) + " has mismatched capture slots")
	}
	return Grammar{Type: t, pattern: re, slots: slots}
}

// Match 整串匹配并按位置提取字段
func (g Grammar) Match(text string) (Result, bool) {
	m := g.pattern.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	res := Result{Type: g.Type}
	for i, s := range g.slots {
		v := strings.TrimSpace(m[i+1])
		switch s {
		case actor:
			res.ActorName = v
		case city:
			res.CityName = v
		case actorPark:
			res.ActorParkName = v
		case victimPark:
			res.VictimParkName = v
		case ride:
			res.RideName = v
		case amount:
			res.Amount = scrapeparse.ParseInteger(v)
		}
	}
	return res, true
}

// Classifier 按声明顺序逐条尝试语法，第一条命中即返回
type Classifier struct {
	grammars []Grammar
}

// New 使用默认语法顺序
func New() *Classifier {
	return NewWithGrammars(DefaultGrammars())
}

func NewWithGrammars(grammars []Grammar) *Classifier {
	return &Classifier{grammars: grammars}
}

// Classify 纯函数：同样的文本总是得到同样的结果，未命中返回 NONE
func (c *Classifier) Classify(text string) Result {
	text = strings.TrimSpace(text)
	for _, g := range c.grammars {
		if res, ok := g.Match(text); ok {
			return res
		}
	}
	return Result{Type: model.ActivityNone}
}

// Grammars 当前生效的语法（按顺序）
func (c *Classifier) Grammars() []Grammar {
	out := make([]Grammar, len(c.grammars))
	copy(out, c.grammars)
	return out
}

// Category 新闻栏目映射
func Category(raw string) model.ActivityCategory {
	if strings.EqualFold(strings.TrimSpace(raw), "Parcs") {
		return model.CategoryPark
	}
	return model.CategoryOther
}
