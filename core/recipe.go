package core

import "strings"

// MealType 是菜谱的粗粒度分类，同时也是偏好权重的 key。
type MealType string

const (
	MealAppetizer MealType = "appetizer"
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealDessert   MealType = "dessert"
)

var mealTypes = []MealType{MealAppetizer, MealBreakfast, MealLunch, MealDinner, MealDessert}

// MealTypes 返回固定顺序的全部餐型。
func MealTypes() []MealType {
	out := make([]MealType, len(mealTypes))
	copy(out, mealTypes)
	return out
}

// Valid 判断是否属于封闭枚举。
func (m MealType) Valid() bool {
	for _, t := range mealTypes {
		if m == t {
			return true
		}
	}
	return false
}

func (m MealType) String() string { return string(m) }

// ParseMealType 解析餐型（不区分大小写）。
func ParseMealType(s string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", NewDomainError(ModuleCatalog, ErrorCodeInvalidInput, "unknown meal type").
			Wrap(nil, "%q", s)
	}
	return m, nil
}

// Recipe 是目录中的一条菜谱，加载后不可变。
type Recipe struct {
	ID       string
	Name     string
	MealType MealType

	// AggregatedRating 为 nil 表示数据源没有评分
	AggregatedRating *float64
	ReviewCount      *int

	// PrepTime / TotalTime 保留数据源中的 ISO-8601 时长原文（如 PT30M）
	PrepTime     string
	TotalTime    string
	Instructions string
}

// RatingOr 返回聚合评分；缺失或为 0 时返回 def。
func (r *Recipe) RatingOr(def float64) float64 {
	if r == nil || r.AggregatedRating == nil || *r.AggregatedRating == 0 {
		return def
	}
	return *r.AggregatedRating
}

// Reviews 返回评论数，缺失时为 0。
func (r *Recipe) Reviews() int {
	if r == nil || r.ReviewCount == nil {
		return 0
	}
	return *r.ReviewCount
}

// RecipeLookup 按 ID 查找菜谱，catalog.Catalog 实现此接口。
type RecipeLookup interface {
	// Get 不限餐型查找；同一 ID 出现在多个餐型下时返回餐型枚举顺序中的第一条
	Get(id string) (*Recipe, bool)

	// Lookup 只在指定餐型下查找
	Lookup(mealType MealType, id string) (*Recipe, bool)
}

// Classifier 把自由文本映射为餐型。实现必须是全函数：无法识别时返回 MealDinner。
type Classifier interface {
	Classify(text string) MealType
}

// RandSource 是可注入的随机源，Float64 返回 [0,1) 区间的值。
type RandSource interface {
	Float64() float64
}
