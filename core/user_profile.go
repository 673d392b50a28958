package core

import (
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// 偏好模型常量
const (
	MaxWeight            = 5.0 // 单个餐型权重上限
	DecayFactor          = 0.9 // 每个衰减周期的乘数
	DecayIntervalDays    = 30  // 衰减周期（天）
	WeightIncrement      = 1.0 // 一次喜欢带来的权重增量
	DefaultRecipeRating  = 0.5 // 未见过的菜谱评分
	LikedRatingIncrement = 1.0 // 一次喜欢带来的菜谱评分增量
)

// UserProfile 是推荐的持久化状态：偏好、评分、计数器与时间戳。
//
// 它被 suggest / feedback / preference 共享：
//   - suggest 读取权重与评分打分，并累加两个计数器
//   - feedback 写入 liked/disliked 与评分
//   - preference 维护 MealTypePreferences 的衰减与上限
//
// UserProfile 自身不加锁，同一用户的操作需要由调用方串行化。
type UserProfile struct {
	UserID        string             `json:"user_id"`
	Preferences   Preferences        `json:"preferences"`
	RecipeRatings map[string]float64 `json:"recipe_ratings"`

	LastLogin     time.Time `json:"last_login"`
	LastDecayDate time.Time `json:"last_decay_date"`

	TotalSuggestionsReceived int64 `json:"total_suggestions_received"`
	TotalInteractions        int64 `json:"total_interactions"`
}

// Preferences 对应持久化格式中的 preferences 对象。
type Preferences struct {
	LikedRecipes        []RecipeRef          `json:"liked_recipes"`
	DislikedRecipes     []RecipeRef          `json:"disliked_recipes"`
	DietaryRestrictions StringSet            `json:"dietary_restrictions"`
	FavoriteCuisines    StringSet            `json:"favorite_cuisines"`
	MealTypePreferences map[MealType]float64 `json:"meal_type_preferences"`
}

// RecipeRef 是 liked/disliked 列表中的一项。
type RecipeRef struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
}

// NormalizeUserID 用户 ID 不区分大小写。
func NormalizeUserID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// NewUserProfile 创建一个零值画像，LastLogin 与 LastDecayDate 均为 now。
func NewUserProfile(userID string, now time.Time) *UserProfile {
	now = now.UTC()
	return &UserProfile{
		UserID: NormalizeUserID(userID),
		Preferences: Preferences{
			LikedRecipes:        make([]RecipeRef, 0),
			DislikedRecipes:     make([]RecipeRef, 0),
			DietaryRestrictions: NewStringSet(),
			FavoriteCuisines:    NewStringSet(),
			MealTypePreferences: make(map[MealType]float64),
		},
		RecipeRatings: make(map[string]float64),
		LastLogin:     now,
		LastDecayDate: now,
	}
}

// EnsureInit 补齐反序列化后可能为 nil 的容器。
func (p *UserProfile) EnsureInit() {
	if p.Preferences.LikedRecipes == nil {
		p.Preferences.LikedRecipes = make([]RecipeRef, 0)
	}
	if p.Preferences.DislikedRecipes == nil {
		p.Preferences.DislikedRecipes = make([]RecipeRef, 0)
	}
	if p.Preferences.DietaryRestrictions == nil {
		p.Preferences.DietaryRestrictions = NewStringSet()
	}
	if p.Preferences.FavoriteCuisines == nil {
		p.Preferences.FavoriteCuisines = NewStringSet()
	}
	if p.Preferences.MealTypePreferences == nil {
		p.Preferences.MealTypePreferences = make(map[MealType]float64)
	}
	if p.RecipeRatings == nil {
		p.RecipeRatings = make(map[string]float64)
	}
}

// MealTypeWeight 获取餐型权重，未见过的餐型为 0。
func (p *UserProfile) MealTypeWeight(m MealType) float64 {
	if p.Preferences.MealTypePreferences == nil {
		return 0
	}
	return p.Preferences.MealTypePreferences[m]
}

// SetMealTypeWeight 直接写入权重，不做上限处理（由 preference 负责）。
func (p *UserProfile) SetMealTypeWeight(m MealType, w float64) {
	if p.Preferences.MealTypePreferences == nil {
		p.Preferences.MealTypePreferences = make(map[MealType]float64)
	}
	p.Preferences.MealTypePreferences[m] = w
}

// RecipeRating 获取菜谱评分，未见过的菜谱为 DefaultRecipeRating。
func (p *UserProfile) RecipeRating(recipeID string) float64 {
	if r, ok := p.RecipeRatings[recipeID]; ok {
		return r
	}
	return DefaultRecipeRating
}

// AddRecipeRating 在当前评分（含默认值）上累加 delta，delta 为 0 时也会落下默认值。
func (p *UserProfile) AddRecipeRating(recipeID string, delta float64) float64 {
	if p.RecipeRatings == nil {
		p.RecipeRatings = make(map[string]float64)
	}
	r := p.RecipeRating(recipeID) + delta
	p.RecipeRatings[recipeID] = r
	return r
}

// IsLiked 检查菜谱是否在 liked 列表中。
func (p *UserProfile) IsLiked(recipeID string) bool {
	return indexOf(p.Preferences.LikedRecipes, recipeID) >= 0
}

// IsDisliked 检查菜谱是否在 disliked 列表中。
func (p *UserProfile) IsDisliked(recipeID string) bool {
	return indexOf(p.Preferences.DislikedRecipes, recipeID) >= 0
}

// AddLiked 追加到 liked 列表（按 ID 去重），并从 disliked 列表移除。
// 返回是否新增。
func (p *UserProfile) AddLiked(ref RecipeRef) bool {
	p.Preferences.DislikedRecipes = removeRef(p.Preferences.DislikedRecipes, ref.RecipeID)
	if indexOf(p.Preferences.LikedRecipes, ref.RecipeID) >= 0 {
		return false
	}
	p.Preferences.LikedRecipes = append(p.Preferences.LikedRecipes, ref)
	return true
}

// AddDisliked 追加到 disliked 列表（按 ID 去重），并从 liked 列表移除。
// 返回是否新增。
func (p *UserProfile) AddDisliked(ref RecipeRef) bool {
	p.Preferences.LikedRecipes = removeRef(p.Preferences.LikedRecipes, ref.RecipeID)
	if indexOf(p.Preferences.DislikedRecipes, ref.RecipeID) >= 0 {
		return false
	}
	p.Preferences.DislikedRecipes = append(p.Preferences.DislikedRecipes, ref)
	return true
}

// LikedIDs / DislikedIDs 返回 ID 集合，每次请求构建一次后供过滤器做 O(1) 判断。
func (p *UserProfile) LikedIDs() map[string]struct{} {
	return refSet(p.Preferences.LikedRecipes)
}

func (p *UserProfile) DislikedIDs() map[string]struct{} {
	return refSet(p.Preferences.DislikedRecipes)
}

// Clone 深拷贝，用于需要保留原状态的场景（测试、事务性检查）。
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Preferences.LikedRecipes = cloneRefs(p.Preferences.LikedRecipes)
	c.Preferences.DislikedRecipes = cloneRefs(p.Preferences.DislikedRecipes)
	c.Preferences.DietaryRestrictions = p.Preferences.DietaryRestrictions.Clone()
	c.Preferences.FavoriteCuisines = p.Preferences.FavoriteCuisines.Clone()
	if p.Preferences.MealTypePreferences != nil {
		c.Preferences.MealTypePreferences = make(map[MealType]float64, len(p.Preferences.MealTypePreferences))
		for k, v := range p.Preferences.MealTypePreferences {
			c.Preferences.MealTypePreferences[k] = v
		}
	}
	if p.RecipeRatings != nil {
		c.RecipeRatings = make(map[string]float64, len(p.RecipeRatings))
		for k, v := range p.RecipeRatings {
			c.RecipeRatings[k] = v
		}
	}
	return &c
}

func cloneRefs(refs []RecipeRef) []RecipeRef {
	if refs == nil {
		return nil
	}
	out := make([]RecipeRef, len(refs))
	copy(out, refs)
	return out
}

func indexOf(refs []RecipeRef, id string) int {
	for i, r := range refs {
		if r.RecipeID == id {
			return i
		}
	}
	return -1
}

func removeRef(refs []RecipeRef, id string) []RecipeRef {
	i := indexOf(refs, id)
	if i < 0 {
		return refs
	}
	out := make([]RecipeRef, 0, len(refs)-1)
	out = append(out, refs[:i]...)
	return append(out, refs[i+1:]...)
}

func refSet(refs []RecipeRef) map[string]struct{} {
	out := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		out[r.RecipeID] = struct{}{}
	}
	return out
}

// StringSet 是无序字符串集合，序列化为排序后的 JSON 数组。
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Add(v string) { s[v] = struct{}{} }

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values 返回排序后的成员。
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) Clone() StringSet {
	if s == nil {
		return nil
	}
	c := make(StringSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
