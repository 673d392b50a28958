// Package catalog 是会话内不可变的菜谱目录：按餐型分表，按 ID 查找。
package catalog

import (
	"github.com/rushteam/recipekit/core"
)

// Catalog 是只读的菜谱表，加载完成后可被多个 goroutine 共享。
//
// 同一个菜谱 ID 可以出现在多个餐型下（数据源按关键字分类，一道菜可能同时属于午餐和晚餐），
// 但在同一餐型内必须唯一。Get 按餐型枚举顺序返回第一次出现的记录，
// 已知餐型时应使用 Lookup。
type Catalog struct {
	byMealType map[core.MealType][]*core.Recipe
	byMealID   map[core.MealType]map[string]*core.Recipe
	byID       map[string]*core.Recipe
	size       int
}

var _ core.RecipeLookup = (*Catalog)(nil)

// New 从菜谱列表构建目录，保持输入顺序。
func New(recipes []*core.Recipe) (*Catalog, error) {
	c := &Catalog{
		byMealType: make(map[core.MealType][]*core.Recipe),
		byMealID:   make(map[core.MealType]map[string]*core.Recipe),
		byID:       make(map[string]*core.Recipe),
	}

	for _, r := range recipes {
		if r == nil {
			continue
		}
		if r.ID == "" || r.Name == "" {
			return nil, core.ErrInvalidInput.Wrap(nil, "recipe requires id and name (id=%q)", r.ID)
		}
		if !r.MealType.Valid() {
			return nil, core.ErrInvalidInput.Wrap(nil, "recipe %s has unknown meal type %q", r.ID, r.MealType)
		}
		ids := c.byMealID[r.MealType]
		if ids == nil {
			ids = make(map[string]*core.Recipe)
			c.byMealID[r.MealType] = ids
		}
		if _, dup := ids[r.ID]; dup {
			return nil, core.ErrInvalidInput.Wrap(nil, "duplicate recipe id %s in %s", r.ID, r.MealType)
		}
		ids[r.ID] = r
		c.byMealType[r.MealType] = append(c.byMealType[r.MealType], r)
		c.size++
	}

	for _, m := range core.MealTypes() {
		for _, r := range c.byMealType[m] {
			if _, ok := c.byID[r.ID]; !ok {
				c.byID[r.ID] = r
			}
		}
	}
	return c, nil
}

// Get 按 ID 查找菜谱。
func (c *Catalog) Get(id string) (*core.Recipe, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Lookup 在指定餐型下按 ID 查找菜谱。
func (c *Catalog) Lookup(m core.MealType, id string) (*core.Recipe, bool) {
	r, ok := c.byMealID[m][id]
	return r, ok
}

// ByMealType 返回该餐型的菜谱（目录顺序）。返回的是新切片，元素只读。
func (c *Catalog) ByMealType(m core.MealType) []*core.Recipe {
	src := c.byMealType[m]
	out := make([]*core.Recipe, len(src))
	copy(out, src)
	return out
}

// Count 返回该餐型的菜谱数量。
func (c *Catalog) Count(m core.MealType) int {
	return len(c.byMealType[m])
}

// Len 返回菜谱条目总数（跨餐型重复的 ID 分别计数）。
func (c *Catalog) Len() int { return c.size }
