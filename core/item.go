package core

import "github.com/rushteam/recipekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：菜谱、分数、标签。
// Labels 用于解释与观测；Score 用于排序决策。
// Recipe 指向目录中的只读菜谱，链路中的任何 Node 都不得修改它。
type Item struct {
	ID     string
	Score  float64
	Recipe *Recipe
	Labels map[string]utils.Label
}

func NewItem(r *Recipe) *Item {
	return &Item{
		ID:     r.ID,
		Recipe: r,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Recipes 按顺序取出 items 对应的菜谱。
func Recipes(items []*Item) []*Recipe {
	out := make([]*Recipe, 0, len(items))
	for _, it := range items {
		if it == nil || it.Recipe == nil {
			continue
		}
		out = append(out, it.Recipe)
	}
	return out
}
