package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/utils"
)

// PreferenceNode 按用户偏好为候选菜谱打分并降序排序。
//
//	score = rating(recipe) × (1 + weight(mealType)) × aggregatedRating
//
// 其中 rating 取自 UserProfile.RecipeRatings（默认 0.5），weight 取自餐型偏好（默认 0），
// aggregatedRating 缺失或为 0 时按 1 计。
// 排序是稳定的：同分时保持召回顺序（即目录顺序）。
//   - 写入 labels：rank_model
//   - 更新 item.Score
type PreferenceNode struct{}

func NewPreferenceNode() *PreferenceNode { return &PreferenceNode{} }

func (n *PreferenceNode) Name() string        { return "rank.preference" }
func (n *PreferenceNode) Kind() pipeline.Kind { return pipeline.KindRank }

// Score 计算单个菜谱在给定画像与餐型下的分数。
func Score(p *core.UserProfile, m core.MealType, r *core.Recipe) float64 {
	rating := core.DefaultRecipeRating
	weight := 0.0
	if p != nil {
		rating = p.RecipeRating(r.ID)
		weight = p.MealTypeWeight(m)
	}
	return rating * (1 + weight) * r.RatingOr(1)
}

func (n *PreferenceNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	var (
		user *core.UserProfile
		meal core.MealType
	)
	if rctx != nil {
		user = rctx.User
		meal = rctx.MealType
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Recipe == nil {
			continue
		}
		it.Score = Score(user, meal, it.Recipe)
		it.PutLabel("rank_model", utils.Label{Value: "preference", Source: utils.SourceRank})
		it.PutLabel("rank_score", utils.Label{
			Value:  strconv.FormatFloat(it.Score, 'f', 4, 64),
			Source: utils.SourceRank,
		})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
