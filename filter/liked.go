package filter

import (
	"context"
	"errors"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pkg/utils"
)

// LikedFilter 让已喜欢的菜谱以 rctx.IncludeLikedProbability 的概率重新入选。
// 每个已喜欢的候选在每次请求中独立抽样一次：r < p 时保留。
// 未喜欢过的菜谱总是保留。
type LikedFilter struct {
	Rand core.RandSource
}

func NewLikedFilter(r core.RandSource) *LikedFilter {
	return &LikedFilter{Rand: r}
}

func (f *LikedFilter) Name() string {
	return "filter.liked"
}

func (f *LikedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || !rctx.IsLiked(item.ID) {
		return false, nil
	}

	p := rctx.IncludeLikedProbability
	switch {
	case p <= 0:
		return true, nil
	case p >= 1:
		item.PutLabel("liked", utils.Label{Value: "readmitted", Source: utils.SourceFilter})
		return false, nil
	}
	if f.Rand == nil {
		return false, errors.New("liked filter: nil rand source")
	}
	if f.Rand.Float64() < p {
		item.PutLabel("liked", utils.Label{Value: "readmitted", Source: utils.SourceFilter})
		return false, nil
	}
	return true, nil
}
