package rerank

import (
	"context"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/utils"
)

// TopNNode 在排序后截取前 N 个菜谱，位于 Pipeline 末尾。
//
// Param 非空时，rctx.Params[Param] 中的正整数优先于 N（单次请求覆盖）。
// N <= 0 时不截断；候选不足 N 个时全部返回。
type TopNNode struct {
	N     int
	Param string
}

// ParamNumSuggestions 是推荐引擎传递请求条数的参数名。
const ParamNumSuggestions = "num_suggestions"

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) limit(rctx *core.RecommendContext) int {
	if n.Param != "" && rctx != nil && rctx.Params != nil {
		if v, ok := rctx.Params[n.Param].(int); ok && v > 0 {
			return v
		}
	}
	return n.N
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.limit(rctx)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		if it != nil {
			it.PutLabel("selected", utils.Label{Value: "topn", Source: utils.SourceReRank})
		}
	}
	return items, nil
}
