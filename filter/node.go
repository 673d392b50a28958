package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/recipekit/core"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该菜谱就会被过滤掉；过滤器按顺序执行，命中即停。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

// NewFilterNode 组合多个过滤器。
func NewFilterNode(filters ...Filter) *FilterNode {
	return &FilterNode{Filters: filters, Logger: zerolog.Nop()}
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filteredCount := 0

	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterReason := ""

		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时记录但不中断流程，视为不过滤
				n.Logger.Warn().Err(err).
					Str("filter", f.Name()).
					Str("recipe_id", item.ID).
					Msg("filter failed, keeping item")
				continue
			}
			if ok {
				shouldFilter = true
				filterReason = f.Name()
				break
			}
		}

		if shouldFilter {
			filteredCount++
			item.PutLabel("filtered", utils.Label{
				Value:  "true",
				Source: filterReason,
			})
			continue
		}

		out = append(out, item)
	}

	n.Logger.Debug().
		Int("in", len(items)).
		Int("filtered", filteredCount).
		Msg("filter done")
	return out, nil
}
