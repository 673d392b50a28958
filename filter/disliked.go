package filter

import (
	"context"

	"github.com/rushteam/recipekit/core"
)

// DislikedFilter 剔除用户明确不喜欢的菜谱，没有任何例外。
type DislikedFilter struct{}

func NewDislikedFilter() *DislikedFilter { return &DislikedFilter{} }

func (f *DislikedFilter) Name() string {
	return "filter.disliked"
}

func (f *DislikedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	return rctx.IsDisliked(item.ID), nil
}
