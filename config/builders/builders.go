// Package builders 在 init 中注册内置的可配置 Node：
//
//	filter.expr       CEL 表达式过滤，config: {expr: "...", invert: false}
//	filter.blacklist  菜谱 ID 黑名单，config: {ids: [...]}
//	rerank.topn       打分后的硬上限，config: {n: 10}
package builders

import (
	"fmt"

	"github.com/rushteam/recipekit/config"
	"github.com/rushteam/recipekit/filter"
	"github.com/rushteam/recipekit/pipeline"
	"github.com/rushteam/recipekit/pkg/conv"
	"github.com/rushteam/recipekit/rerank"
)

func init() {
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("filter.blacklist", BuildBlacklistFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.expr: expr is required")
	}
	f, err := filter.NewExprFilter(expr, conv.ConfigGet(cfg, "invert", false))
	if err != nil {
		return nil, err
	}
	return filter.NewFilterNode(f), nil
}

func BuildBlacklistFilterNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if len(ids) == 0 {
		return nil, fmt.Errorf("filter.blacklist: ids is required")
	}
	return filter.NewFilterNode(filter.NewBlacklistFilter(ids)), nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("rerank.topn: n must be positive, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
